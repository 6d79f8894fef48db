package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"InventorySync/internal/model"
	"InventorySync/internal/service"
)

type SyncHandler struct {
	syncService *service.SyncService
	logger      *logrus.Logger
}

func NewSyncHandler(syncService *service.SyncService, logger *logrus.Logger) *SyncHandler {
	return &SyncHandler{
		syncService: syncService,
		logger:      logger,
	}
}

// SyncReportHandler 运行指定报表
// @Summary 运行库存/销售报表流水线
// @Param report path string true "报表类型（inventory/sales）"
// @Param test query bool false "测试模式，跳过webhook推送"
// @Success 200 {object} service.Result
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]interface{}
// @Router /sync/report/{report} [post]
func (h *SyncHandler) SyncReportHandler(c *gin.Context) {
	report, ok := model.ParseReportType(c.Param("report"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("未知报表类型: %s", c.Param("report"))})
		return
	}
	testMode, _ := strconv.ParseBool(c.DefaultQuery("test", "false"))

	res, err := h.syncService.RunReport(c.Request.Context(), report, testMode)
	if err != nil {
		h.logger.Errorf("运行%s报表失败: %v", report, err)
		status := http.StatusInternalServerError
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{
			"error":  err.Error(),
			"result": res,
		})
		return
	}

	c.JSON(http.StatusOK, res)
}
