package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"InventorySync/internal/model"
	"InventorySync/internal/repository"
	"InventorySync/internal/service"
)

// SnapshotHandler 已入库快照与运行记录的查询接口
type SnapshotHandler struct {
	snapshotService *service.SnapshotService
	logger          *logrus.Logger
}

// NewSnapshotHandler 创建 SnapshotHandler
func NewSnapshotHandler(db *gorm.DB, logger *logrus.Logger) *SnapshotHandler {
	svc := service.NewSnapshotService(repository.NewSnapshotRepository(db), repository.NewRunRepository(db), logger)
	return &SnapshotHandler{
		snapshotService: svc,
		logger:          logger,
	}
}

// ListSnapshots 快照列表
// GET /api/snapshots/:report?date=2025-01-02&channel=FBA&sku=1001
func (h *SnapshotHandler) ListSnapshots(c *gin.Context) {
	report, ok := model.ParseReportType(c.Param("report"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "report must be inventory or sales"})
		return
	}
	filter := repository.SnapshotFilter{
		Channel: c.Query("channel"),
		SKU:     c.Query("sku"),
	}
	if d := c.Query("date"); d != "" {
		t, err := time.Parse("2006-01-02", d)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		filter.ReportDate = model.NewDate(t)
	}

	result, err := h.snapshotService.ListSnapshots(c.Request.Context(), report, filter)
	if err != nil {
		h.logger.WithError(err).Error("ListSnapshots failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListRuns 运行记录列表
// GET /api/runs?report=sales&status=success&page=1&page_size=20
func (h *SnapshotHandler) ListRuns(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	filter := repository.RunFilter{
		ReportType: c.Query("report"),
		Status:     c.Query("status"),
	}

	result, err := h.snapshotService.ListRuns(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		h.logger.WithError(err).Error("ListRuns failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetRun 单条运行记录
// GET /api/runs/:run_id
func (h *SnapshotHandler) GetRun(c *gin.Context) {
	runID := c.Param("run_id")
	if runID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "run_id is required"})
		return
	}

	run, err := h.snapshotService.GetRun(c.Request.Context(), runID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
			return
		}
		h.logger.WithError(err).Error("GetRun failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, run)
}
