package notify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"InventorySync/internal/config"
	"InventorySync/internal/model"
	"InventorySync/internal/utils/httpclient"
)

// Payload webhook 请求体，reportType 作为区分字段
type Payload struct {
	ReportType    model.ReportType       `json:"reportType"`
	ReportSummary map[string]interface{} `json:"reportSummary"`
	ReportData    []model.Record         `json:"reportData"`
}

// Webhook 把校验后的记录推送到外部地址；URL 为空时不推送
type Webhook struct {
	url    string
	client *http.Client
	logger *logrus.Logger
}

func NewWebhook(cfg *config.WebhookConfig, logger *logrus.Logger) *Webhook {
	return &Webhook{
		url:    cfg.URL,
		client: httpclient.NewHTTPClient(cfg, logger),
		logger: logger,
	}
}

// Notify 单次 POST，不重试
func (w *Webhook) Notify(ctx context.Context, report model.ReportType, summary map[string]interface{}, records []model.Record) error {
	if w.url == "" {
		w.logger.Warn("WEBHOOK_URL 未配置，跳过推送")
		return nil
	}
	if records == nil {
		records = []model.Record{}
	}
	payload := Payload{ReportType: report, ReportSummary: summary, ReportData: records}

	w.logger.WithFields(logrus.Fields{
		"report":  report,
		"records": len(records),
	}).Info("推送报表到webhook")
	if err := httpclient.PostJSON(ctx, w.client, w.url, payload); err != nil {
		return fmt.Errorf("推送%s报表失败: %w", report, err)
	}
	w.logger.WithField("report", report).Info("webhook推送成功")
	return nil
}
