package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"InventorySync/internal/adapter"
	"InventorySync/internal/adapter/amazon"
	"InventorySync/internal/adapter/awd"
	"InventorySync/internal/adapter/fba"
	"InventorySync/internal/adapter/flexport"
	"InventorySync/internal/adapter/shopify"
	"InventorySync/internal/adapter/tiktok"
	"InventorySync/internal/adapter/walmart"
	"InventorySync/internal/adapter/wfs"
	"InventorySync/internal/model"
)

// DefaultFactories 各报表的解析器（固定顺序）；新增渠道仅需添加此处
func DefaultFactories() map[model.ReportType][]adapter.Factory {
	return map[model.ReportType][]adapter.Factory{
		model.ReportInventory: {fba.New, flexport.New, awd.New, wfs.New},
		model.ReportSales:     {walmart.New, amazon.New, tiktok.New, shopify.New},
	}
}

// SyncService 组装并运行各报表流水线
type SyncService struct {
	logger    *logrus.Logger
	pipelines map[model.ReportType]*Pipeline
}

// NewSyncService registry 提供每种报表的解析器列表，deps 为所有流水线共用
func NewSyncService(registry *adapter.ParserRegistry, deps PipelineDeps) *SyncService {
	s := &SyncService{
		logger:    deps.Logger,
		pipelines: make(map[model.ReportType]*Pipeline),
	}
	if deps.Validator == nil {
		deps.Validator = NewValidator(deps.Catalog)
	}
	for _, report := range []model.ReportType{model.ReportInventory, model.ReportSales} {
		s.pipelines[report] = NewPipeline(report, deps, registry.Parsers(report))
	}
	return s
}

// RunReport 运行单个报表
func (s *SyncService) RunReport(ctx context.Context, report model.ReportType, testMode bool) (*Result, error) {
	p, ok := s.pipelines[report]
	if !ok {
		return nil, fmt.Errorf("未支持的报表类型: %s", report)
	}
	return p.Run(ctx, testMode)
}

// RunAll 先库存后销售；一个失败不阻塞另一个，错误合并返回
func (s *SyncService) RunAll(ctx context.Context, testMode bool) (map[model.ReportType]*Result, error) {
	start := time.Now()
	s.logger.WithField("test_mode", testMode).Info("开始运行全部报表")

	results := make(map[model.ReportType]*Result)
	var errs []error
	for _, report := range []model.ReportType{model.ReportInventory, model.ReportSales} {
		res, err := s.RunReport(ctx, report, testMode)
		if res != nil {
			results[report] = res
		}
		if err != nil {
			s.logger.WithError(err).WithField("report", report).Error("报表运行失败")
			errs = append(errs, fmt.Errorf("%s: %w", report, err))
		}
	}

	s.logger.WithField("elapsed", time.Since(start).Round(time.Millisecond).String()).Info("全部报表运行结束")
	return results, errors.Join(errs...)
}
