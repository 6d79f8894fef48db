package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"InventorySync/internal/model"
	"InventorySync/internal/repository"
)

// SnapshotService 面向查询接口的快照/运行记录服务
type SnapshotService struct {
	snapshots repository.SnapshotRepository
	runs      repository.RunRepository
	logger    *logrus.Logger
}

func NewSnapshotService(snapshots repository.SnapshotRepository, runs repository.RunRepository, logger *logrus.Logger) *SnapshotService {
	return &SnapshotService{snapshots: snapshots, runs: runs, logger: logger}
}

// SnapshotList 快照列表返回
type SnapshotList struct {
	ReportType model.ReportType `json:"reportType"`
	Total      int              `json:"total"`
	Items      []model.Record   `json:"items"`
}

// RunList 运行记录分页返回
type RunList struct {
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
	Total    int64              `json:"total"`
	Items    []*model.ReportRun `json:"items"`
}

// ListSnapshots 按报表类型查询快照
func (s *SnapshotService) ListSnapshots(ctx context.Context, report model.ReportType, filter repository.SnapshotFilter) (*SnapshotList, error) {
	out := &SnapshotList{ReportType: report, Items: []model.Record{}}
	switch report {
	case model.ReportInventory:
		list, err := s.snapshots.ListInventory(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("查询库存快照失败: %w", err)
		}
		for _, r := range list {
			out.Items = append(out.Items, *r)
		}
	case model.ReportSales:
		list, err := s.snapshots.ListSales(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("查询销售快照失败: %w", err)
		}
		for _, r := range list {
			out.Items = append(out.Items, *r)
		}
	default:
		return nil, fmt.Errorf("未支持的报表类型: %s", report)
	}
	out.Total = len(out.Items)
	return out, nil
}

// ListRuns 分页查询运行记录
func (s *SnapshotService) ListRuns(ctx context.Context, filter repository.RunFilter, page, pageSize int) (*RunList, error) {
	list, total, err := s.runs.ListRuns(ctx, filter, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("查询运行记录失败: %w", err)
	}
	if list == nil {
		list = []*model.ReportRun{}
	}
	return &RunList{Page: page, PageSize: pageSize, Total: total, Items: list}, nil
}

// GetRun 单条运行记录
func (s *SnapshotService) GetRun(ctx context.Context, runUUID string) (*model.ReportRun, error) {
	return s.runs.GetRun(ctx, runUUID)
}
