package repository

import (
	"context"

	"gorm.io/gorm"

	"InventorySync/internal/model"
)

// RunFilter 运行记录筛选
type RunFilter struct {
	ReportType string
	Status     string
}

// RunRepository 运行记录仓储
type RunRepository interface {
	SaveRun(ctx context.Context, run *model.ReportRun) error
	ListRuns(ctx context.Context, filter RunFilter, page, pageSize int) ([]*model.ReportRun, int64, error)
	GetRun(ctx context.Context, runUUID string) (*model.ReportRun, error)
}

type runRepository struct {
	db *gorm.DB
}

func NewRunRepository(db *gorm.DB) RunRepository {
	return &runRepository{db: db}
}

func (r *runRepository) SaveRun(ctx context.Context, run *model.ReportRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *runRepository) ListRuns(ctx context.Context, filter RunFilter, page, pageSize int) ([]*model.ReportRun, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	db := r.db.WithContext(ctx).Model(&model.ReportRun{})
	if filter.ReportType != "" {
		db = db.Where("report_type = ?", filter.ReportType)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []*model.ReportRun
	if err := db.Order("started_at DESC").Order("id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *runRepository) GetRun(ctx context.Context, runUUID string) (*model.ReportRun, error) {
	var run model.ReportRun
	if err := r.db.WithContext(ctx).Where("run_uuid = ?", runUUID).First(&run).Error; err != nil {
		return nil, err
	}
	return &run, nil
}
