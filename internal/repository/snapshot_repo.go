package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"InventorySync/internal/model"
)

const saveBatchSize = 200

// SnapshotFilter 快照查询条件
type SnapshotFilter struct {
	ReportDate model.Date // 零值不过滤
	Channel    string
	SKU        string
}

// SnapshotRepository 库存/销售快照仓储，同时作为流水线的落库 sink
type SnapshotRepository interface {
	Save(ctx context.Context, report model.ReportType, records []model.Record) error
	ListInventory(ctx context.Context, filter SnapshotFilter) ([]*model.InventoryRecord, error)
	ListSales(ctx context.Context, filter SnapshotFilter) ([]*model.SalesRecord, error)
}

type snapshotRepository struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

// Save 按 id upsert（同一天重跑覆盖当天的记录），整批在一个事务内
func (r *snapshotRepository) Save(ctx context.Context, report model.ReportType, records []model.Record) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch report {
		case model.ReportInventory:
			rows := make([]*model.InventoryRecord, 0, len(records))
			for _, rec := range records {
				ir, ok := rec.(model.InventoryRecord)
				if !ok {
					return fmt.Errorf("库存报表中出现非库存记录: %T", rec)
				}
				rows = append(rows, &ir)
			}
			return tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"sku_channel_id", "report_date", "sku", "channel", "units_sold", "inventory", "inbound"}),
			}).CreateInBatches(rows, saveBatchSize).Error
		case model.ReportSales:
			rows := make([]*model.SalesRecord, 0, len(records))
			for _, rec := range records {
				sr, ok := rec.(model.SalesRecord)
				if !ok {
					return fmt.Errorf("销售报表中出现非销售记录: %T", rec)
				}
				rows = append(rows, &sr)
			}
			return tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"sku_channel_id", "report_date", "sku", "channel", "units", "revenue"}),
			}).CreateInBatches(rows, saveBatchSize).Error
		default:
			return fmt.Errorf("未知报表类型: %s", report)
		}
	})
}

func (r *snapshotRepository) applyFilter(db *gorm.DB, filter SnapshotFilter) *gorm.DB {
	if !filter.ReportDate.IsZero() {
		db = db.Where("report_date = ?", filter.ReportDate)
	}
	if filter.Channel != "" {
		db = db.Where("channel = ?", filter.Channel)
	}
	if filter.SKU != "" {
		db = db.Where("sku = ?", filter.SKU)
	}
	return db
}

func (r *snapshotRepository) ListInventory(ctx context.Context, filter SnapshotFilter) ([]*model.InventoryRecord, error) {
	var list []*model.InventoryRecord
	db := r.applyFilter(r.db.WithContext(ctx).Model(&model.InventoryRecord{}), filter)
	if err := db.Order("id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *snapshotRepository) ListSales(ctx context.Context, filter SnapshotFilter) ([]*model.SalesRecord, error) {
	var list []*model.SalesRecord
	db := r.applyFilter(r.db.WithContext(ctx).Model(&model.SalesRecord{}), filter)
	if err := db.Order("id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
