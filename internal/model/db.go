package model

import (
	"time"

	"gorm.io/datatypes"
)

// Record 可落盘的规范化记录
type Record interface {
	Values() []interface{}
}

// HeaderFor 报表类型对应的表头
func HeaderFor(report ReportType) []string {
	if report == ReportSales {
		return SalesHeader
	}
	return InventoryHeader
}

// 运行状态
const (
	RunStatusSuccess          = "success"
	RunStatusEmpty            = "empty"
	RunStatusValidationFailed = "validation_failed"
	RunStatusCancelled        = "cancelled"
)

// ReportRun 每次流水线运行一条记录
type ReportRun struct {
	ID          uint64         `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID" json:"-"`
	RunUUID     string         `gorm:"column:run_uuid;type:varchar(64);uniqueIndex;not null;comment:运行ID" json:"runId"`
	ReportType  string         `gorm:"column:report_type;type:varchar(16);index;not null;comment:inventory/sales" json:"reportType"`
	SystemDate  Date           `gorm:"column:system_date;not null;comment:运行日期" json:"systemDate"`
	Status      string         `gorm:"column:status;type:varchar(32);not null;comment:运行状态" json:"status"`
	RecordCount int            `gorm:"column:record_count;type:int;default:0;comment:记录数" json:"recordCount"`
	Summary     datatypes.JSON `gorm:"column:summary;comment:各渠道最新日期" json:"summary"`
	Error       string         `gorm:"column:error;type:text;comment:失败原因" json:"error,omitempty"`
	StartedAt   time.Time      `gorm:"column:started_at;comment:开始时间" json:"startedAt"`
	FinishedAt  time.Time      `gorm:"column:finished_at;comment:结束时间" json:"finishedAt"`
}

func (ReportRun) TableName() string { return "report_runs" }
