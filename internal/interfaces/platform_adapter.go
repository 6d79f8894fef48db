package interfaces

import (
	"context"

	"InventorySync/internal/model"
)

// ChannelParser 所有渠道解析器必须实现的核心接口
type ChannelParser interface {
	GetName() string                                   // 数据源名称
	Channels() []string                                // 可能产出的渠道（状态汇总用）
	RequiredFiles() []model.FileSpec                   // 依赖的文件（含可选）
	Parse(files model.FileSet) (*model.Table, error) // 解析为统一中间表；nil/错误视为该源无数据
}

// ReportSink 校验通过后的落盘/入库
type ReportSink interface {
	Save(ctx context.Context, report model.ReportType, records []model.Record) error
}

// Notifier 对外推送（webhook）
type Notifier interface {
	Notify(ctx context.Context, report model.ReportType, summary map[string]interface{}, records []model.Record) error
}

// RunRepository 运行记录
type RunRepository interface {
	SaveRun(ctx context.Context, run *model.ReportRun) error
}
