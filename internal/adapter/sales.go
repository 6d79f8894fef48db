package adapter

import (
	"github.com/sirupsen/logrus"

	"InventorySync/internal/bundle"
	"InventorySync/internal/config"
	"InventorySync/internal/model"
	"InventorySync/internal/utils/reportfile"
)

// SalesSource 单渠道销售报表的列定义
type SalesSource struct {
	Channel string
	Mapping config.MappingSource
	Fields  bundle.Fields
	// Keep 返回 false 的行在拆分前丢弃（如已取消订单），可为空
	Keep func(row *reportfile.Row) bool
}

// ParseSalesTable 单渠道销售报表 → 中间表：逐行组合装拆分，按SKU求和。
// 没有任何有效行时返回空表（不标记渠道）。
func ParseSalesTable(deps *Deps, t *reportfile.Table, src SalesSource) *model.Table {
	exp := bundle.NewExpander(deps.Logger, src.Channel, deps.Catalog.Mapping(src.Mapping))
	out := model.NewTable()
	out.RawRows = len(t.Rows)

	var rows []model.Row
	kept := 0
	for _, raw := range t.Rows {
		if src.Keep != nil && !src.Keep(raw) {
			continue
		}
		kept++
		for _, s := range exp.ExpandInto(src.Channel, raw, src.Fields) {
			rows = append(rows, model.Row{Channel: src.Channel, SKU: s.SKU, Units: s.Units, Revenue: s.Revenue})
		}
	}
	rows = model.Aggregate(rows)

	deps.Logger.WithFields(logrus.Fields{
		"channel":  src.Channel,
		"raw_rows": out.RawRows,
		"kept":     kept,
		"skus":     len(rows),
		"unmapped": len(exp.Unknown()),
	}).Info("销售报表解析完成")

	if len(rows) == 0 {
		return out
	}
	LogMissingSKUs(deps, src.Channel, rows)
	out.Rows = rows
	out.MarkChannel(src.Channel)
	out.Bundles[src.Channel] = BundleStatFor(exp.Stats(), src.Channel)
	return out
}

// BundleStatFor 取渠道组合装统计，没有则为零
func BundleStatFor(stats map[string]*model.BundleStat, channel string) *model.BundleStat {
	if st, ok := stats[channel]; ok {
		return st
	}
	return &model.BundleStat{}
}
