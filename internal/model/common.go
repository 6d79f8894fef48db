package model

import (
	"github.com/shopspring/decimal"
)

// Row 渠道解析后的统一中间行（渠道 × SKU）。
// 库存与销售共用：库存使用 Units/Inventory/Inbound，销售使用 Units/Revenue；
// 未使用的字段保持零值，见 DefaultRow。
type Row struct {
	Channel   string
	SKU       string
	Units     int64           // 库存：近30天销量；销售：销量
	Inventory int64           // 可售库存
	Inbound   int64           // 在途
	Revenue   decimal.Decimal // 销售额（未四舍五入）
}

// Key 渠道+SKU 唯一键
func (r Row) Key() RowKey {
	return RowKey{Channel: r.Channel, SKU: r.SKU}
}

// RowKey 行唯一键
type RowKey struct {
	Channel string
	SKU     string
}

// Add 指标累加（同键聚合用）
func (r *Row) Add(o Row) {
	r.Units += o.Units
	r.Inventory += o.Inventory
	r.Inbound += o.Inbound
	r.Revenue = r.Revenue.Add(o.Revenue)
}

// DefaultRow 缺省值表：模板补零的唯一入口。
//
//	Units=0  Inventory=0  Inbound=0  Revenue=0
func DefaultRow(channel, sku string) Row {
	return Row{
		Channel:   channel,
		SKU:       sku,
		Units:     0,
		Inventory: 0,
		Inbound:   0,
		Revenue:   decimal.Zero,
	}
}

// BundleStat 组合装汇总（按渠道/分桶）
type BundleStat struct {
	Units   int64
	Revenue decimal.Decimal
}

// Table 渠道解析器输出
type Table struct {
	Rows     []Row
	Bundles  map[string]*BundleStat // 渠道→组合装汇总，仅销售
	Channels []string               // 本表实际产出的渠道（出现顺序）
	RawRows  int                    // 原始行数（诊断用）
}

// NewTable 创建空表
func NewTable() *Table {
	return &Table{Bundles: make(map[string]*BundleStat)}
}

// Empty 表是否没有任何渠道产出
func (t *Table) Empty() bool {
	return t == nil || len(t.Channels) == 0
}

// MarkChannel 记录渠道产出（去重保序）
func (t *Table) MarkChannel(channel string) {
	for _, c := range t.Channels {
		if c == channel {
			return
		}
	}
	t.Channels = append(t.Channels, channel)
}

// Aggregate 按(渠道,SKU)求和折叠重复行，保持首次出现顺序
func Aggregate(rows []Row) []Row {
	index := make(map[RowKey]int, len(rows))
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if i, ok := index[r.Key()]; ok {
			out[i].Add(r)
			continue
		}
		index[r.Key()] = len(out)
		out = append(out, r)
	}
	return out
}

// FillTemplate 以 skus 为模板左连接 rows：每个 SKU 恰好一行，缺失的用 DefaultRow 补零，
// 不在模板内的行丢弃。rows 中同键重复行先求和。对已完整的表重复执行结果不变。
func FillTemplate(channel string, skus []string, rows []Row) []Row {
	byKey := make(map[RowKey]Row, len(rows))
	for _, r := range Aggregate(rows) {
		byKey[r.Key()] = r
	}
	out := make([]Row, 0, len(skus))
	for _, sku := range skus {
		row := DefaultRow(channel, sku)
		if r, ok := byKey[row.Key()]; ok {
			row.Add(r)
		}
		out = append(out, row)
	}
	return out
}
