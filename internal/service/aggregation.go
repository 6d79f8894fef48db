package service

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"InventorySync/internal/config"
	"InventorySync/internal/model"
)

// Extracted Extract 阶段的输出：各渠道的中间行、报表日期与组合装统计
type Extracted struct {
	Rows     []model.Row
	Dates    map[string]model.Date
	Bundles  map[string]*model.BundleStat
	Channels []string // 本次产出数据的渠道（发现顺序）
}

func newExtracted() *Extracted {
	return &Extracted{
		Dates:   make(map[string]model.Date),
		Bundles: make(map[string]*model.BundleStat),
	}
}

// Empty 没有任何渠道产出
func (e *Extracted) Empty() bool {
	return e == nil || len(e.Channels) == 0
}

// add 合并单个来源的输出；一个来源的所有渠道共用该来源的报表日期
func (e *Extracted) add(t *model.Table, date model.Date) {
	active := make(map[string]struct{}, len(t.Channels))
	for _, ch := range t.Channels {
		active[ch] = struct{}{}
		if _, seen := e.Dates[ch]; !seen {
			e.Channels = append(e.Channels, ch)
		}
		e.Dates[ch] = date
	}
	for _, r := range t.Rows {
		if _, ok := active[r.Channel]; ok {
			e.Rows = append(e.Rows, r)
		}
	}
	for ch, st := range t.Bundles {
		if _, ok := active[ch]; !ok || st == nil {
			continue
		}
		acc, ok := e.Bundles[ch]
		if !ok {
			acc = &model.BundleStat{Revenue: decimal.Zero}
			e.Bundles[ch] = acc
		}
		acc.Units += st.Units
		acc.Revenue = acc.Revenue.Add(st.Revenue)
	}
}

// orderChannels 按目录渠道顺序排列，目录外的渠道按名称排在最后
func orderChannels(catalog *config.Catalog, report model.ReportType, channels []string) []string {
	order := catalog.InventoryChannels()
	if report == model.ReportSales {
		order = catalog.SalesChannels()
	}
	rank := make(map[string]int, len(order))
	for i, ch := range order {
		rank[ch] = i
	}
	out := append([]string(nil), channels...)
	sort.SliceStable(out, func(i, j int) bool {
		ri, okI := rank[out[i]]
		rj, okJ := rank[out[j]]
		switch {
		case okI && okJ:
			return ri < rj
		case okI != okJ:
			return okI
		default:
			return out[i] < out[j]
		}
	})
	return out
}

// recordIDs 生成 id（运行日期_渠道_SKU）与 sku_channel_id（渠道_SKU），渠道名中的空格替换为下划线
func recordIDs(systemDate time.Time, channel, sku string) (id, skuChannelID string) {
	ch := strings.ReplaceAll(channel, " ", "_")
	skuChannelID = ch + "_" + sku
	id = systemDate.Format("20060102") + "_" + skuChannelID
	return id, skuChannelID
}

// buildTemplate 对每个产出渠道构建完整模板（主SKU全集，销售另含 Bundles 行且排在最前），
// 左连接真实数据并补零。输出顺序：渠道顺序 → (Bundles) → 主SKU顺序。
func buildTemplate(catalog *config.Catalog, report model.ReportType, ex *Extracted) []model.Row {
	byChannel := make(map[string][]model.Row, len(ex.Channels))
	for _, r := range ex.Rows {
		byChannel[r.Channel] = append(byChannel[r.Channel], r)
	}
	skus := catalog.SKUOrder()

	var out []model.Row
	for _, ch := range orderChannels(catalog, report, ex.Channels) {
		if report == model.ReportSales {
			b := model.DefaultRow(ch, model.BundlesSKU)
			if st, ok := ex.Bundles[ch]; ok {
				b.Units = st.Units
				b.Revenue = st.Revenue
			}
			out = append(out, b)
		}
		out = append(out, model.FillTemplate(ch, skus, byChannel[ch])...)
	}
	return out
}

// toRecords 中间行 → 规范化记录
func toRecords(report model.ReportType, systemDate time.Time, dates map[string]model.Date, rows []model.Row) []model.Record {
	records := make([]model.Record, 0, len(rows))
	for _, r := range rows {
		id, skuChannelID := recordIDs(systemDate, r.Channel, r.SKU)
		if report == model.ReportSales {
			records = append(records, model.SalesRecord{
				ID:           id,
				SKUChannelID: skuChannelID,
				ReportDate:   dates[r.Channel],
				SKU:          r.SKU,
				Channel:      r.Channel,
				Units:        r.Units,
				Revenue:      r.Revenue.Round(2).InexactFloat64(),
			})
			continue
		}
		records = append(records, model.InventoryRecord{
			ID:           id,
			SKUChannelID: skuChannelID,
			ReportDate:   dates[r.Channel],
			SKU:          r.SKU,
			Channel:      r.Channel,
			UnitsSold:    r.Units,
			Inventory:    r.Inventory,
			Inbound:      r.Inbound,
		})
	}
	return records
}
