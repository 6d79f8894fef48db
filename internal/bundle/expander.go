package bundle

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"InventorySync/internal/config"
	"InventorySync/internal/model"
	"InventorySync/internal/utils/reportfile"
)

// Fields 原始行中外部标识/数量/金额所在的列
type Fields struct {
	Key     string
	Qty     string
	Revenue string
}

// Share 拆分后落到某个主SKU上的份额
type Share struct {
	SKU     string
	Units   int64
	Revenue decimal.Decimal
}

// Expander 组合装拆分：外部标识 → 一个或多个主SKU。
// 每个来源（一个销售文件）使用一个 Expander，内部累计组合装统计与未知标识。
type Expander struct {
	logger  *logrus.Logger
	source  string
	mapping config.Mapping

	unknown map[string]int // 未映射标识 → 出现次数
	stats   map[string]*model.BundleStat
}

func NewExpander(logger *logrus.Logger, source string, mapping config.Mapping) *Expander {
	return &Expander{
		logger:  logger,
		source:  source,
		mapping: mapping,
		unknown: make(map[string]int),
		stats:   make(map[string]*model.BundleStat),
	}
}

// Expand 拆分一行：销量原样复制到每个成员SKU，金额按映射列表长度均分。
// 同一列表中重复的SKU只输出一次（取第一次出现），此时各份额之和小于原金额：
// 5002 → [5001, 5001]，数量3、净额30 ⇒ 仅 5001/3/15。待业务确认前保持此行为，不要改为合并累加。
// 空标识静默忽略；未知标识每个来源只告警一次，不产出任何份额。
func (e *Expander) Expand(key string, units int64, revenue decimal.Decimal) ([]Share, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, false
	}
	skus, ok := e.mapping.Lookup(key)
	if !ok || len(skus) == 0 {
		if e.unknown[key] == 0 {
			e.logger.WithFields(logrus.Fields{
				"source": e.source,
				"key":    key,
			}).Warn("ALERT: 未映射的外部SKU，该行销量丢弃")
		}
		e.unknown[key]++
		return nil, false
	}

	n := len(skus)
	share := revenue
	if n > 1 {
		share = revenue.Div(decimal.NewFromInt(int64(n)))
	}

	seen := make(map[string]struct{}, n)
	out := make([]Share, 0, n)
	for _, sku := range skus {
		if _, dup := seen[sku]; dup {
			continue
		}
		seen[sku] = struct{}{}
		out = append(out, Share{SKU: sku, Units: units, Revenue: share})
	}
	return out, n > 1
}

// ExpandInto 拆分并把组合装整行销量/金额计入 channel 的统计
func (e *Expander) ExpandInto(channel string, row *reportfile.Row, f Fields) []Share {
	units := row.Int(f.Qty)
	revenue := row.Decimal(f.Revenue)
	shares, isBundle := e.Expand(row.Get(f.Key), units, revenue)
	if isBundle {
		e.Record(channel, units, revenue)
	}
	return shares
}

// Record 累计组合装统计
func (e *Expander) Record(channel string, units int64, revenue decimal.Decimal) {
	st, ok := e.stats[channel]
	if !ok {
		st = &model.BundleStat{Revenue: decimal.Zero}
		e.stats[channel] = st
	}
	st.Units += units
	st.Revenue = st.Revenue.Add(revenue)
}

// Stats 渠道 → 组合装统计
func (e *Expander) Stats() map[string]*model.BundleStat {
	return e.stats
}

// Unknown 本来源出现过的未映射标识（排序）
func (e *Expander) Unknown() []string {
	keys := make([]string, 0, len(e.unknown))
	for k := range e.unknown {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
