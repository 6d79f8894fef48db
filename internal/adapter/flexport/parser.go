package flexport

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"InventorySync/internal/adapter"
	"InventorySync/internal/interfaces"
	"InventorySync/internal/model"
	"InventorySync/internal/utils/reportfile"
)

const (
	Name           = "Flexport"
	ChannelDTC     = "DTC"
	ChannelReserve = "Reserve"

	// levels
	colLevelSKU  = "SKU"
	colAvailable = "Available Quantity"
	colRSTotal   = "RS Total Quantity"
	colOpsWIP    = "Ops WIP Quantity"

	// orders
	colOrderID   = "Order ID"
	colStatus    = "Status"
	colLineItems = "Line Items"

	// inbound（旧版对账报表）
	colInboundSKU = "MSKU"
	colInTransit  = "IN_TRANSIT_WITHIN_DELIVERR_UNDER_60_DAYS"
	colToDeliverr = "IN_TRANSIT_TO_DELIVERR"
)

// lineItem 订单内嵌的商品行
type lineItem struct {
	SKU      string      `json:"sku"`
	Quantity json.Number `json:"quantity"`
}

// Parser Flexport：库存水位 + 订单行 + 可选在途，一个来源产出 DTC 与 Reserve 两个渠道
type Parser struct {
	deps *adapter.Deps
}

func New(deps *adapter.Deps) interfaces.ChannelParser {
	return &Parser{deps: deps}
}

func (p *Parser) GetName() string { return Name }

func (p *Parser) Channels() []string { return []string{ChannelDTC, ChannelReserve} }

func (p *Parser) RequiredFiles() []model.FileSpec {
	return []model.FileSpec{
		{Role: model.RoleLevels, Prefix: p.deps.Prefixes.FlexportLevels},
		{Role: model.RoleOrders, Prefix: p.deps.Prefixes.FlexportOrders},
		{Role: model.RoleInbound, Prefix: p.deps.Prefixes.FlexportInbound, Optional: true},
	}
}

// Parse
//
//	DTC.inventory     = Σ Available Quantity
//	Reserve.inventory = max(0, Σ RS Total Quantity - Σ Ops WIP Quantity)
//	DTC.unitsSold     = Σ 未取消订单中可映射商品行的数量
//	DTC.inbound       = Σ 两个在途列（无在途文件时为0）
func (p *Parser) Parse(files model.FileSet) (*model.Table, error) {
	levels, err := p.deps.Loader.Load(files.Path(model.RoleLevels))
	if err != nil {
		return nil, err
	}
	if err := levels.RequireColumns(colLevelSKU, colAvailable, colRSTotal, colOpsWIP); err != nil {
		return nil, fmt.Errorf("Flexport库存报表格式错误: %w", err)
	}
	orders, err := p.deps.Loader.Load(files.Path(model.RoleOrders))
	if err != nil {
		return nil, err
	}
	if err := orders.RequireColumns(colStatus, colLineItems); err != nil {
		return nil, fmt.Errorf("Flexport订单报表格式错误: %w", err)
	}

	dtc, reserve := p.parseLevels(levels)
	dtc = append(dtc, p.parseOrders(orders)...)
	if files.Has(model.RoleInbound) {
		inbound, err := p.parseInbound(files.Path(model.RoleInbound))
		if err != nil {
			// 在途是可选数据：读取失败按缺失处理
			p.deps.Logger.WithError(err).Warn("Flexport在途报表不可用，inbound按0处理")
		} else {
			dtc = append(dtc, inbound...)
		}
	} else {
		p.deps.Logger.Info("Flexport在途报表缺失（可选），inbound按0处理")
	}

	adapter.LogMissingSKUs(p.deps, Name, dtc)

	skus := p.deps.Catalog.SKUOrder()
	out := model.NewTable()
	out.RawRows = len(levels.Rows) + len(orders.Rows)
	out.Rows = append(model.FillTemplate(ChannelDTC, skus, dtc), model.FillTemplate(ChannelReserve, skus, reserve)...)
	out.MarkChannel(ChannelDTC)
	out.MarkChannel(ChannelReserve)
	return out, nil
}

// parseLevels 按SKU汇总后再推导两个库存池（先求和再夹零）
func (p *Parser) parseLevels(t *reportfile.Table) (dtc, reserve []model.Row) {
	type pool struct {
		available, rsTotal, opsWIP int64
	}
	sums := make(map[string]*pool)
	var order []string
	for _, r := range t.Rows {
		sku, ok := p.deps.Catalog.FlexportSKU(r.Get(colLevelSKU))
		if !ok {
			continue
		}
		s, exists := sums[sku]
		if !exists {
			s = &pool{}
			sums[sku] = s
			order = append(order, sku)
		}
		s.available += r.Int(colAvailable)
		s.rsTotal += r.Int(colRSTotal)
		s.opsWIP += r.Int(colOpsWIP)
	}

	for _, sku := range order {
		s := sums[sku]
		reserveQty := s.rsTotal - s.opsWIP
		if reserveQty < 0 {
			reserveQty = 0
		}
		dtc = append(dtc, model.Row{Channel: ChannelDTC, SKU: sku, Inventory: s.available})
		reserve = append(reserve, model.Row{Channel: ChannelReserve, SKU: sku, Inventory: reserveQty})
	}
	p.deps.Logger.WithFields(logrus.Fields{
		"raw_rows": len(t.Rows),
		"skus":     len(order),
	}).Info("Flexport库存报表解析完成")
	return dtc, reserve
}

// parseOrders 排除已取消订单，展开商品行，映射不到的商品直接丢弃
func (p *Parser) parseOrders(t *reportfile.Table) []model.Row {
	var rows []model.Row
	cancelled, dropped, malformed := 0, 0, 0
	for _, r := range t.Rows {
		if strings.Contains(strings.ToLower(r.Get(colStatus)), "cancel") {
			cancelled++
			continue
		}
		items, err := decodeLineItems(r.Get(colLineItems))
		if err != nil {
			malformed++
			p.deps.Logger.WithFields(logrus.Fields{
				"order": r.GetOrDefault(colOrderID, fmt.Sprintf("line %d", r.LineNumber)),
			}).WithError(err).Warn("订单商品行解析失败，跳过该订单")
			continue
		}
		for _, it := range items {
			sku, ok := p.deps.Catalog.FlexportSKU(strings.TrimSpace(it.SKU))
			if !ok {
				dropped++
				continue
			}
			qty := reportfile.ParseAmount(it.Quantity.String()).IntPart()
			rows = append(rows, model.Row{Channel: ChannelDTC, SKU: sku, Units: qty})
		}
	}
	p.deps.Logger.WithFields(logrus.Fields{
		"orders":         len(t.Rows),
		"cancelled":      cancelled,
		"malformed":      malformed,
		"unmapped_items": dropped,
		"item_rows":      len(rows),
	}).Info("Flexport订单报表解析完成")
	return rows
}

func decodeLineItems(s string) ([]lineItem, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var items []lineItem
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	if err := dec.Decode(&items); err != nil {
		return nil, err
	}
	return items, nil
}

func (p *Parser) parseInbound(path string) ([]model.Row, error) {
	t, err := p.deps.Loader.Load(path)
	if err != nil {
		return nil, err
	}
	if err := t.RequireColumns(colInboundSKU, colInTransit, colToDeliverr); err != nil {
		return nil, err
	}
	var rows []model.Row
	for _, r := range t.Rows {
		sku, ok := p.deps.Catalog.FlexportSKU(r.Get(colInboundSKU))
		if !ok {
			continue
		}
		rows = append(rows, model.Row{
			Channel: ChannelDTC,
			SKU:     sku,
			Inbound: r.Int(colInTransit) + r.Int(colToDeliverr),
		})
	}
	return rows, nil
}
