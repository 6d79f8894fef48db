package tiktok

import (
	"fmt"
	"strings"

	"InventorySync/internal/adapter"
	"InventorySync/internal/bundle"
	"InventorySync/internal/config"
	"InventorySync/internal/interfaces"
	"InventorySync/internal/model"
	"InventorySync/internal/utils/reportfile"
)

const (
	Name    = "TikTok Shop"
	Channel = "TikTok Shop"

	colOrderStatus = "Order Status"
)

var fields = bundle.Fields{Key: "Seller SKU", Qty: "Quantity", Revenue: "SKU Subtotal After Discount"}

// Parser TikTok Shop 订单导出（每行一个订单商品）
type Parser struct {
	deps *adapter.Deps
}

func New(deps *adapter.Deps) interfaces.ChannelParser {
	return &Parser{deps: deps}
}

func (p *Parser) GetName() string { return Name }

func (p *Parser) Channels() []string { return []string{Channel} }

func (p *Parser) RequiredFiles() []model.FileSpec {
	return []model.FileSpec{{Role: model.RolePrimary, Prefix: p.deps.Prefixes.TikTokOrders}}
}

func (p *Parser) Parse(files model.FileSet) (*model.Table, error) {
	t, err := p.deps.Loader.Load(files.Path(model.RolePrimary))
	if err != nil {
		return nil, err
	}
	if err := t.RequireColumns(fields.Key, fields.Qty, fields.Revenue); err != nil {
		return nil, fmt.Errorf("TikTok订单报表格式错误: %w", err)
	}
	return adapter.ParseSalesTable(p.deps, t, adapter.SalesSource{
		Channel: Channel,
		Mapping: config.SourceTikTok,
		Fields:  fields,
		Keep:    notCancelled,
	}), nil
}

// notCancelled 已取消订单不计销量（无状态列时全部保留）
func notCancelled(row *reportfile.Row) bool {
	return !strings.Contains(strings.ToLower(row.Get(colOrderStatus)), "cancel")
}
