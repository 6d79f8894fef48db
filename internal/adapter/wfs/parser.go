package wfs

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"InventorySync/internal/adapter"
	"InventorySync/internal/interfaces"
	"InventorySync/internal/model"
)

const (
	Name    = "WFS"
	Channel = "WFS"

	colSKU       = "SKU"
	colUnitsSold = "Units_Sold"
	colAvailable = "Available units"
	colInbound   = "Inbound units"
)

// Parser Walmart Fulfillment Services：销量文件 + 库存文件
type Parser struct {
	deps *adapter.Deps
}

func New(deps *adapter.Deps) interfaces.ChannelParser {
	return &Parser{deps: deps}
}

func (p *Parser) GetName() string { return Name }

func (p *Parser) Channels() []string { return []string{Channel} }

func (p *Parser) RequiredFiles() []model.FileSpec {
	return []model.FileSpec{
		{Role: model.RoleSales, Prefix: p.deps.Prefixes.WalmartSales},
		{Role: model.RoleInventory, Prefix: p.deps.Prefixes.WFSInventory},
	}
}

// Parse 两个文件各自按SKU求和后外连接（只出现在一个文件的SKU也保留），再套主SKU模板
func (p *Parser) Parse(files model.FileSet) (*model.Table, error) {
	sales, err := p.deps.Loader.Load(files.Path(model.RoleSales))
	if err != nil {
		return nil, err
	}
	inventory, err := p.deps.Loader.Load(files.Path(model.RoleInventory))
	if err != nil {
		return nil, err
	}
	if err := sales.RequireColumns(colSKU, colUnitsSold); err != nil {
		return nil, fmt.Errorf("Walmart销量报表格式错误: %w", err)
	}
	if err := inventory.RequireColumns(colSKU, colAvailable, colInbound); err != nil {
		return nil, fmt.Errorf("WFS库存报表格式错误: %w", err)
	}

	// 1. 销量
	var salesRows []model.Row
	for _, r := range sales.Rows {
		salesRows = append(salesRows, model.Row{Channel: Channel, SKU: r.Get(colSKU), Units: r.Int(colUnitsSold)})
	}
	// 2. 库存
	var invRows []model.Row
	for _, r := range inventory.Rows {
		invRows = append(invRows, model.Row{
			Channel:   Channel,
			SKU:       r.Get(colSKU),
			Inventory: r.Int(colAvailable),
			Inbound:   r.Int(colInbound),
		})
	}
	// 3. 外连接：两侧字段互不重叠，按键求和即可
	merged := model.Aggregate(append(model.Aggregate(salesRows), model.Aggregate(invRows)...))

	p.deps.Logger.WithFields(logrus.Fields{
		"sales_rows":     len(sales.Rows),
		"inventory_rows": len(inventory.Rows),
		"skus":           len(merged),
	}).Info("Walmart/WFS报表解析完成")
	adapter.LogMissingSKUs(p.deps, Name, merged)

	out := model.NewTable()
	out.RawRows = len(sales.Rows) + len(inventory.Rows)
	out.Rows = model.FillTemplate(Channel, p.deps.Catalog.SKUOrder(), merged)
	out.MarkChannel(Channel)
	return out, nil
}
