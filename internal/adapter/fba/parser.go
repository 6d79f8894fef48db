package fba

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"InventorySync/internal/adapter"
	"InventorySync/internal/interfaces"
	"InventorySync/internal/model"
)

const (
	Name    = "FBA"
	Channel = "FBA"

	colSKU       = "Merchant SKU"
	colUnitsSold = "Units Sold Last 30 Days"
	colAvailable = "Available"
	colTransfer  = "FC transfer"
	colInbound   = "Inbound"
)

// Parser Amazon FBA 库存报表（单文件）
type Parser struct {
	deps *adapter.Deps
}

func New(deps *adapter.Deps) interfaces.ChannelParser {
	return &Parser{deps: deps}
}

func (p *Parser) GetName() string { return Name }

func (p *Parser) Channels() []string { return []string{Channel} }

func (p *Parser) RequiredFiles() []model.FileSpec {
	return []model.FileSpec{{Role: model.RolePrimary, Prefix: p.deps.Prefixes.FBA}}
}

// Parse 白名单过滤 → 去尾缀s → 库存=Available+FC transfer → 按SKU求和 → 主SKU模板补零
func (p *Parser) Parse(files model.FileSet) (*model.Table, error) {
	t, err := p.deps.Loader.Load(files.Path(model.RolePrimary))
	if err != nil {
		return nil, err
	}
	if err := t.RequireColumns(colSKU, colUnitsSold, colAvailable, colTransfer, colInbound); err != nil {
		return nil, fmt.Errorf("FBA报表格式错误: %w", err)
	}

	var rows []model.Row
	for _, r := range t.Rows {
		sku, ok := adapter.NormalizeAmazonSKU(p.deps, r.Get(colSKU))
		if !ok {
			continue
		}
		rows = append(rows, model.Row{
			Channel:   Channel,
			SKU:       sku,
			Units:     r.Int(colUnitsSold),
			Inventory: r.Int(colAvailable) + r.Int(colTransfer),
			Inbound:   r.Int(colInbound),
		})
	}
	p.deps.Logger.WithFields(logrus.Fields{
		"raw_rows": len(t.Rows),
		"filtered": len(rows),
	}).Info("FBA报表解析完成")
	adapter.LogMissingSKUs(p.deps, Name, rows)

	out := model.NewTable()
	out.RawRows = len(t.Rows)
	out.Rows = model.FillTemplate(Channel, p.deps.Catalog.SKUOrder(), rows)
	out.MarkChannel(Channel)
	return out, nil
}
