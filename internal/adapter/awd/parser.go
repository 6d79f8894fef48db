package awd

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"InventorySync/internal/adapter"
	"InventorySync/internal/interfaces"
	"InventorySync/internal/model"
	"InventorySync/internal/utils/reportfile"
)

const (
	Name    = "AWD"
	Channel = "AWD"

	// 表头前有两行说明
	preambleRows = 2

	colSKU       = "SKU"
	colAvailable = "Available in AWD (units)"
	colReserved  = "Reserved in AWD (units)"
	colInbound   = "Inbound to AWD (units)"
)

// Parser Amazon Warehousing & Distribution 库存报表
type Parser struct {
	deps *adapter.Deps
}

func New(deps *adapter.Deps) interfaces.ChannelParser {
	return &Parser{deps: deps}
}

func (p *Parser) GetName() string { return Name }

func (p *Parser) Channels() []string { return []string{Channel} }

func (p *Parser) RequiredFiles() []model.FileSpec {
	return []model.FileSpec{{Role: model.RolePrimary, Prefix: p.deps.Prefixes.AWD}}
}

// Parse 库存=可用+预留，没有销量列（unitsSold 恒为0）
func (p *Parser) Parse(files model.FileSet) (*model.Table, error) {
	t, err := p.deps.Loader.Load(files.Path(model.RolePrimary), reportfile.WithSkipRows(preambleRows))
	if err != nil {
		return nil, err
	}
	if err := t.RequireColumns(colSKU, colAvailable, colReserved, colInbound); err != nil {
		return nil, fmt.Errorf("AWD报表格式错误: %w", err)
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
			Inventory: r.Int(colAvailable) + r.Int(colReserved),
			Inbound:   r.Int(colInbound),
		})
	}
	p.deps.Logger.WithFields(logrus.Fields{
		"raw_rows": len(t.Rows),
		"filtered": len(rows),
	}).Info("AWD报表解析完成")
	adapter.LogMissingSKUs(p.deps, Name, rows)

	out := model.NewTable()
	out.RawRows = len(t.Rows)
	out.Rows = model.FillTemplate(Channel, p.deps.Catalog.SKUOrder(), rows)
	out.MarkChannel(Channel)
	return out, nil
}
