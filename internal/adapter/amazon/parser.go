package amazon

import (
	"fmt"

	"InventorySync/internal/adapter"
	"InventorySync/internal/bundle"
	"InventorySync/internal/config"
	"InventorySync/internal/interfaces"
	"InventorySync/internal/model"
)

const (
	Name    = "Amazon"
	Channel = "Amazon"
)

var fields = bundle.Fields{Key: "SKU", Qty: "Units Ordered", Revenue: "Ordered Product Sales"}

// Parser Amazon 业务报表（按SKU的销量与销售额）
type Parser struct {
	deps *adapter.Deps
}

func New(deps *adapter.Deps) interfaces.ChannelParser {
	return &Parser{deps: deps}
}

func (p *Parser) GetName() string { return Name }

func (p *Parser) Channels() []string { return []string{Channel} }

func (p *Parser) RequiredFiles() []model.FileSpec {
	return []model.FileSpec{{Role: model.RolePrimary, Prefix: p.deps.Prefixes.AmazonSales}}
}

func (p *Parser) Parse(files model.FileSet) (*model.Table, error) {
	t, err := p.deps.Loader.Load(files.Path(model.RolePrimary))
	if err != nil {
		return nil, err
	}
	if err := t.RequireColumns(fields.Key, fields.Qty, fields.Revenue); err != nil {
		return nil, fmt.Errorf("Amazon销售报表格式错误: %w", err)
	}
	return adapter.ParseSalesTable(p.deps, t, adapter.SalesSource{
		Channel: Channel,
		Mapping: config.SourceAmazon,
		Fields:  fields,
	}), nil
}
