package walmart

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"InventorySync/internal/adapter"
	"InventorySync/internal/bundle"
	"InventorySync/internal/config"
	"InventorySync/internal/interfaces"
	"InventorySync/internal/model"
	"InventorySync/internal/utils/reportfile"
)

const (
	Name    = "Walmart"
	Channel = "Walmart"

	// 导出文件表头位置与分隔符不固定，按标记列探测
	headerMarker  = "Item ID"
	sniffMaxLines = 20
	fallbackSkip  = 2
)

var fields = bundle.Fields{Key: "SKU", Qty: "Units Sold", Revenue: "Item Sales"}

// Parser Walmart 商品销售报表
type Parser struct {
	deps *adapter.Deps
}

func New(deps *adapter.Deps) interfaces.ChannelParser {
	return &Parser{deps: deps}
}

func (p *Parser) GetName() string { return Name }

func (p *Parser) Channels() []string { return []string{Channel} }

func (p *Parser) RequiredFiles() []model.FileSpec {
	return []model.FileSpec{{Role: model.RolePrimary, Prefix: p.deps.Prefixes.WalmartItems}}
}

func (p *Parser) Parse(files model.FileSet) (*model.Table, error) {
	path := files.Path(model.RolePrimary)

	// 1. 探测表头行与分隔符
	sniff, err := reportfile.SniffHeader(path, headerMarker, sniffMaxLines, fallbackSkip)
	if err != nil {
		return nil, err
	}
	p.deps.Logger.WithFields(logrus.Fields{
		"skip_rows": sniff.SkipRows,
		"delimiter": string(sniff.Delimiter),
		"found":     sniff.Found,
	}).Debug("Walmart表头探测完成")
	if !sniff.Found {
		p.deps.Logger.WithField("fallback_skip", fallbackSkip).Warn("未找到Walmart表头标记，使用默认跳过行数")
	}

	// 2. 加载
	t, err := p.deps.Loader.Load(path, reportfile.WithSkipRows(sniff.SkipRows), reportfile.WithDelimiter(sniff.Delimiter))
	if err != nil {
		return nil, err
	}
	if err := t.RequireColumns(fields.Key, fields.Qty, fields.Revenue); err != nil {
		return nil, fmt.Errorf("Walmart销售报表格式错误: %w", err)
	}
	return adapter.ParseSalesTable(p.deps, t, adapter.SalesSource{
		Channel: Channel,
		Mapping: config.SourceWalmart,
		Fields:  fields,
	}), nil
}
