package shopify

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"InventorySync/internal/adapter"
	"InventorySync/internal/bundle"
	"InventorySync/internal/config"
	"InventorySync/internal/interfaces"
	"InventorySync/internal/model"
	"InventorySync/internal/utils/reportfile"
)

const (
	Name = "Shopify"

	// 分桶后的渠道
	BucketShopify       = "Shopify"
	BucketTikTokShopify = "TikTok Shopify"
	BucketShopApp       = "Shop App"
	BucketOthers        = "Others"

	colSalesChannel = "Sales channel"
)

var fields = bundle.Fields{Key: "Product variant SKU", Qty: "Quantity ordered", Revenue: "Net sales"}

// Parser Shopify 销售报表：一个文件按 Sales channel 拆成多个渠道
type Parser struct {
	deps *adapter.Deps
}

func New(deps *adapter.Deps) interfaces.ChannelParser {
	return &Parser{deps: deps}
}

func (p *Parser) GetName() string { return Name }

func (p *Parser) Channels() []string {
	return []string{BucketShopify, BucketTikTokShopify, BucketShopApp, BucketOthers}
}

func (p *Parser) RequiredFiles() []model.FileSpec {
	return []model.FileSpec{{Role: model.RolePrimary, Prefix: p.deps.Prefixes.ShopifySales}}
}

// Bucket 原始 Sales channel → 渠道（大小写不敏感）
//
//	"Online Store"   → Shopify
//	含 "tiktok"       → TikTok Shopify
//	"Shop"           → Shop App
//	其它（含空）       → Others
func Bucket(label string) string {
	l := strings.ToLower(strings.TrimSpace(label))
	switch {
	case l == "online store":
		return BucketShopify
	case strings.Contains(l, "tiktok"):
		return BucketTikTokShopify
	case l == "shop":
		return BucketShopApp
	default:
		return BucketOthers
	}
}

// isDraft 草稿订单不计收入
func isDraft(row *reportfile.Row) bool {
	return strings.Contains(strings.ToLower(row.Get(colSalesChannel)), "draft")
}

// Parse 过滤草稿行与"数量=0且净销售额=0"的行 → 分桶 → 组合装拆分 → 按(SKU,桶)求和
func (p *Parser) Parse(files model.FileSet) (*model.Table, error) {
	t, err := p.deps.Loader.Load(files.Path(model.RolePrimary))
	if err != nil {
		return nil, err
	}
	if err := t.RequireColumns(fields.Key, fields.Qty, fields.Revenue, colSalesChannel); err != nil {
		return nil, fmt.Errorf("Shopify销售报表格式错误: %w", err)
	}

	exp := bundle.NewExpander(p.deps.Logger, Name, p.deps.Catalog.Mapping(config.SourceShopify))
	out := model.NewTable()
	out.RawRows = len(t.Rows)

	var rows []model.Row
	drafts, zeros := 0, 0
	for _, r := range t.Rows {
		if isDraft(r) {
			drafts++
			continue
		}
		if r.Int(fields.Qty) == 0 && r.Decimal(fields.Revenue).IsZero() {
			zeros++
			continue
		}
		bucket := Bucket(r.Get(colSalesChannel))
		for _, s := range exp.ExpandInto(bucket, r, fields) {
			rows = append(rows, model.Row{Channel: bucket, SKU: s.SKU, Units: s.Units, Revenue: s.Revenue})
		}
	}
	// (SKU, 桶) 联合键
	rows = model.Aggregate(rows)

	p.deps.Logger.WithFields(logrus.Fields{
		"raw_rows": len(t.Rows),
		"drafts":   drafts,
		"zero":     zeros,
		"rows":     len(rows),
		"unmapped": len(exp.Unknown()),
	}).Info("Shopify销售报表解析完成")

	stats := exp.Stats()
	for _, bucket := range p.Channels() {
		var bucketRows []model.Row
		for _, r := range rows {
			if r.Channel == bucket {
				bucketRows = append(bucketRows, r)
			}
		}
		if len(bucketRows) == 0 {
			continue
		}
		adapter.LogMissingSKUs(p.deps, bucket, bucketRows)
		out.Rows = append(out.Rows, bucketRows...)
		out.MarkChannel(bucket)
		out.Bundles[bucket] = adapter.BundleStatFor(stats, bucket)
	}
	return out, nil
}
