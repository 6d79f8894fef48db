package config

import (
	"fmt"
)

// MappingSource 销售映射表来源
type MappingSource string

const (
	SourceAmazon  MappingSource = "amazon"
	SourceWalmart MappingSource = "walmart"
	SourceTikTok  MappingSource = "tiktok"
	SourceShopify MappingSource = "shopify"
)

// Catalog 启动时加载一次的只读目录：主SKU顺序、渠道顺序、映射表。
// 构造后不再修改，显式传入各解析器与流水线。
type Catalog struct {
	skuOrder          []string
	skuIndex          map[string]int
	amazonSKUs        map[string]struct{}
	inventoryChannels []string
	salesChannels     []string
	flexportItems     map[string]string
	mappings          map[MappingSource]Mapping
}

// defaultSKUOrder 主SKU（有序）
var defaultSKUOrder = []string{
	"1001", "PH1001", "10012P", "PH10012P",
	"2001", "PH2001", "20012P", "PH20012P",
	"3001", "PH3001", "30012P", "PH30012P",
	"4001", "PH4001", "40012P", "PH40012P",
	"5001", "PH5001", "50012P", "PH50012P",
	"6001", "PH6001", "60012P", "PH60012P",
	"8001", "PH8001", "80012P", "PH80012P",
	"9001", "PH9001", "90012P", "PH90012P",
}

// defaultAmazonSKUs Amazon 报表原始SKU（部分带尾缀 s）
var defaultAmazonSKUs = []string{
	"1001", "2001", "3001s", "4001s", "5001s", "6001s", "8001s", "9001",
	"PH1001s", "PH2001s", "PH3001s", "PH4001s", "PH5001s", "PH6001s", "PH8001s", "PH9001",
	"10012P", "20012P", "30012P", "40012P", "50012P", "60012P", "80012P", "90012P",
	"PH10012P", "PH20012P", "PH30012P", "PH40012P", "PH50012P", "PH80012P", "PH90012P",
}

var defaultInventoryChannels = []string{"DTC", "Reserve", "FBA", "AWD", "WFS"}

var defaultSalesChannels = []string{"Amazon", "Walmart", "TikTok Shop", "Shopify", "TikTok Shopify", "Shop App", "Others"}

// 各渠道的组合装（主SKU自身映射在 buildMapping 中补齐）
var (
	defaultAmazonBundles = []MappingEntry{
		{Key: "BNDL-1001-2001", SKUs: []string{"1001", "2001"}},
		{Key: "VARIETY-4PK", SKUs: []string{"1001", "2001", "3001", "4001"}},
		{Key: "3001s", SKUs: []string{"3001"}},
		{Key: "PH3001s", SKUs: []string{"PH3001"}},
	}
	defaultWalmartBundles = []MappingEntry{
		{Key: "BNDL-1001-2001", SKUs: []string{"1001", "2001"}},
		{Key: "WM-PH-DUO", SKUs: []string{"PH1001", "PH2001"}},
	}
	defaultTikTokBundles = []MappingEntry{
		{Key: "TT-BNDL-1001-2001", SKUs: []string{"1001", "2001"}},
		{Key: "TT-5001-2PK", SKUs: []string{"5001", "5001"}},
	}
	defaultShopifyBundles = []MappingEntry{
		{Key: "5002", SKUs: []string{"5001", "5001"}},
		{Key: "BNDL-1001-2001", SKUs: []string{"1001", "2001"}},
		{Key: "STARTER-KIT", SKUs: []string{"1001", "PH1001", "2001"}},
	}
)

// DefaultCatalog 内置目录
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(CatalogConfig{})
	if err != nil {
		// 内置值自洽，不会走到这里
		panic(err)
	}
	return c
}

// NewCatalog 用 YAML 配置构造目录，空字段回落到内置值；映射目标必须是主SKU
func NewCatalog(cc CatalogConfig) (*Catalog, error) {
	c := &Catalog{
		skuOrder:          orDefault(cc.SKUOrder, defaultSKUOrder),
		inventoryChannels: orDefault(cc.InventoryChannels, defaultInventoryChannels),
		salesChannels:     orDefault(cc.SalesChannels, defaultSalesChannels),
		amazonSKUs:        make(map[string]struct{}),
		flexportItems:     make(map[string]string),
		mappings:          make(map[MappingSource]Mapping),
	}

	c.skuIndex = make(map[string]int, len(c.skuOrder))
	for i, sku := range c.skuOrder {
		if sku == "" {
			return nil, fmt.Errorf("sku_order 第%d项为空", i)
		}
		if _, dup := c.skuIndex[sku]; dup {
			return nil, fmt.Errorf("sku_order 重复: %s", sku)
		}
		c.skuIndex[sku] = i
	}

	for _, sku := range orDefault(cc.AmazonSKUs, defaultAmazonSKUs) {
		c.amazonSKUs[sku] = struct{}{}
	}

	// Flexport：主SKU自身映射 + 配置项
	for _, sku := range c.skuOrder {
		c.flexportItems[sku] = sku
	}
	for _, it := range cc.FlexportItems {
		if !c.IsMasterSKU(it.SKU) {
			return nil, fmt.Errorf("flexport_items %s → %s 不是主SKU", it.Item, it.SKU)
		}
		c.flexportItems[it.Item] = it.SKU
	}

	sources := []struct {
		source   MappingSource
		entries  []MappingEntry
		defaults []MappingEntry
	}{
		{SourceAmazon, cc.AmazonBundles, defaultAmazonBundles},
		{SourceWalmart, cc.WalmartBundles, defaultWalmartBundles},
		{SourceTikTok, cc.TikTokBundles, defaultTikTokBundles},
		{SourceShopify, cc.ShopifyBundles, defaultShopifyBundles},
	}
	for _, s := range sources {
		entries := s.entries
		if len(entries) == 0 {
			entries = s.defaults
		}
		m, err := c.buildMapping(entries)
		if err != nil {
			return nil, fmt.Errorf("%s 映射表: %w", s.source, err)
		}
		c.mappings[s.source] = NewMapping(m)
	}
	return c, nil
}

func (c *Catalog) buildMapping(entries []MappingEntry) (map[string][]string, error) {
	m := make(map[string][]string, len(c.skuOrder)+len(entries))
	for _, sku := range c.skuOrder {
		m[sku] = []string{sku}
	}
	for _, e := range entries {
		if e.Key == "" || len(e.SKUs) == 0 {
			return nil, fmt.Errorf("映射项不完整: %q", e.Key)
		}
		for _, sku := range e.SKUs {
			if !c.IsMasterSKU(sku) {
				return nil, fmt.Errorf("%s → %s 不是主SKU", e.Key, sku)
			}
		}
		m[e.Key] = append([]string(nil), e.SKUs...)
	}
	return m, nil
}

func orDefault(v, def []string) []string {
	if len(v) == 0 {
		v = def
	}
	return append([]string(nil), v...)
}

// SKUOrder 主SKU顺序（副本）
func (c *Catalog) SKUOrder() []string {
	return append([]string(nil), c.skuOrder...)
}

// IsMasterSKU 是否主SKU
func (c *Catalog) IsMasterSKU(sku string) bool {
	_, ok := c.skuIndex[sku]
	return ok
}

// AmazonAllowed Amazon 报表原始SKU是否在白名单内
func (c *Catalog) AmazonAllowed(raw string) bool {
	_, ok := c.amazonSKUs[raw]
	return ok
}

// InventoryChannels 库存渠道顺序（副本）
func (c *Catalog) InventoryChannels() []string {
	return append([]string(nil), c.inventoryChannels...)
}

// SalesChannels 销售渠道顺序（副本）
func (c *Catalog) SalesChannels() []string {
	return append([]string(nil), c.salesChannels...)
}

// IsInventoryChannel 是否库存渠道
func (c *Catalog) IsInventoryChannel(ch string) bool {
	return contains(c.inventoryChannels, ch)
}

// IsSalesChannel 是否销售渠道
func (c *Catalog) IsSalesChannel(ch string) bool {
	return contains(c.salesChannels, ch)
}

// Mapping 外部标识 → 主SKU列表（只读视图）
type Mapping struct {
	m map[string][]string
}

// NewMapping 直接由 map 构造（复制一份）
func NewMapping(m map[string][]string) Mapping {
	cp := make(map[string][]string, len(m))
	for k, v := range m {
		cp[k] = append([]string(nil), v...)
	}
	return Mapping{m: cp}
}

// Lookup 查找映射，返回的切片不可修改
func (mp Mapping) Lookup(key string) ([]string, bool) {
	skus, ok := mp.m[key]
	return skus, ok
}

// Mapping 某来源的映射表
func (c *Catalog) Mapping(source MappingSource) Mapping {
	return c.mappings[source]
}

// FlexportSKU Flexport 商品编码 → 主SKU
func (c *Catalog) FlexportSKU(item string) (string, bool) {
	sku, ok := c.flexportItems[item]
	return sku, ok
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
