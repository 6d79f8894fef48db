package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()

	order := c.SKUOrder()
	require.Len(t, order, 32)
	assert.Equal(t, "1001", order[0])
	assert.True(t, c.IsMasterSKU("PH90012P"))
	assert.False(t, c.IsMasterSKU("5002"))

	assert.Equal(t, []string{"DTC", "Reserve", "FBA", "AWD", "WFS"}, c.InventoryChannels())
	assert.True(t, c.IsSalesChannel("TikTok Shopify"))
	assert.False(t, c.IsSalesChannel("DTC"))
	assert.True(t, c.AmazonAllowed("3001s"))
	assert.False(t, c.AmazonAllowed("3001"))
}

func TestCatalog_Mappings(t *testing.T) {
	c := DefaultCatalog()

	skus, ok := c.Mapping(SourceShopify).Lookup("5002")
	require.True(t, ok)
	assert.Equal(t, []string{"5001", "5001"}, skus)

	// 主SKU自身映射
	skus, ok = c.Mapping(SourceWalmart).Lookup("4001")
	require.True(t, ok)
	assert.Equal(t, []string{"4001"}, skus)

	_, ok = c.Mapping(SourceAmazon).Lookup("UNKNOWN")
	assert.False(t, ok)

	sku, ok := c.FlexportSKU("2001")
	require.True(t, ok)
	assert.Equal(t, "2001", sku)
}

func TestCatalog_ReturnsCopies(t *testing.T) {
	c := DefaultCatalog()
	order := c.SKUOrder()
	order[0] = "mutated"
	chans := c.SalesChannels()
	chans[0] = "mutated"

	assert.Equal(t, "1001", c.SKUOrder()[0])
	assert.Equal(t, "Amazon", c.SalesChannels()[0])
}

func TestNewCatalog_FromConfig(t *testing.T) {
	// 内置组合装引用内置SKU，自定义SKU列表时四个映射表都要给出
	ab := []MappingEntry{{Key: "AB", SKUs: []string{"A", "B"}}}
	c, err := NewCatalog(CatalogConfig{
		SKUOrder:       []string{"A", "B"},
		FlexportItems:  []ItemMapping{{Item: "A-FX", SKU: "A"}},
		AmazonBundles:  ab,
		WalmartBundles: ab,
		TikTokBundles:  ab,
		ShopifyBundles: ab,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, c.SKUOrder())

	sku, ok := c.FlexportSKU("A-FX")
	require.True(t, ok)
	assert.Equal(t, "A", sku)

	skus, ok := c.Mapping(SourceShopify).Lookup("AB")
	require.True(t, ok)
	assert.Equal(t, []string{"A", "B"}, skus)
}

func TestNewCatalog_Invalid(t *testing.T) {
	cases := map[string]CatalogConfig{
		"duplicate sku":  {SKUOrder: []string{"A", "A"}},
		"empty sku":      {SKUOrder: []string{"A", ""}},
		"bad target":     {SKUOrder: []string{"A"}, AmazonBundles: []MappingEntry{{Key: "X", SKUs: []string{"Z"}}}},
		"empty entry":    {SKUOrder: []string{"A"}, TikTokBundles: []MappingEntry{{Key: "X"}}},
		"bad flexport":   {SKUOrder: []string{"A"}, FlexportItems: []ItemMapping{{Item: "I", SKU: "Z"}}},
		"default bundle": {SKUOrder: []string{"A"}}, // 内置组合装引用了不在该列表中的SKU
	}
	for name, cc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewCatalog(cc)
			assert.Error(t, err)
		})
	}
}
