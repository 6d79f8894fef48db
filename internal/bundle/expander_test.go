package bundle

import (
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InventorySync/internal/config"
	"InventorySync/internal/utils/reportfile"
)

func newTestExpander(t *testing.T) (*Expander, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetOutput(io.Discard)
	mapping := config.NewMapping(map[string][]string{
		"1001":  {"1001"},
		"TRIO":  {"1001", "2001", "3001"},
		"5002":  {"5001", "5001"},
		"DUO":   {"1001", "2001"},
		"EMPTY": {},
	})
	return NewExpander(logger, "test", mapping), hook
}

func TestExpand_SingleSKU(t *testing.T) {
	e, _ := newTestExpander(t)
	shares, isBundle := e.Expand("1001", 4, decimal.RequireFromString("40"))
	assert.False(t, isBundle)
	require.Len(t, shares, 1)
	assert.Equal(t, "1001", shares[0].SKU)
	assert.Equal(t, int64(4), shares[0].Units)
	assert.True(t, shares[0].Revenue.Equal(decimal.NewFromInt(40)))
}

func TestExpand_DistinctMembersConserveRevenue(t *testing.T) {
	e, _ := newTestExpander(t)
	shares, isBundle := e.Expand("TRIO", 2, decimal.RequireFromString("100"))
	require.True(t, isBundle)
	require.Len(t, shares, 3)

	total := decimal.Zero
	for i, sku := range []string{"1001", "2001", "3001"} {
		assert.Equal(t, sku, shares[i].SKU)
		assert.Equal(t, int64(2), shares[i].Units)
		total = total.Add(shares[i].Revenue)
	}
	assert.Equal(t, "100.00", total.StringFixed(2))
}

func TestExpand_DuplicateMemberEmittedOnce(t *testing.T) {
	e, _ := newTestExpander(t)
	shares, isBundle := e.Expand("5002", 3, decimal.RequireFromString("30"))
	require.True(t, isBundle)
	require.Len(t, shares, 1)
	assert.Equal(t, "5001", shares[0].SKU)
	assert.Equal(t, int64(3), shares[0].Units)
	assert.True(t, shares[0].Revenue.Equal(decimal.NewFromInt(15)))
}

func TestExpand_UnknownKeyWarnsOnce(t *testing.T) {
	e, hook := newTestExpander(t)

	for i := 0; i < 3; i++ {
		shares, _ := e.Expand("NOPE", 1, decimal.NewFromInt(5))
		assert.Nil(t, shares)
	}
	e.Expand("EMPTY", 1, decimal.NewFromInt(5))
	shares, _ := e.Expand("  ", 1, decimal.NewFromInt(5))
	assert.Nil(t, shares)

	warnings := 0
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel {
			warnings++
		}
	}
	assert.Equal(t, 2, warnings)
	assert.Equal(t, []string{"EMPTY", "NOPE"}, e.Unknown())
}

func TestExpandInto_RecordsBundleStats(t *testing.T) {
	e, _ := newTestExpander(t)
	f := Fields{Key: "SKU", Qty: "Qty", Revenue: "Net"}

	e.ExpandInto("Shopify", &reportfile.Row{Data: map[string]string{"SKU": "DUO", "Qty": "2", "Net": "$20.00"}}, f)
	e.ExpandInto("Shopify", &reportfile.Row{Data: map[string]string{"SKU": "1001", "Qty": "5", "Net": "50"}}, f)
	e.ExpandInto("Shop App", &reportfile.Row{Data: map[string]string{"SKU": "5002", "Qty": "1", "Net": "9.99"}}, f)

	stats := e.Stats()
	require.Contains(t, stats, "Shopify")
	assert.Equal(t, int64(2), stats["Shopify"].Units)
	assert.Equal(t, "20.00", stats["Shopify"].Revenue.StringFixed(2))
	assert.Equal(t, int64(1), stats["Shop App"].Units)
	assert.Equal(t, "9.99", stats["Shop App"].Revenue.StringFixed(2))
}
