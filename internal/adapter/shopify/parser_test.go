package shopify

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InventorySync/internal/adapter"
	"InventorySync/internal/config"
	"InventorySync/internal/model"
	"InventorySync/internal/utils/reportfile"
)

func newParser() *Parser {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return New(adapter.NewDeps(logger, config.DefaultCatalog(), config.PrefixConfig{})).(*Parser)
}

func TestBucket(t *testing.T) {
	cases := map[string]string{
		"Online Store":         BucketShopify,
		" online store ":       BucketShopify,
		"TikTok":               BucketTikTokShopify,
		"TikTok Shop (US)":     BucketTikTokShopify,
		"Shop":                 BucketShopApp,
		"Facebook & Instagram": BucketOthers,
		"":                     BucketOthers,
	}
	for in, want := range cases {
		assert.Equal(t, want, Bucket(in), in)
	}
}

func TestParse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Shopify_sales_2025-01-02.csv")
	require.NoError(t, os.WriteFile(path, []byte("Product variant SKU,Quantity ordered,Net sales,Sales channel\n"+
		"5002,3,30.00,TikTok\n"+
		"1001,1,10.00,Online Store\n"+
		"1001,2,20.00,Shop\n"+
		"2001,1,5.00,Draft Orders\n"+
		"2001,0,0,Online Store\n"+
		"2001,1,8.00,Facebook & Instagram\n"), 0o644))

	out, err := newParser().Parse(model.FileSet{model.RolePrimary: {Path: path}})
	require.NoError(t, err)
	assert.Equal(t, []string{BucketShopify, BucketTikTokShopify, BucketShopApp, BucketOthers}, out.Channels)

	got := make(map[model.RowKey]model.Row)
	for _, r := range out.Rows {
		got[r.Key()] = r
	}
	require.Len(t, got, 4)

	tt := got[model.RowKey{Channel: BucketTikTokShopify, SKU: "5001"}]
	assert.Equal(t, int64(3), tt.Units)
	assert.Equal(t, "15.00", tt.Revenue.StringFixed(2))

	assert.Equal(t, int64(1), got[model.RowKey{Channel: BucketShopify, SKU: "1001"}].Units)
	assert.Equal(t, int64(2), got[model.RowKey{Channel: BucketShopApp, SKU: "1001"}].Units)
	// 草稿行（5.00）不计入
	assert.Equal(t, "8.00", got[model.RowKey{Channel: BucketOthers, SKU: "2001"}].Revenue.StringFixed(2))
	_, hasZero := got[model.RowKey{Channel: BucketShopify, SKU: "2001"}]
	assert.False(t, hasZero)

	st := out.Bundles[BucketTikTokShopify]
	require.NotNil(t, st)
	assert.Equal(t, int64(3), st.Units)
	assert.Equal(t, "30.00", st.Revenue.StringFixed(2))
	assert.Equal(t, int64(0), out.Bundles[BucketShopify].Units)
}

func TestParse_OnlyActiveBuckets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Shopify_sales_2025-01-02.csv")
	require.NoError(t, os.WriteFile(path, []byte("Product variant SKU,Quantity ordered,Net sales,Sales channel\n"+
		"1001,1,10.00,Online Store\n"), 0o644))

	out, err := newParser().Parse(model.FileSet{model.RolePrimary: {Path: path}})
	require.NoError(t, err)
	assert.Equal(t, []string{BucketShopify}, out.Channels)
	assert.NotContains(t, out.Bundles, BucketOthers)
}

func TestParse_MissingSalesChannelColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Shopify_sales_2025-01-02.csv")
	require.NoError(t, os.WriteFile(path, []byte("Product variant SKU,Quantity ordered,Net sales\n1001,1,1\n"), 0o644))

	_, err := newParser().Parse(model.FileSet{model.RolePrimary: {Path: path}})
	assert.ErrorIs(t, err, reportfile.ErrMissingColumn)
}
