package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InventorySync/internal/config"
	"InventorySync/internal/model"
)

func validInventory() model.InventoryRecord {
	return model.InventoryRecord{
		ID:           "20250102_FBA_1001",
		SKUChannelID: "FBA_1001",
		ReportDate:   model.NewDate(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
		SKU:          "1001",
		Channel:      "FBA",
	}
}

func validSales() model.SalesRecord {
	return model.SalesRecord{
		ID:           "20250102_Amazon_Bundles",
		SKUChannelID: "Amazon_Bundles",
		ReportDate:   model.NewDate(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
		SKU:          model.BundlesSKU,
		Channel:      "Amazon",
		Revenue:      12.5,
	}
}

func TestValidator(t *testing.T) {
	v := NewValidator(config.DefaultCatalog())

	require.NoError(t, v.Validate([]model.Record{validInventory(), validSales()}))

	cases := []struct {
		name   string
		record model.Record
		field  string
		rule   string
	}{
		{"bundles not allowed in inventory", func() model.Record { r := validInventory(); r.SKU = model.BundlesSKU; return r }(), "sku", "master_sku"},
		{"sales channel in inventory", func() model.Record { r := validInventory(); r.Channel = "Amazon"; return r }(), "channel", "inventory_channel"},
		{"missing report date", func() model.Record { r := validInventory(); r.ReportDate = model.Date{}; return r }(), "reportDate", "required"},
		{"negative inbound", func() model.Record { r := validInventory(); r.Inbound = -1; return r }(), "inbound", "gte"},
		{"unknown sales sku", func() model.Record { r := validSales(); r.SKU = "5002"; return r }(), "sku", "sales_sku"},
		{"inventory channel in sales", func() model.Record { r := validSales(); r.Channel = "DTC"; return r }(), "channel", "sales_channel"},
		{"negative revenue", func() model.Record { r := validSales(); r.Revenue = -0.01; return r }(), "revenue", "gte"},
		{"missing id", func() model.Record { r := validSales(); r.ID = ""; return r }(), "id", "required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Validate([]model.Record{validInventory(), tc.record})
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, 1, verr.Index)
			assert.Equal(t, tc.field, verr.Field)
			assert.Equal(t, tc.rule, verr.Rule)
		})
	}
}

func TestOrderChannels(t *testing.T) {
	c := config.DefaultCatalog()
	got := orderChannels(c, model.ReportSales, []string{"Others", "Zeta", "Shopify", "Alpha", "Amazon"})
	assert.Equal(t, []string{"Amazon", "Shopify", "Others", "Alpha", "Zeta"}, got)

	got = orderChannels(c, model.ReportInventory, []string{"WFS", "Reserve", "DTC"})
	assert.Equal(t, []string{"DTC", "Reserve", "WFS"}, got)
}
