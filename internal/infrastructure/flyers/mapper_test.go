package flyers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapItem(t *testing.T) {
	valid := flyerItem{
		Name:          "Lait 2% 2L",
		Merchant:      "IGA",
		CurrentPrice:  "4.50",
		OriginalPrice: "5.99",
		ValidFrom:     "2026-08-24",
		ValidTo:       "2026-08-30",
		FlyerID:       789,
		Category:      "Produits laitiers",
	}

	t.Run("full item", func(t *testing.T) {
		record, ok := mapItem(valid)

		require.True(t, ok)
		assert.Equal(t, "Lait 2% 2L", record.ProductName)
		assert.Equal(t, "IGA", record.StoreName)
		assert.Equal(t, 4.50, record.SalePrice)
		assert.Equal(t, 5.99, record.RegularPrice)
		assert.Equal(t, "789", record.SourceID)
		assert.Equal(t, "Produits laitiers", record.Category)
		assert.Equal(t, time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC), record.ValidFrom)
		assert.Equal(t, time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC), record.ValidTo)
	})

	t.Run("regular price below sale is dropped", func(t *testing.T) {
		item := valid
		item.OriginalPrice = "3.00"

		record, ok := mapItem(item)
		require.True(t, ok)
		assert.Zero(t, record.RegularPrice)
	})

	t.Run("unparseable regular price is dropped", func(t *testing.T) {
		item := valid
		item.OriginalPrice = "2/5.00"

		record, ok := mapItem(item)
		require.True(t, ok)
		assert.Zero(t, record.RegularPrice)
	})

	t.Run("missing flyer id leaves SourceID empty", func(t *testing.T) {
		item := valid
		item.FlyerID = 0

		record, ok := mapItem(item)
		require.True(t, ok)
		assert.Empty(t, record.SourceID)
	})

	rejects := []struct {
		name   string
		mutate func(*flyerItem)
	}{
		{"empty name", func(i *flyerItem) { i.Name = "" }},
		{"unknown merchant", func(i *flyerItem) { i.Merchant = "Costco" }},
		{"unparseable sale price", func(i *flyerItem) { i.CurrentPrice = "2/5.00" }},
		{"zero sale price", func(i *flyerItem) { i.CurrentPrice = "0" }},
		{"negative sale price", func(i *flyerItem) { i.CurrentPrice = "-1.50" }},
		{"bad valid_from", func(i *flyerItem) { i.ValidFrom = "24-08-2026" }},
		{"bad valid_to", func(i *flyerItem) { i.ValidTo = "" }},
	}
	for _, tt := range rejects {
		t.Run(tt.name, func(t *testing.T) {
			item := valid
			tt.mutate(&item)

			_, ok := mapItem(item)
			assert.False(t, ok)
		})
	}
}

func TestMapItems(t *testing.T) {
	today := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	item := func(name string, validTo string) flyerItem {
		return flyerItem{
			Name:         name,
			Merchant:     "Metro",
			CurrentPrice: "1.99",
			ValidFrom:    "2026-08-24",
			ValidTo:      validTo,
		}
	}

	t.Run("expired items are dropped", func(t *testing.T) {
		records := mapItems([]flyerItem{
			item("current", "2026-08-30"),
			item("expired", "2026-08-27"),
		}, today, 10)

		require.Len(t, records, 1)
		assert.Equal(t, "current", records[0].ProductName)
	})

	t.Run("expiry day is still active", func(t *testing.T) {
		records := mapItems([]flyerItem{item("last day", "2026-08-28")}, today, 10)
		assert.Len(t, records, 1)
	})

	t.Run("output is capped at limit", func(t *testing.T) {
		items := make([]flyerItem, 10)
		for i := range items {
			items[i] = item("bulk", "2026-08-30")
		}

		records := mapItems(items, today, 3)
		assert.Len(t, records, 3)
	})

	t.Run("empty input", func(t *testing.T) {
		records := mapItems(nil, today, 10)
		assert.Empty(t, records)
	})
}
