package saleor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilupskalvis/shopsync/internal/models"
)

// emptySections answers every list query with no nodes
func emptySections(f *fakeSaleor) {
	f.on("Shop", func(map[string]any) any { return map[string]any{"shop": map[string]any{}} })
	f.on("Channels", func(map[string]any) any { return map[string]any{"channels": []any{}} })
	for op, field := range map[string]string{
		"TaxClasses":    "taxClasses",
		"Attributes":    "attributes",
		"ProductTypes":  "productTypes",
		"PageTypes":     "pageTypes",
		"Categories":    "categories",
		"Warehouses":    "warehouses",
		"ShippingZones": "shippingZones",
		"Products":      "products",
		"Collections":   "collections",
		"Menus":         "menus",
		"Vouchers":      "vouchers",
	} {
		field := field
		f.on(op, func(map[string]any) any { return map[string]any{field: page()} })
	}
}

func TestRetriever_EmptyInstance(t *testing.T) {
	f := newFakeSaleor(t)
	emptySections(f)

	cfg, err := NewRetriever(f.client(), nil).RetrieveWithoutSaving(context.Background())
	require.NoError(t, err)
	require.NotNil(t, cfg.Shop)
	assert.Empty(t, cfg.Channels)
	assert.Empty(t, cfg.Products)
	assert.Len(t, f.operations(), 13)
}

func TestRetriever_MapsSections(t *testing.T) {
	f := newFakeSaleor(t)
	emptySections(f)
	f.on("Shop", func(map[string]any) any {
		return map[string]any{"shop": map[string]any{"headerText": "Demo", "defaultWeightUnit": "KG", "limitQuantityPerCheckout": 50}}
	})
	f.on("Channels", func(map[string]any) any {
		return map[string]any{"channels": []any{map[string]any{
			"id":            "Q2hhbm5lbDox", "name": "Default", "slug": "default-channel", "currencyCode": "USD",
			"isActive":      true, "defaultCountry": map[string]any{"code": "US"},
			"stockSettings": map[string]any{"allocationStrategy": "PRIORITIZE_HIGH_STOCK"},
		}}}
	})
	f.on("Categories", func(map[string]any) any {
		return map[string]any{"categories": page(
			map[string]any{"id": "c1", "name": "Apparel", "slug": "apparel", "description": `{"blocks":[{"type":"paragraph","data":{"text":"Clothes"}}]}`},
			map[string]any{"id": "c2", "name": "Shirts", "slug": "shirts", "parent": map[string]any{"id": "c1", "slug": "apparel"}},
			map[string]any{"id": "c3", "name": "Orphan", "slug": "orphan", "parent": map[string]any{"id": "gone", "slug": "gone"}},
		)}
	})
	f.on("Products", func(map[string]any) any {
		return map[string]any{"products": page(map[string]any{
			"id":          "p1", "name": "Tee", "slug": "tee",
			"productType": map[string]any{"name": "Shirt"},
			"category":    map[string]any{"slug": "shirts"},
			"attributes": []any{map[string]any{
				"attribute": map[string]any{"name": "Color"},
				"values":    []any{map[string]any{"name": "Red"}},
			}},
			"channelListings": []any{map[string]any{"channel": map[string]any{"slug": "default-channel"}, "isPublished": true}},
			"variants": []any{map[string]any{
				"id":              "v1", "name": "Tee S", "sku": "TEE-S", "weight": map[string]any{"value": 0.2},
				"channelListings": []any{map[string]any{"channel": map[string]any{"slug": "default-channel"}, "price": map[string]any{"amount": 19.99}}},
			}},
		})}
	})

	cfg, err := NewRetriever(f.client(), nil).RetrieveWithoutSaving(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Demo", cfg.Shop.HeaderText)
	require.NotNil(t, cfg.Shop.LimitQuantityPerCheckout)
	assert.Equal(t, 50, *cfg.Shop.LimitQuantityPerCheckout)

	require.Len(t, cfg.Channels, 1)
	ch := cfg.Channels[0]
	assert.Equal(t, "default-channel", ch.Slug)
	assert.Equal(t, "US", ch.DefaultCountry)
	assert.True(t, *ch.IsActive)
	assert.Equal(t, "PRIORITIZE_HIGH_STOCK", ch.Settings.AllocationStrategy)

	require.Len(t, cfg.Categories, 2)
	assert.Equal(t, "apparel", cfg.Categories[0].Slug)
	assert.Equal(t, "Clothes", cfg.Categories[0].Description)
	require.Len(t, cfg.Categories[0].Subcategories, 1)
	assert.Equal(t, "shirts", cfg.Categories[0].Subcategories[0].Slug)
	assert.Equal(t, "orphan", cfg.Categories[1].Slug)

	require.Len(t, cfg.Products, 1)
	p := cfg.Products[0]
	assert.Equal(t, "Shirt", p.ProductType)
	assert.Equal(t, "shirts", p.Category)
	assert.Equal(t, []*models.ProductAttributeValue{{Name: "Color", Values: []string{"Red"}}}, p.Attributes)
	require.Len(t, p.Variants, 1)
	assert.Equal(t, 0.2, p.Variants[0].Weight)
	assert.Equal(t, 19.99, p.Variants[0].Channels[0].Price)
}

func TestRetriever_FollowsPagination(t *testing.T) {
	f := newFakeSaleor(t)
	emptySections(f)
	f.on("Warehouses", func(vars map[string]any) any {
		if vars["after"] == nil {
			return map[string]any{"warehouses": map[string]any{
				"edges":    []any{map[string]any{"node": map[string]any{"id": "w1", "name": "A", "slug": "a"}}},
				"pageInfo": map[string]any{"hasNextPage": true, "endCursor": "cursor-1"},
			}}
		}
		assert.Equal(t, "cursor-1", vars["after"])
		return map[string]any{"warehouses": page(map[string]any{"id": "w2", "name": "B", "slug": "b"})}
	})

	cfg, err := NewRetriever(f.client(), nil).RetrieveWithoutSaving(context.Background())
	require.NoError(t, err)
	require.Len(t, cfg.Warehouses, 2)
	assert.Equal(t, "a", cfg.Warehouses[0].Slug)
	assert.Equal(t, "b", cfg.Warehouses[1].Slug)
	assert.Len(t, f.callsTo("Warehouses"), 2)
}

func TestRetriever_SectionFailure(t *testing.T) {
	f := newFakeSaleor(t)
	emptySections(f)
	f.mu.Lock()
	delete(f.handlers, "Menus")
	f.mu.Unlock()

	_, err := NewRetriever(f.client(), nil).RetrieveWithoutSaving(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retrieve menus")
}

func TestRichTextRoundTrip(t *testing.T) {
	assert.Equal(t, "", richText(""))
	assert.Equal(t, "First\nSecond", plainText(richText("First\nSecond")))
	assert.Equal(t, "not json", plainText("not json"))
	assert.Equal(t, "", plainText("null"))
}
