package diff

import (
	"testing"

	"github.com/kilupskalvis/shopsync/internal/apperr"
	"github.com/kilupskalvis/shopsync/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func intPtr(i int) *int { return &i }

// sampleConfig returns a configuration touching every section
func sampleConfig() *models.Configuration {
	return &models.Configuration{
		Shop: &models.ShopSettings{HeaderText: "Welcome", TrackInventoryByDefault: boolPtr(true)},
		Channels: []*models.Channel{
			{Name: "Default", Slug: "default-channel", CurrencyCode: "USD", DefaultCountry: "US"},
		},
		TaxClasses: []*models.TaxClass{
			{Name: "Standard", CountryRates: []*models.CountryRate{{CountryCode: "US", Rate: 8}}},
		},
		Attributes: []*models.Attribute{
			{Name: "Color", Slug: "color", Type: models.AttributeScopeProduct, InputType: "DROPDOWN",
				Values: []*models.AttributeValue{{Name: "Red"}, {Name: "Blue"}}},
		},
		ProductTypes: []*models.ProductType{
			{Name: "T-Shirt", IsShippingRequired: boolPtr(true),
				ProductAttributes: []*models.AttributeRef{{Attribute: "Color"}}},
		},
		PageTypes: []*models.PageType{
			{Name: "Blog Post", Attributes: []*models.AttributeRef{{Name: "Author", InputType: "PLAIN_TEXT"}}},
		},
		Categories: []*models.Category{
			{Name: "Apparel", Slug: "apparel", Subcategories: []*models.Category{{Name: "Shirts", Slug: "shirts"}}},
		},
		Warehouses: []*models.Warehouse{
			{Name: "Main", Slug: "main", Address: &models.Address{StreetAddress1: "1 Main St", City: "Springfield", Country: "US"}},
		},
		ShippingZones: []*models.ShippingZone{
			{Name: "US", Countries: []string{"US"}, Warehouses: []string{"main"},
				ShippingMethods: []*models.ShippingMethod{{Name: "Standard", Type: "PRICE", Price: 5}}},
		},
		Products: []*models.Product{
			{Name: "Tee", Slug: "tee", ProductType: "T-Shirt", Category: "shirts",
				Variants: []*models.ProductVariant{{Name: "Tee S", Sku: "TEE-S",
					Channels: []*models.VariantListing{{Channel: "default-channel", Price: 20}}}}},
		},
		Collections: []*models.Collection{
			{Name: "Summer", Slug: "summer", Products: []string{"tee"}},
		},
		Menus: []*models.Menu{
			{Name: "Navbar", Slug: "navbar", Items: []*models.MenuItem{{Name: "Shirts", Category: "shirts"}}},
		},
		Vouchers: []*models.Voucher{
			{Name: "Welcome", Code: "WELCOME10", DiscountValueType: "PERCENTAGE", UsageLimit: intPtr(100),
				Channels: []*models.VoucherListing{{Channel: "default-channel", DiscountValue: 10}}},
		},
	}
}

func assertTotals(t *testing.T, s *models.DiffSummary) {
	t.Helper()
	assert.Equal(t, s.Creates+s.Updates+s.Deletes, s.TotalChanges)
	assert.Equal(t, len(s.Results), s.TotalChanges)
	counts := map[models.Operation]int{}
	for _, r := range s.Results {
		counts[r.Operation]++
	}
	assert.Equal(t, counts[models.OperationCreate], s.Creates)
	assert.Equal(t, counts[models.OperationUpdate], s.Updates)
	assert.Equal(t, counts[models.OperationDelete], s.Deletes)
}

func TestCompare_IdenticalConfigurationsHaveNoChanges(t *testing.T) {
	summary, err := Compare(sampleConfig(), sampleConfig())
	require.NoError(t, err)

	assert.Equal(t, 0, summary.TotalChanges)
	assert.Empty(t, summary.Results)
	assert.False(t, summary.HasChanges())
}

func TestCompare_EmptyRemoteCreatesEverything(t *testing.T) {
	summary, err := Compare(sampleConfig(), models.Empty())
	require.NoError(t, err)

	assertTotals(t, summary)
	assert.Equal(t, 13, summary.Creates)
	assert.Zero(t, summary.Updates)
	assert.Zero(t, summary.Deletes)
	for _, r := range summary.Results {
		assert.Nil(t, r.Current, "%s %s", r.EntityType, r.EntityName)
		assert.NotNil(t, r.Desired)
	}
}

func TestCompare_EmptyLocalDeletesCollections(t *testing.T) {
	summary, err := Compare(models.Empty(), sampleConfig())
	require.NoError(t, err)

	assertTotals(t, summary)
	// shop settings are never deleted
	assert.Equal(t, 12, summary.Deletes)
	assert.False(t, summary.HasEntityType(models.EntityShopSettings))
	for _, r := range summary.Results {
		assert.Nil(t, r.Desired)
		assert.NotNil(t, r.Current)
	}
}

func TestCompare_ResultsFollowSectionOrder(t *testing.T) {
	summary, err := Compare(sampleConfig(), nil)
	require.NoError(t, err)

	var order []models.EntityType
	for _, r := range summary.Results {
		order = append(order, r.EntityType)
	}
	assert.Equal(t, models.AllEntityTypes, order)
}

func TestCompare_CreateDeleteSymmetry(t *testing.T) {
	local := &models.Configuration{Channels: []*models.Channel{
		{Name: "Shared", Slug: "shared", CurrencyCode: "USD", DefaultCountry: "US"},
		{Name: "Local Only", Slug: "local-only", CurrencyCode: "USD", DefaultCountry: "US"},
	}}
	remote := &models.Configuration{Channels: []*models.Channel{
		{Name: "Remote Only", Slug: "remote-only", CurrencyCode: "EUR", DefaultCountry: "DE"},
		{Name: "Shared", Slug: "shared", CurrencyCode: "USD", DefaultCountry: "US"},
	}}

	summary, err := Compare(local, remote)
	require.NoError(t, err)
	assertTotals(t, summary)

	require.Len(t, summary.Results, 2)
	assert.Equal(t, models.OperationCreate, summary.Results[0].Operation)
	assert.Equal(t, "Local Only", summary.Results[0].EntityName)
	assert.Equal(t, models.OperationDelete, summary.Results[1].Operation)
	assert.Equal(t, "Remote Only", summary.Results[1].EntityName)
}

func TestCompare_TwoNewProducts(t *testing.T) {
	base := func() *models.Configuration {
		return &models.Configuration{
			Categories:   []*models.Category{{Name: "Shirts", Slug: "shirts"}},
			ProductTypes: []*models.ProductType{{Name: "T-Shirt"}},
		}
	}
	local := base()
	local.Products = []*models.Product{
		{Name: "Tee", Slug: "tee", ProductType: "T-Shirt", Category: "shirts"},
		{Name: "Polo", Slug: "polo", ProductType: "T-Shirt", Category: "shirts"},
	}

	summary, err := Compare(local, base())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.TotalChanges)
	assert.Equal(t, 2, summary.Creates)
	assert.Len(t, summary.ResultsFor(models.EntityProducts), 2)
	assert.False(t, summary.HasEntityType(models.EntityCategories))
}

func TestCompare_SlugPreferredOverName(t *testing.T) {
	local := &models.Configuration{Categories: []*models.Category{{Name: "Renamed", Slug: "shirts"}}}
	remote := &models.Configuration{Categories: []*models.Category{{Name: "Shirts", Slug: "shirts"}}}

	summary, err := Compare(local, remote)
	require.NoError(t, err)

	require.Len(t, summary.Results, 1)
	r := summary.Results[0]
	assert.Equal(t, models.OperationUpdate, r.Operation)
	require.Len(t, r.Changes, 1)
	assert.Equal(t, "name", r.Changes[0].Field)
	assert.Equal(t, "Shirts", r.Changes[0].CurrentValue)
	assert.Equal(t, "Renamed", r.Changes[0].DesiredValue)
}

func TestCompare_DifferentSlugsSameNameDoNotMatch(t *testing.T) {
	local := &models.Configuration{Categories: []*models.Category{{Name: "Shirts", Slug: "shirts-new"}}}
	remote := &models.Configuration{Categories: []*models.Category{{Name: "Shirts", Slug: "shirts"}}}

	summary, err := Compare(local, remote)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Creates)
	assert.Equal(t, 1, summary.Deletes)
}

func TestCompare_NameFallbackWhenSlugMissing(t *testing.T) {
	local := &models.Configuration{Attributes: []*models.Attribute{{Name: "Color", Slug: "color", InputType: "DROPDOWN"}}}
	remote := &models.Configuration{Attributes: []*models.Attribute{{Name: "Color", InputType: "DROPDOWN"}}}

	summary, err := Compare(local, remote)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.TotalChanges)
}

func TestCompare_ExactKeyWinsOverNameFallback(t *testing.T) {
	local := &models.Configuration{Attributes: []*models.Attribute{{Name: "Hats", InputType: "DROPDOWN"}}}
	remote := &models.Configuration{Attributes: []*models.Attribute{
		{Name: "Hats", Slug: "hats-archive", InputType: "DROPDOWN"},
		{Name: "Hats", InputType: "DROPDOWN"},
	}}

	summary, err := Compare(local, remote)
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, 1, summary.Deletes)
	deleted := summary.Results[0].Current.(*models.Attribute)
	assert.Equal(t, "hats-archive", deleted.Slug)
}

func TestCompare_NameFallbackSkipsRemotesClaimedByExactKey(t *testing.T) {
	local := &models.Configuration{Attributes: []*models.Attribute{
		{Name: "Size", Slug: "size-new", InputType: "DROPDOWN"},
		{Name: "Size", InputType: "DROPDOWN"},
	}}
	remote := &models.Configuration{Attributes: []*models.Attribute{{Name: "Size", InputType: "DROPDOWN"}}}

	summary, err := Compare(local, remote)
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, models.OperationCreate, summary.Results[0].Operation)
	assert.Equal(t, "size-new", summary.Results[0].Desired.(*models.Attribute).Slug)
	assert.Zero(t, summary.Deletes)
}

func TestCompare_DuplicateKeyIsValidationError(t *testing.T) {
	local := &models.Configuration{Products: []*models.Product{
		{Name: "Tee", Slug: "tee"},
		{Name: "Tee Again", Slug: "tee"},
	}}

	_, err := Compare(local, nil)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Contains(t, err.Error(), `"tee"`)
	assert.Contains(t, err.Error(), "local")
}

func TestCompare_NilEntriesIgnored(t *testing.T) {
	local := &models.Configuration{Channels: []*models.Channel{nil}}
	summary, err := Compare(local, &models.Configuration{Channels: []*models.Channel{nil}})
	require.NoError(t, err)
	assert.Zero(t, summary.TotalChanges)
}

func TestCompare_ShopSettings(t *testing.T) {
	t.Run("unset local fields are unmanaged", func(t *testing.T) {
		local := &models.Configuration{Shop: &models.ShopSettings{HeaderText: "Hi"}}
		remote := &models.Configuration{Shop: &models.ShopSettings{HeaderText: "Hi", Description: "remote only"}}
		summary, err := Compare(local, remote)
		require.NoError(t, err)
		assert.Zero(t, summary.TotalChanges)
	})

	t.Run("changed fields produce one update", func(t *testing.T) {
		local := &models.Configuration{Shop: &models.ShopSettings{HeaderText: "New", LimitQuantityPerCheckout: intPtr(5)}}
		remote := &models.Configuration{Shop: &models.ShopSettings{HeaderText: "Old"}}
		summary, err := Compare(local, remote)
		require.NoError(t, err)

		require.Len(t, summary.Results, 1)
		r := summary.Results[0]
		assert.Equal(t, models.EntityShopSettings, r.EntityType)
		assert.Equal(t, models.OperationUpdate, r.Operation)
		require.Len(t, r.Changes, 2)
		assert.Equal(t, "headerText", r.Changes[0].Field)
		assert.Equal(t, "limitQuantityPerCheckout", r.Changes[1].Field)
		assert.Nil(t, r.Changes[1].CurrentValue)
		assert.Equal(t, 5, r.Changes[1].DesiredValue)
	})

	t.Run("no local section means no result", func(t *testing.T) {
		summary, err := Compare(models.Empty(), &models.Configuration{Shop: &models.ShopSettings{HeaderText: "x"}})
		require.NoError(t, err)
		assert.Zero(t, summary.TotalChanges)
	})
}

func TestCompare_ProductTypeAttributesStructural(t *testing.T) {
	local := &models.Configuration{ProductTypes: []*models.ProductType{{
		Name: "Book",
		ProductAttributes: []*models.AttributeRef{
			{Attribute: "Author"},
			{Name: "Genre", InputType: "DROPDOWN"},
		},
	}}}
	remote := &models.Configuration{ProductTypes: []*models.ProductType{{
		Name: "Book",
		ProductAttributes: []*models.AttributeRef{
			{Name: "Publisher", InputType: "PLAIN_TEXT"},
		},
	}}}

	summary, err := Compare(local, remote)
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)

	var descriptions []string
	for _, c := range summary.Results[0].Changes {
		assert.Equal(t, "productAttributes", c.Field)
		descriptions = append(descriptions, c.Description)
	}
	assert.Equal(t, []string{
		`Attribute "Author" added`,
		`Attribute "Genre" will be created`,
		`Attribute "Publisher" removed`,
	}, descriptions)
}

func TestCompare_NestedChanges(t *testing.T) {
	local := sampleConfig()
	remote := sampleConfig()

	local.Categories[0].Subcategories = append(local.Categories[0].Subcategories, &models.Category{Name: "Hats", Slug: "hats"})
	local.Products[0].Variants[0].Channels[0].Price = 25
	local.TaxClasses[0].CountryRates[0].Rate = 9
	local.Attributes[0].Values = append(local.Attributes[0].Values, &models.AttributeValue{Name: "Green"})
	local.ShippingZones[0].Countries = []string{"US", "CA"}
	local.Menus[0].Items[0].Children = []*models.MenuItem{{Name: "Polos", URL: "https://example.com/polos"}}

	summary, err := Compare(local, remote)
	require.NoError(t, err)
	assertTotals(t, summary)
	assert.Equal(t, 6, summary.Updates)

	fields := func(et models.EntityType) []string {
		rs := summary.ResultsFor(et)
		require.Len(t, rs, 1, et)
		var out []string
		for _, c := range rs[0].Changes {
			out = append(out, c.Field)
		}
		return out
	}
	assert.Equal(t, []string{"subcategories"}, fields(models.EntityCategories))
	assert.Equal(t, []string{"variants.TEE-S.channelListings.default-channel.price"}, fields(models.EntityProducts))
	assert.Equal(t, []string{"countryRates.US"}, fields(models.EntityTaxClasses))
	assert.Equal(t, []string{"values"}, fields(models.EntityAttributes))
	assert.Equal(t, []string{"countries"}, fields(models.EntityShippingZones))
	assert.Equal(t, []string{"items.Shirts.children"}, fields(models.EntityMenus))
}

func TestCompare_VoucherKeyedByCode(t *testing.T) {
	local := &models.Configuration{Vouchers: []*models.Voucher{{Name: "Spring Sale", Code: "SPRING", DiscountValueType: "FIXED"}}}
	remote := &models.Configuration{Vouchers: []*models.Voucher{{Name: "Spring", Code: "SPRING", DiscountValueType: "FIXED"}}}

	summary, err := Compare(local, remote)
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, models.OperationUpdate, summary.Results[0].Operation)
	assert.Equal(t, "Spring Sale", summary.Results[0].EntityName)
}

func TestSetDiff(t *testing.T) {
	added, removed := setDiff([]string{"a", "b", "b", "c"}, []string{"c", "d", "d"})
	assert.Equal(t, []string{"a", "b"}, added)
	assert.Equal(t, []string{"d"}, removed)
	assert.True(t, sameSet([]string{"x", "y"}, []string{"y", "x"}))
}
