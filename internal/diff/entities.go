package diff

import (
	"fmt"

	"github.com/kilupskalvis/shopsync/internal/models"
)

func noSlug[T any](*T) string { return "" }

var channels = collection[models.Channel]{
	entityType: models.EntityChannels,
	slug:       func(c *models.Channel) string { return c.Slug },
	name:       func(c *models.Channel) string { return c.Name },
	compare:    compareChannel,
}

var taxClasses = collection[models.TaxClass]{
	entityType: models.EntityTaxClasses,
	slug:       noSlug[models.TaxClass],
	name:       func(t *models.TaxClass) string { return t.Name },
	compare:    compareTaxClass,
}

var attributes = collection[models.Attribute]{
	entityType: models.EntityAttributes,
	slug:       func(a *models.Attribute) string { return a.Slug },
	name:       func(a *models.Attribute) string { return a.Name },
	compare:    compareAttribute,
}

var productTypes = collection[models.ProductType]{
	entityType: models.EntityProductTypes,
	slug:       noSlug[models.ProductType],
	name:       func(p *models.ProductType) string { return p.Name },
	compare:    compareProductType,
}

var pageTypes = collection[models.PageType]{
	entityType: models.EntityPageTypes,
	slug:       noSlug[models.PageType],
	name:       func(p *models.PageType) string { return p.Name },
	compare:    comparePageType,
}

var categories = collection[models.Category]{
	entityType: models.EntityCategories,
	slug:       func(c *models.Category) string { return c.Slug },
	name:       func(c *models.Category) string { return c.Name },
	compare:    compareCategory,
}

var warehouses = collection[models.Warehouse]{
	entityType: models.EntityWarehouses,
	slug:       func(w *models.Warehouse) string { return w.Slug },
	name:       func(w *models.Warehouse) string { return w.Name },
	compare:    compareWarehouse,
}

var shippingZones = collection[models.ShippingZone]{
	entityType: models.EntityShippingZones,
	slug:       noSlug[models.ShippingZone],
	name:       func(z *models.ShippingZone) string { return z.Name },
	compare:    compareShippingZone,
}

var products = collection[models.Product]{
	entityType: models.EntityProducts,
	slug:       func(p *models.Product) string { return p.Slug },
	name:       func(p *models.Product) string { return p.Name },
	compare:    compareProduct,
}

var collections = collection[models.Collection]{
	entityType: models.EntityCollections,
	slug:       func(c *models.Collection) string { return c.Slug },
	name:       func(c *models.Collection) string { return c.Name },
	compare:    compareCollection,
}

var menus = collection[models.Menu]{
	entityType: models.EntityMenus,
	slug:       func(m *models.Menu) string { return m.Slug },
	name:       func(m *models.Menu) string { return m.Name },
	compare:    compareMenu,
}

var vouchers = collection[models.Voucher]{
	entityType: models.EntityVouchers,
	slug:       func(v *models.Voucher) string { return v.Code },
	name:       func(v *models.Voucher) string { return v.Name },
	compare:    compareVoucher,
}

func compareShopSettings(local, remote *models.ShopSettings) []models.DiffChange {
	c := &changeSet{}
	c.optStr("headerText", local.HeaderText, remote.HeaderText)
	c.optStr("description", local.Description, remote.Description)
	c.optStr("defaultMailSenderName", local.DefaultMailSenderName, remote.DefaultMailSenderName)
	c.optStr("defaultMailSenderAddress", local.DefaultMailSenderAddress, remote.DefaultMailSenderAddress)
	c.optStr("customerSetPasswordUrl", local.CustomerSetPasswordURL, remote.CustomerSetPasswordURL)
	c.optStr("defaultWeightUnit", local.DefaultWeightUnit, remote.DefaultWeightUnit)
	optPtr(c, "trackInventoryByDefault", local.TrackInventoryByDefault, remote.TrackInventoryByDefault)
	optPtr(c, "automaticFulfillmentDigitalProducts", local.AutomaticFulfillmentDigitalProducts, remote.AutomaticFulfillmentDigitalProducts)
	optPtr(c, "fulfillmentAutoApprove", local.FulfillmentAutoApprove, remote.FulfillmentAutoApprove)
	optPtr(c, "fulfillmentAllowUnpaid", local.FulfillmentAllowUnpaid, remote.FulfillmentAllowUnpaid)
	optPtr(c, "enableAccountConfirmationByEmail", local.EnableAccountConfirmationByEmail, remote.EnableAccountConfirmationByEmail)
	optPtr(c, "reserveStockDurationAnonymousUser", local.ReserveStockDurationAnonymousUser, remote.ReserveStockDurationAnonymousUser)
	optPtr(c, "reserveStockDurationAuthenticatedUser", local.ReserveStockDurationAuthenticatedUser, remote.ReserveStockDurationAuthenticatedUser)
	optPtr(c, "limitQuantityPerCheckout", local.LimitQuantityPerCheckout, remote.LimitQuantityPerCheckout)
	return c.changes
}

func compareChannel(local, remote *models.Channel) []models.DiffChange {
	c := &changeSet{}
	c.str("name", local.Name, remote.Name)
	c.str("currencyCode", local.CurrencyCode, remote.CurrencyCode)
	c.str("defaultCountry", local.DefaultCountry, remote.DefaultCountry)
	optPtr(c, "isActive", local.IsActive, remote.IsActive)
	if local.Settings != nil {
		rs := remote.Settings
		if rs == nil {
			rs = &models.ChannelSettings{}
		}
		s := c.nested("settings")
		s.optStr("allocationStrategy", local.Settings.AllocationStrategy, rs.AllocationStrategy)
		optPtr(s, "automaticallyConfirmAllNewOrders", local.Settings.AutomaticallyConfirmAllNewOrders, rs.AutomaticallyConfirmAllNewOrders)
		optPtr(s, "allowUnpaidOrders", local.Settings.AllowUnpaidOrders, rs.AllowUnpaidOrders)
		s.optStr("defaultTransactionFlowStrategy", local.Settings.DefaultTransactionFlowStrategy, rs.DefaultTransactionFlowStrategy)
		c.merge(s)
	}
	return c.changes
}

func compareTaxClass(local, remote *models.TaxClass) []models.DiffChange {
	c := &changeSet{}
	code := func(r *models.CountryRate) string { return r.CountryCode }
	remoteRates := byKey(remote.CountryRates, code)
	localRates := byKey(local.CountryRates, code)
	for _, lr := range local.CountryRates {
		if lr == nil {
			continue
		}
		rr, ok := remoteRates[lr.CountryCode]
		switch {
		case !ok:
			c.add("countryRates", nil, lr.Rate, fmt.Sprintf("Rate for %s added", lr.CountryCode))
		case !floatEqual(lr.Rate, rr.Rate):
			c.add("countryRates."+lr.CountryCode, rr.Rate, lr.Rate, fmt.Sprintf("Rate for %s changed", lr.CountryCode))
		}
	}
	for _, rr := range remote.CountryRates {
		if rr == nil {
			continue
		}
		if _, ok := localRates[rr.CountryCode]; !ok {
			c.add("countryRates", rr.Rate, nil, fmt.Sprintf("Rate for %s removed", rr.CountryCode))
		}
	}
	return c.changes
}

func valueNames(values []*models.AttributeValue) []string {
	names := make([]string, 0, len(values))
	for _, v := range values {
		if v != nil {
			names = append(names, v.Name)
		}
	}
	return names
}

func compareAttribute(local, remote *models.Attribute) []models.DiffChange {
	c := &changeSet{}
	c.str("name", local.Name, remote.Name)
	c.optStr("type", local.Type, remote.Type)
	c.str("inputType", local.InputType, remote.InputType)
	if local.HasChoices() {
		c.list("values", "Value", valueNames(local.Values), valueNames(remote.Values))
	}
	return c.changes
}

// compareAttributeRefs reports attributes added to or removed from a type
func compareAttributeRefs(c *changeSet, field string, local, remote []*models.AttributeRef) {
	remoteByName := byKey(remote, (*models.AttributeRef).AttributeName)
	localByName := byKey(local, (*models.AttributeRef).AttributeName)
	for _, lr := range local {
		if lr == nil {
			continue
		}
		name := lr.AttributeName()
		rr, ok := remoteByName[name]
		if !ok {
			if !lr.IsReference() && lr.InputType != "" {
				c.add(field, nil, name, fmt.Sprintf("Attribute %q will be created", name))
			} else {
				c.add(field, nil, name, fmt.Sprintf("Attribute %q added", name))
			}
			continue
		}
		if !lr.IsReference() && lr.InputType != "" && rr.InputType != "" && lr.InputType != rr.InputType {
			c.add(field+"."+name+".inputType", rr.InputType, lr.InputType, "")
		}
	}
	for _, rr := range remote {
		if rr == nil {
			continue
		}
		name := rr.AttributeName()
		if _, ok := localByName[name]; !ok {
			c.add(field, name, nil, fmt.Sprintf("Attribute %q removed", name))
		}
	}
}

func compareProductType(local, remote *models.ProductType) []models.DiffChange {
	c := &changeSet{}
	optPtr(c, "isShippingRequired", local.IsShippingRequired, remote.IsShippingRequired)
	c.optStr("taxClass", local.TaxClass, remote.TaxClass)
	compareAttributeRefs(c, "productAttributes", local.ProductAttributes, remote.ProductAttributes)
	compareAttributeRefs(c, "variantAttributes", local.VariantAttributes, remote.VariantAttributes)
	return c.changes
}

func comparePageType(local, remote *models.PageType) []models.DiffChange {
	c := &changeSet{}
	compareAttributeRefs(c, "attributes", local.Attributes, remote.Attributes)
	return c.changes
}

func compareCategory(local, remote *models.Category) []models.DiffChange {
	c := &changeSet{}
	compareCategoryNode(c, local, remote)
	return c.changes
}

func compareCategoryNode(c *changeSet, local, remote *models.Category) {
	c.str("name", local.Name, remote.Name)
	c.optStr("description", local.Description, remote.Description)

	slug := func(cat *models.Category) string { return cat.Slug }
	remoteChildren := byKey(remote.Subcategories, slug)
	localChildren := byKey(local.Subcategories, slug)
	for _, lc := range local.Subcategories {
		if lc == nil {
			continue
		}
		rc, ok := remoteChildren[lc.Slug]
		if !ok {
			c.add("subcategories", nil, lc.Slug, fmt.Sprintf("Subcategory %q added", lc.Slug))
			continue
		}
		child := c.nested("subcategories." + lc.Slug)
		compareCategoryNode(child, lc, rc)
		c.merge(child)
	}
	for _, rc := range remote.Subcategories {
		if rc == nil {
			continue
		}
		if _, ok := localChildren[rc.Slug]; !ok {
			c.add("subcategories", rc.Slug, nil, fmt.Sprintf("Subcategory %q removed", rc.Slug))
		}
	}
}

func compareWarehouse(local, remote *models.Warehouse) []models.DiffChange {
	c := &changeSet{}
	c.str("name", local.Name, remote.Name)
	c.optStr("email", local.Email, remote.Email)
	optPtr(c, "isPrivate", local.IsPrivate, remote.IsPrivate)
	c.optStr("clickAndCollectOption", local.ClickAndCollectOption, remote.ClickAndCollectOption)
	if local.Address != nil {
		ra := remote.Address
		if ra == nil {
			ra = &models.Address{}
		}
		a := c.nested("address")
		a.str("streetAddress1", local.Address.StreetAddress1, ra.StreetAddress1)
		a.optStr("streetAddress2", local.Address.StreetAddress2, ra.StreetAddress2)
		a.str("city", local.Address.City, ra.City)
		a.optStr("postalCode", local.Address.PostalCode, ra.PostalCode)
		a.str("country", local.Address.Country, ra.Country)
		a.optStr("countryArea", local.Address.CountryArea, ra.CountryArea)
		a.optStr("phone", local.Address.Phone, ra.Phone)
		a.optStr("companyName", local.Address.CompanyName, ra.CompanyName)
		c.merge(a)
	}
	return c.changes
}

func compareShippingZone(local, remote *models.ShippingZone) []models.DiffChange {
	c := &changeSet{}
	c.optStr("description", local.Description, remote.Description)
	optPtr(c, "default", local.Default, remote.Default)
	c.list("countries", "Country", local.Countries, remote.Countries)
	c.list("warehouses", "Warehouse", local.Warehouses, remote.Warehouses)
	c.list("channels", "Channel", local.Channels, remote.Channels)

	name := func(m *models.ShippingMethod) string { return m.Name }
	remoteMethods := byKey(remote.ShippingMethods, name)
	localMethods := byKey(local.ShippingMethods, name)
	for _, lm := range local.ShippingMethods {
		if lm == nil {
			continue
		}
		rm, ok := remoteMethods[lm.Name]
		if !ok {
			c.add("shippingMethods", nil, lm.Name, fmt.Sprintf("Shipping method %q added", lm.Name))
			continue
		}
		m := c.nested("shippingMethods." + lm.Name)
		m.optStr("type", lm.Type, rm.Type)
		m.optStr("description", lm.Description, rm.Description)
		optPtr(m, "minimumDeliveryDays", lm.MinimumDeliveryDays, rm.MinimumDeliveryDays)
		optPtr(m, "maximumDeliveryDays", lm.MaximumDeliveryDays, rm.MaximumDeliveryDays)
		m.optStr("taxClass", lm.TaxClass, rm.TaxClass)
		m.num("price", lm.Price, rm.Price)
		c.merge(m)
	}
	for _, rm := range remote.ShippingMethods {
		if rm == nil {
			continue
		}
		if _, ok := localMethods[rm.Name]; !ok {
			c.add("shippingMethods", rm.Name, nil, fmt.Sprintf("Shipping method %q removed", rm.Name))
		}
	}
	return c.changes
}

// compareAttributeValues diffs attribute assignments of a product or variant
func compareAttributeValues(c *changeSet, local, remote []*models.ProductAttributeValue) {
	name := func(a *models.ProductAttributeValue) string { return a.Name }
	remoteAttrs := byKey(remote, name)
	localAttrs := byKey(local, name)
	for _, la := range local {
		if la == nil {
			continue
		}
		ra, ok := remoteAttrs[la.Name]
		if !ok {
			c.add("attributes", nil, la.Values, fmt.Sprintf("Attribute %q added", la.Name))
			continue
		}
		if !sameSet(la.Values, ra.Values) {
			c.add("attributes."+la.Name, ra.Values, la.Values, fmt.Sprintf("Attribute %q values changed", la.Name))
		}
	}
	for _, ra := range remote {
		if ra == nil {
			continue
		}
		if _, ok := localAttrs[ra.Name]; !ok {
			c.add("attributes", ra.Values, nil, fmt.Sprintf("Attribute %q removed", ra.Name))
		}
	}
}

func compareChannelListings(c *changeSet, local, remote []*models.ChannelListing) {
	channel := func(l *models.ChannelListing) string { return l.Channel }
	remoteListings := byKey(remote, channel)
	localListings := byKey(local, channel)
	for _, ll := range local {
		if ll == nil {
			continue
		}
		rl, ok := remoteListings[ll.Channel]
		if !ok {
			c.add("channelListings", nil, ll.Channel, fmt.Sprintf("Listed in channel %q", ll.Channel))
			continue
		}
		l := c.nested("channelListings." + ll.Channel)
		optPtr(l, "isPublished", ll.IsPublished, rl.IsPublished)
		optPtr(l, "visibleInListings", ll.VisibleInListings, rl.VisibleInListings)
		optPtr(l, "isAvailableForPurchase", ll.AvailableForPurchase, rl.AvailableForPurchase)
		c.merge(l)
	}
	for _, rl := range remote {
		if rl == nil {
			continue
		}
		if _, ok := localListings[rl.Channel]; !ok {
			c.add("channelListings", rl.Channel, nil, fmt.Sprintf("Removed from channel %q", rl.Channel))
		}
	}
}

func compareProduct(local, remote *models.Product) []models.DiffChange {
	c := &changeSet{}
	c.str("name", local.Name, remote.Name)
	c.str("productType", local.ProductType, remote.ProductType)
	c.str("category", local.Category, remote.Category)
	c.optStr("description", local.Description, remote.Description)
	c.optStr("taxClass", local.TaxClass, remote.TaxClass)
	compareAttributeValues(c, local.Attributes, remote.Attributes)
	compareChannelListings(c, local.Channels, remote.Channels)

	sku := func(v *models.ProductVariant) string { return v.Sku }
	remoteVariants := byKey(remote.Variants, sku)
	localVariants := byKey(local.Variants, sku)
	for _, lv := range local.Variants {
		if lv == nil {
			continue
		}
		rv, ok := remoteVariants[lv.Sku]
		if !ok {
			c.add("variants", nil, lv.Sku, fmt.Sprintf("Variant %q added", lv.Sku))
			continue
		}
		v := c.nested("variants." + lv.Sku)
		v.str("name", lv.Name, rv.Name)
		v.num("weight", lv.Weight, rv.Weight)
		compareAttributeValues(v, lv.Attributes, rv.Attributes)
		compareVariantListings(v, lv.Channels, rv.Channels)
		c.merge(v)
	}
	for _, rv := range remote.Variants {
		if rv == nil {
			continue
		}
		if _, ok := localVariants[rv.Sku]; !ok {
			c.add("variants", rv.Sku, nil, fmt.Sprintf("Variant %q removed", rv.Sku))
		}
	}
	return c.changes
}

func compareVariantListings(c *changeSet, local, remote []*models.VariantListing) {
	channel := func(l *models.VariantListing) string { return l.Channel }
	remoteListings := byKey(remote, channel)
	localListings := byKey(local, channel)
	for _, ll := range local {
		if ll == nil {
			continue
		}
		rl, ok := remoteListings[ll.Channel]
		if !ok {
			c.add("channelListings", nil, ll.Price, fmt.Sprintf("Priced in channel %q", ll.Channel))
			continue
		}
		l := c.nested("channelListings." + ll.Channel)
		l.num("price", ll.Price, rl.Price)
		l.num("costPrice", ll.CostPrice, rl.CostPrice)
		c.merge(l)
	}
	for _, rl := range remote {
		if rl == nil {
			continue
		}
		if _, ok := localListings[rl.Channel]; !ok {
			c.add("channelListings", rl.Price, nil, fmt.Sprintf("Removed from channel %q", rl.Channel))
		}
	}
}

func compareCollection(local, remote *models.Collection) []models.DiffChange {
	c := &changeSet{}
	c.str("name", local.Name, remote.Name)
	c.optStr("description", local.Description, remote.Description)
	c.list("products", "Product", local.Products, remote.Products)
	compareChannelListings(c, local.Channels, remote.Channels)
	return c.changes
}

func compareMenu(local, remote *models.Menu) []models.DiffChange {
	c := &changeSet{}
	c.str("name", local.Name, remote.Name)
	compareMenuItems(c, "items", local.Items, remote.Items)
	return c.changes
}

func compareMenuItems(c *changeSet, field string, local, remote []*models.MenuItem) {
	name := func(i *models.MenuItem) string { return i.Name }
	remoteItems := byKey(remote, name)
	localItems := byKey(local, name)
	for _, li := range local {
		if li == nil {
			continue
		}
		ri, ok := remoteItems[li.Name]
		if !ok {
			c.add(field, nil, li.Name, fmt.Sprintf("Menu item %q added", li.Name))
			continue
		}
		item := c.nested(field + "." + li.Name)
		item.str("url", li.URL, ri.URL)
		item.str("category", li.Category, ri.Category)
		item.str("collection", li.Collection, ri.Collection)
		item.str("page", li.Page, ri.Page)
		compareMenuItems(item, "children", li.Children, ri.Children)
		c.merge(item)
	}
	for _, ri := range remote {
		if ri == nil {
			continue
		}
		if _, ok := localItems[ri.Name]; !ok {
			c.add(field, ri.Name, nil, fmt.Sprintf("Menu item %q removed", ri.Name))
		}
	}
}

func compareVoucher(local, remote *models.Voucher) []models.DiffChange {
	c := &changeSet{}
	c.str("name", local.Name, remote.Name)
	c.str("discountValueType", local.DiscountValueType, remote.DiscountValueType)
	c.optStr("type", local.Type, remote.Type)
	optPtr(c, "usageLimit", local.UsageLimit, remote.UsageLimit)
	optPtr(c, "applyOncePerCustomer", local.ApplyOncePerCustomer, remote.ApplyOncePerCustomer)
	optPtr(c, "applyOncePerOrder", local.ApplyOncePerOrder, remote.ApplyOncePerOrder)
	c.optStr("startDate", local.StartDate, remote.StartDate)
	c.optStr("endDate", local.EndDate, remote.EndDate)

	channel := func(l *models.VoucherListing) string { return l.Channel }
	remoteListings := byKey(remote.Channels, channel)
	localListings := byKey(local.Channels, channel)
	for _, ll := range local.Channels {
		if ll == nil {
			continue
		}
		rl, ok := remoteListings[ll.Channel]
		if !ok {
			c.add("channelListings", nil, ll.DiscountValue, fmt.Sprintf("Discount in channel %q added", ll.Channel))
			continue
		}
		l := c.nested("channelListings." + ll.Channel)
		l.num("discountValue", ll.DiscountValue, rl.DiscountValue)
		l.num("minimumSpent", ll.MinimumSpent, rl.MinimumSpent)
		c.merge(l)
	}
	for _, rl := range remote.Channels {
		if rl == nil {
			continue
		}
		if _, ok := localListings[rl.Channel]; !ok {
			c.add("channelListings", rl.DiscountValue, nil, fmt.Sprintf("Discount in channel %q removed", rl.Channel))
		}
	}
	return c.changes
}
