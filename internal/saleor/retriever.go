package saleor

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/kilupskalvis/shopsync/internal/models"
)

// maxConcurrentSections bounds parallel section queries during retrieval
const maxConcurrentSections = 4

// Retriever reads the live configuration of an instance
type Retriever struct {
	client *Client
	logger *slog.Logger
}

// NewRetriever creates a retriever backed by client
func NewRetriever(client *Client, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{client: client, logger: logger}
}

// RetrieveWithoutSaving queries every section and maps it into a
// configuration. Nothing is written locally.
func (r *Retriever) RetrieveWithoutSaving(ctx context.Context) (*models.Configuration, error) {
	cfg := models.Empty()
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentSections)

	section := func(name string, fn func(ctx context.Context) error) {
		g.Go(func() error {
			if err := fn(ctx); err != nil {
				return fmt.Errorf("retrieve %s: %w", name, err)
			}
			return nil
		})
	}

	section("shop", func(ctx context.Context) error {
		n, err := fetchShop(ctx, r.client)
		if err == nil && n != nil {
			cfg.Shop = mapShop(n)
		}
		return err
	})
	section("channels", func(ctx context.Context) error {
		nodes, err := fetchChannels(ctx, r.client)
		cfg.Channels = mapAll(nodes, mapChannel)
		return err
	})
	section("tax classes", func(ctx context.Context) error {
		nodes, err := fetchTaxClasses(ctx, r.client)
		cfg.TaxClasses = mapAll(nodes, mapTaxClass)
		return err
	})
	section("attributes", func(ctx context.Context) error {
		nodes, err := fetchAttributes(ctx, r.client, nil)
		cfg.Attributes = mapAll(nodes, mapAttribute)
		return err
	})
	section("product types", func(ctx context.Context) error {
		nodes, err := fetchProductTypes(ctx, r.client)
		cfg.ProductTypes = mapAll(nodes, mapProductType)
		return err
	})
	section("page types", func(ctx context.Context) error {
		nodes, err := fetchPageTypes(ctx, r.client)
		cfg.PageTypes = mapAll(nodes, mapPageType)
		return err
	})
	section("categories", func(ctx context.Context) error {
		nodes, err := fetchCategories(ctx, r.client)
		cfg.Categories = buildCategoryTree(nodes)
		return err
	})
	section("warehouses", func(ctx context.Context) error {
		nodes, err := fetchWarehouses(ctx, r.client)
		cfg.Warehouses = mapAll(nodes, mapWarehouse)
		return err
	})
	section("shipping zones", func(ctx context.Context) error {
		nodes, err := fetchShippingZones(ctx, r.client)
		cfg.ShippingZones = mapAll(nodes, mapShippingZone)
		return err
	})
	section("products", func(ctx context.Context) error {
		nodes, err := fetchProducts(ctx, r.client)
		cfg.Products = mapAll(nodes, mapProduct)
		return err
	})
	section("collections", func(ctx context.Context) error {
		nodes, err := fetchCollections(ctx, r.client)
		cfg.Collections = mapAll(nodes, mapCollection)
		return err
	})
	section("menus", func(ctx context.Context) error {
		nodes, err := fetchMenus(ctx, r.client)
		cfg.Menus = mapAll(nodes, mapMenu)
		return err
	})
	section("vouchers", func(ctx context.Context) error {
		nodes, err := fetchVouchers(ctx, r.client)
		cfg.Vouchers = mapAll(nodes, mapVoucher)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	r.logger.Debug("retrieved remote configuration",
		"channels", len(cfg.Channels),
		"products", len(cfg.Products),
		"categories", len(cfg.Categories))
	return cfg, nil
}

// ==================== Fetchers ====================

func fetchShop(ctx context.Context, c *Client) (*shopNode, error) {
	var data struct {
		Shop *shopNode `json:"shop"`
	}
	if err := c.Do(ctx, shopQuery, nil, &data); err != nil {
		return nil, err
	}
	return data.Shop, nil
}

func fetchChannels(ctx context.Context, c *Client) ([]channelNode, error) {
	var data struct {
		Channels []channelNode `json:"channels"`
	}
	if err := c.Do(ctx, channelsQuery, nil, &data); err != nil {
		return nil, err
	}
	return data.Channels, nil
}

func fetchTaxClasses(ctx context.Context, c *Client) ([]taxClassNode, error) {
	return paginate[taxClassNode](ctx, c, taxClassesQuery, "taxClasses", nil)
}

// fetchAttributes lists attributes, optionally narrowed by a filter input
func fetchAttributes(ctx context.Context, c *Client, filter map[string]any) ([]attributeNode, error) {
	var vars map[string]any
	if filter != nil {
		vars = map[string]any{"filter": filter}
	}
	return paginate[attributeNode](ctx, c, attributesQuery, "attributes", vars)
}

func fetchProductTypes(ctx context.Context, c *Client) ([]productTypeNode, error) {
	return paginate[productTypeNode](ctx, c, productTypesQuery, "productTypes", nil)
}

func fetchPageTypes(ctx context.Context, c *Client) ([]pageTypeNode, error) {
	return paginate[pageTypeNode](ctx, c, pageTypesQuery, "pageTypes", nil)
}

func fetchCategories(ctx context.Context, c *Client) ([]categoryNode, error) {
	return paginate[categoryNode](ctx, c, categoriesQuery, "categories", nil)
}

func fetchWarehouses(ctx context.Context, c *Client) ([]warehouseNode, error) {
	return paginate[warehouseNode](ctx, c, warehousesQuery, "warehouses", nil)
}

func fetchShippingZones(ctx context.Context, c *Client) ([]shippingZoneNode, error) {
	return paginate[shippingZoneNode](ctx, c, shippingZonesQuery, "shippingZones", nil)
}

func fetchProducts(ctx context.Context, c *Client) ([]productNode, error) {
	return paginate[productNode](ctx, c, productsQuery, "products", nil)
}

func fetchCollections(ctx context.Context, c *Client) ([]collectionNode, error) {
	return paginate[collectionNode](ctx, c, collectionsQuery, "collections", nil)
}

func fetchMenus(ctx context.Context, c *Client) ([]menuNode, error) {
	return paginate[menuNode](ctx, c, menusQuery, "menus", nil)
}

func fetchVouchers(ctx context.Context, c *Client) ([]voucherNode, error) {
	return paginate[voucherNode](ctx, c, vouchersQuery, "vouchers", nil)
}

// ==================== Mapping ====================

func mapAll[N, M any](nodes []N, fn func(*N) *M) []*M {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]*M, 0, len(nodes))
	for i := range nodes {
		out = append(out, fn(&nodes[i]))
	}
	return out
}

func boolPtr(b bool) *bool { return &b }

func mapShop(n *shopNode) *models.ShopSettings {
	return &models.ShopSettings{
		HeaderText:                            n.HeaderText,
		Description:                           n.Description,
		DefaultMailSenderName:                 n.DefaultMailSenderName,
		DefaultMailSenderAddress:              n.DefaultMailSenderAddress,
		CustomerSetPasswordURL:                n.CustomerSetPasswordURL,
		DefaultWeightUnit:                     n.DefaultWeightUnit,
		TrackInventoryByDefault:               n.TrackInventoryByDefault,
		AutomaticFulfillmentDigitalProducts:   n.AutomaticFulfillmentDigitalProducts,
		FulfillmentAutoApprove:                n.FulfillmentAutoApprove,
		FulfillmentAllowUnpaid:                n.FulfillmentAllowUnpaid,
		EnableAccountConfirmationByEmail:      n.EnableAccountConfirmationByEmail,
		ReserveStockDurationAnonymousUser:     n.ReserveStockDurationAnonymousUser,
		ReserveStockDurationAuthenticatedUser: n.ReserveStockDurationAuthenticatedUser,
		LimitQuantityPerCheckout:              n.LimitQuantityPerCheckout,
	}
}

func mapChannel(n *channelNode) *models.Channel {
	return &models.Channel{
		Name:           n.Name,
		Slug:           n.Slug,
		CurrencyCode:   n.CurrencyCode,
		DefaultCountry: n.DefaultCountry.Code,
		IsActive:       boolPtr(n.IsActive),
		Settings: &models.ChannelSettings{
			AllocationStrategy:               n.StockSettings.AllocationStrategy,
			AutomaticallyConfirmAllNewOrders: n.OrderSettings.AutomaticallyConfirmAllNewOrders,
			AllowUnpaidOrders:                n.OrderSettings.AllowUnpaidOrders,
			DefaultTransactionFlowStrategy:   n.PaymentSettings.DefaultTransactionFlowStrategy,
		},
	}
}

func mapTaxClass(n *taxClassNode) *models.TaxClass {
	tc := &models.TaxClass{Name: n.Name}
	for _, c := range n.Countries {
		tc.CountryRates = append(tc.CountryRates, &models.CountryRate{CountryCode: c.Country.Code, Rate: c.Rate})
	}
	return tc
}

func mapAttribute(n *attributeNode) *models.Attribute {
	a := &models.Attribute{
		ID:        n.ID,
		Name:      n.Name,
		Slug:      n.Slug,
		Type:      n.Type,
		InputType: n.InputType,
	}
	if n.Choices != nil {
		for _, v := range n.Choices.nodes() {
			a.Values = append(a.Values, &models.AttributeValue{Name: v.Name})
		}
	}
	return a
}

func attributeRefs(refs []ref) []*models.AttributeRef {
	if len(refs) == 0 {
		return nil
	}
	out := make([]*models.AttributeRef, 0, len(refs))
	for _, r := range refs {
		out = append(out, &models.AttributeRef{Attribute: r.Name})
	}
	return out
}

func mapProductType(n *productTypeNode) *models.ProductType {
	pt := &models.ProductType{
		Name:               n.Name,
		IsShippingRequired: boolPtr(n.IsShippingRequired),
		ProductAttributes:  attributeRefs(n.ProductAttributes),
		VariantAttributes:  attributeRefs(n.VariantAttributes),
	}
	if n.TaxClass != nil {
		pt.TaxClass = n.TaxClass.Name
	}
	return pt
}

func mapPageType(n *pageTypeNode) *models.PageType {
	return &models.PageType{Name: n.Name, Attributes: attributeRefs(n.Attributes)}
}

// buildCategoryTree nests the flat category list under its parents. A node
// whose parent is not in the list becomes a root.
func buildCategoryTree(nodes []categoryNode) []*models.Category {
	byID := make(map[string]*models.Category, len(nodes))
	for i := range nodes {
		n := &nodes[i]
		byID[n.ID] = &models.Category{Name: n.Name, Slug: n.Slug, Description: plainText(n.Description)}
	}
	var roots []*models.Category
	for i := range nodes {
		n := &nodes[i]
		cat := byID[n.ID]
		if n.Parent != nil {
			if parent, ok := byID[n.Parent.ID]; ok {
				parent.Subcategories = append(parent.Subcategories, cat)
				continue
			}
		}
		roots = append(roots, cat)
	}
	return roots
}

func mapWarehouse(n *warehouseNode) *models.Warehouse {
	return &models.Warehouse{
		Name:                  n.Name,
		Slug:                  n.Slug,
		Email:                 n.Email,
		IsPrivate:             boolPtr(n.IsPrivate),
		ClickAndCollectOption: n.ClickAndCollectOption,
		Address: &models.Address{
			StreetAddress1: n.Address.StreetAddress1,
			StreetAddress2: n.Address.StreetAddress2,
			City:           n.Address.City,
			PostalCode:     n.Address.PostalCode,
			Country:        n.Address.Country.Code,
			CountryArea:    n.Address.CountryArea,
			Phone:          n.Address.Phone,
			CompanyName:    n.Address.CompanyName,
		},
	}
}

func mapShippingZone(n *shippingZoneNode) *models.ShippingZone {
	z := &models.ShippingZone{
		Name:        n.Name,
		Description: n.Description,
		Default:     boolPtr(n.Default),
	}
	for _, c := range n.Countries {
		z.Countries = append(z.Countries, c.Code)
	}
	for _, w := range n.Warehouses {
		z.Warehouses = append(z.Warehouses, w.Slug)
	}
	for _, c := range n.Channels {
		z.Channels = append(z.Channels, c.Slug)
	}
	for _, m := range n.ShippingMethods {
		sm := &models.ShippingMethod{
			Name:                m.Name,
			Type:                m.Type,
			Description:         plainText(m.Description),
			MinimumDeliveryDays: m.MinimumDeliveryDays,
			MaximumDeliveryDays: m.MaximumDeliveryDays,
		}
		if m.TaxClass != nil {
			sm.TaxClass = m.TaxClass.Name
		}
		if len(m.ChannelListings) > 0 && m.ChannelListings[0].Price != nil {
			sm.Price = m.ChannelListings[0].Price.Amount
		}
		z.ShippingMethods = append(z.ShippingMethods, sm)
	}
	return z
}

func mapAssigned(attrs []assignedAttributeNode) []*models.ProductAttributeValue {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]*models.ProductAttributeValue, 0, len(attrs))
	for _, a := range attrs {
		pav := &models.ProductAttributeValue{Name: a.Attribute.Name, Values: []string{}}
		for _, v := range a.Values {
			pav.Values = append(pav.Values, v.Name)
		}
		out = append(out, pav)
	}
	return out
}

func mapListings(nodes []listingNode) []*models.ChannelListing {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]*models.ChannelListing, 0, len(nodes))
	for _, l := range nodes {
		out = append(out, &models.ChannelListing{
			Channel:              l.Channel.Slug,
			IsPublished:          l.IsPublished,
			VisibleInListings:    l.VisibleInListings,
			AvailableForPurchase: l.IsAvailableForPurchase,
		})
	}
	return out
}

func mapProduct(n *productNode) *models.Product {
	p := &models.Product{
		Name:        n.Name,
		Slug:        n.Slug,
		ProductType: n.ProductType.Name,
		Description: plainText(n.Description),
		Attributes:  mapAssigned(n.Attributes),
		Channels:    mapListings(n.ChannelListings),
	}
	if n.Category != nil {
		p.Category = n.Category.Slug
	}
	if n.TaxClass != nil {
		p.TaxClass = n.TaxClass.Name
	}
	for _, v := range n.Variants {
		pv := &models.ProductVariant{
			Name:       v.Name,
			Sku:        v.Sku,
			Attributes: mapAssigned(v.Attributes),
		}
		if v.Weight != nil {
			pv.Weight = v.Weight.Value
		}
		for _, l := range v.ChannelListings {
			vl := &models.VariantListing{Channel: l.Channel.Slug}
			if l.Price != nil {
				vl.Price = l.Price.Amount
			}
			if l.CostPrice != nil {
				vl.CostPrice = l.CostPrice.Amount
			}
			pv.Channels = append(pv.Channels, vl)
		}
		p.Variants = append(p.Variants, pv)
	}
	return p
}

func mapCollection(n *collectionNode) *models.Collection {
	c := &models.Collection{
		Name:        n.Name,
		Slug:        n.Slug,
		Description: plainText(n.Description),
		Channels:    mapListings(n.ChannelListings),
	}
	if n.Products != nil {
		for _, p := range n.Products.nodes() {
			c.Products = append(c.Products, p.Slug)
		}
	}
	return c
}

func mapMenuItems(items []menuItemNode) []*models.MenuItem {
	if len(items) == 0 {
		return nil
	}
	out := make([]*models.MenuItem, 0, len(items))
	for _, it := range items {
		mi := &models.MenuItem{Name: it.Name, URL: it.URL, Children: mapMenuItems(it.Children)}
		if it.Category != nil {
			mi.Category = it.Category.Slug
		}
		if it.Collection != nil {
			mi.Collection = it.Collection.Slug
		}
		if it.Page != nil {
			mi.Page = it.Page.Slug
		}
		out = append(out, mi)
	}
	return out
}

func mapMenu(n *menuNode) *models.Menu {
	return &models.Menu{Name: n.Name, Slug: n.Slug, Items: mapMenuItems(n.Items)}
}

func mapVoucher(n *voucherNode) *models.Voucher {
	v := &models.Voucher{
		Name:                 n.Name,
		Code:                 n.Code,
		DiscountValueType:    n.DiscountValueType,
		Type:                 n.Type,
		UsageLimit:           n.UsageLimit,
		ApplyOncePerCustomer: boolPtr(n.ApplyOncePerCustomer),
		ApplyOncePerOrder:    boolPtr(n.ApplyOncePerOrder),
		StartDate:            n.StartDate,
		EndDate:              n.EndDate,
	}
	for _, l := range n.ChannelListings {
		vl := &models.VoucherListing{Channel: l.Channel.Slug, DiscountValue: l.DiscountValue}
		if l.MinSpent != nil {
			vl.MinimumSpent = l.MinSpent.Amount
		}
		v.Channels = append(v.Channels, vl)
	}
	return v
}
