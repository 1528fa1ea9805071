package saleor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/kilupskalvis/shopsync/internal/models"
)

// deleteMutations names the delete mutation of each section
var deleteMutations = map[models.EntityType]string{
	models.EntityChannels:      "channelDelete",
	models.EntityTaxClasses:    "taxClassDelete",
	models.EntityAttributes:    "attributeDelete",
	models.EntityProductTypes:  "productTypeDelete",
	models.EntityPageTypes:     "pageTypeDelete",
	models.EntityCategories:    "categoryDelete",
	models.EntityWarehouses:    "deleteWarehouse",
	models.EntityShippingZones: "shippingZoneDelete",
	models.EntityProducts:      "productDelete",
	models.EntityCollections:   "collectionDelete",
	models.EntityMenus:         "menuDelete",
	models.EntityVouchers:      "voucherDelete",
}

// Services applies configuration entities to the instance. Every Bootstrap
// method creates the entity when its natural key is unknown remotely and
// updates it otherwise, so repeated runs converge.
type Services struct {
	client *Client
	logger *slog.Logger
	idx    *index
}

// NewServices creates the deployment services backed by client
func NewServices(client *Client, logger *slog.Logger) *Services {
	if logger == nil {
		logger = slog.Default()
	}
	return &Services{client: client, logger: logger, idx: newIndex()}
}

// Prefetch loads the remote identifiers of a section
func (s *Services) Prefetch(ctx context.Context, entityType models.EntityType) error {
	return s.load(ctx, entityType)
}

// DeleteEntity removes the entity with the given natural key. Deleting an
// entity that no longer exists is not an error.
func (s *Services) DeleteEntity(ctx context.Context, entityType models.EntityType, key string) error {
	field, ok := deleteMutations[entityType]
	if !ok {
		return fmt.Errorf("%s cannot be deleted", entityType)
	}
	id, found, err := s.lookup(ctx, entityType, key)
	if err != nil {
		return err
	}
	if !found {
		s.logger.Debug("entity already absent", "entity_type", string(entityType), "key", key)
		return nil
	}
	if err := s.client.Mutate(ctx, deleteMutation(field), field, map[string]any{"id": id}, nil); err != nil {
		return err
	}
	s.idx.forget(entityType, key)
	return nil
}

// upsert runs the create mutation when id is empty and the update mutation
// otherwise, returning the entity ID. entityField names the payload object.
func (s *Services) upsert(ctx context.Context, id, create, update, entityField string, createInput, updateInput map[string]any) (string, error) {
	if id == "" {
		field := mutationField(create)
		var payload map[string]json.RawMessage
		if err := s.client.Mutate(ctx, create, field, map[string]any{"input": createInput}, &payload); err != nil {
			return "", err
		}
		var created struct {
			ID string `json:"id"`
		}
		if raw, ok := payload[entityField]; ok {
			if err := json.Unmarshal(raw, &created); err != nil {
				return "", fmt.Errorf("%s: decode %s: %w", field, entityField, err)
			}
		}
		if created.ID == "" {
			return "", fmt.Errorf("%s: payload carried no %s id", field, entityField)
		}
		return created.ID, nil
	}
	field := mutationField(update)
	if err := s.client.Mutate(ctx, update, field, map[string]any{"id": id, "input": updateInput}, nil); err != nil {
		return "", err
	}
	return id, nil
}

// ==================== Shop & channels ====================

// BootstrapShop updates the managed shop settings
func (s *Services) BootstrapShop(ctx context.Context, shop *models.ShopSettings) error {
	in := input{}
	in.str("headerText", shop.HeaderText)
	in.str("description", shop.Description)
	in.str("defaultMailSenderName", shop.DefaultMailSenderName)
	in.str("defaultMailSenderAddress", shop.DefaultMailSenderAddress)
	in.str("customerSetPasswordUrl", shop.CustomerSetPasswordURL)
	in.str("defaultWeightUnit", shop.DefaultWeightUnit)
	in.boolean("trackInventoryByDefault", shop.TrackInventoryByDefault)
	in.boolean("automaticFulfillmentDigitalProducts", shop.AutomaticFulfillmentDigitalProducts)
	in.boolean("fulfillmentAutoApprove", shop.FulfillmentAutoApprove)
	in.boolean("fulfillmentAllowUnpaid", shop.FulfillmentAllowUnpaid)
	in.boolean("enableAccountConfirmationByEmail", shop.EnableAccountConfirmationByEmail)
	in.integer("reserveStockDurationAnonymousUser", shop.ReserveStockDurationAnonymousUser)
	in.integer("reserveStockDurationAuthenticatedUser", shop.ReserveStockDurationAuthenticatedUser)
	in.integer("limitQuantityPerCheckout", shop.LimitQuantityPerCheckout)
	if len(in) == 0 {
		return nil
	}
	return s.client.Mutate(ctx, shopSettingsUpdate, "shopSettingsUpdate", map[string]any{"input": map[string]any(in)}, nil)
}

// BootstrapChannel creates or updates a channel by slug
func (s *Services) BootstrapChannel(ctx context.Context, ch *models.Channel) error {
	id, _, err := s.lookup(ctx, models.EntityChannels, ch.Slug)
	if err != nil {
		return err
	}

	in := input{"name": ch.Name, "slug": ch.Slug, "defaultCountry": ch.DefaultCountry}
	in.boolean("isActive", ch.IsActive)
	if st := ch.Settings; st != nil {
		if st.AllocationStrategy != "" {
			in["stockSettings"] = map[string]any{"allocationStrategy": st.AllocationStrategy}
		}
		order := input{}
		order.boolean("automaticallyConfirmAllNewOrders", st.AutomaticallyConfirmAllNewOrders)
		order.boolean("allowUnpaidOrders", st.AllowUnpaidOrders)
		if len(order) > 0 {
			in["orderSettings"] = map[string]any(order)
		}
		if st.DefaultTransactionFlowStrategy != "" {
			in["paymentSettings"] = map[string]any{"defaultTransactionFlowStrategy": st.DefaultTransactionFlowStrategy}
		}
	}
	create := in.with("currencyCode", ch.CurrencyCode)

	id, err = s.upsert(ctx, id, channelCreate, channelUpdate, "channel", create, in)
	if err != nil {
		return err
	}
	s.idx.put(models.EntityChannels, id, ch.Slug)
	return nil
}

// BootstrapTaxClass creates or updates a tax class by name
func (s *Services) BootstrapTaxClass(ctx context.Context, tc *models.TaxClass) error {
	id, _, err := s.lookup(ctx, models.EntityTaxClasses, tc.Name)
	if err != nil {
		return err
	}
	rates := make([]map[string]any, 0, len(tc.CountryRates))
	for _, r := range tc.CountryRates {
		rates = append(rates, map[string]any{"countryCode": r.CountryCode, "rate": r.Rate})
	}
	create := input{"name": tc.Name, "createCountryRates": rates}
	update := input{"name": tc.Name, "updateCountryRates": rates}

	id, err = s.upsert(ctx, id, taxClassCreate, taxClassUpdate, "taxClass", create, update)
	if err != nil {
		return err
	}
	s.idx.put(models.EntityTaxClasses, id, tc.Name)
	return nil
}

// ==================== Attributes & types ====================

// BootstrapAttribute creates an attribute or adds its missing values
func (s *Services) BootstrapAttribute(ctx context.Context, a *models.Attribute) error {
	_, err := s.ensureAttribute(ctx, a)
	return err
}

func (s *Services) ensureAttribute(ctx context.Context, a *models.Attribute) (string, error) {
	key := a.Slug
	if key == "" {
		key = a.Name
	}
	id, found, err := s.lookup(ctx, models.EntityAttributes, key)
	if err != nil {
		return "", err
	}
	if !found && a.Slug != "" {
		id, found = s.idx.get(models.EntityAttributes, a.Name)
	}

	values := make([]string, 0, len(a.Values))
	for _, v := range a.Values {
		values = append(values, v.Name)
	}

	if !found {
		attrType := a.Type
		if attrType == "" {
			attrType = models.AttributeScopeProduct
		}
		in := input{"name": a.Name, "type": attrType, "inputType": a.InputType}
		in.str("slug", a.Slug)
		if len(values) > 0 {
			in["values"] = valueInputs(values)
		}
		id, err = s.upsert(ctx, "", attributeCreate, attributeUpdate, "attribute", in, nil)
		if err != nil {
			return "", err
		}
		s.idx.put(models.EntityAttributes, id, a.Slug, a.Name)
		s.idx.add(s.idx.attrValues, id, values...)
		return id, nil
	}

	update := input{"name": a.Name}
	if add := s.idx.missing(s.idx.attrValues, id, values); len(add) > 0 {
		update["addValues"] = valueInputs(add)
	}
	if _, err := s.upsert(ctx, id, attributeCreate, attributeUpdate, "attribute", nil, update); err != nil {
		return "", err
	}
	s.idx.add(s.idx.attrValues, id, values...)
	return id, nil
}

func valueInputs(values []string) []map[string]any {
	out := make([]map[string]any, 0, len(values))
	for _, v := range values {
		out = append(out, map[string]any{"name": v})
	}
	return out
}

// attributeIDs resolves attribute refs. Inline definitions missing remotely
// are created with the given scope; plain references must already exist.
func (s *Services) attributeIDs(ctx context.Context, refs []*models.AttributeRef, scope string) ([]string, error) {
	ids := make([]string, 0, len(refs))
	for _, r := range refs {
		name := r.AttributeName()
		id, found, err := s.lookup(ctx, models.EntityAttributes, name)
		if err != nil {
			return nil, err
		}
		if !found {
			if r.IsReference() || r.InputType == "" {
				return nil, fmt.Errorf("attribute %q not found", name)
			}
			id, err = s.ensureAttribute(ctx, &models.Attribute{
				Name:      r.Name,
				Type:      scope,
				InputType: r.InputType,
				Values:    r.Values,
			})
			if err != nil {
				return nil, err
			}
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// BootstrapProductType creates or updates a product type by name
func (s *Services) BootstrapProductType(ctx context.Context, pt *models.ProductType) error {
	id, _, err := s.lookup(ctx, models.EntityProductTypes, pt.Name)
	if err != nil {
		return err
	}
	productAttrs, err := s.attributeIDs(ctx, pt.ProductAttributes, models.AttributeScopeProduct)
	if err != nil {
		return err
	}
	variantAttrs, err := s.attributeIDs(ctx, pt.VariantAttributes, models.AttributeScopeProduct)
	if err != nil {
		return err
	}

	in := input{
		"name":              pt.Name,
		"hasVariants":       len(variantAttrs) > 0,
		"productAttributes": productAttrs,
		"variantAttributes": variantAttrs,
	}
	in.boolean("isShippingRequired", pt.IsShippingRequired)
	if pt.TaxClass != "" {
		tcID, err := s.resolve(ctx, models.EntityTaxClasses, "tax class", pt.TaxClass)
		if err != nil {
			return err
		}
		in["taxClass"] = tcID
	}

	id, err = s.upsert(ctx, id, productTypeCreate, productTypeUpdate, "productType", in, in)
	if err != nil {
		return err
	}
	s.idx.put(models.EntityProductTypes, id, pt.Name)
	return nil
}

// BootstrapPageType creates or updates a page type by name
func (s *Services) BootstrapPageType(ctx context.Context, pt *models.PageType) error {
	id, _, err := s.lookup(ctx, models.EntityPageTypes, pt.Name)
	if err != nil {
		return err
	}
	attrs, err := s.attributeIDs(ctx, pt.Attributes, models.AttributeScopeContent)
	if err != nil {
		return err
	}

	create := input{"name": pt.Name, "addAttributes": attrs}
	update := input{"name": pt.Name}
	if id != "" {
		if add := s.idx.missing(s.idx.pageTypeAttrs, id, attrs); len(add) > 0 {
			update["addAttributes"] = add
		}
	}

	id, err = s.upsert(ctx, id, pageTypeCreate, pageTypeUpdate, "pageType", create, update)
	if err != nil {
		return err
	}
	s.idx.put(models.EntityPageTypes, id, pt.Name)
	s.idx.add(s.idx.pageTypeAttrs, id, attrs...)
	return nil
}

// ==================== Catalogue structure ====================

// BootstrapCategory creates or updates a category and its subtree
func (s *Services) BootstrapCategory(ctx context.Context, c *models.Category) error {
	return s.upsertCategory(ctx, c, "")
}

func (s *Services) upsertCategory(ctx context.Context, c *models.Category, parentID string) error {
	id, _, err := s.lookup(ctx, models.EntityCategories, c.Slug)
	if err != nil {
		return err
	}
	in := input{"name": c.Name, "slug": c.Slug}
	in.str("description", richText(c.Description))

	if id == "" {
		var payload struct {
			Category struct {
				ID string `json:"id"`
			} `json:"category"`
		}
		vars := map[string]any{"input": map[string]any(in)}
		if parentID != "" {
			vars["parent"] = parentID
		}
		if err := s.client.Mutate(ctx, categoryCreate, "categoryCreate", vars, &payload); err != nil {
			return err
		}
		id = payload.Category.ID
	} else if _, err := s.upsert(ctx, id, categoryCreate, categoryUpdate, "category", nil, in); err != nil {
		return err
	}
	s.idx.put(models.EntityCategories, id, c.Slug)

	for _, sub := range c.Subcategories {
		if err := s.upsertCategory(ctx, sub, id); err != nil {
			return fmt.Errorf("subcategory %q: %w", sub.Slug, err)
		}
	}
	return nil
}

// BootstrapWarehouse creates or updates a warehouse by slug
func (s *Services) BootstrapWarehouse(ctx context.Context, w *models.Warehouse) error {
	id, _, err := s.lookup(ctx, models.EntityWarehouses, w.Slug)
	if err != nil {
		return err
	}
	in := input{"name": w.Name, "slug": w.Slug}
	in.str("email", w.Email)
	if a := w.Address; a != nil {
		addr := input{"streetAddress1": a.StreetAddress1, "city": a.City, "country": a.Country}
		addr.str("streetAddress2", a.StreetAddress2)
		addr.str("postalCode", a.PostalCode)
		addr.str("countryArea", a.CountryArea)
		addr.str("phone", a.Phone)
		addr.str("companyName", a.CompanyName)
		in["address"] = map[string]any(addr)
	}
	// visibility options are only accepted by the update mutation
	update := in.with("", nil)
	update.boolean("isPrivate", w.IsPrivate)
	update.str("clickAndCollectOption", w.ClickAndCollectOption)

	created := id == ""
	id, err = s.upsert(ctx, id, warehouseCreate, warehouseUpdate, "warehouse", in, update)
	if err != nil {
		return err
	}
	s.idx.put(models.EntityWarehouses, id, w.Slug)

	if created && (w.IsPrivate != nil || w.ClickAndCollectOption != "") {
		_, err = s.upsert(ctx, id, warehouseCreate, warehouseUpdate, "warehouse", nil, update)
	}
	return err
}

// BootstrapShippingZone creates or updates a zone and its shipping methods
func (s *Services) BootstrapShippingZone(ctx context.Context, z *models.ShippingZone) error {
	id, _, err := s.lookup(ctx, models.EntityShippingZones, z.Name)
	if err != nil {
		return err
	}
	warehouses, err := s.resolveAll(ctx, models.EntityWarehouses, "warehouse", z.Warehouses)
	if err != nil {
		return err
	}
	channels, err := s.resolveAll(ctx, models.EntityChannels, "channel", z.Channels)
	if err != nil {
		return err
	}

	in := input{"name": z.Name, "countries": nonNil(z.Countries), "addWarehouses": warehouses, "addChannels": channels}
	in.str("description", z.Description)
	in.boolean("default", z.Default)

	id, err = s.upsert(ctx, id, shippingZoneCreate, shippingZoneUpdate, "shippingZone", in, in)
	if err != nil {
		return err
	}
	s.idx.put(models.EntityShippingZones, id, z.Name)

	for _, m := range z.ShippingMethods {
		if err := s.upsertShippingMethod(ctx, id, m, channels); err != nil {
			return fmt.Errorf("shipping method %q: %w", m.Name, err)
		}
	}
	return nil
}

func (s *Services) upsertShippingMethod(ctx context.Context, zoneID string, m *models.ShippingMethod, channels []string) error {
	s.idx.mu.Lock()
	methodID := s.idx.zoneMethods[zoneID][m.Name]
	s.idx.mu.Unlock()

	in := input{"shippingZone": zoneID, "name": m.Name}
	in.str("type", m.Type)
	in.str("description", richText(m.Description))
	in.integer("minimumDeliveryDays", m.MinimumDeliveryDays)
	in.integer("maximumDeliveryDays", m.MaximumDeliveryDays)
	if m.TaxClass != "" {
		tcID, err := s.resolve(ctx, models.EntityTaxClasses, "tax class", m.TaxClass)
		if err != nil {
			return err
		}
		in["taxClass"] = tcID
	}

	methodID, err := s.upsert(ctx, methodID, shippingPriceCreate, shippingPriceUpdate, "shippingMethod", in, in)
	if err != nil {
		return err
	}
	s.idx.mu.Lock()
	if s.idx.zoneMethods[zoneID] == nil {
		s.idx.zoneMethods[zoneID] = make(map[string]string)
	}
	s.idx.zoneMethods[zoneID][m.Name] = methodID
	s.idx.mu.Unlock()

	if len(channels) == 0 {
		return nil
	}
	add := make([]map[string]any, 0, len(channels))
	for _, ch := range channels {
		add = append(add, map[string]any{"channelId": ch, "price": m.Price})
	}
	return s.client.Mutate(ctx, shippingMethodListing, "shippingMethodChannelListingUpdate",
		map[string]any{"id": methodID, "input": map[string]any{"addChannels": add}}, nil)
}

// ==================== Products & merchandising ====================

func (s *Services) assignedAttributes(ctx context.Context, values []*models.ProductAttributeValue) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(values))
	for _, v := range values {
		id, err := s.resolve(ctx, models.EntityAttributes, "attribute", v.Name)
		if err != nil {
			return nil, err
		}
		out = append(out, map[string]any{"id": id, "values": nonNil(v.Values)})
	}
	return out, nil
}

// BootstrapProduct creates or updates a product with its listings and variants
func (s *Services) BootstrapProduct(ctx context.Context, p *models.Product) error {
	id, _, err := s.lookup(ctx, models.EntityProducts, p.Slug)
	if err != nil {
		return err
	}
	categoryID, err := s.resolve(ctx, models.EntityCategories, "category", p.Category)
	if err != nil {
		return err
	}
	attrs, err := s.assignedAttributes(ctx, p.Attributes)
	if err != nil {
		return err
	}

	in := input{"name": p.Name, "slug": p.Slug, "category": categoryID, "attributes": attrs}
	in.str("description", richText(p.Description))
	if p.TaxClass != "" {
		tcID, err := s.resolve(ctx, models.EntityTaxClasses, "tax class", p.TaxClass)
		if err != nil {
			return err
		}
		in["taxClass"] = tcID
	}
	create := in
	if id == "" {
		ptID, err := s.resolve(ctx, models.EntityProductTypes, "product type", p.ProductType)
		if err != nil {
			return err
		}
		create = in.with("productType", ptID)
	}

	id, err = s.upsert(ctx, id, productCreate, productUpdate, "product", create, in)
	if err != nil {
		return err
	}
	s.idx.put(models.EntityProducts, id, p.Slug)

	if err := s.updateProductListings(ctx, id, p.Channels); err != nil {
		return err
	}
	for _, v := range p.Variants {
		if err := s.upsertVariant(ctx, id, v); err != nil {
			return fmt.Errorf("variant %q: %w", v.Sku, err)
		}
	}
	return nil
}

func (s *Services) listingInputs(ctx context.Context, listings []*models.ChannelListing) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(listings))
	for _, l := range listings {
		chID, err := s.resolve(ctx, models.EntityChannels, "channel", l.Channel)
		if err != nil {
			return nil, err
		}
		in := input{"channelId": chID}
		in.boolean("isPublished", l.IsPublished)
		in.boolean("visibleInListings", l.VisibleInListings)
		in.boolean("isAvailableForPurchase", l.AvailableForPurchase)
		out = append(out, in)
	}
	return out, nil
}

func (s *Services) updateProductListings(ctx context.Context, productID string, listings []*models.ChannelListing) error {
	if len(listings) == 0 {
		return nil
	}
	update, err := s.listingInputs(ctx, listings)
	if err != nil {
		return err
	}
	return s.client.Mutate(ctx, productListing, "productChannelListingUpdate",
		map[string]any{"id": productID, "input": map[string]any{"updateChannels": update}}, nil)
}

func (s *Services) upsertVariant(ctx context.Context, productID string, v *models.ProductVariant) error {
	s.idx.mu.Lock()
	variantID := s.idx.variants[v.Sku]
	s.idx.mu.Unlock()

	attrs, err := s.assignedAttributes(ctx, v.Attributes)
	if err != nil {
		return err
	}
	in := input{"sku": v.Sku, "name": v.Name, "attributes": attrs}
	if v.Weight > 0 {
		in["weight"] = v.Weight
	}
	create := in.with("product", productID)

	variantID, err = s.upsert(ctx, variantID, variantCreate, variantUpdate, "productVariant", create, in)
	if err != nil {
		return err
	}
	s.idx.mu.Lock()
	s.idx.variants[v.Sku] = variantID
	s.idx.mu.Unlock()

	if len(v.Channels) == 0 {
		return nil
	}
	listings := make([]map[string]any, 0, len(v.Channels))
	for _, l := range v.Channels {
		chID, err := s.resolve(ctx, models.EntityChannels, "channel", l.Channel)
		if err != nil {
			return err
		}
		li := input{"channelId": chID, "price": l.Price}
		if l.CostPrice > 0 {
			li["costPrice"] = l.CostPrice
		}
		listings = append(listings, li)
	}
	return s.client.Mutate(ctx, variantListing, "productVariantChannelListingUpdate",
		map[string]any{"id": variantID, "input": listings}, nil)
}

// BootstrapCollection creates or updates a collection, its products and listings
func (s *Services) BootstrapCollection(ctx context.Context, c *models.Collection) error {
	id, _, err := s.lookup(ctx, models.EntityCollections, c.Slug)
	if err != nil {
		return err
	}
	products, err := s.resolveAll(ctx, models.EntityProducts, "product", c.Products)
	if err != nil {
		return err
	}

	in := input{"name": c.Name, "slug": c.Slug}
	in.str("description", richText(c.Description))
	create := in.with("products", products)

	existing := id != ""
	id, err = s.upsert(ctx, id, collectionCreate, collectionUpdate, "collection", create, in)
	if err != nil {
		return err
	}
	s.idx.put(models.EntityCollections, id, c.Slug)

	if existing {
		if add := s.idx.missing(s.idx.collectionProducts, id, products); len(add) > 0 {
			if err := s.client.Mutate(ctx, collectionAddProducts, "collectionAddProducts",
				map[string]any{"id": id, "products": add}, nil); err != nil {
				return err
			}
		}
	}
	s.idx.add(s.idx.collectionProducts, id, products...)

	if len(c.Channels) == 0 {
		return nil
	}
	listings, err := s.listingInputs(ctx, c.Channels)
	if err != nil {
		return err
	}
	for _, l := range listings {
		delete(l, "visibleInListings")
		delete(l, "isAvailableForPurchase")
	}
	return s.client.Mutate(ctx, collectionListing, "collectionChannelListingUpdate",
		map[string]any{"id": id, "input": map[string]any{"addChannels": listings}}, nil)
}

// BootstrapMenu creates or updates a menu. Items are replaced wholesale
// because they carry no natural key across levels.
func (s *Services) BootstrapMenu(ctx context.Context, m *models.Menu) error {
	id, _, err := s.lookup(ctx, models.EntityMenus, m.Slug)
	if err != nil {
		return err
	}
	in := input{"name": m.Name, "slug": m.Slug}

	existing := id != ""
	id, err = s.upsert(ctx, id, menuCreate, menuUpdate, "menu", in, in)
	if err != nil {
		return err
	}
	s.idx.put(models.EntityMenus, id, m.Slug)

	if existing {
		s.idx.mu.Lock()
		old := s.idx.menuItems[id]
		s.idx.mu.Unlock()
		if len(old) > 0 {
			if err := s.client.Mutate(ctx, menuItemBulkDelete, "menuItemBulkDelete", map[string]any{"ids": old}, nil); err != nil {
				return err
			}
		}
	}

	var top []string
	for _, item := range m.Items {
		itemID, err := s.createMenuItem(ctx, id, "", item)
		if err != nil {
			return fmt.Errorf("menu item %q: %w", item.Name, err)
		}
		top = append(top, itemID)
	}
	s.idx.mu.Lock()
	s.idx.menuItems[id] = top
	s.idx.mu.Unlock()
	return nil
}

func (s *Services) createMenuItem(ctx context.Context, menuID, parentID string, item *models.MenuItem) (string, error) {
	in := input{"menu": menuID, "name": item.Name}
	in.str("parent", parentID)
	in.str("url", item.URL)
	if item.Category != "" {
		catID, err := s.resolve(ctx, models.EntityCategories, "category", item.Category)
		if err != nil {
			return "", err
		}
		in["category"] = catID
	}
	if item.Collection != "" {
		colID, err := s.resolve(ctx, models.EntityCollections, "collection", item.Collection)
		if err != nil {
			return "", err
		}
		in["collection"] = colID
	}
	if item.Page != "" {
		pageID, err := s.pageID(ctx, item.Page)
		if err != nil {
			return "", err
		}
		in["page"] = pageID
	}

	itemID, err := s.upsert(ctx, "", menuItemCreate, "", "menuItem", in, nil)
	if err != nil {
		return "", err
	}
	for _, child := range item.Children {
		if _, err := s.createMenuItem(ctx, menuID, itemID, child); err != nil {
			return "", fmt.Errorf("%q: %w", child.Name, err)
		}
	}
	return itemID, nil
}

func (s *Services) pageID(ctx context.Context, slug string) (string, error) {
	var data struct {
		Page *struct {
			ID string `json:"id"`
		} `json:"page"`
	}
	if err := s.client.Do(ctx, pageBySlugQuery, map[string]any{"slug": slug}, &data); err != nil {
		return "", err
	}
	if data.Page == nil {
		return "", fmt.Errorf("page %q not found", slug)
	}
	return data.Page.ID, nil
}

// BootstrapVoucher creates or updates a voucher by code
func (s *Services) BootstrapVoucher(ctx context.Context, v *models.Voucher) error {
	id, _, err := s.lookup(ctx, models.EntityVouchers, v.Code)
	if err != nil {
		return err
	}
	in := input{"name": v.Name, "code": v.Code, "discountValueType": v.DiscountValueType}
	in.str("type", v.Type)
	in.integer("usageLimit", v.UsageLimit)
	in.boolean("applyOncePerCustomer", v.ApplyOncePerCustomer)
	in.boolean("applyOncePerOrder", v.ApplyOncePerOrder)
	in.str("startDate", v.StartDate)
	in.str("endDate", v.EndDate)

	id, err = s.upsert(ctx, id, voucherCreate, voucherUpdate, "voucher", in, in)
	if err != nil {
		return err
	}
	s.idx.put(models.EntityVouchers, id, v.Code)

	if len(v.Channels) == 0 {
		return nil
	}
	add := make([]map[string]any, 0, len(v.Channels))
	for _, l := range v.Channels {
		chID, err := s.resolve(ctx, models.EntityChannels, "channel", l.Channel)
		if err != nil {
			return err
		}
		li := input{"channelId": chID, "discountValue": l.DiscountValue}
		if l.MinimumSpent > 0 {
			li["minAmountSpent"] = l.MinimumSpent
		}
		add = append(add, li)
	}
	return s.client.Mutate(ctx, voucherListing, "voucherChannelListingUpdate",
		map[string]any{"id": id, "input": map[string]any{"addChannels": add}}, nil)
}
