// Package models defines the core data structures used throughout shopsync
// including the declarative configuration, diff results and operations.
package models

// Configuration is the declarative state of one commerce instance. It is
// used both for the desired (local file) and the observed (remote) state.
type Configuration struct {
	Shop          *ShopSettings   `yaml:"shop,omitempty" json:"shop,omitempty" validate:"omitempty"`
	Channels      []*Channel      `yaml:"channels,omitempty" json:"channels,omitempty" validate:"dive"`
	TaxClasses    []*TaxClass     `yaml:"taxClasses,omitempty" json:"taxClasses,omitempty" validate:"dive"`
	Attributes    []*Attribute    `yaml:"attributes,omitempty" json:"attributes,omitempty" validate:"dive"`
	ProductTypes  []*ProductType  `yaml:"productTypes,omitempty" json:"productTypes,omitempty" validate:"dive"`
	PageTypes     []*PageType     `yaml:"pageTypes,omitempty" json:"pageTypes,omitempty" validate:"dive"`
	Categories    []*Category     `yaml:"categories,omitempty" json:"categories,omitempty" validate:"dive"`
	Warehouses    []*Warehouse    `yaml:"warehouses,omitempty" json:"warehouses,omitempty" validate:"dive"`
	ShippingZones []*ShippingZone `yaml:"shippingZones,omitempty" json:"shippingZones,omitempty" validate:"dive"`
	Products      []*Product      `yaml:"products,omitempty" json:"products,omitempty" validate:"dive"`
	Collections   []*Collection   `yaml:"collections,omitempty" json:"collections,omitempty" validate:"dive"`
	Menus         []*Menu         `yaml:"menus,omitempty" json:"menus,omitempty" validate:"dive"`
	Vouchers      []*Voucher      `yaml:"vouchers,omitempty" json:"vouchers,omitempty" validate:"dive"`
}

// ShopSettings is the singleton shop section. Unset fields are not managed.
type ShopSettings struct {
	HeaderText                            string `yaml:"headerText,omitempty" json:"headerText,omitempty"`
	Description                           string `yaml:"description,omitempty" json:"description,omitempty"`
	DefaultMailSenderName                 string `yaml:"defaultMailSenderName,omitempty" json:"defaultMailSenderName,omitempty"`
	DefaultMailSenderAddress              string `yaml:"defaultMailSenderAddress,omitempty" json:"defaultMailSenderAddress,omitempty" validate:"omitempty,email"`
	CustomerSetPasswordURL                string `yaml:"customerSetPasswordUrl,omitempty" json:"customerSetPasswordUrl,omitempty" validate:"omitempty,url"`
	DefaultWeightUnit                     string `yaml:"defaultWeightUnit,omitempty" json:"defaultWeightUnit,omitempty" validate:"omitempty,oneof=G LB OZ KG TONNE"`
	TrackInventoryByDefault               *bool  `yaml:"trackInventoryByDefault,omitempty" json:"trackInventoryByDefault,omitempty"`
	AutomaticFulfillmentDigitalProducts   *bool  `yaml:"automaticFulfillmentDigitalProducts,omitempty" json:"automaticFulfillmentDigitalProducts,omitempty"`
	FulfillmentAutoApprove                *bool  `yaml:"fulfillmentAutoApprove,omitempty" json:"fulfillmentAutoApprove,omitempty"`
	FulfillmentAllowUnpaid                *bool  `yaml:"fulfillmentAllowUnpaid,omitempty" json:"fulfillmentAllowUnpaid,omitempty"`
	EnableAccountConfirmationByEmail      *bool  `yaml:"enableAccountConfirmationByEmail,omitempty" json:"enableAccountConfirmationByEmail,omitempty"`
	ReserveStockDurationAnonymousUser     *int   `yaml:"reserveStockDurationAnonymousUser,omitempty" json:"reserveStockDurationAnonymousUser,omitempty" validate:"omitempty,min=0"`
	ReserveStockDurationAuthenticatedUser *int   `yaml:"reserveStockDurationAuthenticatedUser,omitempty" json:"reserveStockDurationAuthenticatedUser,omitempty" validate:"omitempty,min=0"`
	LimitQuantityPerCheckout              *int   `yaml:"limitQuantityPerCheckout,omitempty" json:"limitQuantityPerCheckout,omitempty" validate:"omitempty,min=1"`
}

// Channel is a sales channel
type Channel struct {
	Name           string           `yaml:"name" json:"name" validate:"required"`
	Slug           string           `yaml:"slug" json:"slug" validate:"required"`
	CurrencyCode   string           `yaml:"currencyCode" json:"currencyCode" validate:"required,len=3"`
	DefaultCountry string           `yaml:"defaultCountry" json:"defaultCountry" validate:"required,len=2"`
	IsActive       *bool            `yaml:"isActive,omitempty" json:"isActive,omitempty"`
	Settings       *ChannelSettings `yaml:"settings,omitempty" json:"settings,omitempty"`
}

// ChannelSettings holds the optional per-channel behaviour flags
type ChannelSettings struct {
	AllocationStrategy               string `yaml:"allocationStrategy,omitempty" json:"allocationStrategy,omitempty" validate:"omitempty,oneof=PRIORITIZE_SORTING_ORDER PRIORITIZE_HIGH_STOCK"`
	AutomaticallyConfirmAllNewOrders *bool  `yaml:"automaticallyConfirmAllNewOrders,omitempty" json:"automaticallyConfirmAllNewOrders,omitempty"`
	AllowUnpaidOrders                *bool  `yaml:"allowUnpaidOrders,omitempty" json:"allowUnpaidOrders,omitempty"`
	DefaultTransactionFlowStrategy   string `yaml:"defaultTransactionFlowStrategy,omitempty" json:"defaultTransactionFlowStrategy,omitempty"`
}

// TaxClass groups per-country tax rates
type TaxClass struct {
	Name         string         `yaml:"name" json:"name" validate:"required"`
	CountryRates []*CountryRate `yaml:"countryRates,omitempty" json:"countryRates,omitempty" validate:"dive"`
}

// CountryRate is a tax rate for one country
type CountryRate struct {
	CountryCode string  `yaml:"countryCode" json:"countryCode" validate:"required,len=2"`
	Rate        float64 `yaml:"rate" json:"rate" validate:"min=0,max=100"`
}

// Attribute scopes
const (
	AttributeScopeProduct = "PRODUCT_TYPE"
	AttributeScopeContent = "PAGE_TYPE"
)

// Attribute is a shared attribute definition
type Attribute struct {
	ID        string            `yaml:"-" json:"-"`
	Name      string            `yaml:"name" json:"name" validate:"required"`
	Slug      string            `yaml:"slug,omitempty" json:"slug,omitempty"`
	Type      string            `yaml:"type,omitempty" json:"type,omitempty" validate:"omitempty,oneof=PRODUCT_TYPE PAGE_TYPE"`
	InputType string            `yaml:"inputType" json:"inputType" validate:"required"`
	Values    []*AttributeValue `yaml:"values,omitempty" json:"values,omitempty" validate:"dive"`
}

// HasChoices reports whether the attribute's values are a fixed choice list
func (a *Attribute) HasChoices() bool {
	switch a.InputType {
	case "DROPDOWN", "MULTISELECT", "SWATCH":
		return true
	}
	return false
}

// AttributeValue is one choice of a choice attribute
type AttributeValue struct {
	Name string `yaml:"name" json:"name" validate:"required"`
}

// AttributeRef is an attribute used by a product or page type. It either
// references a shared attribute by name or defines one inline.
type AttributeRef struct {
	Attribute string            `yaml:"attribute,omitempty" json:"attribute,omitempty"`
	Name      string            `yaml:"name,omitempty" json:"name,omitempty"`
	InputType string            `yaml:"inputType,omitempty" json:"inputType,omitempty"`
	Values    []*AttributeValue `yaml:"values,omitempty" json:"values,omitempty"`
}

// AttributeName returns the referenced or inline attribute name
func (r *AttributeRef) AttributeName() string {
	if r.Attribute != "" {
		return r.Attribute
	}
	return r.Name
}

// IsReference reports whether this ref points at an existing attribute
func (r *AttributeRef) IsReference() bool {
	return r.Attribute != ""
}

// ProductType describes the shape of a family of products
type ProductType struct {
	Name               string          `yaml:"name" json:"name" validate:"required"`
	IsShippingRequired *bool           `yaml:"isShippingRequired,omitempty" json:"isShippingRequired,omitempty"`
	TaxClass           string          `yaml:"taxClass,omitempty" json:"taxClass,omitempty"`
	ProductAttributes  []*AttributeRef `yaml:"productAttributes,omitempty" json:"productAttributes,omitempty"`
	VariantAttributes  []*AttributeRef `yaml:"variantAttributes,omitempty" json:"variantAttributes,omitempty"`
}

// PageType describes the shape of content pages
type PageType struct {
	Name       string          `yaml:"name" json:"name" validate:"required"`
	Attributes []*AttributeRef `yaml:"attributes,omitempty" json:"attributes,omitempty"`
}

// Category is a node of the category tree
type Category struct {
	Name          string      `yaml:"name" json:"name" validate:"required"`
	Slug          string      `yaml:"slug" json:"slug" validate:"required"`
	Description   string      `yaml:"description,omitempty" json:"description,omitempty"`
	Subcategories []*Category `yaml:"subcategories,omitempty" json:"subcategories,omitempty" validate:"dive"`
}

// Address is a postal address
type Address struct {
	StreetAddress1 string `yaml:"streetAddress1" json:"streetAddress1" validate:"required"`
	StreetAddress2 string `yaml:"streetAddress2,omitempty" json:"streetAddress2,omitempty"`
	City           string `yaml:"city" json:"city" validate:"required"`
	PostalCode     string `yaml:"postalCode,omitempty" json:"postalCode,omitempty"`
	Country        string `yaml:"country" json:"country" validate:"required,len=2"`
	CountryArea    string `yaml:"countryArea,omitempty" json:"countryArea,omitempty"`
	Phone          string `yaml:"phone,omitempty" json:"phone,omitempty"`
	CompanyName    string `yaml:"companyName,omitempty" json:"companyName,omitempty"`
}

// Warehouse is a stock location
type Warehouse struct {
	Name                  string   `yaml:"name" json:"name" validate:"required"`
	Slug                  string   `yaml:"slug" json:"slug" validate:"required"`
	Email                 string   `yaml:"email,omitempty" json:"email,omitempty" validate:"omitempty,email"`
	IsPrivate             *bool    `yaml:"isPrivate,omitempty" json:"isPrivate,omitempty"`
	ClickAndCollectOption string   `yaml:"clickAndCollectOption,omitempty" json:"clickAndCollectOption,omitempty" validate:"omitempty,oneof=DISABLED LOCAL ALL"`
	Address               *Address `yaml:"address,omitempty" json:"address,omitempty"`
}

// ShippingZone groups countries, warehouses and shipping methods
type ShippingZone struct {
	Name            string            `yaml:"name" json:"name" validate:"required"`
	Description     string            `yaml:"description,omitempty" json:"description,omitempty"`
	Default         *bool             `yaml:"default,omitempty" json:"default,omitempty"`
	Countries       []string          `yaml:"countries,omitempty" json:"countries,omitempty" validate:"dive,len=2"`
	Warehouses      []string          `yaml:"warehouses,omitempty" json:"warehouses,omitempty"`
	Channels        []string          `yaml:"channels,omitempty" json:"channels,omitempty"`
	ShippingMethods []*ShippingMethod `yaml:"shippingMethods,omitempty" json:"shippingMethods,omitempty" validate:"dive"`
}

// ShippingMethod is a rate inside a shipping zone
type ShippingMethod struct {
	Name                string  `yaml:"name" json:"name" validate:"required"`
	Type                string  `yaml:"type,omitempty" json:"type,omitempty" validate:"omitempty,oneof=PRICE WEIGHT"`
	Description         string  `yaml:"description,omitempty" json:"description,omitempty"`
	MinimumDeliveryDays *int    `yaml:"minimumDeliveryDays,omitempty" json:"minimumDeliveryDays,omitempty"`
	MaximumDeliveryDays *int    `yaml:"maximumDeliveryDays,omitempty" json:"maximumDeliveryDays,omitempty"`
	TaxClass            string  `yaml:"taxClass,omitempty" json:"taxClass,omitempty"`
	Price               float64 `yaml:"price,omitempty" json:"price,omitempty" validate:"min=0"`
}

// Product is a sellable item
type Product struct {
	Name        string                   `yaml:"name" json:"name" validate:"required"`
	Slug        string                   `yaml:"slug" json:"slug" validate:"required"`
	ProductType string                   `yaml:"productType" json:"productType" validate:"required"`
	Category    string                   `yaml:"category" json:"category" validate:"required"`
	Description string                   `yaml:"description,omitempty" json:"description,omitempty"`
	TaxClass    string                   `yaml:"taxClass,omitempty" json:"taxClass,omitempty"`
	Attributes  []*ProductAttributeValue `yaml:"attributes,omitempty" json:"attributes,omitempty" validate:"dive"`
	Channels    []*ChannelListing        `yaml:"channelListings,omitempty" json:"channelListings,omitempty" validate:"dive"`
	Variants    []*ProductVariant        `yaml:"variants,omitempty" json:"variants,omitempty" validate:"dive"`
}

// ProductAttributeValue assigns values of an attribute to a product or variant
type ProductAttributeValue struct {
	Name   string   `yaml:"name" json:"name" validate:"required"`
	Values []string `yaml:"values" json:"values"`
}

// ChannelListing publishes a product in a channel
type ChannelListing struct {
	Channel              string `yaml:"channel" json:"channel" validate:"required"`
	IsPublished          *bool  `yaml:"isPublished,omitempty" json:"isPublished,omitempty"`
	VisibleInListings    *bool  `yaml:"visibleInListings,omitempty" json:"visibleInListings,omitempty"`
	AvailableForPurchase *bool  `yaml:"isAvailableForPurchase,omitempty" json:"isAvailableForPurchase,omitempty"`
}

// ProductVariant is one SKU of a product
type ProductVariant struct {
	Name       string                   `yaml:"name" json:"name" validate:"required"`
	Sku        string                   `yaml:"sku" json:"sku" validate:"required"`
	Weight     float64                  `yaml:"weight,omitempty" json:"weight,omitempty" validate:"min=0"`
	Attributes []*ProductAttributeValue `yaml:"attributes,omitempty" json:"attributes,omitempty" validate:"dive"`
	Channels   []*VariantListing        `yaml:"channelListings,omitempty" json:"channelListings,omitempty" validate:"dive"`
}

// VariantListing is the price of a variant in one channel
type VariantListing struct {
	Channel   string  `yaml:"channel" json:"channel" validate:"required"`
	Price     float64 `yaml:"price" json:"price" validate:"min=0"`
	CostPrice float64 `yaml:"costPrice,omitempty" json:"costPrice,omitempty" validate:"min=0"`
}

// Collection is a curated list of products
type Collection struct {
	Name        string            `yaml:"name" json:"name" validate:"required"`
	Slug        string            `yaml:"slug" json:"slug" validate:"required"`
	Description string            `yaml:"description,omitempty" json:"description,omitempty"`
	Products    []string          `yaml:"products,omitempty" json:"products,omitempty"`
	Channels    []*ChannelListing `yaml:"channelListings,omitempty" json:"channelListings,omitempty" validate:"dive"`
}

// Menu is a navigation structure
type Menu struct {
	Name  string      `yaml:"name" json:"name" validate:"required"`
	Slug  string      `yaml:"slug" json:"slug" validate:"required"`
	Items []*MenuItem `yaml:"items,omitempty" json:"items,omitempty" validate:"dive"`
}

// MenuItem is a node of a menu. At most one link target is set.
type MenuItem struct {
	Name       string      `yaml:"name" json:"name" validate:"required"`
	URL        string      `yaml:"url,omitempty" json:"url,omitempty" validate:"omitempty,url"`
	Category   string      `yaml:"category,omitempty" json:"category,omitempty"`
	Collection string      `yaml:"collection,omitempty" json:"collection,omitempty"`
	Page       string      `yaml:"page,omitempty" json:"page,omitempty"`
	Children   []*MenuItem `yaml:"children,omitempty" json:"children,omitempty" validate:"dive"`
}

// Voucher is a discount code
type Voucher struct {
	Name                 string            `yaml:"name" json:"name" validate:"required"`
	Code                 string            `yaml:"code" json:"code" validate:"required"`
	DiscountValueType    string            `yaml:"discountValueType" json:"discountValueType" validate:"required,oneof=FIXED PERCENTAGE"`
	Type                 string            `yaml:"type,omitempty" json:"type,omitempty" validate:"omitempty,oneof=ENTIRE_ORDER SHIPPING SPECIFIC_PRODUCT"`
	UsageLimit           *int              `yaml:"usageLimit,omitempty" json:"usageLimit,omitempty" validate:"omitempty,min=1"`
	ApplyOncePerCustomer *bool             `yaml:"applyOncePerCustomer,omitempty" json:"applyOncePerCustomer,omitempty"`
	ApplyOncePerOrder    *bool             `yaml:"applyOncePerOrder,omitempty" json:"applyOncePerOrder,omitempty"`
	StartDate            string            `yaml:"startDate,omitempty" json:"startDate,omitempty"`
	EndDate              string            `yaml:"endDate,omitempty" json:"endDate,omitempty"`
	Channels             []*VoucherListing `yaml:"channelListings,omitempty" json:"channelListings,omitempty" validate:"dive"`
}

// VoucherListing is the discount value in one channel
type VoucherListing struct {
	Channel       string  `yaml:"channel" json:"channel" validate:"required"`
	DiscountValue float64 `yaml:"discountValue" json:"discountValue" validate:"min=0"`
	MinimumSpent  float64 `yaml:"minimumSpent,omitempty" json:"minimumSpent,omitempty" validate:"min=0"`
}

// Empty returns an empty configuration
func Empty() *Configuration {
	return &Configuration{}
}
