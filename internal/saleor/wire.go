package saleor

import (
	"context"
	"maps"
)

// pageSize is the connection page size used for every paginated query
const pageSize = 100

type pageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

type connection[T any] struct {
	Edges []struct {
		Node T `json:"node"`
	} `json:"edges"`
	PageInfo pageInfo `json:"pageInfo"`
}

func (c connection[T]) nodes() []T {
	out := make([]T, 0, len(c.Edges))
	for _, e := range c.Edges {
		out = append(out, e.Node)
	}
	return out
}

// paginate follows the connection at data.<field> until the last page
func paginate[T any](ctx context.Context, c *Client, query, field string, vars map[string]any) ([]T, error) {
	var out []T
	var after *string
	for {
		v := maps.Clone(vars)
		if v == nil {
			v = map[string]any{}
		}
		v["first"] = pageSize
		v["after"] = after

		var data map[string]connection[T]
		if err := c.Do(ctx, query, v, &data); err != nil {
			return nil, err
		}
		conn := data[field]
		out = append(out, conn.nodes()...)
		if !conn.PageInfo.HasNextPage || conn.PageInfo.EndCursor == "" {
			return out, nil
		}
		cursor := conn.PageInfo.EndCursor
		after = &cursor
	}
}

type ref struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Slug string `json:"slug,omitempty"`
	Code string `json:"code,omitempty"`
}

type money struct {
	Amount float64 `json:"amount"`
}

type shopNode struct {
	HeaderText                            string `json:"headerText"`
	Description                           string `json:"description"`
	DefaultMailSenderName                 string `json:"defaultMailSenderName"`
	DefaultMailSenderAddress              string `json:"defaultMailSenderAddress"`
	CustomerSetPasswordURL                string `json:"customerSetPasswordUrl"`
	DefaultWeightUnit                     string `json:"defaultWeightUnit"`
	TrackInventoryByDefault               *bool  `json:"trackInventoryByDefault"`
	AutomaticFulfillmentDigitalProducts   *bool  `json:"automaticFulfillmentDigitalProducts"`
	FulfillmentAutoApprove                *bool  `json:"fulfillmentAutoApprove"`
	FulfillmentAllowUnpaid                *bool  `json:"fulfillmentAllowUnpaid"`
	EnableAccountConfirmationByEmail      *bool  `json:"enableAccountConfirmationByEmail"`
	ReserveStockDurationAnonymousUser     *int   `json:"reserveStockDurationAnonymousUser"`
	ReserveStockDurationAuthenticatedUser *int   `json:"reserveStockDurationAuthenticatedUser"`
	LimitQuantityPerCheckout              *int   `json:"limitQuantityPerCheckout"`
}

const shopQuery = `query Shop {
  shop {
    headerText description defaultMailSenderName defaultMailSenderAddress
    customerSetPasswordUrl defaultWeightUnit trackInventoryByDefault
    automaticFulfillmentDigitalProducts fulfillmentAutoApprove fulfillmentAllowUnpaid
    enableAccountConfirmationByEmail reserveStockDurationAnonymousUser
    reserveStockDurationAuthenticatedUser limitQuantityPerCheckout
  }
}`

type channelNode struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Slug           string `json:"slug"`
	CurrencyCode   string `json:"currencyCode"`
	DefaultCountry struct {
		Code string `json:"code"`
	} `json:"defaultCountry"`
	IsActive      bool `json:"isActive"`
	StockSettings struct {
		AllocationStrategy string `json:"allocationStrategy"`
	} `json:"stockSettings"`
	OrderSettings struct {
		AutomaticallyConfirmAllNewOrders *bool `json:"automaticallyConfirmAllNewOrders"`
		AllowUnpaidOrders                *bool `json:"allowUnpaidOrders"`
	} `json:"orderSettings"`
	PaymentSettings struct {
		DefaultTransactionFlowStrategy string `json:"defaultTransactionFlowStrategy"`
	} `json:"paymentSettings"`
}

const channelsQuery = `query Channels {
  channels {
    id name slug currencyCode isActive
    defaultCountry { code }
    stockSettings { allocationStrategy }
    orderSettings { automaticallyConfirmAllNewOrders allowUnpaidOrders }
    paymentSettings { defaultTransactionFlowStrategy }
  }
}`

type taxClassNode struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Countries []struct {
		Country struct {
			Code string `json:"code"`
		} `json:"country"`
		Rate float64 `json:"rate"`
	} `json:"countries"`
}

const taxClassesQuery = `query TaxClasses($first: Int!, $after: String) {
  taxClasses(first: $first, after: $after) {
    edges { node { id name countries { country { code } rate } } }
    pageInfo { hasNextPage endCursor }
  }
}`

type attributeNode struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Slug      string                 `json:"slug"`
	Type      string                 `json:"type"`
	InputType string                 `json:"inputType"`
	Choices   *connection[valueNode] `json:"choices"`
}

type valueNode struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

const attributesQuery = `query Attributes($first: Int!, $after: String, $filter: AttributeFilterInput) {
  attributes(first: $first, after: $after, filter: $filter) {
    edges { node {
      id name slug type inputType
      choices(first: 100) { edges { node { id name slug } } }
    } }
    pageInfo { hasNextPage endCursor }
  }
}`

type productTypeNode struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	IsShippingRequired bool   `json:"isShippingRequired"`
	TaxClass           *ref   `json:"taxClass"`
	ProductAttributes  []ref  `json:"productAttributes"`
	VariantAttributes  []ref  `json:"variantAttributes"`
}

const productTypesQuery = `query ProductTypes($first: Int!, $after: String) {
  productTypes(first: $first, after: $after) {
    edges { node {
      id name isShippingRequired
      taxClass { id name }
      productAttributes { id name }
      variantAttributes { id name }
    } }
    pageInfo { hasNextPage endCursor }
  }
}`

type pageTypeNode struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Attributes []ref  `json:"attributes"`
}

const pageTypesQuery = `query PageTypes($first: Int!, $after: String) {
  pageTypes(first: $first, after: $after) {
    edges { node { id name attributes { id name } } }
    pageInfo { hasNextPage endCursor }
  }
}`

type categoryNode struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Parent      *ref   `json:"parent"`
}

const categoriesQuery = `query Categories($first: Int!, $after: String) {
  categories(first: $first, after: $after) {
    edges { node { id name slug description parent { id slug } } }
    pageInfo { hasNextPage endCursor }
  }
}`

type warehouseNode struct {
	ID                    string `json:"id"`
	Name                  string `json:"name"`
	Slug                  string `json:"slug"`
	Email                 string `json:"email"`
	IsPrivate             bool   `json:"isPrivate"`
	ClickAndCollectOption string `json:"clickAndCollectOption"`
	Address               struct {
		StreetAddress1 string `json:"streetAddress1"`
		StreetAddress2 string `json:"streetAddress2"`
		City           string `json:"city"`
		PostalCode     string `json:"postalCode"`
		Country        struct {
			Code string `json:"code"`
		} `json:"country"`
		CountryArea string `json:"countryArea"`
		Phone       string `json:"phone"`
		CompanyName string `json:"companyName"`
	} `json:"address"`
}

const warehousesQuery = `query Warehouses($first: Int!, $after: String) {
  warehouses(first: $first, after: $after) {
    edges { node {
      id name slug email isPrivate clickAndCollectOption
      address {
        streetAddress1 streetAddress2 city postalCode countryArea phone companyName
        country { code }
      }
    } }
    pageInfo { hasNextPage endCursor }
  }
}`

type shippingMethodNode struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	Type                string `json:"type"`
	Description         string `json:"description"`
	MinimumDeliveryDays *int   `json:"minimumDeliveryDays"`
	MaximumDeliveryDays *int   `json:"maximumDeliveryDays"`
	TaxClass            *ref   `json:"taxClass"`
	ChannelListings     []struct {
		Price *money `json:"price"`
	} `json:"channelListings"`
}

type shippingZoneNode struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Default     bool   `json:"default"`
	Countries   []struct {
		Code string `json:"code"`
	} `json:"countries"`
	Warehouses      []ref                `json:"warehouses"`
	Channels        []ref                `json:"channels"`
	ShippingMethods []shippingMethodNode `json:"shippingMethods"`
}

const shippingZonesQuery = `query ShippingZones($first: Int!, $after: String) {
  shippingZones(first: $first, after: $after) {
    edges { node {
      id name description default
      countries { code }
      warehouses { id slug }
      channels { id slug }
      shippingMethods {
        id name type description minimumDeliveryDays maximumDeliveryDays
        taxClass { id name }
        channelListings { price { amount } }
      }
    } }
    pageInfo { hasNextPage endCursor }
  }
}`

type assignedAttributeNode struct {
	Attribute ref   `json:"attribute"`
	Values    []ref `json:"values"`
}

type listingNode struct {
	Channel                ref   `json:"channel"`
	IsPublished            *bool `json:"isPublished"`
	VisibleInListings      *bool `json:"visibleInListings"`
	IsAvailableForPurchase *bool `json:"isAvailableForPurchase"`
}

type variantNode struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Sku    string `json:"sku"`
	Weight *struct {
		Value float64 `json:"value"`
	} `json:"weight"`
	Attributes      []assignedAttributeNode `json:"attributes"`
	ChannelListings []struct {
		Channel   ref    `json:"channel"`
		Price     *money `json:"price"`
		CostPrice *money `json:"costPrice"`
	} `json:"channelListings"`
}

type productNode struct {
	ID              string                  `json:"id"`
	Name            string                  `json:"name"`
	Slug            string                  `json:"slug"`
	Description     string                  `json:"description"`
	ProductType     ref                     `json:"productType"`
	Category        *ref                    `json:"category"`
	TaxClass        *ref                    `json:"taxClass"`
	Attributes      []assignedAttributeNode `json:"attributes"`
	ChannelListings []listingNode           `json:"channelListings"`
	Variants        []variantNode           `json:"variants"`
}

const productsQuery = `query Products($first: Int!, $after: String) {
  products(first: $first, after: $after) {
    edges { node {
      id name slug description
      productType { id name }
      category { id slug }
      taxClass { id name }
      attributes { attribute { id name } values { name } }
      channelListings { channel { id slug } isPublished visibleInListings isAvailableForPurchase }
      variants {
        id name sku
        weight { value }
        attributes { attribute { id name } values { name } }
        channelListings { channel { id slug } price { amount } costPrice { amount } }
      }
    } }
    pageInfo { hasNextPage endCursor }
  }
}`

type collectionNode struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Slug            string           `json:"slug"`
	Description     string           `json:"description"`
	Products        *connection[ref] `json:"products"`
	ChannelListings []listingNode    `json:"channelListings"`
}

const collectionsQuery = `query Collections($first: Int!, $after: String) {
  collections(first: $first, after: $after) {
    edges { node {
      id name slug description
      products(first: 100) { edges { node { id slug } } }
      channelListings { channel { id slug } isPublished }
    } }
    pageInfo { hasNextPage endCursor }
  }
}`

type menuItemNode struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	URL        string         `json:"url"`
	Category   *ref           `json:"category"`
	Collection *ref           `json:"collection"`
	Page       *ref           `json:"page"`
	Children   []menuItemNode `json:"children"`
}

type menuNode struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Slug  string         `json:"slug"`
	Items []menuItemNode `json:"items"`
}

const menuItemFields = `id name url category { slug } collection { slug } page { slug }`

const menusQuery = `query Menus($first: Int!, $after: String) {
  menus(first: $first, after: $after) {
    edges { node {
      id name slug
      items {
        ` + menuItemFields + `
        children {
          ` + menuItemFields + `
          children { ` + menuItemFields + ` }
        }
      }
    } }
    pageInfo { hasNextPage endCursor }
  }
}`

type voucherNode struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	Code                 string `json:"code"`
	DiscountValueType    string `json:"discountValueType"`
	Type                 string `json:"type"`
	UsageLimit           *int   `json:"usageLimit"`
	ApplyOncePerCustomer bool   `json:"applyOncePerCustomer"`
	ApplyOncePerOrder    bool   `json:"applyOncePerOrder"`
	StartDate            string `json:"startDate"`
	EndDate              string `json:"endDate"`
	ChannelListings      []struct {
		Channel       ref     `json:"channel"`
		DiscountValue float64 `json:"discountValue"`
		MinSpent      *money  `json:"minSpent"`
	} `json:"channelListings"`
}

const vouchersQuery = `query Vouchers($first: Int!, $after: String) {
  vouchers(first: $first, after: $after) {
    edges { node {
      id name code discountValueType type usageLimit
      applyOncePerCustomer applyOncePerOrder startDate endDate
      channelListings { channel { id slug } discountValue minSpent { amount } }
    } }
    pageInfo { hasNextPage endCursor }
  }
}`
