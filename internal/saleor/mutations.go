package saleor

import "fmt"

const userErrors = `errors { field message code }`

// mutation builds a single-field mutation document. args is the argument
// list of the field, vars the matching variable declarations and selection
// the payload fields selected next to the errors list.
func mutation(field, vars, args, selection string) string {
	return fmt.Sprintf("mutation(%s) {\n  %s(%s) { %s %s }\n}", vars, field, args, selection, userErrors)
}

var (
	shopSettingsUpdate = mutation("shopSettingsUpdate", "$input: ShopSettingsInput!", "input: $input", "")

	channelCreate = mutation("channelCreate", "$input: ChannelCreateInput!", "input: $input", "channel { id }")
	channelUpdate = mutation("channelUpdate", "$id: ID!, $input: ChannelUpdateInput!", "id: $id, input: $input", "channel { id }")

	taxClassCreate = mutation("taxClassCreate", "$input: TaxClassCreateInput!", "input: $input", "taxClass { id }")
	taxClassUpdate = mutation("taxClassUpdate", "$id: ID!, $input: TaxClassUpdateInput!", "id: $id, input: $input", "taxClass { id }")

	attributeCreate = mutation("attributeCreate", "$input: AttributeCreateInput!", "input: $input", "attribute { id }")
	attributeUpdate = mutation("attributeUpdate", "$id: ID!, $input: AttributeUpdateInput!", "id: $id, input: $input", "attribute { id }")

	productTypeCreate = mutation("productTypeCreate", "$input: ProductTypeInput!", "input: $input", "productType { id }")
	productTypeUpdate = mutation("productTypeUpdate", "$id: ID!, $input: ProductTypeInput!", "id: $id, input: $input", "productType { id }")

	pageTypeCreate = mutation("pageTypeCreate", "$input: PageTypeCreateInput!", "input: $input", "pageType { id }")
	pageTypeUpdate = mutation("pageTypeUpdate", "$id: ID!, $input: PageTypeUpdateInput!", "id: $id, input: $input", "pageType { id }")

	categoryCreate = mutation("categoryCreate", "$input: CategoryInput!, $parent: ID", "input: $input, parent: $parent", "category { id }")
	categoryUpdate = mutation("categoryUpdate", "$id: ID!, $input: CategoryInput!", "id: $id, input: $input", "category { id }")

	warehouseCreate = mutation("createWarehouse", "$input: WarehouseCreateInput!", "input: $input", "warehouse { id }")
	warehouseUpdate = mutation("updateWarehouse", "$id: ID!, $input: WarehouseUpdateInput!", "id: $id, input: $input", "warehouse { id }")

	shippingZoneCreate    = mutation("shippingZoneCreate", "$input: ShippingZoneCreateInput!", "input: $input", "shippingZone { id }")
	shippingZoneUpdate    = mutation("shippingZoneUpdate", "$id: ID!, $input: ShippingZoneUpdateInput!", "id: $id, input: $input", "shippingZone { id }")
	shippingPriceCreate   = mutation("shippingPriceCreate", "$input: ShippingPriceInput!", "input: $input", "shippingMethod { id }")
	shippingPriceUpdate   = mutation("shippingPriceUpdate", "$id: ID!, $input: ShippingPriceInput!", "id: $id, input: $input", "shippingMethod { id }")
	shippingMethodListing = mutation("shippingMethodChannelListingUpdate", "$id: ID!, $input: ShippingMethodChannelListingInput!", "id: $id, input: $input", "")

	productCreate  = mutation("productCreate", "$input: ProductCreateInput!", "input: $input", "product { id }")
	productUpdate  = mutation("productUpdate", "$id: ID!, $input: ProductInput!", "id: $id, input: $input", "product { id }")
	productListing = mutation("productChannelListingUpdate", "$id: ID!, $input: ProductChannelListingUpdateInput!", "id: $id, input: $input", "")
	variantCreate  = mutation("productVariantCreate", "$input: ProductVariantCreateInput!", "input: $input", "productVariant { id }")
	variantUpdate  = mutation("productVariantUpdate", "$id: ID!, $input: ProductVariantInput!", "id: $id, input: $input", "productVariant { id }")
	variantListing = mutation("productVariantChannelListingUpdate", "$id: ID!, $input: [ProductVariantChannelListingAddInput!]!", "id: $id, input: $input", "")

	collectionCreate      = mutation("collectionCreate", "$input: CollectionCreateInput!", "input: $input", "collection { id }")
	collectionUpdate      = mutation("collectionUpdate", "$id: ID!, $input: CollectionInput!", "id: $id, input: $input", "collection { id }")
	collectionAddProducts = mutation("collectionAddProducts", "$id: ID!, $products: [ID!]!", "collectionId: $id, products: $products", "")
	collectionListing     = mutation("collectionChannelListingUpdate", "$id: ID!, $input: CollectionChannelListingUpdateInput!", "id: $id, input: $input", "")

	menuCreate         = mutation("menuCreate", "$input: MenuCreateInput!", "input: $input", "menu { id }")
	menuUpdate         = mutation("menuUpdate", "$id: ID!, $input: MenuInput!", "id: $id, input: $input", "menu { id }")
	menuItemCreate     = mutation("menuItemCreate", "$input: MenuItemCreateInput!", "input: $input", "menuItem { id }")
	menuItemBulkDelete = mutation("menuItemBulkDelete", "$ids: [ID!]!", "ids: $ids", "count")

	voucherCreate  = mutation("voucherCreate", "$input: VoucherInput!", "input: $input", "voucher { id }")
	voucherUpdate  = mutation("voucherUpdate", "$id: ID!, $input: VoucherInput!", "id: $id, input: $input", "voucher { id }")
	voucherListing = mutation("voucherChannelListingUpdate", "$id: ID!, $input: VoucherChannelListingInput!", "id: $id, input: $input", "")
)

func deleteMutation(field string) string {
	return mutation(field, "$id: ID!", "id: $id", "")
}

const pageBySlugQuery = `query Page($slug: String!) { page(slug: $slug) { id } }`
