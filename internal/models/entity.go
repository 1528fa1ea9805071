package models

import (
	"fmt"
	"strings"
)

// EntityType names one configuration section
type EntityType string

const (
	EntityShopSettings  EntityType = "Shop Settings"
	EntityChannels      EntityType = "Channels"
	EntityTaxClasses    EntityType = "Tax Classes"
	EntityAttributes    EntityType = "Attributes"
	EntityProductTypes  EntityType = "Product Types"
	EntityPageTypes     EntityType = "Page Types"
	EntityCategories    EntityType = "Categories"
	EntityWarehouses    EntityType = "Warehouses"
	EntityShippingZones EntityType = "Shipping Zones"
	EntityProducts      EntityType = "Products"
	EntityCollections   EntityType = "Collections"
	EntityMenus         EntityType = "Menus"
	EntityVouchers      EntityType = "Vouchers"
)

// AllEntityTypes lists every section in comparison order.
var AllEntityTypes = []EntityType{
	EntityShopSettings,
	EntityChannels,
	EntityTaxClasses,
	EntityAttributes,
	EntityProductTypes,
	EntityPageTypes,
	EntityCategories,
	EntityWarehouses,
	EntityShippingZones,
	EntityProducts,
	EntityCollections,
	EntityMenus,
	EntityVouchers,
}

// Slug returns the kebab-case form used on the command line ("product-types")
func (e EntityType) Slug() string {
	return strings.ReplaceAll(strings.ToLower(string(e)), " ", "-")
}

// ParseEntityType accepts the display name, kebab-case, camelCase or
// snake_case spelling of a section name.
func ParseEntityType(s string) (EntityType, error) {
	norm := normalizeEntityName(s)
	for _, e := range AllEntityTypes {
		if normalizeEntityName(string(e)) == norm {
			return e, nil
		}
	}
	if norm == "shop" {
		return EntityShopSettings, nil
	}
	return "", fmt.Errorf("unknown entity type %q", s)
}

// ParseEntityTypes parses a list of names, accepting comma-separated values.
func ParseEntityTypes(values []string) ([]EntityType, error) {
	var out []EntityType
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			e, err := ParseEntityType(part)
			if err != nil {
				return nil, err
			}
			out = append(out, e)
		}
	}
	return out, nil
}

func normalizeEntityName(s string) string {
	r := strings.NewReplacer(" ", "", "-", "", "_", "")
	return strings.ToLower(r.Replace(strings.TrimSpace(s)))
}
