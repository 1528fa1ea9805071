package configfile

import (
	"fmt"

	"github.com/kilupskalvis/shopsync/internal/models"
)

// catalog holds the natural keys each section makes available to others
type catalog struct {
	channels     map[string]bool
	taxClasses   map[string]bool
	attributes   map[string]bool
	productTypes map[string]bool
	categories   map[string]bool
	warehouses   map[string]bool
	products     map[string]bool
	collections  map[string]bool
}

func newCatalog(configs ...*models.Configuration) *catalog {
	cat := &catalog{
		channels:     map[string]bool{},
		taxClasses:   map[string]bool{},
		attributes:   map[string]bool{},
		productTypes: map[string]bool{},
		categories:   map[string]bool{},
		warehouses:   map[string]bool{},
		products:     map[string]bool{},
		collections:  map[string]bool{},
	}
	for _, cfg := range configs {
		if cfg != nil {
			cat.add(cfg)
		}
	}
	return cat
}

func (cat *catalog) add(cfg *models.Configuration) {
	for _, e := range cfg.Channels {
		if e != nil {
			cat.channels[e.Slug] = true
		}
	}
	for _, e := range cfg.TaxClasses {
		if e != nil {
			cat.taxClasses[e.Name] = true
		}
	}
	for _, e := range cfg.Attributes {
		if e != nil {
			cat.attributes[e.Name] = true
		}
	}
	for _, e := range cfg.ProductTypes {
		if e == nil {
			continue
		}
		cat.productTypes[e.Name] = true
		// inline definitions become shared attributes once deployed
		for _, refs := range [][]*models.AttributeRef{e.ProductAttributes, e.VariantAttributes} {
			for _, r := range refs {
				if r != nil && !r.IsReference() {
					cat.attributes[r.Name] = true
				}
			}
		}
	}
	for _, e := range cfg.PageTypes {
		if e == nil {
			continue
		}
		for _, r := range e.Attributes {
			if r != nil && !r.IsReference() {
				cat.attributes[r.Name] = true
			}
		}
	}
	walkCategories(cfg.Categories, func(c *models.Category) { cat.categories[c.Slug] = true })
	for _, e := range cfg.Warehouses {
		if e != nil {
			cat.warehouses[slugOrName(e.Slug, e.Name)] = true
		}
	}
	for _, e := range cfg.Products {
		if e != nil {
			cat.products[e.Slug] = true
		}
	}
	for _, e := range cfg.Collections {
		if e != nil {
			cat.collections[e.Slug] = true
		}
	}
}

func (c *checker) ref(set map[string]bool, path, noun, key string) {
	if key == "" || set[key] {
		return
	}
	c.add(path, "references unknown %s %q", noun, key)
}

func (c *checker) references(cfg *models.Configuration, known []*models.Configuration) {
	cat := newCatalog(append([]*models.Configuration{cfg}, known...)...)

	for i, pt := range cfg.ProductTypes {
		if pt == nil {
			continue
		}
		path := fmt.Sprintf("productTypes[%d]", i)
		c.ref(cat.taxClasses, path+".taxClass", "tax class", pt.TaxClass)
		c.attributeRefs(cat, path+".productAttributes", pt.ProductAttributes)
		c.attributeRefs(cat, path+".variantAttributes", pt.VariantAttributes)
	}
	for i, pt := range cfg.PageTypes {
		if pt != nil {
			c.attributeRefs(cat, fmt.Sprintf("pageTypes[%d].attributes", i), pt.Attributes)
		}
	}

	for i, z := range cfg.ShippingZones {
		if z == nil {
			continue
		}
		path := fmt.Sprintf("shippingZones[%d]", i)
		for j, w := range z.Warehouses {
			c.ref(cat.warehouses, fmt.Sprintf("%s.warehouses[%d]", path, j), "warehouse", w)
		}
		for j, ch := range z.Channels {
			c.ref(cat.channels, fmt.Sprintf("%s.channels[%d]", path, j), "channel", ch)
		}
		for j, m := range z.ShippingMethods {
			if m != nil {
				c.ref(cat.taxClasses, fmt.Sprintf("%s.shippingMethods[%d].taxClass", path, j), "tax class", m.TaxClass)
			}
		}
	}

	for i, p := range cfg.Products {
		if p == nil {
			continue
		}
		path := fmt.Sprintf("products[%d]", i)
		c.ref(cat.productTypes, path+".productType", "product type", p.ProductType)
		c.ref(cat.categories, path+".category", "category", p.Category)
		c.ref(cat.taxClasses, path+".taxClass", "tax class", p.TaxClass)
		for j, l := range p.Channels {
			if l != nil {
				c.ref(cat.channels, fmt.Sprintf("%s.channelListings[%d].channel", path, j), "channel", l.Channel)
			}
		}
		for j, v := range p.Variants {
			if v == nil {
				continue
			}
			for k, l := range v.Channels {
				if l != nil {
					c.ref(cat.channels, fmt.Sprintf("%s.variants[%d].channelListings[%d].channel", path, j, k), "channel", l.Channel)
				}
			}
		}
	}

	for i, col := range cfg.Collections {
		if col == nil {
			continue
		}
		path := fmt.Sprintf("collections[%d]", i)
		for j, p := range col.Products {
			c.ref(cat.products, fmt.Sprintf("%s.products[%d]", path, j), "product", p)
		}
		for j, l := range col.Channels {
			if l != nil {
				c.ref(cat.channels, fmt.Sprintf("%s.channelListings[%d].channel", path, j), "channel", l.Channel)
			}
		}
	}

	for i, m := range cfg.Menus {
		if m != nil {
			c.menuItems(cat, fmt.Sprintf("menus[%d].items", i), m.Items)
		}
	}

	for i, v := range cfg.Vouchers {
		if v == nil {
			continue
		}
		for j, l := range v.Channels {
			if l != nil {
				c.ref(cat.channels, fmt.Sprintf("vouchers[%d].channelListings[%d].channel", i, j), "channel", l.Channel)
			}
		}
	}
}

func (c *checker) attributeRefs(cat *catalog, path string, refs []*models.AttributeRef) {
	for i, r := range refs {
		if r == nil {
			continue
		}
		at := fmt.Sprintf("%s[%d]", path, i)
		switch {
		case r.IsReference():
			c.ref(cat.attributes, at+".attribute", "attribute", r.Attribute)
		case r.Name == "":
			c.add(at, "needs either attribute (a reference) or name (an inline definition)")
		case r.InputType == "":
			c.add(at+".inputType", "is required for inline attribute %q", r.Name)
		}
	}
}

func (c *checker) menuItems(cat *catalog, path string, items []*models.MenuItem) {
	for i, it := range items {
		if it == nil {
			continue
		}
		at := fmt.Sprintf("%s[%d]", path, i)
		targets := 0
		for _, t := range []string{it.URL, it.Category, it.Collection, it.Page} {
			if t != "" {
				targets++
			}
		}
		if targets > 1 {
			c.add(at, "sets %d link targets, at most one of url, category, collection or page is allowed", targets)
		}
		c.ref(cat.categories, at+".category", "category", it.Category)
		c.ref(cat.collections, at+".collection", "collection", it.Collection)
		c.menuItems(cat, at+".children", it.Children)
	}
}
