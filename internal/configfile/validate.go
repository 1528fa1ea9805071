package configfile

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kilupskalvis/shopsync/internal/apperr"
	"github.com/kilupskalvis/shopsync/internal/models"
)

// structValidate checks the validate tags of the model. Field names are
// reported by their YAML keys.
var structValidate *validator.Validate

func init() {
	structValidate = validator.New(validator.WithRequiredStructEnabled())
	structValidate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

// Problem is one invalid value of the configuration
type Problem struct {
	Path    string
	Message string
}

func (p Problem) String() string {
	if p.Path == "" {
		return p.Message
	}
	return p.Path + ": " + p.Message
}

// ValidationError lists every problem found in a configuration
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid configuration: " + e.Problems[0].String()
	}
	return fmt.Sprintf("invalid configuration: %d problems", len(e.Problems))
}

// ErrorKind classifies the error for exit codes and rendering
func (e *ValidationError) ErrorKind() apperr.Kind {
	return apperr.KindValidation
}

// DetailLines lists the problems
func (e *ValidationError) DetailLines() []string {
	lines := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		lines[i] = "• " + p.String()
	}
	return lines
}

// Validate checks field constraints, natural-key uniqueness and references
// between sections. A reference resolves when the target is declared in cfg
// or in any of the known configurations (typically the remote snapshot).
func Validate(cfg *models.Configuration, known ...*models.Configuration) error {
	if cfg == nil {
		return nil
	}
	v := &checker{}
	v.fields(cfg)
	v.uniqueness(cfg)
	v.references(cfg, known)
	if len(v.problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: v.problems}
}

type checker struct {
	problems []Problem
}

func (c *checker) add(path, format string, args ...any) {
	c.problems = append(c.problems, Problem{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (c *checker) fields(cfg *models.Configuration) {
	err := structValidate.Struct(cfg)
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.add("", "%v", err)
		return
	}
	for _, fe := range verrs {
		_, path, _ := strings.Cut(fe.Namespace(), ".")
		c.add(path, "%s", describe(fe))
	}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

func (c *checker) unique(section string, keys []string) {
	seen := make(map[string]int, len(keys))
	for i, k := range keys {
		if k == "" {
			continue
		}
		if first, dup := seen[k]; dup {
			c.add(fmt.Sprintf("%s[%d]", section, i), "duplicate key %q (first declared at %s[%d])", k, section, first)
			continue
		}
		seen[k] = i
	}
}

func keysOf[T any](items []*T, key func(*T) string) []string {
	out := make([]string, len(items))
	for i, it := range items {
		if it != nil {
			out[i] = key(it)
		}
	}
	return out
}

func slugOrName(slug, name string) string {
	if slug != "" {
		return slug
	}
	return name
}

func (c *checker) uniqueness(cfg *models.Configuration) {
	c.unique("channels", keysOf(cfg.Channels, func(e *models.Channel) string { return slugOrName(e.Slug, e.Name) }))
	c.unique("taxClasses", keysOf(cfg.TaxClasses, func(e *models.TaxClass) string { return e.Name }))
	c.unique("attributes", keysOf(cfg.Attributes, func(e *models.Attribute) string { return e.Name }))
	c.unique("productTypes", keysOf(cfg.ProductTypes, func(e *models.ProductType) string { return e.Name }))
	c.unique("pageTypes", keysOf(cfg.PageTypes, func(e *models.PageType) string { return e.Name }))
	c.unique("warehouses", keysOf(cfg.Warehouses, func(e *models.Warehouse) string { return slugOrName(e.Slug, e.Name) }))
	c.unique("shippingZones", keysOf(cfg.ShippingZones, func(e *models.ShippingZone) string { return e.Name }))
	c.unique("products", keysOf(cfg.Products, func(e *models.Product) string { return slugOrName(e.Slug, e.Name) }))
	c.unique("collections", keysOf(cfg.Collections, func(e *models.Collection) string { return slugOrName(e.Slug, e.Name) }))
	c.unique("menus", keysOf(cfg.Menus, func(e *models.Menu) string { return slugOrName(e.Slug, e.Name) }))
	c.unique("vouchers", keysOf(cfg.Vouchers, func(e *models.Voucher) string { return e.Code }))

	// category slugs are global across the tree
	var slugs []string
	walkCategories(cfg.Categories, func(cat *models.Category) { slugs = append(slugs, cat.Slug) })
	c.unique("categories (all levels)", slugs)

	var skus []string
	for _, p := range cfg.Products {
		if p == nil {
			continue
		}
		for _, v := range p.Variants {
			if v != nil {
				skus = append(skus, v.Sku)
			}
		}
	}
	c.unique("variants (all products)", skus)
}

func walkCategories(cats []*models.Category, fn func(*models.Category)) {
	for _, cat := range cats {
		if cat == nil {
			continue
		}
		fn(cat)
		walkCategories(cat.Subcategories, fn)
	}
}
