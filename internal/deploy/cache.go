package deploy

import (
	"fmt"
	"sync"

	"github.com/kilupskalvis/shopsync/internal/models"
)

// AttributeCache holds resolved attributes for one run, split by scope.
// It is populated by the preflight stage and read by later stages.
type AttributeCache struct {
	mu      sync.RWMutex
	product map[string]*models.Attribute
	content map[string]*models.Attribute
}

// NewAttributeCache returns an empty cache
func NewAttributeCache() *AttributeCache {
	return &AttributeCache{
		product: make(map[string]*models.Attribute),
		content: make(map[string]*models.Attribute),
	}
}

// Populate stores attributes under their scope. Attributes without a scope
// are treated as product attributes.
func (c *AttributeCache) Populate(attrs []*models.Attribute) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, a := range attrs {
		if a == nil {
			continue
		}
		if a.Type == models.AttributeScopeContent {
			c.content[a.Name] = a
		} else {
			c.product[a.Name] = a
		}
	}
}

// Product looks up a product-scope attribute by name
func (c *AttributeCache) Product(name string) (*models.Attribute, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.product[name]
	return a, ok
}

// Content looks up a content-scope attribute by name
func (c *AttributeCache) Content(name string) (*models.Attribute, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.content[name]
	return a, ok
}

// Len returns the number of cached attributes across both scopes
func (c *AttributeCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.product) + len(c.content)
}

// Diagnose returns nil when name resolves in the wanted scope. Otherwise it
// explains whether the attribute lives in the other scope or is missing.
func (c *AttributeCache) Diagnose(name, scope string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	want, other := c.product, c.content
	wantLabel, otherLabel := "product", "page"
	if scope == models.AttributeScopeContent {
		want, other = c.content, c.product
		wantLabel, otherLabel = "page", "product"
	}
	if _, ok := want[name]; ok {
		return nil
	}
	if _, ok := other[name]; ok {
		return fmt.Errorf("attribute %q is a %s attribute, not a %s attribute", name, otherLabel, wantLabel)
	}
	return fmt.Errorf("attribute %q not found", name)
}
