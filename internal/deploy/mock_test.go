package deploy

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kilupskalvis/shopsync/internal/models"
)

// mockServices records every call and fails the keys listed in failures
type mockServices struct {
	mu         sync.Mutex
	applied    []string
	deleted    []string
	prefetched []models.EntityType
	failures   map[string]error
	hook       func(ctx context.Context, key string)
}

func newMockServices() *mockServices {
	return &mockServices{failures: make(map[string]error)}
}

func (m *mockServices) failOn(key string, err error) {
	m.failures[key] = err
}

func (m *mockServices) call(ctx context.Context, et models.EntityType, name string) error {
	key := fmt.Sprintf("%s/%s", et, name)
	if m.hook != nil {
		m.hook(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failures[key]; ok {
		return err
	}
	m.applied = append(m.applied, key)
	return nil
}

func (m *mockServices) appliedKeys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]string(nil), m.applied...)
	sort.Strings(out)
	return out
}

func (m *mockServices) BootstrapShop(ctx context.Context, _ *models.ShopSettings) error {
	return m.call(ctx, models.EntityShopSettings, "shop")
}

func (m *mockServices) BootstrapChannel(ctx context.Context, c *models.Channel) error {
	return m.call(ctx, models.EntityChannels, c.Name)
}

func (m *mockServices) BootstrapTaxClass(ctx context.Context, t *models.TaxClass) error {
	return m.call(ctx, models.EntityTaxClasses, t.Name)
}

func (m *mockServices) BootstrapAttribute(ctx context.Context, a *models.Attribute) error {
	return m.call(ctx, models.EntityAttributes, a.Name)
}

func (m *mockServices) BootstrapProductType(ctx context.Context, p *models.ProductType) error {
	return m.call(ctx, models.EntityProductTypes, p.Name)
}

func (m *mockServices) BootstrapPageType(ctx context.Context, p *models.PageType) error {
	return m.call(ctx, models.EntityPageTypes, p.Name)
}

func (m *mockServices) BootstrapCategory(ctx context.Context, c *models.Category) error {
	return m.call(ctx, models.EntityCategories, c.Name)
}

func (m *mockServices) BootstrapWarehouse(ctx context.Context, w *models.Warehouse) error {
	return m.call(ctx, models.EntityWarehouses, w.Name)
}

func (m *mockServices) BootstrapShippingZone(ctx context.Context, z *models.ShippingZone) error {
	return m.call(ctx, models.EntityShippingZones, z.Name)
}

func (m *mockServices) BootstrapProduct(ctx context.Context, p *models.Product) error {
	return m.call(ctx, models.EntityProducts, p.Name)
}

func (m *mockServices) BootstrapCollection(ctx context.Context, c *models.Collection) error {
	return m.call(ctx, models.EntityCollections, c.Name)
}

func (m *mockServices) BootstrapMenu(ctx context.Context, menu *models.Menu) error {
	return m.call(ctx, models.EntityMenus, menu.Name)
}

func (m *mockServices) BootstrapVoucher(ctx context.Context, v *models.Voucher) error {
	return m.call(ctx, models.EntityVouchers, v.Name)
}

func (m *mockServices) DeleteEntity(ctx context.Context, et models.EntityType, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, fmt.Sprintf("%s/%s", et, key))
	return nil
}

func (m *mockServices) Prefetch(ctx context.Context, et models.EntityType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefetched = append(m.prefetched, et)
	return nil
}

// mockAttributes serves attributes from memory
type mockAttributes struct {
	mu     sync.Mutex
	attrs  map[string]*models.Attribute
	added  map[string][]string
	addErr error
}

func newMockAttributes(attrs ...*models.Attribute) *mockAttributes {
	m := &mockAttributes{attrs: make(map[string]*models.Attribute), added: make(map[string][]string)}
	for _, a := range attrs {
		m.attrs[a.Name] = a
	}
	return m
}

func (m *mockAttributes) GetAttributesByNames(_ context.Context, names []string) ([]*models.Attribute, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Attribute
	for _, n := range names {
		if a, ok := m.attrs[n]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockAttributes) AddAttributeValues(_ context.Context, a *models.Attribute, values []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addErr != nil {
		return m.addErr
	}
	m.added[a.Name] = append(m.added[a.Name], values...)
	return nil
}
