package saleor

import (
	"context"
	"fmt"
	"sync"

	"github.com/kilupskalvis/shopsync/internal/models"
)

// index maps natural keys to remote IDs per section. Sections load lazily,
// once, and are kept current as entities are created and deleted.
type index struct {
	mu     sync.Mutex
	locks  map[models.EntityType]*sync.Mutex
	loaded map[models.EntityType]bool
	ids    map[models.EntityType]map[string]string

	attrValues         map[string]map[string]bool   // attribute id → value names
	pageTypeAttrs      map[string]map[string]bool   // page type id → attribute ids
	zoneMethods        map[string]map[string]string // zone id → method name → method id
	variants           map[string]string            // sku → variant id
	collectionProducts map[string]map[string]bool   // collection id → product ids
	menuItems          map[string][]string          // menu id → top-level item ids
}

func newIndex() *index {
	idx := &index{
		locks:              make(map[models.EntityType]*sync.Mutex),
		loaded:             make(map[models.EntityType]bool),
		ids:                make(map[models.EntityType]map[string]string),
		attrValues:         make(map[string]map[string]bool),
		pageTypeAttrs:      make(map[string]map[string]bool),
		zoneMethods:        make(map[string]map[string]string),
		variants:           make(map[string]string),
		collectionProducts: make(map[string]map[string]bool),
		menuItems:          make(map[string][]string),
	}
	for _, et := range models.AllEntityTypes {
		idx.locks[et] = &sync.Mutex{}
		idx.ids[et] = make(map[string]string)
	}
	return idx
}

func (x *index) get(et models.EntityType, key string) (string, bool) {
	x.mu.Lock()
	defer x.mu.Unlock()
	id, ok := x.ids[et][key]
	return id, ok
}

func (x *index) put(et models.EntityType, id string, keys ...string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, k := range keys {
		if k != "" {
			x.ids[et][k] = id
		}
	}
}

// forget drops every key pointing at the id stored under key
func (x *index) forget(et models.EntityType, key string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	id, ok := x.ids[et][key]
	if !ok {
		return
	}
	for k, v := range x.ids[et] {
		if v == id {
			delete(x.ids[et], k)
		}
	}
}

func addToSet(m map[string]map[string]bool, owner string, members ...string) {
	set, ok := m[owner]
	if !ok {
		set = make(map[string]bool)
		m[owner] = set
	}
	for _, v := range members {
		set[v] = true
	}
}

// missing returns the members not yet in owner's set, in input order
func (x *index) missing(m map[string]map[string]bool, owner string, members []string) []string {
	x.mu.Lock()
	defer x.mu.Unlock()
	var out []string
	seen := make(map[string]bool)
	for _, v := range members {
		if !m[owner][v] && !seen[v] {
			out = append(out, v)
			seen[v] = true
		}
	}
	return out
}

func (x *index) add(m map[string]map[string]bool, owner string, members ...string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	addToSet(m, owner, members...)
}

// load fills the index for one section from the remote
func (s *Services) load(ctx context.Context, et models.EntityType) error {
	lock, ok := s.idx.locks[et]
	if !ok {
		return fmt.Errorf("unknown entity type %q", et)
	}
	lock.Lock()
	defer lock.Unlock()

	s.idx.mu.Lock()
	done := s.idx.loaded[et]
	s.idx.mu.Unlock()
	if done || et == models.EntityShopSettings {
		return nil
	}

	if err := s.fetchInto(ctx, et); err != nil {
		return fmt.Errorf("load %s: %w", et, err)
	}

	s.idx.mu.Lock()
	s.idx.loaded[et] = true
	n := len(s.idx.ids[et])
	s.idx.mu.Unlock()
	s.logger.Debug("indexed remote entities", "entity_type", string(et), "keys", n)
	return nil
}

func (s *Services) fetchInto(ctx context.Context, et models.EntityType) error {
	x := s.idx
	switch et {
	case models.EntityChannels:
		nodes, err := fetchChannels(ctx, s.client)
		for _, n := range nodes {
			x.put(et, n.ID, n.Slug)
		}
		return err
	case models.EntityTaxClasses:
		nodes, err := fetchTaxClasses(ctx, s.client)
		for _, n := range nodes {
			x.put(et, n.ID, n.Name)
		}
		return err
	case models.EntityAttributes:
		nodes, err := fetchAttributes(ctx, s.client, nil)
		for _, n := range nodes {
			s.indexAttribute(&n)
		}
		return err
	case models.EntityProductTypes:
		nodes, err := fetchProductTypes(ctx, s.client)
		for _, n := range nodes {
			x.put(et, n.ID, n.Name)
		}
		return err
	case models.EntityPageTypes:
		nodes, err := fetchPageTypes(ctx, s.client)
		for _, n := range nodes {
			x.put(et, n.ID, n.Name)
			for _, a := range n.Attributes {
				x.add(x.pageTypeAttrs, n.ID, a.ID)
			}
		}
		return err
	case models.EntityCategories:
		nodes, err := fetchCategories(ctx, s.client)
		for _, n := range nodes {
			x.put(et, n.ID, n.Slug)
		}
		return err
	case models.EntityWarehouses:
		nodes, err := fetchWarehouses(ctx, s.client)
		for _, n := range nodes {
			x.put(et, n.ID, n.Slug)
		}
		return err
	case models.EntityShippingZones:
		nodes, err := fetchShippingZones(ctx, s.client)
		for _, n := range nodes {
			x.put(et, n.ID, n.Name)
			x.mu.Lock()
			methods := make(map[string]string, len(n.ShippingMethods))
			for _, m := range n.ShippingMethods {
				methods[m.Name] = m.ID
			}
			x.zoneMethods[n.ID] = methods
			x.mu.Unlock()
		}
		return err
	case models.EntityProducts:
		nodes, err := fetchProducts(ctx, s.client)
		for _, n := range nodes {
			x.put(et, n.ID, n.Slug)
			x.mu.Lock()
			for _, v := range n.Variants {
				x.variants[v.Sku] = v.ID
			}
			x.mu.Unlock()
		}
		return err
	case models.EntityCollections:
		nodes, err := fetchCollections(ctx, s.client)
		for _, n := range nodes {
			x.put(et, n.ID, n.Slug)
			if n.Products != nil {
				for _, p := range n.Products.nodes() {
					x.add(x.collectionProducts, n.ID, p.ID)
				}
			}
		}
		return err
	case models.EntityMenus:
		nodes, err := fetchMenus(ctx, s.client)
		for _, n := range nodes {
			x.put(et, n.ID, n.Slug)
			x.mu.Lock()
			for _, it := range n.Items {
				x.menuItems[n.ID] = append(x.menuItems[n.ID], it.ID)
			}
			x.mu.Unlock()
		}
		return err
	case models.EntityVouchers:
		nodes, err := fetchVouchers(ctx, s.client)
		for _, n := range nodes {
			x.put(et, n.ID, n.Code)
		}
		return err
	}
	return nil
}

func (s *Services) indexAttribute(n *attributeNode) {
	s.idx.put(models.EntityAttributes, n.ID, n.Slug, n.Name)
	if n.Choices == nil {
		return
	}
	for _, v := range n.Choices.nodes() {
		s.idx.add(s.idx.attrValues, n.ID, v.Name)
	}
}

// lookup returns the remote ID for key, loading the section on first use
func (s *Services) lookup(ctx context.Context, et models.EntityType, key string) (string, bool, error) {
	if err := s.load(ctx, et); err != nil {
		return "", false, err
	}
	id, ok := s.idx.get(et, key)
	return id, ok, nil
}

// resolve is lookup for references: a missing key is an error naming noun
func (s *Services) resolve(ctx context.Context, et models.EntityType, noun, key string) (string, error) {
	id, ok, err := s.lookup(ctx, et, key)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%s %q not found", noun, key)
	}
	return id, nil
}

func (s *Services) resolveAll(ctx context.Context, et models.EntityType, noun string, keys []string) ([]string, error) {
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		id, err := s.resolve(ctx, et, noun, k)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
