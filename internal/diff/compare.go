// Package diff compares a desired configuration against the observed remote
// configuration and produces the ordered list of operations that reconcile them.
package diff

import (
	"github.com/kilupskalvis/shopsync/internal/apperr"
	"github.com/kilupskalvis/shopsync/internal/models"
)

// collection describes how one section is matched and compared
type collection[T any] struct {
	entityType models.EntityType
	slug       func(*T) string
	name       func(*T) string
	compare    func(local, remote *T) []models.DiffChange
}

// Compare diffs two configuration snapshots. It performs no I/O. Results are
// grouped by section in comparison order; within a section creates and
// updates follow local order and deletes follow remote order.
func Compare(local, remote *models.Configuration) (*models.DiffSummary, error) {
	if local == nil {
		local = models.Empty()
	}
	if remote == nil {
		remote = models.Empty()
	}

	var results []*models.DiffResult
	results = append(results, compareShop(local.Shop, remote.Shop)...)

	steps := []func() ([]*models.DiffResult, error){
		func() ([]*models.DiffResult, error) { return channels.diff(local.Channels, remote.Channels) },
		func() ([]*models.DiffResult, error) { return taxClasses.diff(local.TaxClasses, remote.TaxClasses) },
		func() ([]*models.DiffResult, error) { return attributes.diff(local.Attributes, remote.Attributes) },
		func() ([]*models.DiffResult, error) { return productTypes.diff(local.ProductTypes, remote.ProductTypes) },
		func() ([]*models.DiffResult, error) { return pageTypes.diff(local.PageTypes, remote.PageTypes) },
		func() ([]*models.DiffResult, error) { return categories.diff(local.Categories, remote.Categories) },
		func() ([]*models.DiffResult, error) { return warehouses.diff(local.Warehouses, remote.Warehouses) },
		func() ([]*models.DiffResult, error) { return shippingZones.diff(local.ShippingZones, remote.ShippingZones) },
		func() ([]*models.DiffResult, error) { return products.diff(local.Products, remote.Products) },
		func() ([]*models.DiffResult, error) { return collections.diff(local.Collections, remote.Collections) },
		func() ([]*models.DiffResult, error) { return menus.diff(local.Menus, remote.Menus) },
		func() ([]*models.DiffResult, error) { return vouchers.diff(local.Vouchers, remote.Vouchers) },
	}
	for _, step := range steps {
		r, err := step()
		if err != nil {
			return nil, err
		}
		results = append(results, r...)
	}

	return models.NewDiffSummary(results), nil
}

func compareShop(local, remote *models.ShopSettings) []*models.DiffResult {
	if local == nil {
		return nil
	}
	if remote == nil {
		return []*models.DiffResult{{
			Operation:  models.OperationCreate,
			EntityType: models.EntityShopSettings,
			EntityName: string(models.EntityShopSettings),
			Desired:    local,
		}}
	}
	changes := compareShopSettings(local, remote)
	if len(changes) == 0 {
		return nil
	}
	return []*models.DiffResult{{
		Operation:  models.OperationUpdate,
		EntityType: models.EntityShopSettings,
		EntityName: string(models.EntityShopSettings),
		Current:    remote,
		Desired:    local,
		Changes:    changes,
	}}
}

// key returns the natural key: slug when present, else name
func (c collection[T]) key(e *T) string {
	if s := c.slug(e); s != "" {
		return s
	}
	return c.name(e)
}

func (c collection[T]) displayName(e *T) string {
	if n := c.name(e); n != "" {
		return n
	}
	return c.slug(e)
}

// checkUnique rejects two entities sharing a natural key on one side
func (c collection[T]) checkUnique(items []*T, side string) error {
	seen := make(map[string]bool, len(items))
	for _, e := range items {
		k := c.key(e)
		if seen[k] {
			return apperr.Validationf("duplicate %s key %q in %s configuration", c.entityType, k, side).
				With("entity type", c.entityType).
				With("key", k).
				With("side", side)
		}
		seen[k] = true
	}
	return nil
}

func (c collection[T]) diff(local, remote []*T) ([]*models.DiffResult, error) {
	local = compact(local)
	remote = compact(remote)
	if err := c.checkUnique(local, "local"); err != nil {
		return nil, err
	}
	if err := c.checkUnique(remote, "remote"); err != nil {
		return nil, err
	}

	// Exact keys pair first: slug with slug, name with name when neither side
	// has a slug.
	exact := make(map[string]int, len(remote))
	for i, r := range remote {
		exact[exactKey(c.slug(r), c.name(r))] = i
	}
	matched := make([]bool, len(remote))
	pairs := make([]int, len(local))
	for j, l := range local {
		pairs[j] = -1
		if i, ok := exact[exactKey(c.slug(l), c.name(l))]; ok && !matched[i] {
			pairs[j] = i
			matched[i] = true
		}
	}

	byName := make(map[string][]int, len(remote))
	for i, r := range remote {
		byName[c.name(r)] = append(byName[c.name(r)], i)
	}
	for j, l := range local {
		if pairs[j] >= 0 {
			continue
		}
		ls := c.slug(l)
		for _, i := range byName[c.name(l)] {
			if matched[i] {
				continue
			}
			// Name is only a fallback when one side has no slug.
			if ls == "" || c.slug(remote[i]) == "" {
				pairs[j] = i
				matched[i] = true
				break
			}
		}
	}

	var results []*models.DiffResult
	for j, l := range local {
		i := pairs[j]
		if i < 0 {
			results = append(results, &models.DiffResult{
				Operation:  models.OperationCreate,
				EntityType: c.entityType,
				EntityName: c.displayName(l),
				Desired:    l,
			})
			continue
		}
		if changes := c.compare(l, remote[i]); len(changes) > 0 {
			results = append(results, &models.DiffResult{
				Operation:  models.OperationUpdate,
				EntityType: c.entityType,
				EntityName: c.displayName(l),
				Current:    remote[i],
				Desired:    l,
				Changes:    changes,
			})
		}
	}

	for i, r := range remote {
		if matched[i] {
			continue
		}
		results = append(results, &models.DiffResult{
			Operation:  models.OperationDelete,
			EntityType: c.entityType,
			EntityName: c.displayName(r),
			Current:    r,
		})
	}
	return results, nil
}

func exactKey(slug, name string) string {
	if slug != "" {
		return "slug:" + slug
	}
	return "name:" + name
}

// compact drops nil pointers from a section
func compact[T any](items []*T) []*T {
	out := make([]*T, 0, len(items))
	for _, e := range items {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}
