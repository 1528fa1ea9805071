package saleor

import (
	"context"
	"fmt"

	"github.com/kilupskalvis/shopsync/internal/models"
)

// AttributeRepository reads and extends attribute definitions
type AttributeRepository struct {
	services *Services
}

// NewAttributeRepository shares the ID index of services
func NewAttributeRepository(services *Services) *AttributeRepository {
	return &AttributeRepository{services: services}
}

// GetAttributesByNames returns the remote attributes whose name is in names.
// Unknown names are absent from the result.
func (r *AttributeRepository) GetAttributesByNames(ctx context.Context, names []string) ([]*models.Attribute, error) {
	if len(names) == 0 {
		return nil, nil
	}
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	nodes, err := fetchAttributes(ctx, r.services.client, nil)
	if err != nil {
		return nil, fmt.Errorf("get attributes: %w", err)
	}
	var out []*models.Attribute
	for i := range nodes {
		n := &nodes[i]
		r.services.indexAttribute(n)
		if wanted[n.Name] {
			out = append(out, mapAttribute(n))
		}
	}
	return out, nil
}

// AddAttributeValues appends choices to an existing attribute
func (r *AttributeRepository) AddAttributeValues(ctx context.Context, attr *models.Attribute, values []string) error {
	if len(values) == 0 {
		return nil
	}
	s := r.services
	id := attr.ID
	if id == "" {
		var err error
		if id, err = s.resolve(ctx, models.EntityAttributes, "attribute", attr.Name); err != nil {
			return err
		}
	}
	add := s.idx.missing(s.idx.attrValues, id, values)
	if len(add) == 0 {
		return nil
	}
	update := input{"addValues": valueInputs(add)}
	if _, err := s.upsert(ctx, id, attributeCreate, attributeUpdate, "attribute", nil, update); err != nil {
		return err
	}
	s.idx.add(s.idx.attrValues, id, add...)
	return nil
}
