package deploy

import "github.com/kilupskalvis/shopsync/internal/models"

// Dependents maps a section to the sections whose entities reference it.
// A stage for a section runs whenever any of its dependents changed.
var Dependents = map[models.EntityType][]models.EntityType{
	models.EntityChannels:     {models.EntityProducts, models.EntityCollections, models.EntityShippingZones, models.EntityVouchers},
	models.EntityTaxClasses:   {models.EntityProductTypes, models.EntityProducts, models.EntityShippingZones},
	models.EntityAttributes:   {models.EntityProductTypes, models.EntityPageTypes, models.EntityProducts},
	models.EntityProductTypes: {models.EntityProducts},
	models.EntityCategories:   {models.EntityProducts, models.EntityMenus},
	models.EntityWarehouses:   {models.EntityShippingZones},
	models.EntityProducts:     {models.EntityCollections},
	models.EntityCollections:  {models.EntityMenus},
}

// SkipUnlessChanged returns a skip predicate that runs the stage when the
// diff touches any of types or any of their dependents
func SkipUnlessChanged(types ...models.EntityType) func(*Context) bool {
	return func(dc *Context) bool {
		if dc.Summary == nil {
			return true
		}
		for _, t := range types {
			if dc.Summary.HasEntityType(t) {
				return false
			}
			for _, dep := range Dependents[t] {
				if dc.Summary.HasEntityType(dep) {
					return false
				}
			}
		}
		return true
	}
}
