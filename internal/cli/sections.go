package cli

import (
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilupskalvis/shopsync/internal/apperr"
	"github.com/kilupskalvis/shopsync/internal/models"
)

// sectionFlags restrict a command to some configuration sections
type sectionFlags struct {
	include []string
	only    []string
	exclude []string
}

func (f *sectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.include, "include", nil, "Only these sections (e.g. products,product-types)")
	cmd.Flags().StringSliceVar(&f.only, "only", nil, "Alias of --include")
	cmd.Flags().StringSliceVar(&f.exclude, "exclude", nil, "Skip these sections")
}

func (f *sectionFlags) parse() (include, exclude []models.EntityType, err error) {
	include, err = models.ParseEntityTypes(append(append([]string(nil), f.include...), f.only...))
	if err != nil {
		return nil, nil, sectionError(err)
	}
	exclude, err = models.ParseEntityTypes(f.exclude)
	if err != nil {
		return nil, nil, sectionError(err)
	}
	return include, exclude, nil
}

func sectionError(err error) error {
	e := apperr.Validation(err.Error())
	names := make([]string, len(models.AllEntityTypes))
	for i, et := range models.AllEntityTypes {
		names[i] = et.Slug()
	}
	e.Suggestions = []string{"Valid sections: " + strings.Join(names, ", ")}
	return e
}

// filterByName keeps results whose entity name contains text, ignoring case
func filterByName(s *models.DiffSummary, text string) *models.DiffSummary {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return s
	}
	var kept []*models.DiffResult
	for _, r := range s.Results {
		if strings.Contains(strings.ToLower(r.EntityName), text) {
			kept = append(kept, r)
		}
	}
	return models.NewDiffSummary(kept)
}

// selectSections blanks the sections of cfg not selected by include/exclude
func selectSections(cfg *models.Configuration, include, exclude []models.EntityType) {
	keep := func(et models.EntityType) bool {
		if slices.Contains(exclude, et) {
			return false
		}
		return len(include) == 0 || slices.Contains(include, et)
	}

	if !keep(models.EntityShopSettings) {
		cfg.Shop = nil
	}
	if !keep(models.EntityChannels) {
		cfg.Channels = nil
	}
	if !keep(models.EntityTaxClasses) {
		cfg.TaxClasses = nil
	}
	if !keep(models.EntityAttributes) {
		cfg.Attributes = nil
	}
	if !keep(models.EntityProductTypes) {
		cfg.ProductTypes = nil
	}
	if !keep(models.EntityPageTypes) {
		cfg.PageTypes = nil
	}
	if !keep(models.EntityCategories) {
		cfg.Categories = nil
	}
	if !keep(models.EntityWarehouses) {
		cfg.Warehouses = nil
	}
	if !keep(models.EntityShippingZones) {
		cfg.ShippingZones = nil
	}
	if !keep(models.EntityProducts) {
		cfg.Products = nil
	}
	if !keep(models.EntityCollections) {
		cfg.Collections = nil
	}
	if !keep(models.EntityMenus) {
		cfg.Menus = nil
	}
	if !keep(models.EntityVouchers) {
		cfg.Vouchers = nil
	}
}
