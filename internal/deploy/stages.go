package deploy

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kilupskalvis/shopsync/internal/models"
	"github.com/kilupskalvis/shopsync/internal/resilience"
)

// Stage names
const (
	StageValidate         = "Validating configuration"
	StageShop             = "Updating shop settings"
	StageTaxClasses       = "Managing tax classes"
	StageAttributes       = "Managing attributes"
	StageProductTypes     = "Managing product types"
	StageChannels         = "Managing channels"
	StagePageTypes        = "Managing page types"
	StageCategories       = "Managing categories"
	StageWarehouses       = "Managing warehouses"
	StageShippingZones    = "Managing shipping zones"
	StageAttributeChoices = "Preparing attribute choices"
	StageProducts         = "Managing products"
	StageCollections      = "Managing collections"
	StageMenus            = "Managing menus"
	StageVouchers         = "Managing vouchers"
)

// discipline selects how a stage spreads its entity calls
type discipline int

const (
	// concurrent runs every entity call with bounded concurrency
	concurrent discipline = iota
	// chunked runs sequential batches with a pause between them
	chunked
)

// entityStage describes a stage that applies the diff of one section
type entityStage struct {
	name       string
	entityType models.EntityType
	mode       discipline
	// tolerant stages record entity failures and keep the run going; the
	// others abort the run since later sections depend on them
	tolerant bool
}

var entityStages = []entityStage{
	{StageShop, models.EntityShopSettings, concurrent, false},
	{StageTaxClasses, models.EntityTaxClasses, concurrent, false},
	{StageAttributes, models.EntityAttributes, chunked, false},
	{StageProductTypes, models.EntityProductTypes, chunked, false},
	{StageChannels, models.EntityChannels, concurrent, false},
	{StagePageTypes, models.EntityPageTypes, concurrent, false},
	{StageCategories, models.EntityCategories, chunked, false},
	{StageWarehouses, models.EntityWarehouses, chunked, false},
	{StageShippingZones, models.EntityShippingZones, chunked, false},
	{StageProducts, models.EntityProducts, chunked, true},
	{StageCollections, models.EntityCollections, chunked, true},
	{StageMenus, models.EntityMenus, concurrent, true},
	{StageVouchers, models.EntityVouchers, concurrent, true},
}

// DefaultStages returns the deployment stages in dependency order
func DefaultStages() []Stage {
	var stages []Stage
	stages = append(stages, ValidateStage())
	for _, es := range entityStages {
		if es.entityType == models.EntityProducts {
			stages = append(stages, AttributeChoicesStage())
		}
		stages = append(stages, es.stage())
	}
	return stages
}

// NewDeploymentPipeline returns a pipeline with DefaultStages
func NewDeploymentPipeline(logger *slog.Logger) *Pipeline {
	p := NewPipeline(logger)
	for _, s := range DefaultStages() {
		p.AddStage(s)
	}
	return p
}

// ValidateStage runs the configured validator over the local configuration
func ValidateStage() Stage {
	return Stage{
		Name: StageValidate,
		Execute: func(ctx context.Context, run *StageRun) error {
			if run.Validate == nil {
				return nil
			}
			return run.Validate(run.Local)
		},
	}
}

func (es entityStage) stage() Stage {
	return Stage{
		Name:       es.name,
		EntityType: es.entityType,
		Skip:       SkipUnlessChanged(es.entityType),
		Execute: func(ctx context.Context, run *StageRun) error {
			return es.execute(ctx, run)
		},
	}
}

func (es entityStage) execute(ctx context.Context, run *StageRun) error {
	results := run.Summary.ResultsFor(es.entityType)
	if len(results) == 0 {
		// Running only because a dependent section changed.
		return run.Services.Prefetch(ctx, es.entityType)
	}

	var upserts, deletes []*models.DiffResult
	for _, r := range results {
		if r.Operation == models.OperationDelete {
			deletes = append(deletes, r)
		} else {
			upserts = append(upserts, r)
		}
	}

	apply(ctx, run, es.mode, upserts, func(ctx context.Context, r *models.DiffResult) error {
		return bootstrap(ctx, run.Services, r.Desired)
	})
	apply(ctx, run, es.mode, deletes, func(ctx context.Context, r *models.DiffResult) error {
		return run.Services.DeleteEntity(ctx, es.entityType, naturalKey(r.Current))
	})

	if es.tolerant {
		return nil
	}
	return run.aggregate()
}

// apply runs fn over results with the stage's discipline and records one
// outcome per result
func apply(ctx context.Context, run *StageRun, mode discipline, results []*models.DiffResult, fn func(context.Context, *models.DiffResult) error) {
	if len(results) == 0 {
		return
	}
	record := func(r *models.DiffResult, err error) {
		if err != nil {
			run.Failed(r.EntityName, r.Operation, err)
		} else {
			run.Succeeded(r.EntityName, r.Operation)
		}
	}

	if mode == concurrent {
		errs := resilience.ForEachConcurrent(ctx, results, run.concurrency(), fn)
		for i, r := range results {
			record(r, errs[i])
		}
		return
	}

	out := resilience.ProcessChunksZip(ctx, results,
		func(ctx context.Context, chunk []*models.DiffResult) ([]error, error) {
			return resilience.ForEachConcurrent(ctx, chunk, run.concurrency(), fn), nil
		},
		run.chunkOptions(run.Stage.EntityType))
	for _, s := range out.Successes {
		record(s.Item, s.Result)
	}
	for _, f := range out.Failures {
		record(f.Item, f.Err)
	}
}

// bootstrap dispatches a desired entity to its service method
func bootstrap(ctx context.Context, svc Services, desired interface{}) error {
	switch e := desired.(type) {
	case *models.ShopSettings:
		return svc.BootstrapShop(ctx, e)
	case *models.Channel:
		return svc.BootstrapChannel(ctx, e)
	case *models.TaxClass:
		return svc.BootstrapTaxClass(ctx, e)
	case *models.Attribute:
		return svc.BootstrapAttribute(ctx, e)
	case *models.ProductType:
		return svc.BootstrapProductType(ctx, e)
	case *models.PageType:
		return svc.BootstrapPageType(ctx, e)
	case *models.Category:
		return svc.BootstrapCategory(ctx, e)
	case *models.Warehouse:
		return svc.BootstrapWarehouse(ctx, e)
	case *models.ShippingZone:
		return svc.BootstrapShippingZone(ctx, e)
	case *models.Product:
		return svc.BootstrapProduct(ctx, e)
	case *models.Collection:
		return svc.BootstrapCollection(ctx, e)
	case *models.Menu:
		return svc.BootstrapMenu(ctx, e)
	case *models.Voucher:
		return svc.BootstrapVoucher(ctx, e)
	default:
		return fmt.Errorf("unsupported entity %T", desired)
	}
}

// naturalKey returns the identifier used to address an existing entity
func naturalKey(entity interface{}) string {
	switch e := entity.(type) {
	case *models.Channel:
		return e.Slug
	case *models.TaxClass:
		return e.Name
	case *models.Attribute:
		if e.Slug != "" {
			return e.Slug
		}
		return e.Name
	case *models.ProductType:
		return e.Name
	case *models.PageType:
		return e.Name
	case *models.Category:
		return e.Slug
	case *models.Warehouse:
		return e.Slug
	case *models.ShippingZone:
		return e.Name
	case *models.Product:
		return e.Slug
	case *models.Collection:
		return e.Slug
	case *models.Menu:
		return e.Slug
	case *models.Voucher:
		return e.Code
	default:
		return ""
	}
}
