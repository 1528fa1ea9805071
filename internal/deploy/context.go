// Package deploy applies a diff to the remote instance through an ordered,
// dependency-aware pipeline of stages.
package deploy

import (
	"context"
	"log/slog"
	"time"

	"github.com/kilupskalvis/shopsync/internal/models"
	"github.com/kilupskalvis/shopsync/internal/resilience"
)

// Services is the per-entity contract the stages drive. Every Bootstrap
// method is an idempotent create-or-update keyed by the entity's natural
// identifier, so a deployment can be re-run after a partial failure.
type Services interface {
	BootstrapShop(ctx context.Context, shop *models.ShopSettings) error
	BootstrapChannel(ctx context.Context, channel *models.Channel) error
	BootstrapTaxClass(ctx context.Context, taxClass *models.TaxClass) error
	BootstrapAttribute(ctx context.Context, attribute *models.Attribute) error
	BootstrapProductType(ctx context.Context, productType *models.ProductType) error
	BootstrapPageType(ctx context.Context, pageType *models.PageType) error
	BootstrapCategory(ctx context.Context, category *models.Category) error
	BootstrapWarehouse(ctx context.Context, warehouse *models.Warehouse) error
	BootstrapShippingZone(ctx context.Context, zone *models.ShippingZone) error
	BootstrapProduct(ctx context.Context, product *models.Product) error
	BootstrapCollection(ctx context.Context, collection *models.Collection) error
	BootstrapMenu(ctx context.Context, menu *models.Menu) error
	BootstrapVoucher(ctx context.Context, voucher *models.Voucher) error

	// DeleteEntity removes the entity identified by its natural key
	DeleteEntity(ctx context.Context, entityType models.EntityType, key string) error

	// Prefetch loads the remote identifiers of a section so later stages can
	// resolve references to it without further lookups
	Prefetch(ctx context.Context, entityType models.EntityType) error
}

// AttributeRepository is consumed by the attribute-choice preflight
type AttributeRepository interface {
	GetAttributesByNames(ctx context.Context, names []string) ([]*models.Attribute, error)
	AddAttributeValues(ctx context.Context, attribute *models.Attribute, values []string) error
}

// Args carries the command-line options that influence a deployment
type Args struct {
	Force       bool
	Concurrency int
	// Chunking overrides the default batch shape per section
	Chunking map[models.EntityType]resilience.ChunkOptions
}

// Context is shared by every stage of one deployment run. Stages read it
// and act through its collaborators; they never replace its fields.
type Context struct {
	Services   Services
	Attributes AttributeRepository
	Args       Args
	Summary    *models.DiffSummary
	Local      *models.Configuration
	Validate   func(*models.Configuration) error
	StartTime  time.Time
	Cache      *AttributeCache
	Tracker    *resilience.Tracker
	Metrics    *MetricsCollector
	Results    *ResultCollector
	Logger     *slog.Logger
}

// NewContext creates a fresh run context with its own cache, tracker,
// metrics and result collectors
func NewContext(services Services, attributes AttributeRepository, local *models.Configuration, summary *models.DiffSummary, args Args, logger *slog.Logger) *Context {
	if logger == nil {
		logger = slog.Default()
	}
	if summary == nil {
		summary = models.NewDiffSummary(nil)
	}
	if local == nil {
		local = models.Empty()
	}
	tracker := resilience.NewTracker(logger)
	return &Context{
		Services:   services,
		Attributes: attributes,
		Args:       args,
		Summary:    summary,
		Local:      local,
		StartTime:  time.Now(),
		Cache:      NewAttributeCache(),
		Tracker:    tracker,
		Metrics:    NewMetricsCollector(tracker),
		Results:    NewResultCollector(),
		Logger:     logger,
	}
}

func (c *Context) concurrency() int {
	if c.Args.Concurrency > 0 {
		return c.Args.Concurrency
	}
	return resilience.DefaultConcurrency
}

func (c *Context) chunkOptions(entityType models.EntityType) resilience.ChunkOptions {
	opts, ok := c.Args.Chunking[entityType]
	if !ok {
		opts = resilience.DefaultChunkOptions(entityType)
	}
	opts.EntityType = entityType
	opts.Logger = c.Logger
	return opts
}
