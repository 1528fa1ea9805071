package deploy

import (
	"testing"

	"github.com/kilupskalvis/shopsync/internal/models"
	"github.com/stretchr/testify/assert"
)

func summaryOf(results ...*models.DiffResult) *models.DiffSummary {
	return models.NewDiffSummary(results)
}

func create(et models.EntityType, name string) *models.DiffResult {
	return &models.DiffResult{Operation: models.OperationCreate, EntityType: et, EntityName: name}
}

func stageFor(t *testing.T, name string) Stage {
	t.Helper()
	for _, s := range DefaultStages() {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("no stage %q", name)
	return Stage{}
}

func TestSkip_DependencyRule(t *testing.T) {
	referenced := []string{StageCategories, StageProductTypes, StageChannels}

	t.Run("products only", func(t *testing.T) {
		dc := newTestContext(summaryOf(create(models.EntityProducts, "Tee")))
		for _, name := range referenced {
			assert.False(t, stageFor(t, name).Skip(dc), name)
		}
		assert.True(t, stageFor(t, StageMenus).Skip(dc))
		assert.True(t, stageFor(t, StageWarehouses).Skip(dc))
	})

	t.Run("no changes", func(t *testing.T) {
		dc := newTestContext(summaryOf())
		for _, name := range referenced {
			assert.True(t, stageFor(t, name).Skip(dc), name)
		}
	})
}

func TestSkip_OwnChangesRunStage(t *testing.T) {
	dc := newTestContext(summaryOf(create(models.EntityMenus, "Navbar")))
	assert.False(t, stageFor(t, StageMenus).Skip(dc))
	// menus link to categories and collections
	assert.False(t, stageFor(t, StageCategories).Skip(dc))
	assert.False(t, stageFor(t, StageCollections).Skip(dc))
	assert.True(t, stageFor(t, StageProducts).Skip(dc))
}

func TestSkip_ShippingZonesPullInWarehouses(t *testing.T) {
	dc := newTestContext(summaryOf(create(models.EntityShippingZones, "EU")))
	assert.False(t, stageFor(t, StageWarehouses).Skip(dc))
	assert.False(t, stageFor(t, StageChannels).Skip(dc))
	assert.False(t, stageFor(t, StageTaxClasses).Skip(dc))
	assert.True(t, stageFor(t, StageCategories).Skip(dc))
}

func TestSkip_NilSummary(t *testing.T) {
	assert.True(t, SkipUnlessChanged(models.EntityProducts)(&Context{}))
}

func TestValidateStageNeverSkips(t *testing.T) {
	assert.Nil(t, ValidateStage().Skip)
}
