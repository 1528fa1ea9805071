package deploy

import (
	"context"
	"errors"
	"fmt"

	"github.com/kilupskalvis/shopsync/internal/models"
)

// AttributeChoicesStage resolves the attributes referenced by changed
// products into the run's cache and adds any choice values the products use
// that do not exist remotely yet
func AttributeChoicesStage() Stage {
	return Stage{
		Name:       StageAttributeChoices,
		EntityType: models.EntityAttributes,
		Skip:       SkipUnlessChanged(models.EntityProducts),
		Execute:    runAttributeChoices,
	}
}

type choiceRef struct {
	name   string
	values []string
}

func runAttributeChoices(ctx context.Context, run *StageRun) error {
	refs := referencedChoices(run.Summary.ResultsFor(models.EntityProducts))
	if len(refs) == 0 {
		return nil
	}
	if run.Attributes == nil {
		return errors.New("no attribute repository configured")
	}

	names := make([]string, len(refs))
	for i, r := range refs {
		names[i] = r.name
	}
	attrs, err := run.Attributes.GetAttributesByNames(ctx, names)
	if err != nil {
		return fmt.Errorf("failed to fetch attributes: %w", err)
	}
	run.Cache.Populate(attrs)
	run.Logger.Debug("attribute cache populated", "requested", len(names), "cached", run.Cache.Len())

	for _, ref := range refs {
		if err := run.Cache.Diagnose(ref.name, models.AttributeScopeProduct); err != nil {
			run.Failed(ref.name, models.OperationUpdate, err)
			continue
		}
		attr, _ := run.Cache.Product(ref.name)
		if !attr.HasChoices() {
			continue
		}
		missing := missingValues(attr, ref.values)
		if len(missing) == 0 {
			continue
		}
		if err := run.Attributes.AddAttributeValues(ctx, attr, missing); err != nil {
			run.Failed(ref.name, models.OperationUpdate, err)
			continue
		}
		run.Logger.Info("added attribute choices", "attribute", ref.name, "values", missing)
		run.Succeeded(ref.name, models.OperationUpdate)
	}
	return run.aggregate()
}

// referencedChoices collects the attribute values used by products being
// created or updated, in first-seen order
func referencedChoices(results []*models.DiffResult) []choiceRef {
	index := make(map[string]int)
	seen := make(map[string]map[string]bool)
	var refs []choiceRef

	add := func(values []*models.ProductAttributeValue) {
		for _, v := range values {
			if v == nil {
				continue
			}
			i, ok := index[v.Name]
			if !ok {
				i = len(refs)
				index[v.Name] = i
				seen[v.Name] = make(map[string]bool)
				refs = append(refs, choiceRef{name: v.Name})
			}
			for _, val := range v.Values {
				if !seen[v.Name][val] {
					seen[v.Name][val] = true
					refs[i].values = append(refs[i].values, val)
				}
			}
		}
	}

	for _, r := range results {
		p, ok := r.Desired.(*models.Product)
		if !ok || r.Operation == models.OperationDelete {
			continue
		}
		add(p.Attributes)
		for _, v := range p.Variants {
			if v != nil {
				add(v.Attributes)
			}
		}
	}
	return refs
}

func missingValues(attr *models.Attribute, wanted []string) []string {
	have := make(map[string]bool, len(attr.Values))
	for _, v := range attr.Values {
		if v != nil {
			have[v.Name] = true
		}
	}
	var missing []string
	for _, w := range wanted {
		if !have[w] {
			missing = append(missing, w)
		}
	}
	return missing
}
