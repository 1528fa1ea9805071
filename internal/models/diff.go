package models

// DiffChange is one field-level delta of an UPDATE
type DiffChange struct {
	Field        string      `json:"field" yaml:"field"`
	CurrentValue interface{} `json:"currentValue,omitempty" yaml:"currentValue,omitempty"`
	DesiredValue interface{} `json:"desiredValue,omitempty" yaml:"desiredValue,omitempty"`
	Description  string      `json:"description,omitempty" yaml:"description,omitempty"`
}

// DiffResult is one unit of required change.
// CREATE carries only Desired, DELETE only Current, UPDATE both plus Changes.
type DiffResult struct {
	Operation  Operation    `json:"operation" yaml:"operation"`
	EntityType EntityType   `json:"entityType" yaml:"entityType"`
	EntityName string       `json:"entityName" yaml:"entityName"`
	Current    interface{}  `json:"current,omitempty" yaml:"-"`
	Desired    interface{}  `json:"desired,omitempty" yaml:"-"`
	Changes    []DiffChange `json:"changes,omitempty" yaml:"changes,omitempty"`
}

// DiffSummary aggregates diff results. Use NewDiffSummary so the counters
// always agree with Results.
type DiffSummary struct {
	TotalChanges int           `json:"totalChanges" yaml:"totalChanges"`
	Creates      int           `json:"creates" yaml:"creates"`
	Updates      int           `json:"updates" yaml:"updates"`
	Deletes      int           `json:"deletes" yaml:"deletes"`
	Results      []*DiffResult `json:"results" yaml:"results"`
}

// NewDiffSummary builds a summary from results, counting each operation
func NewDiffSummary(results []*DiffResult) *DiffSummary {
	s := &DiffSummary{Results: make([]*DiffResult, 0, len(results))}
	for _, r := range results {
		if r == nil {
			continue
		}
		switch r.Operation {
		case OperationCreate:
			s.Creates++
		case OperationUpdate:
			s.Updates++
		case OperationDelete:
			s.Deletes++
		default:
			continue
		}
		s.Results = append(s.Results, r)
	}
	s.TotalChanges = len(s.Results)
	return s
}

// HasChanges returns true if any result is present
func (s *DiffSummary) HasChanges() bool {
	return s != nil && s.TotalChanges > 0
}

// HasEntityType reports whether any result touches the given section
func (s *DiffSummary) HasEntityType(entityType EntityType) bool {
	if s == nil {
		return false
	}
	for _, r := range s.Results {
		if r.EntityType == entityType {
			return true
		}
	}
	return false
}

// ResultsFor returns the results for one section, in order
func (s *DiffSummary) ResultsFor(entityType EntityType) []*DiffResult {
	if s == nil {
		return nil
	}
	var out []*DiffResult
	for _, r := range s.Results {
		if r.EntityType == entityType {
			out = append(out, r)
		}
	}
	return out
}

// EntityTypeCounts returns per-section counts in first-seen order.
type EntityTypeCounts struct {
	EntityType EntityType `json:"entityType" yaml:"entityType"`
	Creates    int        `json:"creates" yaml:"creates"`
	Updates    int        `json:"updates" yaml:"updates"`
	Deletes    int        `json:"deletes" yaml:"deletes"`
}

// CountByEntityType groups operation counts by section
func (s *DiffSummary) CountByEntityType() []EntityTypeCounts {
	if s == nil {
		return nil
	}
	index := make(map[EntityType]int)
	var out []EntityTypeCounts
	for _, r := range s.Results {
		i, ok := index[r.EntityType]
		if !ok {
			i = len(out)
			index[r.EntityType] = i
			out = append(out, EntityTypeCounts{EntityType: r.EntityType})
		}
		switch r.Operation {
		case OperationCreate:
			out[i].Creates++
		case OperationUpdate:
			out[i].Updates++
		case OperationDelete:
			out[i].Deletes++
		}
	}
	return out
}

// Filter returns a new summary restricted to include (all when empty) minus exclude
func (s *DiffSummary) Filter(include, exclude []EntityType) *DiffSummary {
	if s == nil {
		return NewDiffSummary(nil)
	}
	if len(include) == 0 && len(exclude) == 0 {
		return NewDiffSummary(s.Results)
	}
	inc := make(map[EntityType]bool, len(include))
	for _, e := range include {
		inc[e] = true
	}
	exc := make(map[EntityType]bool, len(exclude))
	for _, e := range exclude {
		exc[e] = true
	}
	var kept []*DiffResult
	for _, r := range s.Results {
		if len(inc) > 0 && !inc[r.EntityType] {
			continue
		}
		if exc[r.EntityType] {
			continue
		}
		kept = append(kept, r)
	}
	return NewDiffSummary(kept)
}
