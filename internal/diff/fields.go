package diff

import (
	"fmt"
	"math"

	"github.com/kilupskalvis/shopsync/internal/models"
)

// changeSet accumulates field-level changes for one entity
type changeSet struct {
	prefix  string
	changes []models.DiffChange
}

func (c *changeSet) field(name string) string {
	if c.prefix == "" {
		return name
	}
	return c.prefix + "." + name
}

func (c *changeSet) add(field string, current, desired interface{}, description string) {
	c.changes = append(c.changes, models.DiffChange{
		Field:        c.field(field),
		CurrentValue: current,
		DesiredValue: desired,
		Description:  description,
	})
}

// str compares a required string field
func (c *changeSet) str(field, local, remote string) {
	if local != remote {
		c.add(field, remote, local, "")
	}
}

// optStr compares a string field that is only managed when set locally
func (c *changeSet) optStr(field, local, remote string) {
	if local != "" && local != remote {
		c.add(field, remote, local, "")
	}
}

func (c *changeSet) num(field string, local, remote float64) {
	if !floatEqual(local, remote) {
		c.add(field, remote, local, "")
	}
}

// list compares two unordered string sets
func (c *changeSet) list(field, noun string, local, remote []string) {
	added, removed := setDiff(local, remote)
	for _, v := range added {
		c.add(field, nil, v, fmt.Sprintf("%s %q added", noun, v))
	}
	for _, v := range removed {
		c.add(field, v, nil, fmt.Sprintf("%s %q removed", noun, v))
	}
}

func (c *changeSet) nested(prefix string) *changeSet {
	return &changeSet{prefix: c.field(prefix)}
}

func (c *changeSet) merge(other *changeSet) {
	c.changes = append(c.changes, other.changes...)
}

// optPtr compares a pointer field that is only managed when set locally
func optPtr[T comparable](c *changeSet, field string, local, remote *T) {
	if local == nil {
		return
	}
	if remote == nil {
		c.add(field, nil, *local, "")
		return
	}
	if *local != *remote {
		c.add(field, *remote, *local, "")
	}
}

func floatEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// setDiff returns values only in local (local order) and only in remote
// (remote order)
func setDiff(local, remote []string) (added, removed []string) {
	inLocal := make(map[string]bool, len(local))
	for _, v := range local {
		inLocal[v] = true
	}
	inRemote := make(map[string]bool, len(remote))
	for _, v := range remote {
		inRemote[v] = true
	}
	for _, v := range local {
		if !inRemote[v] {
			added = append(added, v)
			inRemote[v] = true
		}
	}
	for _, v := range remote {
		if !inLocal[v] {
			removed = append(removed, v)
			inLocal[v] = true
		}
	}
	return added, removed
}

func sameSet(a, b []string) bool {
	added, removed := setDiff(a, b)
	return len(added) == 0 && len(removed) == 0
}

// byKey indexes a slice by a string key, skipping nil entries
func byKey[T any](items []*T, key func(*T) string) map[string]*T {
	m := make(map[string]*T, len(items))
	for _, it := range items {
		if it != nil {
			m[key(it)] = it
		}
	}
	return m
}
