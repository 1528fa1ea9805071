package diff

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/kilupskalvis/shopsync/internal/models"
)

// FormatOptions controls the text rendering of a diff summary
type FormatOptions struct {
	// Stat prints per-section counts instead of individual changes
	Stat bool
}

// Format writes a human readable rendering of the summary, grouped by section
func Format(w io.Writer, s *models.DiffSummary, opts FormatOptions) {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)
	bold := color.New(color.Bold)

	if s == nil || !s.HasChanges() {
		fmt.Fprintln(w, "No changes")
		return
	}

	if opts.Stat {
		for _, c := range s.CountByEntityType() {
			fmt.Fprintf(w, " %-16s ", c.EntityType)
			green.Fprintf(w, "+%d ", c.Creates)
			yellow.Fprintf(w, "~%d ", c.Updates)
			red.Fprintf(w, "-%d\n", c.Deletes)
		}
		writeTotals(w, s, green, yellow, red)
		return
	}

	for _, et := range models.AllEntityTypes {
		results := s.ResultsFor(et)
		if len(results) == 0 {
			continue
		}
		bold.Fprintf(w, "%s\n", et)
		for _, r := range results {
			switch r.Operation {
			case models.OperationCreate:
				green.Fprintf(w, "  %s %s\n", r.Operation.Symbol(), r.EntityName)
			case models.OperationDelete:
				red.Fprintf(w, "  %s %s\n", r.Operation.Symbol(), r.EntityName)
			default:
				yellow.Fprintf(w, "  %s %s\n", r.Operation.Symbol(), r.EntityName)
			}
			for _, c := range r.Changes {
				fmt.Fprintf(w, "      %s\n", describeChange(c))
			}
		}
		fmt.Fprintln(w)
	}
	writeTotals(w, s, green, yellow, red)
}

func writeTotals(w io.Writer, s *models.DiffSummary, green, yellow, red *color.Color) {
	fmt.Fprintf(w, " %d changes: ", s.TotalChanges)
	green.Fprintf(w, "%d to create", s.Creates)
	fmt.Fprint(w, ", ")
	yellow.Fprintf(w, "%d to update", s.Updates)
	fmt.Fprint(w, ", ")
	red.Fprintf(w, "%d to delete", s.Deletes)
	fmt.Fprintln(w)
}

func describeChange(c models.DiffChange) string {
	if c.Description != "" {
		return c.Description
	}
	return fmt.Sprintf("%s: %s → %s", c.Field, formatValue(c.CurrentValue), formatValue(c.DesiredValue))
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "(unset)"
	case string:
		return fmt.Sprintf("%q", val)
	default:
		return fmt.Sprint(val)
	}
}
