package deploy

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/kilupskalvis/shopsync/internal/resilience"
)

// FormatDuration renders d as 850ms, 4.2s or 3m 12s
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		d = d.Round(time.Second)
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
}

// RenderOptions controls RenderResult
type RenderOptions struct {
	// ShowSkipped lists skipped stages in the breakdown
	ShowSkipped bool
}

// RenderResult writes the human readable deployment report: status header,
// summary counts, per-stage breakdown and next steps for partial runs
func RenderResult(w io.Writer, r *DeploymentResult, opts RenderOptions) {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	switch r.Status {
	case StatusSuccess:
		green.Fprintln(w, "✓ Deployment completed successfully")
	case StatusPartial:
		yellow.Fprintln(w, "⚠ Deployment partially completed")
	default:
		red.Fprintln(w, "✗ Deployment failed")
	}
	fmt.Fprintln(w)

	s := r.Summary
	bold.Fprintln(w, "Summary")
	fmt.Fprintf(w, "  Duration:  %s\n", FormatDuration(r.Duration))
	fmt.Fprintf(w, "  Entities:  %d total, %d succeeded, %d failed\n",
		s.TotalEntities, s.SuccessfulEntities, s.FailedEntities)
	fmt.Fprintf(w, "  Stages:    %d completed, %d partial, %d failed, %d skipped\n",
		s.CompletedStages, s.PartialStages, s.FailedStages, s.SkippedStages)
	if r.Metrics != nil && !r.Metrics.Resilience.IsZero() {
		fmt.Fprintf(w, "  Resilience: %s\n", describeResilience(r.Metrics.Resilience))
	}
	fmt.Fprintln(w)

	bold.Fprintln(w, "Stages")
	for _, st := range r.Stages {
		switch st.Status {
		case StatusSkipped:
			if opts.ShowSkipped {
				faint.Fprintf(w, "  - %s (skipped)\n", st.Name)
			}
			continue
		case StatusSuccess:
			green.Fprintf(w, "  ✓ %s", st.Name)
		case StatusPartial:
			yellow.Fprintf(w, "  ⚠ %s", st.Name)
		default:
			red.Fprintf(w, "  ✗ %s", st.Name)
		}
		fmt.Fprintf(w, " (%s)", FormatDuration(st.Duration))
		if ok, failed := len(st.Succeeded()), len(st.Failed()); ok+failed > 0 {
			fmt.Fprintf(w, ": %d succeeded, %d failed", ok, failed)
		}
		fmt.Fprintln(w)

		for _, e := range st.Entities {
			if e.Success {
				fmt.Fprintf(w, "      ✓ %s (%s)\n", e.Name, e.Operation.Verb())
				continue
			}
			red.Fprintf(w, "      ✗ %s: %s\n", e.Name, e.Error)
			for _, sug := range e.Suggestions {
				fmt.Fprintf(w, "          → %s\n", sug)
			}
		}
		if st.Error != "" && len(st.Failed()) == 0 {
			red.Fprintf(w, "      %s\n", st.Error)
		}
	}

	if r.Status == StatusPartial {
		fmt.Fprintln(w)
		bold.Fprintln(w, "Next steps")
		fmt.Fprintln(w, "  1. Fix the failed entities listed above in your configuration")
		fmt.Fprintln(w, "  2. Run `shopsync diff` to review what is still pending")
		fmt.Fprintln(w, "  3. Re-run `shopsync deploy`; applied entities are updated in place, not duplicated")
	}
}

func describeResilience(m resilience.StageMetrics) string {
	return fmt.Sprintf("%d rate limit hits, %d retries, %d GraphQL errors, %d network errors",
		m.RateLimitHits, m.RetryAttempts, m.GraphQLErrors, m.NetworkErrors)
}
