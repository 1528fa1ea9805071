package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kilupskalvis/shopsync/internal/apperr"
	"github.com/kilupskalvis/shopsync/internal/deploy"
	"github.com/kilupskalvis/shopsync/internal/output"
	"github.com/kilupskalvis/shopsync/internal/report"
	"github.com/kilupskalvis/shopsync/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history [<run-id>]",
	Short: "Show past deployments",
	Long: `List recorded deployments, newest first. With a run ID, show that run
and the stage breakdown from its report file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

var (
	historyLimit  int
	historyFormat string
)

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", store.DefaultHistoryLimit, "Maximum number of runs to list")
	historyCmd.Flags().StringVarP(&historyFormat, "format", "f", "text", "Output format (text, json, yaml)")
}

// historyEntry is the structured rendering of a run
type historyEntry struct {
	ID         string    `json:"id" yaml:"id"`
	StartedAt  time.Time `json:"startedAt" yaml:"startedAt"`
	Status     string    `json:"status" yaml:"status"`
	DurationMs int64     `json:"durationMs" yaml:"durationMs"`
	Creates    int       `json:"creates" yaml:"creates"`
	Updates    int       `json:"updates" yaml:"updates"`
	Deletes    int       `json:"deletes" yaml:"deletes"`
	TargetURL  string    `json:"targetUrl,omitempty" yaml:"targetUrl,omitempty"`
	ReportPath string    `json:"reportPath,omitempty" yaml:"reportPath,omitempty"`
	Error      string    `json:"error,omitempty" yaml:"error,omitempty"`
}

func newHistoryEntry(r *store.Run) historyEntry {
	return historyEntry{
		ID:         r.ID,
		StartedAt:  r.StartedAt,
		Status:     r.Status,
		DurationMs: r.Duration.Milliseconds(),
		Creates:    r.Creates,
		Updates:    r.Updates,
		Deletes:    r.Deletes,
		TargetURL:  r.TargetURL,
		ReportPath: r.ReportPath,
		Error:      r.Error,
	}
}

func runHistory(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(historyFormat)
	if err != nil {
		return apperr.Validation(err.Error())
	}

	c, err := initContext(cmd)
	if err != nil {
		return err
	}
	defer c.Close()

	st, err := c.openStore()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		run, err := st.GetRun(args[0])
		if errors.Is(err, store.ErrRunNotFound) {
			return apperr.Validationf("no deployment with id %q", args[0])
		}
		if err != nil {
			return err
		}
		if format.Structured() {
			return output.WriteStructured(out, format, newHistoryEntry(run))
		}
		showRun(out, run)
		return nil
	}

	runs, err := st.ListRuns(historyLimit)
	if err != nil {
		return err
	}
	if format.Structured() {
		entries := make([]historyEntry, len(runs))
		for i, r := range runs {
			entries[i] = newHistoryEntry(r)
		}
		return output.WriteStructured(out, format, entries)
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No deployments recorded yet")
		return nil
	}
	return listRuns(out, runs)
}

func listRuns(w io.Writer, runs []*store.Run) error {
	rows := make([][]string, len(runs))
	for i, r := range runs {
		rows[i] = []string{
			r.ID,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Status,
			deploy.FormatDuration(r.Duration),
			fmt.Sprintf("+%d ~%d -%d", r.Creates, r.Updates, r.Deletes),
			output.Truncate(r.TargetURL, 48),
		}
	}
	return output.WriteTable(w, []string{"RUN ID", "STARTED", "STATUS", "DURATION", "CHANGES", "TARGET"}, rows)
}

func statusColor(status string) *color.Color {
	switch deploy.Status(status) {
	case deploy.StatusSuccess:
		return color.New(color.FgGreen)
	case deploy.StatusPartial:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}

func showRun(w io.Writer, r *store.Run) {
	color.New(color.FgYellow).Fprintf(w, "run %s\n", r.ID)
	fmt.Fprintf(w, "Date:     %s\n", r.StartedAt.Local().Format("Mon Jan 2 15:04:05 2006"))
	fmt.Fprint(w, "Status:   ")
	statusColor(r.Status).Fprintln(w, r.Status)
	fmt.Fprintf(w, "Duration: %s\n", deploy.FormatDuration(r.Duration))
	fmt.Fprintf(w, "Changes:  %d (%d creates, %d updates, %d deletes)\n", r.Changes(), r.Creates, r.Updates, r.Deletes)
	if r.TargetURL != "" {
		fmt.Fprintf(w, "Target:   %s\n", r.TargetURL)
	}
	if r.Error != "" {
		fmt.Fprintf(w, "Error:    %s\n", r.Error)
	}
	if r.ReportPath == "" {
		return
	}
	fmt.Fprintf(w, "Report:   %s\n", r.ReportPath)

	doc, err := report.Load(r.ReportPath)
	if err != nil {
		fmt.Fprintf(w, "\n(report unavailable: %v)\n", err)
		return
	}
	fmt.Fprintln(w)
	for _, s := range doc.Stages {
		if s.Status == deploy.StatusSkipped {
			continue
		}
		fmt.Fprintf(w, "  %-32s ", s.Name)
		statusColor(string(s.Status)).Fprintf(w, "%-8s", s.Status)
		fmt.Fprintf(w, " %s\n", s.Duration.Formatted)
	}
}
