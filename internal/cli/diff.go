package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilupskalvis/shopsync/internal/apperr"
	"github.com/kilupskalvis/shopsync/internal/diff"
	"github.com/kilupskalvis/shopsync/internal/models"
	"github.com/kilupskalvis/shopsync/internal/output"
	"github.com/kilupskalvis/shopsync/internal/saleor"
)

var diffOpts struct {
	sections sectionFlags
	format   string
	filter   string
	stat     bool
}

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Show the changes a deployment would apply",
	Long: `Compare the local configuration file with the live Saleor instance and
list the creates, updates and deletes needed to reconcile them.

Examples:
  shopsync diff                              Full diff, grouped by section
  shopsync diff --stat                       Per-section counts only
  shopsync diff --include products -f json   Products only, as JSON
  shopsync diff --filter summer              Entities whose name contains "summer"`,
	Args: cobra.NoArgs,
	RunE: runDiff,
}

func init() {
	diffOpts.sections.register(diffCmd)
	diffCmd.Flags().StringVarP(&diffOpts.format, "format", "f", "text", "Output format (text, json, yaml)")
	diffCmd.Flags().StringVar(&diffOpts.filter, "filter", "", "Only entities whose name contains this text")
	diffCmd.Flags().BoolVar(&diffOpts.stat, "stat", false, "Show per-section counts instead of the full diff")
}

// diffDocument is the structured rendering of a diff
type diffDocument struct {
	TotalChanges int                       `json:"totalChanges" yaml:"totalChanges"`
	Creates      int                       `json:"creates" yaml:"creates"`
	Updates      int                       `json:"updates" yaml:"updates"`
	Deletes      int                       `json:"deletes" yaml:"deletes"`
	Sections     []models.EntityTypeCounts `json:"sections" yaml:"sections"`
	Results      []*models.DiffResult      `json:"results,omitempty" yaml:"results,omitempty"`
}

func newDiffDocument(s *models.DiffSummary, stat bool) diffDocument {
	doc := diffDocument{
		TotalChanges: s.TotalChanges,
		Creates:      s.Creates,
		Updates:      s.Updates,
		Deletes:      s.Deletes,
		Sections:     s.CountByEntityType(),
	}
	if !stat {
		doc.Results = s.Results
	}
	return doc
}

func runDiff(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(diffOpts.format)
	if err != nil {
		return apperr.Validation(err.Error())
	}
	include, exclude, err := diffOpts.sections.parse()
	if err != nil {
		return err
	}

	c, err := initRemoteContext(cmd)
	if err != nil {
		return err
	}
	defer c.Close()

	cmp, err := compare(cmd, c)
	if err != nil {
		return err
	}
	summary := filterByName(cmp.Summary.Filter(include, exclude), diffOpts.filter)

	out := cmd.OutOrStdout()
	if format.Structured() {
		return output.WriteStructured(out, format, newDiffDocument(summary, diffOpts.stat))
	}
	if !summary.HasChanges() {
		fmt.Fprintln(out, "No changes. The remote instance matches the local configuration.")
		return nil
	}
	diff.Format(out, summary, diff.FormatOptions{Stat: diffOpts.stat})
	return nil
}

// compare loads both sides and diffs them
func compare(cmd *cobra.Command, c *cmdContext) (*diff.Comparison, error) {
	timeout, err := c.Config.Timeout()
	if err != nil {
		return nil, apperr.Validation(err.Error())
	}
	retriever := saleor.NewRetriever(c.Client, c.Logger)
	svc := diff.NewService(c.Source(), retriever, timeout, c.Logger)
	return svc.Diff(cmd.Context())
}
