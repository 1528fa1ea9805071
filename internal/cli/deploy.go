package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kilupskalvis/shopsync/internal/apperr"
	"github.com/kilupskalvis/shopsync/internal/configfile"
	"github.com/kilupskalvis/shopsync/internal/deploy"
	"github.com/kilupskalvis/shopsync/internal/diff"
	"github.com/kilupskalvis/shopsync/internal/models"
	"github.com/kilupskalvis/shopsync/internal/report"
	"github.com/kilupskalvis/shopsync/internal/saleor"
	"github.com/kilupskalvis/shopsync/internal/store"
	"github.com/kilupskalvis/shopsync/internal/telemetry"
)

var deployOpts struct {
	sections    sectionFlags
	force       bool
	dryRun      bool
	noReport    bool
	reportDir   string
	metricsFile string
	concurrency int
	showSkipped bool
}

var deployCmd = &cobra.Command{
	Use:     "deploy",
	Aliases: []string{"push"},
	Short:   "Apply the local configuration to the remote instance",
	Long:    `Compute the diff between the local configuration and the live instance,
then apply it through the deployment pipeline. Stages run in dependency
order and stop at the first fatal error; per-entity failures are reported
and the run ends as partial.

Deletions are only applied with --force.

Every run writes a JSON report to .shopsync/reports and is recorded in the
deployment history (see 'shopsync history').

Examples:
  shopsync deploy                          Apply all changes
  shopsync deploy --dry-run                Show the plan without applying it
  shopsync deploy --include products       Only product changes
  shopsync deploy --force                  Also delete remote entities missing locally
  shopsync deploy --metrics-file run.prom  Export run metrics for Prometheus`,
	Args: cobra.NoArgs,
	RunE: runDeploy,
}

func init() {
	deployOpts.sections.register(deployCmd)
	f := deployCmd.Flags()
	f.BoolVar(&deployOpts.force, "force", false, "Apply deletions of remote entities absent from the local file")
	f.BoolVar(&deployOpts.dryRun, "dry-run", false, "Print the plan and exit without changing anything")
	f.BoolVar(&deployOpts.noReport, "no-report", false, "Do not write a deployment report")
	f.StringVar(&deployOpts.reportDir, "report-dir", "", "Directory for deployment reports (default .shopsync/reports)")
	f.StringVar(&deployOpts.metricsFile, "metrics-file", "", "Write run metrics in Prometheus text format to this file")
	f.IntVar(&deployOpts.concurrency, "concurrency", 0, "Parallel requests for small sections (default 4)")
	f.BoolVar(&deployOpts.showSkipped, "show-skipped", false, "List skipped stages in the report")
}

func runDeploy(cmd *cobra.Command, args []string) error {
	include, exclude, err := deployOpts.sections.parse()
	if err != nil {
		return err
	}

	c, err := initRemoteContext(cmd)
	if err != nil {
		return err
	}
	defer c.Close()
	out := cmd.OutOrStdout()

	cmp, err := compare(cmd, c)
	if err != nil {
		return err
	}
	summary := cmp.Summary.Filter(include, exclude)

	if !summary.HasChanges() {
		fmt.Fprintln(out, "No changes to deploy. The remote instance matches the local configuration.")
		return nil
	}
	if !globals.quiet {
		color.New(color.Bold).Fprintf(out, "Plan for %s\n\n", c.Client.Endpoint())
		diff.Format(out, summary, diff.FormatOptions{})
		fmt.Fprintln(out)
	}
	if err := guardDeletions(summary, deployOpts.force); err != nil {
		return err
	}
	if deployOpts.dryRun {
		fmt.Fprintln(out, "Dry run: nothing was changed.")
		return nil
	}

	chunking, err := c.Config.ChunkOverrides()
	if err != nil {
		return apperr.Validation(err.Error())
	}

	services := saleor.NewServices(c.Client, c.Logger)
	dc := deploy.NewContext(services, saleor.NewAttributeRepository(services), cmp.Local, summary, deploy.Args{
		Force:       deployOpts.force,
		Concurrency: deployOpts.concurrency,
		Chunking:    chunking,
	}, c.Logger)
	remote := cmp.Remote
	dc.Validate = func(cfg *models.Configuration) error {
		return configfile.Validate(cfg, remote)
	}

	result, runErr := deploy.NewDeploymentPipeline(c.Logger).Run(cmd.Context(), dc)

	rec := recordRun(c, result, summary, runErr)
	if deployOpts.metricsFile != "" {
		exporter := telemetry.NewExporter()
		exporter.Observe(result, summary)
		if err := exporter.WriteFile(deployOpts.metricsFile); err != nil {
			c.Logger.Warn("could not export metrics", "error", err)
		}
	}

	deploy.RenderResult(out, result, deploy.RenderOptions{ShowSkipped: deployOpts.showSkipped})
	if rec.ReportPath != "" {
		fmt.Fprintf(out, "\nReport: %s\n", rec.ReportPath)
	}
	return deployOutcome(result, runErr)
}

// guardDeletions refuses a plan that deletes remote entities unless forced
func guardDeletions(summary *models.DiffSummary, force bool) error {
	if summary.Deletes == 0 || force {
		return nil
	}
	e := apperr.Validationf("the plan deletes %d remote entities", summary.Deletes)
	e.Suggestions = []string{
		"Review the deletions above and re-run with --force to apply them",
		"Or add the entities to the local configuration to keep them",
		"Or use --exclude to leave those sections untouched",
	}
	return e
}

// deployOutcome turns the result into the command error that selects the
// exit code. Partial runs were already rendered in detail.
func deployOutcome(result *deploy.DeploymentResult, runErr error) error {
	if runErr != nil {
		return runErr
	}
	switch result.Status {
	case deploy.StatusSuccess:
		return nil
	case deploy.StatusPartial:
		return &reportedError{err: deploy.NewPartialDeploymentError(result)}
	default:
		return &reportedError{err: errors.New("deployment failed: no entity was applied")}
	}
}

// recordRun writes the report file and the history row. Failures are
// logged; they never change the outcome of the deployment.
func recordRun(c *cmdContext, result *deploy.DeploymentResult, summary *models.DiffSummary, runErr error) store.Run {
	runID, err := report.NewRunID(result.StartTime)
	if err != nil {
		c.Logger.Warn("could not generate run id", "error", err)
		runID = result.StartTime.UTC().Format("20060102T150405.000000000")
	}

	rec := store.Run{
		ID:        runID,
		StartedAt: result.StartTime,
		Status:    string(result.Status),
		Duration:  result.Duration,
		Creates:   summary.Creates,
		Updates:   summary.Updates,
		Deletes:   summary.Deletes,
		TargetURL: c.Client.Endpoint(),
	}
	if runErr != nil {
		rec.Error = runErr.Error()
	}

	if !deployOpts.noReport {
		dir := deployOpts.reportDir
		if dir == "" {
			dir = c.Config.ReportsPath()
		}
		rec.ReportPath = writeReport(c.Logger, dir, c.Config.ReportsToKeep(), report.Build(runID, result, summary, runErr))
	}

	st, err := c.openStore()
	if err != nil {
		c.Logger.Warn("could not open deployment history", "error", err)
		return rec
	}
	if err := st.SaveRun(&rec); err != nil {
		c.Logger.Warn("could not record deployment", "error", err)
	}
	return rec
}

func writeReport(logger *slog.Logger, dir string, keep int, doc *report.Document) string {
	path, err := report.Write(dir, doc)
	if err != nil {
		logger.Warn("could not write deployment report", "error", err)
		return ""
	}
	removed, err := report.Prune(dir, keep)
	if err != nil {
		logger.Warn("could not prune old reports", "error", err)
	}
	for _, p := range removed {
		logger.Debug("removed old report", "path", p)
	}
	return path
}
