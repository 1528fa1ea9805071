// Package cli implements the shopsync command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilupskalvis/shopsync/internal/apperr"
	"github.com/kilupskalvis/shopsync/internal/config"
	"github.com/kilupskalvis/shopsync/internal/configfile"
	"github.com/kilupskalvis/shopsync/internal/saleor"
	"github.com/kilupskalvis/shopsync/internal/store"
)

// globalFlags are the persistent flags shared by every command
type globalFlags struct {
	url       string
	token     string
	config    string
	quiet     bool
	verbose   bool
	logFormat string
}

var globals globalFlags

// cmdContext holds common resources for CLI commands
type cmdContext struct {
	Config *config.Config
	Logger *slog.Logger
	Client *saleor.Client
	Store  *store.Store
}

// Close releases resources held by cmdContext
func (c *cmdContext) Close() {
	if c.Store != nil {
		c.Store.Close()
	}
}

// Source returns the declarative configuration file
func (c *cmdContext) Source() *configfile.Source {
	return configfile.NewSource(c.Config.LocalConfigPath())
}

// initContext resolves settings and the logger (no client)
func initContext(cmd *cobra.Command) (*cmdContext, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, apperr.LocalConfig("", err)
	}
	cfg.ApplyEnv(os.LookupEnv)
	cfg.Apply(config.Overrides{URL: globals.url, Token: globals.token, ConfigPath: globals.config})

	logger := newLogger(cmd.ErrOrStderr(), globals)
	slog.SetDefault(logger)
	return &cmdContext{Config: cfg, Logger: logger}, nil
}

// initRemoteContext also creates the API client
func initRemoteContext(cmd *cobra.Command) (*cmdContext, error) {
	c, err := initContext(cmd)
	if err != nil {
		return nil, err
	}
	if err := c.Config.RequireRemote(); err != nil {
		return nil, err
	}
	c.Client = saleor.NewClient(c.Config.URL, c.Config.Token, saleor.Options{Logger: c.Logger})
	return c, nil
}

// openStore opens the history database, creating .shopsync when needed
func (c *cmdContext) openStore() (*store.Store, error) {
	if c.Store != nil {
		return c.Store, nil
	}
	if err := os.MkdirAll(c.Config.Root(), 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", c.Config.Root(), err)
	}
	st, err := store.Open(c.Config.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	c.Store = st
	return st, nil
}

var rootCmd = &cobra.Command{
	Use:   "shopsync",
	Short: "Declarative configuration sync for Saleor",
	Long: `shopsync keeps a Saleor instance in sync with a declarative YAML file.
Pull the live configuration, review the differences, and deploy changes
through an ordered, dependency-aware pipeline.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&globals.url, "url", "", "Saleor instance URL (env "+config.EnvURL+")")
	pf.StringVar(&globals.token, "token", "", "Saleor app token (env "+config.EnvToken+")")
	pf.StringVar(&globals.config, "config", "", "Configuration file (env "+config.EnvConfig+", default "+configfile.DefaultPath+")")
	pf.BoolVarP(&globals.quiet, "quiet", "q", false, "Only print warnings and errors")
	pf.BoolVarP(&globals.verbose, "verbose", "v", false, "Print debug logs and full error chains")
	pf.StringVar(&globals.logFormat, "log-format", "text", "Log format (text, json)")
	rootCmd.MarkFlagsMutuallyExclusive("quiet", "verbose")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(pullCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(deployCmd)
	rootCmd.AddCommand(historyCmd)
}

// reportedError wraps an error whose details were already printed. It keeps
// its classification for the exit code.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// Execute runs the root command and returns the process exit code
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return apperr.ExitSuccess
	}
	var reported *reportedError
	if !errors.As(err, &reported) {
		apperr.Render(stderr, err, globals.verbose)
	}
	return apperr.ExitCodeFor(err)
}
