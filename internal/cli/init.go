package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kilupskalvis/shopsync/internal/config"
	"github.com/kilupskalvis/shopsync/internal/saleor"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a .shopsync directory in the current directory",
	Long: `Create a .shopsync directory holding tool settings, deployment reports
and the deployment history database. When --url is given the instance is
contacted once to check the URL and token.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	c, err := initContext(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	if _, err := config.FindRoot(cwd); err == nil {
		return fmt.Errorf("%s already exists in this directory or a parent", config.Dir)
	}

	if c.Config.URL != "" && c.Config.Token != "" {
		fmt.Fprintf(out, "Connecting to %s...\n", c.Config.URL)
		client := saleor.NewClient(c.Config.URL, c.Config.Token, saleor.Options{Logger: c.Logger})
		if err := client.Ping(cmd.Context()); err != nil {
			return err
		}
	}

	cfg, err := config.Initialize(cwd, c.Config.URL)
	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}
	c.Config = cfg

	if _, err := c.openStore(); err != nil {
		return err
	}
	defer c.Close()

	color.New(color.FgGreen).Fprintf(out, "Initialized shopsync in %s/\n", config.Dir)
	if cfg.URL != "" {
		fmt.Fprintf(out, "Tracking Saleor at %s\n", cfg.URL)
	}
	fmt.Fprintf(out, "\nRun 'shopsync pull' to write the current configuration to %s.\n", cfg.LocalConfigPath())
	return nil
}
