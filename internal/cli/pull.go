package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kilupskalvis/shopsync/internal/apperr"
	"github.com/kilupskalvis/shopsync/internal/configfile"
	"github.com/kilupskalvis/shopsync/internal/diff"
	"github.com/kilupskalvis/shopsync/internal/saleor"
)

var pullOpts struct {
	sections sectionFlags
	stdout   bool
}

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Write the remote configuration to the local file",
	Long: `Retrieve the live configuration of the Saleor instance and write it to the
local YAML file. An existing file is first copied to a timestamped backup.

Examples:
  shopsync pull                           Overwrite config.yml with the remote state
  shopsync pull --include products        Only the products section
  shopsync pull --stdout > snapshot.yml   Print instead of writing the file`,
	Args: cobra.NoArgs,
	RunE: runPull,
}

func init() {
	pullOpts.sections.register(pullCmd)
	pullCmd.Flags().BoolVar(&pullOpts.stdout, "stdout", false, "Print the YAML instead of writing the file")
}

func runPull(cmd *cobra.Command, args []string) error {
	c, err := initRemoteContext(cmd)
	if err != nil {
		return err
	}
	defer c.Close()

	include, exclude, err := pullOpts.sections.parse()
	if err != nil {
		return err
	}
	timeout, err := c.Config.Timeout()
	if err != nil {
		return apperr.Validation(err.Error())
	}
	if timeout <= 0 {
		timeout = diff.DefaultRemoteTimeout
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	c.Logger.Info("retrieving remote configuration", "url", c.Client.Endpoint())
	remote, err := saleor.NewRetriever(c.Client, c.Logger).RetrieveWithoutSaving(ctx)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return apperr.RemoteTimeout(timeout)
		}
		return apperr.RemoteConfig(err)
	}
	selectSections(remote, include, exclude)

	out := cmd.OutOrStdout()
	if pullOpts.stdout {
		data, err := configfile.Encode(remote)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	}

	src := c.Source()
	backup, err := src.Save(remote)
	if err != nil {
		return err
	}
	if backup != "" {
		fmt.Fprintf(out, "Backed up previous configuration to %s\n", backup)
	}
	color.New(color.FgGreen).Fprintf(out, "Wrote remote configuration to %s\n", src.Path)
	return nil
}
