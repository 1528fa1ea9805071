// Command shopsync syncs a Saleor instance with a declarative configuration file.
package main

import (
	"os"

	"github.com/kilupskalvis/shopsync/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
