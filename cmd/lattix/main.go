// Command lattix prices European options and callable mortgages on
// recombining binomial lattices, from the command line or over HTTP.
//
// Usage:
//
//	lattix [--json] <command> [flags]
//
// See "lattix help" for the command list. LOG_LEVEL and LOG_FORMAT
// configure the log stream on stderr.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/katalvlaran/lattix/internal/cli"
	"github.com/katalvlaran/lattix/telemetry"
)

// version is set through ldflags at build time.
var version = "dev"

func main() {
	logger := telemetry.SetupLogger(os.Stderr)

	root := cli.NewRootCmd(cli.Config{
		Version: version,
		Out:     os.Stdout,
		Err:     os.Stderr,
		Logger:  logger,
	})
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
