// Command qbg translates between SPARQL queries and visual query graphs.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/querygraph/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) || !exitErr.Reported {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
