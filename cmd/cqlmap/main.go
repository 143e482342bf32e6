// Package main provides the cqlmap CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/cqlmap/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		// Commands report their own failures; anything else (flag
		// parsing, config loading) is printed here.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
