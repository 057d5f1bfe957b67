// Package main is the entry point for the rx CLI.
package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/rx/cmd/rx/commands"
	rxerrors "github.com/thoreinstein/rx/internal/errors"
)

func main() {
	err := commands.Execute()
	if err == nil {
		return
	}

	// Validation failures are already on stdout.
	if !errors.Is(err, rxerrors.ErrInvalidData) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if hint := rxerrors.Suggestion(err); hint != "" {
			fmt.Fprintln(os.Stderr, hint)
		}
	}
	os.Exit(rxerrors.Code(err))
}
