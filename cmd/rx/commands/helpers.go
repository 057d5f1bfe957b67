package commands

import (
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	rxerrors "github.com/thoreinstein/rx/internal/errors"
	"github.com/thoreinstein/rx/internal/loader"
	"github.com/thoreinstein/rx/internal/logging"
	"github.com/thoreinstein/rx/internal/paths"
	"github.com/thoreinstein/rx/pkg/rx"
)

// newLoader returns a loader that logs through the command's logger and
// reads "-" from the command's input.
func newLoader(cmd *cobra.Command) *loader.Loader {
	return loader.New(logging.FromContext(cmd.Context())).WithStdin(cmd.InOrStdin())
}

// libraryFiles lists the libraries to load in order: the library directory,
// then the config file, then the given flag values.
func libraryFiles(extra []string) ([]string, error) {
	files, err := loader.LibraryFiles(paths.LibraryDir())
	if err != nil {
		return nil, err
	}
	configured, err := cfg.LibraryPaths()
	if err != nil {
		return nil, err
	}
	files = append(files, configured...)
	return append(files, extra...), nil
}

// buildRegistry creates the registry every command compiles against.
func buildRegistry(cmd *cobra.Command, extra []string) (*rx.Registry, error) {
	files, err := libraryFiles(extra)
	if err != nil {
		return nil, rxerrors.NewSystemError(err, "")
	}

	logger := logging.FromContext(cmd.Context())
	logger.Debug("building registry", "libraries", len(files), "prefixes", len(cfg.Prefixes))

	r, err := newLoader(cmd).Registry(cfg.Prefixes, files...)
	if err != nil {
		return nil, rxerrors.NewUserError(errors.Wrap(err, "loading type libraries"),
			"Libraries load from "+paths.LibraryDir()+", the config file and --library flags")
	}
	return r, nil
}

// inputFormat parses an optional --input-format flag value.
func inputFormat(s string) (loader.Format, error) {
	if s == "" {
		return "", nil
	}
	f, err := loader.ParseFormat(s)
	if err != nil {
		return "", rxerrors.NewUserError(err, "Valid formats: yaml, json, toml, markdown")
	}
	return f, nil
}

// checkStdin rejects argument lists that read standard input more than once.
func checkStdin(args []string) error {
	if n := slices.Index(args, loader.Stdin); n >= 0 && slices.Contains(args[n+1:], loader.Stdin) {
		return rxerrors.NewUserError(errors.New("standard input can be read only once"), "")
	}
	return nil
}

