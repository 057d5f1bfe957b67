package commands

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	rxerrors "github.com/thoreinstein/rx/internal/errors"
	"github.com/thoreinstein/rx/internal/logging"
	"github.com/thoreinstein/rx/internal/validator"
	"github.com/thoreinstein/rx/pkg/rx"
)

var (
	lintLibraries []string
	lintFormat    string
	lintStrict    bool
)

func init() {
	lintCmd.Flags().StringArrayVarP(&lintLibraries, "library", "l", nil,
		"type library to load before compiling (repeatable)")
	lintCmd.Flags().StringVar(&lintFormat, "format", "text",
		"output format: text, json, github")
	lintCmd.Flags().BoolVar(&lintStrict, "strict", false,
		"treat warnings as errors (default from config)")
	rootCmd.AddCommand(lintCmd)
}

var lintCmd = &cobra.Command{
	Use:   "lint <schema>...",
	Short: "Compile schema files and report problems",
	Long: `Compile every schema document in the given files without checking data.

Compile errors are reported with their kind: configuration, unknown-type,
name-syntax or duplicate. Schemas that accept every value or reject every
value compile but are reported as warnings.

Exit codes:
  0 - Every schema compiles (warnings allowed unless strict)
  1 - A schema failed to compile, or warnings were found in strict mode`,
	Example: `  # Lint all schemas
  rx lint schemas/*.yaml

  # Fail on warnings too
  rx lint --strict schemas/*.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLint,
}

func runLint(cmd *cobra.Command, args []string) error {
	format, err := validator.ParseFormat(lintFormat)
	if err != nil {
		return rxerrors.NewUserError(err, "")
	}
	if err := checkStdin(args); err != nil {
		return err
	}
	strict := cfg.Strict
	if cmd.Flags().Changed("strict") {
		strict = lintStrict
	}

	reg, err := buildRegistry(cmd, lintLibraries)
	if err != nil {
		return err
	}

	l := newLoader(cmd)
	logger := logging.FromContext(cmd.Context())
	result := &validator.Result{}

	for _, path := range args {
		docs, err := l.Documents(path, "")
		if err != nil {
			result.Add(validator.Issue{
				Severity: validator.SeverityError,
				File:     path,
				Message:  loadMessage(err),
				Context:  map[string]string{"kind": "load"},
			})
			continue
		}
		for i, doc := range docs {
			lintSchema(result, reg, path, documentField(i, len(docs)), doc)
		}
		logger.Debug("linted schema file", "path", path, "documents", len(docs))
	}

	if !quiet || result.HasErrors() || (strict && result.HasWarnings()) {
		if err := validator.NewReporter(cmd.OutOrStdout(), format).Report(result); err != nil {
			return rxerrors.NewSystemError(err, "")
		}
	}

	if n := len(result.Errors()); n > 0 {
		return rxerrors.NewExitError(errors.Newf("%d schema problem(s) found", n), rxerrors.ExitUser)
	}
	if n := len(result.Warnings()); strict && n > 0 {
		return rxerrors.NewExitError(errors.Newf("%d warning(s) in strict mode", n), rxerrors.ExitUser)
	}
	return nil
}

// lintSchema compiles one schema document and records what it finds.
func lintSchema(result *validator.Result, reg *rx.Registry, file, field string, doc any) {
	v, err := reg.MakeSchema(doc)
	if err != nil {
		result.AddCompileError(file, field, err)
		return
	}

	switch triviality(v) {
	case acceptsAll:
		result.AddWarning(file, field, "schema accepts every value", doc)
	case rejectsAll:
		result.AddWarning(file, field, "schema rejects every value", doc)
	}
}

type trivial int

const (
	nonTrivial trivial = iota
	acceptsAll
	rejectsAll
)

// probes holds one value of each shape decoded documents can take.
var probes = []any{
	nil,
	true,
	int64(0),
	1.5,
	"",
	[]any{},
	map[string]any{},
}

// triviality reports schemas that cannot tell values apart. Only //any and
// //fail at the root are considered; deeper composites are left alone.
func triviality(v rx.Validator) trivial {
	kind, ok := rx.KindOf(v)
	if !ok {
		return nonTrivial
	}
	switch kind {
	case rx.KindFail:
		return rejectsAll
	case rx.KindAny:
		for _, p := range probes {
			if !v.Check(p) {
				return nonTrivial
			}
		}
		return acceptsAll
	default:
		return nonTrivial
	}
}
