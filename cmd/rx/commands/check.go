package commands

import (
	"fmt"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	rxerrors "github.com/thoreinstein/rx/internal/errors"
	"github.com/thoreinstein/rx/internal/loader"
	"github.com/thoreinstein/rx/internal/logging"
	"github.com/thoreinstein/rx/internal/validator"
)

var (
	checkSchema      string
	checkLibraries   []string
	checkFormat      string
	checkInputFormat string
)

func init() {
	checkCmd.Flags().StringVarP(&checkSchema, "schema", "s", "",
		"schema file to check against (required)")
	checkCmd.Flags().StringArrayVarP(&checkLibraries, "library", "l", nil,
		"type library to load before compiling (repeatable)")
	checkCmd.Flags().StringVar(&checkFormat, "format", "text",
		"output format: text, json, github")
	checkCmd.Flags().StringVar(&checkInputFormat, "input-format", "",
		"decode data files as yaml, json, toml or markdown (required for -)")
	_ = checkCmd.MarkFlagRequired("schema")
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check -s <schema> <data>...",
	Short: "Check data documents against a schema",
	Long: `Compile a schema and check every document in the given data files.

YAML files may hold several documents separated by "---" and JSON files
several concatenated values; each document is checked on its own. Use "-"
to read data from standard input together with --input-format.

Exit codes:
  0 - Every document matches the schema
  1 - The schema, a library or a data file could not be loaded
  3 - At least one document does not match the schema`,
	Example: `  # Check a YAML stream
  rx check -s service.yaml services.yaml

  # Check JSON from stdin
  curl -s https://example.com/api | rx check -s api.yaml --input-format json -

  # Machine-readable results
  rx check -s service.yaml --format json services/*.toml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	format, err := validator.ParseFormat(checkFormat)
	if err != nil {
		return rxerrors.NewUserError(err, "")
	}
	dataFormat, err := inputFormat(checkInputFormat)
	if err != nil {
		return err
	}
	if err := checkStdin(args); err != nil {
		return err
	}
	if dataFormat == "" && slices.Contains(args, loader.Stdin) {
		return rxerrors.NewUserError(
			errors.Mark(errors.New("reading standard input requires --input-format"), rxerrors.ErrUnsupportedFormat),
			"Valid formats: yaml, json, toml, markdown")
	}

	reg, err := buildRegistry(cmd, checkLibraries)
	if err != nil {
		return err
	}

	l := newLoader(cmd)
	doc, err := l.Document(checkSchema, "")
	if err != nil {
		return rxerrors.NewUserError(err, "")
	}
	schema, err := reg.MakeSchema(doc)
	if err != nil {
		return rxerrors.NewUserError(errors.Wrapf(err, "compiling %s", checkSchema),
			"Run: rx lint "+checkSchema)
	}

	logger := logging.FromContext(cmd.Context())
	result := &validator.Result{}
	var failed, unreadable int

	for _, path := range args {
		docs, err := l.Documents(path, dataFormat)
		if err != nil {
			unreadable++
			result.Add(validator.Issue{
				Severity: validator.SeverityError,
				File:     path,
				Message:  loadMessage(err),
				Context:  map[string]string{"kind": "load"},
			})
			continue
		}
		if len(docs) == 0 {
			unreadable++
			result.Add(validator.Issue{
				Severity: validator.SeverityError,
				File:     path,
				Message:  "contains no documents to check",
				Context:  map[string]string{"kind": "load"},
			})
			continue
		}

		for i, d := range docs {
			result.Checked++
			ok := schema.Check(d)
			logger.Debug("checked document", "path", path, "document", i+1, "valid", ok)
			if !ok {
				failed++
				result.AddError(path, documentField(i, len(docs)), "does not match schema", d)
			}
		}
	}

	if !quiet || result.HasErrors() {
		if err := validator.NewReporter(cmd.OutOrStdout(), format).Report(result); err != nil {
			return rxerrors.NewSystemError(err, "")
		}
	}

	switch {
	case unreadable > 0:
		return rxerrors.NewExitError(errors.Newf("%d data file(s) could not be loaded", unreadable), rxerrors.ExitUser)
	case failed > 0:
		return rxerrors.NewInvalidError(failed)
	}
	return nil
}

// documentField names a document within its file. Single-document files
// need no locator.
func documentField(i, n int) string {
	if n == 1 {
		return ""
	}
	return fmt.Sprintf("document %d", i+1)
}

// loadMessage renders a load error without the path the report already
// groups by.
func loadMessage(err error) string {
	var lerr *loader.LoadError
	if errors.As(err, &lerr) {
		return lerr.Err.Error()
	}
	return err.Error()
}
