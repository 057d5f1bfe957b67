package commands

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/cockroachdb/errors"
	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	rxerrors "github.com/thoreinstein/rx/internal/errors"
	"github.com/thoreinstein/rx/internal/loader"
	"github.com/thoreinstein/rx/pkg/fileutil"
	"github.com/thoreinstein/rx/pkg/rx"
)

var (
	typesLibraries   []string
	typesInteractive bool
	typesLearned     bool
	typesExport      string
)

func init() {
	typesCmd.Flags().StringArrayVarP(&typesLibraries, "library", "l", nil,
		"type library to load (repeatable)")
	typesCmd.Flags().BoolVarP(&typesInteractive, "interactive", "i", false,
		"pick a type in a fuzzy finder and print its schema")
	typesCmd.Flags().BoolVar(&typesLearned, "learned", false,
		"list only types learned from libraries")
	typesCmd.Flags().StringVar(&typesExport, "export", "",
		"write the loaded prefixes and learned types to a library file (.yaml, .json, .toml)")
	rootCmd.AddCommand(typesCmd)
}

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List prefixes and registered types",
	Long: `List the shorthand prefixes and the types a schema can reference.

The registry always holds the core types (//str, //rec, ...). Learned types
come from the library directory, the config file and --library flags.

With --export the prefixes and learned types are merged into a single
library file that reproduces the same registry.`,
	Example: `  # List everything
  rx types

  # Browse learned types interactively
  rx types -i --learned

  # Bundle the configured libraries into one file
  rx types --export bundle.yaml`,
	Args: cobra.NoArgs,
	RunE: runTypes,
}

func runTypes(cmd *cobra.Command, _ []string) error {
	reg, err := buildRegistry(cmd, typesLibraries)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()

	if typesExport != "" {
		return exportTypes(w, reg, typesExport)
	}

	infos := reg.Types()
	if typesLearned {
		infos = reg.Learned()
	}

	if typesInteractive {
		return pickType(w, infos)
	}
	return listTypes(w, reg.Prefixes(), infos)
}

func listTypes(w io.Writer, prefixes map[string]string, infos []rx.TypeInfo) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "PREFIX\tBASE")
	for _, name := range slices.Sorted(maps.Keys(prefixes)) {
		fmt.Fprintf(tw, "/%s/\t%s\n", name, prefixes[name])
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "TYPE\tSOURCE")
	for _, info := range infos {
		source := "core"
		if info.Learned {
			source = "learned"
		}
		fmt.Fprintf(tw, "%s\t%s\n", shortName(prefixes, info.URI), source)
	}
	return errors.Wrap(tw.Flush(), "writing type list")
}

// shortName renders uri as /prefix/suffix using the longest matching base,
// or returns it unchanged when no prefix covers it.
func shortName(prefixes map[string]string, uri string) string {
	best, bestBase := "", ""
	found := false
	for name, base := range prefixes {
		if strings.HasPrefix(uri, base) && len(base) > len(bestBase) {
			best, bestBase, found = name, base, true
		}
	}
	if !found || len(uri) == len(bestBase) {
		return uri
	}
	return "/" + best + "/" + uri[len(bestBase):]
}

func pickType(w io.Writer, infos []rx.TypeInfo) error {
	if len(infos) == 0 {
		fmt.Fprintln(w, "No types found.")
		return nil
	}

	idx, err := fuzzyfinder.Find(
		infos,
		func(i int) string {
			return infos[i].URI
		},
		fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i == -1 {
				return ""
			}
			return describeType(infos[i])
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil
		}
		return errors.Wrap(err, "interactive type picker failed")
	}

	fmt.Fprint(w, describeType(infos[idx]))
	return nil
}

// describeType renders a type for the picker preview and final output.
func describeType(info rx.TypeInfo) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "URI: %s\n", info.URI)
	if !info.Learned {
		sb.WriteString("Built-in core type\n")
		return sb.String()
	}
	sb.WriteString("\nSchema:\n")
	data, err := yaml.Marshal(info.Schema)
	if err != nil {
		fmt.Fprintf(&sb, "%v\n", info.Schema)
		return sb.String()
	}
	sb.Write(data)
	return sb.String()
}

func exportTypes(w io.Writer, reg *rx.Registry, path string) error {
	lib := loader.ExportLibrary(reg)
	if err := fileutil.AtomicWriteDocument(path, lib.Document(), fileutil.DefaultFilePerm); err != nil {
		if errors.Is(err, fileutil.ErrUnknownExtension) {
			return rxerrors.NewUserError(err, "Use a .yaml, .json or .toml file name")
		}
		return rxerrors.NewSystemError(err, "")
	}
	if !quiet {
		fmt.Fprintf(w, "Exported %d prefix(es) and %d type(s) to %s\n", len(lib.Prefixes), len(lib.Types), path)
	}
	return nil
}
