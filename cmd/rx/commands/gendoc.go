package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
	"gopkg.in/yaml.v3"

	rxerrors "github.com/thoreinstein/rx/internal/errors"
	"github.com/thoreinstein/rx/internal/paths"
)

var (
	genDocDir string
	genDocMan bool
)

var genDocCmd = &cobra.Command{
	Use:    "gen-doc",
	Short:  "Generate Markdown or man page reference for rx",
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE:   runGenDoc,
}

func init() {
	genDocCmd.Flags().StringVarP(&genDocDir, "dir", "d", "", "output directory (required)")
	genDocCmd.Flags().BoolVar(&genDocMan, "man", false, "write man pages instead of Markdown")
	rootCmd.AddCommand(genDocCmd)
}

func runGenDoc(cmd *cobra.Command, _ []string) error {
	if genDocDir == "" {
		return rxerrors.NewUserError(errors.New("output directory is required"), "Run: rx gen-doc --dir docs/reference")
	}
	if err := paths.EnsureDir(genDocDir, 0o755); err != nil {
		return rxerrors.NewSystemError(err, "")
	}

	var err error
	if genDocMan {
		err = doc.GenManTree(rootCmd, &doc.GenManHeader{Title: "RX", Section: "1", Source: "rx"}, genDocDir)
	} else {
		err = doc.GenMarkdownTreeCustom(rootCmd, genDocDir, referenceFrontmatter, referenceLink)
	}
	if err != nil {
		return rxerrors.NewSystemError(errors.Wrap(err, "generating reference"), "")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Reference written to %s\n", genDocDir)
	return nil
}

// referencePage is the frontmatter of a generated Markdown page.
type referencePage struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Weight      int    `yaml:"weight"`
}

// referenceFrontmatter derives a page header from the file cobra names
// after the command path: rx_config_set.md becomes "rx config set".
func referenceFrontmatter(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	words := strings.Split(base, "_")
	page := referencePage{
		Title:       strings.Join(words, " "),
		Description: "Reference for the " + strings.Join(words, " ") + " command",
		Weight:      len(words) * 10,
	}
	out, err := yaml.Marshal(page)
	if err != nil {
		// A struct of strings and ints always marshals.
		panic(err)
	}
	return "---\n" + string(out) + "---\n"
}

func referenceLink(name string) string {
	return "/docs/reference/" + strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name))) + "/"
}
