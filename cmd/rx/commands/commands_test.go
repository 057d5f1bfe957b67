package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adrg/xdg"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/thoreinstein/rx/internal/config"
)

// isolate points every XDG location at fresh temp dirs and runs the test
// from an empty working directory, so no real config or library is used.
func isolate(t *testing.T) string {
	t.Helper()
	// Registered first so it runs after the environment is restored.
	t.Cleanup(xdg.Reload)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv("RX_CONFIG_DIR", "")
	t.Setenv("RX_DEBUG", "")
	xdg.Reload()

	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

// resetFlags restores every flag of c and its subcommands to its default so
// package-level flag variables do not leak between runs.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs rx with args and returns what it wrote to stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	cfg = config.Default()
	configLoadErr = nil
	color.NoColor = true

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
	})

	err := rootCmd.Execute()
	if errOut.Len() > 0 {
		t.Logf("stderr:\n%s", errOut.String())
	}
	return out.String(), err
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const serviceSchema = `type: //rec
required:
  name: //str
optional:
  port:
    type: //int
    range: {min: 1, max: 65535}
`

const geoLibrary = `prefixes:
  geo: "tag:example.com,2026:geo/"
types:
  - uri: /geo/coord
    schema: {type: //num, range: {min: -180, max: 180}}
  - uri: /geo/point
    schema: {type: //seq, contents: [/geo/coord, /geo/coord]}
`
