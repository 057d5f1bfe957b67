package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/rx/internal/config"
	rxerrors "github.com/thoreinstein/rx/internal/errors"
	"github.com/thoreinstein/rx/internal/paths"
	"github.com/thoreinstein/rx/pkg/fileutil"
)

var (
	initForce   bool
	initProject bool
)

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite existing configuration")
	initCmd.Flags().BoolVar(&initProject, "project", false, "Write ./rx.yaml instead of the user config")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize rx configuration",
	Long: `Write a default configuration file and create the library directory.

By default the user config is written to $XDG_CONFIG_HOME/rx/config.yaml.
With --project the file is written to ./rx.yaml, which takes precedence
over the user config when rx runs in that directory.`,
	Example: `  # Create the user config
  rx init

  # Create a project config next to your schemas
  rx init --project

  # Replace a broken config
  rx init --force

  See Also: rx types`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()

	target := paths.ConfigFile()
	if initProject {
		target = paths.ProjectConfigFileName
	}

	// Check if config already exists
	if _, err := os.Stat(target); err == nil && !initForce {
		fmt.Fprintf(w, "Configuration already exists at %s\n", target)
		fmt.Fprintln(w, "Use --force to overwrite")
		return nil
	}

	if err := paths.EnsureDir(filepath.Dir(target), 0); err != nil {
		return rxerrors.NewSystemError(err, "")
	}
	if err := fileutil.AtomicWriteYAML(target, config.Default()); err != nil {
		return rxerrors.NewSystemError(err, "")
	}
	fmt.Fprintf(w, "Created %s\n", target)

	libDir := paths.LibraryDir()
	if err := paths.EnsureDir(libDir, 0); err != nil {
		return rxerrors.NewSystemError(err, "")
	}
	fmt.Fprintf(w, "Library directory: %s\n", libDir)
	return nil
}
