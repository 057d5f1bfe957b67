package commands

import (
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/rx/cmd"
)

var versionJSON bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		info := cmd.Info()
		w := c.OutOrStdout()
		if versionJSON {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return errors.Wrap(enc.Encode(info), "encoding version")
		}
		fmt.Fprintf(w, "rx version %s\n", info.Version)
		fmt.Fprintf(w, "  commit: %s\n", info.Commit)
		fmt.Fprintf(w, "  built:  %s\n", info.Date)
		fmt.Fprintf(w, "  go:     %s %s\n", info.GoVersion, info.Platform)
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "print as JSON")
	rootCmd.AddCommand(versionCmd)
}
