package commands

import (
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	rxerrors "github.com/thoreinstein/rx/internal/errors"
	"github.com/thoreinstein/rx/internal/logging"
	"github.com/thoreinstein/rx/internal/server"
)

var (
	serveLibraries []string
	serveAddr      string
)

func init() {
	serveCmd.Flags().StringArrayVarP(&serveLibraries, "library", "l", nil,
		"type library to load before compiling (repeatable)")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8080",
		"address to listen on")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve <schema>...",
	Short: "Serve schema checks over HTTP",
	Long: `Compile the given schema files and check request bodies against them.

Each schema is served at POST /check/<name>, where <name> is the file name
without its extension. The body is decoded by Content-Type (JSON when
absent; YAML, TOML and Markdown frontmatter are also accepted). Prometheus
metrics are served at /metrics and a liveness probe at /healthz.

The server stops gracefully on SIGINT or SIGTERM.`,
	Example: `  # Serve two schemas
  rx serve schemas/service.yaml schemas/route.yaml

  # Then check a document
  curl -s -X POST --data-binary @web.json localhost:8080/check/service`,
	Args: cobra.MinimumNArgs(1),
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	srv, err := buildServer(cmd, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.ListenAndServe(ctx, serveAddr); err != nil {
		return rxerrors.NewSystemError(err, "Check that --addr is free")
	}
	return nil
}

// buildServer compiles every schema file and registers it under its base
// name.
func buildServer(cmd *cobra.Command, args []string) (*server.Server, error) {
	reg, err := buildRegistry(cmd, serveLibraries)
	if err != nil {
		return nil, err
	}

	l := newLoader(cmd)
	srv := server.New(logging.FromContext(cmd.Context()))
	for _, path := range args {
		doc, err := l.Document(path, "")
		if err != nil {
			return nil, rxerrors.NewUserError(err, "")
		}
		v, err := reg.MakeSchema(doc)
		if err != nil {
			return nil, rxerrors.NewUserError(errors.Wrapf(err, "compiling %s", path), "Run: rx lint "+path)
		}
		if err := srv.AddSchema(schemaName(path), v); err != nil {
			return nil, rxerrors.NewUserError(err, "Schema names come from file names; rename one of the files")
		}
	}
	return srv, nil
}

// schemaName derives the route name of a schema file.
func schemaName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

