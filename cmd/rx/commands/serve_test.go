package commands

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rxerrors "github.com/thoreinstein/rx/internal/errors"
	"github.com/thoreinstein/rx/internal/server"
)

func TestSchemaName(t *testing.T) {
	assert.Equal(t, "service", schemaName("schemas/service.yaml"))
	assert.Equal(t, "geo.point", schemaName("/abs/geo.point.json"))
	assert.Equal(t, "noext", schemaName("noext"))
}

func TestBuildServer(t *testing.T) {
	dir := isolate(t)
	lib := writeFile(t, filepath.Join(dir, "geo.yaml"), geoLibrary)
	service := writeFile(t, filepath.Join(dir, "service.yaml"), serviceSchema)
	point := writeFile(t, filepath.Join(dir, "point.json"), `"/geo/point"`)

	// Run a command so flags, config and logging are set up as in a real
	// invocation, then build the server from the same state.
	_, err := execute(t, "", "types", "-l", lib)
	require.NoError(t, err)
	serveLibraries = []string{lib}
	t.Cleanup(func() { serveLibraries = nil })

	srv, err := buildServer(rootCmd, []string{service, point})
	require.NoError(t, err)
	assert.Equal(t, []string{"point", "service"}, srv.Names())

	req := httptest.NewRequest(http.MethodPost, "/check/point", strings.NewReader(`[1, 2]`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp server.CheckResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Valid)
}

func TestBuildServer_Errors(t *testing.T) {
	dir := isolate(t)
	a := writeFile(t, filepath.Join(dir, "a", "service.yaml"), serviceSchema)
	b := writeFile(t, filepath.Join(dir, "b", "service.json"), `"//str"`)
	bad := writeFile(t, filepath.Join(dir, "bad.yaml"), "//nope\n")

	_, err := execute(t, "", "serve", a, b)
	require.Error(t, err)
	assert.Equal(t, rxerrors.ExitUser, rxerrors.Code(err))
	assert.Contains(t, err.Error(), "duplicate schema name")

	_, err = execute(t, "", "serve", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown type")
}
