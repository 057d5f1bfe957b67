package commands

import (
	"encoding/json"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/rx/cmd"
)

func TestVersionCommand(t *testing.T) {
	isolate(t)
	info := cmd.Info()

	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "rx version "+info.Version+"\n")
	assert.Contains(t, out, "commit: "+info.Commit)
	assert.Contains(t, out, "built:  "+info.Date)
	assert.Contains(t, out, "go:     "+runtime.Version())
}

func TestVersionCommand_JSON(t *testing.T) {
	isolate(t)

	out, err := execute(t, "", "version", "--json")
	require.NoError(t, err)

	var got cmd.BuildInfo
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, cmd.Info(), got)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, got.Platform)
}

func TestVersionFlag(t *testing.T) {
	isolate(t)

	out, err := execute(t, "", "--version")
	require.NoError(t, err)
	assert.Equal(t, "rx version "+cmd.Info().Version, strings.TrimSpace(out))
}

func TestVersionCommand_IgnoresBrokenConfig(t *testing.T) {
	dir := isolate(t)
	writeFile(t, dir+"/rx.yaml", "version: 0\n")

	_, err := execute(t, "", "version")
	assert.NoError(t, err)
}
