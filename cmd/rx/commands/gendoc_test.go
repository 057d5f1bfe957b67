package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rxerrors "github.com/thoreinstein/rx/internal/errors"
	"github.com/thoreinstein/rx/pkg/frontmatter"
)

func TestGenDoc_Markdown(t *testing.T) {
	dir := isolate(t)
	out := filepath.Join(dir, "docs")

	stdout, err := execute(t, "", "gen-doc", "--dir", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Reference written to "+out)

	f, err := os.Open(filepath.Join(out, "rx_check.md"))
	require.NoError(t, err)
	defer f.Close()

	page, body, err := frontmatter.Parse[referencePage](f)
	require.NoError(t, err)
	assert.Equal(t, referencePage{Title: "rx check", Description: "Reference for the rx check command", Weight: 20}, page)
	assert.Contains(t, string(body), "## rx check")
	assert.Contains(t, string(body), "(/docs/reference/rx/)")
}

func TestGenDoc_Man(t *testing.T) {
	dir := isolate(t)
	out := filepath.Join(dir, "man")

	_, err := execute(t, "", "gen-doc", "--dir", out, "--man")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(out, "rx-lint.1"))
	assert.FileExists(t, filepath.Join(out, "rx-serve.1"))
}

func TestGenDoc_RequiresDir(t *testing.T) {
	isolate(t)
	_, err := execute(t, "", "gen-doc")
	require.Error(t, err)
	assert.Equal(t, rxerrors.ExitUser, rxerrors.Code(err))
}

func TestReferenceFrontmatter(t *testing.T) {
	got := referenceFrontmatter("/tmp/docs/rx_config_set.md")
	assert.Equal(t, "---\ntitle: rx config set\ndescription: Reference for the rx config set command\nweight: 30\n---\n", got)
}

func TestReferenceLink(t *testing.T) {
	assert.Equal(t, "/docs/reference/rx_config_set/", referenceLink("rx_config_set.md"))
	assert.Equal(t, "/docs/reference/rx/", referenceLink("RX.md"))
}
