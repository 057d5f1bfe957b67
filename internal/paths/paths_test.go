package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withXDG points the XDG base directories at temp dirs for one test.
func withXDG(t *testing.T) (configHome, dataHome string) {
	t.Helper()
	configHome = filepath.Join(t.TempDir(), "config")
	dataHome = filepath.Join(t.TempDir(), "data")
	t.Setenv("XDG_CONFIG_HOME", configHome)
	t.Setenv("XDG_DATA_HOME", dataHome)
	xdg.Reload()
	t.Cleanup(xdg.Reload)
	return configHome, dataHome
}

func TestLocations(t *testing.T) {
	configHome, dataHome := withXDG(t)

	assert.Equal(t, filepath.Join(configHome, "rx"), ConfigDir())
	assert.Equal(t, filepath.Join(configHome, "rx", "config.yaml"), ConfigFile())
	assert.Equal(t, filepath.Join(dataHome, "rx", "library"), LibraryDir())
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		in   string
		want string
	}{
		{in: "~", want: home},
		{in: "~/types/geo.yaml", want: filepath.Join(home, "types", "geo.yaml")},
		{in: "/etc/rx/library", want: "/etc/rx/library"},
		{in: "library", want: "library"},
		{in: "~bob/types.yaml", want: "~bob/types.yaml"},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ExpandHome(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpandHome_NoHome(t *testing.T) {
	t.Setenv("HOME", "")

	_, err := ExpandHome("~/library")
	assert.True(t, errors.Is(err, ErrHomeDirNotFound), "got %v", err)

	got, err := ExpandHome("library")
	require.NoError(t, err)
	assert.Equal(t, "library", got)
}

func TestEnsureDir(t *testing.T) {
	_, dataHome := withXDG(t)

	require.NoError(t, EnsureDir(LibraryDir(), 0))
	info, err := os.Stat(LibraryDir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(DefaultDirPerm), info.Mode().Perm())

	// Existing directories keep their mode.
	shared := filepath.Join(dataHome, "shared")
	require.NoError(t, os.Mkdir(shared, 0o755))
	require.NoError(t, EnsureDir(shared, 0o700))
	info, err = os.Stat(shared)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	// A file in the way is an error.
	blocker := filepath.Join(dataHome, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))
	assert.Error(t, EnsureDir(filepath.Join(blocker, "sub"), 0))
}
