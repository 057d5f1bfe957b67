package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
)

// AppName is the directory name used under the XDG base directories.
const AppName = "rx"

const (
	// ConfigFileName is the user-level config file in ConfigDir.
	ConfigFileName = "config.yaml"

	// ProjectConfigFileName is the project config, looked up in the
	// working directory.
	ProjectConfigFileName = "rx.yaml"

	libraryDirName = "library"
)

// DefaultDirPerm is used by EnsureDir when no permission is given.
const DefaultDirPerm = 0o700

// ErrHomeDirNotFound marks a "~" path that cannot be expanded.
var ErrHomeDirNotFound = errors.New("home directory not found")

// EnsureDir creates path and its parents. Existing directories keep their
// permissions.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = DefaultDirPerm
	}
	return errors.Wrapf(os.MkdirAll(path, perm), "creating %s", path)
}

// ResolveHome returns the user's home directory.
func ResolveHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(ErrHomeDirNotFound, err.Error())
	}
	return home, nil
}

// ExpandHome replaces a leading "~" element of a library path with the
// home directory. "~user" forms are left alone.
func ExpandHome(path string) (string, error) {
	rest, ok := strings.CutPrefix(path, "~")
	if !ok || (rest != "" && rest[0] != '/' && rest[0] != filepath.Separator) {
		return path, nil
	}
	home, err := ResolveHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, rest), nil
}

// ConfigDir is <XDG_CONFIG_HOME>/rx.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ConfigFile is <XDG_CONFIG_HOME>/rx/config.yaml.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), ConfigFileName)
}

// LibraryDir holds type library files loaded into every registry the CLI
// builds: <XDG_DATA_HOME>/rx/library.
func LibraryDir() string {
	return filepath.Join(xdg.DataHome, AppName, libraryDirName)
}
