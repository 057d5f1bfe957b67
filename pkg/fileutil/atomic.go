// Package fileutil provides bounded reads and atomic writes for the
// documents rx reads and produces.
package fileutil

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DefaultFilePerm is the permission used for documents written by rx.
const DefaultFilePerm = 0o644

// ErrUnknownExtension indicates a path whose extension selects no encoder.
var ErrUnknownExtension = errors.New("unknown document extension")

// AtomicWriteFile replaces path with data through a temp file in the same
// directory and a rename, so readers see either the old file or the new one.
// The parent directory must exist.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	// Same directory so the rename stays on one filesystem.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".rx-atomic-*.tmp")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	tmpName := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "writing temp file")
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "setting file permissions")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "syncing temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temp file")
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errors.Wrap(err, "renaming temp file")
	}

	committed = true
	return nil
}

// AtomicWriteDocument encodes v in the format selected by the extension of
// path (.json, .yaml, .yml or .toml) and writes it atomically. Output always
// ends with a newline.
func AtomicWriteDocument(path string, v any, perm os.FileMode) error {
	data, err := EncodeDocument(path, v)
	if err != nil {
		return err
	}
	return AtomicWriteFile(path, data, perm)
}

// EncodeDocument encodes v in the format selected by the extension of path.
func EncodeDocument(path string, v any) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		data, err = encodeJSON(v)
	case ".yaml", ".yml":
		data, err = encodeYAML(v)
	case ".toml":
		data, err = encodeTOML(v)
	default:
		return nil, errors.Wrapf(ErrUnknownExtension, "%q", ext)
	}
	if err != nil {
		return nil, err
	}

	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	return data, nil
}

// AtomicWriteYAML writes v as YAML with DefaultFilePerm. rx.yaml is written
// this way.
func AtomicWriteYAML(path string, v any) error {
	data, err := encodeYAML(v)
	if err != nil {
		return err
	}
	return AtomicWriteFile(path, data, DefaultFilePerm)
}

func encodeJSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "marshaling JSON")
	}
	return data, nil
}

func encodeYAML(v any) (data []byte, err error) {
	// yaml.v3 panics on unmarshalable types such as channels and funcs.
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("marshaling YAML: %v", r)
		}
	}()

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, errors.Wrap(err, "marshaling YAML")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, "marshaling YAML")
	}
	return buf.Bytes(), nil
}

func encodeTOML(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(v); err != nil {
		return nil, errors.Wrap(err, "marshaling TOML")
	}
	return buf.Bytes(), nil
}
