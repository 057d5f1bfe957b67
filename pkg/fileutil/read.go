package fileutil

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"
)

// MaxFileSize bounds every schema, library or data document rx reads:
// 8 MiB from disk, stdin or an HTTP body.
const MaxFileSize = 8 << 20

// ErrFileTooLarge marks input longer than MaxFileSize.
var ErrFileTooLarge = errors.Newf("document exceeds %d bytes", MaxFileSize)

// ReadFileWithLimit reads path, rejecting regular files over MaxFileSize
// before reading them.
func ReadFileWithLimit(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening document")
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil && info.Mode().IsRegular() && info.Size() > MaxFileSize {
		return nil, errors.Wrapf(ErrFileTooLarge, "%s is %d bytes", path, info.Size())
	}
	return ReadWithLimit(f)
}

// ReadWithLimit reads r to EOF and fails once it has seen more than
// MaxFileSize bytes. Pipes and request bodies go through here.
func ReadWithLimit(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return nil, errors.Wrap(err, "reading document")
	}
	if len(data) > MaxFileSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}
