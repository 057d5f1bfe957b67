package loader

import (
	"io"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/cockroachdb/errors"

	rxerrors "github.com/thoreinstein/rx/internal/errors"
	"github.com/thoreinstein/rx/internal/logging"
	"github.com/thoreinstein/rx/pkg/fileutil"
	"github.com/thoreinstein/rx/pkg/rx"
)

// Stdin is the path that selects standard input.
const Stdin = "-"

// ErrNoDocument indicates a file that must hold one document but holds none
// or several.
var ErrNoDocument = errors.New("expected exactly one document")

// LoadError wraps errors that occur while loading a file with path context.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Loader reads documents from disk and builds registries.
type Loader struct {
	logger *slog.Logger
	stdin  io.Reader
}

// New creates a Loader that logs to logger. A nil logger discards output.
func New(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = logging.NewDiscard()
	}
	return &Loader{logger: logger, stdin: os.Stdin}
}

// WithStdin returns a copy of l that reads "-" from r instead of os.Stdin.
func (l *Loader) WithStdin(r io.Reader) *Loader {
	c := *l
	c.stdin = r
	return &c
}

// Documents reads every document in path. For Stdin the format must be
// given; for files an empty format selects one by extension.
func (l *Loader) Documents(path string, format Format) ([]any, error) {
	data, format, err := l.read(path, format)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	docs, err := Decode(data, format)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	l.logger.Debug("loaded documents", "path", path, "format", string(format), "count", len(docs))
	return docs, nil
}

// Document reads a file that must hold exactly one document, such as a
// schema or a library.
func (l *Loader) Document(path string, format Format) (any, error) {
	docs, err := l.Documents(path, format)
	if err != nil {
		return nil, err
	}
	if len(docs) != 1 {
		return nil, &LoadError{Path: path, Err: errors.Wrapf(ErrNoDocument, "found %d", len(docs))}
	}
	return docs[0], nil
}

func (l *Loader) read(path string, format Format) ([]byte, Format, error) {
	if path == Stdin {
		if format == "" {
			return nil, "", errors.Mark(errors.New("reading stdin requires an explicit format"), rxerrors.ErrUnsupportedFormat)
		}
		data, err := fileutil.ReadWithLimit(l.stdin)
		return data, format, err
	}

	if format == "" {
		f, err := FormatOf(path)
		if err != nil {
			return nil, "", err
		}
		format = f
	}

	data, err := fileutil.ReadFileWithLimit(path)
	if errors.Is(err, fs.ErrNotExist) {
		err = errors.Mark(err, rxerrors.ErrNotFound)
	}
	return data, format, err
}

// Library loads and parses a type library file.
func (l *Loader) Library(path string) (*Library, error) {
	doc, err := l.Document(path, "")
	if err != nil {
		return nil, err
	}
	lib, err := ParseLibrary(doc)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return lib, nil
}

// LibraryFiles lists the loadable files of dir in name order. A missing
// directory holds no libraries.
func LibraryFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "listing library directory %s", dir)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, err := FormatOf(e.Name()); err != nil {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}

// Registry builds a registry with the core types, binds prefixes in name
// order and applies each library in order.
func (l *Loader) Registry(prefixes map[string]string, libraries ...string) (*rx.Registry, error) {
	r := rx.New()

	for _, name := range slices.Sorted(maps.Keys(prefixes)) {
		if err := r.AddPrefix(name, prefixes[name]); err != nil {
			return nil, errors.Wrap(err, "binding configured prefixes")
		}
	}

	for _, path := range libraries {
		lib, err := l.Library(path)
		if err != nil {
			return nil, err
		}
		if err := lib.Apply(r); err != nil {
			return nil, &LoadError{Path: path, Err: err}
		}
		l.logger.Debug("applied library", "path", path, "prefixes", len(lib.Prefixes), "types", len(lib.Types))
	}

	return r, nil
}
