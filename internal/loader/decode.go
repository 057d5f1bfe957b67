package loader

import (
	"bytes"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	rxerrors "github.com/thoreinstein/rx/internal/errors"
	"github.com/thoreinstein/rx/pkg/frontmatter"
)

// Format identifies a document encoding.
type Format string

// Supported document formats.
const (
	FormatYAML     Format = "yaml"
	FormatJSON     Format = "json"
	FormatTOML     Format = "toml"
	FormatMarkdown Format = "markdown"
)

var extensions = map[string]Format{
	".yaml": FormatYAML,
	".yml":  FormatYAML,
	".json": FormatJSON,
	".toml": FormatTOML,
	".md":   FormatMarkdown,
}

// ErrSyntax indicates a document that its decoder rejected.
var ErrSyntax = errors.New("malformed document")

// FormatOf selects the format of path by extension. Unknown extensions fail
// with an error marked rxerrors.ErrUnsupportedFormat.
func FormatOf(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := extensions[ext]; ok {
		return f, nil
	}
	return "", errors.Mark(
		errors.Newf("unsupported extension %q (supported: .yaml, .yml, .json, .toml, .md)", ext),
		rxerrors.ErrUnsupportedFormat,
	)
}

// ParseFormat validates a --format flag value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatYAML, FormatJSON, FormatTOML, FormatMarkdown:
		return f, nil
	}
	return "", errors.Mark(errors.Newf("unknown format %q", s), rxerrors.ErrUnsupportedFormat)
}

// Decode decodes every document in data. Empty YAML and JSON input yields no
// documents.
func Decode(data []byte, format Format) ([]any, error) {
	var (
		docs []any
		err  error
	)
	switch format {
	case FormatYAML:
		docs, err = decodeYAML(bytes.NewReader(data))
	case FormatJSON:
		docs, err = decodeJSON(bytes.NewReader(data))
	case FormatTOML:
		docs, err = decodeTOML(data)
	case FormatMarkdown:
		docs, err = decodeMarkdown(data)
	default:
		return nil, errors.Mark(errors.Newf("unknown format %q", format), rxerrors.ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, errors.Mark(err, ErrSyntax)
	}

	for i, doc := range docs {
		docs[i] = normalize(doc)
	}
	return docs, nil
}

func decodeYAML(r io.Reader) ([]any, error) {
	dec := yaml.NewDecoder(r)
	var docs []any
	for {
		var doc any
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return docs, nil
		}
		if err != nil {
			return nil, errors.Wrapf(err, "decoding YAML document %d", len(docs)+1)
		}
		docs = append(docs, doc)
	}
}

func decodeJSON(r io.Reader) ([]any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var docs []any
	for {
		var doc any
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return docs, nil
		}
		if err != nil {
			return nil, errors.Wrapf(err, "decoding JSON value %d", len(docs)+1)
		}
		docs = append(docs, doc)
	}
}

func decodeTOML(data []byte) ([]any, error) {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, errors.Wrapf(err, "decoding TOML at line %d column %d", row, col)
		}
		return nil, errors.Wrap(err, "decoding TOML")
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return []any{doc}, nil
}

func decodeMarkdown(data []byte) ([]any, error) {
	doc, _, err := frontmatter.Parse[any](bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return []any{doc}, nil
}

// normalize rewrites decoder-specific scalars into the plain Go values the
// rest of rx works with. Containers are rebuilt only when needed.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = normalize(e)
		}
		return t
	case map[any]any:
		for k, e := range t {
			t[k] = normalize(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = normalize(e)
		}
		return t
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		// Out of float64 range; rx treats it as a non-number.
		return t
	case time.Time:
		return t.Format(time.RFC3339Nano)
	case toml.LocalDate:
		return t.String()
	case toml.LocalTime:
		return t.String()
	case toml.LocalDateTime:
		return t.String()
	default:
		return v
	}
}
