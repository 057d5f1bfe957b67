package frontmatter

import (
	"bytes"
	"io"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Sentinel errors for frontmatter parsing.
var (
	// ErrNoFrontmatter indicates the content does not start with a "---" line.
	ErrNoFrontmatter = errors.New("no frontmatter")

	// ErrUnterminated indicates an opening delimiter without a closing one.
	ErrUnterminated = errors.New("missing closing frontmatter delimiter")

	// ErrInvalidYAML indicates frontmatter that is not valid YAML.
	ErrInvalidYAML = errors.New("invalid frontmatter YAML")
)

const delimiter = "---"

// Split separates content into its frontmatter and body. Both LF and CRLF
// line endings are accepted. The returned slices alias content.
func Split(content []byte) (matter, body []byte, err error) {
	first, rest, _ := cutLine(content)
	if string(first) != delimiter {
		return nil, content, ErrNoFrontmatter
	}

	start := len(content) - len(rest)
	for pos := start; pos < len(content); {
		line, next, _ := cutLine(content[pos:])
		if string(line) == delimiter {
			end := len(content) - len(next)
			return content[start:pos], content[end:], nil
		}
		if len(next) == 0 {
			break
		}
		pos = len(content) - len(next)
	}
	return nil, content, ErrUnterminated
}

// cutLine returns the first line of b without its line terminator and the
// remainder after it. ok is false when b has no terminator.
func cutLine(b []byte) (line, rest []byte, ok bool) {
	line, rest, ok = bytes.Cut(b, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	return line, rest, ok
}

// Parse reads r, decodes its YAML frontmatter into a T and returns it with
// the body. Content without frontmatter fails with ErrNoFrontmatter.
func Parse[T any](r io.Reader) (T, []byte, error) {
	var matter T

	content, err := io.ReadAll(r)
	if err != nil {
		return matter, nil, errors.Wrap(err, "reading frontmatter")
	}

	raw, body, err := Split(content)
	if err != nil {
		return matter, nil, err
	}
	if err := yaml.Unmarshal(raw, &matter); err != nil {
		return matter, nil, errors.Mark(errors.Wrap(err, "decoding frontmatter"), ErrInvalidYAML)
	}
	return matter, body, nil
}
