package logging

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"golang.org/x/term"
)

// ColorMode selects when output carries ANSI colors.
type ColorMode string

const (
	// ColorAuto colors output written to a terminal, unless NO_COLOR is set
	// or TERM is dumb.
	ColorAuto ColorMode = "auto"
	// ColorAlways colors output regardless of the destination.
	ColorAlways ColorMode = "always"
	// ColorNever disables colors.
	ColorNever ColorMode = "never"
)

// ParseColorMode parses a --color value. The empty string means ColorAuto.
func ParseColorMode(s string) (ColorMode, error) {
	switch m := ColorMode(s); m {
	case "":
		return ColorAuto, nil
	case ColorAuto, ColorAlways, ColorNever:
		return m, nil
	}
	return "", errors.Newf("invalid color mode %q (valid: auto, always, never)", s)
}

// Enabled reports whether output written to w should be colorized.
func (m ColorMode) Enabled(w io.Writer) bool {
	return m.enabled(isTerminal(w))
}

func (m ColorMode) enabled(tty bool) bool {
	switch m {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	// https://no-color.org
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return tty
}

// isTerminal reports whether w is backed by a terminal, such as os.Stderr
// attached to a console.
func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}
