package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Handler implements slog.Handler for terminal-friendly text output:
//
//	15:04:05 DEBUG loaded documents path=data.yaml format=yaml count=2
type Handler struct {
	opts   slog.HandlerOptions
	out    io.Writer
	mu     *sync.Mutex
	pre    string // attributes rendered by WithAttrs
	groups []string
	pal    *palette // nil when colors are off
}

type palette struct {
	time  *color.Color
	key   *color.Color
	trace *color.Color
	debug *color.Color
	info  *color.Color
	warn  *color.Color
	err   *color.Color
}

func newPalette() *palette {
	p := &palette{
		time:  color.New(color.FgHiBlack),
		key:   color.New(color.FgCyan),
		trace: color.New(color.FgBlue),
		debug: color.New(color.FgMagenta),
		info:  color.New(color.FgGreen),
		warn:  color.New(color.FgYellow),
		err:   color.New(color.FgRed, color.Bold),
	}
	// The mode was decided by the caller; ignore the package-wide switch
	// that the CLI sets for stdout.
	for _, c := range []*color.Color{p.time, p.key, p.trace, p.debug, p.info, p.warn, p.err} {
		c.EnableColor()
	}
	return p
}

func (p *palette) level(l slog.Level) *color.Color {
	switch {
	case l >= slog.LevelError:
		return p.err
	case l >= slog.LevelWarn:
		return p.warn
	case l >= slog.LevelInfo:
		return p.info
	case l > LevelTrace:
		return p.debug
	default:
		return p.trace
	}
}

// NewHandler creates a text handler writing to out. Colors follow mode.
func NewHandler(out io.Writer, opts *slog.HandlerOptions, mode ColorMode) *Handler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	h := &Handler{
		opts: *opts,
		out:  out,
		mu:   &sync.Mutex{},
	}
	if mode.Enabled(out) {
		h.pal = newPalette()
	}
	return h
}

// Enabled reports whether the handler handles records at the given level.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

// Handle writes one line for r.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder

	if !r.Time.IsZero() {
		sb.WriteString(h.paint(h.timeColor(), r.Time.Format(time.TimeOnly)))
		sb.WriteByte(' ')
	}

	// Pad before painting so escape codes do not count toward the width.
	label := fmt.Sprintf("%-5s", LevelName(r.Level))
	if h.pal != nil {
		label = h.pal.level(r.Level).Sprint(label)
	}
	sb.WriteString(label)
	sb.WriteByte(' ')
	sb.WriteString(r.Message)

	sb.WriteString(h.pre)
	prefix := strings.Join(h.groups, ".")
	r.Attrs(func(a slog.Attr) bool {
		h.appendAttr(&sb, a, prefix)
		return true
	})
	sb.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, sb.String())
	return err
}

func (h *Handler) timeColor() *color.Color {
	if h.pal == nil {
		return nil
	}
	return h.pal.time
}

func (h *Handler) paint(c *color.Color, s string) string {
	if c == nil {
		return s
	}
	return c.Sprint(s)
}

// appendAttr writes a as key=value, qualifying the key with the open groups
// and flattening nested group attributes.
func (h *Handler) appendAttr(sb *strings.Builder, a slog.Attr, prefix string) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	key := a.Key
	switch {
	case prefix != "" && key != "":
		key = prefix + "." + key
	case key == "":
		key = prefix
	}

	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			h.appendAttr(sb, ga, key)
		}
		return
	}

	sb.WriteByte(' ')
	if h.pal != nil {
		key = h.pal.key.Sprint(key)
	}
	sb.WriteString(key)
	sb.WriteByte('=')
	sb.WriteString(formatValue(a.Value))
}

// formatValue renders a value, quoting strings that would otherwise be
// ambiguous on a key=value line (file paths with spaces, empty strings).
func formatValue(v slog.Value) string {
	if v.Kind() != slog.KindString {
		return v.String()
	}
	s := v.String()
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}

// WithAttrs returns a new Handler with the given attributes. They are
// qualified by the groups open now, not by groups added later.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	var sb strings.Builder
	sb.WriteString(h.pre)
	prefix := strings.Join(h.groups, ".")
	for _, a := range attrs {
		h.appendAttr(&sb, a, prefix)
	}
	next := *h
	next.pre = sb.String()
	return &next
}

// WithGroup returns a new Handler with the given group name.
// Groups are rendered by prefixing keys, e.g. "check.file=a.yaml".
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.groups = append(h.groups[:len(h.groups):len(h.groups)], name)
	return &next
}
