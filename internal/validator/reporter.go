package validator

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
)

// Format selects how a Reporter renders a Result.
type Format string

const (
	FormatText   Format = "text"
	FormatJSON   Format = "json"
	FormatGitHub Format = "github" // GitHub Actions workflow commands
)

// ParseFormat validates a --format flag value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatText, FormatJSON, FormatGitHub:
		return f, nil
	default:
		return "", errors.Newf("unknown output format %q (valid: text, json, github)", s)
	}
}

// Reporter writes results for rx check and rx lint.
type Reporter struct {
	out    io.Writer
	format Format
}

func NewReporter(out io.Writer, format Format) *Reporter {
	return &Reporter{out: out, format: format}
}

// Report writes result. A nil result writes nothing.
func (r *Reporter) Report(result *Result) error {
	if result == nil {
		return nil
	}
	switch r.format {
	case FormatJSON:
		return r.json(result)
	case FormatGitHub:
		return r.github(result)
	default:
		r.text(result)
		return nil
	}
}

func (r *Reporter) json(result *Result) error {
	out := *result
	if out.Issues == nil {
		out.Issues = []Issue{}
	}
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(out), "encoding JSON report")
}

// github emits one ::error or ::warning line per issue so the Actions UI
// annotates the file. Info issues become ::notice.
func (r *Reporter) github(result *Result) error {
	for _, i := range result.Issues {
		level := "notice"
		switch i.Severity {
		case SeverityError:
			level = "error"
		case SeverityWarning:
			level = "warning"
		}

		var props []string
		if i.File != "" {
			props = append(props, "file="+escapeProperty(i.File))
		}
		if i.Field != "" {
			props = append(props, "title="+escapeProperty(i.Field))
		}
		line := "::" + level
		if len(props) > 0 {
			line += " " + strings.Join(props, ",")
		}
		if _, err := fmt.Fprintf(r.out, "%s::%s\n", line, escapeData(describe(i))); err != nil {
			return errors.Wrap(err, "writing report")
		}
	}
	return nil
}

var (
	dataEscaper     = strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A")
	propertyEscaper = strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A", ":", "%3A", ",", "%2C")
)

func escapeData(s string) string     { return dataEscaper.Replace(s) }
func escapeProperty(s string) string { return propertyEscaper.Replace(s) }

// describe renders the message with its value and sorted context, without
// colors.
func describe(i Issue) string {
	msg := i.Message
	if len(i.Context) > 0 {
		msg += " (" + contextString(i.Context) + ")"
	}
	if i.Value != "" {
		msg += " [" + i.Value + "]"
	}
	return msg
}

func contextString(ctx map[string]string) string {
	parts := make([]string, 0, len(ctx))
	for _, k := range slices.Sorted(maps.Keys(ctx)) {
		parts = append(parts, k+"="+ctx[k])
	}
	return strings.Join(parts, ", ")
}

func (r *Reporter) text(result *Result) {
	errs, warnings := result.Errors(), result.Warnings()

	if len(errs) == 0 && len(warnings) == 0 {
		msg := "✓ Validation passed"
		if result.Checked > 0 {
			msg = fmt.Sprintf("✓ %d document(s) valid", result.Checked)
		}
		fmt.Fprintln(r.out, color.GreenString(msg))
		return
	}

	var summary []string
	if len(errs) > 0 {
		summary = append(summary, color.RedString("%d error(s)", len(errs)))
	}
	if len(warnings) > 0 {
		summary = append(summary, color.YellowString("%d warning(s)", len(warnings)))
	}
	if result.Checked > 0 {
		summary = append(summary, fmt.Sprintf("%d document(s) checked", result.Checked))
	}
	fmt.Fprintf(r.out, "Validation failed: %s\n\n", strings.Join(summary, ", "))

	r.section("Errors:", errs, color.New(color.FgRed))
	r.section("Warnings:", warnings, color.New(color.FgYellow))
}

// section prints issues under one header per file, in the order files
// first appear. Issues without a file are listed unindented.
func (r *Reporter) section(title string, issues []Issue, field *color.Color) {
	if len(issues) == 0 {
		return
	}
	fmt.Fprintln(r.out, title)

	var files []string
	byFile := make(map[string][]Issue)
	for _, i := range issues {
		if _, seen := byFile[i.File]; !seen {
			files = append(files, i.File)
		}
		byFile[i.File] = append(byFile[i.File], i)
	}

	bold := color.New(color.Bold)
	faint := color.New(color.FgHiBlack)
	for _, file := range files {
		indent := "  "
		if file != "" {
			fmt.Fprintf(r.out, "  %s\n", bold.Sprint(file))
			indent = "    "
		}
		for _, i := range byFile[file] {
			line := indent + "• "
			if i.Field != "" {
				line += field.Sprint(i.Field) + ": "
			}
			line += i.Message
			if len(i.Context) > 0 {
				line += " " + faint.Sprintf("(%s)", contextString(i.Context))
			}
			if i.Value != "" {
				line += faint.Sprintf(" [%s]", i.Value)
			}
			fmt.Fprintln(r.out, line)
		}
	}
	fmt.Fprintln(r.out)
}
