// Package editor opens files in the user's editor.
package editor

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/cockroachdb/errors"
)

// Streams are handed to the editor process.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Stdio returns the process's own standard streams.
func Stdio() Streams {
	return Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// Variables consulted in order. RX_EDITOR lets rx use a different editor
// than the rest of the shell.
var envVars = []string{"RX_EDITOR", "VISUAL", "EDITOR"}

// Without any of envVars, the first of these found on PATH is used.
var fallbacks = []string{"nano", "vi"}

var lookPath = exec.LookPath

// Open runs the editor on path and waits for it to exit. Cancelling ctx
// kills the editor.
func Open(ctx context.Context, path string, s Streams) error {
	name, args, err := Command()
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, name, append(args, path)...)
	cmd.Stdin = s.In
	cmd.Stdout = s.Out
	cmd.Stderr = s.Err
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "running editor %s", name)
	}
	return nil
}

// Command resolves the editor program and its leading arguments. A setting
// such as "code --wait" is split on whitespace.
func Command() (string, []string, error) {
	for _, key := range envVars {
		if fields := strings.Fields(os.Getenv(key)); len(fields) > 0 {
			return fields[0], fields[1:], nil
		}
	}
	for _, name := range fallbacks {
		if _, err := lookPath(name); err == nil {
			return name, nil, nil
		}
	}
	return "", nil, errors.Newf("no editor found: set RX_EDITOR, VISUAL or EDITOR")
}
