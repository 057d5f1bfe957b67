package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColorMode(t *testing.T) {
	for in, want := range map[string]ColorMode{
		"":       ColorAuto,
		"auto":   ColorAuto,
		"always": ColorAlways,
		"never":  ColorNever,
	} {
		got, err := ParseColorMode(in)
		require.NoError(t, err, "ParseColorMode(%q)", in)
		assert.Equal(t, want, got)
	}

	_, err := ParseColorMode("sometimes")
	assert.ErrorContains(t, err, `invalid color mode "sometimes"`)
}

func TestColorMode_Enabled(t *testing.T) {
	tests := []struct {
		name string
		mode ColorMode
		env  map[string]string
		tty  bool
		want bool
	}{
		{name: "auto on terminal", mode: ColorAuto, tty: true, want: true},
		{name: "auto off terminal", mode: ColorAuto, tty: false, want: false},
		{name: "zero value is auto", mode: "", tty: true, want: true},
		{name: "NO_COLOR", mode: ColorAuto, env: map[string]string{"NO_COLOR": "1"}, tty: true, want: false},
		{name: "empty NO_COLOR is unset", mode: ColorAuto, env: map[string]string{"NO_COLOR": ""}, tty: true, want: true},
		{name: "dumb terminal", mode: ColorAuto, env: map[string]string{"TERM": "dumb"}, tty: true, want: false},
		{name: "always beats NO_COLOR", mode: ColorAlways, env: map[string]string{"NO_COLOR": "1"}, tty: false, want: true},
		{name: "never on terminal", mode: ColorNever, tty: true, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", "")
			t.Setenv("TERM", "xterm-256color")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			assert.Equal(t, tt.want, tt.mode.enabled(tt.tty))
		})
	}
}

func TestIsTerminal_Buffer(t *testing.T) {
	assert.False(t, isTerminal(&bytes.Buffer{}))
	assert.False(t, ColorAuto.Enabled(&bytes.Buffer{}))
}
