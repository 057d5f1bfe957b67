package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	rxerrors "github.com/thoreinstein/rx/internal/errors"
)

// isolate points the user config directory at an empty temp dir and runs
// the test from another empty temp dir so no real config is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv(configDirEnv, t.TempDir())
	t.Chdir(t.TempDir())
	return os.Getenv(configDirEnv)
}

func TestInit(t *testing.T) {
	isolate(t)
	Init()

	if viper.GetInt("version") != CurrentVersion {
		t.Errorf("expected version default %d, got %d", CurrentVersion, viper.GetInt("version"))
	}
	if viper.GetBool("strict") {
		t.Error("expected strict default false")
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	isolate(t)
	Init()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() with no config file should not error: %v", err)
	}
	if cfg.Version != CurrentVersion {
		t.Errorf("Version = %d, want %d", cfg.Version, CurrentVersion)
	}
	if cfg.Dir != "" {
		t.Errorf("Dir = %q, want empty when running on defaults", cfg.Dir)
	}
}

func TestLoad_WithConfigFile(t *testing.T) {
	isolate(t)

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := []byte(`version: 1
strict: true
prefixes:
  geo: "tag:example.com,2026:geo/"
libraries:
  - types/geo.yaml
  - /abs/shared.yaml
`)
	if err := os.WriteFile(configPath, content, 0600); err != nil {
		t.Fatal(err)
	}

	Init()

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if !cfg.Strict {
		t.Error("expected strict to be true")
	}
	if got := cfg.Prefixes["geo"]; got != "tag:example.com,2026:geo/" {
		t.Errorf("Prefixes[geo] = %q", got)
	}
	if cfg.Dir != dir {
		t.Errorf("Dir = %q, want %q", cfg.Dir, dir)
	}

	libs, err := cfg.LibraryPaths()
	if err != nil {
		t.Fatalf("LibraryPaths() error: %v", err)
	}
	want := []string{filepath.Join(dir, "types", "geo.yaml"), "/abs/shared.yaml"}
	if len(libs) != len(want) || libs[0] != want[0] || libs[1] != want[1] {
		t.Errorf("LibraryPaths() = %v, want %v", libs, want)
	}
}

func TestLoad_ProjectFileWins(t *testing.T) {
	userDir := isolate(t)

	if err := os.WriteFile(filepath.Join(userDir, "config.yaml"), []byte("version: 1\nstrict: false\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile("rx.yaml", []byte("version: 1\nstrict: true\n"), 0600); err != nil {
		t.Fatal(err)
	}

	Init()
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.Strict {
		t.Error("expected the project rx.yaml to take precedence")
	}
}

func TestLoad_UserConfigDir(t *testing.T) {
	userDir := isolate(t)
	if err := os.WriteFile(filepath.Join(userDir, "config.yaml"), []byte("version: 1\nlibraries: [a.yaml]\n"), 0600); err != nil {
		t.Fatal(err)
	}

	Init()
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(cfg.Libraries) != 1 || cfg.Libraries[0] != "a.yaml" {
		t.Errorf("Libraries = %v, want [a.yaml]", cfg.Libraries)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv("RX_STRICT", "true")

	Init()
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.Strict {
		t.Error("expected RX_STRICT to enable strict mode")
	}
}

func TestLoad_ExplicitPathNotFound(t *testing.T) {
	isolate(t)
	Init()

	_, err := Load("/non/existent/path/config.yaml")
	if err == nil {
		t.Fatal("Load() with non-existent explicit path should error")
	}
	if !errors.Is(err, rxerrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLoad_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "invalid version",
			content: "version: 2\n",
			wantErr: "unsupported config version 2 (want 1)",
		},
		{
			name:    "bad prefix name",
			content: "version: 1\nprefixes:\n  a b: \"tag:example.com,2026:\"\n",
			wantErr: `prefixes.a b "tag:example.com,2026:": name must match [-._a-z0-9]+`,
		},
		{
			name:    "empty prefix base",
			content: "version: 1\nprefixes:\n  geo: \"\"\n",
			wantErr: `prefixes.geo "": empty URI base`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			Init()

			dir := t.TempDir()
			configPath := filepath.Join(dir, "config.yaml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}

			_, err := Load(configPath)
			if err == nil {
				t.Fatal("Load() expected error, got nil")
			}
			if err.Error() != "validating config: "+tt.wantErr {
				t.Errorf("Load() error = %v, want %v", err, "validating config: "+tt.wantErr)
			}
			if !errors.Is(err, rxerrors.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig mark, got %v", err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr []error
	}{
		{
			name: "default is valid",
			cfg:  Default(),
		},
		{
			name:    "nil config",
			cfg:     nil,
			wantErr: []error{nil},
		},
		{
			name:    "version zero",
			cfg:     &Config{},
			wantErr: []error{ErrUnsupportedVersion},
		},
		{
			name: "bad prefix characters",
			cfg: &Config{
				Version:  1,
				Prefixes: map[string]string{"Geo": "tag:x:", "a b": "tag:y:"},
			},
			wantErr: []error{ErrInvalidPrefix, ErrInvalidPrefix},
		},
		{
			name: "reserved prefixes",
			cfg: &Config{
				Version:  1,
				Prefixes: map[string]string{"": "tag:x:", ".meta": "tag:y:"},
			},
			wantErr: []error{ErrInvalidPrefix, ErrInvalidPrefix},
		},
		{
			name: "prefix base without scheme",
			cfg: &Config{
				Version:  1,
				Prefixes: map[string]string{"geo": "example.com/geo/", "ok": "http://example.com/ok/"},
			},
			wantErr: []error{ErrInvalidPrefix},
		},
		{
			name: "bad library paths",
			cfg: &Config{
				Version:   1,
				Libraries: []string{"ok.yaml", "", "bad\x00.yaml", "."},
			},
			wantErr: []error{ErrInvalidPath, ErrInvalidPath, ErrInvalidPath},
		},
		{
			name: "duplicate library",
			cfg: &Config{
				Version:   1,
				Libraries: []string{"types/geo.yaml", "other.yaml", "./types/geo.yaml"},
			},
			wantErr: []error{ErrInvalidPath},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(tt.cfg)
			if len(errs) != len(tt.wantErr) {
				t.Fatalf("Validate() returned %d errors, want %d: %v", len(errs), len(tt.wantErr), errs)
			}
			for i, want := range tt.wantErr {
				if want != nil && !errors.Is(errs[i], want) {
					t.Errorf("error %d = %v, want %v", i, errs[i], want)
				}
			}
		})
	}
}

func TestFieldError(t *testing.T) {
	errs := Validate(&Config{
		Version:   1,
		Prefixes:  map[string]string{"geo": "plain"},
		Libraries: []string{"a.yaml", "", "a.yaml"},
	})
	if len(errs) != 3 {
		t.Fatalf("expected 3 errors, got %v", errs)
	}

	want := []struct {
		field string
		msg   string
	}{
		{"prefixes.geo", `prefixes.geo "plain": URI base needs a scheme, as in tag:example.com,2026:`},
		{"libraries[1]", `libraries[1] "": empty path`},
		{"libraries[2]", `libraries[2] "a.yaml": duplicate of libraries[0]`},
	}
	for i, w := range want {
		var fieldErr *FieldError
		if !errors.As(errs[i], &fieldErr) {
			t.Fatalf("error %d: expected *FieldError, got %T", i, errs[i])
		}
		if fieldErr.Field != w.field {
			t.Errorf("error %d: Field = %q, want %q", i, fieldErr.Field, w.field)
		}
		if errs[i].Error() != w.msg {
			t.Errorf("error %d: Error() = %q, want %q", i, errs[i].Error(), w.msg)
		}
	}
}

func TestInit_ClearsPreviousState(t *testing.T) {
	dir := t.TempDir()
	fileA := filepath.Join(dir, "config_a.yaml")
	if err := os.WriteFile(fileA, []byte("version: 1\nstrict: true\n"), 0600); err != nil {
		t.Fatal(err)
	}

	isolate(t)
	Init()
	if _, err := Load(fileA); err != nil {
		t.Fatalf("First Load failed: %v", err)
	}

	dirB := t.TempDir()
	t.Setenv(configDirEnv, dirB)
	fileB := filepath.Join(dirB, "config.yaml")
	if err := os.WriteFile(fileB, []byte("version: 1\nlibraries: [b.yaml]\n"), 0600); err != nil {
		t.Fatal(err)
	}

	// Re-initializing must forget fileA.
	Init()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Second Load failed: %v", err)
	}
	if cfg.Strict || len(cfg.Libraries) != 1 || cfg.Libraries[0] != "b.yaml" {
		t.Errorf("expected config from fileB, got %+v (file used: %s)", cfg, viper.ConfigFileUsed())
	}
}
