package config

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store"
)

// isolate points the user config dir and working directory at fresh temp dirs.
func isolate(t *testing.T) (userDir, projectDir string) {
	t.Helper()
	userDir = t.TempDir()
	projectDir = t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", userDir)
	t.Setenv("HOME", userDir)
	for _, k := range []string{"TADA_CONFIG", "TADA_BACKEND", "TADA_DATA_DIR", "TADA_KEY",
		"TADA_THEME", "TADA_LOG_LEVEL", "TADA_LOG_FILE", "TADA_FILTER"} {
		t.Setenv(k, "")
	}
	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(projectDir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldWD) })
	return userDir, projectDir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func load(t *testing.T, args ...string) (*Config, *flag.FlagSet) {
	t.Helper()
	fs := flag.NewFlagSet("tada", flag.ContinueOnError)
	cfg, err := Load(fs, args)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return cfg, fs
}

func TestDefaults(t *testing.T) {
	isolate(t)
	cfg, _ := load(t)

	if cfg.Backend != BackendFile {
		t.Errorf("Backend: got %q, want %q", cfg.Backend, BackendFile)
	}
	if cfg.Key != store.DefaultKey {
		t.Errorf("Key: got %q, want the store's %q", cfg.Key, store.DefaultKey)
	}
	if cfg.DefaultFilter() != model.FilterAll {
		t.Errorf("DefaultFilter: got %v", cfg.DefaultFilter())
	}
	if len(cfg.Files) != 0 {
		t.Errorf("Files: got %v, want none", cfg.Files)
	}
}

func TestLayering(t *testing.T) {
	userDir, projectDir := isolate(t)
	writeFile(t, filepath.Join(userDir, "tada", "config.toml"), `
backend = "sqlite"
theme = "neon"
key = "home"
filter = "active"
`)
	writeFile(t, filepath.Join(projectDir, ".tada.toml"), `
key = "project"
`)
	t.Setenv("TADA_THEME", "mono")

	cfg, fs := load(t, "-filter", "completed", "ls", "active")

	if cfg.Backend != BackendSQLite {
		t.Errorf("Backend from user file: got %q", cfg.Backend)
	}
	if cfg.Key != "project" {
		t.Errorf("Key: project file should beat user file, got %q", cfg.Key)
	}
	if cfg.Theme != "mono" {
		t.Errorf("Theme: env should beat files, got %q", cfg.Theme)
	}
	if cfg.DefaultFilter() != model.FilterCompleted {
		t.Errorf("Filter: flag should beat files, got %q", cfg.Filter)
	}
	if got := strings.Join(fs.Args(), " "); got != "ls active" {
		t.Errorf("remaining args: got %q", got)
	}
	if len(cfg.Files) != 2 {
		t.Errorf("Files: got %v", cfg.Files)
	}
}

func TestExplicitConfigFlag(t *testing.T) {
	_, projectDir := isolate(t)
	p := filepath.Join(projectDir, "custom.toml")
	writeFile(t, p, `log_level = "debug"`+"\n"+`group = true`)

	cfg, _ := load(t, "-config", p)
	if cfg.LogLevel != "debug" || !cfg.Group {
		t.Errorf("explicit config not applied: %+v", cfg)
	}
}

func TestKeyOutsideDataDirRejected(t *testing.T) {
	isolate(t)
	t.Setenv("TADA_KEY", "../elsewhere")

	fs := flag.NewFlagSet("tada", flag.ContinueOnError)
	if _, err := Load(fs, nil); err == nil || !strings.Contains(err.Error(), "key") {
		t.Errorf("Load: got %v, want key error", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"backend", func(c *Config) { c.Backend = "redis" }, "backend"},
		{"theme", func(c *Config) { c.Theme = "pastel" }, "theme"},
		{"filter", func(c *Config) { c.Filter = "later" }, "filter"},
		{"level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"key", func(c *Config) { c.Key = " " }, "key"},
		{"key escapes data dir", func(c *Config) { c.Key = "../x" }, "key"},
		{"key with backslash", func(c *Config) { c.Key = `a\b` }, "key"},
		{"key dotdot", func(c *Config) { c.Key = ".." }, "key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			setDefaults(cfg)
			if err := cfg.Validate(); err != nil {
				t.Fatalf("defaults invalid: %v", err)
			}
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.field) {
				t.Errorf("Validate: got %v, want error mentioning %q", err, tt.field)
			}
		})
	}
}

func TestBadTOML(t *testing.T) {
	_, projectDir := isolate(t)
	writeFile(t, filepath.Join(projectDir, ".tada.toml"), "backend = ")

	fs := flag.NewFlagSet("tada", flag.ContinueOnError)
	if _, err := Load(fs, nil); err == nil {
		t.Error("Load: expected error for malformed TOML")
	}
}
