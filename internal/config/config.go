// Package config loads tada settings from TOML files, the environment and flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/Makepad-fr/tada/internal/logging"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"

	DefaultKey      = store.DefaultKey
	DefaultTheme    = "classic"
	DefaultLogLevel = "warn"

	projectConfigName = ".tada.toml"
	userConfigName    = "config.toml"
)

// Config holds every setting. Zero values are filled by setDefaults.
type Config struct {
	Backend  string `toml:"backend"`
	DataDir  string `toml:"data_dir"`
	Key      string `toml:"key"`
	Theme    string `toml:"theme"`
	LogLevel string `toml:"log_level"`
	LogFile  string `toml:"log_file"`
	Filter   string `toml:"filter"`
	Group    bool   `toml:"group"`

	// Files lists the config files that were read, lowest priority first.
	Files []string `toml:"-"`
}

func setDefaults(cfg *Config) {
	cfg.Backend = BackendFile
	cfg.DataDir = ""
	cfg.Key = DefaultKey
	cfg.Theme = DefaultTheme
	cfg.LogLevel = DefaultLogLevel
	cfg.Filter = model.FilterAll.String()
}

// Load reads configuration in priority order:
// 1. Defaults
// 2. User config file ($XDG_CONFIG_HOME/tada/config.toml)
// 3. Project config file (.tada.toml in the working directory)
// 4. File named by -config or TADA_CONFIG
// 5. Environment variables (TADA_*)
// 6. Flags
//
// fs is parsed with args; callers read the remaining arguments from fs.Args().
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)

	flags := registerFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}
	fs.Visit(func(fl *flag.Flag) { flags.set[fl.Name] = true })

	if p := findUserConfigFile(); p != "" {
		if err := loadConfigFile(cfg, p); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", p, err)
		}
	}
	if p := findProjectConfigFile(); p != "" {
		if err := loadConfigFile(cfg, p); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", p, err)
		}
	}

	explicit := os.Getenv("TADA_CONFIG")
	if flags.set["config"] {
		explicit = *flags.config
	}
	if explicit != "" {
		if err := loadConfigFile(cfg, explicit); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", explicit, err)
		}
	}

	loadFromEnv(cfg)
	flags.apply(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadConfigFile(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return err
	}
	cfg.Files = append(cfg.Files, path)
	return nil
}

func findUserConfigFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	p := filepath.Join(dir, "tada", userConfigName)
	if fileExists(p) {
		return p
	}
	return ""
}

func findProjectConfigFile() string {
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	p := filepath.Join(wd, projectConfigName)
	if fileExists(p) {
		return p
	}
	return ""
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

func loadFromEnv(cfg *Config) {
	if v := os.Getenv("TADA_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv("TADA_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("TADA_KEY"); v != "" {
		cfg.Key = v
	}
	if v := os.Getenv("TADA_THEME"); v != "" {
		cfg.Theme = v
	}
	if v := os.Getenv("TADA_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TADA_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("TADA_FILTER"); v != "" {
		cfg.Filter = v
	}
}

// Validate rejects settings the rest of the program cannot act on.
func (c *Config) Validate() error {
	var errs []error
	switch c.Backend {
	case BackendFile, BackendSQLite, BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("backend: unknown %q (want file, sqlite or memory)", c.Backend))
	}
	switch strings.ToLower(c.Theme) {
	case "classic", "neon", "mono":
	default:
		errs = append(errs, fmt.Errorf("theme: unknown %q (want classic, neon or mono)", c.Theme))
	}
	switch {
	case strings.TrimSpace(c.Key) == "":
		errs = append(errs, errors.New("key: must not be empty"))
	case strings.ContainsAny(c.Key, `/\`) || c.Key == "." || c.Key == "..":
		errs = append(errs, fmt.Errorf("key: %q must be a bare name", c.Key))
	}
	if _, err := model.ParseFilter(c.Filter); err != nil {
		errs = append(errs, fmt.Errorf("filter: %w", err))
	}
	if !logging.ValidLevel(c.LogLevel) {
		errs = append(errs, fmt.Errorf("log_level: unknown %q", c.LogLevel))
	}
	return errors.Join(errs...)
}

// DefaultFilter is the filter the view starts with.
func (c *Config) DefaultFilter() model.Filter {
	f, _ := model.ParseFilter(c.Filter)
	return f
}
