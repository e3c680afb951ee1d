package config

import "flag"

// flagValues holds parsed flag values until we know which ones were set.
type flagValues struct {
	config   *string
	backend  *string
	dataDir  *string
	key      *string
	theme    *string
	logLevel *string
	logFile  *string
	filter   *string
	group    *bool

	set map[string]bool
}

func registerFlags(fs *flag.FlagSet) *flagValues {
	return &flagValues{
		config:   fs.String("config", "", "path to a TOML config file"),
		backend:  fs.String("backend", "", "storage backend: file, sqlite or memory"),
		dataDir:  fs.String("data-dir", "", "directory holding the task data (default: working directory)"),
		key:      fs.String("key", "", "storage key for the task list (default \"todos\")"),
		theme:    fs.String("theme", "", "color theme: classic, neon or mono"),
		logLevel: fs.String("log-level", "", "log level: debug, info, warn or error"),
		logFile:  fs.String("log-file", "", "write logs to this file"),
		filter:   fs.String("filter", "", "initial filter: all, active or completed"),
		group:    fs.Bool("group", false, "group output by pending/done"),
		set:      map[string]bool{},
	}
}

// apply copies only the flags given on the command line into cfg.
func (f *flagValues) apply(cfg *Config) {
	if f.set["backend"] {
		cfg.Backend = *f.backend
	}
	if f.set["data-dir"] {
		cfg.DataDir = *f.dataDir
	}
	if f.set["key"] {
		cfg.Key = *f.key
	}
	if f.set["theme"] {
		cfg.Theme = *f.theme
	}
	if f.set["log-level"] {
		cfg.LogLevel = *f.logLevel
	}
	if f.set["log-file"] {
		cfg.LogFile = *f.logFile
	}
	if f.set["filter"] {
		cfg.Filter = *f.filter
	}
	if f.set["group"] {
		cfg.Group = *f.group
	}
}
