package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Makepad-fr/tada/internal/cli"
	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/logging"
	"github.com/Makepad-fr/tada/internal/store"
	"github.com/Makepad-fr/tada/internal/store/jsonstore"
	"github.com/Makepad-fr/tada/internal/store/sqlitestore"
	"github.com/Makepad-fr/tada/internal/ui"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	// Root flags (apply to every subcommand)
	fs := flag.NewFlagSet("tada", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() { cli.PrintHelp(os.Stderr) }
	cfg, err := config.Load(fs, argv)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		ui.Fail(os.Stderr, err.Error())
		return 2
	}

	ui.SetTheme(cfg.Theme)
	if os.Getenv("NO_COLOR") != "" {
		ui.SetColorForcing(false, true)
	}

	logger := logging.New(os.Stderr, cfg.LogLevel)
	viewLogger, closer, err := logging.OpenFile(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		ui.Fail(os.Stderr, "log file: "+err.Error())
		return 1
	}
	defer closer.Close()

	// The interactive view owns the terminal, so its store logs go to the file.
	args := fs.Args()
	storeLogger := logger
	if len(args) == 0 || args[0] == "tui" {
		storeLogger = viewLogger
	}

	slot, err := openSlot(cfg)
	if err != nil {
		ui.Fail(os.Stderr, "open storage: "+err.Error())
		return 1
	}
	s, err := store.New(slot, store.WithLogger(storeLogger), store.WithKey(cfg.Key))
	if err != nil {
		slot.Close()
		ui.Fail(os.Stderr, "load: "+err.Error())
		return 1
	}
	defer s.Close()

	code := cli.Run(args, cli.Options{
		Store:      s,
		Group:      cfg.Group,
		Filter:     cfg.DefaultFilter(),
		Logger:     logger,
		ViewLogger: viewLogger,
	})
	if code != 0 {
		fmt.Fprintln(os.Stderr)
	}
	return code
}

func openSlot(cfg *config.Config) (store.Slot, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		return sqlitestore.Open(filepath.Join(cfg.DataDir, sqlitestore.FileName))
	case config.BackendMemory:
		return store.NewMemorySlot(), nil
	default:
		return jsonstore.New(cfg.DataDir)
	}
}
