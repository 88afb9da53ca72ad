// Package main is the entry point for the tasknestd task service daemon.
package main

import (
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tasknest/tasknest/internal/config"
	"github.com/tasknest/tasknest/internal/daemon"
	"github.com/tasknest/tasknest/internal/dbus"
	"github.com/tasknest/tasknest/internal/store"
)

// Build-time variables (set via ldflags)
var version = "dev"

func main() {
	configPath := flag.String("config", "", "Path to config file (default: ~/.config/tasknest/config.toml)")
	tasksFile := flag.String("tasks-file", "", "Path to tasks file (default: ~/.local/share/tasknest/tasks.jsonl)")
	verbose := flag.Bool("verbose", false, "Enable verbose logging")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		println("tasknestd version", version)
		os.Exit(0)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	logger.Info("starting tasknestd", "version", version)

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := config.EnsureDataDir(); err != nil {
		logger.Error("failed to create data directory", "error", err)
		os.Exit(1)
	}

	tasksPath := *tasksFile
	if tasksPath == "" {
		tasksPath = config.TasksPath()
	}

	persistence, err := store.NewJSONLPersistence(tasksPath)
	if err != nil {
		logger.Error("failed to create persistence", "error", err)
		os.Exit(1)
	}

	taskStore := store.NewStore(persistence)
	if err := taskStore.Hydrate(); err != nil {
		logger.Warn("failed to hydrate store", "error", err)
	}
	logger.Info("task store initialized", "path", tasksPath, "count", taskStore.Count())

	viewManager := daemon.NewViewManager(logger)

	server := dbus.NewServer(taskStore, viewManager, logger)
	server.SetBusName(cfg.Bus.Name)
	if err := server.Start(); err != nil {
		logger.Error("failed to start D-Bus server", "error", err)
		_ = taskStore.Close()
		os.Exit(1)
	}

	// Pick up edits made by the CLI or other processes.
	watcher, err := store.NewFileWatcher(taskStore, tasksPath)
	if err != nil {
		logger.Warn("failed to create file watcher", "error", err)
	} else if err := watcher.Start(); err != nil {
		logger.Warn("failed to start file watcher", "error", err)
		watcher = nil
	}

	logger.Info("tasknestd ready", "dbus_interface", dbus.Interface)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("received signal, shutting down", "signal", sig)

	if watcher != nil {
		if err := watcher.Stop(); err != nil {
			logger.Warn("error stopping file watcher", "error", err)
		}
	}
	if err := server.Stop(); err != nil {
		logger.Warn("error stopping D-Bus server", "error", err)
	}
	if err := taskStore.Close(); err != nil {
		logger.Warn("error closing store", "error", err)
	}

	logger.Info("tasknestd stopped")
}
