package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/mattn/go-isatty"

	"github.com/alexanderramin/lifeos/internal/cli"
	"github.com/alexanderramin/lifeos/internal/config"
	"github.com/alexanderramin/lifeos/internal/db"
	"github.com/alexanderramin/lifeos/internal/llm"
	"github.com/alexanderramin/lifeos/internal/repository"
	"github.com/alexanderramin/lifeos/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.EnsureDataDir(); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// Quiet unless the config or --verbose asks for more.
	level := new(slog.LevelVar)
	level.Set(slog.LevelWarn)
	if lvl, ok := cfg.LogLevel(); ok {
		level.Set(lvl)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	// Open the store
	var (
		store   repository.KVStore
		watcher repository.Watcher
	)
	switch cfg.Storage.Backend {
	case config.BackendDiskv:
		s, err := repository.NewDiskvKVStore(cfg.Storage.Path, logger)
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		store, watcher = s, s
	default:
		database, err := db.OpenDB(cfg.Storage.Path)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()
		store = repository.NewSQLiteKVStore(database)
	}

	// Wire repositories
	plans := repository.NewKVDayPlanRepo(store, logger)
	goals := repository.NewKVGoalRepo(store, logger)
	modes := repository.NewKVEnergyRepo(store, logger)
	settings := repository.NewKVSettingsRepo(store)
	locks := repository.NewKeyLocks()

	// The generator reads the stored API key on every call.
	llmCfg := cfg.LLMConfig()
	var llmObserver llm.Observer = llm.NoopObserver{}
	if llmCfg.LogCalls {
		llmObserver = llm.NewSlogObserver(logger)
	}
	gen := service.NewPlanGenerator(llmCfg, settings, llmObserver)

	// Wire services
	obs := service.NewSlogUseCaseObserver(logger)
	days := service.NewDayPlanService(plans, goals, modes, locks, obs)

	app := &cli.App{
		Days:        days,
		Energy:      service.NewEnergyService(modes, settings, days, obs),
		Goals:       service.NewGoalService(goals, gen, locks, obs),
		Checkins:    service.NewCheckinService(plans, goals, locks, logger, obs),
		Progression: service.NewProgressionService(plans, goals, gen, locks, obs),
		Export:      service.NewExportService(days, obs),
		Settings:    settings,
		Config:      cfg,
		Watcher:     watcher,
		LogLevel:    level,
	}

	// Prompts and the timeline need a terminal on both ends.
	app.IsInteractive = func() bool {
		return isTerminal(os.Stdin) && isTerminal(os.Stdout)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
