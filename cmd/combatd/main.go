package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/aurafx/internal/combat"
	"github.com/udisondev/aurafx/internal/config"
	"github.com/udisondev/aurafx/internal/db"
	"github.com/udisondev/aurafx/internal/effect"
	"github.com/udisondev/aurafx/internal/sim"
	"github.com/udisondev/aurafx/internal/spell"
	"github.com/udisondev/aurafx/internal/world"
)

const ConfigPath = "config/combatd.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ConfigPath
	if p := os.Getenv("AURAFX_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadServer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))

	slog.Info("combatd starting",
		"log_level", cfg.LogLevel,
		"tick", cfg.TickInterval,
		"spells", len(cfg.Combat.Spells))

	registry := world.NewRegistry()
	executor := effect.NewExecutor(registry, combat.NewDamageResolver(registry, nil))
	processor := sim.NewProcessor(registry, executor, effect.DerivedTemplate(cfg.Combat.MaxHealth, cfg.Combat.MaxMana))
	spawner := spell.NewSpawner(registry, processor)

	catalog, err := spell.NewCatalog(cfg.Combat.Spells, spawner)
	if err != nil {
		return fmt.Errorf("building spell catalog: %w", err)
	}

	var (
		loader   attributeLoader
		journal  *db.AttributeJournal
		flushers []db.Flusher
	)
	if cfg.Database.Enabled {
		database, err := db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		slog.Info("database connected")

		if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}

		attrRepo := db.NewAttributeRepository(database.Pool())
		loader = attrRepo
		journal = db.NewAttributeJournal(attrRepo)
		recorder := db.NewEffectRecorder(db.NewEffectLogRepository(database.Pool()), 1024)
		processor.AddListener(recorder)
		flushers = append(flushers, journal, recorder)
	} else {
		slog.Info("database disabled, running in memory")
	}

	duel, err := newDuel(ctx, registry, processor, catalog, loader, journal)
	if err != nil {
		return fmt.Errorf("setting up duel: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := processor.Run(gctx, cfg.TickInterval); err != nil {
			return fmt.Errorf("effect processor: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		slog.Info("starting duel", "interval", duelInterval)
		if err := duel.Run(gctx); err != nil {
			return fmt.Errorf("duel: %w", err)
		}
		return nil
	})

	if len(flushers) > 0 {
		g.Go(func() error {
			slog.Info("starting persistence flusher", "interval", cfg.FlushInterval)
			if err := db.RunFlusher(gctx, cfg.FlushInterval, flushers...); err != nil {
				return fmt.Errorf("persistence flusher: %w", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
