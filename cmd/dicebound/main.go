// Package main provides the dicebound console game.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dicebound/internal/config"
	"github.com/cory-johannsen/dicebound/internal/content"
	"github.com/cory-johannsen/dicebound/internal/frontend/handlers"
	"github.com/cory-johannsen/dicebound/internal/game/dice"
	"github.com/cory-johannsen/dicebound/internal/game/session"
	"github.com/cory-johannsen/dicebound/internal/lifecycle"
	"github.com/cory-johannsen/dicebound/internal/observability"
	"github.com/cory-johannsen/dicebound/internal/storage/postgres"
	"github.com/cory-johannsen/dicebound/internal/storage/savefile"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file (empty uses defaults and DICEBOUND_ env)")
	fresh := flag.Bool("new", false, "discard any saved game and start a new one")
	listSlots := flag.Bool("slots", false, "list postgres save slots and exit")
	color := flag.Bool("color", true, "use ANSI colors")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	catalogue, err := loadContent(cfg.Content)
	if err != nil {
		logger.Fatal("loading content", zap.Error(err))
	}
	logger.Info("content loaded",
		zap.Int("charms", len(catalogue.Charms)),
		zap.Int("runes", len(catalogue.Runes)),
		zap.Int("bosses", len(catalogue.Bosses)),
		zap.Int("pouches", len(catalogue.Pouches)),
	)

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("opening save store", zap.Error(err))
	}
	defer closeStore()

	if *listSlots {
		if err := printSlots(ctx, store); err != nil {
			logger.Fatal("listing slots", zap.Error(err))
		}
		return
	}

	seed := cfg.Game.Seed
	var src dice.Source
	if seed != 0 {
		src = dice.NewSeededSource(seed)
		logger.Info("using fixed seed", zap.Uint64("seed", seed))
	} else {
		src = dice.NewCryptoSource()
	}

	deps := session.Deps{
		Content: catalogue,
		Source:  src,
		Logger:  logger,
		Rules:   rulesFromConfig(cfg.Game),
	}

	if *fresh {
		if err := store.Delete(ctx); err != nil {
			logger.Fatal("deleting save", zap.Error(err))
		}
	}
	game, resumed, err := session.LoadOrNew(ctx, store, deps)
	if err != nil {
		logger.Fatal("starting game", zap.Error(err))
	}
	if resumed {
		fmt.Fprintln(os.Stdout, "Resuming your saved game. Type help for commands.")
	} else {
		fmt.Fprintln(os.Stdout, "New game. Type help for commands.")
	}

	console := handlers.NewConsole(game, deps, store, os.Stdin, os.Stdout, *color)

	lc := lifecycle.New(logger)
	lc.Add("console", console)

	logger.Info("dicebound started",
		zap.Bool("resumed", resumed),
		zap.String("storage", cfg.Storage.Backend),
		zap.Duration("startup", time.Since(start)),
	)
	if err := lc.Run(ctx); err != nil {
		logger.Error("console stopped with error", zap.Error(err))
		os.Exit(1)
	}
}

// loadContent returns the embedded catalogue, overlaid with cfg.Dir when set.
func loadContent(cfg config.ContentConfig) (*content.Catalogue, error) {
	if cfg.Dir == "" {
		return content.Default()
	}
	return content.LoadDirectory(cfg.Dir)
}

// openStore selects the save backend. The returned function releases it.
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (session.Store, func(), error) {
	switch cfg.Storage.Backend {
	case "postgres":
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := pool.CheckSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.String("slot", cfg.Storage.Slot),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		return pool.Saves(cfg.Storage.Slot), pool.Close, nil
	default:
		logger.Info("using save file", zap.String("path", cfg.Storage.Path))
		return savefile.New(cfg.Storage.Path), func() {}, nil
	}
}

func printSlots(ctx context.Context, store session.Store) error {
	repo, ok := store.(*postgres.SaveRepository)
	if !ok {
		return fmt.Errorf("slots are only kept by the postgres backend")
	}
	slots, err := repo.Slots(ctx)
	if err != nil {
		return err
	}
	for _, s := range slots {
		fmt.Fprintf(os.Stdout, "%-20s v%d  %s\n", s.Slot, s.Version, s.UpdatedAt.Format(time.RFC3339))
	}
	return nil
}
