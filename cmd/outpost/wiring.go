package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"outpost/internal/adapter/codec"
	sqlitejournal "outpost/internal/adapter/journal/sqlite"
	"outpost/internal/adapter/names"
	gormrepo "outpost/internal/adapter/repo/gorm"
	"outpost/internal/adapter/repo/memory"
	"outpost/internal/app/game"
	"outpost/internal/app/ports"
	"outpost/internal/app/session"
	"outpost/internal/config"
	"outpost/internal/domain/content"
	"outpost/internal/domain/world"
)

func loadCatalog(ctx context.Context, src ports.ContentProvider) (*content.Catalog, error) {
	t, err := src.Tables(ctx)
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}
	cat, err := content.NewCatalog(t, content.DefaultHooks())
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}
	return cat, nil
}

func newNamePool(ctx context.Context, cfg *config.Config, log *zap.Logger) (*names.Pool, error) {
	var provider ports.NameProvider
	if cfg.Names.URL != "" {
		client, err := names.NewClient(names.ClientConfig{
			URL:     cfg.Names.URL,
			Timeout: cfg.Names.Timeout,
			Rate:    cfg.Names.Rate,
		})
		if err != nil {
			return nil, err
		}
		provider = client
	}
	pool := names.NewPool(provider, names.PoolConfig{Timeout: cfg.Names.Timeout, Logger: log})
	if provider != nil {
		if err := pool.Prefetch(ctx); err != nil {
			log.Warn("name prefetch failed, using built-in names", zap.Error(err))
		}
	}
	return pool, nil
}

func newGame(cat *content.Catalog, cfg *config.Config, log *zap.Logger, pool game.NameSource, now func() time.Time) *game.Game {
	seed := cfg.Game.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return game.New(cat, game.Options{
		Clock:  world.NewClock(world.ClockConfig{HourDuration: cfg.Game.HourDuration}),
		Now:    now,
		Seed:   seed,
		Logger: log,
		Names:  pool,
	})
}

// openStorage returns the persistence side of a session. The cleanup func is
// always safe to call, even when err is set.
func openStorage(ctx context.Context, cfg *config.Config) (session.Deps, func(), error) {
	deps := session.Deps{Codec: codec.NewZstd()}
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	switch cfg.Database.Type {
	case "memory":
		store := memory.NewStore()
		deps.Store = memory.NewSaveRepo(store)
		deps.TxManager = memory.NewTxManager(store)
		deps.Journal = memory.NewJournal()
	case "postgres", "sqlite":
		var (
			db  *gorm.DB
			err error
		)
		if cfg.Database.Type == "postgres" {
			db, err = gormrepo.OpenPostgres(cfg.Database.URL)
		} else {
			db, err = gormrepo.OpenSQLite(cfg.Database.Path)
		}
		if err != nil {
			return session.Deps{}, cleanup, fmt.Errorf("open %s: %w", cfg.Database.Type, err)
		}
		if sqlDB, err := db.DB(); err == nil {
			closers = append(closers, func() { _ = sqlDB.Close() })
		}
		if err := gormrepo.ApplyMigrations(ctx, db); err != nil {
			return session.Deps{}, cleanup, err
		}
		deps.Store = gormrepo.NewSaveRepo(db)
		deps.TxManager = gormrepo.NewTxManager(db)
		deps.Journal = gormrepo.NewJournalRepo(db)
	default:
		return session.Deps{}, cleanup, fmt.Errorf("unsupported database type %q", cfg.Database.Type)
	}

	if cfg.Journal.Path != "" {
		j, err := sqlitejournal.Open(cfg.Journal.Path)
		if err != nil {
			return session.Deps{}, cleanup, fmt.Errorf("open journal: %w", err)
		}
		closers = append(closers, func() { _ = j.Close() })
		deps.Journal = j
	}
	return deps, cleanup, nil
}
