package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"yatube/app/config"
	"yatube/app/repositories"
	"yatube/app/repositories/postgres"

	"github.com/lmittmann/tint"
)

// loadConfig is a variable so tests can supply their own settings.
var loadConfig = config.Load

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.DateTime,
	}))
}

// backend is an opened storage engine. Exactly one of badger and pg is set.
type backend struct {
	store  *repositories.Store
	badger *repositories.Repository
	pg     *postgres.DB
}

// openBackend connects to Postgres when DATABASE_URL is set and opens the
// Badger directory otherwise.
func openBackend(ctx context.Context, cfg config.Config) (*backend, error) {
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
		if err != nil {
			return nil, err
		}
		return &backend{store: db.Store(), pg: db}, nil
	}
	repo, err := repositories.NewRepository(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	return &backend{store: repo.Store(), badger: repo}, nil
}

func (b *backend) Name() string {
	if b.pg != nil {
		return "postgres"
	}
	return "badger"
}

func (b *backend) Close() error {
	if b.pg != nil {
		b.pg.Close()
		return nil
	}
	if err := b.badger.Close(); err != nil {
		return fmt.Errorf("failed to close badger: %w", err)
	}
	return nil
}
