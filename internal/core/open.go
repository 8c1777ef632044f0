package core

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/edvin/dockpanel/internal/config"
	"github.com/edvin/dockpanel/internal/db"
	"github.com/edvin/dockpanel/internal/docker"
	"github.com/edvin/dockpanel/internal/executor"
	"github.com/edvin/dockpanel/internal/grouping"
	"github.com/edvin/dockpanel/internal/layout"
	"github.com/edvin/dockpanel/internal/store"
)

// Backend is the opened project store with its underlying connection.
// Exactly one of Pool and SQL is set for the database backends.
type Backend struct {
	Store store.Store
	Pool  *pgxpool.Pool
	SQL   *sql.DB
}

func (b *Backend) Close() {
	if b.Pool != nil {
		b.Pool.Close()
	}
	if b.SQL != nil {
		b.SQL.Close()
	}
}

// Ping checks the database connection. The filesystem backend checks
// nothing.
func (b *Backend) Ping(ctx context.Context) error {
	switch {
	case b.Pool != nil:
		return b.Pool.Ping(ctx)
	case b.SQL != nil:
		return b.SQL.PingContext(ctx)
	}
	return nil
}

// OpenBackend opens the configured store and applies pending migrations.
func OpenBackend(ctx context.Context, cfg *config.Config, l *layout.Layout) (*Backend, error) {
	switch cfg.StoreBackend {
	case config.StorePostgres:
		if err := db.RunMigrations(cfg.DatabaseURL); err != nil {
			return nil, err
		}
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return &Backend{Store: store.NewPostgres(pool), Pool: pool}, nil

	case config.StoreSQLite:
		conn, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := db.RunSQLiteMigrations(conn); err != nil {
			conn.Close()
			return nil, err
		}
		return &Backend{Store: store.NewSQLite(conn), SQL: conn}, nil

	case config.StoreFilesystem:
		return &Backend{Store: store.NewFilesystem(l)}, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

// Open builds the service dependencies from configuration. The returned
// Backend must be closed on shutdown.
func Open(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (Deps, *Backend, error) {
	l, err := layout.New(cfg.ProjectRoot)
	if err != nil {
		return Deps{}, nil, err
	}
	if _, err := l.EnsureProjectRoot(); err != nil {
		return Deps{}, nil, err
	}

	backend, err := OpenBackend(ctx, cfg, l)
	if err != nil {
		return Deps{}, nil, err
	}

	exec := executor.NewCLI(logger, cfg.CommandTimeout)
	deps := Deps{
		Store:      backend.Store,
		Layout:     l,
		Exec:       exec,
		Reader:     docker.NewReader(exec, l, backend.Store, cfg.DockerBin, logger),
		Grouper:    grouping.NewGrouper(cfg.CollationLocale),
		Dispatcher: NewDispatcher(cfg.DockerBin),
		Logger:     logger,
	}
	logger.Info().
		Str("project_root", l.Root()).
		Str("store", cfg.StoreBackend).
		Msg("services ready")
	return deps, backend, nil
}
