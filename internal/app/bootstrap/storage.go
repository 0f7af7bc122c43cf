package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"

	appconfig "github.com/wolfman30/prospect-pipeline/internal/config"
	"github.com/wolfman30/prospect-pipeline/internal/prospects"
	"github.com/wolfman30/prospect-pipeline/pkg/logging"
)

// Storage is the persistence behind the prospect store.
type Storage struct {
	Repository   prospects.Repository
	Events       prospects.EventLog
	HealthChecks map[string]func(ctx context.Context) error

	closers []func()
}

// Close releases database handles in reverse order of opening.
func (s *Storage) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// BuildStorage opens PostgreSQL when configured: database/sql for prospect
// records and a pgx pool for timelines. Otherwise everything stays in memory.
func BuildStorage(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*Storage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if !cfg.UsePostgres() {
		logger.Info("prospects stored in memory")
		return &Storage{
			Repository:   prospects.NewInMemoryRepository(),
			Events:       prospects.NewInMemoryEventLog(),
			HealthChecks: map[string]func(context.Context) error{},
		}, nil
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("bootstrap: DATABASE_URL is required for the postgres store")
	}

	s := &Storage{HealthChecks: map[string]func(context.Context) error{}}

	sqlDB, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: open postgres: %w", err)
	}
	s.closers = append(s.closers, func() { _ = sqlDB.Close() })
	if err := sqlDB.PingContext(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("bootstrap: ping postgres: %w", err)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("bootstrap: open pgx pool: %w", err)
	}
	s.closers = append(s.closers, pool.Close)

	s.Repository = prospects.NewPostgresRepository(sqlDB)
	s.Events = prospects.NewPostgresEventLog(pool)
	s.HealthChecks["postgres"] = sqlDB.PingContext
	logger.Info("prospects stored in postgres")
	return s, nil
}
