// Package postgres stores saved games in PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dicebound/internal/config"
)

// ErrSchemaMissing is returned by CheckSchema when the saves table has not
// been created. Run cmd/migrate first.
var ErrSchemaMissing = errors.New("postgres: saves table missing; run migrations")

// Pool is the save database: a pgx pool plus the checks the game needs
// before it trusts the saves table.
type Pool struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// Stats describes the save database at the time of a health check.
type Stats struct {
	TotalConns int32
	IdleConns  int32
	Saves      int
	Latency    time.Duration
}

// NewPool connects to the save database described by cfg.
//
// Precondition: cfg must contain valid database connection parameters;
// logger must be non-nil.
// Postcondition: Returns a pinged Pool or a non-nil error.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.ConnConfig.RuntimeParams["application_name"] = "dicebound"

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	start := time.Now()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging %s:%d/%s: %w", cfg.Host, cfg.Port, cfg.Name, err)
	}
	logger.Debug("save database reachable",
		zap.String("database", cfg.Name),
		zap.Int32("max_conns", cfg.MaxConns),
		zap.Duration("ping", time.Since(start)),
	)
	return &Pool{pool: pool, logger: logger}, nil
}

// CheckSchema verifies that the saves table exists.
//
// Postcondition: Returns ErrSchemaMissing when migrations have not run.
func (p *Pool) CheckSchema(ctx context.Context) error {
	var present bool
	err := p.pool.QueryRow(ctx, `SELECT to_regclass('saves') IS NOT NULL`).Scan(&present)
	if err != nil {
		return fmt.Errorf("checking saves table: %w", err)
	}
	if !present {
		return ErrSchemaMissing
	}
	return nil
}

// Health pings the database within timeout and reports pool and save counts.
//
// Precondition: The pool must not be closed and the schema must exist.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) (Stats, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	if err := p.pool.Ping(ctx); err != nil {
		return Stats{}, fmt.Errorf("pinging save database: %w", err)
	}
	st := p.pool.Stat()
	stats := Stats{
		TotalConns: st.TotalConns(),
		IdleConns:  st.IdleConns(),
		Latency:    time.Since(start),
	}
	if err := p.pool.QueryRow(ctx, `SELECT count(*) FROM saves`).Scan(&stats.Saves); err != nil {
		return Stats{}, fmt.Errorf("counting saves: %w", err)
	}
	p.logger.Debug("save database healthy",
		zap.Int("saves", stats.Saves),
		zap.Int32("conns", stats.TotalConns),
		zap.Duration("latency", stats.Latency),
	)
	return stats, nil
}

// Saves returns the repository for one save slot.
func (p *Pool) Saves(slot string) *SaveRepository {
	return NewSaveRepository(p.pool, slot)
}

// Close releases all pool resources.
func (p *Pool) Close() {
	p.pool.Close()
}

// DB returns the underlying pgxpool.Pool.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}
