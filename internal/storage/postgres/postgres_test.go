package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dicebound/internal/config"
	"github.com/cory-johannsen/dicebound/internal/storage/postgres"
	"github.com/cory-johannsen/dicebound/internal/testutil"
)

func TestPool(t *testing.T) {
	pc := testutil.NewPostgresContainer(t)
	ctx := context.Background()

	t.Run("schema missing before migrations", func(t *testing.T) {
		assert.ErrorIs(t, pc.Pool.CheckSchema(ctx), postgres.ErrSchemaMissing)
	})

	pc.ApplyMigrations(t)

	t.Run("schema present after migrations", func(t *testing.T) {
		assert.NoError(t, pc.Pool.CheckSchema(ctx))
	})

	t.Run("health counts saves", func(t *testing.T) {
		pc.Truncate(t)
		stats, err := pc.Pool.Health(ctx, 2*time.Second)
		require.NoError(t, err)
		assert.Equal(t, 0, stats.Saves)
		assert.Positive(t, stats.TotalConns)

		require.NoError(t, pc.Pool.Saves("alpha").Save(ctx, newSnapshot(t, 1)))
		require.NoError(t, pc.Pool.Saves("beta").Save(ctx, newSnapshot(t, 2)))
		stats, err = pc.Pool.Health(ctx, 2*time.Second)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.Saves)
	})

	t.Run("saves binds the slot", func(t *testing.T) {
		assert.Equal(t, "gamma", pc.Pool.Saves("gamma").Slot())
	})
}

func TestNewPoolUnreachable(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping connection attempt in short mode")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := postgres.NewPool(ctx, config.DatabaseConfig{
		Host:     "127.0.0.1",
		Port:     1,
		User:     "nobody",
		Name:     "nothing",
		SSLMode:  "disable",
		MaxConns: 1,
	}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "127.0.0.1:1/nothing")
}
