package kv

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quantedge/quantedge/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupPostgres starts a throwaway PostgreSQL container. The test is skipped
// in short mode or when no container runtime is available.
func setupPostgres(t *testing.T) *Postgres {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	store, err := NewPostgres(ctx, dsn, "")
	require.NoError(t, err, "failed to create store")
	t.Cleanup(func() { store.Close() })

	return store
}

func TestPostgres_SetGetOverwrite(t *testing.T) {
	store := setupPostgres(t)
	ctx := context.Background()

	_, err := store.Get(ctx, "simulationSettings")
	assert.True(t, errors.Is(err, core.ErrNotFound))

	require.NoError(t, store.Set(ctx, "simulationSettings", []byte(`{"asset":1}`)))
	require.NoError(t, store.Set(ctx, "simulationSettings", []byte(`{"asset":2}`)))

	got, err := store.Get(ctx, "simulationSettings")
	require.NoError(t, err)
	assert.Equal(t, `{"asset":2}`, string(got))

	require.NoError(t, store.Delete(ctx, "simulationSettings"))
	_, err = store.Get(ctx, "simulationSettings")
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestNewPostgres_RejectsTableName(t *testing.T) {
	_, err := NewPostgres(context.Background(), "postgres://localhost/db", "kv; DROP TABLE users")
	assert.Error(t, err)
}
