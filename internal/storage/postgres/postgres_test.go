package postgres

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/pribylovaa/go-social-client/internal/models"
	"github.com/pribylovaa/go-social-client/internal/storage"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Интеграционные тесты поднимают postgres:16-alpine через testcontainers-go
// и применяют миграции из ./migrations.
//
// Запуск локально:
//   GO_TEST_INTEGRATION=1 go test ./internal/storage/postgres -v -race -count=1

func repoRootFromThisFile() string {
	// internal/storage/postgres/... -> подняться на 3 уровня до корня.
	_, thisFile, _, _ := runtime.Caller(0)
	return filepath.Clean(filepath.Join(filepath.Dir(thisFile), "..", "..", ".."))
}

func readMigration(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(repoRootFromThisFile(), "migrations", name)
	b, err := os.ReadFile(path)
	require.NoError(t, err, "read migration %s", path)
	return string(b)
}

// startPostgres возвращает DSN свежего контейнера; migrate=false оставляет БД пустой.
func startPostgres(t *testing.T, migrate bool) string {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		Env:          map[string]string{"POSTGRES_USER": "user", "POSTGRES_PASSWORD": "pass", "POSTGRES_DB": "db"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, _ := c.Host(ctx)
	port, _ := c.MappedPort(ctx, "5432/tcp")
	dsn := fmt.Sprintf("postgres://user:pass@%s:%s/db?sslmode=disable", host, port.Port())

	if migrate {
		pool, err := pgxpool.New(ctx, dsn)
		require.NoError(t, err)
		defer pool.Close()

		_, err = pool.Exec(ctx, readMigration(t, "1_init_client_sessions.up.sql"))
		require.NoError(t, err)
	}

	return dsn
}

func TestIntegration_SaveLoadClear(t *testing.T) {
	dsn := startPostgres(t, true)
	ctx := context.Background()

	b, err := New(ctx, dsn, "alice")
	require.NoError(t, err)
	defer b.Close()

	_, err = b.Load(ctx)
	require.ErrorIs(t, err, storage.ErrNotFound)

	in := &models.StoredSession{Access: "a1", Refresh: "r1", SubjectID: "1", SubjectName: "alice", AvatarRef: "/a.png"}
	require.NoError(t, b.Save(ctx, in))

	next := &models.StoredSession{Access: "a2", Refresh: "r2", SubjectID: "1", SubjectName: "alice"}
	require.NoError(t, b.Save(ctx, next))

	got, err := b.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, next, got)

	require.NoError(t, b.Clear(ctx))
	require.NoError(t, b.Clear(ctx))

	_, err = b.Load(ctx)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

// Новый пул над той же БД видит сессию, сохранённую предыдущим.
func TestIntegration_SurvivesReconnect(t *testing.T) {
	dsn := startPostgres(t, true)
	ctx := context.Background()

	b, err := New(ctx, dsn, "")
	require.NoError(t, err)
	require.NoError(t, b.Save(ctx, &models.StoredSession{Access: "a", Refresh: "r"}))
	require.NoError(t, b.Close())

	again, err := New(ctx, dsn, "default")
	require.NoError(t, err)
	defer again.Close()

	got, err := again.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "r", got.Refresh)
}

func TestIntegration_SchemaMissing(t *testing.T) {
	dsn := startPostgres(t, false)
	ctx := context.Background()

	b, err := New(ctx, dsn, "x")
	require.NoError(t, err)
	defer b.Close()

	_, err = b.Load(ctx)
	require.ErrorIs(t, err, ErrSchemaMissing)

	err = b.Save(ctx, &models.StoredSession{Access: "a", Refresh: "r"})
	require.ErrorIs(t, err, ErrSchemaMissing)
}

func TestIntegration_ContextCanceled(t *testing.T) {
	dsn := startPostgres(t, true)

	b, err := New(context.Background(), dsn, "x")
	require.NoError(t, err)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = b.Load(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
