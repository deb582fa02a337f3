package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pribylovaa/go-social-client/internal/models"
	"github.com/pribylovaa/go-social-client/internal/storage"
	"github.com/stretchr/testify/require"
)

func sample() *models.StoredSession {
	return &models.StoredSession{
		Access:      "access-1",
		Refresh:     "refresh-1",
		SubjectID:   "42",
		SubjectName: "ana",
		AvatarRef:   "/media/ana.png",
	}
}

func TestBackend_LoadEmpty_NotFound(t *testing.T) {
	t.Parallel()

	b, err := New(filepath.Join(t.TempDir(), "nested", "session.json"))
	require.NoError(t, err)

	_, err = b.Load(context.Background())
	require.ErrorIs(t, err, storage.ErrNotFound)
}

// Новый экземпляр над тем же файлом видит сохранённую сессию (переживает перезапуск).
func TestBackend_SaveLoad_SurvivesReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.json")
	ctx := context.Background()

	b, err := New(path)
	require.NoError(t, err)
	require.NoError(t, b.Save(ctx, sample()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(filePerm), info.Mode().Perm())

	reopened, err := New(path)
	require.NoError(t, err)

	got, err := reopened.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, sample(), got)
}

func TestBackend_SaveOverwrites_NoTempLeftovers(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "session.json")
	ctx := context.Background()

	b, err := New(path)
	require.NoError(t, err)
	require.NoError(t, b.Save(ctx, sample()))

	next := sample()
	next.Access, next.Refresh = "access-2", "refresh-2"
	require.NoError(t, b.Save(ctx, next))

	got, err := b.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "access-2", got.Access)
	require.Equal(t, "refresh-2", got.Refresh)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestBackend_Clear_Idempotent(t *testing.T) {
	t.Parallel()

	b, err := New(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, b.Save(ctx, sample()))
	require.NoError(t, b.Clear(ctx))
	require.NoError(t, b.Clear(ctx))

	_, err = b.Load(ctx)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestBackend_Load_CorruptedFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))

	b, err := New(path)
	require.NoError(t, err)

	_, err = b.Load(context.Background())
	require.Error(t, err)
	require.NotErrorIs(t, err, storage.ErrNotFound)
}

func TestNew_EmptyPath(t *testing.T) {
	t.Parallel()

	_, err := New("")
	require.Error(t, err)
}
