// file — Backend поверх JSON-файла в каталоге пользователя.
//
// Запись идёт во временный файл рядом с целевым, затем fsync и rename:
// на POSIX rename атомарен, поэтому после сбоя на диске остаётся либо
// старая сессия, либо новая целиком.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/pribylovaa/go-social-client/internal/models"
	"github.com/pribylovaa/go-social-client/internal/storage"
)

const filePerm = 0o600

type Backend struct {
	path string
	mu   sync.Mutex
}

// New создаёт каталог под файл сессии (0700), сам файл не трогает.
func New(path string) (*Backend, error) {
	const op = "storage.file.New"

	if path == "" {
		return nil, fmt.Errorf("%s: empty path", op)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Backend{path: path}, nil
}

func (b *Backend) Load(_ context.Context) (*models.StoredSession, error) {
	const op = "storage.file.Load"

	b.mu.Lock()
	defer b.mu.Unlock()

	raw, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, storage.ErrNotFound
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var rec models.StoredSession
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}

	if rec.Access == "" && rec.Refresh == "" {
		return nil, storage.ErrNotFound
	}

	return &rec, nil
}

func (b *Backend) Save(_ context.Context, s *models.StoredSession) error {
	const op = "storage.file.Save"

	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("%s: encode: %w", op, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(b.path), ".session-*.tmp")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	tmpName := tmp.Name()

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if err := tmp.Chmod(filePerm); err != nil {
		cleanup()
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := tmp.Write(raw); err != nil {
		cleanup()
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := os.Rename(tmpName, b.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (b *Backend) Clear(_ context.Context) error {
	const op = "storage.file.Clear"

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := os.Remove(b.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (b *Backend) Close() error { return nil }

var _ storage.Backend = (*Backend)(nil)
