// memory — эфемерный Backend без персистентности (для тестов и драйвера "memory").
package memory

import (
	"context"
	"sync"

	"github.com/pribylovaa/go-social-client/internal/models"
	"github.com/pribylovaa/go-social-client/internal/storage"
)

type Backend struct {
	mu  sync.Mutex
	rec *models.StoredSession
}

func New() *Backend { return &Backend{} }

func (b *Backend) Load(_ context.Context) (*models.StoredSession, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.rec == nil {
		return nil, storage.ErrNotFound
	}

	cp := *b.rec
	return &cp, nil
}

func (b *Backend) Save(_ context.Context, s *models.StoredSession) error {
	cp := *s

	b.mu.Lock()
	b.rec = &cp
	b.mu.Unlock()

	return nil
}

func (b *Backend) Clear(_ context.Context) error {
	b.mu.Lock()
	b.rec = nil
	b.mu.Unlock()

	return nil
}

func (b *Backend) Close() error { return nil }

var _ storage.Backend = (*Backend)(nil)
