// storage задаёт контракт долговременного хранилища клиентской сессии.
//
// Реализации хранят ровно одну запись на профиль и обязаны заменять её
// атомарно: читатель видит либо старую запись, либо новую целиком.
package storage

import (
	"context"
	"errors"

	"github.com/pribylovaa/go-social-client/internal/models"
)

var (
	// ErrNotFound — сохранённой сессии нет.
	ErrNotFound = errors.New("session not found")
	// ErrUnknownDriver — в конфигурации указан неизвестный драйвер.
	ErrUnknownDriver = errors.New("unknown storage driver")
)

//go:generate mockgen -source=storage.go -destination=../../mocks/backend_mock.go -package=mocks

// Backend — персистентный key/value слой под Credential Store.
type Backend interface {
	// Load возвращает сохранённую сессию или ErrNotFound.
	Load(ctx context.Context) (*models.StoredSession, error)
	// Save атомарно перезаписывает сессию.
	Save(ctx context.Context, s *models.StoredSession) error
	// Clear удаляет сессию; повторный вызов не является ошибкой.
	Clear(ctx context.Context) error
	// Close освобождает ресурсы драйвера.
	Close() error
}
