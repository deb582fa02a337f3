// service содержит сценарии входа/регистрации/выхода клиента.
//
// Только этот слой (и gateway при обновлении) меняет хранилище сессии:
// authclient лишь возвращает пары токенов. Service не хранит состояние
// запроса и безопасен для конкурентного использования.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/pribylovaa/go-social-client/internal/models"
)

var (
	// ErrInvalidEmail — e-mail пустой или не разбирается. Транспорт: HTTP 400.
	ErrInvalidEmail = errors.New("invalid email format")
	// ErrEmptyPassword — пароль пустой. Транспорт: HTTP 400.
	ErrEmptyPassword = errors.New("password is empty")
	// ErrEmptyUsername — имя пользователя пустое. Транспорт: HTTP 400.
	ErrEmptyUsername = errors.New("username is empty")
)

//go:generate mockgen -source=service.go -destination=../../mocks/auth_client_mock.go -package=mocks

// AuthClient — вызовы backend без access-токена.
type AuthClient interface {
	Login(ctx context.Context, cred models.Credentials) (models.CredentialPair, error)
	Register(ctx context.Context, reg models.Registration) (models.CredentialPair, error)
}

// SessionStore — хранилище сессии процесса.
type SessionStore interface {
	Save(ctx context.Context, pair models.CredentialPair) error
	Clear(ctx context.Context) error
	Session() models.Session
}

type Service struct {
	auth  AuthClient
	store SessionStore
	log   *slog.Logger
}

func New(auth AuthClient, store SessionStore, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}

	return &Service{auth: auth, store: store, log: log}
}
