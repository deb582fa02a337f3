package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/pribylovaa/go-social-client/internal/models"
	logctx "github.com/pribylovaa/go-social-client/internal/pkg/log"
	"github.com/pribylovaa/go-social-client/internal/pkg/redact"
)

// Login входит по email/паролю и сохраняет пару, перезаписывая прежнюю сессию.
func (s *Service) Login(ctx context.Context, cred models.Credentials) (models.Session, error) {
	const op = "service.Login"

	email, err := validateEmail(cred.Email)
	if err != nil {
		return models.Session{}, fmt.Errorf("%s: %w", op, err)
	}
	if cred.Password == "" {
		return models.Session{}, fmt.Errorf("%s: %w", op, ErrEmptyPassword)
	}
	cred.Email = email

	pair, err := s.auth.Login(ctx, cred)
	if err != nil {
		return models.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	return s.establish(ctx, op, pair, email)
}

// Register регистрирует пользователя; authclient сразу выполняет вход,
// полученная пара сохраняется как текущая сессия.
func (s *Service) Register(ctx context.Context, reg models.Registration) (models.Session, error) {
	const op = "service.Register"

	reg.Username = strings.TrimSpace(reg.Username)
	if reg.Username == "" {
		return models.Session{}, fmt.Errorf("%s: %w", op, ErrEmptyUsername)
	}

	email, err := validateEmail(reg.Email)
	if err != nil {
		return models.Session{}, fmt.Errorf("%s: %w", op, err)
	}
	if reg.Password == "" {
		return models.Session{}, fmt.Errorf("%s: %w", op, ErrEmptyPassword)
	}
	reg.Email = email

	pair, err := s.auth.Register(ctx, reg)
	if err != nil {
		return models.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	return s.establish(ctx, op, pair, email)
}

// Logout удаляет сессию целиком; без сессии — no-op.
func (s *Service) Logout(ctx context.Context) error {
	const op = "service.Logout"

	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	logctx.From(ctx).Info("logout")
	return nil
}

// Whoami — текущая сессия (IsAuthenticated=false, если входа нет).
func (s *Service) Whoami() models.Session {
	return s.store.Session()
}

func (s *Service) establish(ctx context.Context, op string, pair models.CredentialPair, email string) (models.Session, error) {
	if err := s.store.Save(ctx, pair); err != nil {
		return models.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	sess := s.store.Session()
	s.log.Info("session_established",
		slog.String("op", op),
		slog.String("email", redact.Email(email)),
		slog.String("user_id", sess.SubjectID),
	)

	return sess, nil
}

// validateEmail проверяет базовый формат email и обрезает пробелы снаружи.
func validateEmail(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", ErrInvalidEmail
	}

	if _, err := mail.ParseAddress(email); err != nil {
		return "", ErrInvalidEmail
	}

	return email, nil
}
