package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/pribylovaa/go-social-client/internal/models"
	"github.com/pribylovaa/go-social-client/internal/storage"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrSchemaMissing — таблица client_sessions не создана (миграции не применены).
var ErrSchemaMissing = errors.New("client_sessions table is missing")

// Backend хранит сессию профиля одной строкой в таблице client_sessions.
type Backend struct {
	db      *pgxpool.Pool
	profile string
}

// New создает новое подключение к PostgreSQL.
func New(ctx context.Context, dbURL, profile string) (*Backend, error) {
	const op = "storage.postgres.New"

	if profile == "" {
		profile = "default"
	}

	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Backend{db: db, profile: profile}, nil
}

func (b *Backend) Load(ctx context.Context) (*models.StoredSession, error) {
	const op = "storage.postgres.Load"

	query := `
		SELECT access_token, refresh_token, user_id, username, avatar
		FROM client_sessions
		WHERE profile = $1
	`

	var s models.StoredSession
	err := b.db.QueryRow(ctx, query, b.profile).Scan(
		&s.Access,
		&s.Refresh,
		&s.SubjectID,
		&s.SubjectName,
		&s.AvatarRef,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}

		return nil, fmt.Errorf("%s: %w", op, mapErr(err))
	}

	return &s, nil
}

// Save делает upsert: строка профиля заменяется одной командой.
func (b *Backend) Save(ctx context.Context, s *models.StoredSession) error {
	const op = "storage.postgres.Save"

	query := `
		INSERT INTO client_sessions(profile, access_token, refresh_token, user_id, username, avatar, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (profile) DO UPDATE SET
			access_token  = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			user_id       = EXCLUDED.user_id,
			username      = EXCLUDED.username,
			avatar        = EXCLUDED.avatar,
			updated_at    = EXCLUDED.updated_at
	`

	_, err := b.db.Exec(ctx, query,
		b.profile,
		s.Access,
		s.Refresh,
		s.SubjectID,
		s.SubjectName,
		s.AvatarRef,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapErr(err))
	}

	return nil
}

func (b *Backend) Clear(ctx context.Context) error {
	const op = "storage.postgres.Clear"

	if _, err := b.db.Exec(ctx, `DELETE FROM client_sessions WHERE profile = $1`, b.profile); err != nil {
		return fmt.Errorf("%s: %w", op, mapErr(err))
	}

	return nil
}

// Close закрывает пул соединений.
func (b *Backend) Close() error {
	b.db.Close()
	return nil
}

func mapErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UndefinedTable {
		return ErrSchemaMissing
	}

	return err
}

// Проверка на соответствие интерфейсу Backend.
var _ storage.Backend = (*Backend)(nil)
