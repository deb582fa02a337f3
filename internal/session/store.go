// session хранит текущую пару токенов процесса и отдаёт её производное
// представление (Session) маршрутному guard'у.
//
// Store — единственный экземпляр на процесс, передаётся явно. Память
// авторитетна: сначала меняется пара в памяти, затем снимок пишется в
// storage.Backend. Порядок записей в backend совпадает с порядком смен в памяти.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pribylovaa/go-social-client/internal/credential"
	"github.com/pribylovaa/go-social-client/internal/models"
	"github.com/pribylovaa/go-social-client/internal/pkg/redact"
	"github.com/pribylovaa/go-social-client/internal/storage"
)

// ErrIncompletePair — в паре нет access или refresh.
var ErrIncompletePair = errors.New("credential pair is incomplete")

type Store struct {
	mu  sync.RWMutex
	rec *models.StoredSession

	// persistMu упорядочивает записи в backend; берётся до отпускания mu.
	persistMu sync.Mutex
	backend   storage.Backend
	log       *slog.Logger

	subsMu sync.Mutex
	subs   map[chan models.Session]struct{}
}

// NewStore поднимает сохранённую сессию из backend.
// Отсутствие записи — не ошибка: стартуем неаутентифицированными.
func NewStore(ctx context.Context, backend storage.Backend, log *slog.Logger) (*Store, error) {
	const op = "session.NewStore"

	if log == nil {
		log = slog.Default()
	}

	s := &Store{
		backend: backend,
		log:     log,
		subs:    make(map[chan models.Session]struct{}),
	}

	rec, err := backend.Load(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		log.Debug("session_load_empty")
	case err != nil:
		return nil, fmt.Errorf("%s: %w", op, err)
	case rec.Access == "" || rec.Refresh == "":
		log.Warn("session_load_incomplete")
		if err := backend.Clear(ctx); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	default:
		s.rec = rec
		log.Info("session_loaded",
			slog.String("user_id", rec.SubjectID),
			slog.String("refresh", redact.Token(rec.Refresh)),
		)
	}

	return s, nil
}

// Current возвращает текущую пару; ok=false, если сессии нет.
func (s *Store) Current() (models.CredentialPair, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.rec == nil {
		return models.CredentialPair{}, false
	}

	return s.rec.Pair(), true
}

// Session — read-only представление для guard'а и UI.
func (s *Store) Session() models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return sessionOf(s.rec)
}

// Save декодирует identity из access и перезаписывает любую прежнюю сессию.
func (s *Store) Save(ctx context.Context, pair models.CredentialPair) error {
	const op = "session.Store.Save"

	rec, err := record(pair)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	s.rec = rec
	return s.commit(ctx, op, rec)
}

// Clear удаляет всё; повторный вызов безопасен.
func (s *Store) Clear(ctx context.Context) error {
	const op = "session.Store.Clear"

	s.mu.Lock()
	s.rec = nil
	return s.commit(ctx, op, nil)
}

// Replace сохраняет fresh, только если в хранилище всё ещё stale.
// replaced=false значит, что пару уже заменили или очистили другие.
func (s *Store) Replace(ctx context.Context, stale, fresh models.CredentialPair) (bool, error) {
	const op = "session.Store.Replace"

	rec, err := record(fresh)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	if s.rec == nil || s.rec.Pair() != stale {
		s.mu.Unlock()
		return false, nil
	}

	s.rec = rec
	return true, s.commit(ctx, op, rec)
}

// Invalidate очищает хранилище, только если в нём всё ещё stale.
func (s *Store) Invalidate(ctx context.Context, stale models.CredentialPair) (bool, error) {
	const op = "session.Store.Invalidate"

	s.mu.Lock()
	if s.rec == nil || s.rec.Pair() != stale {
		s.mu.Unlock()
		return false, nil
	}

	s.rec = nil
	return true, s.commit(ctx, op, nil)
}

// Subscribe возвращает канал переходов сессии. В канале всегда лежит
// последнее состояние: медленный подписчик пропускает промежуточные.
func (s *Store) Subscribe() (<-chan models.Session, func()) {
	ch := make(chan models.Session, 1)

	s.subsMu.Lock()
	s.subs[ch] = struct{}{}
	s.subsMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, ch)
			s.subsMu.Unlock()
			close(ch)
		})
	}

	return ch, cancel
}

// Close освобождает backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// commit вызывается под s.mu (write): отпускает его и пишет снимок в backend.
func (s *Store) commit(ctx context.Context, op string, rec *models.StoredSession) error {
	s.persistMu.Lock()
	view := sessionOf(rec)
	s.mu.Unlock()
	defer s.persistMu.Unlock()

	s.publish(view)

	var err error
	if rec == nil {
		err = s.backend.Clear(ctx)
	} else {
		err = s.backend.Save(ctx, rec)
	}

	if err != nil {
		s.log.Error("session_persist_failed", slog.String("op", op), slog.Any("err", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if rec == nil {
		s.log.Info("session_cleared")
	} else {
		s.log.Info("session_saved",
			slog.String("user_id", rec.SubjectID),
			slog.String("refresh", redact.Token(rec.Refresh)),
		)
	}

	return nil
}

func (s *Store) publish(view models.Session) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	for ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- view
	}
}

func record(pair models.CredentialPair) (*models.StoredSession, error) {
	if pair.Access == "" || pair.Refresh == "" {
		return nil, ErrIncompletePair
	}

	claims, err := credential.Decode(pair.Access)
	if err != nil {
		return nil, err
	}

	return &models.StoredSession{
		Access:      pair.Access,
		Refresh:     pair.Refresh,
		SubjectID:   claims.SubjectID,
		SubjectName: claims.SubjectName,
		AvatarRef:   claims.AvatarRef,
	}, nil
}

func sessionOf(rec *models.StoredSession) models.Session {
	if rec == nil {
		return models.Session{}
	}

	return models.Session{
		SubjectID:       rec.SubjectID,
		SubjectName:     rec.SubjectName,
		AvatarRef:       rec.AvatarRef,
		IsAuthenticated: true,
	}
}
