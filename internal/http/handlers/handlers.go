package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	apierrors "github.com/pribylovaa/go-social-client/internal/errors"
	"github.com/pribylovaa/go-social-client/internal/models"
)

// Auth — сценарии сессии, которые обслуживает локальный прокси.
type Auth interface {
	Login(ctx context.Context, cred models.Credentials) (models.Session, error)
	Register(ctx context.Context, reg models.Registration) (models.Session, error)
	Logout(ctx context.Context) error
	Whoami() models.Session
}

// Handlers агрегирует зависимости хендлеров.
type Handlers struct {
	Auth Auth
}

func New(a Auth) *Handlers {
	return &Handlers{Auth: a}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(value); err != nil {
		return fmt.Errorf("%w: %v", apierrors.ErrBadRequest, err)
	}
	return nil
}
