package middleware

import (
	"net/http"

	apierrors "github.com/pribylovaa/go-social-client/internal/errors"
	"github.com/pribylovaa/go-social-client/internal/gateway"
)

// Guard — решение о допуске на защищённые маршруты.
type Guard interface {
	IsPermitted() bool
}

// RequireSession пропускает запрос дальше только при наличии сессии.
// Иначе отвечает 401/unauthenticated, не обращаясь к backend.
func RequireSession(g Guard) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !g.IsPermitted() {
				apierrors.WriteError(w, r, gateway.ErrUnauthenticated)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
