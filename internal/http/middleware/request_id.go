package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-social-client/internal/transport"
)

// RequestID обеспечивает наличие X-Request-Id:
//  1. читает заголовок X-Request-Id, если есть;
//  2. иначе генерирует случайный hex id (32 символа);
//  3. кладёт id в Response Header, Request Header и в контекст по ключу
//     transport.CtxRequestID: оттуда его берёт исходящая цепочка к backend.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-Id")
			if id == "" {
				id = genID()
				r.Header.Set("X-Request-Id", id)
			}
			w.Header().Set("X-Request-Id", id)

			ctx := context.WithValue(r.Context(), transport.CtxRequestID, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func genID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
