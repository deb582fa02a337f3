// http собирает локальный прокси сессии: эндпойнты входа/выхода и
// проксирование /api/* на backend через gateway.
package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/go-social-client/internal/http/handlers"
	"github.com/pribylovaa/go-social-client/internal/http/middleware"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger   *slog.Logger
	Timeout  time.Duration
	BasePath string // например, "/v1"; если пустой — роуты регистрируются на корне.
	// Target — базовый URL backend для /api/*.
	Target *url.URL
	// Gateway — транспорт с bearer-токеном и обновлением сессии.
	Gateway http.RoundTripper
	// Guard пропускает на /api/* только при наличии сессии.
	Guard middleware.Guard
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(auth handlers.Auth, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout))
	}

	h := handlers.New(auth)

	if opts.BasePath != "" {
		sub := chi.NewRouter()
		registerRoutes(sub, h, opts)
		root.Mount(opts.BasePath, sub)
		return root
	}

	registerRoutes(root, h, opts)
	return root
}

// registerRoutes — единая точка регистрации всех эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers, opts Options) {
	// auth
	r.Post("/auth/login", h.Login)
	r.Post("/auth/register", h.Register)
	r.Post("/auth/logout", h.Logout)
	r.Get("/auth/session", h.Session)

	// api
	if opts.Target == nil || opts.Gateway == nil {
		return
	}

	r.Group(func(r chi.Router) {
		if opts.Guard != nil {
			r.Use(middleware.RequireSession(opts.Guard))
		}
		r.Handle("/api/*", apiHandler(opts))
	})
}

// apiHandler срезает префикс /api (с учётом BasePath) и проксирует остаток.
func apiHandler(opts Options) http.Handler {
	return http.StripPrefix(opts.BasePath+"/api", handlers.NewProxy(opts.Target, opts.Gateway))
}
