// app связывает компоненты клиента по конфигурации: хранилище сессии,
// исходящую HTTP-цепочку, authclient, gateway, сценарии входа и
// локальный прокси.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pribylovaa/go-social-client/internal/api"
	"github.com/pribylovaa/go-social-client/internal/authclient"
	"github.com/pribylovaa/go-social-client/internal/config"
	"github.com/pribylovaa/go-social-client/internal/gateway"
	gwhttp "github.com/pribylovaa/go-social-client/internal/http"
	"github.com/pribylovaa/go-social-client/internal/service"
	"github.com/pribylovaa/go-social-client/internal/session"
	"github.com/pribylovaa/go-social-client/internal/storage"
	"github.com/pribylovaa/go-social-client/internal/storage/file"
	"github.com/pribylovaa/go-social-client/internal/storage/memory"
	"github.com/pribylovaa/go-social-client/internal/storage/postgres"
	"github.com/pribylovaa/go-social-client/internal/storage/redis"
	"github.com/pribylovaa/go-social-client/internal/transport"
)

// App агрегирует собранные компоненты одного профиля.
type App struct {
	Store   *session.Store
	Auth    *authclient.Client
	Gateway *gateway.Gateway
	Service *service.Service
	API     *api.Client
	Guard   *session.Guard

	target *url.URL
	log    *slog.Logger
	cfg    config.Config
}

// New открывает хранилище, загружает сохранённую сессию и собирает клиентов.
// reg может быть nil: тогда метрики gateway не регистрируются.
func New(ctx context.Context, cfg config.Config, log *slog.Logger, reg prometheus.Registerer) (*App, error) {
	const op = "app.New"

	if log == nil {
		log = slog.Default()
	}

	target, err := url.Parse(cfg.Backend.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%s: backend url: %w", op, err)
	}

	backend, err := OpenBackend(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	store, err := session.NewStore(ctx, backend, log)
	if err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Исходящая цепочка: metadata -> timeout -> logging.
	rt := transport.New(transport.Options{
		UserAgent: cfg.Backend.UserAgent,
		Timeout:   cfg.Timeouts.Request,
	}, transport.WithLogging(log))

	auth, err := authclient.New(authclient.Options{
		BaseURL:    cfg.Backend.BaseURL,
		HTTPClient: &http.Client{Transport: rt},
		Logger:     log,
	})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var metrics *gateway.Metrics
	if reg != nil {
		metrics = gateway.NewMetrics(reg)
	}

	gw, err := gateway.New(gateway.Options{
		Store:          store,
		Renewer:        auth,
		Transport:      rt,
		BaseURL:        cfg.Backend.BaseURL,
		RenewalWindow:  cfg.Session.RenewalWindow,
		RefreshTimeout: cfg.Session.RefreshTimeout,
		Logger:         log,
		Metrics:        metrics,
	})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &App{
		Store:   store,
		Auth:    auth,
		Gateway: gw,
		Service: service.New(auth, store, log),
		API:     api.New(gw),
		Guard:   session.NewGuard(store),
		target:  target,
		log:     log,
		cfg:     cfg,
	}, nil
}

// Router — локальный прокси сессии поверх собранных компонентов.
func (a *App) Router() http.Handler {
	return gwhttp.NewRouter(a.Service, gwhttp.Options{
		Logger:  a.log,
		Timeout: a.cfg.Timeouts.Request,
		Target:  a.target,
		Gateway: a.Gateway,
		Guard:   a.Guard,
	})
}

// Close закрывает хранилище сессии.
func (a *App) Close() error {
	return a.Store.Close()
}

// OpenBackend открывает хранилище сессии по имени драйвера.
func OpenBackend(ctx context.Context, cfg config.StorageConfig) (storage.Backend, error) {
	const op = "app.OpenBackend"

	var (
		b   storage.Backend
		err error
	)

	switch cfg.Driver {
	case "memory":
		b = memory.New()
	case "file", "":
		b, err = file.New(cfg.Path)
	case "redis":
		b, err = redis.New(ctx, cfg.RedisURL, cfg.RedisPrefix, cfg.Profile)
	case "postgres":
		b, err = postgres.New(ctx, cfg.DatabaseURL, cfg.Profile)
	default:
		return nil, fmt.Errorf("%s: %w: %q", op, storage.ErrUnknownDriver, cfg.Driver)
	}

	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, cfg.Driver, err)
	}

	return b, nil
}
