// gateway превращает обычный http.RoundTripper в аутентифицированный:
// подставляет access-токен, заранее (по времени) обновляет пару и
// переводит сессию в неаутентифицированное состояние, если обновить не вышло.
//
// Обновление одно на поколение пары: все вызовы, увидевшие истекающий
// access с одним и тем же refresh, ждут один сетевой вызов (singleflight).
// Реакции на 401 нет: обновление только проактивное.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pribylovaa/go-social-client/internal/credential"
	"github.com/pribylovaa/go-social-client/internal/models"
	logctx "github.com/pribylovaa/go-social-client/internal/pkg/log"
	"github.com/pribylovaa/go-social-client/internal/pkg/redact"
)

const (
	DefaultRenewalWindow  = 5 * time.Minute
	DefaultRefreshTimeout = 10 * time.Second
)

// CredentialStore — операции хранилища, нужные gateway.
type CredentialStore interface {
	Current() (models.CredentialPair, bool)
	Replace(ctx context.Context, stale, fresh models.CredentialPair) (bool, error)
	Invalidate(ctx context.Context, stale models.CredentialPair) (bool, error)
}

// Renewer выпускает новую пару по refresh-токену.
type Renewer interface {
	Renew(ctx context.Context, refresh string) (models.CredentialPair, error)
}

type Options struct {
	Store   CredentialStore
	Renewer Renewer
	// Transport — исходящая цепочка; по умолчанию http.DefaultTransport.
	Transport http.RoundTripper
	// BaseURL — относительные пути запросов разрешаются от него.
	BaseURL        string
	RenewalWindow  time.Duration
	RefreshTimeout time.Duration
	Logger         *slog.Logger
	Metrics        *Metrics
	// Now подменяется в тестах.
	Now func() time.Time
}

type Gateway struct {
	store     CredentialStore
	renewer   Renewer
	transport http.RoundTripper
	base      *url.URL
	window    time.Duration
	timeout   time.Duration
	log       *slog.Logger
	metrics   *Metrics
	now       func() time.Time

	group singleflight.Group
}

func New(opts Options) (*Gateway, error) {
	const op = "gateway.New"

	if opts.Store == nil || opts.Renewer == nil {
		return nil, fmt.Errorf("%s: store and renewer are required", op)
	}

	g := &Gateway{
		store:     opts.Store,
		renewer:   opts.Renewer,
		transport: opts.Transport,
		window:    opts.RenewalWindow,
		timeout:   opts.RefreshTimeout,
		log:       opts.Logger,
		metrics:   opts.Metrics,
		now:       opts.Now,
	}

	if opts.BaseURL != "" {
		base, err := url.Parse(opts.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if !strings.HasSuffix(base.Path, "/") {
			base.Path += "/"
		}
		g.base = base
	}

	if g.transport == nil {
		g.transport = http.DefaultTransport
	}
	if g.window <= 0 {
		g.window = DefaultRenewalWindow
	}
	if g.timeout <= 0 {
		g.timeout = DefaultRefreshTimeout
	}
	if g.log == nil {
		g.log = slog.Default()
	}
	if g.now == nil {
		g.now = time.Now
	}

	return g, nil
}

// RoundTrip позволяет использовать Gateway как http.Client.Transport.
func (g *Gateway) RoundTrip(req *http.Request) (*http.Response, error) {
	return g.Dispatch(req)
}

// Dispatch отправляет запрос с актуальным access-токеном.
//
// Ошибки:
//   - ErrUnauthenticated — сессии нет или access не разбирается;
//   - ErrSessionExpired / ErrRefreshTimeout — обновление не удалось;
//   - ctx.Err() — вызывающий отменил свой контекст, ожидая обновления;
//   - ошибки транспорта возвращаются как есть, не-2xx ответы не трогаются.
func (g *Gateway) Dispatch(req *http.Request) (*http.Response, error) {
	const op = "gateway.Dispatch"

	ctx := req.Context()

	access, err := g.Access(ctx)
	if err != nil {
		g.metrics.dispatch(outcomeOf(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := req.Clone(ctx)
	if g.base != nil && !out.URL.IsAbs() {
		out.URL = g.base.ResolveReference(out.URL)
		out.Host = ""
	}
	out.Header.Set("Authorization", "Bearer "+access)

	resp, err := g.transport.RoundTrip(out)
	if err != nil {
		g.metrics.dispatch(outcomeTransportError)
		return nil, err
	}

	g.metrics.dispatch(outcomeOK)
	return resp, nil
}

// Access возвращает access-токен, пригодный для запроса прямо сейчас,
// при необходимости дождавшись обновления пары.
func (g *Gateway) Access(ctx context.Context) (string, error) {
	pair, ok := g.store.Current()
	if !ok {
		return "", ErrUnauthenticated
	}

	claims, err := credential.Decode(pair.Access)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	if claims.ExpiresAt.Sub(g.now()) >= g.window {
		return pair.Access, nil
	}

	return g.awaitRenewal(ctx, pair)
}

// awaitRenewal присоединяется к обновлению поколения stale (или запускает его)
// и ждёт результат. Отмена ctx освобождает только этого вызывающего.
func (g *Gateway) awaitRenewal(ctx context.Context, stale models.CredentialPair) (string, error) {
	// Обновление живёт дольше вызвавшего: значения контекста (логгер,
	// request id) сохраняются, отмена и дедлайн — нет.
	detached := context.WithoutCancel(ctx)

	ch := g.group.DoChan(stale.Refresh, func() (any, error) {
		return nil, g.renew(detached, stale)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
	}

	// Каждый ожидающий сам перечитывает хранилище: берётся самая свежая пара.
	pair, ok := g.store.Current()
	if !ok {
		return "", ErrUnauthenticated
	}
	if _, err := credential.Decode(pair.Access); err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	return pair.Access, nil
}

// renew — тело единственного обновления поколения stale.
func (g *Gateway) renew(parent context.Context, stale models.CredentialPair) error {
	l := logctx.From(parent).With(slog.String("refresh", redact.Token(stale.Refresh)))

	cur, ok := g.store.Current()
	if !ok {
		return ErrUnauthenticated
	}
	if cur != stale {
		// Поколение уже сменилось (обновили или перелогинились).
		return nil
	}

	ctx, cancel := context.WithTimeout(parent, g.timeout)
	defer cancel()

	l.Debug("renewal_started")
	start := time.Now()

	fresh, err := g.renewer.Renew(ctx, cur.Refresh)
	if err == nil {
		var replaced bool
		replaced, err = g.store.Replace(ctx, cur, fresh)
		if replaced && err != nil {
			// Память уже обновлена, не сохранилось только на диск/в БД.
			l.Warn("renewal_persist_failed", slog.Any("err", err))
			err = nil
		}
	}

	dur := time.Since(start)
	if err == nil {
		g.metrics.renewal("ok", dur)
		l.Info("renewal_succeeded", slog.Duration("dur", dur))
		return nil
	}

	failure := classify(err)
	g.metrics.renewal(resultOf(failure), dur)
	l.Warn("renewal_failed", slog.Duration("dur", dur), slog.Any("err", err))

	ictx, icancel := context.WithTimeout(parent, g.timeout)
	defer icancel()
	if _, ierr := g.store.Invalidate(ictx, cur); ierr != nil {
		l.Error("session_invalidate_failed", slog.Any("err", ierr))
	}

	return failure
}

func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrRefreshTimeout, err)
	}

	return fmt.Errorf("%w: %w", ErrSessionExpired, err)
}

func resultOf(failure error) string {
	if errors.Is(failure, ErrRefreshTimeout) {
		return "timeout"
	}

	return "failed"
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return outcomeUnauthenticated
	case errors.Is(err, ErrRefreshTimeout):
		return outcomeRefreshTimeout
	case errors.Is(err, ErrSessionExpired):
		return outcomeSessionExpired
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return outcomeCanceled
	default:
		return outcomeTransportError
	}
}
