package transport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	logctx "github.com/pribylovaa/go-social-client/internal/pkg/log"
)

// WithLogging — логирование исходящих запросов.
// Поведение:
//   - берёт X-Request-Id из запроса (или генерирует UUID и добавляет);
//   - прокладывает обогащённый логгер в контекст запроса;
//   - пишет одну финальную запись: msg="http_out", status (0 при сетевой ошибке), dur.
//
// Не логирует тело и заголовок Authorization.
func WithLogging(base *slog.Logger) Middleware {
	if base == nil {
		base = slog.Default()
	}

	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()

			rid := r.Header.Get("X-Request-Id")
			if rid == "" {
				rid = uuid.NewString()
				r = r.Clone(r.Context())
				r.Header.Set("X-Request-Id", rid)
			}

			l := base.With(
				slog.String("request_id", rid),
				slog.String("method", r.Method),
				slog.String("host", r.URL.Host),
				slog.String("path", r.URL.Path),
			)
			r = r.WithContext(logctx.Into(r.Context(), l))

			resp, err := next.RoundTrip(r)

			attrs := []slog.Attr{slog.Duration("dur", time.Since(start))}
			lvl := slog.LevelInfo
			if err != nil {
				attrs = append(attrs, slog.Int("status", 0), slog.Any("err", err))
				lvl = slog.LevelWarn
			} else {
				attrs = append(attrs, slog.Int("status", resp.StatusCode))
			}
			l.LogAttrs(r.Context(), lvl, "http_out", attrs...)

			return resp, err
		})
	}
}
