package handlers

import (
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"

	apierrors "github.com/pribylovaa/go-social-client/internal/errors"
	logctx "github.com/pribylovaa/go-social-client/internal/pkg/log"
)

// NewProxy проксирует запрос на backend через rt (gateway).
// Заголовок Authorization клиента отбрасывается: bearer ставит gateway
// из текущей сессии. Ошибки gateway отдаются унифицированным JSON.
func NewProxy(target *url.URL, rt http.RoundTripper) http.Handler {
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.Out.Host = target.Host
			pr.Out.Header.Del("Authorization")
			pr.Out.Header.Del("Cookie")
		},
		Transport: rt,
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logctx.From(r.Context()).Warn("proxy_failed",
				slog.String("path", r.URL.Path),
				slog.String("err", err.Error()),
			)
			apierrors.WriteError(w, r, err)
		},
	}
}
