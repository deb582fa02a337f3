// transport — цепочка исходящих http.RoundTripper'ов клиента:
// метаданные (request id, user agent) → таймаут → логирование → сеть.
package transport

import (
	"net/http"
	"time"
)

type CtxKey string

// CtxRequestID — ключ контекста с id входящего запроса; его кладёт
// HTTP-мидлвар RequestID, а WithMetadata пробрасывает в X-Request-Id.
const CtxRequestID CtxKey = "request_id"

// Middleware оборачивает RoundTripper.
type Middleware func(http.RoundTripper) http.RoundTripper

// RoundTripperFunc — адаптер функции к http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// Chain применяет мидлвары в порядке перечисления: первый — самый внешний.
func Chain(rt http.RoundTripper, mws ...Middleware) http.RoundTripper {
	if rt == nil {
		rt = http.DefaultTransport
	}

	for i := len(mws) - 1; i >= 0; i-- {
		rt = mws[i](rt)
	}

	return rt
}

// Options — параметры стандартной цепочки.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	Base      http.RoundTripper
}

// New собирает стандартную цепочку поверх opts.Base (или http.DefaultTransport).
func New(opts Options, mws ...Middleware) http.RoundTripper {
	chain := append([]Middleware{
		WithMetadata(opts.UserAgent),
		WithTimeout(opts.Timeout),
	}, mws...)

	return Chain(opts.Base, chain...)
}
