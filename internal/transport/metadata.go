package transport

import "net/http"

// WithMetadata добавляет в исходящий запрос заголовки:
//   - X-Request-Id (если есть в контексте и не задан явно);
//   - User-Agent (если передан параметром).
//
// Исходный запрос не меняется: RoundTripper обязан работать с копией.
func WithMetadata(userAgent string) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			rid, _ := r.Context().Value(CtxRequestID).(string)
			setRID := rid != "" && r.Header.Get("X-Request-Id") == ""

			if !setRID && userAgent == "" {
				return next.RoundTrip(r)
			}

			r = r.Clone(r.Context())
			if setRID {
				r.Header.Set("X-Request-Id", rid)
			}
			if userAgent != "" {
				r.Header.Set("User-Agent", userAgent)
			}

			return next.RoundTrip(r)
		})
	}
}
