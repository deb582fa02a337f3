package transport

import (
	"context"
	"io"
	"net/http"
	"time"
)

// WithTimeout навешивает таймаут d на исходящий запрос, если у контекста
// ещё нет дедлайна. Контракт как у серверного Timeout:
//  1. d <= 0 — запрос уходит как есть;
//  2. у ctx уже есть deadline — он не переопределяется;
//  3. иначе ctx оборачивается context.WithTimeout; cancel вызывается
//     при ошибке или при закрытии тела ответа.
func WithTimeout(d time.Duration) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		if d <= 0 {
			return next
		}

		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if _, ok := r.Context().Deadline(); ok {
				return next.RoundTrip(r)
			}

			ctx, cancel := context.WithTimeout(r.Context(), d)
			resp, err := next.RoundTrip(r.WithContext(ctx))
			if err != nil {
				cancel()
				return nil, err
			}

			resp.Body = &cancelBody{ReadCloser: resp.Body, cancel: cancel}
			return resp, nil
		})
	}
}

type cancelBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelBody) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}
