// api — типизированные вызовы resource-эндпоинтов backend поверх gateway.
// Каждый вызов проходит через Dispatch, поэтому ошибки сессии
// (gateway.ErrUnauthenticated / ErrSessionExpired / ErrRefreshTimeout)
// возвращаются вызывающему без изменений, как и *transport.StatusError.
package api

import (
	"context"
	"net/http"
)

// Doer — то, что api нужно от gateway.
type Doer interface {
	Do(ctx context.Context, method, path string, in, out any) error
	Send(req *http.Request, out any) error
}

type Client struct {
	d Doer
}

func New(d Doer) *Client {
	return &Client{d: d}
}
