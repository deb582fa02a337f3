package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pribylovaa/go-social-client/internal/transport"
)

const maxResponseBody = 8 << 20

// Do — JSON-обёртка над Dispatch: in кодируется в тело (если не nil),
// 2xx-ответ декодируется в out (если не nil), не-2xx превращается
// в *transport.StatusError.
func (g *Gateway) Do(ctx context.Context, method, path string, in, out any) error {
	const op = "gateway.Do"

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, path, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if err := g.Send(req, out); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Send выполняет готовый запрос (например, multipart) через Dispatch
// с той же обработкой ответа, что и Do.
func (g *Gateway) Send(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")

	resp, err := g.Dispatch(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := transport.CheckStatus(resp); err != nil {
		return err
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBody))
		return nil
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
