package transport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	logctx "github.com/pribylovaa/go-social-client/internal/pkg/log"
)

type capHandler struct {
	mu      sync.Mutex
	base    []slog.Attr
	lastMsg string
	lastLvl slog.Level
	attrs   map[string]any
	count   map[string]int
}

func (h *capHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *capHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make(map[string]any, len(h.base)+8)
	for _, a := range h.base {
		out[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		out[a.Key] = a.Value.Any()
		return true
	})
	if h.count == nil {
		h.count = make(map[string]int)
	}
	h.count[r.Message]++
	h.lastMsg = r.Message
	h.lastLvl = r.Level
	h.attrs = out
	return nil
}

func (h *capHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h.base = append(h.base, attrs...)
	return h
}

func (h *capHandler) WithGroup(string) slog.Handler { return h }

// capture — терминальный RoundTripper, запоминающий запрос.
func capture(got **http.Request) RoundTripperFunc {
	return func(r *http.Request) (*http.Response, error) {
		*got = r
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("ok")), Request: r}, nil
	}
}

func TestChain_Order(t *testing.T) {
	t.Parallel()

	var trace []string
	mw := func(name string) Middleware {
		return func(next http.RoundTripper) http.RoundTripper {
			return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
				trace = append(trace, name)
				return next.RoundTrip(r)
			})
		}
	}

	var got *http.Request
	rt := Chain(capture(&got), mw("a"), mw("b"), mw("c"))

	req := httptest.NewRequest(http.MethodGet, "http://backend/x", nil)
	_, err := rt.RoundTrip(req)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, trace)
}

func TestWithMetadata_SetsHeaders_OnClone(t *testing.T) {
	t.Parallel()

	var got *http.Request
	rt := WithMetadata("social-client/1.0")(capture(&got))

	ctx := context.WithValue(context.Background(), CtxRequestID, "rid-123")
	req := httptest.NewRequest(http.MethodGet, "http://backend/x", nil).WithContext(ctx)

	_, err := rt.RoundTrip(req)
	require.NoError(t, err)
	require.Equal(t, "rid-123", got.Header.Get("X-Request-Id"))
	require.Equal(t, "social-client/1.0", got.Header.Get("User-Agent"))

	// Исходный запрос не тронут.
	require.Empty(t, req.Header.Get("X-Request-Id"))
}

func TestWithMetadata_SkipEmptyValues(t *testing.T) {
	t.Parallel()

	var got *http.Request
	rt := WithMetadata("")(capture(&got))

	req := httptest.NewRequest(http.MethodGet, "http://backend/x", nil)
	req.Header.Del("User-Agent")
	_, err := rt.RoundTrip(req)
	require.NoError(t, err)
	require.Same(t, req, got)
	require.Empty(t, got.Header.Get("X-Request-Id"))
}

func TestWithMetadata_KeepsExplicitRequestID(t *testing.T) {
	t.Parallel()

	var got *http.Request
	rt := WithMetadata("")(capture(&got))

	ctx := context.WithValue(context.Background(), CtxRequestID, "from-ctx")
	req := httptest.NewRequest(http.MethodGet, "http://backend/x", nil).WithContext(ctx)
	req.Header.Set("X-Request-Id", "explicit")

	_, err := rt.RoundTrip(req)
	require.NoError(t, err)
	require.Equal(t, "explicit", got.Header.Get("X-Request-Id"))
}

func TestWithTimeout_SetsDeadline_CancelledOnBodyClose(t *testing.T) {
	t.Parallel()

	var got *http.Request
	rt := WithTimeout(time.Second)(capture(&got))

	resp, err := rt.RoundTrip(httptest.NewRequest(http.MethodGet, "http://backend/x", nil))
	require.NoError(t, err)

	_, ok := got.Context().Deadline()
	require.True(t, ok)
	require.NoError(t, got.Context().Err())

	require.NoError(t, resp.Body.Close())
	require.ErrorIs(t, got.Context().Err(), context.Canceled)
}

func TestWithTimeout_DoesNotOverrideExistingDeadline(t *testing.T) {
	t.Parallel()

	parent, cancel := context.WithTimeout(context.Background(), 25*time.Millisecond)
	defer cancel()
	parentDL, _ := parent.Deadline()

	var got *http.Request
	rt := WithTimeout(time.Second)(capture(&got))

	req := httptest.NewRequest(http.MethodGet, "http://backend/x", nil).WithContext(parent)
	_, err := rt.RoundTrip(req)
	require.NoError(t, err)

	childDL, ok := got.Context().Deadline()
	require.True(t, ok)
	require.WithinDuration(t, parentDL, childDL, time.Millisecond)
}

func TestWithTimeout_ZeroDuration_PassThrough(t *testing.T) {
	t.Parallel()

	var got *http.Request
	rt := WithTimeout(0)(capture(&got))

	_, err := rt.RoundTrip(httptest.NewRequest(http.MethodGet, "http://backend/x", nil))
	require.NoError(t, err)

	_, hasDL := got.Context().Deadline()
	require.False(t, hasDL, "no deadline expected when d <= 0")
}

func TestWithTimeout_Expires(t *testing.T) {
	t.Parallel()

	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer slow.Close()

	client := &http.Client{Transport: WithTimeout(30 * time.Millisecond)(http.DefaultTransport)}

	_, err := client.Get(slow.URL)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWithLogging_LogsAndPutsLoggerIntoContext(t *testing.T) {
	t.Parallel()

	h := &capHandler{}
	rt := WithLogging(slog.New(h))(RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		logctx.From(r.Context()).Info("probe")
		return &http.Response{StatusCode: http.StatusCreated, Body: http.NoBody, Request: r}, nil
	}))

	req := httptest.NewRequest(http.MethodPost, "http://backend/users/login/", nil)
	req.Header.Set("Authorization", "Bearer secret")

	_, err := rt.RoundTrip(req)
	require.NoError(t, err)

	require.Equal(t, 1, h.count["probe"])
	require.Equal(t, "http_out", h.lastMsg)
	require.Equal(t, slog.LevelInfo, h.lastLvl)
	require.EqualValues(t, http.StatusCreated, h.attrs["status"])
	require.Equal(t, "/users/login/", h.attrs["path"])

	rid, _ := h.attrs["request_id"].(string)
	_, err = uuid.Parse(rid)
	require.NoError(t, err)

	for _, v := range h.attrs {
		if s, ok := v.(string); ok {
			require.NotContains(t, s, "secret")
		}
	}
}

func TestWithLogging_TransportError(t *testing.T) {
	t.Parallel()

	h := &capHandler{}
	boom := errors.New("connection refused")
	rt := WithLogging(slog.New(h))(RoundTripperFunc(func(*http.Request) (*http.Response, error) {
		return nil, boom
	}))

	_, err := rt.RoundTrip(httptest.NewRequest(http.MethodGet, "http://backend/x", nil))
	require.ErrorIs(t, err, boom)
	require.Equal(t, "http_out", h.lastMsg)
	require.Equal(t, slog.LevelWarn, h.lastLvl)
	require.EqualValues(t, 0, h.attrs["status"])
}

func TestCheckStatus(t *testing.T) {
	t.Parallel()

	ok := &http.Response{StatusCode: http.StatusNoContent, Body: http.NoBody}
	require.NoError(t, CheckStatus(ok))

	bad := &http.Response{StatusCode: http.StatusBadGateway, Body: io.NopCloser(strings.NewReader(`{"detail":"down"}`))}
	err := CheckStatus(bad)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	require.Equal(t, http.StatusBadGateway, se.StatusCode)
	require.JSONEq(t, `{"detail":"down"}`, string(se.Body))
	require.Equal(t, http.StatusBadGateway, StatusCode(err))
	require.Equal(t, 0, StatusCode(errors.New("x")))
}

func TestNew_DefaultChain(t *testing.T) {
	t.Parallel()

	var got *http.Request
	rt := New(Options{UserAgent: "ua", Timeout: time.Second, Base: capture(&got)})

	resp, err := rt.RoundTrip(httptest.NewRequest(http.MethodGet, "http://backend/x", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, "ua", got.Header.Get("User-Agent"))
	_, hasDL := got.Context().Deadline()
	require.True(t, hasDL)
}
