// authclient — вызовы backend, которые не требуют access-токена:
// вход, регистрация и обновление пары. Хранилище сессии не трогает:
// результат получает вызывающий.
package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/pribylovaa/go-social-client/internal/models"
	"github.com/pribylovaa/go-social-client/internal/pkg/redact"
	"github.com/pribylovaa/go-social-client/internal/transport"
)

const (
	loginPath    = "users/login/"
	registerPath = "users/register/"
	refreshPath  = "users/refresh/"

	maxBody = 1 << 20
)

// Сообщения, которыми backend отвечает на регистрацию со статусом 200.
const (
	msgUsernameTaken = "El nombre de usuario ya está en uso."
	msgEmailInvalid  = "El correo electrónico no tiene un formato válido."
	msgEmailTaken    = "El correo electrónico ya está en uso."
)

type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

type Client struct {
	base *url.URL
	http *http.Client
	log  *slog.Logger
}

func New(opts Options) (*Client, error) {
	const op = "authclient.New"

	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%s: base url must be absolute: %q", op, opts.BaseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Transport: transport.New(transport.Options{})}
	}

	l := opts.Logger
	if l == nil {
		l = slog.Default()
	}

	return &Client{base: base, http: hc, log: l}, nil
}

// Login обменивает email/пароль на пару токенов.
func (c *Client) Login(ctx context.Context, cred models.Credentials) (models.CredentialPair, error) {
	const op = "authclient.Login"

	resp, err := c.post(ctx, loginPath, cred)
	if err != nil {
		return models.CredentialPair{}, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusBadRequest, http.StatusUnauthorized:
		c.log.Info("login_rejected", slog.String("email", redact.Email(cred.Email)), slog.Int("status", resp.StatusCode))
		return models.CredentialPair{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err := transport.CheckStatus(resp); err != nil {
		return models.CredentialPair{}, fmt.Errorf("%s: %w", op, err)
	}

	var pair models.CredentialPair
	if err := decode(resp.Body, &pair); err != nil {
		return models.CredentialPair{}, fmt.Errorf("%s: %w", op, err)
	}
	if pair.Access == "" || pair.Refresh == "" {
		return models.CredentialPair{}, fmt.Errorf("%s: %w: missing tokens", op, ErrBadResponse)
	}

	return pair, nil
}

// Register создаёт пользователя и сразу выполняет вход с теми же данными.
func (c *Client) Register(ctx context.Context, reg models.Registration) (models.CredentialPair, error) {
	const op = "authclient.Register"

	resp, err := c.post(ctx, registerPath, reg)
	if err != nil {
		return models.CredentialPair{}, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusConflict:
		return models.CredentialPair{}, fmt.Errorf("%s: %w", op, ErrUsernameTaken)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return models.CredentialPair{}, fmt.Errorf("%s: %w", op, validationFrom(resp.Body))
	}
	if err := transport.CheckStatus(resp); err != nil {
		return models.CredentialPair{}, fmt.Errorf("%s: %w", op, err)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return models.CredentialPair{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := registerOutcome(raw); err != nil {
		c.log.Info("register_rejected", slog.String("email", redact.Email(reg.Email)), slog.Any("err", err))
		return models.CredentialPair{}, fmt.Errorf("%s: %w", op, err)
	}

	pair, err := c.Login(ctx, reg.Credentials())
	if err != nil {
		return models.CredentialPair{}, fmt.Errorf("%s: %w", op, err)
	}

	return pair, nil
}

// Renew выпускает новую пару по refresh-токену. Если backend не ротирует
// refresh, в новой паре остаётся прежний.
func (c *Client) Renew(ctx context.Context, refresh string) (models.CredentialPair, error) {
	const op = "authclient.Renew"

	resp, err := c.post(ctx, refreshPath, map[string]string{"refresh": refresh})
	if err != nil {
		return models.CredentialPair{}, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		return models.CredentialPair{}, fmt.Errorf("%s: %w", op, ErrRefreshRejected)
	}
	if err := transport.CheckStatus(resp); err != nil {
		return models.CredentialPair{}, fmt.Errorf("%s: %w", op, err)
	}

	var pair models.CredentialPair
	if err := decode(resp.Body, &pair); err != nil {
		return models.CredentialPair{}, fmt.Errorf("%s: %w", op, err)
	}
	if pair.Access == "" {
		return models.CredentialPair{}, fmt.Errorf("%s: %w: missing access", op, ErrBadResponse)
	}
	if pair.Refresh == "" {
		pair.Refresh = refresh
	}

	return pair, nil
}

func (c *Client) post(ctx context.Context, path string, in any) (*http.Response, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base.ResolveReference(&url.URL{Path: path}).String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return c.http.Do(req)
}

func decode(r io.Reader, out any) error {
	if err := json.NewDecoder(io.LimitReader(r, maxBody)).Decode(out); err != nil {
		return fmt.Errorf("%w: %w", ErrBadResponse, err)
	}

	return nil
}

// registerOutcome разбирает 2xx-ответ регистрации: объект пользователя
// означает успех, строка — отказ с сообщением.
func registerOutcome(raw []byte) error {
	var msg string
	if err := json.Unmarshal(raw, &msg); err == nil {
		switch msg {
		case msgUsernameTaken:
			return ErrUsernameTaken
		case msgEmailInvalid, msgEmailTaken:
			return &ValidationError{Message: msg, Fields: map[string][]string{"email": {msg}}}
		default:
			return &ValidationError{Message: msg}
		}
	}

	var user struct {
		Username string `json:"username"`
	}
	if err := json.Unmarshal(raw, &user); err != nil {
		return fmt.Errorf("%w: %w", ErrBadResponse, err)
	}
	if user.Username == "" {
		return &ValidationError{Message: "registration was not accepted"}
	}

	return nil
}

// validationFrom собирает ValidationError из тела 400/422:
// {"field": ["reason"]}, {"detail": "..."} или просто строка.
func validationFrom(r io.Reader) *ValidationError {
	raw, _ := io.ReadAll(io.LimitReader(r, maxBody))

	var msg string
	if json.Unmarshal(raw, &msg) == nil {
		return &ValidationError{Message: msg}
	}

	var obj map[string]json.RawMessage
	if json.Unmarshal(raw, &obj) != nil {
		return &ValidationError{}
	}

	ve := &ValidationError{Fields: make(map[string][]string, len(obj))}
	for k, v := range obj {
		var list []string
		if json.Unmarshal(v, &list) == nil {
			ve.Fields[k] = list
			continue
		}

		var one string
		if json.Unmarshal(v, &one) == nil {
			if k == "detail" {
				ve.Message = one
				continue
			}
			ve.Fields[k] = []string{one}
		}
	}
	if len(ve.Fields) == 0 {
		ve.Fields = nil
	}

	return ve
}
