// errors стандартизирует ответы об ошибках локального HTTP-прокси.
// На вход принимает доменную ошибку клиента (сессия, вход/регистрация,
// ответ backend), на выход даёт:
//   - корректный HTTP-статус;
//   - короткий стабильный code и безопасное message без утечки деталей.
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net"
	"net/http"

	"github.com/pribylovaa/go-social-client/internal/authclient"
	"github.com/pribylovaa/go-social-client/internal/credential"
	"github.com/pribylovaa/go-social-client/internal/gateway"
	"github.com/pribylovaa/go-social-client/internal/service"
	"github.com/pribylovaa/go-social-client/internal/transport"
)

// Нестандартный код часто используемый для "клиент закрыл соединение".
const StatusClientClosedRequest = 499

// ErrBadRequest — тело/параметры запроса к прокси не разбираются.
var ErrBadRequest = stderrors.New("bad request")

// APIError — единый формат для фронта.
// Fields заполняется для ошибок валидации регистрации.
type APIError struct {
	Code      string              `json:"code"`
	Message   string              `json:"message"`
	Fields    map[string][]string `json:"fields,omitempty"`
	RequestID string              `json:"request_id,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ToHTTP конвертирует ошибку в HTTP-статус и унифицированный ответ.
//
// Поведение:
//   - err == nil — программная ошибка вызова: 500/internal;
//   - ошибки сессии → 401 (unauthenticated, session_expired) или 504 (refresh_timeout);
//   - ошибки входа/регистрации → 401/409/400;
//   - *transport.StatusError → тот же статус, что вернул backend;
//   - сетевые ошибки → 502, отмена → 499, дедлайн → 504;
//   - прочее → 500/internal.
func ToHTTP(err error) (int, ErrorResponse) {
	status, code, msg := classify(err)

	resp := ErrorResponse{Error: APIError{Code: code, Message: msg}}

	var ve *authclient.ValidationError
	if stderrors.As(err, &ve) {
		if ve.Message != "" {
			resp.Error.Message = ve.Message
		}
		resp.Error.Fields = ve.Fields
	}

	return status, resp
}

// WriteError — хелпер для HTTP-хендлеров.
// Пишет корректный статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func classify(err error) (int, string, string) {
	if err == nil {
		return http.StatusInternalServerError, "internal", "internal error"
	}

	var se *transport.StatusError
	var ne net.Error

	switch {
	case stderrors.Is(err, gateway.ErrRefreshTimeout):
		return http.StatusGatewayTimeout, "refresh_timeout", "session renewal timed out, sign in again"
	case stderrors.Is(err, gateway.ErrSessionExpired):
		return http.StatusUnauthorized, "session_expired", "session expired, sign in again"
	case stderrors.Is(err, gateway.ErrUnauthenticated),
		stderrors.Is(err, credential.ErrMalformedCredential):
		return http.StatusUnauthorized, "unauthenticated", "unauthenticated"
	case stderrors.Is(err, authclient.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials", "invalid credentials"
	case stderrors.Is(err, authclient.ErrUsernameTaken):
		return http.StatusConflict, "username_taken", "username already taken"
	case stderrors.Is(err, authclient.ErrValidation):
		return http.StatusBadRequest, "invalid_argument", "validation failed"
	case stderrors.Is(err, service.ErrInvalidEmail):
		return http.StatusBadRequest, "invalid_argument", service.ErrInvalidEmail.Error()
	case stderrors.Is(err, service.ErrEmptyPassword):
		return http.StatusBadRequest, "invalid_argument", service.ErrEmptyPassword.Error()
	case stderrors.Is(err, service.ErrEmptyUsername):
		return http.StatusBadRequest, "invalid_argument", service.ErrEmptyUsername.Error()
	case stderrors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "invalid_argument", "invalid argument"
	case stderrors.As(err, &se):
		return se.StatusCode, "upstream_status", http.StatusText(se.StatusCode)
	case stderrors.Is(err, authclient.ErrBadResponse):
		return http.StatusBadGateway, "bad_gateway", "bad backend response"
	case stderrors.Is(err, context.Canceled):
		return StatusClientClosedRequest, "canceled", "canceled"
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "deadline_exceeded", "deadline exceeded"
	case stderrors.As(err, &ne):
		return http.StatusBadGateway, "bad_gateway", "backend unavailable"
	default:
		return http.StatusInternalServerError, "internal", "internal error"
	}
}
