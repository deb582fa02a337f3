package authclient

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrInvalidCredentials — backend отверг email/пароль при входе.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUsernameTaken — имя пользователя уже занято.
	ErrUsernameTaken = errors.New("username taken")
	// ErrValidation — базовая ошибка для *ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrRefreshRejected — backend отказался обновить пару по refresh-токену.
	ErrRefreshRejected = errors.New("refresh rejected")
	// ErrBadResponse — backend вернул 2xx с телом, которое не удалось разобрать.
	ErrBadResponse = errors.New("bad backend response")
)

// ValidationError — backend отверг данные регистрации.
// Fields заполняется, если ответ пришёл в виде {"field": ["reason", ...]}.
type ValidationError struct {
	Message string
	Fields  map[string][]string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Message)
	}

	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], "; "))
	}

	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
