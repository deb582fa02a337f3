package transport

import (
	"errors"
	"fmt"
	"io"
	"net/http"
)

// maxErrorBody ограничивает объём тела, который сохраняется в StatusError.
const maxErrorBody = 64 << 10

// StatusError — backend ответил не-2xx статусом.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// CheckStatus возвращает nil для 2xx. Иначе вычитывает (ограниченно) и
// закрывает тело и возвращает *StatusError.
func CheckStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	return &StatusError{StatusCode: resp.StatusCode, Body: body}
}

// StatusCode достаёт код из цепочки ошибок; 0, если StatusError нет.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}

	return 0
}
