// credential извлекает срок действия и идентичность из access-токена.
//
// Подпись не проверяется: это работа сервера. Клиенту claims нужны только
// для планирования обновления и отображения профиля. Пакет не ходит в сеть
// и не имеет состояния.
package credential

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pribylovaa/go-social-client/internal/models"
)

// ErrMalformedCredential — строка не разбирается как подписанный токен
// или в нём нет обязательного claim exp.
var ErrMalformedCredential = errors.New("malformed credential")

// accessClaims — claims, которые backend кладёт в access-токен.
// user_id приходит числом, поэтому парсер работает в режиме json.Number.
type accessClaims struct {
	UserID   any    `json:"user_id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
	jwt.RegisteredClaims
}

var parser = jwt.NewParser(jwt.WithJSONNumber())

// Decode разбирает access-токен и возвращает его claims.
func Decode(access string) (models.Claims, error) {
	const op = "credential.Decode"

	if access == "" {
		return models.Claims{}, fmt.Errorf("%s: empty token: %w", op, ErrMalformedCredential)
	}

	var claims accessClaims
	if _, _, err := parser.ParseUnverified(access, &claims); err != nil {
		return models.Claims{}, fmt.Errorf("%s: %w: %w", op, ErrMalformedCredential, err)
	}

	if claims.ExpiresAt == nil {
		return models.Claims{}, fmt.Errorf("%s: missing exp: %w", op, ErrMalformedCredential)
	}

	subject := claims.Subject
	if claims.UserID != nil {
		subject = fmt.Sprint(claims.UserID)
	}

	return models.Claims{
		ExpiresAt:   claims.ExpiresAt.Time.UTC(),
		SubjectID:   subject,
		SubjectName: claims.Username,
		AvatarRef:   claims.Avatar,
	}, nil
}
