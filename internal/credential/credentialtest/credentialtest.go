// credentialtest выпускает access-токены для тестов других пакетов.
package credentialtest

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// Access подписывает токен с claims user_id/username/avatar/exp.
// Ключ произвольный: клиент подпись не проверяет.
func Access(t testing.TB, userID int, username string, exp time.Time) string {
	t.Helper()

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  userID,
		"username": username,
		"avatar":   "/media/" + username + ".png",
		"exp":      exp.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	return tok
}

// ExpiringIn — Access для пользователя 1 "ana" со сроком now+d.
func ExpiringIn(t testing.TB, d time.Duration) string {
	t.Helper()
	return Access(t, 1, "ana", time.Now().Add(d))
}
