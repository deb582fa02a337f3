package credential

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("server-side-secret"))
	require.NoError(t, err)
	return signed
}

func TestDecode_OK(t *testing.T) {
	t.Parallel()

	exp := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	tok := sign(t, jwt.MapClaims{
		"user_id":  42,
		"username": "ana",
		"avatar":   "/media/ana.png",
		"exp":      exp.Unix(),
	})

	c, err := Decode(tok)
	require.NoError(t, err)
	require.Equal(t, "42", c.SubjectID)
	require.Equal(t, "ana", c.SubjectName)
	require.Equal(t, "/media/ana.png", c.AvatarRef)
	require.True(t, exp.Equal(c.ExpiresAt))
}

// Подпись не проверяется: токен с чужим ключом и уже истёкший всё равно разбирается.
func TestDecode_IgnoresSignatureAndExpiry(t *testing.T) {
	t.Parallel()

	exp := time.Now().Add(-time.Hour).Truncate(time.Second)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"sub": "user-7",
		"exp": exp.Unix(),
	}).SignedString([]byte("another-key"))
	require.NoError(t, err)

	c, err := Decode(tok)
	require.NoError(t, err)
	require.Equal(t, "user-7", c.SubjectID)
	require.True(t, exp.Equal(c.ExpiresAt))
}

func TestDecode_Malformed(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"two_segments", "aaa.bbb"},
		{"bad_base64", "a.%%%.c"},
		{"no_exp", sign(t, jwt.MapClaims{"user_id": 1, "username": "x"})},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.in)
			require.ErrorIs(t, err, ErrMalformedCredential)
		})
	}
}
