// redact маскирует чувствительные данные перед записью в лог.
// Токены никогда не пишутся целиком: вместо них используется короткий
// отпечаток, по которому можно сопоставить поколения пары в логах.
package redact

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Email маскирует e-mail: первые две руны локальной части + "***", домен как есть.
// Строка без ровно одного '@' заменяется на "***".
func Email(s string) string {
	if strings.Count(s, "@") != 1 {
		return "***"
	}

	i := strings.IndexByte(s, '@')
	local, domain := s[:i], s[i+1:]

	lr := []rune(local)
	if len(lr) > 2 {
		local = string(lr[:2]) + "***"
	} else {
		local = "***"
	}

	return local + "@" + domain
}

// Token возвращает отпечаток токена вида "tok:1a2b3c4d".
func Token(tok string) string {
	if tok == "" {
		return "tok:-"
	}

	sum := sha256.Sum256([]byte(tok))
	return "tok:" + hex.EncodeToString(sum[:4])
}
