// models содержит доменные типы клиентской сессии: пару токенов,
// декодированные claims и производное представление Session.
package models

import "time"

// CredentialPair — пара токенов, выдаваемая backend при логине/регистрации/обновлении.
//
// Описание:
//   - Access — короткоживущий подписанный JWT для авторизации запросов;
//   - Refresh — долгоживущий токен, используется только для выпуска новой пары,
//     локально не декодируется.
//
// Пара всегда заменяется целиком.
type CredentialPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// IsZero сообщает, что пара пустая.
func (p CredentialPair) IsZero() bool {
	return p.Access == "" && p.Refresh == ""
}

// Claims — данные, извлечённые из access-токена без проверки подписи.
type Claims struct {
	ExpiresAt   time.Time
	SubjectID   string
	SubjectName string
	AvatarRef   string
}

// Session — read-only представление текущей пары.
// IsAuthenticated истинно, если пара присутствует в хранилище,
// независимо от того, истёк ли access-токен.
type Session struct {
	SubjectID       string `json:"user_id,omitempty"`
	SubjectName     string `json:"username,omitempty"`
	AvatarRef       string `json:"avatar,omitempty"`
	IsAuthenticated bool   `json:"is_authenticated"`
}

// StoredSession — набор ключей, которые переживают перезапуск процесса.
type StoredSession struct {
	Access      string `json:"access"`
	Refresh     string `json:"refresh"`
	SubjectID   string `json:"user_id"`
	SubjectName string `json:"username"`
	AvatarRef   string `json:"avatar"`
}

// Pair возвращает пару токенов из сохранённой записи.
func (s StoredSession) Pair() CredentialPair {
	return CredentialPair{Access: s.Access, Refresh: s.Refresh}
}

// Credentials — данные для входа.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration — данные для регистрации нового пользователя.
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Credentials возвращает данные для автоматического входа после регистрации.
func (r Registration) Credentials() Credentials {
	return Credentials{Email: r.Email, Password: r.Password}
}
