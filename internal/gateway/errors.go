package gateway

import "errors"

var (
	// ErrUnauthenticated — сессии нет или access не разбирается; нужен вход.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrSessionExpired — обновление пары не удалось, хранилище очищено.
	ErrSessionExpired = errors.New("session expired")
	// ErrRefreshTimeout — обновление не уложилось в RefreshTimeout, хранилище очищено.
	ErrRefreshTimeout = errors.New("refresh timeout")
)
