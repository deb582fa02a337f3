package session

import "github.com/pribylovaa/go-social-client/internal/models"

// Source — всё, что guard'у нужно от хранилища.
type Source interface {
	Session() models.Session
}

// Guard решает, пускать ли на защищённые маршруты.
// Смотрит только на наличие пары, а не на срок access: истёкший токен
// обновит gateway при первом запросе.
type Guard struct {
	src Source
}

func NewGuard(src Source) *Guard {
	return &Guard{src: src}
}

func (g *Guard) IsPermitted() bool {
	return g.src.Session().IsAuthenticated
}
