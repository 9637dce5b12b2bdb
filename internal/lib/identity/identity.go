// Package identity переносит личность пользователя через context запроса.
// Источник - сессия браузера или bearer-токен API.
package identity

import (
	"context"

	"github.com/linemk/ld-shop/internal/domain/models"
)

type contextKey string

const identityKey contextKey = "identity"

func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// FromContext возвращает личность и false для анонимного запроса
func FromContext(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(identityKey).(models.Identity)
	if !ok || id.ID == 0 {
		return models.Identity{}, false
	}
	return id, true
}
