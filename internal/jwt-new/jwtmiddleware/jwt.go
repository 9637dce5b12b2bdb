package jwtmiddleware

import (
	"net/http"
	"strings"

	security "github.com/linemk/ld-shop/internal/jwt-new"
	"github.com/linemk/ld-shop/internal/lib/identity"
)

// NewJWTMiddleware проверяет необязательный заголовок Authorization.
// Без заголовка запрос проходит дальше как есть: личность может прийти из сессии.
// Валидный токен заменяет личность в контексте, невалидный дает 401.
func NewJWTMiddleware(secret string) func(http.Handler) http.Handler {
	if secret == "" {
		panic("jwt secret is not set")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Извлекаем токен из заголовка Authorization (формат: "Bearer <token>")
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				writeError(w, "invalid token format")
				return
			}

			id, err := security.ParseToken(parts[1], secret)
			if err != nil {
				writeError(w, "invalid token")
				return
			}

			ctx := identity.WithIdentity(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeError(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}
