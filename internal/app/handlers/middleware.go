package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/linemk/ld-shop/internal/domain/models"
	"github.com/linemk/ld-shop/internal/lib/identity"
	"github.com/linemk/ld-shop/internal/service"
	"github.com/linemk/ld-shop/internal/session"
)

type contextKey string

const siteKey contextKey = "site"

// IdentityMiddleware переносит личность из сессии в context запроса
func IdentityMiddleware(sm *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, ok := sm.Get(r).Identity(); ok {
				r = r.WithContext(identity.WithIdentity(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SiteMiddleware читает настройки сайта на каждый запрос.
// Ошибка БД не ломает страницу: шаблоны получают пустые настройки.
func SiteMiddleware(log *slog.Logger, site service.SiteService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			settings, err := site.Load(r.Context())
			if err != nil {
				log.Warn("site settings unavailable", slog.Any("error", err))
				settings = models.SiteSettings{}
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), siteKey, settings)))
		})
	}
}

func SiteFromContext(ctx context.Context) models.SiteSettings {
	settings, _ := ctx.Value(siteKey).(models.SiteSettings)
	return settings
}

// RequireLogin отправляет анонима на страницу входа
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := identity.FromContext(r.Context()); !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin отправляет всех, кроме администратора, на главную
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity.FromContext(r.Context())
		if !ok || !id.IsAdmin() {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAPILogin - вариант RequireLogin для JSON API
func RequireAPILogin(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := identity.FromContext(r.Context()); !ok {
				writeJSONError(w, log, http.StatusUnauthorized, "требуется вход")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeaders добавляет стандартные заголовки безопасности
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "same-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; img-src 'self' data: https:; style-src 'self'; script-src 'self' 'unsafe-inline'")
		next.ServeHTTP(w, r)
	})
}
