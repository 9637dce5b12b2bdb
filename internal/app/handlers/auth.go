package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/linemk/ld-shop/internal/lib/identity"
	"github.com/linemk/ld-shop/internal/service"
	"github.com/linemk/ld-shop/internal/session"
)

// AuthRequest представляет структуру запроса для аутентификации с тегами валидации
type AuthRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=128"`
}

// AuthResponse представляет структуру ответа с JWT-токеном
type AuthResponse struct {
	Token string `json:"token"`
}

// RegisterRequest - форма регистрации
type RegisterRequest struct {
	Username string `validate:"required,min=3,max=32"`
	Password string `validate:"required,min=6,max=72"`
	Email    string `validate:"omitempty,email,max=254"`
}

// authForm возвращает введенные значения в форму при ошибке
type authForm struct {
	Username string
	Email    string
}

func LoginPageHandler(rd *Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := identity.FromContext(r.Context()); ok {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		rd.Render(w, r, http.StatusOK, "login.html", "Вход", nil, "")
	}
}

// LoginHandler обрабатывает POST /login. Администратор попадает в /admin, остальные на главную.
func LoginHandler(log *slog.Logger, rd *Renderer, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.LoginHandler"
		logger := log.With(slog.String("op", op))

		req := AuthRequest{
			Username: strings.TrimSpace(r.FormValue("username")),
			Password: r.FormValue("password"),
		}
		form := authForm{Username: req.Username}
		if err := validate.Struct(req); err != nil {
			rd.Render(w, r, http.StatusUnprocessableEntity, "login.html", "Вход", form, "Введите логин и пароль")
			return
		}

		id, err := authService.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			if errors.Is(err, service.ErrInvalidCredentials) {
				rd.Render(w, r, http.StatusUnauthorized, "login.html", "Вход", form, "Неверный логин или пароль")
				return
			}
			logger.Error("login failed", slog.Any("error", err))
			rd.Render(w, r, http.StatusInternalServerError, "login.html", "Вход", form, "Сервис временно недоступен")
			return
		}

		sess := rd.Sessions.Get(r)
		sess.SetIdentity(*id)
		if err := sess.Save(w); err != nil {
			logger.Error("failed to save session", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		target := "/"
		if id.IsAdmin() {
			target = "/admin"
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}

func RegisterPageHandler(rd *Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rd.Render(w, r, http.StatusOK, "register.html", "Регистрация", nil, "")
	}
}

// RegisterHandler обрабатывает POST /register и после успеха ведет на страницу входа
func RegisterHandler(log *slog.Logger, rd *Renderer, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RegisterHandler"
		logger := log.With(slog.String("op", op))

		req := RegisterRequest{
			Username: strings.TrimSpace(r.FormValue("username")),
			Password: r.FormValue("password"),
			Email:    strings.TrimSpace(r.FormValue("email")),
		}
		form := authForm{Username: req.Username, Email: req.Email}
		if err := validate.Struct(req); err != nil {
			logger.Debug("invalid request: validation error", slog.Any("error", err))
			rd.Render(w, r, http.StatusUnprocessableEntity, "register.html", "Регистрация", form,
				"Логин от 3 до 32 символов, пароль от 6 до 72 символов")
			return
		}

		if _, err := authService.Register(r.Context(), req.Username, req.Password, req.Email); err != nil {
			if errors.Is(err, service.ErrDuplicateUsername) {
				rd.Render(w, r, http.StatusConflict, "register.html", "Регистрация", form, "Такой логин уже занят")
				return
			}
			if errors.Is(err, service.ErrValidation) {
				rd.Render(w, r, http.StatusUnprocessableEntity, "register.html", "Регистрация", form, "Пароль слишком длинный")
				return
			}
			logger.Error("register failed", slog.Any("error", err))
			rd.Render(w, r, http.StatusInternalServerError, "register.html", "Регистрация", form, "Сервис временно недоступен")
			return
		}

		redirectWithFlash(w, r, logger, rd.Sessions, "/login", session.FlashSuccess, "Регистрация прошла успешно, войдите")
	}
}

// LogoutHandler удаляет сессию вместе с корзиной
func LogoutHandler(log *slog.Logger, sm *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := sm.Get(r).Destroy(w); err != nil {
			log.Error("failed to destroy session", slog.String("op", "handlers.LogoutHandler"), slog.Any("error", err))
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// AuthHandler – POST /api/auth, выдает JWT для API-клиентов
func AuthHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AuthHandler"
		logger := log.With(slog.String("op", op))

		var req AuthRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Warn("invalid request: decoding error", slog.Any("error", err))
			writeJSONError(w, logger, http.StatusBadRequest, "invalid request")
			return
		}

		// Валидация структуры запроса с использованием validator
		if err := validate.Struct(req); err != nil {
			logger.Warn("invalid request: validation error", slog.Any("error", err))
			writeJSONError(w, logger, http.StatusBadRequest, "validation error")
			return
		}

		token, err := authService.IssueToken(r.Context(), req.Username, req.Password)
		if err != nil {
			if errors.Is(err, service.ErrInvalidCredentials) {
				writeJSONError(w, logger, http.StatusUnauthorized, "invalid credentials")
				return
			}
			logger.Error("failed to issue token", slog.Any("error", err))
			writeJSONError(w, logger, http.StatusInternalServerError, "internal server error")
			return
		}

		writeJSON(w, logger, http.StatusOK, AuthResponse{Token: token})
	}
}
