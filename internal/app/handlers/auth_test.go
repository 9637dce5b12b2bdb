package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linemk/ld-shop/internal/app/handlers"
	"github.com/linemk/ld-shop/internal/service"
	"github.com/linemk/ld-shop/internal/session"
)

func postForm(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestLoginHandler(t *testing.T) {
	rd := newTestRenderer(t)

	tests := []struct {
		name     string
		auth     *fakeAuthService
		form     url.Values
		code     int
		location string
		body     string
	}{
		{
			name:     "пользователь",
			auth:     &fakeAuthService{identity: &bob},
			form:     url.Values{"username": {"bob"}, "password": {"secret1"}},
			code:     http.StatusSeeOther,
			location: "/",
		},
		{
			name:     "администратор",
			auth:     &fakeAuthService{identity: &admin},
			form:     url.Values{"username": {"admin"}, "password": {"admin123"}},
			code:     http.StatusSeeOther,
			location: "/admin",
		},
		{
			name: "неверный пароль",
			auth: &fakeAuthService{err: service.ErrInvalidCredentials},
			form: url.Values{"username": {"bob"}, "password": {"wrong"}},
			code: http.StatusUnauthorized,
			body: "Неверный логин или пароль",
		},
		{
			name: "пустые поля",
			auth: &fakeAuthService{},
			form: url.Values{"username": {" "}},
			code: http.StatusUnprocessableEntity,
			body: "Введите логин и пароль",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handlers.LoginHandler(newTestLogger(), rd, tt.auth)
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, postForm("/login", tt.form))

			assert.Equal(t, tt.code, rr.Code)
			if tt.location != "" {
				assert.Equal(t, tt.location, rr.Header().Get("Location"))
				id, ok := rd.Sessions.Get(nextRequest(rr, http.MethodGet, "/")).Identity()
				require.True(t, ok)
				assert.Equal(t, *tt.auth.identity, id)
			}
			if tt.body != "" {
				assert.Contains(t, rr.Body.String(), tt.body)
			}
		})
	}
}

func TestRegisterHandler(t *testing.T) {
	rd := newTestRenderer(t)

	t.Run("успех", func(t *testing.T) {
		h := handlers.RegisterHandler(newTestLogger(), rd, &fakeAuthService{})
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, postForm("/register", url.Values{"username": {"carol"}, "password": {"secret1"}}))

		assert.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, "/login", rr.Header().Get("Location"))
		flashes := rd.Sessions.Get(nextRequest(rr, http.MethodGet, "/login")).Flashes()
		require.Len(t, flashes, 1)
		assert.Equal(t, session.FlashSuccess, flashes[0].Type)
	})

	t.Run("логин занят", func(t *testing.T) {
		h := handlers.RegisterHandler(newTestLogger(), rd, &fakeAuthService{err: service.ErrDuplicateUsername})
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, postForm("/register", url.Values{"username": {"bob"}, "password": {"secret1"}}))

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Contains(t, rr.Body.String(), "Такой логин уже занят")
	})

	t.Run("короткий пароль", func(t *testing.T) {
		h := handlers.RegisterHandler(newTestLogger(), rd, &fakeAuthService{})
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, postForm("/register", url.Values{"username": {"carol"}, "password": {"123"}}))

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	})

	t.Run("длинный пароль", func(t *testing.T) {
		h := handlers.RegisterHandler(newTestLogger(), rd, &fakeAuthService{})
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, postForm("/register", url.Values{"username": {"carol"}, "password": {strings.Repeat("x", 100)}}))

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	})

	t.Run("пароль длиннее 72 байт", func(t *testing.T) {
		h := handlers.RegisterHandler(newTestLogger(), rd, &fakeAuthService{err: service.ErrValidation})
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, postForm("/register", url.Values{"username": {"carol"}, "password": {strings.Repeat("ж", 40)}}))

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		assert.Contains(t, rr.Body.String(), "Пароль слишком длинный")
	})
}

func TestLogoutHandler(t *testing.T) {
	rd := newTestRenderer(t)
	login := handlers.LoginHandler(newTestLogger(), rd, &fakeAuthService{identity: &bob})

	rr := httptest.NewRecorder()
	login.ServeHTTP(rr, postForm("/login", url.Values{"username": {"bob"}, "password": {"secret1"}}))
	require.Equal(t, http.StatusSeeOther, rr.Code)

	out := httptest.NewRecorder()
	handlers.LogoutHandler(newTestLogger(), rd.Sessions).ServeHTTP(out, nextRequest(rr, http.MethodPost, "/logout"))

	assert.Equal(t, http.StatusSeeOther, out.Code)
	assert.Equal(t, "/", out.Header().Get("Location"))
	var cleared bool
	for _, c := range out.Result().Cookies() {
		if c.Name == "ld_session" && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

func TestAuthHandler(t *testing.T) {
	tests := []struct {
		name string
		auth *fakeAuthService
		body []byte
		code int
		want string
	}{
		{
			name: "успешная аутентификация",
			auth: &fakeAuthService{token: "dummy-token"},
			body: mustJSON(t, handlers.AuthRequest{Username: "bob", Password: "secret1"}),
			code: http.StatusOK,
			want: "dummy-token",
		},
		{
			name: "неверные учетные данные",
			auth: &fakeAuthService{err: service.ErrInvalidCredentials},
			body: mustJSON(t, handlers.AuthRequest{Username: "bob", Password: "wrong"}),
			code: http.StatusUnauthorized,
			want: "invalid credentials",
		},
		{
			name: "невалидный JSON",
			auth: &fakeAuthService{},
			body: []byte("{invalid json"),
			code: http.StatusBadRequest,
			want: "invalid request",
		},
		{
			name: "пустой пароль",
			auth: &fakeAuthService{},
			body: mustJSON(t, handlers.AuthRequest{Username: "bob"}),
			code: http.StatusBadRequest,
			want: "validation error",
		},
		{
			name: "ошибка сервиса",
			auth: &fakeAuthService{err: errors.New("db down")},
			body: mustJSON(t, handlers.AuthRequest{Username: "bob", Password: "secret1"}),
			code: http.StatusInternalServerError,
			want: "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handlers.AuthHandler(newTestLogger(), tt.auth)
			req := httptest.NewRequest(http.MethodPost, "/api/auth", bytes.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			assert.Equal(t, tt.code, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.want)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
		})
	}
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}
