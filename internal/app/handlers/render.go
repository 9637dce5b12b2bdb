package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/csrf"

	"github.com/linemk/ld-shop/internal/lib/identity"
	"github.com/linemk/ld-shop/internal/session"
	"github.com/linemk/ld-shop/internal/web"
)

var validate = validator.New()

// ErrorResponse - тело ошибки JSON API
type ErrorResponse struct {
	Error string `json:"error"`
}

// Renderer собирает общую обертку страницы: личность, корзину, флеши, настройки сайта и CSRF-поле
type Renderer struct {
	Log       *slog.Logger
	Templates *web.TemplateCache
	Sessions  *session.Manager
}

func NewRenderer(log *slog.Logger, templates *web.TemplateCache, sessions *session.Manager) *Renderer {
	return &Renderer{Log: log, Templates: templates, Sessions: sessions}
}

func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any, formErr string) {
	sess := rd.Sessions.Get(r)
	id, loggedIn := identity.FromContext(r.Context())

	page := &web.Page{
		Title:     title,
		Identity:  id,
		LoggedIn:  loggedIn,
		Site:      SiteFromContext(r.Context()),
		Flashes:   sess.Flashes(),
		CSRFField: csrf.TemplateField(r),
		CartCount: sess.Cart().Count(),
		Error:     formErr,
		Data:      data,
	}
	// показанные флеши нужно списать до записи тела
	if len(page.Flashes) > 0 {
		if err := sess.Save(w); err != nil {
			rd.Log.Error("failed to save session", slog.Any("error", err))
		}
	}

	if err := rd.Templates.Render(w, status, name, page); err != nil {
		rd.Log.Error("failed to render template", slog.String("template", name), slog.Any("error", err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// redirectWithFlash сохраняет сообщение в сессии и делает 303 на url
func redirectWithFlash(w http.ResponseWriter, r *http.Request, log *slog.Logger, sm *session.Manager, url, typ, msg string) {
	sess := sm.Get(r)
	if msg != "" {
		sess.AddFlash(typ, msg)
	}
	if err := sess.Save(w); err != nil {
		log.Error("failed to save session", slog.Any("error", err))
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response", slog.Any("error", err))
	}
}

func writeJSONError(w http.ResponseWriter, log *slog.Logger, status int, msg string) {
	writeJSON(w, log, status, ErrorResponse{Error: msg})
}

// decodeInput читает тело как JSON-объект или как форму, в зависимости от Content-Type.
// Значения JSON отдаются строками: "2" и 2 читаются одинаково.
func decodeInput(r *http.Request, fill func(get func(string) string) error) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var fields map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
			return err
		}
		return fill(func(key string) string { return jsonScalar(fields[key]) })
	}
	if err := r.ParseForm(); err != nil {
		return err
	}
	return fill(r.PostForm.Get)
}

func jsonScalar(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	if v := strings.TrimSpace(string(raw)); v != "null" {
		return v
	}
	return ""
}

var errBadNumber = errors.New("bad number")

// parseID разбирает положительный идентификатор
func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, errBadNumber
	}
	return id, nil
}

// parseQty - пустое, дробное, отрицательное или мусорное значение не ошибка, сервис посчитает его за 1
func parseQty(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
