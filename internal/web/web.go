// Package web содержит html-шаблоны витрины и админки, встроенные в бинарник.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/linemk/ld-shop/internal/domain/models"
	"github.com/linemk/ld-shop/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const layout = "templates/base.html"

// Page - общая обертка для всех страниц: шапка, флеши, настройки сайта
type Page struct {
	Title     string
	Identity  models.Identity
	LoggedIn  bool
	Site      models.SiteSettings
	Flashes   []session.Flash
	CSRFField template.HTML
	CartCount int
	Error     string
	Data      any
}

// TemplateCache хранит разобранные шаблоны: каждая страница вместе с base.html
type TemplateCache struct {
	log   *slog.Logger
	cache map[string]*template.Template
	mu    sync.RWMutex
	funcs template.FuncMap
}

func NewTemplateCache(log *slog.Logger) *TemplateCache {
	return &TemplateCache{
		log:   log,
		cache: make(map[string]*template.Template),
		funcs: template.FuncMap{
			"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
			"date":  func(t time.Time) string { return t.Format("2006-01-02 15:04") },
			"upper": strings.ToUpper,
			"eq64":  func(a, b int64) bool { return a == b },
		},
	}
}

func (tc *TemplateCache) AddFunc(name string, fn interface{}) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.funcs[name] = fn
}

// Load разбирает все встроенные страницы
func (tc *TemplateCache) Load() error {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return err
	}
	for _, file := range files {
		if file == layout {
			continue
		}
		name := path.Base(file)
		tmpl, err := template.New(name).Funcs(tc.funcs).ParseFS(templateFS, layout, file)
		if err != nil {
			return fmt.Errorf("parse template %s: %w", name, err)
		}
		tc.cache[name] = tmpl
		tc.log.Debug("cached template", slog.String("name", name))
	}
	return nil
}

func (tc *TemplateCache) Get(name string) *template.Template {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.cache[name]
}

// Render сначала исполняет шаблон в буфер, чтобы ошибка не оставила полстраницы
func (tc *TemplateCache) Render(w http.ResponseWriter, status int, name string, page *Page) error {
	tmpl := tc.Get(name)
	if tmpl == nil {
		return fmt.Errorf("template %s not found", name)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", page); err != nil {
		return fmt.Errorf("execute template %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// Static раздает встроенные css и js
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
