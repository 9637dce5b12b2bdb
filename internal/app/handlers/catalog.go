package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/linemk/ld-shop/internal/domain/models"
	"github.com/linemk/ld-shop/internal/service"
)

type catalogData struct {
	Products   []*models.Product
	Categories []string
	Cat        string
	Q          string
}

// CatalogHandler обрабатывает GET / с фильтрами cat и q
func CatalogHandler(log *slog.Logger, rd *Renderer, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CatalogHandler"
		logger := log.With(slog.String("op", op))

		data := catalogData{
			Cat: r.URL.Query().Get("cat"),
			Q:   r.URL.Query().Get("q"),
		}

		var err error
		data.Products, err = catalog.List(r.Context(), data.Cat, data.Q)
		if err != nil {
			logger.Error("failed to list products", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		data.Categories, err = catalog.Categories(r.Context())
		if err != nil {
			logger.Error("failed to list categories", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		rd.Render(w, r, http.StatusOK, "index.html", "Каталог", data, "")
	}
}

// ProductHandler обрабатывает GET /product/{id}; отсутствующий товар ведет на главную
func ProductHandler(log *slog.Logger, rd *Renderer, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ProductHandler"
		logger := log.With(slog.String("op", op))

		id, err := parseID(chi.URLParam(r, "id"))
		if err != nil {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}

		product, err := catalog.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				http.Redirect(w, r, "/", http.StatusSeeOther)
				return
			}
			logger.Error("failed to get product", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		rd.Render(w, r, http.StatusOK, "product.html", product.Name, product, "")
	}
}
