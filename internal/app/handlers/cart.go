package handlers

import (
	"log/slog"
	"net/http"

	"github.com/linemk/ld-shop/internal/service"
	"github.com/linemk/ld-shop/internal/session"
)

// CartAddRequest - тело POST /cart/add, JSON или форма
// Qty 0 означает "по умолчанию", верхняя граница совпадает с models.MaxLineQty.
type CartAddRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Qty       int   `json:"qty" validate:"min=0,max=10000"`
}

// CartAddResponse - ok=false, если товар не найден или снят с продажи
type CartAddResponse struct {
	OK    bool `json:"ok"`
	Count int  `json:"count"`
}

// CartAddHandler обрабатывает POST /cart/add
func CartAddHandler(log *slog.Logger, sm *session.Manager, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CartAddHandler"
		logger := log.With(slog.String("op", op))

		var req CartAddRequest
		err := decodeInput(r, func(get func(string) string) error {
			var err error
			if req.ProductID, err = parseID(get("product_id")); err != nil {
				return err
			}
			req.Qty = parseQty(get("qty"))
			return nil
		})
		if err != nil {
			logger.Warn("invalid request: decoding error", slog.Any("error", err))
			writeJSON(w, logger, http.StatusBadRequest, CartAddResponse{OK: false})
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Warn("invalid request: validation error", slog.Any("error", err))
			writeJSON(w, logger, http.StatusBadRequest, CartAddResponse{OK: false})
			return
		}

		sess := sm.Get(r)
		cart := sess.Cart()
		count, ok, err := cartService.AddItem(r.Context(), &cart, req.ProductID, req.Qty)
		if err != nil {
			logger.Error("failed to add item", slog.Any("error", err))
			writeJSON(w, logger, http.StatusInternalServerError, CartAddResponse{OK: false, Count: cart.Count()})
			return
		}
		if !ok {
			writeJSON(w, logger, http.StatusOK, CartAddResponse{OK: false, Count: cart.Count()})
			return
		}

		sess.SetCart(cart)
		if err := sess.Save(w); err != nil {
			logger.Error("failed to save session", slog.Any("error", err))
			writeJSON(w, logger, http.StatusInternalServerError, CartAddResponse{OK: false})
			return
		}
		writeJSON(w, logger, http.StatusOK, CartAddResponse{OK: true, Count: count})
	}
}

// CartViewHandler обрабатывает GET /cart
func CartViewHandler(rd *Renderer, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view := cartService.View(rd.Sessions.Get(r).Cart())
		rd.Render(w, r, http.StatusOK, "cart.html", "Корзина", view, "")
	}
}

// CartRemoveHandler обрабатывает POST /cart/remove; удаление отсутствующего товара не ошибка
func CartRemoveHandler(log *slog.Logger, sm *session.Manager, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CartRemoveHandler"
		logger := log.With(slog.String("op", op))

		id, err := parseID(r.FormValue("product_id"))
		if err != nil {
			http.Redirect(w, r, "/cart", http.StatusSeeOther)
			return
		}

		sess := sm.Get(r)
		cart := sess.Cart()
		cartService.RemoveItem(&cart, id)
		sess.SetCart(cart)
		if err := sess.Save(w); err != nil {
			logger.Error("failed to save session", slog.Any("error", err))
		}
		http.Redirect(w, r, "/cart", http.StatusSeeOther)
	}
}
