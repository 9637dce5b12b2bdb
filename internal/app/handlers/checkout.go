package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/linemk/ld-shop/internal/lib/identity"
	"github.com/linemk/ld-shop/internal/service"
	"github.com/linemk/ld-shop/internal/session"
)

// CheckoutRequest - форма POST /checkout
type CheckoutRequest struct {
	Contact string `validate:"max=200"`
	Remark  string `validate:"max=1000"`
}

// CheckoutViewHandler обрабатывает GET /checkout; пустая корзина ведет на /cart
func CheckoutViewHandler(rd *Renderer, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cart := rd.Sessions.Get(r).Cart()
		if cart.IsEmpty() {
			http.Redirect(w, r, "/cart", http.StatusSeeOther)
			return
		}
		rd.Render(w, r, http.StatusOK, "checkout.html", "Оформление заказа", cartService.View(cart), "")
	}
}

// CheckoutHandler обрабатывает POST /checkout
func CheckoutHandler(log *slog.Logger, sm *session.Manager, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CheckoutHandler"
		logger := log.With(slog.String("op", op))

		id, ok := identity.FromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		req := CheckoutRequest{
			Contact: strings.TrimSpace(r.FormValue("contact")),
			Remark:  strings.TrimSpace(r.FormValue("remark")),
		}
		if err := validate.Struct(req); err != nil {
			redirectWithFlash(w, r, logger, sm, "/checkout", session.FlashError, "Слишком длинный контакт или комментарий")
			return
		}

		sess := sm.Get(r)
		cart := sess.Cart()
		orderID, err := orderService.Checkout(r.Context(), id.ID, &cart, req.Contact, req.Remark)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrEmptyCart):
				http.Redirect(w, r, "/cart", http.StatusSeeOther)
			case errors.Is(err, service.ErrValidation):
				redirectWithFlash(w, r, logger, sm, "/cart", session.FlashError, "В корзине есть некорректные позиции")
			default:
				logger.Error("checkout failed", slog.Any("error", err))
				redirectWithFlash(w, r, logger, sm, "/checkout", session.FlashError, "Не удалось оформить заказ, попробуйте еще раз")
			}
			return
		}

		sess.SetCart(cart)
		redirectWithFlash(w, r, logger, sm, "/orders", session.FlashSuccess, fmt.Sprintf("Заказ #%d оформлен", orderID))
	}
}
