package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/linemk/ld-shop/internal/domain/models"
	"github.com/linemk/ld-shop/internal/lib/identity"
	"github.com/linemk/ld-shop/internal/receipt"
	"github.com/linemk/ld-shop/internal/service"
	"github.com/linemk/ld-shop/internal/session"
)

type payData struct {
	Order  *models.Order
	Items  []*models.OrderItem
	Routes []*models.Wallet
	Intent *models.CryptoPaymentIntent
}

// OrdersHandler обрабатывает GET /orders
func OrdersHandler(log *slog.Logger, rd *Renderer, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.OrdersHandler"
		logger := log.With(slog.String("op", op))

		id, _ := identity.FromContext(r.Context())
		orders, err := orderService.ListForUser(r.Context(), id.ID)
		if err != nil {
			logger.Error("failed to list orders", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		rd.Render(w, r, http.StatusOK, "orders.html", "Мои заказы", orders, "")
	}
}

// PayPageHandler обрабатывает GET /orders/{id}/pay: позиции, доступные сети и последнее намерение
func PayPageHandler(log *slog.Logger, rd *Renderer, orderService service.OrderService, cryptoService service.CryptoService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.PayPageHandler"
		logger := log.With(slog.String("op", op))

		id, _ := identity.FromContext(r.Context())
		orderID, err := parseID(chi.URLParam(r, "id"))
		if err != nil {
			http.Redirect(w, r, "/orders", http.StatusSeeOther)
			return
		}

		order, items, err := orderService.Get(r.Context(), orderID, id.ID)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				redirectWithFlash(w, r, logger, rd.Sessions, "/orders", session.FlashError, "Заказ не найден")
				return
			}
			logger.Error("failed to get order", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		routes, err := cryptoService.Routes(r.Context())
		if err != nil {
			logger.Error("failed to list routes", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		intent, err := cryptoService.Status(r.Context(), orderID, id.ID)
		if err != nil {
			logger.Error("failed to get intent", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		data := payData{Order: order, Items: items, Routes: routes, Intent: intent}
		rd.Render(w, r, http.StatusOK, "pay.html", fmt.Sprintf("Оплата заказа #%d", order.ID), data, "")
	}
}

// ReceiptHandler обрабатывает GET /orders/{id}/receipt; чек доступен только владельцу заказа
func ReceiptHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ReceiptHandler"
		logger := log.With(slog.String("op", op))

		id, _ := identity.FromContext(r.Context())
		orderID, err := parseID(chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, "bad order id", http.StatusBadRequest)
			return
		}

		order, items, err := orderService.Get(r.Context(), orderID, id.ID)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				http.Error(w, "order not found", http.StatusNotFound)
				return
			}
			logger.Error("failed to get order", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		pdf, err := receipt.Render(SiteFromContext(r.Context()).Get(models.SettingSiteName), order, items)
		if err != nil {
			logger.Error("failed to render receipt", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=order-%d.pdf", order.ID))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(pdf); err != nil {
			logger.Error("failed to write receipt", slog.Any("error", err))
		}
	}
}
