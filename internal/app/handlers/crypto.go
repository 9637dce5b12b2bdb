package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/skip2/go-qrcode"

	"github.com/linemk/ld-shop/internal/domain/models"
	"github.com/linemk/ld-shop/internal/lib/identity"
	"github.com/linemk/ld-shop/internal/service"
)

// CryptoPayRequest - тело POST /api/crypto/pay
type CryptoPayRequest struct {
	OrderID int64  `json:"order_id" validate:"required,gt=0"`
	Chain   string `json:"chain" validate:"required,max=16"`
	Symbol  string `json:"symbol" validate:"required,max=16"`
}

// IntentResponse - то, что видит плательщик; суммы отдаются строками
type IntentResponse struct {
	IntentID     int64     `json:"intent_id"`
	OrderID      int64     `json:"order_id"`
	Chain        string    `json:"chain"`
	Symbol       string    `json:"symbol"`
	Address      string    `json:"address"`
	Amount       string    `json:"amount"`
	AmountCrypto string    `json:"amount_crypto"`
	Status       string    `json:"status"`
	TxHash       string    `json:"tx_hash,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	Expired      bool      `json:"expired"`
}

// StatusResponse - intent равен null, пока оплата не начата
type StatusResponse struct {
	Status string          `json:"status"`
	Intent *IntentResponse `json:"intent"`
}

func newIntentResponse(in *models.CryptoPaymentIntent, now time.Time) *IntentResponse {
	return &IntentResponse{
		IntentID:     in.ID,
		OrderID:      in.OrderID,
		Chain:        in.Chain,
		Symbol:       in.Symbol,
		Address:      in.Address,
		Amount:       in.Amount.StringFixed(2),
		AmountCrypto: in.AmountCrypto.StringFixed(2),
		Status:       in.Status,
		TxHash:       in.TxHash,
		ExpiresAt:    in.ExpiresAt,
		Expired:      in.Expired(now),
	}
}

// CryptoPayHandler обрабатывает POST /api/crypto/pay
func CryptoPayHandler(log *slog.Logger, cryptoService service.CryptoService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CryptoPayHandler"
		logger := log.With(slog.String("op", op))

		id, _ := identity.FromContext(r.Context())

		var req CryptoPayRequest
		err := decodeInput(r, func(get func(string) string) error {
			var err error
			if req.OrderID, err = parseID(get("order_id")); err != nil {
				return err
			}
			req.Chain, req.Symbol = get("chain"), get("symbol")
			return nil
		})
		if err != nil {
			logger.Warn("invalid request: decoding error", slog.Any("error", err))
			writeJSONError(w, logger, http.StatusBadRequest, "invalid request")
			return
		}
		req.Chain, req.Symbol = strings.TrimSpace(req.Chain), strings.TrimSpace(req.Symbol)
		if err := validate.Struct(req); err != nil {
			logger.Warn("invalid request: validation error", slog.Any("error", err))
			writeJSONError(w, logger, http.StatusBadRequest, "order_id, chain and symbol are required")
			return
		}

		intent, err := cryptoService.Initiate(r.Context(), req.OrderID, id.ID, req.Chain, req.Symbol)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrNotFound):
				writeJSONError(w, logger, http.StatusNotFound, "order not found")
			case errors.Is(err, service.ErrUnsupportedRoute):
				writeJSONError(w, logger, http.StatusUnprocessableEntity, "unsupported chain or symbol")
			default:
				logger.Error("failed to initiate payment", slog.Any("error", err))
				writeJSONError(w, logger, http.StatusInternalServerError, "internal server error")
			}
			return
		}

		writeJSON(w, logger, http.StatusOK, newIntentResponse(intent, time.Now()))
	}
}

// CryptoStatusHandler обрабатывает GET /api/crypto/status/{order_id}
func CryptoStatusHandler(log *slog.Logger, cryptoService service.CryptoService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CryptoStatusHandler"
		logger := log.With(slog.String("op", op))

		id, _ := identity.FromContext(r.Context())
		orderID, err := parseID(chi.URLParam(r, "order_id"))
		if err != nil {
			writeJSONError(w, logger, http.StatusBadRequest, "invalid order id")
			return
		}

		intent, err := cryptoService.Status(r.Context(), orderID, id.ID)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				writeJSONError(w, logger, http.StatusNotFound, "order not found")
				return
			}
			logger.Error("failed to get status", slog.Any("error", err))
			writeJSONError(w, logger, http.StatusInternalServerError, "internal server error")
			return
		}

		if intent == nil {
			writeJSON(w, logger, http.StatusOK, StatusResponse{Status: "none"})
			return
		}
		writeJSON(w, logger, http.StatusOK, StatusResponse{Status: intent.Status, Intent: newIntentResponse(intent, time.Now())})
	}
}

// CryptoQRHandler обрабатывает GET /api/crypto/qr/{order_id}: PNG с адресом последнего намерения
func CryptoQRHandler(log *slog.Logger, cryptoService service.CryptoService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CryptoQRHandler"
		logger := log.With(slog.String("op", op))

		id, _ := identity.FromContext(r.Context())
		orderID, err := parseID(chi.URLParam(r, "order_id"))
		if err != nil {
			writeJSONError(w, logger, http.StatusBadRequest, "invalid order id")
			return
		}

		intent, err := cryptoService.Status(r.Context(), orderID, id.ID)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				writeJSONError(w, logger, http.StatusNotFound, "order not found")
				return
			}
			logger.Error("failed to get status", slog.Any("error", err))
			writeJSONError(w, logger, http.StatusInternalServerError, "internal server error")
			return
		}
		if intent == nil {
			writeJSONError(w, logger, http.StatusNotFound, "payment not started")
			return
		}

		png, err := qrcode.Encode(intent.Address, qrcode.Medium, 256)
		if err != nil {
			logger.Error("failed to encode qr", slog.Any("error", err))
			writeJSONError(w, logger, http.StatusInternalServerError, "internal server error")
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(png); err != nil {
			logger.Error("failed to write qr", slog.Any("error", err))
		}
	}
}
