package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/linemk/ld-shop/internal/domain/models"
	"github.com/linemk/ld-shop/internal/events"
	"github.com/linemk/ld-shop/internal/storage"
)

type OrderService interface {
	Checkout(ctx context.Context, userID int64, cart *models.Cart, contact, remark string) (int64, error)
	ListForUser(ctx context.Context, userID int64) ([]*models.Order, error)
	Get(ctx context.Context, orderID, userID int64) (*models.Order, []*models.OrderItem, error)
}

type orderService struct {
	log       *slog.Logger
	db        *sql.DB
	orderRepo storage.OrderStorage
	publisher events.Publisher
}

func NewOrderService(log *slog.Logger, db *sql.DB, orderRepo storage.OrderStorage, publisher events.Publisher) OrderService {
	return &orderService{
		log:       log,
		db:        db,
		orderRepo: orderRepo,
		publisher: publisher,
	}
}

// Checkout превращает корзину в заказ. Итог считается по снимкам цен из корзины,
// каталог повторно не читается. Заказ и все позиции пишутся в одной транзакции,
// после коммита корзина очищается.
func (s *orderService) Checkout(ctx context.Context, userID int64, cart *models.Cart, contact, remark string) (int64, error) {
	const op = "service.OrderService.Checkout"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))

	if cart == nil || cart.IsEmpty() {
		return 0, fmt.Errorf("%s: %w", op, ErrEmptyCart)
	}
	for _, line := range cart.Lines {
		if line.Qty <= 0 || line.Qty > models.MaxLineQty || !line.Price.IsPositive() {
			logger.Warn("invalid cart line", slog.Int64("productID", line.ProductID), slog.Int("qty", line.Qty))
			return 0, fmt.Errorf("%s: invalid line for product %d: %w", op, line.ProductID, ErrValidation)
		}
	}

	order := &models.Order{
		UserID:  userID,
		Total:   cart.Total(),
		Status:  models.OrderStatusPending,
		Contact: strings.TrimSpace(contact),
		Remark:  strings.TrimSpace(remark),
	}
	logger.Info("starting checkout transaction", slog.String("total", order.Total.StringFixed(2)), slog.Int("lines", len(cart.Lines)))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	orderID, err := s.orderRepo.CreateOrder(ctx, tx, order)
	if err != nil {
		rollback(logger, tx)
		logger.Error("failed to create order", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to create order: %w", op, err)
	}

	for _, line := range cart.Lines {
		item := &models.OrderItem{
			OrderID:     orderID,
			ProductID:   line.ProductID,
			ProductName: line.Name,
			Quantity:    line.Qty,
			Price:       line.Price,
		}
		if err := s.orderRepo.CreateOrderItem(ctx, tx, item); err != nil {
			rollback(logger, tx)
			logger.Error("failed to create order item", slog.Int64("productID", line.ProductID), slog.Any("error", err))
			return 0, fmt.Errorf("%s: failed to create order item: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	cart.Clear()
	logger.Info("order created", slog.Int64("orderID", orderID))

	publishEvent(ctx, logger, s.publisher, events.OrderCreated, map[string]any{
		"orderId": orderID,
		"userId":  userID,
		"total":   order.Total.StringFixed(2),
	})
	return orderID, nil
}

func (s *orderService) ListForUser(ctx context.Context, userID int64) ([]*models.Order, error) {
	const op = "service.OrderService.ListForUser"

	orders, err := s.orderRepo.GetOrdersByUserID(ctx, userID)
	if err != nil {
		s.log.Error("failed to get orders", slog.String("op", op), slog.Int64("userID", userID), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return orders, nil
}

// Get возвращает заказ вместе с позициями, чужой заказ - ErrNotFound
func (s *orderService) Get(ctx context.Context, orderID, userID int64) (*models.Order, []*models.OrderItem, error) {
	const op = "service.OrderService.Get"

	order, err := s.orderRepo.GetOrderForUser(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			return nil, nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	items, err := s.orderRepo.GetOrderItems(ctx, orderID)
	if err != nil {
		s.log.Error("failed to get order items", slog.String("op", op), slog.Int64("orderID", orderID), slog.Any("error", err))
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	return order, items, nil
}
