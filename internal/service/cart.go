package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/linemk/ld-shop/internal/domain/models"
	"github.com/linemk/ld-shop/internal/storage"
)

// CartService работает с корзиной, которую вызывающий достал из сессии.
// В БД ничего не пишется до оформления заказа.
type CartService interface {
	AddItem(ctx context.Context, cart *models.Cart, productID int64, qty int) (int, bool, error)
	RemoveItem(cart *models.Cart, productID int64)
	View(cart models.Cart) CartView
}

// CartView - строки корзины и итог
type CartView struct {
	Lines []models.CartLine
	Total decimal.Decimal
	Count int
}

type cartService struct {
	log         *slog.Logger
	productRepo storage.ProductStorage
}

func NewCartService(log *slog.Logger, productRepo storage.ProductStorage) CartService {
	return &cartService{log: log, productRepo: productRepo}
}

// AddItem добавляет товар. Некорректное количество считается за 1.
// Отсутствующий или неактивный товар, как и выход за models.MaxLineQty, дает ok=false без ошибки.
func (s *cartService) AddItem(ctx context.Context, cart *models.Cart, productID int64, qty int) (int, bool, error) {
	const op = "service.CartService.AddItem"
	logger := s.log.With(slog.String("op", op), slog.Int64("productID", productID))

	if qty <= 0 {
		qty = 1
	}

	p, err := s.productRepo.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			logger.Debug("product not found")
			return 0, false, nil
		}
		logger.Error("failed to get product", slog.Any("error", err))
		return 0, false, fmt.Errorf("%s: %w", op, err)
	}
	if !p.IsActive() {
		logger.Debug("product is inactive")
		return 0, false, nil
	}

	count, ok := cart.Add(p, qty)
	if !ok {
		logger.Debug("line quantity limit reached", slog.Int("qty", qty))
		return count, false, nil
	}
	return count, true, nil
}

func (s *cartService) RemoveItem(cart *models.Cart, productID int64) {
	cart.Remove(productID)
}

func (s *cartService) View(cart models.Cart) CartView {
	return CartView{
		Lines: cart.Lines,
		Total: cart.Total(),
		Count: cart.Count(),
	}
}
