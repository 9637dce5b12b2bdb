package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/linemk/ld-shop/internal/domain/models"
	"github.com/linemk/ld-shop/internal/events"
	"github.com/linemk/ld-shop/internal/storage"
)

// DefaultIntentTTL - сколько действует адрес и сумма, показанные плательщику
const DefaultIntentTTL = 30 * time.Minute

// quoteRate - курс валюты магазина к монете. Монеты считаются стейблкоинами, 1:1.
var quoteRate = decimal.NewFromInt(1)

// CryptoService ведет намерения криптооплаты: pending -> paid.
// Подтверждение ручное: легитимность платежа проверяет администратор, сервер цепочку не смотрит.
type CryptoService interface {
	Initiate(ctx context.Context, orderID, userID int64, chain, symbol string) (*models.CryptoPaymentIntent, error)
	// Status возвращает последнее намерение заказа или nil, если его еще нет.
	Status(ctx context.Context, orderID, userID int64) (*models.CryptoPaymentIntent, error)
	Confirm(ctx context.Context, intentID int64, txHash string) error
	Routes(ctx context.Context) ([]*models.Wallet, error)
}

type cryptoService struct {
	log        *slog.Logger
	db         *sql.DB
	orderRepo  storage.OrderStorage
	walletRepo storage.WalletStorage
	intentRepo storage.CryptoIntentStorage
	publisher  events.Publisher
	ttl        time.Duration
	now        func() time.Time
}

func NewCryptoService(
	log *slog.Logger,
	db *sql.DB,
	orderRepo storage.OrderStorage,
	walletRepo storage.WalletStorage,
	intentRepo storage.CryptoIntentStorage,
	publisher events.Publisher,
	ttl time.Duration,
) CryptoService {
	if ttl <= 0 {
		ttl = DefaultIntentTTL
	}
	return &cryptoService{
		log:        log,
		db:         db,
		orderRepo:  orderRepo,
		walletRepo: walletRepo,
		intentRepo: intentRepo,
		publisher:  publisher,
		ttl:        ttl,
		now:        time.Now,
	}
}

// CryptoAmount переводит сумму заказа в монеты по фиксированному курсу с округлением до 2 знаков
func CryptoAmount(total decimal.Decimal) decimal.Decimal {
	return total.Mul(quoteRate).Round(2)
}

// Initiate создает новое намерение. Адрес кошелька и сумма копируются в запись,
// поэтому последующее изменение или удаление кошелька ее не затрагивает.
func (s *cryptoService) Initiate(ctx context.Context, orderID, userID int64, chain, symbol string) (*models.CryptoPaymentIntent, error) {
	const op = "service.CryptoService.Initiate"
	chain = strings.ToUpper(strings.TrimSpace(chain))
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	logger := s.log.With(
		slog.String("op", op),
		slog.Int64("orderID", orderID),
		slog.Int64("userID", userID),
		slog.String("chain", chain),
		slog.String("symbol", symbol),
	)

	order, err := s.orderRepo.GetOrderForUser(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			logger.Warn("order not found for user")
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		logger.Error("failed to get order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get order: %w", op, err)
	}

	wallet, err := s.walletRepo.FindEnabledWallet(ctx, chain, symbol)
	if err != nil {
		if errors.Is(err, storage.ErrWalletNotFound) {
			logger.Warn("no enabled wallet for route")
			return nil, fmt.Errorf("%s: %w", op, ErrUnsupportedRoute)
		}
		logger.Error("failed to find wallet", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to find wallet: %w", op, err)
	}

	intent := &models.CryptoPaymentIntent{
		OrderID:      order.ID,
		Chain:        wallet.Chain,
		Symbol:       wallet.Symbol,
		Address:      wallet.Address,
		Amount:       order.Total,
		AmountCrypto: CryptoAmount(order.Total),
		Status:       models.IntentStatusPending,
		ExpiresAt:    s.now().Add(s.ttl),
	}
	if err := s.intentRepo.CreateIntent(ctx, intent); err != nil {
		logger.Error("failed to create intent", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create intent: %w", op, err)
	}

	logger.Info("crypto intent created", slog.Int64("intentID", intent.ID), slog.String("amount", intent.AmountCrypto.StringFixed(2)))
	publishEvent(ctx, logger, s.publisher, events.CryptoIntentCreated, map[string]any{
		"intentId": intent.ID,
		"orderId":  intent.OrderID,
		"chain":    intent.Chain,
		"symbol":   intent.Symbol,
		"amount":   intent.AmountCrypto.StringFixed(2),
	})
	return intent, nil
}

// Status всегда смотрит на последнее намерение: плательщик мог бросить первое и начать заново
func (s *cryptoService) Status(ctx context.Context, orderID, userID int64) (*models.CryptoPaymentIntent, error) {
	const op = "service.CryptoService.Status"

	if _, err := s.orderRepo.GetOrderForUser(ctx, orderID, userID); err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: failed to get order: %w", op, err)
	}

	intent, err := s.intentRepo.GetLatestIntentByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, storage.ErrIntentNotFound) {
			return nil, nil
		}
		s.log.Error("failed to get intent", slog.String("op", op), slog.Int64("orderID", orderID), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return intent, nil
}

// Confirm - ручное подтверждение администратором. Намерение становится paid,
// заказ - completed, оба изменения в одной транзакции.
// Неизвестное намерение ничего не меняет и ошибкой не считается.
// Просроченное намерение подтвердить можно, это решение оператора.
func (s *cryptoService) Confirm(ctx context.Context, intentID int64, txHash string) error {
	const op = "service.CryptoService.Confirm"
	txHash = strings.TrimSpace(txHash)
	logger := s.log.With(slog.String("op", op), slog.Int64("intentID", intentID))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	orderID, err := s.intentRepo.MarkIntentPaid(ctx, tx, intentID, txHash)
	if err != nil {
		rollback(logger, tx)
		if errors.Is(err, storage.ErrIntentNotFound) {
			logger.Warn("intent not found, nothing to confirm")
			return nil
		}
		logger.Error("failed to mark intent paid", slog.Any("error", err))
		return fmt.Errorf("%s: failed to mark intent paid: %w", op, err)
	}

	if err := s.orderRepo.UpdateOrderStatus(ctx, tx, orderID, models.OrderStatusCompleted); err != nil {
		rollback(logger, tx)
		logger.Error("failed to complete order", slog.Int64("orderID", orderID), slog.Any("error", err))
		return fmt.Errorf("%s: failed to complete order: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("crypto payment confirmed", slog.Int64("orderID", orderID), slog.Bool("hasTxHash", txHash != ""))
	publishEvent(ctx, logger, s.publisher, events.CryptoPaymentConfirmed, map[string]any{
		"intentId": intentID,
		"orderId":  orderID,
		"txHash":   txHash,
	})
	return nil
}

// Routes - включенные пары сеть/монета для страницы оплаты
func (s *cryptoService) Routes(ctx context.Context) ([]*models.Wallet, error) {
	const op = "service.CryptoService.Routes"

	wallets, err := s.walletRepo.ListEnabledWallets(ctx)
	if err != nil {
		s.log.Error("failed to list wallets", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return wallets, nil
}
