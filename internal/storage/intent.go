package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/linemk/ld-shop/internal/domain/models"
)

var ErrIntentNotFound = errors.New("crypto payment intent not found")

// CryptoIntentStorage описывает методы для работы с намерениями криптооплаты.
type CryptoIntentStorage interface {
	// CreateIntent сохраняет намерение и заполняет ID и CreatedAt.
	CreateIntent(ctx context.Context, intent *models.CryptoPaymentIntent) error
	// GetLatestIntentByOrderID возвращает последнее (по id) намерение заказа.
	GetLatestIntentByOrderID(ctx context.Context, orderID int64) (*models.CryptoPaymentIntent, error)
	// MarkIntentPaid переводит намерение в paid и возвращает id заказа.
	MarkIntentPaid(ctx context.Context, tx *sql.Tx, intentID int64, txHash string) (int64, error)
	ListIntents(ctx context.Context) ([]*models.CryptoPaymentIntent, error)
}

type cryptoIntentRepository struct {
	db *sql.DB
}

func NewCryptoIntentRepository(db *sql.DB) CryptoIntentStorage {
	return &cryptoIntentRepository{db: db}
}

const intentColumns = "id, order_id, chain, symbol, address, amount, amount_crypto, COALESCE(tx_hash, ''), status, expires_at, created_at"

func scanIntent(row interface{ Scan(...any) error }) (*models.CryptoPaymentIntent, error) {
	i := &models.CryptoPaymentIntent{}
	err := row.Scan(&i.ID, &i.OrderID, &i.Chain, &i.Symbol, &i.Address, &i.Amount, &i.AmountCrypto, &i.TxHash, &i.Status, &i.ExpiresAt, &i.CreatedAt)
	if err != nil {
		return nil, err
	}
	return i, nil
}

func (r *cryptoIntentRepository) CreateIntent(ctx context.Context, i *models.CryptoPaymentIntent) error {
	query := `INSERT INTO crypto_payment_intents (order_id, chain, symbol, address, amount, amount_crypto, status, expires_at, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW()) RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, i.OrderID, i.Chain, i.Symbol, i.Address, i.Amount, i.AmountCrypto, i.Status, i.ExpiresAt).
		Scan(&i.ID, &i.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create crypto intent: %w", err)
	}
	return nil
}

func (r *cryptoIntentRepository) GetLatestIntentByOrderID(ctx context.Context, orderID int64) (*models.CryptoPaymentIntent, error) {
	query := "SELECT " + intentColumns + " FROM crypto_payment_intents WHERE order_id = $1 ORDER BY id DESC LIMIT 1"
	i, err := scanIntent(r.db.QueryRowContext(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrIntentNotFound
		}
		return nil, err
	}
	return i, nil
}

// MarkIntentPaid не затирает ранее сохраненный хэш пустым значением
func (r *cryptoIntentRepository) MarkIntentPaid(ctx context.Context, tx *sql.Tx, intentID int64, txHash string) (int64, error) {
	query := `UPDATE crypto_payment_intents
	          SET status = $1, tx_hash = COALESCE(NULLIF($2, ''), tx_hash)
	          WHERE id = $3
	          RETURNING order_id`
	var orderID int64
	if err := tx.QueryRowContext(ctx, query, models.IntentStatusPaid, txHash, intentID).Scan(&orderID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrIntentNotFound
		}
		return 0, fmt.Errorf("failed to mark intent paid: %w", err)
	}
	return orderID, nil
}

func (r *cryptoIntentRepository) ListIntents(ctx context.Context) ([]*models.CryptoPaymentIntent, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+intentColumns+" FROM crypto_payment_intents ORDER BY id DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query crypto intents: %w", err)
	}
	defer rows.Close()

	var intents []*models.CryptoPaymentIntent
	for rows.Next() {
		i, err := scanIntent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan crypto intent: %w", err)
		}
		intents = append(intents, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return intents, nil
}
