package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/linemk/ld-shop/internal/domain/models"
)

var ErrWalletNotFound = errors.New("wallet not found")

// WalletStorage описывает методы для работы с кошельками магазина.
type WalletStorage interface {
	ListWallets(ctx context.Context) ([]*models.Wallet, error)
	ListEnabledWallets(ctx context.Context) ([]*models.Wallet, error)
	// FindEnabledWallet ищет включенный кошелек для пары сеть/монета, при нескольких берется самый ранний.
	FindEnabledWallet(ctx context.Context, chain, symbol string) (*models.Wallet, error)
	CreateWallet(ctx context.Context, wallet *models.Wallet) (int64, error)
	ToggleWallet(ctx context.Context, id int64) (bool, error)
	DeleteWallet(ctx context.Context, id int64) error
}

type walletRepository struct {
	db *sql.DB
}

func NewWalletRepository(db *sql.DB) WalletStorage {
	return &walletRepository{db: db}
}

const walletColumns = "id, chain, symbol, address, label, enabled, created_at"

func (r *walletRepository) list(ctx context.Context, query string, args ...any) ([]*models.Wallet, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query wallets: %w", err)
	}
	defer rows.Close()

	var wallets []*models.Wallet
	for rows.Next() {
		w := &models.Wallet{}
		if err := rows.Scan(&w.ID, &w.Chain, &w.Symbol, &w.Address, &w.Label, &w.Enabled, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan wallet: %w", err)
		}
		wallets = append(wallets, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return wallets, nil
}

func (r *walletRepository) ListWallets(ctx context.Context) ([]*models.Wallet, error) {
	return r.list(ctx, "SELECT "+walletColumns+" FROM crypto_wallets ORDER BY id DESC")
}

func (r *walletRepository) ListEnabledWallets(ctx context.Context) ([]*models.Wallet, error) {
	return r.list(ctx, "SELECT "+walletColumns+" FROM crypto_wallets WHERE enabled = TRUE ORDER BY chain, symbol, id")
}

func (r *walletRepository) FindEnabledWallet(ctx context.Context, chain, symbol string) (*models.Wallet, error) {
	query := "SELECT " + walletColumns + ` FROM crypto_wallets
	          WHERE chain = $1 AND symbol = $2 AND enabled = TRUE
	          ORDER BY id LIMIT 1`
	w := &models.Wallet{}
	err := r.db.QueryRowContext(ctx, query, chain, symbol).
		Scan(&w.ID, &w.Chain, &w.Symbol, &w.Address, &w.Label, &w.Enabled, &w.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	return w, nil
}

func (r *walletRepository) CreateWallet(ctx context.Context, w *models.Wallet) (int64, error) {
	query := `INSERT INTO crypto_wallets (chain, symbol, address, label, enabled)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`
	var id int64
	if err := r.db.QueryRowContext(ctx, query, w.Chain, w.Symbol, w.Address, w.Label, w.Enabled).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to create wallet: %w", err)
	}
	return id, nil
}

func (r *walletRepository) ToggleWallet(ctx context.Context, id int64) (bool, error) {
	var enabled bool
	err := r.db.QueryRowContext(ctx, "UPDATE crypto_wallets SET enabled = NOT enabled WHERE id = $1 RETURNING enabled", id).Scan(&enabled)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrWalletNotFound
		}
		return false, fmt.Errorf("failed to toggle wallet: %w", err)
	}
	return enabled, nil
}

func (r *walletRepository) DeleteWallet(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM crypto_wallets WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete wallet: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrWalletNotFound
	}
	return nil
}
