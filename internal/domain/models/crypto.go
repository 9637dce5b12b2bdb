package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	IntentStatusPending = "pending"
	IntentStatusPaid    = "paid"
)

// Wallet - кошелек магазина для приема оплаты в конкретной сети и монете
type Wallet struct {
	ID        int64     `json:"id"`
	Chain     string    `json:"chain"`
	Symbol    string    `json:"symbol"`
	Address   string    `json:"address"`
	Label     string    `json:"label"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
}

// CryptoPaymentIntent фиксирует адрес, сумму и срок, которые были показаны плательщику.
// Адрес копируется из кошелька при создании и дальше не зависит от него
type CryptoPaymentIntent struct {
	ID           int64           `json:"id"`
	OrderID      int64           `json:"order_id"`
	Chain        string          `json:"chain"`
	Symbol       string          `json:"symbol"`
	Address      string          `json:"address"`
	Amount       decimal.Decimal `json:"amount"`
	AmountCrypto decimal.Decimal `json:"amount_crypto"`
	TxHash       string          `json:"tx_hash,omitempty"`
	Status       string          `json:"status"`
	ExpiresAt    time.Time       `json:"expires_at"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Expired только информирует: сервер не переводит просроченные намерения в другой статус
func (i *CryptoPaymentIntent) Expired(now time.Time) bool {
	return i.Status == IntentStatusPending && now.After(i.ExpiresAt)
}
