package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
)

// Order представляет заказ, созданный при оформлении корзины.
// После создания меняется только статус
type Order struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Username  string          `json:"username,omitempty"` // заполняется через JOIN в админке
	Total     decimal.Decimal `json:"total"`
	Status    string          `json:"status"`
	Contact   string          `json:"contact"`
	Remark    string          `json:"remark"`
	Items     string          `json:"items,omitempty"` // названия товаров через запятую
	CreatedAt time.Time       `json:"created_at"`
}

// OrderItem - позиция заказа с ценой на момент оформления
type OrderItem struct {
	ID          int64           `json:"id"`
	OrderID     int64           `json:"order_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

func (i *OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
