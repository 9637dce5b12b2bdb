package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ProductActive   = "active"
	ProductInactive = "inactive"
)

// Product представляет товар каталога
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"image_url"`
	Status      string          `json:"status"` // active | inactive
	CreatedAt   time.Time       `json:"created_at"`
}

func (p *Product) IsActive() bool {
	return p.Status == ProductActive
}

// ProductFilter - параметры выборки каталога
type ProductFilter struct {
	Category   string
	Query      string
	OnlyActive bool
}
