package service

import "errors"

// Ошибки бизнес-логики. Хендлеры различают их через errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrUnsupportedRoute   = errors.New("no enabled wallet for this chain and symbol")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrValidation         = errors.New("validation failed")
	ErrEmptyCart          = errors.New("cart is empty")
)
