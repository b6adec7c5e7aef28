package repositories

import "errors"

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrUnknownVariant    = errors.New("unknown product variant")
	ErrInsufficientStock = errors.New("insufficient stock")
)
