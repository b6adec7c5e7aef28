package repositories

import (
	"maison/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id int) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id int) error
	// DecrementVariantStock atomically reduces the stock count of one
	// variant. It fails with ErrInsufficientStock when fewer than qty
	// units remain and with ErrUnknownVariant when the color label does
	// not exist on the product.
	DecrementVariantStock(id int, color string, qty int) error
	// RestoreVariantStock returns previously consumed units to a variant,
	// compensating decrements applied before a placement failed.
	RestoreVariantStock(id int, color string, qty int) error
}
