package repositories

import (
	"maison/internal/models"
)

// OrderRepository defines the interface for order data access. Orders
// are append-once: there is no delete, and only the status mutates.
type OrderRepository interface {
	GetAll() ([]models.Order, error)
	GetByEmail(email string) ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	Create(order *models.Order) error
	UpdateStatus(id string, status string) error
}
