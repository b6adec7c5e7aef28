package repositories

import "maison/internal/models"

// UserRepository defines the interface for user data access. Accounts
// are created at registration and read at login; only the saved address
// mutates afterwards.
type UserRepository interface {
	Create(user *models.User) error
	GetByEmail(email string) (*models.User, error)
	GetByID(id string) (*models.User, error)
	UpdateSavedAddress(id string, address string) error
}
