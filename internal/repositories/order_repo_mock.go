package repositories

import (
	"fmt"
	"sort"
	"sync"

	"maison/internal/models"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	orders map[string]models.Order
	mu     sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
	}
}

// GetAll returns all orders, newest first.
func (r *MockOrderRepository) GetAll() ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderList := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		order.DecodeItems()
		orderList = append(orderList, order)
	}
	sort.Slice(orderList, func(i, j int) bool {
		return orderList[i].Date.After(orderList[j].Date)
	})
	return orderList, nil
}

// GetByEmail returns the orders placed under one email, newest first.
func (r *MockOrderRepository) GetByEmail(email string) ([]models.Order, error) {
	all, err := r.GetAll()
	if err != nil {
		return nil, err
	}
	filtered := make([]models.Order, 0, len(all))
	for _, order := range all {
		if order.UserEmail == email {
			filtered = append(filtered, order)
		}
	}
	return filtered, nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, ErrOrderNotFound)
	}
	order.DecodeItems()
	return &order, nil
}

// Create appends a new order.
func (r *MockOrderRepository) Create(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := order.EncodeItems(); err != nil {
		return err
	}
	r.orders[order.ID] = *order
	return nil
}

// UpdateStatus overwrites the status of an order.
func (r *MockOrderRepository) UpdateStatus(id string, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order %s: %w", id, ErrOrderNotFound)
	}
	order.Status = status
	r.orders[id] = order
	return nil
}
