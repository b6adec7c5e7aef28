package repositories

import (
	"fmt"
	"sync"

	"maison/internal/models"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
type MockProductRepository struct {
	products map[int]models.Product
	nextID   int
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[int]models.Product),
		nextID:   1,
	}
}

// GetAll returns all products ordered by ID.
func (r *MockProductRepository) GetAll() ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for id := 1; id < r.nextID; id++ {
		if p, ok := r.products[id]; ok {
			p.DecodeVariants()
			productList = append(productList, p)
		}
	}
	return productList, nil
}

// GetByID returns a product by its ID.
func (r *MockProductRepository) GetByID(id int) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, ErrProductNotFound)
	}
	product.DecodeVariants()
	return &product, nil
}

// Create adds a new product, assigning the next sequential ID.
func (r *MockProductRepository) Create(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := product.EncodeVariants(); err != nil {
		return err
	}
	if product.ID == 0 {
		product.ID = r.nextID
	}
	if product.ID >= r.nextID {
		r.nextID = product.ID + 1
	}
	r.products[product.ID] = *product
	return nil
}

// Update modifies an existing product.
func (r *MockProductRepository) Update(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[product.ID]; !ok {
		return fmt.Errorf("product %d: %w", product.ID, ErrProductNotFound)
	}
	if err := product.EncodeVariants(); err != nil {
		return err
	}
	r.products[product.ID] = *product
	return nil
}

// Delete removes a product by its ID.
func (r *MockProductRepository) Delete(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return fmt.Errorf("product %d: %w", id, ErrProductNotFound)
	}
	delete(r.products, id)
	return nil
}

// DecrementVariantStock reduces one variant's stock under the lock.
func (r *MockProductRepository) DecrementVariantStock(id int, color string, qty int) error {
	return r.adjustVariantStock(id, color, -qty)
}

// RestoreVariantStock returns previously consumed units to a variant.
func (r *MockProductRepository) RestoreVariantStock(id int, color string, qty int) error {
	return r.adjustVariantStock(id, color, qty)
}

func (r *MockProductRepository) adjustVariantStock(id int, color string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return fmt.Errorf("product %d: %w", id, ErrProductNotFound)
	}
	product.DecodeVariants()

	variant := product.VariantByColor(color)
	if variant == nil {
		return fmt.Errorf("product %d variant %q: %w", id, color, ErrUnknownVariant)
	}
	if variant.Stock+delta < 0 {
		return fmt.Errorf("product %d variant %q has %d left: %w", id, color, variant.Stock, ErrInsufficientStock)
	}
	variant.Stock += delta

	if err := product.EncodeVariants(); err != nil {
		return err
	}
	r.products[id] = product
	return nil
}
