package repositories

import (
	"errors"
	"fmt"

	"maison/internal/models"

	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetAll retrieves all products from the database.
func (r *GORMProductRepository) GetAll() ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Order("id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}
	for i := range products {
		products[i].DecodeVariants()
	}
	return products, nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(id int) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %d: %w", id, ErrProductNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %d: %w", id, err)
	}
	product.DecodeVariants()
	return &product, nil
}

// Create inserts a new product. The ID is assigned by the store's
// autoincrement sequence, so an empty catalog yields ID 1.
func (r *GORMProductRepository) Create(product *models.Product) error {
	if err := product.EncodeVariants(); err != nil {
		return fmt.Errorf("failed to encode variants: %w", err)
	}
	if err := r.db.Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update persists an existing product. Field merging happens in the
// service layer; the repository writes the whole record.
func (r *GORMProductRepository) Update(product *models.Product) error {
	if err := product.EncodeVariants(); err != nil {
		return fmt.Errorf("failed to encode variants: %w", err)
	}
	res := r.db.Model(&models.Product{}).Where("id = ?", product.ID).Select("*").Omit("id").Updates(product)
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %d: %w", product.ID, ErrProductNotFound)
	}
	return nil
}

// Delete removes a product by its ID from the database.
func (r *GORMProductRepository) Delete(id int) error {
	res := r.db.Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %d: %w", id, ErrProductNotFound)
	}
	return nil
}

// DecrementVariantStock performs a compare-and-swap on the variants
// document: the update only lands if the document is unchanged since it
// was read, so two concurrent orders cannot both consume the last unit.
func (r *GORMProductRepository) DecrementVariantStock(id int, color string, qty int) error {
	return r.adjustVariantStock(id, color, -qty)
}

// RestoreVariantStock returns previously consumed units to a variant.
func (r *GORMProductRepository) RestoreVariantStock(id int, color string, qty int) error {
	return r.adjustVariantStock(id, color, qty)
}

func (r *GORMProductRepository) adjustVariantStock(id int, color string, delta int) error {
	const maxAttempts = 3
	for attempt := 0; attempt < maxAttempts; attempt++ {
		product, err := r.GetByID(id)
		if err != nil {
			return err
		}

		variant := product.VariantByColor(color)
		if variant == nil {
			return fmt.Errorf("product %d variant %q: %w", id, color, ErrUnknownVariant)
		}
		if variant.Stock+delta < 0 {
			return fmt.Errorf("product %d variant %q has %d left: %w", id, color, variant.Stock, ErrInsufficientStock)
		}

		previous := product.VariantsJSON
		variant.Stock += delta
		if err := product.EncodeVariants(); err != nil {
			return fmt.Errorf("failed to encode variants: %w", err)
		}

		res := r.db.Model(&models.Product{}).
			Where("id = ? AND variants = ?", id, previous).
			Update("variants", product.VariantsJSON)
		if res.Error != nil {
			return fmt.Errorf("failed to adjust stock: %w", res.Error)
		}
		if res.RowsAffected == 1 {
			return nil
		}
		// Lost the race against a concurrent writer; re-read and retry.
	}
	return fmt.Errorf("stock update for product %d contended %d times", id, maxAttempts)
}
