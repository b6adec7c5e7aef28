package services

import (
	"maison/internal/models"
	"maison/internal/repositories"
)

// CatalogService handles business logic for the product catalog. Reads
// are open to everyone; the mutating operations are reached only through
// admin-gated routes.
type CatalogService struct {
	repo repositories.ProductRepository
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(repo repositories.ProductRepository) *CatalogService {
	return &CatalogService{
		repo: repo,
	}
}

// ProductPatch carries a partial product update. Nil fields keep their
// prior values.
type ProductPatch struct {
	Name        *string          `json:"name" validate:"omitempty,max=200"`
	Brand       *string          `json:"brand" validate:"omitempty,max=100"`
	Price       *int             `json:"price" validate:"omitempty,gt=0"`
	Category    *string          `json:"category" validate:"omitempty,oneof=Watches Bags Belts Jewellery Accessories"`
	Description *string          `json:"description" validate:"omitempty,max=2000"`
	Image       *string          `json:"image"`
	Images      []string         `json:"images"`
	Variants    []models.Variant `json:"variants" validate:"omitempty,dive"`
	IsFeatured  *bool            `json:"is_featured"`
}

// GetAllProducts retrieves the full catalog.
func (s *CatalogService) GetAllProducts() ([]models.Product, error) {
	return s.repo.GetAll()
}

// GetProductByID retrieves a single product by its ID.
func (s *CatalogService) GetProductByID(id int) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// CreateProduct adds a product to the catalog. The store assigns the
// next sequential ID, starting at 1 on an empty catalog.
func (s *CatalogService) CreateProduct(product *models.Product) error {
	if product.Variants == nil {
		product.Variants = []models.Variant{}
	}
	return s.repo.Create(product)
}

// UpdateProduct merges the fields present in patch into the stored
// product and persists the result. Absent fields retain prior values.
func (s *CatalogService) UpdateProduct(id int, patch ProductPatch) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		product.Name = *patch.Name
	}
	if patch.Brand != nil {
		product.Brand = *patch.Brand
	}
	if patch.Price != nil {
		product.Price = *patch.Price
	}
	if patch.Category != nil {
		product.Category = *patch.Category
	}
	if patch.Description != nil {
		product.Description = *patch.Description
	}
	if patch.Image != nil {
		product.Image = *patch.Image
	}
	if patch.Images != nil {
		product.Images = patch.Images
	}
	if patch.Variants != nil {
		product.Variants = patch.Variants
	}
	if patch.IsFeatured != nil {
		product.IsFeatured = *patch.IsFeatured
	}

	if err := s.repo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct removes a product from the catalog.
func (s *CatalogService) DeleteProduct(id int) error {
	return s.repo.Delete(id)
}
