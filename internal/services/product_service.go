package services

import (
	"github.com/shopspring/decimal"

	"panaderia/internal/apperrors"
	"panaderia/internal/models"
	"panaderia/internal/repositories"
)

var (
	priceMin = decimal.NewFromFloat(0.01)
	priceMax = decimal.NewFromFloat(999999.99)
)

// ProductService handles business logic related to the catalog.
type ProductService struct {
	repo repositories.ProductRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// validateProduct checks the field ranges before any persistence attempt.
// Handlers validate the tagged fields too; the decimal price range can
// only be checked here.
func validateProduct(p *models.Product) error {
	fields := make(map[string]string)
	if len(p.Name) < 3 || len(p.Name) > 200 {
		fields["name"] = "name must be between 3 and 200 characters"
	}
	if p.Price.LessThan(priceMin) || p.Price.GreaterThan(priceMax) {
		fields["price"] = "price must be between 0.01 and 999999.99"
	}
	if p.Stock < 0 || p.Stock > 100000 {
		fields["stock"] = "stock must be between 0 and 100000"
	}
	if p.Category == "" || len(p.Category) > 100 {
		fields["category"] = "category is required and must not exceed 100 characters"
	}
	if len(fields) > 0 {
		return apperrors.ValidationFields(fields)
	}
	return nil
}

// GetAllProducts retrieves all products ordered by category, then name.
func (s *ProductService) GetAllProducts() ([]models.Product, error) {
	return s.repo.GetAll()
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id uint) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// GetProductsByCategory retrieves products matching a category,
// case-insensitively.
func (s *ProductService) GetProductsByCategory(category string) ([]models.Product, error) {
	return s.repo.GetByCategory(category)
}

// GetCategories returns the distinct category names, ordered.
func (s *ProductService) GetCategories() ([]string, error) {
	return s.repo.GetCategories()
}

// CreateProduct validates and creates a new product.
func (s *ProductService) CreateProduct(product *models.Product) error {
	if err := validateProduct(product); err != nil {
		return err
	}
	return s.repo.Create(product)
}

// UpdateProduct validates and overwrites an existing product.
func (s *ProductService) UpdateProduct(product *models.Product) error {
	if err := validateProduct(product); err != nil {
		return err
	}
	return s.repo.Update(product)
}

// AdjustStock sets a product's stock to an absolute value. Negative
// values are rejected; the stock invariant holds across every mutation.
func (s *ProductService) AdjustStock(id uint, stock int) (*models.Product, error) {
	if stock < 0 {
		return nil, apperrors.Validationf("stock cannot be negative")
	}
	if stock > 100000 {
		return nil, apperrors.Validationf("stock must not exceed 100000")
	}
	return s.repo.UpdateStock(id, stock)
}

// DeleteProduct deletes a product. Products referenced by sales cannot be
// deleted.
func (s *ProductService) DeleteProduct(id uint) error {
	return s.repo.Delete(id)
}
