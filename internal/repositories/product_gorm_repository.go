package repositories

import (
	"errors"

	"gorm.io/gorm"

	"panaderia/internal/apperrors"
	"panaderia/internal/models"
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

// GetAll retrieves all products ordered by category, then name.
func (r *GORMProductRepository) GetAll() ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Order("category, name").Find(&products).Error; err != nil {
		return nil, apperrors.Internal(err, "failed to get all products")
	}
	return products, nil
}

// GetByID retrieves a single product by its ID.
func (r *GORMProductRepository) GetByID(id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("product with ID %d not found", id)
		}
		return nil, apperrors.Internal(err, "failed to get product")
	}
	return &product, nil
}

// GetByCategory retrieves products whose category matches, ignoring case.
func (r *GORMProductRepository) GetByCategory(category string) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Where("LOWER(category) = LOWER(?)", category).Find(&products).Error; err != nil {
		return nil, apperrors.Internal(err, "failed to get products by category")
	}
	return products, nil
}

// GetCategories returns the distinct category names in lexicographic order.
func (r *GORMProductRepository) GetCategories() ([]string, error) {
	var categories []string
	err := r.db.Model(&models.Product{}).
		Distinct("category").
		Order("category").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, apperrors.Internal(err, "failed to get categories")
	}
	return categories, nil
}

// Create creates a new product.
func (r *GORMProductRepository) Create(product *models.Product) error {
	if err := r.db.Create(product).Error; err != nil {
		return apperrors.Internal(err, "failed to create product")
	}
	return nil
}

// Update overwrites an existing product. A zero-row update is re-checked
// against existence to tell "deleted concurrently" apart from a genuine
// write conflict.
func (r *GORMProductRepository) Update(product *models.Product) error {
	res := r.db.Model(&models.Product{ID: product.ID}).
		Select("Name", "Price", "Stock", "Category").
		Updates(product)
	if res.Error != nil {
		return apperrors.Internal(res.Error, "failed to update product")
	}
	if res.RowsAffected == 0 {
		var exists int64
		if err := r.db.Model(&models.Product{}).Where("id = ?", product.ID).Count(&exists).Error; err == nil && exists == 0 {
			return apperrors.NotFoundf("product with ID %d not found", product.ID)
		}
		return apperrors.Conflictf("product with ID %d was modified concurrently", product.ID)
	}
	return nil
}

// UpdateStock sets the stock to an absolute value. This is the
// administrative override, distinct from the delta decrement the sale
// repository applies during a sale.
func (r *GORMProductRepository) UpdateStock(id uint, stock int) (*models.Product, error) {
	var product models.Product
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&product, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFoundf("product with ID %d not found", id)
			}
			return apperrors.Internal(err, "failed to get product")
		}
		if err := tx.Model(&product).UpdateColumn("stock", stock).Error; err != nil {
			return apperrors.Internal(err, "failed to update stock")
		}
		product.Stock = stock
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Delete removes a product. A product referenced by any sale item cannot
// be deleted; callers get a conflict instead of a cascade.
func (r *GORMProductRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var references int64
		if err := tx.Model(&models.SaleItem{}).Where("product_id = ?", id).Count(&references).Error; err != nil {
			return apperrors.Internal(err, "failed to check sale references")
		}
		if references > 0 {
			return apperrors.Conflictf("product with ID %d has recorded sales and cannot be deleted", id)
		}
		res := tx.Delete(&models.Product{}, id)
		if res.Error != nil {
			return apperrors.Internal(res.Error, "failed to delete product")
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFoundf("product with ID %d not found", id)
		}
		return nil
	})
}
