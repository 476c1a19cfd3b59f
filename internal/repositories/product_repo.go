package repositories

import (
	"panaderia/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id uint) (*models.Product, error)
	GetByCategory(category string) ([]models.Product, error)
	GetCategories() ([]string, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	UpdateStock(id uint, stock int) (*models.Product, error)
	Delete(id uint) error
}
