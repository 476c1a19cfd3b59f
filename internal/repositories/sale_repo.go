package repositories

import (
	"panaderia/internal/models"
)

// SaleRepository defines the interface for sale data access. Create and
// Delete are transactional: stock mutation and sale rows commit or roll
// back as one unit.
type SaleRepository interface {
	GetAll() ([]models.Sale, error)
	GetByID(id uint) (*models.Sale, error)
	GetByUser(userID uint) ([]models.Sale, error)
	Create(userID uint, lines []models.SaleLine) (*models.Sale, error)
	Delete(id uint) error
}
