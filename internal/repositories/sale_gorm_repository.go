package repositories

import (
	"errors"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"panaderia/internal/apperrors"
	"panaderia/internal/models"
)

// GORMSaleRepository is a GORM implementation of SaleRepository. It owns
// the transactional core: stock checks, decrements and sale rows commit
// or roll back together.
type GORMSaleRepository struct {
	db *gorm.DB
}

// NewGORMSaleRepository creates a new instance of GORMSaleRepository.
func NewGORMSaleRepository(db *gorm.DB) *GORMSaleRepository {
	return &GORMSaleRepository{
		db: db,
	}
}

func (r *GORMSaleRepository) withJoins() *gorm.DB {
	return r.db.Preload("User").Preload("Items.Product")
}

// GetAll retrieves all sales, newest first, with owner and line items
// (and each line's product) attached.
func (r *GORMSaleRepository) GetAll() ([]models.Sale, error) {
	var sales []models.Sale
	if err := r.withJoins().Order("date DESC").Find(&sales).Error; err != nil {
		return nil, apperrors.Internal(err, "failed to get all sales")
	}
	return sales, nil
}

// GetByID retrieves a single sale with its full join.
func (r *GORMSaleRepository) GetByID(id uint) (*models.Sale, error) {
	var sale models.Sale
	if err := r.withJoins().First(&sale, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("sale with ID %d not found", id)
		}
		return nil, apperrors.Internal(err, "failed to get sale")
	}
	return &sale, nil
}

// GetByUser retrieves the sales owned by one user, newest first.
func (r *GORMSaleRepository) GetByUser(userID uint) ([]models.Sale, error) {
	var sales []models.Sale
	err := r.withJoins().
		Where("user_id = ?", userID).
		Order("date DESC").
		Find(&sales).Error
	if err != nil {
		return nil, apperrors.Internal(err, "failed to get sales for user")
	}
	return sales, nil
}

// Create records a sale for userID. For each requested line, in order, it
// looks up the product, verifies stock, decrements it and snapshots the
// current price into the line item. Everything runs inside one database
// transaction: any failure leaves stock and sale tables untouched.
// Duplicate product ids are independent lines; earlier decrements are
// visible to later lines within the transaction, so they accumulate.
func (r *GORMSaleRepository) Create(userID uint, lines []models.SaleLine) (*models.Sale, error) {
	sale := models.Sale{
		Date:   time.Now(),
		UserID: userID,
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		total := decimal.Zero
		for _, line := range lines {
			var product models.Product
			if err := tx.First(&product, line.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.NotFoundf("product with ID %d not found", line.ProductID)
				}
				return apperrors.Internal(err, "failed to look up product")
			}

			if product.Stock < line.Quantity {
				return apperrors.InsufficientStock(product.Name, product.Stock, line.Quantity)
			}

			// Guarded decrement: the WHERE re-checks stock at write time so
			// two concurrent sales cannot both spend the same units.
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", line.ProductID, line.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", line.Quantity))
			if res.Error != nil {
				return apperrors.Internal(res.Error, "failed to adjust stock")
			}
			if res.RowsAffected == 0 {
				// Lost a race since the read above; re-read to report the
				// quantities accurately.
				var current models.Product
				if err := tx.First(&current, line.ProductID).Error; err != nil {
					return apperrors.NotFoundf("product with ID %d not found", line.ProductID)
				}
				return apperrors.InsufficientStock(current.Name, current.Stock, line.Quantity)
			}

			sale.Items = append(sale.Items, models.SaleItem{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				UnitPrice: product.Price,
			})
			total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}

		sale.Total = total
		if err := tx.Create(&sale).Error; err != nil {
			return apperrors.Internal(err, "failed to create sale")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Read-after-write join for the response.
	return r.GetByID(sale.ID)
}

// Delete removes a sale and restores each referenced product's stock by
// the line's quantity, as one transaction. This is a compensating action,
// not a true inverse: it only fixes current stock. A product that no
// longer exists is skipped on purpose; there is no row to restore to.
func (r *GORMSaleRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var sale models.Sale
		if err := tx.Preload("Items").First(&sale, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFoundf("sale with ID %d not found", id)
			}
			return apperrors.Internal(err, "failed to load sale")
		}

		for _, item := range sale.Items {
			res := tx.Model(&models.Product{}).
				Where("id = ?", item.ProductID).
				UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity))
			if res.Error != nil {
				return apperrors.Internal(res.Error, "failed to restore stock")
			}
			if res.RowsAffected == 0 {
				log.Printf("sale %d: product %d no longer exists, skipping stock restore", id, item.ProductID)
			}
		}

		if err := tx.Where("sale_id = ?", id).Delete(&models.SaleItem{}).Error; err != nil {
			return apperrors.Internal(err, "failed to delete sale items")
		}
		if err := tx.Delete(&models.Sale{}, id).Error; err != nil {
			return apperrors.Internal(err, "failed to delete sale")
		}
		return nil
	})
}
