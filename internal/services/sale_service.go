package services

import (
	"encoding/json"
	"log"

	"panaderia/internal/apperrors"
	"panaderia/internal/models"
	"panaderia/internal/repositories"
)

// EventPublisher publishes domain events after a committed transaction.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// SaleService handles business logic related to sales. The transactional
// stock work lives in the repository; this layer validates the request
// before any persistence is attempted and emits events after commit.
type SaleService struct {
	saleRepo  repositories.SaleRepository
	publisher EventPublisher
}

// NewSaleService creates a new SaleService. publisher may be nil when no
// message broker is configured.
func NewSaleService(saleRepo repositories.SaleRepository, publisher EventPublisher) *SaleService {
	return &SaleService{
		saleRepo:  saleRepo,
		publisher: publisher,
	}
}

// GetAllSales retrieves all sales, newest first.
func (s *SaleService) GetAllSales() ([]models.Sale, error) {
	return s.saleRepo.GetAll()
}

// GetSaleByID retrieves a single sale with its full join.
func (s *SaleService) GetSaleByID(id uint) (*models.Sale, error) {
	return s.saleRepo.GetByID(id)
}

// GetSalesByUser retrieves the sales owned by userID, newest first. The
// id must come from the caller's verified token, never the request body.
func (s *SaleService) GetSalesByUser(userID uint) ([]models.Sale, error) {
	return s.saleRepo.GetByUser(userID)
}

// CreateSale records a sale for userID. All validation happens before the
// transaction starts; once it starts, any failure rolls everything back.
func (s *SaleService) CreateSale(userID uint, lines []models.SaleLine) (*models.Sale, error) {
	if len(lines) == 0 {
		return nil, apperrors.Validationf("a sale must contain at least one product")
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, apperrors.Validationf("quantity must be greater than 0")
		}
		if line.Quantity > 1000 {
			return nil, apperrors.Validationf("quantity must not exceed 1000")
		}
	}

	sale, err := s.saleRepo.Create(userID, lines)
	if err != nil {
		return nil, err
	}

	s.publishEvent("sale.created", sale)
	return sale, nil
}

// DeleteSale removes a sale and restores the referenced products' stock.
func (s *SaleService) DeleteSale(id uint) error {
	sale, err := s.saleRepo.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.saleRepo.Delete(id); err != nil {
		return err
	}

	s.publishEvent("sale.deleted", sale)
	return nil
}

// publishEvent emits a sale event. Publishing is best-effort: the sale is
// already committed, so a broker failure is logged and never surfaced.
func (s *SaleService) publishEvent(routingKey string, sale *models.Sale) {
	if s.publisher == nil {
		return
	}

	body, err := json.Marshal(map[string]interface{}{
		"saleID": sale.ID,
		"userID": sale.UserID,
		"total":  sale.Total,
	})
	if err != nil {
		log.Printf("Failed to marshal %s event for sale %d: %v", routingKey, sale.ID, err)
		return
	}

	if err := s.publisher.Publish(routingKey, body); err != nil {
		log.Printf("Warning: failed to publish %s event for sale %d: %v", routingKey, sale.ID, err)
	}
}
