package handlers

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"panaderia/internal/middleware"
	"panaderia/internal/models"
	"panaderia/internal/services"
)

// SaleHandler handles HTTP requests for sales.
type SaleHandler struct {
	service  *services.SaleService
	validate *validator.Validate
}

// NewSaleHandler creates a new SaleHandler.
func NewSaleHandler(service *services.SaleService) *SaleHandler {
	return &SaleHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the sale routes. Every route requires a token;
// the role guards differ per operation.
func (h *SaleHandler) RegisterRoutes(router fiber.Router, authRequired, sellerOrAdmin, adminOnly fiber.Handler) {
	sales := router.Group("/sales", authRequired)
	sales.Get("/", sellerOrAdmin, h.HandleGetSales)
	sales.Get("/mine", sellerOrAdmin, h.HandleGetMySales)
	sales.Get("/:id", h.HandleGetSale)
	sales.Post("/", sellerOrAdmin, h.HandleCreateSale)
	sales.Delete("/:id", adminOnly, h.HandleDeleteSale)
}

// SaleRequest is the request body for creating a sale. It carries line
// items only; the acting user always comes from the token.
type SaleRequest struct {
	Items []models.SaleLine `json:"items" validate:"required,min=1,dive"`
}

// HandleGetSales lists all sales, newest first.
func (h *SaleHandler) HandleGetSales(c *fiber.Ctx) error {
	sales, err := h.service.GetAllSales()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sales)
}

// HandleGetMySales lists the sales owned by the authenticated caller.
func (h *SaleHandler) HandleGetMySales(c *fiber.Ctx) error {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication required",
		})
	}
	sales, err := h.service.GetSalesByUser(claims.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sales)
}

// HandleGetSale retrieves a single sale with its full join.
func (h *SaleHandler) HandleGetSale(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}
	sale, err := h.service.GetSaleByID(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sale)
}

// HandleCreateSale records a sale for the authenticated caller.
func (h *SaleHandler) HandleCreateSale(c *fiber.Ctx) error {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication required",
		})
	}

	var req SaleRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing sale request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationErrors(c, err)
	}

	sale, err := h.service.CreateSale(claims.UserID, req.Items)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sale)
}

// HandleDeleteSale removes a sale and restores the referenced products'
// stock.
func (h *SaleHandler) HandleDeleteSale(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.service.DeleteSale(id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Sale deleted successfully",
	})
}
