package handlers

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"panaderia/internal/models"
	"panaderia/internal/services"
)

// ProductHandler handles HTTP requests for the catalog.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the catalog routes. Reads are public; writes
// are mounted behind the admin guard.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, authRequired, adminOnly fiber.Handler) {
	products := router.Group("/products")
	products.Get("/", h.HandleGetProducts)
	products.Get("/categories", h.HandleGetCategories)
	products.Get("/category/:category", h.HandleGetByCategory)
	products.Get("/:id", h.HandleGetProduct)
	products.Post("/", authRequired, adminOnly, h.HandleCreateProduct)
	products.Put("/:id", authRequired, adminOnly, h.HandleUpdateProduct)
	products.Patch("/:id/stock", authRequired, adminOnly, h.HandleAdjustStock)
	products.Delete("/:id", authRequired, adminOnly, h.HandleDeleteProduct)
}

// HandleGetProducts lists all products ordered by category, then name.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

// HandleGetProduct retrieves a single product.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}
	product, err := h.service.GetProductByID(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

// HandleGetByCategory lists products in a category, case-insensitively.
func (h *ProductHandler) HandleGetByCategory(c *fiber.Ctx) error {
	products, err := h.service.GetProductsByCategory(c.Params("category"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

// HandleGetCategories lists the distinct category names.
func (h *ProductHandler) HandleGetCategories(c *fiber.Ctx) error {
	categories, err := h.service.GetCategories()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(categories)
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		log.Printf("Error parsing product request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}
	if err := h.validate.Struct(product); err != nil {
		return respondValidationErrors(c, err)
	}

	if err := h.service.CreateProduct(&product); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct overwrites an existing product. The path id wins;
// a mismatched body id is rejected.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}

	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		log.Printf("Error parsing product request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}
	if product.ID != 0 && product.ID != id {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Product ID in body does not match the URL",
		})
	}
	product.ID = id

	if err := h.validate.Struct(product); err != nil {
		return respondValidationErrors(c, err)
	}

	if err := h.service.UpdateProduct(&product); err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

// StockUpdateRequest carries the absolute stock value for the admin
// override.
type StockUpdateRequest struct {
	Stock *int `json:"stock" validate:"required"`
}

// HandleAdjustStock sets a product's stock directly.
func (h *ProductHandler) HandleAdjustStock(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}

	var req StockUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing stock request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationErrors(c, err)
	}

	product, err := h.service.AdjustStock(id, *req.Stock)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Stock updated successfully",
		"product": product,
	})
}

// HandleDeleteProduct removes a product unless a sale references it.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.service.DeleteProduct(id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Product deleted successfully",
	})
}
