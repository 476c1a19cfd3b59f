package handlers

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"panaderia/internal/models"
	"panaderia/internal/services"
)

// UserHandler handles HTTP requests for user administration.
type UserHandler struct {
	service  *services.UserService
	validate *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the user routes. Listing and mutation are
// admin-only; any authenticated caller may fetch a single user.
func (h *UserHandler) RegisterRoutes(router fiber.Router, authRequired, adminOnly fiber.Handler) {
	users := router.Group("/users", authRequired)
	users.Get("/", adminOnly, h.HandleGetUsers)
	users.Get("/:id", h.HandleGetUser)
	users.Post("/", adminOnly, h.HandleCreateUser)
	users.Put("/:id", adminOnly, h.HandleUpdateUser)
	users.Delete("/:id", adminOnly, h.HandleDeleteUser)
}

// HandleGetUsers lists all users.
func (h *UserHandler) HandleGetUsers(c *fiber.Ctx) error {
	users, err := h.service.GetAllUsers()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// HandleGetUser retrieves a single user.
func (h *UserHandler) HandleGetUser(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}
	user, err := h.service.GetUserByID(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// UserRequest is the request body for creating or updating a user. The
// model hides the password from JSON output, so input needs its own type.
type UserRequest struct {
	ID       uint   `json:"id"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,min=4,max=100"`
	Role     string `json:"role" validate:"omitempty,oneof=Admin Vendedor"`
}

// HandleCreateUser creates a new user account.
func (h *UserHandler) HandleCreateUser(c *fiber.Ctx) error {
	var req UserRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing user request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationErrors(c, err)
	}

	user := models.User{
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	}
	if err := h.service.CreateUser(&user); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// HandleUpdateUser overwrites an existing user.
func (h *UserHandler) HandleUpdateUser(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}

	var req UserRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing user request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}
	if req.ID != 0 && req.ID != id {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "User ID in body does not match the URL",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationErrors(c, err)
	}

	user := models.User{
		ID:       id,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	}
	if err := h.service.UpdateUser(&user); err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// HandleDeleteUser removes a user account.
func (h *UserHandler) HandleDeleteUser(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.service.DeleteUser(id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "User deleted successfully",
	})
}
