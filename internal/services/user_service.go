package services

import (
	"panaderia/internal/apperrors"
	"panaderia/internal/models"
	"panaderia/internal/repositories"
)

// UserService handles user administration.
type UserService struct {
	repo repositories.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(repo repositories.UserRepository) *UserService {
	return &UserService{
		repo: repo,
	}
}

// GetAllUsers retrieves all users.
func (s *UserService) GetAllUsers() ([]models.User, error) {
	return s.repo.GetAll()
}

// GetUserByID retrieves a user by their ID.
func (s *UserService) GetUserByID(id uint) (*models.User, error) {
	return s.repo.GetByID(id)
}

// CreateUser creates a new user. The role defaults to Vendedor.
func (s *UserService) CreateUser(user *models.User) error {
	if existing, err := s.repo.GetByEmail(user.Email); err == nil && existing != nil {
		return apperrors.Conflictf("email '%s' already registered", user.Email)
	}
	if user.Role == "" {
		user.Role = models.RoleVendedor
	}
	return s.repo.Create(user)
}

// UpdateUser overwrites an existing user.
func (s *UserService) UpdateUser(user *models.User) error {
	if user.Role == "" {
		user.Role = models.RoleVendedor
	}
	return s.repo.Update(user)
}

// DeleteUser removes a user by their ID.
func (s *UserService) DeleteUser(id uint) error {
	return s.repo.Delete(id)
}
