package repositories

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"panaderia/internal/apperrors"
	"panaderia/internal/models"
)

// isUniqueViolation reports whether err is a unique-constraint failure
// from either supported driver.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "SQLSTATE 23505")
}

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// GetAll retrieves all users.
func (r *GORMUserRepository) GetAll() ([]models.User, error) {
	var users []models.User
	if err := r.db.Find(&users).Error; err != nil {
		return nil, apperrors.Internal(err, "failed to get all users")
	}
	return users, nil
}

// GetByID retrieves a user by their ID.
func (r *GORMUserRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("user with ID %d not found", id)
		}
		return nil, apperrors.Internal(err, "failed to get user")
	}
	return &user, nil
}

// GetByEmail retrieves a user by their email.
func (r *GORMUserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("user with email %s not found", email)
		}
		return nil, apperrors.Internal(err, "failed to get user by email")
	}
	return &user, nil
}

// Create creates a new user. The unique email index is the authority on
// duplicates; a violation here surfaces as a conflict even when a
// concurrent insert slipped past an earlier lookup.
func (r *GORMUserRepository) Create(user *models.User) error {
	if err := r.db.Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflictf("user with email %s already exists", user.Email)
		}
		return apperrors.Internal(err, "failed to create user")
	}
	return nil
}

// Update overwrites an existing user. A zero-row update is re-checked
// against existence so a concurrent delete surfaces as not-found.
func (r *GORMUserRepository) Update(user *models.User) error {
	res := r.db.Model(&models.User{ID: user.ID}).
		Select("Email", "Password", "Role").
		Updates(user)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return apperrors.Conflictf("user with email %s already exists", user.Email)
		}
		return apperrors.Internal(res.Error, "failed to update user")
	}
	if res.RowsAffected == 0 {
		var exists int64
		if err := r.db.Model(&models.User{}).Where("id = ?", user.ID).Count(&exists).Error; err == nil && exists == 0 {
			return apperrors.NotFoundf("user with ID %d not found", user.ID)
		}
		return apperrors.Conflictf("user with ID %d was modified concurrently", user.ID)
	}
	return nil
}

// Delete removes a user by their ID.
func (r *GORMUserRepository) Delete(id uint) error {
	res := r.db.Delete(&models.User{}, id)
	if res.Error != nil {
		return apperrors.Internal(res.Error, "failed to delete user")
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFoundf("user with ID %d not found", id)
	}
	return nil
}
