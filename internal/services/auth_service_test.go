package services_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"panaderia/internal/apperrors"
	"panaderia/internal/models"
	"panaderia/internal/services"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetAll() ([]models.User, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(id uint) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

var testTokenConfig = services.TokenConfig{
	Secret:         "test_jwt_secret",
	Issuer:         "panaderia-test",
	Audience:       "panaderia-test-clients",
	ExpiresMinutes: 60,
}

func TestAuthService_Login(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testTokenConfig)

	user := &models.User{
		ID:       7,
		Email:    "vendedor@panaderia.com",
		Password: "vendedor123",
		Role:     models.RoleVendedor,
	}

	// Successful login returns a token and the user.
	mockRepo.On("GetByEmail", user.Email).Return(user, nil).Once()
	token, loggedIn, err := authService.Login(user.Email, "vendedor123")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, loggedIn.ID)
	mockRepo.AssertExpectations(t)

	// Wrong password is a generic authentication failure.
	mockRepo.On("GetByEmail", user.Email).Return(user, nil).Once()
	_, _, err = authService.Login(user.Email, "wrongpassword")
	assert.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeUnauthenticated))
	assert.Contains(t, err.Error(), "invalid credentials")
	mockRepo.AssertExpectations(t)

	// Unknown email yields the same generic failure.
	mockRepo.On("GetByEmail", "nobody@panaderia.com").
		Return(nil, apperrors.NotFoundf("user with email nobody@panaderia.com not found")).Once()
	_, _, err = authService.Login("nobody@panaderia.com", "vendedor123")
	assert.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeUnauthenticated))
	assert.Contains(t, err.Error(), "invalid credentials")
	mockRepo.AssertExpectations(t)
}

func TestAuthService_TokenRoundTrip(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testTokenConfig)

	user := &models.User{
		ID:    3,
		Email: "admin@panaderia.com",
		Role:  models.RoleAdmin,
	}

	token, err := authService.IssueToken(user)
	assert.NoError(t, err)

	claims, err := authService.VerifyToken(token)
	assert.NoError(t, err)
	assert.Equal(t, uint(3), claims.UserID)
	assert.Equal(t, "admin@panaderia.com", claims.Email)
	assert.Equal(t, models.RoleAdmin, claims.Role)

	// The raw payload carries the subject and registered claims too.
	parsed, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(testTokenConfig.Secret), nil
	})
	assert.NoError(t, err)
	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	assert.True(t, ok)
	assert.Equal(t, "admin@panaderia.com", mapClaims["sub"])
	assert.Equal(t, testTokenConfig.Issuer, mapClaims["iss"])
	assert.Equal(t, testTokenConfig.Audience, mapClaims["aud"])
}

// forgeToken signs a token with arbitrary claims for negative tests.
func forgeToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	assert.NoError(t, err)
	return signed
}

func TestAuthService_VerifyToken_Rejections(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testTokenConfig)

	base := func() jwt.MapClaims {
		return jwt.MapClaims{
			"sub":     "admin@panaderia.com",
			"user_id": 3,
			"email":   "admin@panaderia.com",
			"role":    models.RoleAdmin,
			"iss":     testTokenConfig.Issuer,
			"aud":     testTokenConfig.Audience,
			"iat":     time.Now().Unix(),
			"exp":     time.Now().Add(time.Hour).Unix(),
		}
	}

	// Malformed token.
	_, err := authService.VerifyToken("not.a.token")
	assert.True(t, apperrors.Is(err, apperrors.CodeUnauthenticated))

	// Wrong signing secret.
	_, err = authService.VerifyToken(forgeToken(t, "other_secret", base()))
	assert.True(t, apperrors.Is(err, apperrors.CodeUnauthenticated))

	// Expired token.
	expired := base()
	expired["exp"] = time.Now().Add(-time.Hour).Unix()
	_, err = authService.VerifyToken(forgeToken(t, testTokenConfig.Secret, expired))
	assert.True(t, apperrors.Is(err, apperrors.CodeUnauthenticated))

	// Wrong issuer.
	badIssuer := base()
	badIssuer["iss"] = "someone-else"
	_, err = authService.VerifyToken(forgeToken(t, testTokenConfig.Secret, badIssuer))
	assert.True(t, apperrors.Is(err, apperrors.CodeUnauthenticated))

	// Wrong audience.
	badAudience := base()
	badAudience["aud"] = "someone-else"
	_, err = authService.VerifyToken(forgeToken(t, testTokenConfig.Secret, badAudience))
	assert.True(t, apperrors.Is(err, apperrors.CodeUnauthenticated))

	// A valid token still verifies after all the rejections above.
	claims, err := authService.VerifyToken(forgeToken(t, testTokenConfig.Secret, base()))
	assert.NoError(t, err)
	assert.Equal(t, uint(3), claims.UserID)
}
