package services

import (
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"

	"panaderia/internal/apperrors"
	"panaderia/internal/models"
	"panaderia/internal/repositories"
)

// TokenConfig is the signing configuration. It is built once at startup
// and never mutated; the service reads no ambient state at call time.
type TokenConfig struct {
	Secret         string
	Issuer         string
	Audience       string
	ExpiresMinutes int
}

// Claims is the decoded identity carried by a verified token. It is the
// sole source of the acting user on mutating operations.
type Claims struct {
	UserID uint
	Email  string
	Role   string
}

// AuthService issues and verifies tokens and checks login credentials.
type AuthService struct {
	userRepo repositories.UserRepository
	cfg      TokenConfig
}

// NewAuthService creates a new AuthService. ExpiresMinutes defaults to 60.
func NewAuthService(userRepo repositories.UserRepository, cfg TokenConfig) *AuthService {
	if cfg.ExpiresMinutes <= 0 {
		cfg.ExpiresMinutes = 60
	}
	return &AuthService{
		userRepo: userRepo,
		cfg:      cfg,
	}
}

// Login checks the credentials and returns a signed token plus the user.
// The stored credential is compared directly, matching the system this
// replaces. The same generic failure covers unknown email and wrong
// password so callers cannot probe for accounts.
func (s *AuthService) Login(email, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil || user.Password != password {
		return "", nil, apperrors.Unauthenticatedf("invalid credentials")
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", nil, apperrors.Internal(err, "failed to generate token")
	}
	return token, user, nil
}

// IssueToken signs an HS256 token embedding the user's id, email and role.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":     user.Email,
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
		"iss":     s.cfg.Issuer,
		"aud":     s.cfg.Audience,
		"iat":     now.Unix(),
		"exp":     now.Add(time.Duration(s.cfg.ExpiresMinutes) * time.Minute).Unix(),
	})
	return token.SignedString([]byte(s.cfg.Secret))
}

// VerifyToken validates signature, expiry, issuer and audience and decodes
// the identity claims. Any failure is an authentication failure, distinct
// from a valid-but-unauthorized token.
func (s *AuthService) VerifyToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, apperrors.Unauthenticatedf("invalid or expired token")
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperrors.Unauthenticatedf("invalid token claims")
	}
	if s.cfg.Issuer != "" && !mapClaims.VerifyIssuer(s.cfg.Issuer, true) {
		return nil, apperrors.Unauthenticatedf("invalid token issuer")
	}
	if s.cfg.Audience != "" && !mapClaims.VerifyAudience(s.cfg.Audience, true) {
		return nil, apperrors.Unauthenticatedf("invalid token audience")
	}

	// JSON numbers decode as float64.
	userID, ok := mapClaims["user_id"].(float64)
	if !ok {
		return nil, apperrors.Unauthenticatedf("invalid token claims")
	}
	email, _ := mapClaims["email"].(string)
	role, _ := mapClaims["role"].(string)

	return &Claims{
		UserID: uint(userID),
		Email:  email,
		Role:   role,
	}, nil
}
