package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"auction-house/internal/auctionerrors"
	"auction-house/internal/models"
	"auction-house/internal/repository"
	"auction-house/utils"
)

// AuthService is the identity collaborator: it registers accounts, verifies
// credentials and issues/validates the JWTs the rest of the service
// consumes. Domain code only ever sees the resolved user id.
type AuthService struct {
	users     repository.UserStore
	jwtSecret []byte
	jwtExpiry time.Duration
}

// NewAuthService creates a new AuthService instance
func NewAuthService(users repository.UserStore, jwtSecret string, jwtExpiry time.Duration) (*AuthService, error) {
	if jwtSecret == "" {
		return nil, fmt.Errorf("auth: JWT secret must not be empty")
	}
	if jwtExpiry <= 0 {
		jwtExpiry = 24 * time.Hour
	}
	return &AuthService{
		users:     users,
		jwtSecret: []byte(jwtSecret),
		jwtExpiry: jwtExpiry,
	}, nil
}

// Register creates a new account. A mismatched confirmation or a taken
// username leaves no user record behind. The stored record only ever holds
// the bcrypt hash.
func (s *AuthService) Register(username, email, password, confirmation string) (models.User, error) {
	if username == "" || password == "" {
		return models.User{}, fmt.Errorf("auth: %w - username and password are required", auctionerrors.ErrAuthFailure)
	}
	if password != confirmation {
		return models.User{}, fmt.Errorf("auth: %w", auctionerrors.ErrPasswordMismatch)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("auth: failed to hash password: %w", err)
	}

	user := models.User{
		UserID:       utils.GenerateID(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    utils.Now(),
	}
	if err := s.users.CreateUser(user); err != nil {
		if errors.Is(err, auctionerrors.ErrDuplicateUsername) {
			return models.User{}, fmt.Errorf("auth: %w", auctionerrors.ErrDuplicateUsername)
		}
		return models.User{}, fmt.Errorf("auth: failed to create user %s: %w", username, err)
	}

	user.PasswordHash = ""
	return user, nil
}

// Login verifies the credentials and returns a signed token. Unknown
// usernames and wrong passwords both surface as ErrAuthFailure.
func (s *AuthService) Login(username, password string) (string, error) {
	user, err := s.users.GetUserByUsername(username)
	if err != nil {
		if errors.Is(err, auctionerrors.ErrUserNotFound) {
			return "", fmt.Errorf("auth: %w", auctionerrors.ErrAuthFailure)
		}
		return "", fmt.Errorf("auth: failed to look up user %s: %w", username, err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", fmt.Errorf("auth: %w", auctionerrors.ErrAuthFailure)
	}

	return s.issueToken(user.UserID)
}

// CurrentUser resolves a validated token's subject to the full account
func (s *AuthService) CurrentUser(userID string) (models.User, error) {
	user, err := s.users.GetUserByID(userID)
	if err != nil {
		return models.User{}, fmt.Errorf("auth: failed to resolve user %s: %w", userID, err)
	}
	user.PasswordHash = ""
	return user, nil
}

// ValidateToken parses the token and returns the user id it was issued for
func (s *AuthService) ValidateToken(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return "", fmt.Errorf("auth: token validation failed: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("auth: token is missing the user_id claim")
	}
	return userID, nil
}

// issueToken signs an HS256 token carrying the user id
func (s *AuthService) issueToken(userID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"iat":     now.Unix(),
		"exp":     now.Add(s.jwtExpiry).Unix(),
	})
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("auth: failed to sign token: %w", err)
	}
	return signed, nil
}
