// internal/domain/auth/service.go
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/config"
	pkgauth "github.com/your-org/storefront/internal/pkg/auth"
)

// ErrInvalidCredentials is returned when username or password do not match
var ErrInvalidCredentials = errors.New("invalid username or password")

// LoginRequest represents the login payload
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents an issued access token
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	Username    string    `json:"username"`
}

// Service checks the single configured account and issues tokens
type Service struct {
	username     string
	passwordHash string
	passwords    *pkgauth.PasswordManager
	tokens       *pkgauth.JWTManager
	logger       *logrus.Logger
}

// NewService hashes the configured password once so that logins never
// compare plaintext
func NewService(cfg *config.Config, logger *logrus.Logger) (*Service, error) {
	passwords := pkgauth.NewPasswordManager(cfg.Security.BcryptCost)

	hash, err := passwords.HashPassword(cfg.Auth.FixedPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash configured password: %w", err)
	}

	return &Service{
		username:     cfg.Auth.FixedUsername,
		passwordHash: hash,
		passwords:    passwords,
		tokens:       pkgauth.NewJWTManager(cfg),
		logger:       logger,
	}, nil
}

// Login validates credentials and returns a signed access token
func (s *Service) Login(req LoginRequest) (*LoginResponse, error) {
	username := strings.TrimSpace(req.Username)

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	passErr := s.passwords.VerifyPassword(req.Password, s.passwordHash)
	if !userOK || passErr != nil {
		s.logger.WithField("username", username).Info("Login rejected")
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.GenerateAccessToken(username)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.WithField("username", username).Info("User logged in")

	return &LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		Username:    username,
	}, nil
}

// ValidateToken returns the claims of a valid access token
func (s *Service) ValidateToken(token string) (*pkgauth.Claims, error) {
	return s.tokens.ValidateAccessToken(token)
}
