package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	cfg := &config.Config{
		App:      config.AppConfig{Name: "storefront-test"},
		JWT:      config.JWTConfig{Secret: "0123456789abcdef0123456789abcdef", AccessTokenExpiry: time.Hour},
		Auth:     config.AuthConfig{FixedUsername: "nhat", FixedPassword: "123456"},
		Security: config.SecurityConfig{BcryptCost: bcrypt.MinCost},
	}
	svc, err := NewService(cfg, logger.Discard())
	require.NoError(t, err)
	return svc
}

func TestLogin(t *testing.T) {
	svc := newTestService(t)

	resp, err := svc.Login(LoginRequest{Username: " nhat ", Password: "123456"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, "nhat", resp.Username)
	assert.True(t, resp.ExpiresAt.After(time.Now()))

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "nhat", claims.Username)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc := newTestService(t)

	tests := []LoginRequest{
		{Username: "nhat", Password: "wrong"},
		{Username: "someone", Password: "123456"},
		{Username: "", Password: ""},
	}
	for _, req := range tests {
		_, err := svc.Login(req)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}
}

func TestService_StoresOnlyTheHash(t *testing.T) {
	svc := newTestService(t)

	assert.NotEqual(t, "123456", svc.passwordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(svc.passwordHash), []byte("123456")))
}
