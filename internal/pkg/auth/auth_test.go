package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront/internal/config"
	"golang.org/x/crypto/bcrypt"
)

func jwtConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "storefront-test"},
		JWT: config.JWTConfig{
			Secret:            "0123456789abcdef0123456789abcdef",
			AccessTokenExpiry: time.Hour,
		},
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	manager := NewJWTManager(jwtConfig())

	token, expiresAt, err := manager.GenerateAccessToken("nhat")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := manager.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "nhat", claims.Username)
	assert.Equal(t, "nhat", claims.Subject)
	assert.Equal(t, "storefront-test", claims.Issuer)
}

func TestValidateAccessToken_Rejects(t *testing.T) {
	manager := NewJWTManager(jwtConfig())
	token, _, err := manager.GenerateAccessToken("nhat")
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		cfg := jwtConfig()
		cfg.JWT.Secret = "ffffffffffffffffffffffffffffffff"
		_, err := NewJWTManager(cfg).ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		later := NewJWTManager(jwtConfig())
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := manager.ValidateAccessToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unsigned", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Username: "nhat"})
		raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = manager.ValidateAccessToken(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc", ExtractTokenFromHeader("Bearer abc"))
	assert.Equal(t, "abc", ExtractTokenFromHeader("bearer abc"))
	assert.Empty(t, ExtractTokenFromHeader("Basic abc"))
	assert.Empty(t, ExtractTokenFromHeader("Bearer "))
	assert.Empty(t, ExtractTokenFromHeader(""))
}

func TestPasswordManager(t *testing.T) {
	manager := NewPasswordManager(bcrypt.MinCost)

	hash, err := manager.HashPassword("123456")
	require.NoError(t, err)
	assert.NotEqual(t, "123456", hash)

	assert.NoError(t, manager.VerifyPassword("123456", hash))
	assert.ErrorIs(t, manager.VerifyPassword("654321", hash), ErrPasswordMismatch)

	_, err = manager.HashPassword("")
	assert.Error(t, err)
}

func TestNewPasswordManager_ClampsCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewPasswordManager(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewPasswordManager(99).cost)
	assert.Equal(t, 12, NewPasswordManager(12).cost)
}
