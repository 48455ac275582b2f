// AngelaMos | 2026
// jwt_test.go

package auth

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/learnify/internal/config"
	"github.com/angelamos/learnify/internal/core"
)

func newTestManager(t *testing.T, expire time.Duration) *JWTManager {
	t.Helper()

	dir := t.TempDir()
	privatePath := filepath.Join(dir, "private.pem")
	publicPath := filepath.Join(dir, "public.pem")
	require.NoError(t, GenerateKeyPair(privatePath, publicPath))

	manager, err := NewJWTManager(config.JWTConfig{
		PrivateKeyPath:    privatePath,
		PublicKeyPath:     publicPath,
		AccessTokenExpire: expire,
		Issuer:            "learnify-test",
		Audience:          "learnify-test-api",
		CookieName:        "token",
	})
	require.NoError(t, err)
	return manager
}

func TestCreateAndVerifyAccessToken(t *testing.T) {
	manager := newTestManager(t, time.Hour)
	userID := uuid.New()

	token, expiresAt, err := manager.CreateAccessToken(AccessTokenClaims{
		UserID: userID,
		Role:   "instructor",
	})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := manager.VerifyAccessToken(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "instructor", claims.Role)
	assert.NotEmpty(t, claims.JTI)
	assert.WithinDuration(t, expiresAt, claims.ExpiresAt, time.Second)
}

func TestVerifyExpiredToken(t *testing.T) {
	manager := newTestManager(t, -time.Minute)

	token, _, err := manager.CreateAccessToken(AccessTokenClaims{
		UserID: uuid.New(),
		Role:   "student",
	})
	require.NoError(t, err)

	_, err = manager.VerifyAccessToken(context.Background(), token)
	assert.ErrorIs(t, err, core.ErrTokenExpired)
}

func TestVerifyTokenFromOtherKey(t *testing.T) {
	issuing := newTestManager(t, time.Hour)
	verifying := newTestManager(t, time.Hour)

	token, _, err := issuing.CreateAccessToken(AccessTokenClaims{
		UserID: uuid.New(),
		Role:   "student",
	})
	require.NoError(t, err)

	_, err = verifying.VerifyAccessToken(context.Background(), token)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestVerifyGarbageToken(t *testing.T) {
	manager := newTestManager(t, time.Hour)

	_, err := manager.VerifyAccessToken(
		context.Background(),
		"definitely.not.a-jwt",
	)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestKeyIDIsStable(t *testing.T) {
	manager := newTestManager(t, time.Hour)

	kid := manager.GetKeyID()
	assert.NotEmpty(t, kid)
	assert.Equal(t, kid, manager.GetKeyID())
}
