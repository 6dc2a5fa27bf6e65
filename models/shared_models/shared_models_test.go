package shared_models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamevents/marketplace/logger"
)

func TestMain(m *testing.M) {
	logger.InitLoggers()
	m.Run()
}

func TestAccessTokenRoundTrip(t *testing.T) {
	userID := uuid.New()

	tokenString, err := GenerateAccessToken(userID, RoleVendor, time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	claims, err := ParseAccessToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, RoleVendor, claims.Role)
	assert.Equal(t, "access", claims.Type)
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	userID := uuid.New()

	tokenString, err := GenerateAccessToken(userID, RoleCustomer, -2*time.Minute)
	require.NoError(t, err)

	_, err = ParseAccessToken(tokenString)
	assert.Error(t, err)
}

func TestParseAccessTokenRejectsGarbage(t *testing.T) {
	_, err := ParseAccessToken("not.a.token")
	assert.Error(t, err)
}

func TestParseAccessTokenRejectsRefreshSignature(t *testing.T) {
	userID := uuid.New()

	// Refresh tokens are signed with a different secret and must not pass
	// access-token validation.
	refresh, _, err := GenerateRefreshToken(userID, RoleCustomer, time.Minute)
	require.NoError(t, err)

	_, err = ParseAccessToken(refresh)
	assert.Error(t, err)
}

func TestGenerateUUIDv7Monotonic(t *testing.T) {
	a, err := GenerateUUIDv7()
	require.NoError(t, err)
	b, err := GenerateUUIDv7()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Equal(t, uuid.Version(7), a.Version())
}
