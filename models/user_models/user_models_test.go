package user_models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamevents/marketplace/logger"
	"github.com/dreamevents/marketplace/models/shared_models"
)

func TestMain(m *testing.M) {
	logger.InitLoggers()
	m.Run()
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	ok, err := VerifyPassword("correct horse battery staple", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPasswordSaltsDiffer(t *testing.T) {
	h1, err := HashPassword("same password")
	require.NoError(t, err)
	h2, err := HashPassword("same password")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	_, err := VerifyPassword("whatever", "not-a-valid-hash")
	assert.Error(t, err)

	_, err = VerifyPassword("whatever", "a$b$c")
	assert.Error(t, err)
}

func TestNewUserDefaults(t *testing.T) {
	user, err := NewUser("Priya Sharma", "  Priya@Example.COM ", "hash", shared_models.RoleVendor)
	require.NoError(t, err)

	assert.Equal(t, "priya@example.com", user.Email)
	assert.Equal(t, shared_models.RoleVendor, user.Role)
	assert.True(t, user.NotificationsEnabled)
	assert.False(t, user.ProfileComplete)
	assert.Zero(t, user.UnreadNotifications)
	assert.Nil(t, user.PushToken)
}
