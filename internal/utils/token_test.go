package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amaamoun99/recepito/internal/models"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	signed, exp, err := tm.Generate("64f1b0a2c3d4e5f601234567", models.RoleUser)
	require.NoError(t, err)
	assert.NotEmpty(t, signed)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := tm.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "64f1b0a2c3d4e5f601234567", claims.UserID)
	assert.Equal(t, string(models.RoleUser), claims.Role)
	require.NotNil(t, claims.IssuedAt)
}

func TestTokenManager_Expired(t *testing.T) {
	tm := NewTokenManager("test-secret", -time.Minute)

	signed, _, err := tm.Generate("64f1b0a2c3d4e5f601234567", models.RoleUser)
	require.NoError(t, err)

	_, err = tm.Parse(signed)
	assert.True(t, errors.Is(err, ErrTokenExpired))
}

func TestTokenManager_WrongSecret(t *testing.T) {
	signed, _, err := NewTokenManager("right-secret", time.Hour).Generate("64f1b0a2c3d4e5f601234567", models.RoleUser)
	require.NoError(t, err)

	_, err = NewTokenManager("wrong-secret", time.Hour).Parse(signed)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestTokenManager_Garbage(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	_, err := tm.Parse("not.a.token")
	assert.True(t, errors.Is(err, ErrInvalidToken))
}
