package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-that-is-long-enough-for-hmac256"

func newTestManager(t *testing.T) TokenManager {
	t.Helper()
	manager, err := NewTokenManager(testSecret, time.Minute, time.Hour)
	require.NoError(t, err)
	return manager
}

func TestNewTokenManagerRejectsBadConfig(t *testing.T) {
	_, err := NewTokenManager("", time.Minute, time.Hour)
	assert.Error(t, err)

	_, err = NewTokenManager(testSecret, 0, time.Hour)
	assert.Error(t, err)

	_, err = NewTokenManager(testSecret, time.Minute, -time.Hour)
	assert.Error(t, err)
}

func TestGenerateAndValidate(t *testing.T) {
	manager := newTestManager(t)

	pair, err := manager.Generate("user-1", "moderator")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	access, err := manager.ValidateAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", access.UserID)
	assert.Equal(t, "moderator", access.Role)

	refresh, err := manager.ValidateRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", refresh.UserID)
}

func TestValidateRejectsWrongTokenType(t *testing.T) {
	manager := newTestManager(t)
	pair, err := manager.Generate("user-1", "user")
	require.NoError(t, err)

	// refresh в роли access и наоборот
	_, err = manager.ValidateAccess(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	_, err = manager.ValidateRefresh(pair.AccessToken)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestValidateRejectsForeignSignature(t *testing.T) {
	manager := newTestManager(t)
	other, err := NewTokenManager("another-secret-key-also-long-enough-0000", time.Minute, time.Hour)
	require.NoError(t, err)

	pair, err := other.Generate("user-1", "user")
	require.NoError(t, err)

	_, err = manager.ValidateAccess(pair.AccessToken)
	assert.Error(t, err)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	expired, err := NewTokenManager(testSecret, time.Nanosecond, time.Nanosecond)
	require.NoError(t, err)

	pair, err := expired.Generate("user-1", "user")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	_, err = expired.ValidateAccess(pair.AccessToken)
	assert.Error(t, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	manager := newTestManager(t)
	_, err := manager.ValidateAccess("not-a-jwt-at-all")
	assert.Error(t, err)
}
