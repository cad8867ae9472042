package auth

import (
	"testing"
	"time"

	"backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundtrip(t *testing.T) {
	manager := NewManager(Config{Secret: []byte("test-secret")})
	accountID := uuid.New()

	token, err := manager.Sign(accountID)
	require.NoError(t, err)

	got, err := manager.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, accountID, got)
}

func TestVerifyExpiredToken(t *testing.T) {
	manager := NewManager(Config{Secret: []byte("test-secret"), TokenTTL: time.Nanosecond})

	token, err := manager.Sign(uuid.New())
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	_, err = manager.Verify(token)
	assert.ErrorIs(t, err, apperror.ErrTokenExpired)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	manager := NewManager(Config{Secret: []byte("test-secret")})

	_, err := manager.Verify("not-a-token")
	assert.ErrorIs(t, err, apperror.ErrInvalidToken)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	signer := NewManager(Config{Secret: []byte("secret-a")})
	verifier := NewManager(Config{Secret: []byte("secret-b")})

	token, err := signer.Sign(uuid.New())
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, apperror.ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	digest, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", digest)

	assert.True(t, CheckPassword("secret123", digest))
	assert.False(t, CheckPassword("wrong", digest))
}
