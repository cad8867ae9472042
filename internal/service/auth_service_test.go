package service

import (
	"context"
	"testing"

	"backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	token, err := env.auth.Register(ctx, RegisterRequest{
		Name:     "Juan",
		Surname:  "Lopez",
		Email:    "juan@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token.AccessToken)
	assert.Equal(t, "bearer", token.TokenType)
	assert.Equal(t, "juan@example.com", token.Account.Email)

	logged, err := env.auth.Login(ctx, LoginRequest{Email: "juan@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, token.Account.ID, logged.Account.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	req := RegisterRequest{Name: "Juan", Email: "juan@example.com", Password: "secret123"}
	_, err := env.auth.Register(ctx, req)
	require.NoError(t, err)

	_, err = env.auth.Register(ctx, req)
	assert.ErrorIs(t, err, apperror.ErrDuplicateAccount)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.Register(ctx, RegisterRequest{Name: "Juan", Email: "juan@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, wrongPassword := env.auth.Login(ctx, LoginRequest{Email: "juan@example.com", Password: "nope"})
	_, unknownEmail := env.auth.Login(ctx, LoginRequest{Email: "ghost@example.com", Password: "secret123"})

	assert.ErrorIs(t, wrongPassword, apperror.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, apperror.ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	token, err := env.auth.Register(ctx, RegisterRequest{
		Name:     "Juan",
		Email:    "juan@example.com",
		Company:  "Fontaneria Lopez",
		Password: "secret123",
	})
	require.NoError(t, err)

	accountID, err := uuid.Parse(token.Account.ID)
	require.NoError(t, err)

	profile, err := env.auth.Profile(ctx, accountID)
	require.NoError(t, err)
	assert.Equal(t, "Fontaneria Lopez", profile.Company)

	_, err = env.auth.Profile(ctx, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
