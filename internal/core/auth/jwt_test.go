package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"velora/internal/core/appcontext"
)

func TestValidateToken_RoundTrip(t *testing.T) {
	cfg := JWTConfig{Secret: "test-secret", Issuer: "suite-auth"}

	token, err := SignToken(cfg, appcontext.Actor{
		UserID: "user-1",
		Email:  "anna@example.com",
		Name:   "Anna",
	}, time.Minute)
	require.NoError(t, err)

	actor, err := NewJWTValidator(cfg).ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", actor.UserID)
	assert.Equal(t, "anna@example.com", actor.Email)
	assert.Equal(t, "Anna", actor.Name)
}

func TestValidateToken_Expired(t *testing.T) {
	cfg := JWTConfig{Secret: "test-secret"}

	token, err := SignToken(cfg, appcontext.Actor{UserID: "user-1"}, -time.Minute)
	require.NoError(t, err)

	_, err = NewJWTValidator(cfg).ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := SignToken(JWTConfig{Secret: "one"}, appcontext.Actor{UserID: "user-1"}, time.Minute)
	require.NoError(t, err)

	_, err = NewJWTValidator(JWTConfig{Secret: "other"}).ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_IssuerMismatch(t *testing.T) {
	cfg := JWTConfig{Secret: "test-secret", Issuer: "someone-else"}

	token, err := SignToken(cfg, appcontext.Actor{UserID: "user-1"}, time.Minute)
	require.NoError(t, err)

	_, err = NewJWTValidator(JWTConfig{Secret: "test-secret", Issuer: "suite-auth"}).ValidateToken(token)
	assert.Error(t, err)
}
