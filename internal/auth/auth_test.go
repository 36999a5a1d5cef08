package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rogerio-castellano/inventory-master/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	SetSecret("test-secret")
	user := models.User{ID: uuid.New(), Email: "ada@example.com", Role: models.RoleAdmin}

	token, err := GenerateToken(user)
	require.NoError(t, err)

	_, claims, err := TokenClaims("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims["sub"])
	assert.Equal(t, "ada@example.com", claims["email"])
	assert.Equal(t, models.RoleAdmin, claims["role"])
}

func TestTokenClaims_Rejects(t *testing.T) {
	SetSecret("test-secret")

	_, _, err := TokenClaims("")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, _, err = TokenClaims("Bearer not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	token, err := GenerateToken(models.User{ID: uuid.New(), Role: models.RoleUser})
	require.NoError(t, err)
	SetSecret("rotated")
	_, _, err = TokenClaims(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMemoryTokenStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryTokenStore()
	userID := uuid.New()
	token := NewRefreshToken()

	require.NoError(t, store.Save(ctx, token, userID, time.Hour))
	got, err := store.Lookup(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	require.NoError(t, store.Revoke(ctx, token))
	_, err = store.Lookup(ctx, token)
	assert.ErrorIs(t, err, ErrRefreshTokenNotFound)

	require.NoError(t, store.Save(ctx, "expired", userID, -time.Second))
	_, err = store.Lookup(ctx, "expired")
	assert.ErrorIs(t, err, ErrRefreshTokenNotFound)
}
