package jwttoken

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "lettings/pkg/domain"
	dErrors "lettings/pkg/domain-errors"
	"lettings/pkg/requestcontext"
)

var (
	userID     = id.UserID(uuid.New())
	jwtService = NewJWTService("test-signing-key", "test-issuer", "test-audience", time.Minute)
)

func Test_GenerateAndValidate(t *testing.T) {
	token, err := jwtService.GenerateAccessToken(context.Background(), userID, id.RoleLandlord)
	require.NoError(t, err)

	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "landlord", claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func Test_GenerateRejectsUnknownRole(t *testing.T) {
	_, err := jwtService.GenerateAccessToken(context.Background(), userID, id.Role("owner"))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_ValidateToken(t *testing.T) {
	t.Run("expired", func(t *testing.T) {
		ctx := requestcontext.WithTime(context.Background(), time.Now().Add(-time.Hour))
		token, err := jwtService.GenerateAccessToken(ctx, userID, id.RoleAgent)
		require.NoError(t, err)

		_, err = jwtService.ValidateToken(token)
		require.Error(t, err)
		assert.Equal(t, "token expired", err.Error())
	})

	t.Run("wrong key", func(t *testing.T) {
		other := NewJWTService("other-key", "test-issuer", "test-audience", time.Minute)
		token, err := other.GenerateAccessToken(context.Background(), userID, id.RoleAgent)
		require.NoError(t, err)

		_, err = jwtService.ValidateToken(token)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("wrong audience", func(t *testing.T) {
		other := NewJWTService("test-signing-key", "test-issuer", "someone-else", time.Minute)
		token, err := other.GenerateAccessToken(context.Background(), userID, id.RoleAgent)
		require.NoError(t, err)

		_, err = jwtService.ValidateToken(token)
		require.Error(t, err)
	})

	t.Run("alg none", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, AccessTokenClaims{UserID: userID.String(), Role: "agent"})
		signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = jwtService.ValidateToken(signed)
		require.Error(t, err)
	})
}

func Test_MiddlewareAdapter(t *testing.T) {
	token, err := jwtService.GenerateAccessToken(context.Background(), userID, id.RoleTenant)
	require.NoError(t, err)

	claims, err := NewMiddlewareAdapter(jwtService).ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "tenant", claims.Role)
}
