package security

import (
	"testing"

	"ffclash/internal/platform/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)
	assert.True(t, CheckPasswordHash("secret123", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestGenerateResetToken(t *testing.T) {
	a, err := GenerateResetToken()
	require.NoError(t, err)
	b, err := GenerateResetToken()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.Regexp(t, `^[0-9a-f]{64}$`, a)
	assert.NotEqual(t, a, b)
}

func TestGenerateTokenClaims(t *testing.T) {
	config.AppConfig = &config.Config{JWTSecret: "test-secret", JWTExpirationHours: 1}
	InitJWT()

	tokenString, err := GenerateToken("user-1", "user")
	require.NoError(t, err)

	token, err := TokenAuth.Decode(tokenString)
	require.NoError(t, err)

	claims, err := token.AsMap(t.Context())
	require.NoError(t, err)

	sub, err := GetSubjectFromClaims(jwt.MapClaims(claims))
	require.NoError(t, err)
	assert.Equal(t, "user-1", sub)

	typ, err := GetTokenTypeFromClaims(jwt.MapClaims(claims))
	require.NoError(t, err)
	assert.Equal(t, "user", typ)
}

func TestClaimsMissing(t *testing.T) {
	_, err := GetSubjectFromClaims(jwt.MapClaims{})
	assert.Error(t, err)
	_, err = GetTokenTypeFromClaims(jwt.MapClaims{"type": 1})
	assert.Error(t, err)
}
