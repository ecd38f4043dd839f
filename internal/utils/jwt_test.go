package utils_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbdullaK123/writing-website-backend/internal/utils"
)

const testSecret = "test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, "HS256", "alice", time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)

	claims, err := utils.ParseToken(testSecret, tok.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, utils.TokenTypeAccess, claims.Type)
	assert.WithinDuration(t, tok.Exp, claims.ExpiresAt.Time, time.Second)
}

func TestRefreshTokenCarriesRefreshType(t *testing.T) {
	tok, err := utils.NewRefreshToken(testSecret, "HS256", "alice", time.Hour)
	require.NoError(t, err)

	claims, err := utils.ParseToken(testSecret, tok.Token)
	require.NoError(t, err)
	assert.Equal(t, utils.TokenTypeRefresh, claims.Type)
	assert.Equal(t, "alice", claims.Subject)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, "HS256", "alice", time.Minute)
	require.NoError(t, err)

	_, err = utils.ParseToken("a-different-secret", tok.Token)
	assert.Error(t, err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, "HS256", "alice", -time.Minute)
	require.NoError(t, err)

	_, err = utils.ParseToken(testSecret, tok.Token)
	assert.Error(t, err)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	_, err := utils.ParseToken(testSecret, "not.a.token")
	assert.Error(t, err)
}

func TestSigningMethodIdentifiers(t *testing.T) {
	m, err := utils.SigningMethod("HS256")
	require.NoError(t, err)
	assert.Equal(t, jwt.SigningMethodHS256, m)

	m, err = utils.SigningMethod("HS384")
	require.NoError(t, err)
	assert.Equal(t, jwt.SigningMethodHS384, m)

	m, err = utils.SigningMethod("HS512")
	require.NoError(t, err)
	assert.Equal(t, jwt.SigningMethodHS512, m)

	// Empty falls back to HS256; non-HMAC identifiers are config errors.
	m, err = utils.SigningMethod("")
	require.NoError(t, err)
	assert.Equal(t, jwt.SigningMethodHS256, m)

	_, err = utils.SigningMethod("RS256")
	assert.Error(t, err)
}
