package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func TestGenerateAndValidate(t *testing.T) {
	token, err := GenerateJWT(42, secret, 30*time.Minute)
	require.NoError(t, err)

	userID, err := ValidateToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
}

func TestGenerateRejectsZeroUser(t *testing.T) {
	_, err := GenerateJWT(0, secret, time.Minute)
	assert.Error(t, err)
}

func TestValidateExpired(t *testing.T) {
	token, err := GenerateJWT(1, secret, -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken(token, secret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateWrongSecret(t *testing.T) {
	token, err := GenerateJWT(1, secret, time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken(token, []byte("other"))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateMalformed(t *testing.T) {
	_, err := ValidateToken("not-a-token", secret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateNonNumericSubject(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)

	_, err = ValidateToken(token, secret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateMissingExpiry(t *testing.T) {
	claims := jwt.RegisteredClaims{Subject: "1"}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)

	_, err = ValidateToken(token, secret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
