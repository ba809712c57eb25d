package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-teamwork-api/internal/models"
	"github.com/noah-isme/sma-teamwork-api/pkg/config"
	appErrors "github.com/noah-isme/sma-teamwork-api/pkg/errors"
)

func signToken(t *testing.T, secret string, method jwt.SigningMethod, claims *models.JWTClaims) string {
	t.Helper()
	var key interface{} = []byte(secret)
	if method == jwt.SigningMethodNone {
		key = jwt.UnsafeAllowNoneSignatureType
	}
	raw, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return raw
}

func validClaims() *models.JWTClaims {
	return &models.JWTClaims{
		UserID: "stu-1",
		Role:   models.RoleStudent,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "sma-auth",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestTokenServiceValidateToken(t *testing.T) {
	svc := NewTokenService(config.JWTConfig{Secret: "secret", Issuer: "sma-auth"})

	claims, err := svc.ValidateToken(signToken(t, "secret", jwt.SigningMethodHS256, validClaims()))
	require.NoError(t, err)
	assert.Equal(t, "stu-1", claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
}

func TestTokenServiceRejectsBadTokens(t *testing.T) {
	svc := NewTokenService(config.JWTConfig{Secret: "secret", Issuer: "sma-auth"})

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	foreign := validClaims()
	foreign.Issuer = "someone-else"

	noSubject := validClaims()
	noSubject.UserID = ""

	badRole := validClaims()
	badRole.Role = "JANITOR"

	cases := map[string]string{
		"wrong secret": signToken(t, "other", jwt.SigningMethodHS256, validClaims()),
		"expired":      signToken(t, "secret", jwt.SigningMethodHS256, expired),
		"wrong issuer": signToken(t, "secret", jwt.SigningMethodHS256, foreign),
		"no subject":   signToken(t, "secret", jwt.SigningMethodHS256, noSubject),
		"unknown role": signToken(t, "secret", jwt.SigningMethodHS256, badRole),
		"alg none":     signToken(t, "secret", jwt.SigningMethodNone, validClaims()),
		"not a token":  "garbage",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
		})
	}
}
