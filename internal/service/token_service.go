package service

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/sma-teamwork-api/internal/models"
	"github.com/noah-isme/sma-teamwork-api/pkg/config"
	appErrors "github.com/noah-isme/sma-teamwork-api/pkg/errors"
)

// TokenService verifies bearer tokens issued by the platform's auth service.
// It never issues tokens.
type TokenService struct {
	secret []byte
	issuer string
}

// NewTokenService constructs the verifier.
func NewTokenService(cfg config.JWTConfig) *TokenService {
	return &TokenService{secret: []byte(cfg.Secret), issuer: cfg.Issuer}
}

// ValidateToken parses and validates an access token returning the claims.
func (s *TokenService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	if claims.UserID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token has no subject")
	}
	switch claims.Role {
	case models.RoleSuperAdmin, models.RoleAdmin, models.RoleTeacher, models.RoleStudent:
	default:
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token role is not recognised")
	}

	return claims, nil
}
