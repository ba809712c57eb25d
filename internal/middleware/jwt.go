package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-teamwork-api/internal/models"
	appErrors "github.com/noah-isme/sma-teamwork-api/pkg/errors"
	"github.com/noah-isme/sma-teamwork-api/pkg/response"
)

// ContextUserKey is the gin context key holding the caller's claims.
const ContextUserKey = "currentUser"

// TokenValidator turns a bearer token into claims.
type TokenValidator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

var errMalformedAuthorization = appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header")

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// JWT rejects requests without a valid bearer token and stores the claims
// under ContextUserKey.
func JWT(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			return
		}
		token, ok := bearerToken(header)
		if !ok {
			response.Error(c, errMalformedAuthorization)
			return
		}
		claims, err := validator.ValidateToken(token)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Set(ContextUserKey, claims)
		c.Next()
	}
}
