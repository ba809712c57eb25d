package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-teamwork-api/internal/models"
	appErrors "github.com/noah-isme/sma-teamwork-api/pkg/errors"
	"github.com/noah-isme/sma-teamwork-api/pkg/response"
)

// Claims returns the caller stored by JWT.
func Claims(c *gin.Context) (*models.JWTClaims, bool) {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*models.JWTClaims)
	return claims, ok && claims != nil
}

// RequireRoles admits callers whose role is listed. Ownership checks such as
// leader, invitee or assignment teacher are left to the services.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		claims, ok := Claims(c)
		switch {
		case !ok:
			response.Error(c, appErrors.ErrUnauthorized)
		case !allowed[claims.Role]:
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "role "+string(claims.Role)+" may not perform this action"))
		default:
			c.Next()
		}
	}
}
