package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-teamwork-api/internal/middleware"
	"github.com/noah-isme/sma-teamwork-api/internal/models"
	appErrors "github.com/noah-isme/sma-teamwork-api/pkg/errors"
	"github.com/noah-isme/sma-teamwork-api/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, _ := middleware.Claims(c)
	return claims
}

// bindJSON decodes the body into dest and writes a validation error on
// failure. An empty body is accepted when optional is set.
func bindJSON(c *gin.Context, dest interface{}, message string, optional bool) bool {
	if optional && c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message))
		return false
	}
	return true
}

func pageParams(c *gin.Context) (page, size int) {
	if v, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		page = v
	}
	if v, err := strconv.Atoi(c.DefaultQuery("page_size", "20")); err == nil {
		size = v
	}
	return page, size
}

func optionalBoolQuery(c *gin.Context, key string) (*bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, key+" must be a boolean")
	}
	return &v, nil
}
