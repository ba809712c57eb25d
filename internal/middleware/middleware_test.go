package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-teamwork-api/internal/models"
	appErrors "github.com/noah-isme/sma-teamwork-api/pkg/errors"
)

type validatorFunc func(string) (*models.JWTClaims, error)

func (f validatorFunc) ValidateToken(token string) (*models.JWTClaims, error) { return f(token) }

func acceptOnly(token string, claims *models.JWTClaims) TokenValidator {
	return validatorFunc(func(got string) (*models.JWTClaims, error) {
		if got == token {
			return claims, nil
		}
		return nil, appErrors.ErrUnauthorized
	})
}

func serve(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWT(t *testing.T) {
	gin.SetMode(gin.TestMode)
	claims := &models.JWTClaims{UserID: "stu-1", Role: models.RoleStudent}

	r := gin.New()
	r.GET("/x", JWT(acceptOnly("good", claims)), func(c *gin.Context) {
		v, _ := c.Get(ContextUserKey)
		c.String(http.StatusOK, v.(*models.JWTClaims).UserID)
	})

	assert.Equal(t, http.StatusUnauthorized, serve(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "Basic good").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "Bearer ").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "Bearer bad").Code)

	w := serve(r, "bearer good")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "stu-1", w.Body.String())
}

func TestRequireRoles(t *testing.T) {
	gin.SetMode(gin.TestMode)

	build := func(role models.UserRole) *gin.Engine {
		r := gin.New()
		r.Use(func(c *gin.Context) {
			if role != "" {
				c.Set(ContextUserKey, &models.JWTClaims{UserID: "u", Role: role})
			}
			c.Next()
		})
		r.GET("/x", RequireRoles(models.RoleTeacher, models.RoleAdmin), func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})
		return r
	}

	assert.Equal(t, http.StatusNoContent, serve(build(models.RoleTeacher), "").Code)
	assert.Equal(t, http.StatusNoContent, serve(build(models.RoleAdmin), "").Code)
	assert.Equal(t, http.StatusForbidden, serve(build(models.RoleStudent), "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(build(""), "").Code)
}

func TestAuditStampsRequestContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var seen context.Context
	r := gin.New()
	r.GET("/x", Audit(), func(c *gin.Context) {
		seen = c.Request.Context()
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("User-Agent", "student-app/1.0")
	r.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, seen)
	assert.True(t, seen != req.Context(), "request context should carry the audit origin")
}

type recordedRequest struct {
	method, route string
	status        int
}

type recordingObserver struct{ seen []recordedRequest }

func (r *recordingObserver) ObserveHTTPRequest(method, route string, status int, _ time.Duration) {
	r.seen = append(r.seen, recordedRequest{method: method, route: route, status: status})
}

func TestMetricsUsesRouteTemplates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	obs := &recordingObserver{}
	r := gin.New()
	r.Use(Metrics(obs, "/health"))
	r.GET("/teams/:teamId", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/teams/t-1", "/teams/t-2", "/health", "/wp-admin"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	require.Len(t, obs.seen, 3)
	assert.Equal(t, "/teams/:teamId", obs.seen[0].route)
	assert.Equal(t, "/teams/:teamId", obs.seen[1].route)
	assert.Equal(t, recordedRequest{method: http.MethodGet, route: unmatchedRoute, status: http.StatusNotFound}, obs.seen[2])
}
