package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/storehouse-api/internal/models"
	appErrors "github.com/noah-isme/storehouse-api/pkg/errors"
)

type stubValidator struct {
	claims *models.AdminClaims
}

func (s stubValidator) ValidateToken(token string) (*models.AdminClaims, error) {
	if token != "good" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return s.claims, nil
}

func newProtectedRouter(claims *models.AdminClaims) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWT(stubValidator{claims: claims}), RequireRole(models.RoleAdmin))
	r.GET("/admin/ping", func(c *gin.Context) {
		c.String(http.StatusOK, AdminFromContext(c).ID)
	})
	return r
}

func TestJWTRequiresBearerToken(t *testing.T) {
	r := newProtectedRouter(&models.AdminClaims{Role: models.RoleAdmin})

	for _, header := range []string{"", "Basic abc", "Bearer ", "Bearer bad"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
	}
}

func TestJWTAcceptsAdmin(t *testing.T) {
	r := newProtectedRouter(&models.AdminClaims{Role: models.RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{ID: "session-1"}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer good")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "session-1", w.Body.String())
}

func TestRequireRoleRejectsOtherRoles(t *testing.T) {
	r := newProtectedRouter(&models.AdminClaims{Role: "KIOSK"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set("Authorization", "bearer good")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
