package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/storehouse-api/pkg/config"
)

func serve(cfg config.CORSConfig, method, origin string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(New(cfg))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, "/", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestCORSAllowsListedOrigin(t *testing.T) {
	w := serve(config.CORSConfig{AllowedOrigins: []string{"http://kiosk.local/"}}, http.MethodGet, "http://kiosk.local")
	assert.Equal(t, "http://kiosk.local", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSRejectsUnknownOrigin(t *testing.T) {
	w := serve(config.CORSConfig{AllowedOrigins: []string{"http://kiosk.local"}}, http.MethodGet, "http://evil.local")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflight(t *testing.T) {
	w := serve(config.CORSConfig{}, http.MethodOptions, "http://kiosk.local")
	assert.Equal(t, http.StatusNoContent, w.Code)
}
