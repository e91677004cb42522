package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"afrikpay_store/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWTAuthMiddleware(secret))
	r.GET("/read", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextSubject)) })
	r.POST("/write", RequireScope(utils.ScopeWrite), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func do(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware(t *testing.T) {
	r := newRouter("secret")

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/read", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/read", "garbage").Code)

	token, err := utils.GenerateJWT("client-service", nil, "secret", time.Hour)
	require.NoError(t, err)
	w := do(r, http.MethodGet, "/read", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "client-service", w.Body.String())
}

func TestJWTAuthMiddleware_Disabled(t *testing.T) {
	r := newRouter("")
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/read", "").Code)
}

func TestRequireScope(t *testing.T) {
	r := newRouter("secret")

	readOnly, err := utils.GenerateJWT("reporting", []string{"read"}, "secret", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodPost, "/write", readOnly).Code)

	writer, err := utils.GenerateJWT("temporal-worker", []string{utils.ScopeWrite}, "secret", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, do(r, http.MethodPost, "/write", writer).Code)
}

func TestRequireScope_WithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/write", RequireScope(utils.ScopeWrite), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodPost, "/write", "").Code)
}
