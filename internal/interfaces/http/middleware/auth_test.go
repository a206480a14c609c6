package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sparkchat-api/pkg/utils"
)

const testSecret = "test-secret"

func authRouter(cfg AuthConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(cfg))
	router.GET("/v1/usage", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetString("user_id"),
			"plan":    c.GetString("plan"),
		})
	})
	router.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func accessToken(t *testing.T, tokenType string, ttl time.Duration) string {
	t.Helper()
	token, err := utils.NewJWTManager(testSecret, "sparkchat").GenerateToken("user-1", "pro", tokenType, ttl)
	require.NoError(t, err)
	return token
}

func TestAuthValidToken(t *testing.T) {
	router := authRouter(AuthConfig{Secret: testSecret, Issuer: "sparkchat", Enabled: true})

	req := httptest.NewRequest(http.MethodGet, "/v1/usage", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken(t, "access", time.Hour))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user_id":"user-1"`)
	assert.Contains(t, rec.Body.String(), `"plan":"pro"`)
}

func TestAuthMissingHeader(t *testing.T) {
	router := authRouter(AuthConfig{Secret: testSecret, Enabled: true})

	req := httptest.NewRequest(http.MethodGet, "/v1/usage", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMalformedHeader(t *testing.T) {
	router := authRouter(AuthConfig{Secret: testSecret, Enabled: true})

	for _, header := range []string{"Token abc", "Bearer", "abc"} {
		req := httptest.NewRequest(http.MethodGet, "/v1/usage", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestAuthExpiredToken(t *testing.T) {
	router := authRouter(AuthConfig{Secret: testSecret, Enabled: true})

	req := httptest.NewRequest(http.MethodGet, "/v1/usage", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken(t, "access", -time.Hour))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "token expired")
}

func TestAuthRejectsRefreshToken(t *testing.T) {
	router := authRouter(AuthConfig{Secret: testSecret, Enabled: true})

	req := httptest.NewRequest(http.MethodGet, "/v1/usage", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken(t, "refresh", time.Hour))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid token type")
}

func TestAuthWrongSecret(t *testing.T) {
	router := authRouter(AuthConfig{Secret: "other-secret", Enabled: true})

	req := httptest.NewRequest(http.MethodGet, "/v1/usage", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken(t, "access", time.Hour))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthSkipPaths(t *testing.T) {
	router := authRouter(AuthConfig{Secret: testSecret, Enabled: true})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code, "health endpoints bypass auth")
}

func TestAuthDisabled(t *testing.T) {
	router := authRouter(AuthConfig{Secret: testSecret, Enabled: false})

	req := httptest.NewRequest(http.MethodGet, "/v1/usage", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
