package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protectedRouter(middlewares ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middlewares...)
	router.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": UserID(c),
			"gym_id":  GymID(c),
			"staff":   IsStaff(c),
		})
	})
	return router
}

func doRequest(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	router := protectedRouter(AuthMiddleware(testSecret))

	access, _, err := GenerateTokens(7, 1, "ana@example.com", RoleMember, testSecret)
	require.NoError(t, err)

	w := doRequest(router, access)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":7`)
	assert.Contains(t, w.Body.String(), `"gym_id":1`)
}

func TestAuthMiddlewareMissingToken(t *testing.T) {
	router := protectedRouter(AuthMiddleware(testSecret))

	w := doRequest(router, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareGarbageToken(t *testing.T) {
	router := protectedRouter(AuthMiddleware(testSecret))

	w := doRequest(router, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareRejectsRefreshToken(t *testing.T) {
	router := protectedRouter(AuthMiddleware(testSecret))

	_, refresh, err := GenerateTokens(7, 1, "ana@example.com", RoleMember, testSecret)
	require.NoError(t, err)

	w := doRequest(router, refresh)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	router := protectedRouter(AuthMiddleware(testSecret), RequireRole(RoleStaff, RoleAdmin))

	memberToken, _, err := GenerateTokens(7, 1, "ana@example.com", RoleMember, testSecret)
	require.NoError(t, err)
	staffToken, _, err := GenerateTokens(8, 1, "coach@example.com", RoleStaff, testSecret)
	require.NoError(t, err)
	adminToken, _, err := GenerateTokens(9, 1, "owner@example.com", RoleAdmin, testSecret)
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, doRequest(router, memberToken).Code)
	assert.Equal(t, http.StatusOK, doRequest(router, staffToken).Code)
	assert.Equal(t, http.StatusOK, doRequest(router, adminToken).Code)
}

func TestIsStaff(t *testing.T) {
	router := protectedRouter(AuthMiddleware(testSecret))

	staffToken, _, err := GenerateTokens(8, 1, "coach@example.com", RoleStaff, testSecret)
	require.NoError(t, err)

	w := doRequest(router, staffToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"staff":true`)
}
