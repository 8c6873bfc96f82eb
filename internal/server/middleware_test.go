package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"matbook/internal/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func testRouter(middlewares ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middlewares...)
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func get(router *gin.Engine) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestMetricsMiddleware(t *testing.T) {
	router := testRouter(MetricsMiddleware())
	assert.Equal(t, http.StatusOK, get(router).Code)
}

func TestRequestLoggingMiddleware(t *testing.T) {
	router := testRouter(RequestLoggingMiddleware())
	assert.Equal(t, http.StatusOK, get(router).Code)
}

func TestRateLimitMiddlewareWithinBurst(t *testing.T) {
	router := testRouter(RateLimitMiddleware(2, 5))

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, get(router).Code)
	}
}

func TestRateLimiterExhaustsBurst(t *testing.T) {
	rl := NewRateLimiter(1, 2, time.Minute)

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))

	// Other clients are unaffected.
	assert.True(t, rl.Allow("10.0.0.2"))
}

func TestCorsMiddleware(t *testing.T) {
	router := testRouter(corsMiddleware())

	w := get(router)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCorsMiddlewareOptions(t *testing.T) {
	router := testRouter(corsMiddleware())

	req := httptest.NewRequest("OPTIONS", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestValidateStruct(t *testing.T) {
	type payload struct {
		Email string `validate:"required,email"`
		Name  string `validate:"required"`
	}

	errs := ValidateStruct(payload{Email: "not-an-email"})
	assert.Len(t, errs, 2)

	errs = ValidateStruct(payload{Email: "ana@example.com", Name: "Ana"})
	assert.Empty(t, errs)
}
