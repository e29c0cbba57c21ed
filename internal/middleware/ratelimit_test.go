package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"bookhub/internal/middleware"
)

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RateLimit(1, 2))
	r.GET("/", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	do := func(remoteAddr string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remoteAddr
		r.ServeHTTP(w, req)
		return w.Code
	}

	t.Run("BurstThenRejected", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, do("10.0.0.1:1234"))
		assert.Equal(t, http.StatusOK, do("10.0.0.1:1234"))
		assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1:1234"))
	})

	t.Run("ClientsAreIndependent", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, do("10.0.0.2:1234"))
	})
}
