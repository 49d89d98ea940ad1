package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"resq-http-service/services"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
)

func newLimiterRouter(t *testing.T, limit int64, window time.Duration) *gin.Engine {
	t.Helper()
	mr := miniredis.RunT(t)
	InitRateLimiter(&services.RedisService{
		Client: redis.NewClient(&redis.Options{Addr: mr.Addr()}),
		Ctx:    context.Background(),
	})
	t.Cleanup(func() { InitRateLimiter(nil) })

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(IPRateLimiter(limit, window))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	return r
}

func doPing(r *gin.Engine, ip string) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = ip + ":1234"
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiterAllowsWithinLimit(t *testing.T) {
	r := newLimiterRouter(t, 3, time.Minute)

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, doPing(r, "10.0.0.1"))
	}
}

func TestRateLimiterRejectsOverLimit(t *testing.T) {
	r := newLimiterRouter(t, 3, time.Minute)

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, doPing(r, "10.0.0.1"))
	}
	require.Equal(t, http.StatusTooManyRequests, doPing(r, "10.0.0.1"))
}

func TestRateLimiterIsolatesClients(t *testing.T) {
	r := newLimiterRouter(t, 1, time.Minute)

	require.Equal(t, http.StatusOK, doPing(r, "10.0.0.1"))
	require.Equal(t, http.StatusTooManyRequests, doPing(r, "10.0.0.1"))
	require.Equal(t, http.StatusOK, doPing(r, "10.0.0.2"))
}

func TestRateLimiterFailsOpenWithoutRedis(t *testing.T) {
	InitRateLimiter(nil)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(IPRateLimiter(1, time.Minute))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	require.Equal(t, http.StatusOK, doPing(r, "10.0.0.1"))
	require.Equal(t, http.StatusOK, doPing(r, "10.0.0.1"))
}
