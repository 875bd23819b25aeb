package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wallet-ledger/config"
	"wallet-ledger/internal/adapter/http/middleware"
	redisStore "wallet-ledger/internal/adapter/storage/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func setupRateLimitRouter(store *redisStore.RateLimitStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	rule := middleware.RateLimitRule{Limit: 3, Window: time.Minute}
	log := zerolog.Nop()

	r.GET("/test", middleware.RateLimiter(store, "test", rule, log), func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	return r
}

func doGet(router http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequestWithContext(context.Background(), "GET", "/test", nil)
	req.RemoteAddr = remoteAddr
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_AllowsWithinLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	router := setupRateLimitRouter(redisStore.NewRateLimitStore(client))

	for i := 0; i < 3; i++ {
		w := doGet(router, "10.0.0.1:1234")
		assert.Equal(t, 200, w.Code, "request %d should succeed", i+1)
		assert.Equal(t, "3", w.Header().Get("X-RateLimit-Limit"))
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
	}
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	router := setupRateLimitRouter(redisStore.NewRateLimitStore(client))

	for i := 0; i < 3; i++ {
		assert.Equal(t, 200, doGet(router, "10.0.0.1:1234").Code)
	}

	w := doGet(router, "10.0.0.1:1234")
	assert.Equal(t, 429, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Contains(t, w.Body.String(), "RATE_001")
}

func TestRateLimiter_SeparateBudgetPerClient(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	router := setupRateLimitRouter(redisStore.NewRateLimitStore(client))

	for i := 0; i < 3; i++ {
		assert.Equal(t, 200, doGet(router, "10.0.0.1:1234").Code)
	}
	assert.Equal(t, 429, doGet(router, "10.0.0.1:1234").Code)
	assert.Equal(t, 200, doGet(router, "10.0.0.2:1234").Code)
}

func TestRateLimiter_RedisDownAllowsRequest(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	router := setupRateLimitRouter(redisStore.NewRateLimitStore(client))
	mr.Close()

	w := doGet(router, "10.0.0.1:1234")
	assert.Equal(t, 200, w.Code)
	assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
}

func TestRulesFromConfig(t *testing.T) {
	rules := middleware.RulesFromConfig(config.RateLimitConfig{
		Enabled:  true,
		Setup:    10,
		Transact: 120,
		Read:     0,
		Export:   5,
	})

	assert.Len(t, rules, 3)
	assert.Equal(t, middleware.RateLimitRule{Limit: 120, Window: time.Minute}, rules[middleware.GroupTransact])
	_, hasRead := rules[middleware.GroupRead]
	assert.False(t, hasRead)
}

func TestRulesFromConfig_Disabled(t *testing.T) {
	rules := middleware.RulesFromConfig(config.RateLimitConfig{Enabled: false, Setup: 10})
	assert.Empty(t, rules)
}
