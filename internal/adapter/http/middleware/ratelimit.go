package middleware

import (
	"fmt"
	"strconv"
	"time"

	"wallet-ledger/config"
	redisStore "wallet-ledger/internal/adapter/storage/redis"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Endpoint groups sharing one budget per client.
const (
	GroupSetup    = "setup"
	GroupTransact = "transact"
	GroupRead     = "read"
	GroupExport   = "export"
)

// RateLimitRule defines a rate limit for an endpoint group.
type RateLimitRule struct {
	Limit  int64
	Window time.Duration
}

// RulesFromConfig returns per-minute rules for every endpoint group.
// Disabled limiting or a non-positive limit leaves the group out.
func RulesFromConfig(cfg config.RateLimitConfig) map[string]RateLimitRule {
	rules := make(map[string]RateLimitRule)
	if !cfg.Enabled {
		return rules
	}
	for group, limit := range map[string]int64{
		GroupSetup:    cfg.Setup,
		GroupTransact: cfg.Transact,
		GroupRead:     cfg.Read,
		GroupExport:   cfg.Export,
	} {
		if limit > 0 {
			rules[group] = RateLimitRule{Limit: limit, Window: time.Minute}
		}
	}
	return rules
}

// RateLimiter creates a rate-limiting middleware for a given endpoint group.
// Store failures let the request through.
func RateLimiter(store *redisStore.RateLimitStore, group string, rule RateLimitRule, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("%s:%s", c.ClientIP(), group)

		result, err := store.Allow(c.Request.Context(), key, rule.Limit, rule.Window)
		if err != nil {
			log.Warn().Err(err).Str("group", group).Msg("rate limit check failed, allowing request (degraded mode)")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(result.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt, 10))

		if !result.Allowed {
			retryAfter := result.ResetAt - time.Now().Unix()
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
			response.Error(c, apperror.ErrRateLimitExceeded())
			c.Abort()
			return
		}

		c.Next()
	}
}
