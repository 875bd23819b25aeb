package handler

import (
	"wallet-ledger/internal/adapter/http/middleware"
	redisStore "wallet-ledger/internal/adapter/storage/redis"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const defaultMaxBodyBytes = 1 << 20

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	LedgerSvc      ports.LedgerService
	ReportingSvc   ports.ReportingService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	RateLimitRules map[string]middleware.RateLimitRule
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
	APIPrefix      string // defaults to /api
	MaxBodyBytes   int64
	OpenAPI        []byte // served under /swagger when set
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	maxBody := deps.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	prefix := deps.APIPrefix
	if prefix == "" {
		prefix = "/api"
	}

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(maxBody))

	// Deep health check: pings PostgreSQL and Redis
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	docs := NewDocsHandler(deps.OpenAPI, "/swagger/spec")
	r.GET("/swagger", docs.Page)
	r.GET("/swagger/spec", docs.Document)

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := deps.RateLimitRules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	walletHandler := NewWalletHandler(deps.LedgerSvc, deps.ReportingSvc)
	txHandler := NewTransactionHandler(deps.LedgerSvc, deps.ReportingSvc)

	api := r.Group(prefix)
	{
		api.POST("/setup", rl(middleware.GroupSetup), walletHandler.Setup)
		api.POST("/transact/:walletId", rl(middleware.GroupTransact), txHandler.Transact)
		api.GET("/wallet/:id", rl(middleware.GroupRead), walletHandler.GetWallet)
	}

	transactions := api.Group("/transactions")
	{
		transactions.GET("", rl(middleware.GroupRead), txHandler.ListTransactions)
		transactions.GET("/all/:walletId", rl(middleware.GroupRead), txHandler.ListAllTransactions)
		transactions.GET("/export/:walletId", rl(middleware.GroupExport), txHandler.ExportTransactions)
	}

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, apperror.ErrRouteNotFound(c.Request.URL.Path))
	})

	return r
}
