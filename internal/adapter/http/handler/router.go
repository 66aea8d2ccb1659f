package handler

import (
	"bank-card-service/internal/adapter/http/middleware"
	redisStore "bank-card-service/internal/adapter/storage/redis"
	"bank-card-service/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	CardSvc        ports.CardService
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	AuditSvc       ports.AuditService // nil = audit logging disabled
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Audit logging (after response)
	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/signup", rl("auth_signup"), authHandler.SignUp)
		auth.POST("/signin", rl("auth_signin"), authHandler.SignIn)
	}

	// --- JWT-authenticated routes ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	cardHandler := NewCardHandler(deps.CardSvc)
	cards := v1.Group("/cards", jwtAuth)
	{
		cards.POST("", rl("cards"), cardHandler.Create)
		cards.GET("", rl("cards"), cardHandler.ListOwn)
		cards.GET("/all", rl("cards"), cardHandler.ListAll)
		cards.PUT("/transfers", rl("transfers"), cardHandler.Transfer)
		cards.DELETE("", rl("cards"), cardHandler.Delete)
		cards.PUT("/status", rl("cards"), cardHandler.ChangeStatus)
	}

	users := v1.Group("/users", jwtAuth)
	{
		users.GET("/me", rl("cards"), authHandler.Profile)
	}

	return r
}
