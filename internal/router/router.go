package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"            // Echo web framework to handle routing
	echomw "github.com/labstack/echo/v4/middleware" // built-in middleware (CORS)
	"github.com/redis/go-redis/v9"

	"github.com/lotoemploi/loto-backend/internal/config"
	"github.com/lotoemploi/loto-backend/internal/handler"
	"github.com/lotoemploi/loto-backend/internal/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Users    *handler.UserHandler
	Payments *handler.PaymentHandler
	Webhook  *handler.WebhookHandler
	Admin    *handler.AdminHandler
}

// Register wires all routes onto the Echo instance. The public intake
// endpoints sit behind CORS and the Redis rate limiter; the webhook and
// return routes are exempt from rate limiting (the gateway controls its
// own delivery schedule, and throttling it would trigger retries); the
// admin group requires a bearer token.
func Register(e *echo.Echo, cfg config.Config, rdb *redis.Client, h Handlers) {
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
	}))

	// Health check for load balancers and monitoring.
	e.GET("/healthz", handler.Health)

	api := e.Group("/api")

	// Public intake surface, throttled per client IP and route.
	limited := api.Group("")
	limited.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	limited.POST("/register-user", h.Users.Register)
	limited.POST("/payments", h.Payments.Initiate)

	// Status polling and gateway-facing routes are never throttled.
	api.GET("/payments/status/:token", h.Payments.Status)
	api.POST("/confirm-payment", h.Webhook.Confirm)
	api.GET("/payment-return/:token", h.Payments.Return)

	// Operator endpoints for manual reconciliation.
	api.POST("/admin/login", h.Admin.Login)
	admin := api.Group("/admin")
	admin.Use(middleware.AdminAuth(cfg.JWTSecret))
	admin.GET("/payments", h.Admin.ListPayments)
}
