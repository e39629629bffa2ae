package router

import (
	"github.com/gin-gonic/gin"

	"cverve/internal/auth"
	"cverve/internal/handler"
	"cverve/internal/middleware"
)

// Options carries the cross-cutting settings applied to every route.
type Options struct {
	AllowedOrigins []string
	MaxBodyBytes   int64
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	opts Options,
	verifier middleware.TokenVerifier,
	extractionH *handler.ExtractionHandler,
	paymentH *handler.PaymentHandler,
	userH *handler.UserHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(opts.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")
	if opts.MaxBodyBytes > 0 {
		v1.Use(middleware.BodyLimit(opts.MaxBodyBytes))
	}

	v1.POST("/extract-text", extractionH.ExtractText)
	v1.POST("/process-payment", paymentH.ProcessPayment)

	users := v1.Group("/users")
	users.POST("", userH.Create)
	users.POST("/lookup", userH.Lookup)

	// Admin routes - require an admin bearer token
	admin := v1.Group("/admin")
	admin.Use(middleware.AuthMiddleware(verifier))
	admin.Use(middleware.RequireRole(auth.RoleAdmin))
	admin.GET("/payments/export", paymentH.Export)

	return r
}
