package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Jorge-Marco5/go-api-template/internal/config"
	"github.com/Jorge-Marco5/go-api-template/internal/di"
	"github.com/Jorge-Marco5/go-api-template/internal/domain"
	"github.com/Jorge-Marco5/go-api-template/internal/logger"
	"github.com/Jorge-Marco5/go-api-template/internal/middleware"
	"github.com/Jorge-Marco5/go-api-template/internal/response"
	"github.com/Jorge-Marco5/go-api-template/internal/telemetry"
)

// Options carries everything the router needs beyond the container.
type Options struct {
	Config      *config.Config
	Container   *di.Container
	Logger      *logger.Logger
	RateLimiter middleware.RateLimitClient // nil disables rate limiting
}

// New builds the gin engine with the full middleware chain and all
// routes registered.
func New(opts Options) *gin.Engine {
	cfg := opts.Config
	c := opts.Container

	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.CORS())
	if cfg.OTel.Enabled {
		r.Use(telemetry.TracingMiddleware(cfg.App.Name))
	}
	r.Use(middleware.RequestLogger(opts.Logger))
	r.Use(middleware.ErrorHandler(cfg.IsProduction()))

	// Health check endpoints, outside the API prefix and the limiter
	r.GET("/health", c.HealthHandler.Health)
	r.GET("/ready", c.HealthHandler.Ready)

	api := r.Group(cfg.App.APIPrefix)
	if opts.RateLimiter != nil {
		api.Use(middleware.RateLimit(middleware.RateLimitConfig{
			Client:      opts.RateLimiter,
			Window:      cfg.RateLimit.Window,
			MaxRequests: cfg.RateLimit.MaxRequests,
		}))
	}

	api.GET("", func(ctx *gin.Context) {
		response.OKMessage(ctx, "welcome to the API", gin.H{
			"name":    cfg.App.Name,
			"version": cfg.App.Version,
		})
	})

	authn := middleware.Authenticate(c.Codec, c.SessionRepo, c.UserRepo)

	auth := api.Group("/auth")
	{
		auth.POST("/register", c.AuthHandler.Register)
		auth.POST("/login", c.AuthHandler.Login)
		auth.POST("/refresh", c.AuthHandler.Refresh)

		protected := auth.Group("")
		protected.Use(authn)
		{
			protected.GET("/profile", c.AuthHandler.Profile)
			protected.POST("/logout", c.AuthHandler.Logout)
		}
	}

	users := api.Group("/users")
	users.Use(authn)
	{
		users.GET("", middleware.RequireRoles(domain.RoleAdmin), c.UserHandler.List)
		users.GET("/:id", c.UserHandler.GetByID)
		users.POST("", c.UserHandler.Create)
		users.PUT("/:id", c.UserHandler.Replace)
		users.PATCH("/:id", c.UserHandler.Patch)
		users.DELETE("/:id", c.UserHandler.Delete)
	}

	r.NoRoute(middleware.NotFoundHandler())
	r.NoMethod(func(ctx *gin.Context) {
		response.Fail(ctx, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}
