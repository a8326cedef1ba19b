package di

import (
	"github.com/Jorge-Marco5/go-api-template/internal/config"
	"github.com/Jorge-Marco5/go-api-template/internal/database"
	"github.com/Jorge-Marco5/go-api-template/internal/handler"
	"github.com/Jorge-Marco5/go-api-template/internal/repository"
	"github.com/Jorge-Marco5/go-api-template/internal/service"
	"github.com/Jorge-Marco5/go-api-template/internal/token"
)

// Container holds all dependencies for the API
type Container struct {
	// Infrastructure
	DB    *database.PostgresDB
	Codec *token.Codec

	// Repositories
	UserRepo    repository.UserRepository
	SessionRepo repository.SessionRepository

	// Services
	AuthService service.AuthService
	UserService service.UserService

	// Handlers
	HealthHandler *handler.HealthHandler
	AuthHandler   *handler.AuthHandler
	UserHandler   *handler.UserHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB         *database.PostgresDB
	JWT        *config.JWTConfig
	Production bool
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:    cfg.DB,
		Codec: token.NewCodec(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL, cfg.JWT.RefreshTokenTTL),
	}

	// Initialize repositories
	c.UserRepo = repository.NewPostgresUserRepository(cfg.DB.Pool())
	c.SessionRepo = repository.NewPostgresSessionRepository(cfg.DB.Pool())

	// Initialize services
	c.AuthService = service.NewAuthService(c.UserRepo, c.SessionRepo, c.Codec, cfg.JWT.BcryptCost)
	c.UserService = service.NewUserService(c.UserRepo, cfg.JWT.BcryptCost)

	// Initialize handlers
	c.HealthHandler = handler.NewHealthHandler(cfg.DB)
	c.AuthHandler = handler.NewAuthHandler(c.AuthService, c.Codec, cfg.Production)
	c.UserHandler = handler.NewUserHandler(c.UserService)

	return c
}
