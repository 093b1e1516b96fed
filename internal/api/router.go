package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/stillmaster/stillmaster-api/internal/api/handler"
	"github.com/stillmaster/stillmaster-api/internal/api/middleware"
	"github.com/stillmaster/stillmaster-api/internal/core/domain"
	"github.com/stillmaster/stillmaster-api/internal/core/ports"
)

// Dependencies carries everything the router needs to register routes.
type Dependencies struct {
	AuthService      ports.AuthService
	UserService      ports.UserService
	OrderService     ports.OrderService
	InventoryService ports.InventoryService

	Mongo  *mongo.Database
	Redis  *redis.Client
	Logger zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("stillmaster"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.AuthService)
	orderHandler := handler.NewOrderHandler(deps.OrderService)
	stockHandler := handler.NewStockHandler(deps.InventoryService)
	userHandler := handler.NewUserHandler(deps.UserService)
	healthHandler := handler.NewHealthHandler(deps.Mongo, deps.Redis)

	auth := middleware.Auth(deps.AuthService)
	adminOnly := middleware.RBAC(domain.RoleAdmin)
	stockKeepers := middleware.RBAC(domain.RoleAdmin, domain.RoleManager)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/register", authHandler.Register, auth, adminOnly)

	// --- API v1 (authenticated) ---
	v1 := e.Group("/api/v1", auth)

	v1.POST("/orders", orderHandler.Create)
	v1.GET("/orders", orderHandler.List)
	v1.GET("/orders/:id", orderHandler.Get)
	v1.PUT("/orders/:id", orderHandler.Update)
	v1.DELETE("/orders/:id", orderHandler.Delete)

	v1.GET("/stocks/:id", stockHandler.Get)
	v1.POST("/stocks/:id/adjust", stockHandler.Adjust, stockKeepers)

	v1.GET("/users", userHandler.List, adminOnly)
	v1.GET("/users/:id", userHandler.Get)
	v1.POST("/users", userHandler.Create, adminOnly)
	v1.PUT("/users/:id", userHandler.Update, adminOnly)
	v1.DELETE("/users/:id", userHandler.Delete, adminOnly)

	// --- Probes and metrics (no auth required) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
