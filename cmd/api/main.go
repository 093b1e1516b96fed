package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/stillmaster/stillmaster-api/internal/api"
	"github.com/stillmaster/stillmaster-api/internal/core/service"
	"github.com/stillmaster/stillmaster-api/internal/infrastructure/config"
	mongodb "github.com/stillmaster/stillmaster-api/internal/infrastructure/db/mongo"
	redisdb "github.com/stillmaster/stillmaster-api/internal/infrastructure/db/redis"
	"github.com/stillmaster/stillmaster-api/internal/infrastructure/queue"
	"github.com/stillmaster/stillmaster-api/internal/infrastructure/seed"
	"github.com/stillmaster/stillmaster-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Infrastructure ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	// --- Repositories ---
	userRepo := mongodb.NewUserRepository(db)
	customerRepo := mongodb.NewCustomerRepository(db)
	stockRepo := mongodb.NewStockRepository(db)
	orderRepo := mongodb.NewOrderRepository(db)
	movementRepo := mongodb.NewMovementRepository(db)
	idemStore := redisdb.NewOrderIdempotencyStore(rdb)

	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create user indexes")
	}
	if err := orderRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create order indexes")
	}

	// --- Movement audit writer ---
	movements := queue.NewMovementWriter(0, movementRepo, log)
	movements.Start(ctx)

	// --- Services ---
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience, 24*time.Hour)
	userService := service.NewUserService(userRepo, authService, log)
	inventoryService := service.NewInventoryService(stockRepo, movements, log)
	orderService := service.NewOrderService(orderRepo, customerRepo, inventoryService, idemStore, log)

	if err := seed.Run(ctx, userRepo, customerRepo, stockRepo, authService, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword, log); err != nil {
		log.Fatal().Err(err).Msg("failed to seed database")
	}

	// --- HTTP server ---
	e := api.NewRouter(api.Dependencies{
		AuthService:      authService,
		UserService:      userService,
		OrderService:     orderService,
		InventoryService: inventoryService,
		Mongo:            db,
		Redis:            rdb,
		Logger:           log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
