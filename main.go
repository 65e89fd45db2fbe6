package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"retreat-booking/cmd"
	"retreat-booking/internal/data/repository"
	"retreat-booking/internal/provider"
	"retreat-booking/internal/wire"
	"retreat-booking/pkg/cache"
	"retreat-booking/pkg/database"
	"retreat-booking/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	if err := config.Validate(); err != nil {
		if !config.App.AllowPartial {
			logger.Fatal("Invalid configuration", zap.Error(err))
		}
		logger.Warn("Starting with partial configuration", zap.Error(err))
	}

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
		zap.String("provider_mode", config.WeTravel.Mode),
	)

	// Connect to database
	db, err := database.InitDB(ctx, config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Idempotency cache is optional
	var store cache.Cache = cache.NopCache{}
	if config.Redis.Addr != "" {
		client, err := cache.InitRedis(ctx, config.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer client.Close()
		store = cache.NewRedisCache(client, config.App.Name+":")
		logger.Info("Redis connected successfully", zap.String("addr", config.Redis.Addr))
	}

	var p provider.Provider
	if config.WeTravel.HasCredentials() {
		p, err = provider.New(config.WeTravel, nil, logger)
		if err != nil {
			logger.Fatal("Failed to create payment provider", zap.Error(err))
		}
	}

	repos := repository.NewRepository(db, logger)

	app := wire.Wiring(repos, p, store, config, logger)

	if err := cmd.APIServer(ctx, app.Router, config.App.Port, logger); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		return
	}
	logger.Info("Server stopped")
}
