package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/census-statistics-service/internal/config"
	httpDelivery "github.com/census-statistics-service/internal/delivery/http"
	"github.com/census-statistics-service/internal/delivery/http/handler"
	"github.com/census-statistics-service/internal/infrastructure/census"
	"github.com/census-statistics-service/internal/pkg/logger"
	"github.com/census-statistics-service/internal/repository/cache"
	"github.com/census-statistics-service/internal/repository/postgres"
	redisRepo "github.com/census-statistics-service/internal/repository/redis"
	"github.com/census-statistics-service/internal/usecase"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Census Statistics Service")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.String("state_fips", cfg.Census.StateFIPS),
	)

	// 3. Connect to PostgreSQL
	db, err := postgres.New(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close PostgreSQL connection", zap.Error(err))
		}
	}()
	log.Info("PostgreSQL connected")

	// 4. Connect to Redis
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()
	log.Info("Redis connected")

	// 5. Health checks
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.Health(ctx); err != nil {
		log.Fatal("PostgreSQL health check failed", zap.Error(err))
	}

	if err := redisClient.Health(ctx); err != nil {
		log.Fatal("Redis health check failed", zap.Error(err))
	}

	log.Info("All connections healthy")

	// 6. Initialize repositories
	statisticRepo := postgres.NewStatisticRepository(db, log)
	aggregateRepo := postgres.NewAggregateRepository(db, log)
	areaRepo := postgres.NewAreaRepository(db, log)
	poiRepo := postgres.NewPOIRepository(db, log)
	cacheRepo := cache.NewCacheRepository(redisClient)
	streamRepo := redisRepo.NewStreamRepository(redisClient.Client(), log)
	censusRepo := census.NewCensusClient(&cfg.Census, log)

	log.Info("Repositories initialized")

	// 7. Initialize use cases
	ingestUC := usecase.NewIngestUseCase(
		censusRepo,
		statisticRepo,
		aggregateRepo,
		areaRepo,
		cacheRepo,
		cfg.Census.StateFIPS,
		cfg.Ingest.MaxTxOperations,
		log,
	)

	recomputeUC := usecase.NewRecomputeUseCase(
		statisticRepo,
		aggregateRepo,
		areaRepo,
		poiRepo,
		cacheRepo,
		cfg.Census.StateFIPS,
		cfg.Ingest.MaxTxOperations,
		log,
	)

	statisticUC := usecase.NewStatisticUseCase(
		statisticRepo,
		poiRepo,
		cacheRepo,
		streamRepo,
		cfg.Cache.StatisticsCacheTTL,
		cfg.Cache.POICacheTTL,
		log,
	)

	log.Info("Use cases initialized")

	// 8. Initialize HTTP handlers
	ingestHandler := handler.NewIngestHandler(ingestUC, log)
	poiHandler := handler.NewPOIHandler(recomputeUC, statisticUC, log)
	statisticHandler := handler.NewStatisticHandler(statisticUC, log)

	log.Info("HTTP handlers initialized")

	// 9. Initialize HTTP server
	server := httpDelivery.NewServer(
		cfg,
		log,
		ingestHandler,
		poiHandler,
		statisticHandler,
	)

	// 10. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 11. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}
