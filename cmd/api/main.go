package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kurniadi/wms-vas-service/config"
	"github.com/kurniadi/wms-vas-service/internal/auth"
	"github.com/kurniadi/wms-vas-service/internal/broker"
	"github.com/kurniadi/wms-vas-service/internal/cache"
	"github.com/kurniadi/wms-vas-service/internal/db"

	invH "github.com/kurniadi/wms-vas-service/internal/inventory/handler"
	invRepoPkg "github.com/kurniadi/wms-vas-service/internal/inventory/repository"
	invUCPkg "github.com/kurniadi/wms-vas-service/internal/inventory/usecase"

	matRepoPkg "github.com/kurniadi/wms-vas-service/internal/material/repository"

	vasH "github.com/kurniadi/wms-vas-service/internal/vas/handler"
	vasListenerPkg "github.com/kurniadi/wms-vas-service/internal/vas/listener"
	vasRepoPkg "github.com/kurniadi/wms-vas-service/internal/vas/repository"
	vasUCPkg "github.com/kurniadi/wms-vas-service/internal/vas/usecase"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	appLogger, err := buildLogger(cfg)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer appLogger.Sync()

	// 3. Connect to Database
	database, err := db.Open(&cfg.Database)
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer database.Close()

	if err := db.EnsureSchema(database); err != nil {
		appLogger.Fatal("Could not apply database schema", zap.Error(err))
	}
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Database.DBName))

	// 4. Initialize Repositories
	invRepo := invRepoPkg.NewSQLRepository(database)
	vasRepo := vasRepoPkg.NewSQLRepository(database)
	matRepo := matRepoPkg.NewSQLRepository(database)

	// 5. Initialize Redis
	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))

	// 5.5 Initialize Kafka Consumer
	kafkaConsumer := broker.NewConsumer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
		GroupID: cfg.Kafka.GroupID,
	})
	defer kafkaConsumer.Close()
	appLogger.Info("Connected to Kafka Consumer", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))

	// 6. Initialize UseCases
	invUC := invUCPkg.NewInventoryUseCase(database, invRepo, appLogger)
	vasUC := vasUCPkg.NewVASUseCase(database, vasRepo, invRepo, matRepo, redisClient, appLogger)

	// 6.5 Initialize Listener
	vasListener := vasListenerPkg.NewVASListener(kafkaConsumer, vasUC, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go vasListener.Start(ctx)

	// 7. Initialize Handlers and Router
	if cfg.Server.AppEnv != "development" && cfg.Server.AppEnv != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), auth.Middleware())

	api := router.Group("/v1")
	invH.NewInventoryHandler(invUC, appLogger).Register(api)
	vasH.NewVASHandler(vasUC, appLogger).Register(api)

	// 8. Start HTTP Server
	port := cfg.Server.HTTPPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	srv := &http.Server{
		Addr:    port,
		Handler: router,
	}

	appLogger.Info("Starting HTTP server", zap.String("port", port))

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("forced shutdown", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}

func buildLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Server.AppEnv == "development" || cfg.Server.AppEnv == "dev" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	if level, err := zapcore.ParseLevel(cfg.Logger.Level); err == nil {
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}
	if cfg.Logger.Encoding != "" {
		zapCfg.Encoding = cfg.Logger.Encoding
	}
	zapCfg.DisableCaller = cfg.Logger.DisableCaller
	zapCfg.DisableStacktrace = cfg.Logger.DisableStacktrace

	return zapCfg.Build()
}
