package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-catalog-service/config"
	"github.com/fekuna/omnipos-catalog-service/internal/cache"
	"github.com/fekuna/omnipos-catalog-service/internal/database"
	"github.com/fekuna/omnipos-catalog-service/internal/events"
	"github.com/fekuna/omnipos-catalog-service/internal/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/metrics"
	"github.com/fekuna/omnipos-catalog-service/internal/server"

	attrH "github.com/fekuna/omnipos-catalog-service/internal/attribute/handler"
	attrRepoPkg "github.com/fekuna/omnipos-catalog-service/internal/attribute/repository"
	attrUCPkg "github.com/fekuna/omnipos-catalog-service/internal/attribute/usecase"

	catH "github.com/fekuna/omnipos-catalog-service/internal/category/handler"
	catRepoPkg "github.com/fekuna/omnipos-catalog-service/internal/category/repository"
	catUCPkg "github.com/fekuna/omnipos-catalog-service/internal/category/usecase"

	invH "github.com/fekuna/omnipos-catalog-service/internal/inventory/handler"
	invRepoPkg "github.com/fekuna/omnipos-catalog-service/internal/inventory/repository"
	invUCPkg "github.com/fekuna/omnipos-catalog-service/internal/inventory/usecase"

	prodH "github.com/fekuna/omnipos-catalog-service/internal/product/handler"
	prodRepoPkg "github.com/fekuna/omnipos-catalog-service/internal/product/repository"
	prodUCPkg "github.com/fekuna/omnipos-catalog-service/internal/product/usecase"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.Server.AppEnv == "development" || cfg.Server.AppEnv == "dev" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Connect to Database
	db, err := database.NewPostgres(ctx, &database.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: config.Seconds(cfg.Postgres.ConnMaxLifetime),
		ConnMaxIdleTime: config.Seconds(cfg.Postgres.ConnMaxIdleTime),
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	if cfg.Postgres.AutoMigrate {
		applied, err := database.Migrate(ctx, db)
		if err != nil {
			appLogger.Fatal("Could not apply migrations", zap.Error(err))
		}
		appLogger.Info("Migrations applied", zap.Strings("versions", applied))
	}

	// 4. Initialize Repositories
	attrRepo := attrRepoPkg.NewPGRepository(db)
	catRepo := catRepoPkg.NewPGRepository(db)
	prodRepo := prodRepoPkg.NewPGRepository(db)
	invRepo := invRepoPkg.NewPGRepository(db)

	// 5. Initialize Redis
	var summaries cache.SummaryCache = cache.Nop{}
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(ctx, cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			// Summaries are a cache; the catalog keeps serving from Postgres.
			appLogger.Warn("Could not connect to Redis, summary cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			summaries = cache.NewRedisSummaryCache(redisClient, config.Seconds(cfg.Redis.CacheTTL))
			appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
		}
	}

	// 5.5 Initialize Kafka Publisher
	var publisher events.Publisher = events.Nop{}
	if cfg.Kafka.Enabled {
		publisher = events.NewKafkaPublisher(events.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
		})
		appLogger.Info("Kafka publisher ready", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}
	defer publisher.Close()

	appMetrics := metrics.New()

	// 6. Initialize UseCases
	attrUC := attrUCPkg.NewAttributeUseCase(attrRepo, appLogger)
	catUC := catUCPkg.NewCategoryUseCase(catRepo, summaries, appLogger)
	invUC := invUCPkg.NewInventoryUseCase(invRepo, prodRepo, summaries, publisher, appLogger)
	prodUC := prodUCPkg.NewProductUseCase(prodUCPkg.Deps{
		Repo:       prodRepo,
		Stock:      invRepo,
		Attributes: attrRepo,
		Categories: catRepo,
		Tx:         database.NewTxManager(db),
		Cache:      summaries,
		Publisher:  publisher,
		Metrics:    appMetrics,
		Logger:     appLogger,
	})

	// 7. Initialize Handlers
	router := server.NewRouter(server.RouterConfig{
		Logger:       appLogger,
		Metrics:      appMetrics,
		TenantHeader: cfg.Auth.TenantHeader,
		Ready:        db.PingContext,
		Handlers: []server.Registrar{
			attrH.NewAttributeHandler(attrUC, appLogger),
			catH.NewCategoryHandler(catUC, appLogger),
			invH.NewInventoryHandler(invUC, appLogger),
			prodH.NewProductHandler(prodUC, appLogger),
		},
	})

	httpServer := &http.Server{
		Addr:         listenAddr(cfg.Server.HTTPPort),
		Handler:      router,
		ReadTimeout:  config.Seconds(cfg.Server.ReadTimeout),
		WriteTimeout: config.Seconds(cfg.Server.WriteTimeout),
	}

	// 8. Start gRPC health server
	lis, err := net.Listen("tcp", listenAddr(cfg.Server.GRPCPort))
	if err != nil {
		appLogger.Fatal("failed to listen", zap.String("addr", cfg.Server.GRPCPort), zap.Error(err))
	}
	grpcServer, healthServer := server.NewGRPCServer()

	go func() {
		appLogger.Info("Starting HTTP server", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve http", zap.Error(err))
		}
	}()
	go func() {
		appLogger.Info("Starting gRPC server", zap.String("addr", lis.Addr().String()))
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Fatal("failed to serve grpc", zap.Error(err))
		}
	}()
	server.SetServing(healthServer, true)

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	server.SetServing(healthServer, false)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.Seconds(cfg.Server.ShutdownTimeout))
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server forced to shut down", zap.Error(err))
	}
	grpcServer.GracefulStop()
	appLogger.Info("Server stopped")
}

func listenAddr(port string) string {
	if !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}
