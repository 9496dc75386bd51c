package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/avelia/catalog-service/config"
	"github.com/avelia/catalog-service/internal/httpcache"
	"github.com/avelia/catalog-service/internal/media"
	"github.com/avelia/catalog-service/internal/ratelimit"
	"github.com/avelia/catalog-service/pkg/broker"
	"github.com/avelia/catalog-service/pkg/cache"
	"github.com/avelia/catalog-service/pkg/logger"
	"github.com/avelia/catalog-service/pkg/postgres"
	"github.com/avelia/catalog-service/pkg/search"

	catH "github.com/avelia/catalog-service/internal/category/handler"
	catRepoPkg "github.com/avelia/catalog-service/internal/category/repository"
	catUCPkg "github.com/avelia/catalog-service/internal/category/usecase"

	mediaRepoPkg "github.com/avelia/catalog-service/internal/media/repository"

	orderH "github.com/avelia/catalog-service/internal/order/handler"
	orderRepoPkg "github.com/avelia/catalog-service/internal/order/repository"
	orderUCPkg "github.com/avelia/catalog-service/internal/order/usecase"

	prodH "github.com/avelia/catalog-service/internal/product/handler"
	prodRepoPkg "github.com/avelia/catalog-service/internal/product/repository"
	prodUCPkg "github.com/avelia/catalog-service/internal/product/usecase"

	stockListenerPkg "github.com/avelia/catalog-service/internal/stock/listener"
)

func main() {
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             "info",
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.Server.AppEnv == "dev" || cfg.Server.AppEnv == "development" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
		logConfig.Level = cfg.Logger.Level
	}
	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("connected to postgres", zap.String("db_name", cfg.Postgres.DBName))

	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Fatal("could not connect to redis", zap.Error(err))
	}
	defer redisClient.Close()
	appLogger.Info("connected to redis", zap.String("addr", cfg.Redis.Addr))

	kafkaConsumer := broker.NewConsumer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.OrdersTopic,
		GroupID: cfg.Kafka.GroupID,
	})
	defer kafkaConsumer.Close()

	kafkaProducer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.OrdersTopic)
	defer kafkaProducer.Close()
	appLogger.Info("connected to kafka", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.OrdersTopic))

	esClient, err := search.NewClient(&search.Config{
		Addresses: cfg.Elastic.Addresses,
		Username:  cfg.Elastic.Username,
		Password:  cfg.Elastic.Password,
	})
	if err != nil {
		// Search degrades to database-only; the service still serves.
		appLogger.Warn("could not connect to elasticsearch", zap.Error(err))
		esClient = nil
	} else {
		appLogger.Info("connected to elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
	}

	prodRepo := prodRepoPkg.NewPGRepository(db)
	catRepo := catRepoPkg.NewPGRepository(db)
	orderRepo := orderRepoPkg.NewPGRepository(db)
	mediaRepo := mediaRepoPkg.NewPGRepository(db)

	resolver := media.NewResolver(mediaRepo, redisClient, appLogger)
	prodUC := prodUCPkg.NewProductUseCase(prodRepo, resolver, redisClient, esClient, appLogger, cfg.Catalog.MarketedSlotCap)
	catUC := catUCPkg.NewCategoryUseCase(catRepo, appLogger)
	orderUC := orderUCPkg.NewOrderUseCase(orderRepo, prodRepo, resolver, kafkaProducer, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stockListener := stockListenerPkg.NewStockListener(kafkaConsumer, prodUC, prodRepo, appLogger)
	go stockListener.Start(ctx)

	respCache := httpcache.NewService(redisClient, appLogger, time.Duration(cfg.Cache.TTLSeconds)*time.Second)
	limiter := ratelimit.NewLimiter(redisClient, appLogger, ratelimit.Config{
		WindowMs:    cfg.RateLimit.WindowMs,
		MaxRequests: cfg.RateLimit.MaxRequests,
	})

	if cfg.Server.AppEnv != "dev" && cfg.Server.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(ratelimit.Middleware(limiter))

	cacheTTL := time.Duration(cfg.Cache.TTLSeconds) * time.Second
	api := engine.Group("/api/v1")

	prodHandler := prodH.NewProductHandler(prodUC, respCache, appLogger)
	prodHandler.RegisterRoutes(api, httpcache.Middleware(respCache, cacheTTL, prodH.CacheTag))

	catHandler := catH.NewCategoryHandler(catUC, respCache, appLogger)
	catHandler.RegisterRoutes(api, httpcache.Middleware(respCache, cacheTTL, catH.CacheTag))

	orderHandler := orderH.NewOrderHandler(orderUC, appLogger)
	orderHandler.RegisterRoutes(api)

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	port := cfg.Server.HTTPPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	srv := &http.Server{
		Addr:    port,
		Handler: engine,
	}

	go func() {
		appLogger.Info("starting http server", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("shutting down server")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("server shutdown failed", zap.Error(err))
	}
	appLogger.Info("server stopped")
}
