package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"storefront/config"
	"storefront/internal/admin"
	"storefront/internal/analytics"
	"storefront/internal/api"
	"storefront/internal/auth"
	"storefront/internal/broker"
	"storefront/internal/catalog"
	"storefront/internal/events"
	"storefront/internal/order"
	"storefront/internal/redisclient"
	"storefront/internal/store"
	"storefront/internal/storefront"
	"storefront/internal/util"
	"storefront/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env, cfg.Server.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting storefront service")

	tp, err := util.InitTracer("storefront", cfg.Observ.JaegerEndpoint, cfg.Observ.TraceSampleRate)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Error("Error shutting down tracer", zap.Error(err))
		}
	}()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}
	logger.Info("Database connected")

	if cfg.Auth.BootstrapUser != "" && cfg.Auth.BootstrapPass != "" {
		hash, err := auth.HashPassword(cfg.Auth.BootstrapPass)
		if err != nil {
			logger.Fatal("Failed to hash bootstrap password", zap.Error(err))
		}
		email := strings.ToLower(strings.TrimSpace(cfg.Auth.BootstrapUser))
		if err := db.EnsureAdmin(ctx, email, hash); err != nil {
			logger.Fatal("Failed to create bootstrap admin", zap.Error(err))
		}
		logger.Info("Bootstrap admin ensured", zap.String("email", email))
	}

	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	logger.Info("Redis connected")

	orderProducer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrderEvents)
	defer orderProducer.Close()
	catalogProducer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicCatalogChanges)
	defer catalogProducer.Close()
	logger.Info("Kafka producers initialized", zap.Strings("brokers", cfg.Kafka.Brokers))

	eventPublisher := broker.NewEventPublisher(orderProducer, catalogProducer)
	probe := broker.NewProbe(cfg.Kafka.Brokers, 30*time.Second)

	cache := catalog.NewCache(db)
	if err := cache.Refresh(ctx); err != nil {
		logger.Error("Initial catalog load failed", zap.Error(err))
	}

	recorder := events.NewRecorder(eventPublisher, db, probe, cfg.Storefront.EventTimeout)
	sessions := storefront.NewManager(
		func(id string) storefront.SessionStore {
			return redisClient.Session(id, cfg.Storefront.SessionTTL)
		},
		redisClient,
		cache,
		order.NewComposer(cfg.Storefront.WhatsAppBaseURL),
		recorder,
	)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	eventConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrderEvents, cfg.Kafka.ConsumerGroup)
	eventWorker := worker.NewEventWorker(eventConsumer, db)
	go func() {
		if err := eventWorker.Start(workerCtx); err != nil && err != context.Canceled {
			logger.Error("Event worker error", zap.Error(err))
		}
	}()

	// Every instance refreshes its own cache, so each one needs its own group
	catalogGroup := fmt.Sprintf("%s-catalog-%s", cfg.Kafka.ConsumerGroup, uuid.New().String())
	catalogConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicCatalogChanges, catalogGroup)
	catalogWorker := worker.NewCatalogWorker(catalogConsumer, cache, cfg.Storefront.CatalogRefreshTTL)
	go func() {
		if err := catalogWorker.Start(workerCtx); err != nil && err != context.Canceled {
			logger.Error("Catalog worker error", zap.Error(err))
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(api.Dependencies{
		Sessions:  sessions,
		Menu:      admin.NewMenuService(db, eventPublisher, cache),
		Branches:  admin.NewBranchService(db, eventPublisher, cache),
		Auth:      auth.NewService(db, redisClient, cfg.Auth.JWTSecret, cfg.Auth.SessionTTL),
		Analytics: analytics.NewService(db, cfg.Storefront.Location()),
		ReadyChecks: map[string]func(context.Context) error{
			"database": db.Ping,
			"redis":    redisClient.Ping,
		},
		SessionCookie:     cfg.Storefront.SessionCookie,
		SessionTTL:        cfg.Storefront.SessionTTL,
		SecureCookies:     cfg.Server.Env == "production",
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.Burst,
	})
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	workerCancel()
	eventWorker.Stop()
	catalogWorker.Stop()

	logger.Info("Server exited")
}
