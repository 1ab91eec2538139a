package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"book-server/internal/config"
	"book-server/internal/database"
	"book-server/internal/handler"
	"book-server/internal/imagegen"
	"book-server/internal/locks"
	"book-server/internal/logger"
	"book-server/internal/messaging"
	"book-server/internal/references"
	"book-server/internal/service"
	"book-server/internal/storage"
	"book-server/internal/textgen"
)

const (
	rabbitMaxRetries = 5
	rabbitRetryDelay = 5 * time.Second
	startupTimeout   = 30 * time.Second
)

func main() {
	// --- 1. Конфигурация и логгер ---
	cfg := config.Load()

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()
	appLogger.Info("Starting book server...", zap.String("env", cfg.AppEnv))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- 2. PostgreSQL и миграции ---
	startupCtx, startupCancel := context.WithTimeout(ctx, startupTimeout)
	pool, err := database.NewPool(startupCtx, cfg.Database, appLogger)
	startupCancel()
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.NewMigrator(pool, appLogger).Up(ctx); err != nil {
		appLogger.Fatal("Failed to apply database migrations", zap.Error(err))
	}

	// --- 3. Redis ---
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))

	// --- 4. RabbitMQ ---
	rabbitConn, err := connectRabbitMQ(cfg.RabbitMQ.URL, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer rabbitConn.Close()
	appLogger.Info("Connected to RabbitMQ")

	taskPublisher, err := messaging.NewIllustrationTaskPublisher(rabbitConn, cfg.RabbitMQ.TaskQueue, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to create illustration task publisher", zap.Error(err))
	}

	// --- 5. Репозитории и инфраструктура пайплайна ---
	bookRepo := database.NewPgBookRepository(pool, appLogger)
	characterRepo := database.NewPgCharacterRepository(pool, appLogger)
	chapterRepo := database.NewPgChapterRepository(pool, appLogger)
	jobRepo := database.NewPgIllustrationJobRepository(pool, appLogger)
	txManager := database.NewTxManager(pool, appLogger)

	guard := locks.NewRedisGenerationGuard(redisClient, cfg.Redis.LockTTL, appLogger)

	aiClient, err := textgen.NewAIClient(cfg.AI, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize text generation client", zap.Error(err))
	}
	prompts := textgen.NewPromptBuilder(cfg.AI.Model, appLogger)
	translator := textgen.NewTranslator(aiClient, appLogger)

	generator, err := imagegen.NewFallbackClient(ctx, cfg.ImageGen, cfg.AI.APIKey, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize image generation client", zap.Error(err))
	}

	blobs, err := storage.NewFilePublisher(cfg.Storage, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize image storage", zap.Error(err))
	}

	resolver := references.NewResolver(characterRepo, pool, cfg.ImageGen.ReferenceCacheTTL, appLogger)

	// --- 6. Сервисы ---
	illustrationService := service.NewIllustrationService(
		pool, jobRepo, chapterRepo, bookRepo, translator, resolver, generator, blobs, appLogger)
	chapterService := service.NewChapterService(
		pool, txManager, bookRepo, characterRepo, chapterRepo, illustrationService,
		aiClient, prompts, guard, taskPublisher, cfg.AI, appLogger)
	bookService := service.NewBookService(pool, bookRepo, characterRepo, chapterRepo, jobRepo, appLogger)
	referenceService := service.NewReferenceService(pool, characterRepo, translator, generator, blobs, appLogger)

	// --- 7. WebSocket хаб и мост уведомлений ---
	hub := handler.NewHub(appLogger)
	bridge := handler.NewNotificationBridge(hub, appLogger)
	notificationConsumer := messaging.NewConsumer(
		rabbitConn, cfg.RabbitMQ.NotificationQueue, "book-server-notifications", false, appLogger)
	go func() {
		if err := notificationConsumer.Run(ctx, bridge); err != nil {
			appLogger.Error("Notification consumer stopped with error", zap.Error(err))
		}
	}()

	// --- 8. Echo ---
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator()
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	e.Use(handler.RequestLogger(appLogger))
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	bookHandler := handler.NewBookHandler(bookService, chapterService, illustrationService, referenceService, appLogger)
	bookHandler.RegisterRoutes(e)
	wsHandler := handler.NewWSHandler(hub, appLogger)
	wsHandler.RegisterRoutes(e)

	// Опубликованные изображения раздаются как статика
	e.Static("/images", cfg.Storage.SavePath)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// --- 9. Запуск HTTP сервера ---
	go func() {
		appLogger.Info("HTTP server listening", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- 10. Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutdown signal received, stopping...")

	// Останавливаем консьюмер уведомлений
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server shutdown failed", zap.Error(err))
	}

	appLogger.Info("Book server stopped gracefully")
}

// connectRabbitMQ пытается подключиться к RabbitMQ с несколькими попытками.
func connectRabbitMQ(url string, logger *zap.Logger) (*amqp.Connection, error) {
	var conn *amqp.Connection
	var err error
	for attempt := 1; attempt <= rabbitMaxRetries; attempt++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			return conn, nil
		}
		logger.Warn("Failed to connect to RabbitMQ",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", rabbitMaxRetries),
			zap.Duration("retry_delay", rabbitRetryDelay),
			zap.Error(err),
		)
		time.Sleep(rabbitRetryDelay)
	}
	return nil, err
}
