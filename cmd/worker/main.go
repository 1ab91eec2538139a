package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"book-server/internal/config"
	"book-server/internal/database"
	"book-server/internal/imagegen"
	"book-server/internal/logger"
	"book-server/internal/messaging"
	"book-server/internal/references"
	"book-server/internal/service"
	"book-server/internal/storage"
	"book-server/internal/textgen"
	"book-server/internal/worker"
)

const (
	maxReconnectAttempts = 5
	reconnectDelay       = 5 * time.Second
	startupTimeout       = 30 * time.Second

	// Задача, висящая в generating дольше этого порога, считается брошенной
	// упавшим воркером. Штатный перебор всех моделей укладывается в минуты.
	staleJobThreshold = 15 * time.Minute

	metricsPort = "9091"
)

func main() {
	// --- 1. Конфигурация и логгер ---
	cfg := config.Load()

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()
	appLogger.Info("Starting illustration worker...",
		zap.String("env", cfg.AppEnv),
		zap.String("consumer", cfg.RabbitMQ.ConsumerName))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- 2. PostgreSQL ---
	// Схему ведет API-сервер, воркер миграции не выполняет
	dbCtx, dbCancel := context.WithTimeout(ctx, startupTimeout)
	pool, err := database.NewPool(dbCtx, cfg.Database, appLogger)
	dbCancel()
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	// --- 3. Сброс зависших задач ---
	// Задачи, оставшиеся в generating после аварийного завершения, снова
	// становятся pending и будут обработаны при повторной доставке
	jobRepo := database.NewPgIllustrationJobRepository(pool, appLogger)
	staleIDs, err := jobRepo.FindStaleGenerating(ctx, pool, staleJobThreshold)
	if err != nil {
		appLogger.Error("Failed to reset stale generating jobs", zap.Error(err))
	} else if len(staleIDs) > 0 {
		appLogger.Warn("Reset stale generating jobs back to pending",
			zap.Int("count", len(staleIDs)))
	}

	// --- 4. Генерация изображений, переводы, референсы, хранилище ---
	aiClient, err := textgen.NewAIClient(cfg.AI, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize AI client", zap.Error(err))
	}
	translator := textgen.NewTranslator(aiClient, appLogger)

	imageGenerator, err := imagegen.NewFallbackClient(ctx, cfg.ImageGen, cfg.AI.APIKey, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize image generation client", zap.Error(err))
	}

	blobPublisher, err := storage.NewFilePublisher(cfg.Storage, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize image storage", zap.Error(err))
	}

	bookRepo := database.NewPgBookRepository(pool, appLogger)
	characterRepo := database.NewPgCharacterRepository(pool, appLogger)
	chapterRepo := database.NewPgChapterRepository(pool, appLogger)
	referenceResolver := references.NewResolver(characterRepo, pool, cfg.ImageGen.ReferenceCacheTTL, appLogger)

	illustrationService := service.NewIllustrationService(
		pool, jobRepo, chapterRepo, bookRepo,
		translator, referenceResolver, imageGenerator, blobPublisher,
		appLogger,
	)
	appLogger.Info("Illustration service initialized")

	// --- 5. HTTP для метрик и health ---
	startMetricsServer(appLogger)

	// --- 6. Цикл консьюмера RabbitMQ ---
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		runConsumerLoop(ctx, cfg, illustrationService, appLogger)
		appLogger.Info("RabbitMQ consumer loop exited")
	}()

	appLogger.Info("Illustration worker started successfully")

	// --- 7. Ожидание сигнала завершения ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down illustration worker...")

	// --- 8. Graceful shutdown ---
	cancel()
	appLogger.Info("Waiting for background tasks to finish...")
	wg.Wait()

	appLogger.Info("Illustration worker shut down gracefully")
}

// runConsumerLoop держит подключение к RabbitMQ и перезапускает консьюмера
// после обрыва соединения. Возвращается только по отмене контекста.
func runConsumerLoop(ctx context.Context, cfg *config.Config, illustrations service.IllustrationService, logger *zap.Logger) {
	for {
		conn, err := dialRabbitMQ(ctx, cfg.RabbitMQ.URL, logger)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("Context cancelled, stopping RabbitMQ connection attempts")
				return
			}
			logger.Fatal("Max RabbitMQ reconnect attempts reached, shutting down", zap.Error(err))
		}
		logger.Info("RabbitMQ connected successfully")

		consumeUntilDisconnect(ctx, conn, cfg, illustrations, logger)

		if ctx.Err() != nil {
			return
		}

		logger.Info("Retrying RabbitMQ connection...", zap.Duration("delay", reconnectDelay))
		select {
		case <-time.After(reconnectDelay):
		case <-ctx.Done():
			return
		}
	}
}

// consumeUntilDisconnect обслуживает одно подключение: создает паблишер
// уведомлений и консьюмера задач и блокируется до отмены контекста или
// обрыва соединения. Закрытие соединения закрывает и каналы паблишера.
func consumeUntilDisconnect(ctx context.Context, conn *amqp.Connection, cfg *config.Config, illustrations service.IllustrationService, logger *zap.Logger) {
	defer conn.Close()

	notifyClose := conn.NotifyClose(make(chan *amqp.Error, 1))

	notifications, err := messaging.NewJobNotificationPublisher(conn, cfg.RabbitMQ.NotificationQueue, logger)
	if err != nil {
		logger.Error("Failed to create notification publisher", zap.Error(err))
		return
	}

	handler := worker.NewHandler(logger, illustrations, notifications, cfg.Metrics.PushGatewayURL)

	// Отклоненные сообщения не возвращаются в очередь: повтор с теми же
	// данными упрется в ту же ошибку, а итоговые статусы задач уже в БД
	consumer := messaging.NewConsumer(conn, cfg.RabbitMQ.TaskQueue, cfg.RabbitMQ.ConsumerName, false, logger)

	if err := consumer.Run(ctx, handler); err != nil {
		logger.Error("Consumer stopped with error", zap.Error(err))
	}

	if ctx.Err() != nil {
		return
	}

	select {
	case closeErr := <-notifyClose:
		if closeErr != nil {
			logger.Warn("RabbitMQ connection closed", zap.Error(closeErr))
		}
	default:
	}
}

// dialRabbitMQ подключается к RabbitMQ с повторами. Возвращает ошибку после
// исчерпания попыток или при отмене контекста.
func dialRabbitMQ(ctx context.Context, url string, logger *zap.Logger) (*amqp.Connection, error) {
	var conn *amqp.Connection
	var err error
	for attempt := 1; attempt <= maxReconnectAttempts; attempt++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			return conn, nil
		}
		logger.Warn("Failed to connect to RabbitMQ",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", maxReconnectAttempts),
			zap.Duration("retry_delay", reconnectDelay),
			zap.Error(err),
		)
		select {
		case <-time.After(reconnectDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, err
}

// startMetricsServer поднимает отдельный HTTP-сервер с /metrics и /health.
// Метрики дополнительно пушатся обработчиком в Pushgateway, если тот
// настроен; pull-эндпоинт остается для скрейпа и локальной диагностики.
func startMetricsServer(logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok"}`))
	})

	go func() {
		logger.Info("Starting metrics HTTP server", zap.String("addr", ":"+metricsPort))
		if err := http.ListenAndServe(":"+metricsPort, mux); err != nil {
			logger.Error("Metrics HTTP server failed", zap.Error(err))
		}
	}()
}
