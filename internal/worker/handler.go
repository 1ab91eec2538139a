// Package worker содержит обработчик очереди задач иллюстраций: прогоняет
// задачу через IllustrationService и рассылает уведомление о ее итоговом
// статусе.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"book-server/internal/messaging"
	"book-server/internal/models"
	"book-server/internal/service"
)

var (
	tasksProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "book_server_worker_tasks_processed_total",
			Help: "Total number of illustration tasks processed.",
		},
		[]string{"status"}, // "success", "error_generation", "conflict", "not_found", "error_unmarshal", "error_infra"
	)
	taskDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "book_server_worker_task_duration_seconds",
		Help:    "Duration of illustration task processing.",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10), // Перебор моделей может занимать минуты
	})
	notifyErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "book_server_worker_notification_publish_errors_total",
		Help: "Total number of errors publishing job status notifications.",
	})
)

// Handler обрабатывает сообщения очереди задач иллюстраций.
type Handler struct {
	logger        *zap.Logger
	illustrations service.IllustrationService
	notifications messaging.NotificationPublisher
	pusher        *push.Pusher
}

// NewHandler создает обработчик задач. При пустом pushGatewayURL пуш метрик выключен.
func NewHandler(
	logger *zap.Logger,
	illustrations service.IllustrationService,
	notifications messaging.NotificationPublisher,
	pushGatewayURL string,
) *Handler {
	if notifications == nil {
		logger.Fatal("Notification publisher cannot be nil for illustration worker handler")
	}

	var pusher *push.Pusher
	if pushGatewayURL != "" {
		hostname, _ := os.Hostname()
		pusher = push.New(pushGatewayURL, "book-server-worker").
			Grouping("instance", hostname).
			Gatherer(prometheus.DefaultGatherer)
		logger.Info("Prometheus Pusher initialized",
			zap.String("url", pushGatewayURL), zap.String("instance", hostname))
	}

	return &Handler{
		logger:        logger,
		illustrations: illustrations,
		notifications: notifications,
		pusher:        pusher,
	}
}

// HandleDelivery обрабатывает одну задачу иллюстрации.
// Возвращает true, если исходное сообщение должно быть подтверждено (ack).
func (h *Handler) HandleDelivery(ctx context.Context, msg amqp091.Delivery) bool {
	defer h.pushMetrics()

	var payload messaging.IllustrationTaskPayload
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		h.logger.Error("Failed to unmarshal illustration task",
			zap.Error(err),
			zap.String("correlation_id", msg.CorrelationId),
			zap.ByteString("body", msg.Body))
		tasksProcessed.WithLabelValues("error_unmarshal").Inc()
		return false // Nack - неизвестный формат
	}

	log := h.logger.With(
		zap.String("task_id", payload.TaskID),
		zap.String("job_id", payload.JobID.String()),
		zap.String("chapter_id", payload.ChapterID.String()),
		zap.Int("position", payload.Position),
		zap.String("correlation_id", msg.CorrelationId))
	log.Info("Received illustration task", zap.Bool("cover_eligible", payload.CoverEligible))

	start := time.Now()
	// Задача доводится до конца независимо от остановки консьюмера: обрыв
	// посреди перебора моделей оставил бы ее висеть в generating
	job, err := h.illustrations.RunJob(context.Background(), payload.JobID, payload.CoverEligible)
	taskDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			log.Warn("Job not found, dropping task", zap.Error(err))
			tasksProcessed.WithLabelValues("not_found").Inc()
			return true // Ack - задача ссылается на несуществующую строку
		case errors.Is(err, models.ErrJobAlreadyRunning):
			log.Warn("Job is already running elsewhere, dropping task")
			tasksProcessed.WithLabelValues("conflict").Inc()
			return true // Ack - результат доложит владелец запуска
		default:
			log.Error("Job run failed before reaching a terminal state", zap.Error(err))
			tasksProcessed.WithLabelValues("error_infra").Inc()
			return false // Nack - судьбу сообщения решает политика requeue консьюмера
		}
	}

	notification := messaging.JobNotificationPayload{
		TaskID:    payload.TaskID,
		JobID:     job.ID,
		ChapterID: job.ChapterID,
		BookID:    payload.BookID,
		Position:  job.Position,
		Status:    job.Status,
	}
	if job.ImageURL != nil {
		notification.ImageURL = *job.ImageURL
	}
	if job.ErrorDetails != nil {
		notification.ErrorDetails = *job.ErrorDetails
	}

	if job.Status == models.IllustrationStatusReady {
		tasksProcessed.WithLabelValues("success").Inc()
		log.Info("Illustration task completed", zap.String("image_url", notification.ImageURL))
	} else {
		tasksProcessed.WithLabelValues("error_generation").Inc()
		log.Warn("Illustration task ended in error state",
			zap.String("error_details", notification.ErrorDetails))
	}

	// Уведомление шлется по возможности: итоговый статус уже в БД, клиент
	// восстановит его чтением главы
	if pubErr := h.notifications.PublishJobNotification(ctx, notification); pubErr != nil {
		log.Error("Failed to publish job notification", zap.Error(pubErr))
		notifyErrors.Inc()
	}

	return true // Ack
}

// pushMetrics отправляет метрики в Pushgateway, если он настроен.
func (h *Handler) pushMetrics() {
	if h.pusher == nil {
		return
	}
	if err := h.pusher.Push(); err != nil {
		h.logger.Error("Failed to push metrics to Pushgateway", zap.Error(err))
	}
}
