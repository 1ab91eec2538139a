package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"book-server/internal/config"
)

const (
	publishTimeout = 10 * time.Second
	publisherAppID = "book-server"
)

// TaskPublisher публикует задачи генерации иллюстраций в очередь воркера.
//
//go:generate mockery --name TaskPublisher --output ../mocks --outpkg mocks --case=underscore
type TaskPublisher interface {
	PublishIllustrationTask(ctx context.Context, payload IllustrationTaskPayload) error
}

// NotificationPublisher публикует уведомления о статусах задач иллюстраций.
//
//go:generate mockery --name NotificationPublisher --output ../mocks --outpkg mocks --case=underscore
type NotificationPublisher interface {
	PublishJobNotification(ctx context.Context, payload JobNotificationPayload) error
}

// rabbitMQPublisher публикует сообщения в одну очередь через default exchange.
// Экземпляр привязывается к очереди фабриками ниже и реализует оба интерфейса;
// канал защищен мьютексом, т.к. amqp-канал не потокобезопасен.
type rabbitMQPublisher struct {
	ch        *amqp091.Channel
	queueName string
	logger    *zap.Logger
	mu        sync.Mutex
}

var (
	_ TaskPublisher         = (*rabbitMQPublisher)(nil)
	_ NotificationPublisher = (*rabbitMQPublisher)(nil)
)

// NewIllustrationTaskPublisher создает паблишер очереди задач иллюстраций.
func NewIllustrationTaskPublisher(conn *amqp091.Connection, queue config.QueueConfig, logger *zap.Logger) (TaskPublisher, error) {
	return newRabbitMQPublisher(conn, queue, logger)
}

// NewJobNotificationPublisher создает паблишер очереди уведомлений.
func NewJobNotificationPublisher(conn *amqp091.Connection, queue config.QueueConfig, logger *zap.Logger) (NotificationPublisher, error) {
	return newRabbitMQPublisher(conn, queue, logger)
}

// newRabbitMQPublisher открывает канал и объявляет очередь. Очередь
// объявляется и здесь, и в консьюмере с одинаковыми параметрами, чтобы
// порядок запуска сервисов не имел значения.
func newRabbitMQPublisher(conn *amqp091.Connection, queue config.QueueConfig, logger *zap.Logger) (*rabbitMQPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть канал для паблишера: %w", err)
	}

	if _, err := ch.QueueDeclare(queue.Name, queue.Durable, queue.AutoDelete, queue.Exclusive, queue.NoWait, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("не удалось объявить очередь '%s': %w", queue.Name, err)
	}

	log := logger.Named("RabbitMQPublisher").With(zap.String("queue", queue.Name))
	log.Info("Publisher initialized, queue declared")

	return &rabbitMQPublisher{
		ch:        ch,
		queueName: queue.Name,
		logger:    log,
	}, nil
}

// PublishIllustrationTask публикует задачу генерации иллюстрации.
func (p *rabbitMQPublisher) PublishIllustrationTask(ctx context.Context, payload IllustrationTaskPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("ошибка сериализации задачи иллюстрации %s: %w", payload.JobID, err)
	}
	if err := p.publishMessage(ctx, body, payload.TaskID); err != nil {
		return fmt.Errorf("ошибка публикации задачи иллюстрации %s: %w", payload.JobID, err)
	}
	return nil
}

// PublishJobNotification публикует уведомление о статусе задачи.
func (p *rabbitMQPublisher) PublishJobNotification(ctx context.Context, payload JobNotificationPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("ошибка сериализации уведомления по задаче %s: %w", payload.JobID, err)
	}
	if err := p.publishMessage(ctx, body, payload.TaskID); err != nil {
		return fmt.Errorf("ошибка публикации уведомления по задаче %s: %w", payload.JobID, err)
	}
	return nil
}

// publishMessage отправляет тело сообщения в очередь через default exchange.
func (p *rabbitMQPublisher) publishMessage(ctx context.Context, body []byte, correlationID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil {
		return errors.New("канал RabbitMQ не инициализирован")
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err := p.ch.PublishWithContext(ctx,
		"",          // exchange (default)
		p.queueName, // routing key совпадает с именем очереди
		false,       // mandatory
		false,       // immediate
		amqp091.Publishing{
			ContentType:   "application/json",
			DeliveryMode:  amqp091.Persistent,
			Timestamp:     time.Now(),
			AppId:         publisherAppID,
			CorrelationId: correlationID,
			Body:          body,
		},
	)
	if err != nil {
		p.logger.Error("Failed to publish message", zap.Error(err))
		return err
	}

	p.logger.Debug("Message published", zap.Int("size_bytes", len(body)))
	return nil
}
