package messaging

import (
	"context"
	"fmt"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"book-server/internal/config"
)

// DeliveryHandler обрабатывает одно сообщение очереди.
// Возвращает true для подтверждения (ack) и false для отклонения (nack).
type DeliveryHandler interface {
	HandleDelivery(ctx context.Context, msg amqp091.Delivery) bool
}

// Consumer слушает одну очередь RabbitMQ и передает сообщения обработчику
// по одному (prefetch = 1). Сообщения подтверждаются вручную по результату
// обработчика.
type Consumer struct {
	conn             *amqp091.Connection
	queue            config.QueueConfig
	consumerTag      string
	requeueOnFailure bool
	logger           *zap.Logger
}

// NewConsumer создает консьюмера очереди. requeueOnFailure управляет судьбой
// отклоненных сообщений: возврат в очередь либо отбрасывание.
func NewConsumer(conn *amqp091.Connection, queue config.QueueConfig, consumerTag string, requeueOnFailure bool, logger *zap.Logger) *Consumer {
	return &Consumer{
		conn:             conn,
		queue:            queue,
		consumerTag:      consumerTag,
		requeueOnFailure: requeueOnFailure,
		logger:           logger.Named("Consumer").With(zap.String("queue", queue.Name)),
	}
}

// Run объявляет очередь и обрабатывает сообщения до отмены контекста или
// закрытия канала. Возврат без ошибки означает штатную остановку.
func (c *Consumer) Run(ctx context.Context, handler DeliveryHandler) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("не удалось открыть канал консьюмера: %w", err)
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(c.queue.Name, c.queue.Durable, c.queue.AutoDelete, c.queue.Exclusive, c.queue.NoWait, nil)
	if err != nil {
		return fmt.Errorf("не удалось объявить очередь '%s': %w", c.queue.Name, err)
	}
	c.logger.Info("Queue declared", zap.Int("messages", q.Messages), zap.Int("consumers", q.Consumers))

	// Берем следующее сообщение только после подтверждения текущего
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("не удалось установить QoS: %w", err)
	}

	msgs, err := ch.Consume(
		q.Name,
		c.consumerTag,
		false, // auto-ack выключен, подтверждаем вручную
		c.queue.Exclusive,
		false, // no-local
		c.queue.NoWait,
		nil,
	)
	if err != nil {
		return fmt.Errorf("не удалось зарегистрировать консьюмера: %w", err)
	}
	c.logger.Info("Consumer started, waiting for messages...")

	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				c.logger.Warn("Consumer channel closed by RabbitMQ")
				return nil
			}
			c.logger.Debug("Received a message", zap.Uint64("delivery_tag", msg.DeliveryTag))
			if handler.HandleDelivery(ctx, msg) {
				if ackErr := msg.Ack(false); ackErr != nil {
					c.logger.Error("Failed to ack message", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(ackErr))
				}
			} else {
				if nackErr := msg.Nack(false, c.requeueOnFailure); nackErr != nil {
					c.logger.Error("Failed to nack message", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(nackErr))
				}
			}
		case <-ctx.Done():
			c.logger.Info("Context cancelled, stopping consumer...")
			return nil
		}
	}
}
