package handler

import (
	"context"
	"encoding/json"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"book-server/internal/messaging"
)

// NotificationBridge пересылает уведомления о задачах иллюстраций из очереди
// RabbitMQ клиентам WebSocket, подписанным на книгу задачи. Реализует
// messaging.DeliveryHandler и запускается внутри messaging.Consumer.
type NotificationBridge struct {
	hub    *Hub
	logger *zap.Logger
}

// Compile-time check
var _ messaging.DeliveryHandler = (*NotificationBridge)(nil)

// NewNotificationBridge создает мост очереди уведомлений в хаб.
func NewNotificationBridge(hub *Hub, logger *zap.Logger) *NotificationBridge {
	return &NotificationBridge{
		hub:    hub,
		logger: logger.Named("NotificationBridge"),
	}
}

// HandleDelivery разбирает уведомление и рассылает исходный JSON подписчикам
// книги. Сообщение подтверждается и при нуле подписчиков: состояние задачи
// уже записано в БД, клиент без соединения увидит его при чтении главы.
func (b *NotificationBridge) HandleDelivery(ctx context.Context, msg amqp091.Delivery) bool {
	var payload messaging.JobNotificationPayload
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		b.logger.Error("Failed to unmarshal notification payload", zap.ByteString("body", msg.Body), zap.Error(err))
		return false
	}

	delivered := b.hub.BroadcastToBook(payload.BookID, msg.Body)
	b.logger.Debug("Notification forwarded",
		zap.String("job_id", payload.JobID.String()),
		zap.String("book_id", payload.BookID.String()),
		zap.String("status", string(payload.Status)),
		zap.Int("delivered", delivered),
	)
	return true
}
