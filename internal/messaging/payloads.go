// Package messaging содержит контракты очередей RabbitMQ: полезные нагрузки
// задач иллюстраций и уведомлений о смене их статусов, паблишер и консьюмер.
package messaging

import (
	"github.com/google/uuid"

	"book-server/internal/models"
)

// IllustrationTaskPayload - задача генерации одной иллюстрации для воркера.
// Prompt дублирует значение из БД для логов и отладки; источником истины
// при выполнении задачи остается строка illustration_jobs.
type IllustrationTaskPayload struct {
	TaskID        string    `json:"task_id"`
	JobID         uuid.UUID `json:"job_id"`
	ChapterID     uuid.UUID `json:"chapter_id"`
	BookID        uuid.UUID `json:"book_id"`
	Position      int       `json:"position"`
	Prompt        string    `json:"prompt"`
	CoverEligible bool      `json:"cover_eligible,omitempty"` // true только у задачи позиции 0, когда у книги нет обложки
}

// JobNotificationPayload - уведомление о переходе задачи иллюстрации в
// терминальный статус. Потребляется WebSocket-мостом на стороне сервера.
type JobNotificationPayload struct {
	TaskID       string                    `json:"task_id"`
	JobID        uuid.UUID                 `json:"job_id"`
	ChapterID    uuid.UUID                 `json:"chapter_id"`
	BookID       uuid.UUID                 `json:"book_id"`
	Position     int                       `json:"position"`
	Status       models.IllustrationStatus `json:"status"`
	ImageURL     string                    `json:"image_url,omitempty"`
	ErrorDetails string                    `json:"error_details,omitempty"`
}
