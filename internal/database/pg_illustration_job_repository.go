package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"book-server/internal/interfaces"
	"book-server/internal/models"
)

const (
	createIllustrationJobQuery = `
        INSERT INTO illustration_jobs (id, chapter_id, position, text_position, prompt, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (chapter_id, position) DO NOTHING
    `
	getIllustrationJobByIDQuery = `
        SELECT id, chapter_id, position, text_position, prompt, status, image_url, error_details, created_at, updated_at
        FROM illustration_jobs
        WHERE id = $1
    `
	listIllustrationJobsByChapterQuery = `
        SELECT id, chapter_id, position, text_position, prompt, status, image_url, error_details, created_at, updated_at
        FROM illustration_jobs
        WHERE chapter_id = $1
        ORDER BY position
    `
	listIllustrationJobsByChaptersQuery = `
        SELECT id, chapter_id, position, text_position, prompt, status, image_url, error_details, created_at, updated_at
        FROM illustration_jobs
        WHERE chapter_id = ANY($1::uuid[])
        ORDER BY chapter_id, position
    `
	updateIllustrationJobStatusQuery = `
        UPDATE illustration_jobs
        SET status = $2, image_url = $3, error_details = $4, updated_at = NOW()
        WHERE id = $1
    `
	resetStaleGeneratingJobsQuery = `
        UPDATE illustration_jobs
        SET status = $1, updated_at = NOW()
        WHERE status = $2 AND updated_at < $3
        RETURNING id
    `
)

// Compile-time check
var _ interfaces.IllustrationJobRepository = (*pgIllustrationJobRepository)(nil)

// pgIllustrationJobRepository реализует интерфейс IllustrationJobRepository для PostgreSQL.
// Записи статуса выполняются простым UPDATE по id: последняя запись побеждает,
// оптимистичных блокировок нет.
type pgIllustrationJobRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgIllustrationJobRepository создает новый экземпляр репозитория задач иллюстраций.
func NewPgIllustrationJobRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.IllustrationJobRepository {
	return &pgIllustrationJobRepository{
		db:     db,
		logger: logger.Named("PgIllustrationJobRepo"),
	}
}

// CreateBatch вставляет по одной pending-задаче на маркер в порядке маркеров.
// Конфликт по (chapter_id, position) не считается ошибкой: такая строка
// пропускается, возвращаются только реально вставленные задачи.
func (r *pgIllustrationJobRepository) CreateBatch(ctx context.Context, querier interfaces.DBTX, jobs []*models.IllustrationJob) ([]*models.IllustrationJob, error) {
	if len(jobs) == 0 {
		return []*models.IllustrationJob{}, nil
	}

	now := time.Now().UTC()
	inserted := make([]*models.IllustrationJob, 0, len(jobs))

	for _, job := range jobs {
		if job.ID == uuid.Nil {
			job.ID = uuid.New()
		}
		if job.Status == "" {
			job.Status = models.IllustrationStatusPending
		}
		job.CreatedAt = now
		job.UpdatedAt = now

		commandTag, err := querier.Exec(ctx, createIllustrationJobQuery,
			job.ID, job.ChapterID, job.Position, job.TextPosition,
			job.Prompt, job.Status, job.CreatedAt, job.UpdatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to create illustration job",
				zap.String("chapterID", job.ChapterID.String()),
				zap.Int("position", job.Position),
				zap.Error(err))
			return nil, fmt.Errorf("ошибка создания задачи иллюстрации (chapter %s, position %d): %w", job.ChapterID, job.Position, err)
		}
		if commandTag.RowsAffected() == 0 {
			r.logger.Warn("Illustration job already exists, skipping",
				zap.String("chapterID", job.ChapterID.String()),
				zap.Int("position", job.Position))
			continue
		}
		inserted = append(inserted, job)
	}

	r.logger.Info("Illustration jobs created",
		zap.Int("requested", len(jobs)),
		zap.Int("inserted", len(inserted)))
	return inserted, nil
}

// GetByID возвращает задачу иллюстрации по ее идентификатору.
func (r *pgIllustrationJobRepository) GetByID(ctx context.Context, querier interfaces.DBTX, id uuid.UUID) (*models.IllustrationJob, error) {
	log := r.logger.With(zap.String("jobID", id.String()))

	var job models.IllustrationJob
	err := pgxscan.Get(ctx, querier, &job, getIllustrationJobByIDQuery, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Warn("Illustration job not found by ID")
			return nil, models.ErrNotFound
		}
		log.Error("Failed to get illustration job by ID", zap.Error(err))
		return nil, fmt.Errorf("failed to get illustration job by ID %s: %w", id, err)
	}

	return &job, nil
}

// ListByChapter возвращает задачи главы, отсортированные по позиции.
func (r *pgIllustrationJobRepository) ListByChapter(ctx context.Context, querier interfaces.DBTX, chapterID uuid.UUID) ([]*models.IllustrationJob, error) {
	log := r.logger.With(zap.String("chapterID", chapterID.String()))

	jobs := make([]*models.IllustrationJob, 0)
	err := pgxscan.Select(ctx, querier, &jobs, listIllustrationJobsByChapterQuery, chapterID)
	if err != nil {
		log.Error("Failed to list illustration jobs by chapter", zap.Error(err))
		return nil, fmt.Errorf("failed to list illustration jobs for chapter %s: %w", chapterID, err)
	}

	log.Debug("Illustration jobs listed", zap.Int("count", len(jobs)))
	return jobs, nil
}

// ListByChapters возвращает задачи сразу нескольких глав (пакетная выборка
// для отображения книги целиком).
func (r *pgIllustrationJobRepository) ListByChapters(ctx context.Context, querier interfaces.DBTX, chapterIDs []uuid.UUID) ([]*models.IllustrationJob, error) {
	if len(chapterIDs) == 0 {
		return []*models.IllustrationJob{}, nil
	}

	log := r.logger.With(zap.Int("chapterCount", len(chapterIDs)))

	jobs := make([]*models.IllustrationJob, 0)
	err := pgxscan.Select(ctx, querier, &jobs, listIllustrationJobsByChaptersQuery, pq.Array(chapterIDs))
	if err != nil {
		log.Error("Failed to list illustration jobs by chapters", zap.Error(err))
		return nil, fmt.Errorf("failed to list illustration jobs for %d chapters: %w", len(chapterIDs), err)
	}

	log.Debug("Illustration jobs listed (batch)", zap.Int("count", len(jobs)))
	return jobs, nil
}

// UpdateStatus записывает статус задачи вместе с URL изображения либо деталями
// ошибки. Запись безусловная (последний писатель побеждает).
func (r *pgIllustrationJobRepository) UpdateStatus(ctx context.Context, querier interfaces.DBTX, id uuid.UUID, status models.IllustrationStatus, imageURL, errorDetails *string) error {
	logFields := []zap.Field{
		zap.String("jobID", id.String()),
		zap.String("status", string(status)),
	}
	r.logger.Debug("Updating illustration job status", logFields...)

	commandTag, err := querier.Exec(ctx, updateIllustrationJobStatusQuery, id, status, imageURL, errorDetails)
	if err != nil {
		r.logger.Error("Failed to update illustration job status", append(logFields, zap.Error(err))...)
		return fmt.Errorf("ошибка обновления статуса задачи %s: %w", id, err)
	}
	if commandTag.RowsAffected() == 0 {
		r.logger.Warn("Attempted to update status of non-existent illustration job", logFields...)
		return models.ErrNotFound
	}

	r.logger.Info("Illustration job status updated", logFields...)
	return nil
}

// FindStaleGenerating сбрасывает задачи, зависшие в статусе generating дольше
// порога, обратно в pending и возвращает их идентификаторы. Используется
// при старте воркера для восстановления после аварийного завершения.
func (r *pgIllustrationJobRepository) FindStaleGenerating(ctx context.Context, querier interfaces.DBTX, threshold time.Duration) ([]uuid.UUID, error) {
	cutoff := time.Now().UTC().Add(-threshold)
	logFields := []zap.Field{
		zap.Duration("threshold", threshold),
		zap.Time("cutoff", cutoff),
	}
	r.logger.Info("Resetting stale generating illustration jobs", logFields...)

	rows, err := querier.Query(ctx, resetStaleGeneratingJobsQuery,
		models.IllustrationStatusPending, models.IllustrationStatusGenerating, cutoff)
	if err != nil {
		r.logger.Error("Failed to reset stale generating jobs", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("ошибка сброса зависших задач иллюстраций: %w", err)
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("ошибка чтения идентификатора зависшей задачи: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации по зависшим задачам: %w", err)
	}

	r.logger.Info("Stale generating jobs reset", append(logFields, zap.Int("count", len(ids)))...)
	return ids, nil
}
