package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"book-server/internal/interfaces"
	"book-server/internal/models"
)

const (
	createChapterQuery = `
        INSERT INTO chapters (id, book_id, number, title, content, word_count, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	getChapterByIDQuery = `
        SELECT id, book_id, number, title, content, word_count, created_at
        FROM chapters
        WHERE id = $1
    `
	getChapterByNumberQuery = `
        SELECT id, book_id, number, title, content, word_count, created_at
        FROM chapters
        WHERE book_id = $1 AND number = $2
    `
	nextChapterNumberQuery = `
        SELECT COALESCE(MAX(number), 0) + 1
        FROM chapters
        WHERE book_id = $1
    `
	listRecentChaptersQuery = `
        SELECT id, book_id, number, title, content, word_count, created_at
        FROM chapters
        WHERE book_id = $1
        ORDER BY number DESC
        LIMIT $2
    `
	listChaptersByBookQuery = `
        SELECT id, book_id, number, title, content, word_count, created_at
        FROM chapters
        WHERE book_id = $1
        ORDER BY number
    `
)

// Compile-time check
var _ interfaces.ChapterRepository = (*pgChapterRepository)(nil)

// pgChapterRepository реализует интерфейс ChapterRepository для PostgreSQL.
type pgChapterRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgChapterRepository создает новый экземпляр репозитория глав.
func NewPgChapterRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.ChapterRepository {
	return &pgChapterRepository{
		db:     db,
		logger: logger.Named("PgChapterRepo"),
	}
}

// Create вставляет новую главу. Контент после вставки не меняется.
func (r *pgChapterRepository) Create(ctx context.Context, querier interfaces.DBTX, chapter *models.Chapter) error {
	if chapter.ID == uuid.Nil {
		chapter.ID = uuid.New()
	}
	chapter.CreatedAt = time.Now().UTC()

	logFields := []zap.Field{
		zap.String("chapterID", chapter.ID.String()),
		zap.String("bookID", chapter.BookID.String()),
		zap.Int("number", chapter.Number),
		zap.Int("wordCount", chapter.WordCount),
	}
	r.logger.Debug("Creating chapter", logFields...)

	_, err := querier.Exec(ctx, createChapterQuery,
		chapter.ID, chapter.BookID, chapter.Number, chapter.Title,
		chapter.Content, chapter.WordCount, chapter.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create chapter", append(logFields, zap.Error(err))...)
		return fmt.Errorf("ошибка создания главы %d книги %s: %w", chapter.Number, chapter.BookID, err)
	}

	r.logger.Info("Chapter created successfully", logFields...)
	return nil
}

// GetByID возвращает главу по ее идентификатору.
func (r *pgChapterRepository) GetByID(ctx context.Context, querier interfaces.DBTX, id uuid.UUID) (*models.Chapter, error) {
	log := r.logger.With(zap.String("chapterID", id.String()))

	var chapter models.Chapter
	err := pgxscan.Get(ctx, querier, &chapter, getChapterByIDQuery, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Warn("Chapter not found by ID")
			return nil, fmt.Errorf("%w: chapter %s", models.ErrChapterNotFound, id)
		}
		log.Error("Failed to get chapter by ID", zap.Error(err))
		return nil, fmt.Errorf("failed to get chapter by ID %s: %w", id, err)
	}

	return &chapter, nil
}

// GetByNumber возвращает главу книги по ее номеру.
func (r *pgChapterRepository) GetByNumber(ctx context.Context, querier interfaces.DBTX, bookID uuid.UUID, number int) (*models.Chapter, error) {
	log := r.logger.With(zap.String("bookID", bookID.String()), zap.Int("number", number))

	var chapter models.Chapter
	err := pgxscan.Get(ctx, querier, &chapter, getChapterByNumberQuery, bookID, number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Warn("Chapter not found by number")
			return nil, fmt.Errorf("%w: book %s chapter %d", models.ErrChapterNotFound, bookID, number)
		}
		log.Error("Failed to get chapter by number", zap.Error(err))
		return nil, fmt.Errorf("failed to get chapter %d of book %s: %w", number, bookID, err)
	}

	return &chapter, nil
}

// NextNumber возвращает следующий свободный номер главы для книги.
func (r *pgChapterRepository) NextNumber(ctx context.Context, querier interfaces.DBTX, bookID uuid.UUID) (int, error) {
	log := r.logger.With(zap.String("bookID", bookID.String()))

	var next int
	err := querier.QueryRow(ctx, nextChapterNumberQuery, bookID).Scan(&next)
	if err != nil {
		log.Error("Failed to get next chapter number", zap.Error(err))
		return 0, fmt.Errorf("failed to get next chapter number for book %s: %w", bookID, err)
	}

	log.Debug("Next chapter number resolved", zap.Int("number", next))
	return next, nil
}

// ListRecent возвращает последние главы книги, самые новые первыми.
// Используется для ограниченного контекста генерации следующей главы.
func (r *pgChapterRepository) ListRecent(ctx context.Context, querier interfaces.DBTX, bookID uuid.UUID, limit int) ([]*models.Chapter, error) {
	log := r.logger.With(zap.String("bookID", bookID.String()), zap.Int("limit", limit))

	chapters := make([]*models.Chapter, 0, limit)
	err := pgxscan.Select(ctx, querier, &chapters, listRecentChaptersQuery, bookID, limit)
	if err != nil {
		log.Error("Failed to list recent chapters", zap.Error(err))
		return nil, fmt.Errorf("failed to list recent chapters for book %s: %w", bookID, err)
	}

	log.Debug("Recent chapters listed", zap.Int("count", len(chapters)))
	return chapters, nil
}

// ListByBook возвращает все главы книги по порядку номеров.
func (r *pgChapterRepository) ListByBook(ctx context.Context, querier interfaces.DBTX, bookID uuid.UUID) ([]*models.Chapter, error) {
	log := r.logger.With(zap.String("bookID", bookID.String()))

	chapters := make([]*models.Chapter, 0)
	err := pgxscan.Select(ctx, querier, &chapters, listChaptersByBookQuery, bookID)
	if err != nil {
		log.Error("Failed to list chapters by book", zap.Error(err))
		return nil, fmt.Errorf("failed to list chapters for book %s: %w", bookID, err)
	}

	log.Debug("Chapters listed", zap.Int("count", len(chapters)))
	return chapters, nil
}
