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
	createBookQuery = `
        INSERT INTO books (id, title, description, cover_url, words_per_chapter, images_per_chapter, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	getBookByIDQuery = `
        SELECT id, title, description, cover_url, words_per_chapter, images_per_chapter, created_at, updated_at
        FROM books
        WHERE id = $1
    `
	updateBookSettingsQuery = `
        UPDATE books
        SET words_per_chapter = $2, images_per_chapter = $3, updated_at = NOW()
        WHERE id = $1
    `
	setBookCoverIfAbsentQuery = `
        UPDATE books
        SET cover_url = $2, updated_at = NOW()
        WHERE id = $1 AND cover_url IS NULL
    `
)

// Compile-time check
var _ interfaces.BookRepository = (*pgBookRepository)(nil)

// pgBookRepository реализует интерфейс BookRepository для PostgreSQL.
type pgBookRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgBookRepository создает новый экземпляр репозитория книг.
func NewPgBookRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.BookRepository {
	return &pgBookRepository{
		db:     db,
		logger: logger.Named("PgBookRepo"),
	}
}

// Create создает новую запись книги.
func (r *pgBookRepository) Create(ctx context.Context, querier interfaces.DBTX, book *models.Book) error {
	if book.ID == uuid.Nil {
		book.ID = uuid.New()
	}
	now := time.Now().UTC()
	book.CreatedAt = now
	book.UpdatedAt = now

	logFields := []zap.Field{
		zap.String("bookID", book.ID.String()),
		zap.String("title", book.Title),
	}
	r.logger.Debug("Creating book", logFields...)

	_, err := querier.Exec(ctx, createBookQuery,
		book.ID, book.Title, book.Description, book.CoverURL,
		book.WordsPerChapter, book.ImagesPerChapter, book.CreatedAt, book.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create book", append(logFields, zap.Error(err))...)
		return fmt.Errorf("ошибка создания книги: %w", err)
	}

	r.logger.Info("Book created successfully", logFields...)
	return nil
}

// GetByID возвращает книгу по ее идентификатору.
func (r *pgBookRepository) GetByID(ctx context.Context, querier interfaces.DBTX, id uuid.UUID) (*models.Book, error) {
	log := r.logger.With(zap.String("bookID", id.String()))

	var book models.Book
	err := pgxscan.Get(ctx, querier, &book, getBookByIDQuery, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Warn("Book not found by ID")
			return nil, models.ErrNotFound
		}
		log.Error("Failed to get book by ID", zap.Error(err))
		return nil, fmt.Errorf("failed to get book by ID %s: %w", id, err)
	}

	return &book, nil
}

// UpdateSettings обновляет настройки генерации книги.
func (r *pgBookRepository) UpdateSettings(ctx context.Context, querier interfaces.DBTX, id uuid.UUID, wordsPerChapter, imagesPerChapter int) error {
	logFields := []zap.Field{
		zap.String("bookID", id.String()),
		zap.Int("wordsPerChapter", wordsPerChapter),
		zap.Int("imagesPerChapter", imagesPerChapter),
	}
	r.logger.Debug("Updating book settings", logFields...)

	commandTag, err := querier.Exec(ctx, updateBookSettingsQuery, id, wordsPerChapter, imagesPerChapter)
	if err != nil {
		r.logger.Error("Failed to update book settings", append(logFields, zap.Error(err))...)
		return fmt.Errorf("ошибка обновления настроек книги %s: %w", id, err)
	}
	if commandTag.RowsAffected() == 0 {
		r.logger.Warn("Attempted to update settings for non-existent book", logFields...)
		return models.ErrNotFound
	}

	r.logger.Info("Book settings updated successfully", logFields...)
	return nil
}

// SetCoverIfAbsent устанавливает обложку книги, только если она еще не задана.
// Возвращает true, если обложка была установлена этим вызовом.
func (r *pgBookRepository) SetCoverIfAbsent(ctx context.Context, querier interfaces.DBTX, id uuid.UUID, coverURL string) (bool, error) {
	logFields := []zap.Field{
		zap.String("bookID", id.String()),
		zap.String("coverURL", coverURL),
	}
	r.logger.Debug("Setting book cover if absent", logFields...)

	commandTag, err := querier.Exec(ctx, setBookCoverIfAbsentQuery, id, coverURL)
	if err != nil {
		r.logger.Error("Failed to set book cover", append(logFields, zap.Error(err))...)
		return false, fmt.Errorf("ошибка установки обложки книги %s: %w", id, err)
	}

	if commandTag.RowsAffected() == 0 {
		// Обложка уже установлена либо книга не найдена: в обоих случаях ничего не меняем
		r.logger.Debug("Book cover left unchanged", logFields...)
		return false, nil
	}

	r.logger.Info("Book cover set successfully", logFields...)
	return true, nil
}
