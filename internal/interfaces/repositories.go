package interfaces

import (
	"context"
	"time"

	"github.com/google/uuid"

	"book-server/internal/models"
)

// BookRepository defines the interface for book persistence.
//
//go:generate mockery --name BookRepository --output ../mocks --outpkg mocks --case=underscore
type BookRepository interface {
	// Create inserts a new book and fills generated fields (id, timestamps).
	Create(ctx context.Context, querier DBTX, book *models.Book) error

	// GetByID returns the book or models.ErrNotFound.
	GetByID(ctx context.Context, querier DBTX, id uuid.UUID) (*models.Book, error)

	// UpdateSettings overwrites the per-book generation settings.
	UpdateSettings(ctx context.Context, querier DBTX, id uuid.UUID, wordsPerChapter, imagesPerChapter int) error

	// SetCoverIfAbsent sets the cover URL only when it is currently NULL.
	// Returns true when the cover was set by this call.
	SetCoverIfAbsent(ctx context.Context, querier DBTX, id uuid.UUID, coverURL string) (bool, error)
}

// CharacterRepository defines the interface for character persistence,
// including the stored reference portrait.
//
//go:generate mockery --name CharacterRepository --output ../mocks --outpkg mocks --case=underscore
type CharacterRepository interface {
	// Create inserts a new character.
	Create(ctx context.Context, querier DBTX, character *models.Character) error

	// GetByID returns the character (with reference bytes) or models.ErrNotFound.
	GetByID(ctx context.Context, querier DBTX, id uuid.UUID) (*models.Character, error)

	// ListByBook returns the book's roster ordered by creation time.
	// Reference bytes are included so callers can build image requests.
	ListByBook(ctx context.Context, querier DBTX, bookID uuid.UUID) ([]*models.Character, error)

	// SaveReference overwrites the character's reference portrait
	// (bytes, prompt, published URL, timestamp) and raises has_reference.
	SaveReference(ctx context.Context, querier DBTX, id uuid.UUID, image []byte, prompt, publishedURL string, createdAt time.Time) error
}

// ChapterRepository defines the interface for chapter persistence.
// Chapter content is immutable after Create.
//
//go:generate mockery --name ChapterRepository --output ../mocks --outpkg mocks --case=underscore
type ChapterRepository interface {
	// Create inserts a chapter with the next free number for its book.
	Create(ctx context.Context, querier DBTX, chapter *models.Chapter) error

	// GetByID returns the chapter or models.ErrNotFound.
	GetByID(ctx context.Context, querier DBTX, id uuid.UUID) (*models.Chapter, error)

	// GetByNumber returns a book's chapter by its number or models.ErrNotFound.
	GetByNumber(ctx context.Context, querier DBTX, bookID uuid.UUID, number int) (*models.Chapter, error)

	// NextNumber returns max(number)+1 for the book (1 when the book has no chapters).
	NextNumber(ctx context.Context, querier DBTX, bookID uuid.UUID) (int, error)

	// ListRecent returns up to limit most recent chapters of the book, newest first.
	ListRecent(ctx context.Context, querier DBTX, bookID uuid.UUID, limit int) ([]*models.Chapter, error)

	// ListByBook returns all chapters of the book ordered by number.
	ListByBook(ctx context.Context, querier DBTX, bookID uuid.UUID) ([]*models.Chapter, error)
}

// IllustrationJobRepository defines the interface for illustration job persistence.
// Status/URL writes are last-writer-wins: plain UPDATE by id, no optimistic locking.
//
//go:generate mockery --name IllustrationJobRepository --output ../mocks --outpkg mocks --case=underscore
type IllustrationJobRepository interface {
	// CreateBatch inserts one pending job per marker in marker order.
	// Rows violating UNIQUE(chapter_id, position) are skipped, not errors;
	// the returned slice holds the rows actually inserted.
	CreateBatch(ctx context.Context, querier DBTX, jobs []*models.IllustrationJob) ([]*models.IllustrationJob, error)

	// GetByID returns the job or models.ErrNotFound.
	GetByID(ctx context.Context, querier DBTX, id uuid.UUID) (*models.IllustrationJob, error)

	// ListByChapter returns the chapter's jobs ordered by position.
	ListByChapter(ctx context.Context, querier DBTX, chapterID uuid.UUID) ([]*models.IllustrationJob, error)

	// ListByChapters returns jobs of all given chapters ordered by chapter and position.
	ListByChapters(ctx context.Context, querier DBTX, chapterIDs []uuid.UUID) ([]*models.IllustrationJob, error)

	// UpdateStatus sets the status and clears/sets url+error details accordingly.
	// Returns models.ErrNotFound when the job does not exist.
	UpdateStatus(ctx context.Context, querier DBTX, id uuid.UUID, status models.IllustrationStatus, imageURL, errorDetails *string) error

	// FindStaleGenerating resets jobs stuck in generating longer than threshold
	// back to pending and returns their ids (crash recovery sweep).
	FindStaleGenerating(ctx context.Context, querier DBTX, threshold time.Duration) ([]uuid.UUID, error)
}
