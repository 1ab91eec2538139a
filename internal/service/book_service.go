package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"book-server/internal/interfaces"
	"book-server/internal/markers"
	"book-server/internal/models"
)

// Границы настроек генерации. Нули при создании книги заменяются значениями
// по умолчанию, все остальное обязано попадать в диапазон.
const (
	defaultWordsPerChapter  = 600
	defaultImagesPerChapter = 1

	minWordsPerChapter  = 200
	maxWordsPerChapter  = 1200
	minImagesPerChapter = 1
	maxImagesPerChapter = 3
)

// BookService владеет CRUD-поверхностью книг, персонажей и чтением глав.
//
//go:generate mockery --name BookService --output ../mocks --outpkg mocks --case=underscore
type BookService interface {
	// CreateBook создает книгу. Нулевые настройки генерации заменяются
	// значениями по умолчанию (600 слов, 1 иллюстрация на главу).
	CreateBook(ctx context.Context, title, description string, wordsPerChapter, imagesPerChapter int) (*models.Book, error)

	// GetBook возвращает книгу или models.ErrNotFound.
	GetBook(ctx context.Context, bookID uuid.UUID) (*models.Book, error)

	// UpdateSettings меняет настройки генерации книги. Уже созданные главы
	// не пересчитываются, настройки действуют со следующей генерации.
	UpdateSettings(ctx context.Context, bookID uuid.UUID, wordsPerChapter, imagesPerChapter int) (*models.Book, error)

	// CreateCharacter добавляет персонажа в ростер книги.
	CreateCharacter(ctx context.Context, bookID uuid.UUID, name, description, visualDescription string) (*models.Character, error)

	// ListCharacters возвращает ростер книги в порядке создания.
	ListCharacters(ctx context.Context, bookID uuid.UUID) ([]*models.Character, error)

	// GetRenderedChapter возвращает главу книги по номеру с подставленными
	// URL готовых иллюстраций. Плейсхолдеры неготовых позиций остаются в тексте.
	GetRenderedChapter(ctx context.Context, bookID uuid.UUID, number int) (*models.RenderedChapter, error)

	// GetBookOverview возвращает книгу со сводкой по всем главам и состоянию
	// их иллюстраций.
	GetBookOverview(ctx context.Context, bookID uuid.UUID) (*models.BookOverview, error)
}

// Compile-time check
var _ BookService = (*bookService)(nil)

type bookService struct {
	db            interfaces.DBTX
	bookRepo      interfaces.BookRepository
	characterRepo interfaces.CharacterRepository
	chapterRepo   interfaces.ChapterRepository
	jobRepo       interfaces.IllustrationJobRepository
	logger        *zap.Logger
}

// NewBookService создает сервис книг.
func NewBookService(
	db interfaces.DBTX,
	bookRepo interfaces.BookRepository,
	characterRepo interfaces.CharacterRepository,
	chapterRepo interfaces.ChapterRepository,
	jobRepo interfaces.IllustrationJobRepository,
	logger *zap.Logger,
) BookService {
	return &bookService{
		db:            db,
		bookRepo:      bookRepo,
		characterRepo: characterRepo,
		chapterRepo:   chapterRepo,
		jobRepo:       jobRepo,
		logger:        logger.Named("BookService"),
	}
}

// CreateBook создает книгу с валидацией настроек генерации.
func (s *bookService) CreateBook(ctx context.Context, title, description string, wordsPerChapter, imagesPerChapter int) (*models.Book, error) {
	if title == "" {
		return nil, fmt.Errorf("%w: название книги обязательно", models.ErrInvalidInput)
	}
	if wordsPerChapter == 0 {
		wordsPerChapter = defaultWordsPerChapter
	}
	if imagesPerChapter == 0 {
		imagesPerChapter = defaultImagesPerChapter
	}
	if err := validateSettings(wordsPerChapter, imagesPerChapter); err != nil {
		return nil, err
	}

	book := &models.Book{
		Title:            title,
		Description:      description,
		WordsPerChapter:  wordsPerChapter,
		ImagesPerChapter: imagesPerChapter,
	}
	if err := s.bookRepo.Create(ctx, s.db, book); err != nil {
		return nil, err
	}

	s.logger.Info("Book created",
		zap.String("bookID", book.ID.String()),
		zap.String("title", book.Title),
		zap.Int("wordsPerChapter", book.WordsPerChapter),
		zap.Int("imagesPerChapter", book.ImagesPerChapter))
	return book, nil
}

// GetBook возвращает книгу по идентификатору.
func (s *bookService) GetBook(ctx context.Context, bookID uuid.UUID) (*models.Book, error) {
	return s.bookRepo.GetByID(ctx, s.db, bookID)
}

// UpdateSettings меняет настройки генерации и возвращает обновленную книгу.
func (s *bookService) UpdateSettings(ctx context.Context, bookID uuid.UUID, wordsPerChapter, imagesPerChapter int) (*models.Book, error) {
	if err := validateSettings(wordsPerChapter, imagesPerChapter); err != nil {
		return nil, err
	}

	if err := s.bookRepo.UpdateSettings(ctx, s.db, bookID, wordsPerChapter, imagesPerChapter); err != nil {
		return nil, err
	}

	s.logger.Info("Book settings updated",
		zap.String("bookID", bookID.String()),
		zap.Int("wordsPerChapter", wordsPerChapter),
		zap.Int("imagesPerChapter", imagesPerChapter))
	return s.bookRepo.GetByID(ctx, s.db, bookID)
}

// CreateCharacter добавляет персонажа, предварительно проверив существование книги.
func (s *bookService) CreateCharacter(ctx context.Context, bookID uuid.UUID, name, description, visualDescription string) (*models.Character, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: имя персонажа обязательно", models.ErrInvalidInput)
	}

	if _, err := s.bookRepo.GetByID(ctx, s.db, bookID); err != nil {
		return nil, err
	}

	character := &models.Character{
		BookID:            bookID,
		Name:              name,
		Description:       description,
		VisualDescription: visualDescription,
	}
	if err := s.characterRepo.Create(ctx, s.db, character); err != nil {
		return nil, err
	}

	s.logger.Info("Character created",
		zap.String("bookID", bookID.String()),
		zap.String("characterID", character.ID.String()),
		zap.String("name", character.Name))
	return character, nil
}

// ListCharacters возвращает ростер книги.
func (s *bookService) ListCharacters(ctx context.Context, bookID uuid.UUID) ([]*models.Character, error) {
	if _, err := s.bookRepo.GetByID(ctx, s.db, bookID); err != nil {
		return nil, err
	}
	return s.characterRepo.ListByBook(ctx, s.db, bookID)
}

// GetRenderedChapter собирает главу к показу: готовые иллюстрации
// подставляются в текст, статусы всех позиций отдаются списком.
func (s *bookService) GetRenderedChapter(ctx context.Context, bookID uuid.UUID, number int) (*models.RenderedChapter, error) {
	chapter, err := s.chapterRepo.GetByNumber(ctx, s.db, bookID, number)
	if err != nil {
		return nil, err
	}

	jobs, err := s.jobRepo.ListByChapter(ctx, s.db, chapter.ID)
	if err != nil {
		return nil, err
	}

	images := make(map[int]string, len(jobs))
	illustrations := make([]models.RenderedIllustration, 0, len(jobs))
	for _, job := range jobs {
		item := models.RenderedIllustration{Position: job.Position, Status: job.Status}
		if job.Status == models.IllustrationStatusReady && job.ImageURL != nil {
			images[job.Position] = *job.ImageURL
			item.ImageURL = *job.ImageURL
		}
		illustrations = append(illustrations, item)
	}

	return &models.RenderedChapter{
		Chapter:       *chapter,
		Content:       markers.Render(chapter.Content, images),
		Illustrations: illustrations,
	}, nil
}

// GetBookOverview возвращает книгу и сводку по главам одним батчевым чтением задач.
func (s *bookService) GetBookOverview(ctx context.Context, bookID uuid.UUID) (*models.BookOverview, error) {
	book, err := s.bookRepo.GetByID(ctx, s.db, bookID)
	if err != nil {
		return nil, err
	}

	chapters, err := s.chapterRepo.ListByBook(ctx, s.db, bookID)
	if err != nil {
		return nil, err
	}

	illustrationsByChapter := make(map[uuid.UUID][]models.RenderedIllustration, len(chapters))
	if len(chapters) > 0 {
		chapterIDs := make([]uuid.UUID, 0, len(chapters))
		for _, chapter := range chapters {
			chapterIDs = append(chapterIDs, chapter.ID)
		}

		jobs, err := s.jobRepo.ListByChapters(ctx, s.db, chapterIDs)
		if err != nil {
			return nil, err
		}
		for _, job := range jobs {
			item := models.RenderedIllustration{Position: job.Position, Status: job.Status}
			if job.Status == models.IllustrationStatusReady && job.ImageURL != nil {
				item.ImageURL = *job.ImageURL
			}
			illustrationsByChapter[job.ChapterID] = append(illustrationsByChapter[job.ChapterID], item)
		}
	}

	summaries := make([]models.ChapterSummary, 0, len(chapters))
	for _, chapter := range chapters {
		illustrations := illustrationsByChapter[chapter.ID]
		if illustrations == nil {
			illustrations = []models.RenderedIllustration{}
		}
		summaries = append(summaries, models.ChapterSummary{
			ID:            chapter.ID,
			Number:        chapter.Number,
			Title:         chapter.Title,
			WordCount:     chapter.WordCount,
			CreatedAt:     chapter.CreatedAt,
			Illustrations: illustrations,
		})
	}

	return &models.BookOverview{Book: *book, Chapters: summaries}, nil
}

// validateSettings проверяет попадание настроек генерации в допустимые диапазоны.
func validateSettings(wordsPerChapter, imagesPerChapter int) error {
	if wordsPerChapter < minWordsPerChapter || wordsPerChapter > maxWordsPerChapter {
		return fmt.Errorf("%w: слов на главу должно быть от %d до %d",
			models.ErrInvalidInput, minWordsPerChapter, maxWordsPerChapter)
	}
	if imagesPerChapter < minImagesPerChapter || imagesPerChapter > maxImagesPerChapter {
		return fmt.Errorf("%w: иллюстраций на главу должно быть от %d до %d",
			models.ErrInvalidInput, minImagesPerChapter, maxImagesPerChapter)
	}
	return nil
}
