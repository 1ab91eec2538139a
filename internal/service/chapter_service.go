package service

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"book-server/internal/config"
	"book-server/internal/interfaces"
	"book-server/internal/markers"
	"book-server/internal/messaging"
	"book-server/internal/models"
	"book-server/internal/textgen"
)

const (
	// recentChaptersWindow - сколько последних глав загружается в контекст
	// промта. Окно дополнительно ограничивается бюджетом токенов в PromptBuilder.
	recentChaptersWindow = 5

	// guardReleaseTimeout - сколько ждем освобождения блокировки генерации
	// при завершении, в том числе после отмены исходного контекста.
	guardReleaseTimeout = 5 * time.Second
)

// ChapterGenerationResult - результат генерации главы: сама глава, созданные
// pending-задачи иллюстраций и признак, что первая иллюстрация этой главы
// может стать обложкой книги.
type ChapterGenerationResult struct {
	Chapter       *models.Chapter           `json:"chapter"`
	Jobs          []*models.IllustrationJob `json:"jobs"`
	CoverEligible bool                      `json:"cover_eligible"`
}

// ChapterService генерирует очередную главу книги вместе с задачами иллюстраций.
//
//go:generate mockery --name ChapterService --output ../mocks --outpkg mocks --case=underscore
type ChapterService interface {
	// GenerateChapter выполняет полный цикл: генерация текста, разбор маркеров,
	// сохранение главы и pending-задач одной транзакцией, публикация задач
	// в очередь. Неудача генерации текста прерывает операцию до любой записи.
	GenerateChapter(ctx context.Context, bookID uuid.UUID, hint string) (*ChapterGenerationResult, error)
}

// Compile-time check
var _ ChapterService = (*chapterService)(nil)

type chapterService struct {
	db            interfaces.DBTX
	tx            interfaces.TxManager
	bookRepo      interfaces.BookRepository
	characterRepo interfaces.CharacterRepository
	chapterRepo   interfaces.ChapterRepository
	illustrations IllustrationService
	aiClient      textgen.AIClient
	prompts       *textgen.PromptBuilder
	guard         interfaces.GenerationGuard
	tasks         messaging.TaskPublisher
	aiCfg         config.AIConfig
	logger        *zap.Logger
}

// NewChapterService создает сервис генерации глав.
func NewChapterService(
	db interfaces.DBTX,
	tx interfaces.TxManager,
	bookRepo interfaces.BookRepository,
	characterRepo interfaces.CharacterRepository,
	chapterRepo interfaces.ChapterRepository,
	illustrations IllustrationService,
	aiClient textgen.AIClient,
	prompts *textgen.PromptBuilder,
	guard interfaces.GenerationGuard,
	tasks messaging.TaskPublisher,
	aiCfg config.AIConfig,
	logger *zap.Logger,
) ChapterService {
	return &chapterService{
		db:            db,
		tx:            tx,
		bookRepo:      bookRepo,
		characterRepo: characterRepo,
		chapterRepo:   chapterRepo,
		illustrations: illustrations,
		aiClient:      aiClient,
		prompts:       prompts,
		guard:         guard,
		tasks:         tasks,
		aiCfg:         aiCfg,
		logger:        logger.Named("ChapterService"),
	}
}

// GenerateChapter генерирует следующую главу книги.
func (s *chapterService) GenerateChapter(ctx context.Context, bookID uuid.UUID, hint string) (*ChapterGenerationResult, error) {
	log := s.logger.With(zap.String("bookID", bookID.String()))

	if err := s.guard.Acquire(ctx, bookID); err != nil {
		return nil, err
	}
	defer func() {
		// Блокировку снимаем на отдельном контексте: отмена исходного не должна
		// оставлять книгу заблокированной до истечения TTL
		releaseCtx, cancel := context.WithTimeout(context.Background(), guardReleaseTimeout)
		defer cancel()
		if err := s.guard.Release(releaseCtx, bookID); err != nil {
			log.Warn("Failed to release generation lock", zap.Error(err))
		}
	}()

	book, err := s.bookRepo.GetByID(ctx, s.db, bookID)
	if err != nil {
		return nil, err
	}

	characters, err := s.characterRepo.ListByBook(ctx, s.db, bookID)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки персонажей книги %s: %w", bookID, err)
	}

	recent, err := s.chapterRepo.ListRecent(ctx, s.db, bookID, recentChaptersWindow)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки последних глав книги %s: %w", bookID, err)
	}

	// Право первой иллюстрации стать обложкой фиксируется до генерации:
	// иллюстрация поздней главы не должна перезаписать обложку, появившуюся
	// пока пайплайн работал.
	coverEligible := book.CoverURL == nil

	systemPrompt := s.prompts.BuildSystemPrompt(book.ImagesPerChapter)
	userPrompt := s.prompts.BuildUserPrompt(textgen.ChapterPromptInput{
		Book:           book,
		Characters:     characters,
		RecentChapters: recent,
		Hint:           hint,
	})

	rawText, usage, err := s.generateText(ctx, log, systemPrompt, userPrompt)
	if err != nil {
		// Текст не получен: в БД ничего не пишем
		return nil, err
	}

	normalized, found := markers.Parse(rawText)
	log.Info("Chapter text generated",
		zap.Int("raw_length", len(rawText)),
		zap.Int("markers", len(found)),
		zap.Int("total_tokens", usage.TotalTokens),
		zap.Float64("estimated_cost_usd", usage.EstimatedCostUSD))

	if len(found) != book.ImagesPerChapter {
		// Выход генератора не доверенный: количество задач следует за фактом
		log.Warn("Marker count differs from requested",
			zap.Int("found", len(found)),
			zap.Int("requested", book.ImagesPerChapter))
	}

	var (
		chapter *models.Chapter
		jobs    []*models.IllustrationJob
	)
	err = s.tx.WithTransaction(ctx, func(ctx context.Context, tx interfaces.DBTX) error {
		number, txErr := s.chapterRepo.NextNumber(ctx, tx, bookID)
		if txErr != nil {
			return txErr
		}

		chapter = &models.Chapter{
			BookID:    bookID,
			Number:    number,
			Title:     textgen.ChapterTitle(number),
			Content:   normalized,
			WordCount: textgen.CountWords(normalized),
		}
		if txErr := s.chapterRepo.Create(ctx, tx, chapter); txErr != nil {
			return txErr
		}

		jobs, txErr = s.illustrations.CreatePendingJobs(ctx, tx, chapter.ID, found)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	s.publishIllustrationTasks(ctx, log, bookID, chapter.ID, jobs, coverEligible)

	log.Info("Chapter generated",
		zap.String("chapterID", chapter.ID.String()),
		zap.Int("number", chapter.Number),
		zap.Int("wordCount", chapter.WordCount),
		zap.Int("jobs", len(jobs)),
		zap.Bool("coverEligible", coverEligible))

	return &ChapterGenerationResult{
		Chapter:       chapter,
		Jobs:          jobs,
		CoverEligible: coverEligible,
	}, nil
}

// generateText вызывает текстовый провайдер с повторами и экспоненциальной
// задержкой. Каждая попытка ограничена своим таймаутом; отмена исходного
// контекста прекращает повторы.
func (s *chapterService) generateText(ctx context.Context, log *zap.Logger, systemPrompt, userPrompt string) (string, textgen.UsageInfo, error) {
	params := textgen.GenerationParams{
		Temperature: models.Float64Ptr(float64(s.aiCfg.Temperature)),
		MaxTokens:   models.IntPtr(s.aiCfg.MaxTokens),
	}

	attempts := s.aiCfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, s.aiCfg.Timeout)
		text, usage, err := s.aiClient.GenerateText(attemptCtx, systemPrompt, userPrompt, params)
		cancel()
		if err == nil {
			return text, usage, nil
		}

		lastErr = err
		log.Warn("Text generation attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Error(err))

		if ctx.Err() != nil {
			return "", textgen.UsageInfo{}, ctx.Err()
		}
		if attempt == attempts {
			break
		}

		delay := float64(s.aiCfg.BaseRetryDelay) * math.Pow(2, float64(attempt-1))
		jitter := delay * 0.1
		delay += jitter * (rand.Float64()*2 - 1)
		wait := time.Duration(delay)
		if wait < s.aiCfg.BaseRetryDelay {
			wait = s.aiCfg.BaseRetryDelay
		}

		select {
		case <-ctx.Done():
			return "", textgen.UsageInfo{}, ctx.Err()
		case <-time.After(wait):
		}
	}

	return "", textgen.UsageInfo{}, lastErr
}

// publishIllustrationTasks отправляет в очередь по одному сообщению на каждую
// созданную задачу. Отправка best-effort: неудача логируется, задача остается
// pending и запускается вручную через эндпоинт запуска.
func (s *chapterService) publishIllustrationTasks(ctx context.Context, log *zap.Logger, bookID, chapterID uuid.UUID, jobs []*models.IllustrationJob, coverEligible bool) {
	for _, job := range jobs {
		payload := messaging.IllustrationTaskPayload{
			TaskID:        uuid.New().String(),
			JobID:         job.ID,
			ChapterID:     chapterID,
			BookID:        bookID,
			Position:      job.Position,
			Prompt:        job.Prompt,
			CoverEligible: coverEligible && job.Position == 0,
		}
		if err := s.tasks.PublishIllustrationTask(ctx, payload); err != nil {
			log.Error("Failed to publish illustration task, job stays pending",
				zap.String("jobID", job.ID.String()),
				zap.Int("position", job.Position),
				zap.Error(err))
		}
	}
}
