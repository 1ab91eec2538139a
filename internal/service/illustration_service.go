package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"book-server/internal/imagegen"
	"book-server/internal/interfaces"
	"book-server/internal/markers"
	"book-server/internal/models"
	"book-server/internal/textgen"
)

// maxErrorDetailsRunes ограничивает длину текста причины в колонке error_details.
const maxErrorDetailsRunes = 500

// IllustrationService владеет конечным автоматом задач иллюстраций:
// pending -> generating -> ready | error.
//
//go:generate mockery --name IllustrationService --output ../mocks --outpkg mocks --case=underscore
type IllustrationService interface {
	// CreatePendingJobs создает по одной pending-задаче на маркер в порядке
	// маркеров. Вызывается внутри транзакции вставки главы, поэтому принимает
	// querier. Дубликаты по (chapter_id, position) молча пропускаются.
	CreatePendingJobs(ctx context.Context, querier interfaces.DBTX, chapterID uuid.UUID, found []markers.Marker) ([]*models.IllustrationJob, error)

	// RunJob прогоняет задачу до конечного состояния и возвращает его.
	// Задача в статусе ready возвращается как есть (no-op с сохраненным URL);
	// generating дает ErrJobAlreadyRunning. Исчерпание моделей и неудача
	// загрузки - результат работы автомата: задача возвращается в статусе
	// error с причиной, ошибка вызова при этом nil. Отмена контекста посреди
	// перебора оставляет задачу в generating и возвращает ошибку контекста.
	RunJob(ctx context.Context, jobID uuid.UUID, coverEligible bool) (*models.IllustrationJob, error)

	// MaybeSetCover устанавливает обложку книги, только если она еще не задана.
	// Возвращает true, если обложка была установлена этим вызовом.
	MaybeSetCover(ctx context.Context, bookID uuid.UUID, imageURL string) (bool, error)

	// ListChapterJobs возвращает задачи главы, отсортированные по позиции.
	ListChapterJobs(ctx context.Context, chapterID uuid.UUID) ([]*models.IllustrationJob, error)
}

// Compile-time check
var _ IllustrationService = (*illustrationService)(nil)

type illustrationService struct {
	db          interfaces.DBTX
	jobRepo     interfaces.IllustrationJobRepository
	chapterRepo interfaces.ChapterRepository
	bookRepo    interfaces.BookRepository
	translator  textgen.Translator
	resolver    interfaces.ReferenceResolver
	generator   imagegen.Generator
	blobs       interfaces.BlobPublisher
	logger      *zap.Logger
}

// NewIllustrationService создает сервис задач иллюстраций.
func NewIllustrationService(
	db interfaces.DBTX,
	jobRepo interfaces.IllustrationJobRepository,
	chapterRepo interfaces.ChapterRepository,
	bookRepo interfaces.BookRepository,
	translator textgen.Translator,
	resolver interfaces.ReferenceResolver,
	generator imagegen.Generator,
	blobs interfaces.BlobPublisher,
	logger *zap.Logger,
) IllustrationService {
	return &illustrationService{
		db:          db,
		jobRepo:     jobRepo,
		chapterRepo: chapterRepo,
		bookRepo:    bookRepo,
		translator:  translator,
		resolver:    resolver,
		generator:   generator,
		blobs:       blobs,
		logger:      logger.Named("IllustrationService"),
	}
}

// CreatePendingJobs создает pending-задачи для найденных маркеров.
func (s *illustrationService) CreatePendingJobs(ctx context.Context, querier interfaces.DBTX, chapterID uuid.UUID, found []markers.Marker) ([]*models.IllustrationJob, error) {
	if len(found) == 0 {
		return []*models.IllustrationJob{}, nil
	}

	jobs := make([]*models.IllustrationJob, 0, len(found))
	for _, m := range found {
		jobs = append(jobs, &models.IllustrationJob{
			ChapterID:    chapterID,
			Position:     m.Position,
			TextPosition: m.TextPosition,
			Prompt:       m.Prompt,
			Status:       models.IllustrationStatusPending,
		})
	}

	return s.jobRepo.CreateBatch(ctx, querier, jobs)
}

// RunJob выполняет одну задачу иллюстрации до конечного состояния.
func (s *illustrationService) RunJob(ctx context.Context, jobID uuid.UUID, coverEligible bool) (*models.IllustrationJob, error) {
	log := s.logger.With(zap.String("jobID", jobID.String()))

	job, err := s.jobRepo.GetByID(ctx, s.db, jobID)
	if err != nil {
		return nil, err
	}
	log = log.With(
		zap.String("chapterID", job.ChapterID.String()),
		zap.Int("position", job.Position))

	switch job.Status {
	case models.IllustrationStatusReady:
		// Повторный запуск готовой задачи - no-op с сохраненным URL
		log.Debug("Job already ready, returning stored URL")
		return job, nil
	case models.IllustrationStatusGenerating:
		log.Warn("Job is already running")
		return nil, models.ErrJobAlreadyRunning
	}

	if err := s.jobRepo.UpdateStatus(ctx, s.db, job.ID, models.IllustrationStatusGenerating, nil, nil); err != nil {
		return nil, err
	}
	job.Status = models.IllustrationStatusGenerating
	job.ImageURL = nil
	job.ErrorDetails = nil
	log.Info("Illustration job started", zap.Bool("coverEligible", coverEligible))

	chapter, err := s.chapterRepo.GetByID(ctx, s.db, job.ChapterID)
	if err != nil {
		return s.failJob(ctx, log, job, err)
	}

	references, err := s.resolver.ResolveForBook(ctx, chapter.BookID)
	if err != nil {
		return s.failJob(ctx, log, job, err)
	}

	// Описание сцены приходит на языке повествования, моделям изображений
	// проще с английским. Неудача перевода не блокирует: вернется исходный текст.
	scenePrompt := s.translator.TranslateToEnglish(ctx, job.Prompt)

	image, err := s.generator.Generate(ctx, scenePrompt, references)
	if err != nil {
		return s.failJob(ctx, log, job, err)
	}

	imageURL, err := s.blobs.Publish(ctx, image.Data, image.MimeType, job.ID.String())
	if err != nil {
		return s.failJob(ctx, log, job, err)
	}

	if err := s.jobRepo.UpdateStatus(ctx, s.db, job.ID, models.IllustrationStatusReady, &imageURL, nil); err != nil {
		return nil, err
	}
	job.Status = models.IllustrationStatusReady
	job.ImageURL = &imageURL
	job.ErrorDetails = nil

	log.Info("Illustration job completed",
		zap.String("model", image.Model),
		zap.String("imageURL", imageURL))

	if coverEligible && job.Position == 0 {
		if _, err := s.MaybeSetCover(ctx, chapter.BookID, imageURL); err != nil {
			// Обложка вторична: ее неудача не отменяет успех задачи
			log.Error("Failed to reconcile book cover", zap.Error(err))
		}
	}

	return job, nil
}

// MaybeSetCover устанавливает обложку книги условной записью cover_url IS NULL.
func (s *illustrationService) MaybeSetCover(ctx context.Context, bookID uuid.UUID, imageURL string) (bool, error) {
	set, err := s.bookRepo.SetCoverIfAbsent(ctx, s.db, bookID, imageURL)
	if err != nil {
		return false, err
	}
	if set {
		s.logger.Info("Book cover set from first illustration",
			zap.String("bookID", bookID.String()),
			zap.String("coverURL", imageURL))
	}
	return set, nil
}

// ListChapterJobs возвращает задачи главы по позициям.
func (s *illustrationService) ListChapterJobs(ctx context.Context, chapterID uuid.UUID) ([]*models.IllustrationJob, error) {
	return s.jobRepo.ListByChapter(ctx, s.db, chapterID)
}

// failJob переводит задачу в статус error с текстом причины и возвращает ее
// конечное состояние с nil-ошибкой: неудача генерации - результат работы
// автомата, а не отказ вызова. Отмена контекста - исключение: статус
// generating сохраняется, задача дорабатывается повторным запуском или
// сбросом зависших при старте воркера.
func (s *illustrationService) failJob(ctx context.Context, log *zap.Logger, job *models.IllustrationJob, cause error) (*models.IllustrationJob, error) {
	if ctx.Err() != nil {
		log.Warn("Job run cancelled, leaving status generating", zap.Error(cause))
		return nil, cause
	}

	log.Error("Illustration job failed", zap.Error(cause))

	details := truncateRunes(cause.Error(), maxErrorDetailsRunes)
	if err := s.jobRepo.UpdateStatus(ctx, s.db, job.ID, models.IllustrationStatusError, nil, &details); err != nil {
		return nil, fmt.Errorf("ошибка записи статуса error задачи %s: %w", job.ID, err)
	}

	job.Status = models.IllustrationStatusError
	job.ImageURL = nil
	job.ErrorDetails = &details
	return job, nil
}

// truncateRunes усекает строку до max рун, добавляя многоточие.
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
