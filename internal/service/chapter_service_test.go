package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"book-server/internal/config"
	"book-server/internal/interfaces"
	"book-server/internal/markers"
	"book-server/internal/messaging"
	"book-server/internal/mocks"
	"book-server/internal/models"
	"book-server/internal/service"
	"book-server/internal/textgen"
)

type chapterMocks struct {
	tx            *mocks.MockTxManager
	bookRepo      *mocks.MockBookRepository
	characterRepo *mocks.MockCharacterRepository
	chapterRepo   *mocks.MockChapterRepository
	illustrations *mocks.MockIllustrationService
	aiClient      *mocks.MockAIClient
	guard         *mocks.MockGenerationGuard
	tasks         *mocks.MockTaskPublisher
}

func newChapterService(t *testing.T) (service.ChapterService, *chapterMocks) {
	t.Helper()
	m := &chapterMocks{
		tx:            mocks.NewMockTxManager(t),
		bookRepo:      mocks.NewMockBookRepository(t),
		characterRepo: mocks.NewMockCharacterRepository(t),
		chapterRepo:   mocks.NewMockChapterRepository(t),
		illustrations: mocks.NewMockIllustrationService(t),
		aiClient:      mocks.NewMockAIClient(t),
		guard:         mocks.NewMockGenerationGuard(t),
		tasks:         mocks.NewMockTaskPublisher(t),
	}
	cfg := config.AIConfig{
		Model:          "gpt-4o",
		Timeout:        time.Second,
		MaxAttempts:    2,
		BaseRetryDelay: time.Millisecond,
		Temperature:    0.8,
		MaxTokens:      4096,
	}
	svc := service.NewChapterService(
		nil, m.tx, m.bookRepo, m.characterRepo, m.chapterRepo, m.illustrations,
		m.aiClient, textgen.NewPromptBuilder("gpt-4o", zap.NewNop()),
		m.guard, m.tasks, cfg, zap.NewNop())
	return svc, m
}

func (m *chapterMocks) assertExpectations(t *testing.T) {
	t.Helper()
	m.tx.AssertExpectations(t)
	m.bookRepo.AssertExpectations(t)
	m.characterRepo.AssertExpectations(t)
	m.chapterRepo.AssertExpectations(t)
	m.illustrations.AssertExpectations(t)
	m.aiClient.AssertExpectations(t)
	m.guard.AssertExpectations(t)
	m.tasks.AssertExpectations(t)
}

// runTransaction заставляет мок менеджера транзакций выполнить callback
// и вернуть его ошибку, как это делает настоящая реализация.
func runTransaction(m *chapterMocks, ctx context.Context) {
	m.tx.On("WithTransaction", ctx, mock.Anything).
		Return(func(ctx context.Context, fn func(context.Context, interfaces.DBTX) error) error {
			return fn(ctx, nil)
		}).Once()
}

func testBook(bookID uuid.UUID) *models.Book {
	return &models.Book{
		ID:               bookID,
		Title:            "Хроники долины",
		Description:      "Сказка про девочку и ее дракона",
		WordsPerChapter:  600,
		ImagesPerChapter: 2,
	}
}

const generatedChapterText = "Утро в долине выдалось тихим, и Мира первой спустилась к ручью. " +
	"[MARKER: Девочка с рыжими косичками стоит у горного ручья на рассвете] " +
	"К полудню дракон наконец проснулся и потребовал завтрак. " +
	"[MARKER: Сонный дракон вылезает из пещеры, щурясь на солнце] " +
	"До самого вечера они собирали ягоды на склоне."

func TestChapterService_GenerateChapter(t *testing.T) {
	ctx := context.Background()

	t.Run("generates chapter with pending jobs and publishes tasks", func(t *testing.T) {
		svc, m := newChapterService(t)
		bookID := uuid.New()
		book := testBook(bookID)
		chapterID := uuid.New()
		usage := textgen.UsageInfo{PromptTokens: 1200, CompletionTokens: 800, TotalTokens: 2000, EstimatedCostUSD: 0.00044}

		m.guard.On("Acquire", ctx, bookID).Return(nil).Once()
		m.guard.On("Release", mock.Anything, bookID).Return(nil).Once()
		m.bookRepo.On("GetByID", ctx, mock.Anything, bookID).Return(book, nil).Once()
		m.characterRepo.On("ListByBook", ctx, mock.Anything, bookID).
			Return([]*models.Character{{Name: "Мира", Description: "Девочка"}}, nil).Once()
		m.chapterRepo.On("ListRecent", ctx, mock.Anything, bookID, 5).
			Return([]*models.Chapter{}, nil).Once()
		m.aiClient.On("GenerateText", mock.Anything, mock.Anything,
			mock.MatchedBy(func(userPrompt string) bool {
				return strings.Contains(userPrompt, "Хроники долины") &&
					strings.Contains(userPrompt, "встреча с речным троллем")
			}), mock.Anything).Return(generatedChapterText, usage, nil).Once()

		runTransaction(m, ctx)
		m.chapterRepo.On("NextNumber", ctx, mock.Anything, bookID).Return(4, nil).Once()
		m.chapterRepo.On("Create", ctx, mock.Anything, mock.MatchedBy(func(c *models.Chapter) bool {
			return c.BookID == bookID && c.Number == 4 && c.Title == "Глава 4" &&
				!strings.Contains(c.Content, "[MARKER:") &&
				strings.Contains(c.Content, "[IMG:0]") &&
				strings.Contains(c.Content, "[IMG:1]") &&
				c.WordCount > 0
		})).Run(func(args mock.Arguments) {
			args.Get(2).(*models.Chapter).ID = chapterID
		}).Return(nil).Once()

		jobs := []*models.IllustrationJob{
			{ID: uuid.New(), ChapterID: chapterID, Position: 0, Prompt: "Девочка с рыжими косичками стоит у горного ручья на рассвете", Status: models.IllustrationStatusPending},
			{ID: uuid.New(), ChapterID: chapterID, Position: 1, Prompt: "Сонный дракон вылезает из пещеры, щурясь на солнце", Status: models.IllustrationStatusPending},
		}
		m.illustrations.On("CreatePendingJobs", ctx, mock.Anything, chapterID,
			mock.MatchedBy(func(found []markers.Marker) bool {
				return len(found) == 2 &&
					found[0].Position == 0 && found[1].Position == 1 &&
					found[0].Prompt == jobs[0].Prompt
			})).Return(jobs, nil).Once()

		// Первая позиция помечается кандидатом в обложки, остальные нет
		m.tasks.On("PublishIllustrationTask", ctx, mock.MatchedBy(func(p messaging.IllustrationTaskPayload) bool {
			return p.JobID == jobs[0].ID && p.Position == 0 && p.CoverEligible &&
				p.BookID == bookID && p.ChapterID == chapterID && p.TaskID != ""
		})).Return(nil).Once()
		m.tasks.On("PublishIllustrationTask", ctx, mock.MatchedBy(func(p messaging.IllustrationTaskPayload) bool {
			return p.JobID == jobs[1].ID && p.Position == 1 && !p.CoverEligible
		})).Return(nil).Once()

		result, err := svc.GenerateChapter(ctx, bookID, "встреча с речным троллем")

		require.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, 4, result.Chapter.Number)
		assert.True(t, result.CoverEligible)
		assert.Len(t, result.Jobs, 2)
		m.assertExpectations(t)
	})

	t.Run("second generation for the same book is rejected", func(t *testing.T) {
		svc, m := newChapterService(t)
		bookID := uuid.New()
		m.guard.On("Acquire", ctx, bookID).Return(models.ErrBookHasActiveGeneration).Once()

		result, err := svc.GenerateChapter(ctx, bookID, "")

		require.ErrorIs(t, err, models.ErrBookHasActiveGeneration)
		assert.Nil(t, result)
		m.guard.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
		m.bookRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
		m.assertExpectations(t)
	})

	t.Run("text failure aborts before any persistence", func(t *testing.T) {
		svc, m := newChapterService(t)
		bookID := uuid.New()
		m.guard.On("Acquire", ctx, bookID).Return(nil).Once()
		m.guard.On("Release", mock.Anything, bookID).Return(nil).Once()
		m.bookRepo.On("GetByID", ctx, mock.Anything, bookID).Return(testBook(bookID), nil).Once()
		m.characterRepo.On("ListByBook", ctx, mock.Anything, bookID).
			Return([]*models.Character{}, nil).Once()
		m.chapterRepo.On("ListRecent", ctx, mock.Anything, bookID, 5).
			Return([]*models.Chapter{}, nil).Once()
		// Обе попытки исчерпаны
		m.aiClient.On("GenerateText", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return("", textgen.UsageInfo{}, models.ErrTextGenerationFailed).Twice()

		result, err := svc.GenerateChapter(ctx, bookID, "")

		require.ErrorIs(t, err, models.ErrTextGenerationFailed)
		assert.Nil(t, result)
		m.tx.AssertNotCalled(t, "WithTransaction", mock.Anything, mock.Anything)
		m.chapterRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
		m.tasks.AssertNotCalled(t, "PublishIllustrationTask", mock.Anything, mock.Anything)
		m.assertExpectations(t)
	})

	t.Run("transient text failure is retried", func(t *testing.T) {
		svc, m := newChapterService(t)
		bookID := uuid.New()
		book := testBook(bookID)
		book.ImagesPerChapter = 2
		chapterID := uuid.New()

		m.guard.On("Acquire", ctx, bookID).Return(nil).Once()
		m.guard.On("Release", mock.Anything, bookID).Return(nil).Once()
		m.bookRepo.On("GetByID", ctx, mock.Anything, bookID).Return(book, nil).Once()
		m.characterRepo.On("ListByBook", ctx, mock.Anything, bookID).
			Return([]*models.Character{}, nil).Once()
		m.chapterRepo.On("ListRecent", ctx, mock.Anything, bookID, 5).
			Return([]*models.Chapter{}, nil).Once()
		m.aiClient.On("GenerateText", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return("", textgen.UsageInfo{}, models.ErrTextGenerationFailed).Once()
		m.aiClient.On("GenerateText", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(generatedChapterText, textgen.UsageInfo{TotalTokens: 2000}, nil).Once()

		runTransaction(m, ctx)
		m.chapterRepo.On("NextNumber", ctx, mock.Anything, bookID).Return(1, nil).Once()
		m.chapterRepo.On("Create", ctx, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				args.Get(2).(*models.Chapter).ID = chapterID
			}).Return(nil).Once()
		m.illustrations.On("CreatePendingJobs", ctx, mock.Anything, chapterID, mock.Anything).
			Return([]*models.IllustrationJob{}, nil).Once()

		result, err := svc.GenerateChapter(ctx, bookID, "")

		require.NoError(t, err)
		assert.Equal(t, 1, result.Chapter.Number)
		m.assertExpectations(t)
	})

	t.Run("existing cover disables cover eligibility", func(t *testing.T) {
		svc, m := newChapterService(t)
		bookID := uuid.New()
		book := testBook(bookID)
		cover := "http://localhost:8080/static/images/cover.png"
		book.CoverURL = &cover
		chapterID := uuid.New()

		m.guard.On("Acquire", ctx, bookID).Return(nil).Once()
		m.guard.On("Release", mock.Anything, bookID).Return(nil).Once()
		m.bookRepo.On("GetByID", ctx, mock.Anything, bookID).Return(book, nil).Once()
		m.characterRepo.On("ListByBook", ctx, mock.Anything, bookID).
			Return([]*models.Character{}, nil).Once()
		m.chapterRepo.On("ListRecent", ctx, mock.Anything, bookID, 5).
			Return([]*models.Chapter{}, nil).Once()
		m.aiClient.On("GenerateText", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(generatedChapterText, textgen.UsageInfo{}, nil).Once()

		runTransaction(m, ctx)
		m.chapterRepo.On("NextNumber", ctx, mock.Anything, bookID).Return(7, nil).Once()
		m.chapterRepo.On("Create", ctx, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				args.Get(2).(*models.Chapter).ID = chapterID
			}).Return(nil).Once()
		jobs := []*models.IllustrationJob{
			{ID: uuid.New(), ChapterID: chapterID, Position: 0, Status: models.IllustrationStatusPending},
		}
		m.illustrations.On("CreatePendingJobs", ctx, mock.Anything, chapterID, mock.Anything).
			Return(jobs, nil).Once()
		m.tasks.On("PublishIllustrationTask", ctx, mock.MatchedBy(func(p messaging.IllustrationTaskPayload) bool {
			return p.Position == 0 && !p.CoverEligible
		})).Return(nil).Once()

		result, err := svc.GenerateChapter(ctx, bookID, "")

		require.NoError(t, err)
		assert.False(t, result.CoverEligible)
		m.assertExpectations(t)
	})

	t.Run("publish failure keeps the chapter and pending jobs", func(t *testing.T) {
		svc, m := newChapterService(t)
		bookID := uuid.New()
		chapterID := uuid.New()

		m.guard.On("Acquire", ctx, bookID).Return(nil).Once()
		m.guard.On("Release", mock.Anything, bookID).Return(nil).Once()
		m.bookRepo.On("GetByID", ctx, mock.Anything, bookID).Return(testBook(bookID), nil).Once()
		m.characterRepo.On("ListByBook", ctx, mock.Anything, bookID).
			Return([]*models.Character{}, nil).Once()
		m.chapterRepo.On("ListRecent", ctx, mock.Anything, bookID, 5).
			Return([]*models.Chapter{}, nil).Once()
		m.aiClient.On("GenerateText", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(generatedChapterText, textgen.UsageInfo{}, nil).Once()

		runTransaction(m, ctx)
		m.chapterRepo.On("NextNumber", ctx, mock.Anything, bookID).Return(1, nil).Once()
		m.chapterRepo.On("Create", ctx, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				args.Get(2).(*models.Chapter).ID = chapterID
			}).Return(nil).Once()
		jobs := []*models.IllustrationJob{
			{ID: uuid.New(), ChapterID: chapterID, Position: 0, Status: models.IllustrationStatusPending},
			{ID: uuid.New(), ChapterID: chapterID, Position: 1, Status: models.IllustrationStatusPending},
		}
		m.illustrations.On("CreatePendingJobs", ctx, mock.Anything, chapterID, mock.Anything).
			Return(jobs, nil).Once()
		// Брокер недоступен: глава уже в БД, задачи остаются pending
		m.tasks.On("PublishIllustrationTask", ctx, mock.Anything).
			Return(assert.AnError).Twice()

		result, err := svc.GenerateChapter(ctx, bookID, "")

		require.NoError(t, err)
		assert.Len(t, result.Jobs, 2)
		m.assertExpectations(t)
	})

	t.Run("transaction failure surfaces and skips publishing", func(t *testing.T) {
		svc, m := newChapterService(t)
		bookID := uuid.New()
		chapterID := uuid.New()

		m.guard.On("Acquire", ctx, bookID).Return(nil).Once()
		m.guard.On("Release", mock.Anything, bookID).Return(nil).Once()
		m.bookRepo.On("GetByID", ctx, mock.Anything, bookID).Return(testBook(bookID), nil).Once()
		m.characterRepo.On("ListByBook", ctx, mock.Anything, bookID).
			Return([]*models.Character{}, nil).Once()
		m.chapterRepo.On("ListRecent", ctx, mock.Anything, bookID, 5).
			Return([]*models.Chapter{}, nil).Once()
		m.aiClient.On("GenerateText", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(generatedChapterText, textgen.UsageInfo{}, nil).Once()

		runTransaction(m, ctx)
		m.chapterRepo.On("NextNumber", ctx, mock.Anything, bookID).Return(2, nil).Once()
		m.chapterRepo.On("Create", ctx, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				args.Get(2).(*models.Chapter).ID = chapterID
			}).Return(nil).Once()
		m.illustrations.On("CreatePendingJobs", ctx, mock.Anything, chapterID, mock.Anything).
			Return(nil, assert.AnError).Once()

		result, err := svc.GenerateChapter(ctx, bookID, "")

		require.Error(t, err)
		assert.Nil(t, result)
		m.tasks.AssertNotCalled(t, "PublishIllustrationTask", mock.Anything, mock.Anything)
		m.assertExpectations(t)
	})

	t.Run("unknown book releases the guard", func(t *testing.T) {
		svc, m := newChapterService(t)
		bookID := uuid.New()
		m.guard.On("Acquire", ctx, bookID).Return(nil).Once()
		m.guard.On("Release", mock.Anything, bookID).Return(nil).Once()
		m.bookRepo.On("GetByID", ctx, mock.Anything, bookID).Return(nil, models.ErrNotFound).Once()

		result, err := svc.GenerateChapter(ctx, bookID, "")

		require.ErrorIs(t, err, models.ErrNotFound)
		assert.Nil(t, result)
		m.assertExpectations(t)
	})
}
