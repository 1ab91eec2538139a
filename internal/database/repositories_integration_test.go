package database_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/docker/docker/client"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"book-server/internal/database"
	"book-server/internal/interfaces"
	"book-server/internal/models"
)

// RepositoriesSuite гоняет репозитории по настоящему PostgreSQL в контейнере.
// Схема накатывается тем же мигратором, что и на старте сервера.
type RepositoriesSuite struct {
	suite.Suite
	ctx         context.Context
	pgContainer *postgres.PostgresContainer
	pool        *pgxpool.Pool
	logger      *zap.Logger

	books      interfaces.BookRepository
	characters interfaces.CharacterRepository
	chapters   interfaces.ChapterRepository
	jobs       interfaces.IllustrationJobRepository
	tx         interfaces.TxManager
}

func (s *RepositoriesSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error

	s.logger, err = zap.NewDevelopment()
	require.NoError(s.T(), err, "Failed to create logger for tests")

	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
	)
	require.NoError(s.T(), err, "Failed to start postgres container")

	connStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "Failed to get postgres connection string")

	s.pool, err = pgxpool.New(s.ctx, connStr)
	require.NoError(s.T(), err, "Failed to connect to test postgres")

	err = database.NewMigrator(s.pool, s.logger).Up(s.ctx)
	require.NoError(s.T(), err, "Failed to apply migrations")

	s.books = database.NewPgBookRepository(s.pool, s.logger)
	s.characters = database.NewPgCharacterRepository(s.pool, s.logger)
	s.chapters = database.NewPgChapterRepository(s.pool, s.logger)
	s.jobs = database.NewPgIllustrationJobRepository(s.pool, s.logger)
	s.tx = database.NewTxManager(s.pool, s.logger)
}

func (s *RepositoriesSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(s.ctx); err != nil {
			s.logger.Error("Failed to terminate postgres container", zap.Error(err))
		}
	}
}

// Каждый тест начинает с пустой БД. CASCADE утягивает за книгами персонажей,
// главы и задачи иллюстраций.
func (s *RepositoriesSuite) SetupTest() {
	_, err := s.pool.Exec(s.ctx, "TRUNCATE TABLE books CASCADE")
	require.NoError(s.T(), err, "Failed to truncate tables")
}

func TestRepositoriesSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	cli, err := client.NewClientWithOpts(client.FromEnv)
	if err != nil {
		t.Fatalf("Docker client init error: %v. Ensure Docker is running and accessible.", err)
	}
	if _, err := cli.Ping(context.Background()); err != nil {
		t.Fatalf("Docker daemon is not running or accessible: %v", err)
	}
	cli.Close()

	suite.Run(t, new(RepositoriesSuite))
}

// --- Вспомогательные фикстуры ---

func (s *RepositoriesSuite) mustCreateBook(title string) *models.Book {
	book := &models.Book{
		Title:            title,
		Description:      "Сказка для интеграционных тестов",
		WordsPerChapter:  600,
		ImagesPerChapter: 2,
	}
	require.NoError(s.T(), s.books.Create(s.ctx, s.pool, book))
	return book
}

func (s *RepositoriesSuite) mustCreateChapter(bookID uuid.UUID, number int, title string) *models.Chapter {
	chapter := &models.Chapter{
		BookID:    bookID,
		Number:    number,
		Title:     title,
		Content:   "Жила-была девочка. [IMG:0] Она дружила с драконом.",
		WordCount: 8,
	}
	require.NoError(s.T(), s.chapters.Create(s.ctx, s.pool, chapter))
	return chapter
}

func (s *RepositoriesSuite) mustCreateJobs(chapterID uuid.UUID, positions ...int) []*models.IllustrationJob {
	jobs := make([]*models.IllustrationJob, 0, len(positions))
	for _, pos := range positions {
		jobs = append(jobs, &models.IllustrationJob{
			ChapterID:    chapterID,
			Position:     pos,
			TextPosition: pos * 100,
			Prompt:       "Девочка и дракон на поляне",
		})
	}
	inserted, err := s.jobs.CreateBatch(s.ctx, s.pool, jobs)
	require.NoError(s.T(), err)
	require.Len(s.T(), inserted, len(positions))
	return inserted
}

// --- Книги ---

func (s *RepositoriesSuite) TestBookCreateAndGet() {
	t := s.T()

	book := s.mustCreateBook("Хроники долины")
	require.NotEqual(t, uuid.Nil, book.ID, "Create should assign an id")

	loaded, err := s.books.GetByID(s.ctx, s.pool, book.ID)
	require.NoError(t, err)
	require.Equal(t, book.ID, loaded.ID)
	require.Equal(t, "Хроники долины", loaded.Title)
	require.Equal(t, "Сказка для интеграционных тестов", loaded.Description)
	require.Equal(t, 600, loaded.WordsPerChapter)
	require.Equal(t, 2, loaded.ImagesPerChapter)
	require.Nil(t, loaded.CoverURL, "New book should have no cover")
	require.False(t, loaded.CreatedAt.IsZero())

	_, err = s.books.GetByID(s.ctx, s.pool, uuid.New())
	require.ErrorIs(t, err, models.ErrNotFound)
}

func (s *RepositoriesSuite) TestBookUpdateSettings() {
	t := s.T()

	book := s.mustCreateBook("Настройки")

	require.NoError(t, s.books.UpdateSettings(s.ctx, s.pool, book.ID, 900, 3))

	loaded, err := s.books.GetByID(s.ctx, s.pool, book.ID)
	require.NoError(t, err)
	require.Equal(t, 900, loaded.WordsPerChapter)
	require.Equal(t, 3, loaded.ImagesPerChapter)

	err = s.books.UpdateSettings(s.ctx, s.pool, uuid.New(), 900, 3)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func (s *RepositoriesSuite) TestBookCoverIsSetOnlyOnce() {
	t := s.T()

	book := s.mustCreateBook("Обложка")

	set, err := s.books.SetCoverIfAbsent(s.ctx, s.pool, book.ID, "http://img.local/cover-1.png")
	require.NoError(t, err)
	require.True(t, set, "First cover write should win")

	set, err = s.books.SetCoverIfAbsent(s.ctx, s.pool, book.ID, "http://img.local/cover-2.png")
	require.NoError(t, err)
	require.False(t, set, "Second cover write should be a no-op")

	loaded, err := s.books.GetByID(s.ctx, s.pool, book.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.CoverURL)
	require.Equal(t, "http://img.local/cover-1.png", *loaded.CoverURL)

	// Несуществующая книга неотличима от книги с уже установленной обложкой
	set, err = s.books.SetCoverIfAbsent(s.ctx, s.pool, uuid.New(), "http://img.local/cover-3.png")
	require.NoError(t, err)
	require.False(t, set)
}

// --- Персонажи ---

func (s *RepositoriesSuite) TestCharacterRosterOrder() {
	t := s.T()

	book := s.mustCreateBook("Ростер")

	names := []string{"Мира", "Дракон Тамм", "Старик-мельник"}
	for _, name := range names {
		character := &models.Character{
			BookID:            book.ID,
			Name:              name,
			VisualDescription: "рыжие волосы, зеленый плащ",
		}
		require.NoError(t, s.characters.Create(s.ctx, s.pool, character))
	}

	roster, err := s.characters.ListByBook(s.ctx, s.pool, book.ID)
	require.NoError(t, err)
	require.Len(t, roster, 3)
	for i, c := range roster {
		require.Equal(t, names[i], c.Name, "Roster should keep creation order")
		require.False(t, c.HasReference)
	}

	empty, err := s.characters.ListByBook(s.ctx, s.pool, uuid.New())
	require.NoError(t, err)
	require.Empty(t, empty)
}

func (s *RepositoriesSuite) TestCharacterReferenceSave() {
	t := s.T()

	book := s.mustCreateBook("Референсы")
	character := &models.Character{BookID: book.ID, Name: "Мира"}
	require.NoError(t, s.characters.Create(s.ctx, s.pool, character))

	image := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	createdAt := time.Now().UTC().Truncate(time.Microsecond)
	err := s.characters.SaveReference(s.ctx, s.pool, character.ID,
		image, "portrait of Mira, red hair", "http://img.local/ref/mira.png", createdAt)
	require.NoError(t, err)

	loaded, err := s.characters.GetByID(s.ctx, s.pool, character.ID)
	require.NoError(t, err)
	require.True(t, loaded.HasReference)
	require.Equal(t, image, loaded.ReferenceImage)
	require.NotNil(t, loaded.ReferencePrompt)
	require.Equal(t, "portrait of Mira, red hair", *loaded.ReferencePrompt)
	require.NotNil(t, loaded.ReferenceURL)
	require.Equal(t, "http://img.local/ref/mira.png", *loaded.ReferenceURL)
	require.NotNil(t, loaded.ReferenceCreated)
	require.True(t, loaded.ReferenceCreated.Equal(createdAt))

	// Повторная генерация заменяет референс целиком
	newImage := []byte{0x89, 0x50, 0x4E, 0x47, 0xFF}
	err = s.characters.SaveReference(s.ctx, s.pool, character.ID,
		newImage, "portrait of Mira, older", "http://img.local/ref/mira.png?v=2", time.Now().UTC())
	require.NoError(t, err)

	loaded, err = s.characters.GetByID(s.ctx, s.pool, character.ID)
	require.NoError(t, err)
	require.Equal(t, newImage, loaded.ReferenceImage)
	require.Equal(t, "portrait of Mira, older", *loaded.ReferencePrompt)

	err = s.characters.SaveReference(s.ctx, s.pool, uuid.New(),
		image, "prompt", "http://img.local/ref/ghost.png", time.Now().UTC())
	require.ErrorIs(t, err, models.ErrNotFound)
}

func (s *RepositoriesSuite) TestCharacterReferenceRequiresImageAndPrompt() {
	t := s.T()

	book := s.mustCreateBook("Неполный референс")
	character := &models.Character{BookID: book.ID, Name: "Мира"}
	require.NoError(t, s.characters.Create(s.ctx, s.pool, character))

	err := s.characters.SaveReference(s.ctx, s.pool, character.ID, nil, "prompt", "", time.Now().UTC())
	require.ErrorIs(t, err, models.ErrReferenceInconsistent)

	err = s.characters.SaveReference(s.ctx, s.pool, character.ID, []byte{1}, "", "", time.Now().UTC())
	require.ErrorIs(t, err, models.ErrReferenceInconsistent)
}

// --- Главы ---

func (s *RepositoriesSuite) TestChapterNumbering() {
	t := s.T()

	book := s.mustCreateBook("Нумерация")

	next, err := s.chapters.NextNumber(s.ctx, s.pool, book.ID)
	require.NoError(t, err)
	require.Equal(t, 1, next, "Empty book starts at chapter 1")

	s.mustCreateChapter(book.ID, 1, "Начало")
	s.mustCreateChapter(book.ID, 2, "Середина")
	s.mustCreateChapter(book.ID, 3, "Продолжение")

	next, err = s.chapters.NextNumber(s.ctx, s.pool, book.ID)
	require.NoError(t, err)
	require.Equal(t, 4, next)

	loaded, err := s.chapters.GetByNumber(s.ctx, s.pool, book.ID, 2)
	require.NoError(t, err)
	require.Equal(t, "Середина", loaded.Title)

	_, err = s.chapters.GetByNumber(s.ctx, s.pool, book.ID, 99)
	require.ErrorIs(t, err, models.ErrChapterNotFound)

	// Номер уникален внутри книги
	duplicate := &models.Chapter{BookID: book.ID, Number: 2, Title: "Дубль", Content: "x"}
	require.Error(t, s.chapters.Create(s.ctx, s.pool, duplicate))
}

func (s *RepositoriesSuite) TestChapterListing() {
	t := s.T()

	book := s.mustCreateBook("Списки глав")
	s.mustCreateChapter(book.ID, 1, "Первая")
	s.mustCreateChapter(book.ID, 2, "Вторая")
	s.mustCreateChapter(book.ID, 3, "Третья")

	recent, err := s.chapters.ListRecent(s.ctx, s.pool, book.ID, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.Equal(t, 3, recent[0].Number, "Most recent chapter comes first")
	require.Equal(t, 2, recent[1].Number)

	all, err := s.chapters.ListByBook(s.ctx, s.pool, book.ID)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i, chapter := range all {
		require.Equal(t, i+1, chapter.Number, "Overview is ordered by number")
	}
}

// --- Задачи иллюстраций ---

func (s *RepositoriesSuite) TestIllustrationJobBatchSkipsDuplicates() {
	t := s.T()

	book := s.mustCreateBook("Батчи")
	chapter := s.mustCreateChapter(book.ID, 1, "С маркерами")

	first := s.mustCreateJobs(chapter.ID, 0, 1)
	require.Equal(t, models.IllustrationStatusPending, first[0].Status)

	// Повтор тех же позиций плюс одна новая: вставляется только новая
	retry := []*models.IllustrationJob{
		{ChapterID: chapter.ID, Position: 0, Prompt: "повтор"},
		{ChapterID: chapter.ID, Position: 1, Prompt: "повтор"},
		{ChapterID: chapter.ID, Position: 2, Prompt: "Дракон над рекой"},
	}
	inserted, err := s.jobs.CreateBatch(s.ctx, s.pool, retry)
	require.NoError(t, err)
	require.Len(t, inserted, 1)
	require.Equal(t, 2, inserted[0].Position)

	listed, err := s.jobs.ListByChapter(s.ctx, s.pool, chapter.ID)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	for i, job := range listed {
		require.Equal(t, i, job.Position, "Jobs are ordered by position")
	}
	// Исходные строки не перезаписаны повтором
	require.Equal(t, "Девочка и дракон на поляне", listed[0].Prompt)
}

func (s *RepositoriesSuite) TestIllustrationJobStatusTransitions() {
	t := s.T()

	book := s.mustCreateBook("Статусы")
	chapter := s.mustCreateChapter(book.ID, 1, "С задачей")
	job := s.mustCreateJobs(chapter.ID, 0)[0]

	require.NoError(t, s.jobs.UpdateStatus(s.ctx, s.pool, job.ID, models.IllustrationStatusGenerating, nil, nil))
	loaded, err := s.jobs.GetByID(s.ctx, s.pool, job.ID)
	require.NoError(t, err)
	require.Equal(t, models.IllustrationStatusGenerating, loaded.Status)
	require.Nil(t, loaded.ImageURL)

	imageURL := "http://img.local/ill/0.png"
	require.NoError(t, s.jobs.UpdateStatus(s.ctx, s.pool, job.ID, models.IllustrationStatusReady, &imageURL, nil))
	loaded, err = s.jobs.GetByID(s.ctx, s.pool, job.ID)
	require.NoError(t, err)
	require.Equal(t, models.IllustrationStatusReady, loaded.Status)
	require.NotNil(t, loaded.ImageURL)
	require.Equal(t, imageURL, *loaded.ImageURL)
	require.Nil(t, loaded.ErrorDetails)

	details := "все модели исчерпаны"
	require.NoError(t, s.jobs.UpdateStatus(s.ctx, s.pool, job.ID, models.IllustrationStatusError, nil, &details))
	loaded, err = s.jobs.GetByID(s.ctx, s.pool, job.ID)
	require.NoError(t, err)
	require.Equal(t, models.IllustrationStatusError, loaded.Status)
	require.Nil(t, loaded.ImageURL)
	require.NotNil(t, loaded.ErrorDetails)
	require.Equal(t, details, *loaded.ErrorDetails)

	err = s.jobs.UpdateStatus(s.ctx, s.pool, uuid.New(), models.IllustrationStatusReady, &imageURL, nil)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func (s *RepositoriesSuite) TestIllustrationJobsAcrossChapters() {
	t := s.T()

	book := s.mustCreateBook("Сводка")
	first := s.mustCreateChapter(book.ID, 1, "Первая")
	second := s.mustCreateChapter(book.ID, 2, "Вторая")
	s.mustCreateJobs(first.ID, 0, 1)
	s.mustCreateJobs(second.ID, 0)

	jobs, err := s.jobs.ListByChapters(s.ctx, s.pool, []uuid.UUID{first.ID, second.ID})
	require.NoError(t, err)
	require.Len(t, jobs, 3)

	byChapter := make(map[uuid.UUID]int)
	for _, job := range jobs {
		byChapter[job.ChapterID]++
	}
	require.Equal(t, 2, byChapter[first.ID])
	require.Equal(t, 1, byChapter[second.ID])

	empty, err := s.jobs.ListByChapters(s.ctx, s.pool, nil)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func (s *RepositoriesSuite) TestStaleGeneratingSweep() {
	t := s.T()

	book := s.mustCreateBook("Зависшие задачи")
	chapter := s.mustCreateChapter(book.ID, 1, "С зависшей задачей")
	jobs := s.mustCreateJobs(chapter.ID, 0, 1)
	stale, fresh := jobs[0], jobs[1]

	require.NoError(t, s.jobs.UpdateStatus(s.ctx, s.pool, stale.ID, models.IllustrationStatusGenerating, nil, nil))
	require.NoError(t, s.jobs.UpdateStatus(s.ctx, s.pool, fresh.ID, models.IllustrationStatusGenerating, nil, nil))

	// Старим первую задачу руками: UpdateStatus всегда пишет NOW()
	_, err := s.pool.Exec(s.ctx,
		"UPDATE illustration_jobs SET updated_at = now() - interval '20 minutes' WHERE id = $1", stale.ID)
	require.NoError(t, err)

	resetIDs, err := s.jobs.FindStaleGenerating(s.ctx, s.pool, 15*time.Minute)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{stale.ID}, resetIDs)

	loaded, err := s.jobs.GetByID(s.ctx, s.pool, stale.ID)
	require.NoError(t, err)
	require.Equal(t, models.IllustrationStatusPending, loaded.Status, "Stale job goes back to pending")

	loaded, err = s.jobs.GetByID(s.ctx, s.pool, fresh.ID)
	require.NoError(t, err)
	require.Equal(t, models.IllustrationStatusGenerating, loaded.Status, "Fresh job is left alone")
}

// --- Транзакции ---

func (s *RepositoriesSuite) TestTransactionRollbackDiscardsWrites() {
	t := s.T()

	book := s.mustCreateBook("Транзакции")
	sentinel := errors.New("chapter generation failed")

	var chapterID uuid.UUID
	err := s.tx.WithTransaction(s.ctx, func(ctx context.Context, tx interfaces.DBTX) error {
		chapter := &models.Chapter{BookID: book.ID, Number: 1, Title: "Откат", Content: "x"}
		if err := s.chapters.Create(ctx, tx, chapter); err != nil {
			return err
		}
		chapterID = chapter.ID
		if _, err := s.jobs.CreateBatch(ctx, tx, []*models.IllustrationJob{
			{ChapterID: chapter.ID, Position: 0, Prompt: "не должна выжить"},
		}); err != nil {
			return err
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	_, err = s.chapters.GetByID(s.ctx, s.pool, chapterID)
	require.ErrorIs(t, err, models.ErrChapterNotFound, "Rolled back chapter must not exist")

	next, err := s.chapters.NextNumber(s.ctx, s.pool, book.ID)
	require.NoError(t, err)
	require.Equal(t, 1, next)
}

func (s *RepositoriesSuite) TestTransactionCommitPersistsWrites() {
	t := s.T()

	book := s.mustCreateBook("Коммит")

	err := s.tx.WithTransaction(s.ctx, func(ctx context.Context, tx interfaces.DBTX) error {
		chapter := &models.Chapter{BookID: book.ID, Number: 1, Title: "Фиксация", Content: "x"}
		if err := s.chapters.Create(ctx, tx, chapter); err != nil {
			return err
		}
		_, err := s.jobs.CreateBatch(ctx, tx, []*models.IllustrationJob{
			{ChapterID: chapter.ID, Position: 0, Prompt: "должна выжить"},
		})
		return err
	})
	require.NoError(t, err)

	chapter, err := s.chapters.GetByNumber(s.ctx, s.pool, book.ID, 1)
	require.NoError(t, err)
	jobs, err := s.jobs.ListByChapter(s.ctx, s.pool, chapter.ID)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
}
