package handler_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"book-server/internal/handler"
	"book-server/internal/mocks"
	"book-server/internal/models"
	"book-server/internal/service"
)

type handlerMocks struct {
	books         *mocks.MockBookService
	chapters      *mocks.MockChapterService
	illustrations *mocks.MockIllustrationService
	references    *mocks.MockReferenceService
}

func newTestServer(t *testing.T) (*echo.Echo, *handlerMocks) {
	t.Helper()
	m := &handlerMocks{
		books:         mocks.NewMockBookService(t),
		chapters:      mocks.NewMockChapterService(t),
		illustrations: mocks.NewMockIllustrationService(t),
		references:    mocks.NewMockReferenceService(t),
	}
	e := echo.New()
	e.Validator = handler.NewRequestValidator()
	h := handler.NewBookHandler(m.books, m.chapters, m.illustrations, m.references, zap.NewNop())
	h.RegisterRoutes(e)
	return e, m
}

func (m *handlerMocks) assertExpectations(t *testing.T) {
	t.Helper()
	m.books.AssertExpectations(t)
	m.chapters.AssertExpectations(t)
	m.illustrations.AssertExpectations(t)
	m.references.AssertExpectations(t)
}

// doJSON выполняет запрос через полный роутер echo и возвращает рекордер.
func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func testBook(bookID uuid.UUID) *models.Book {
	return &models.Book{
		ID:               bookID,
		Title:            "Хроники долины",
		Description:      "Девочка и ее дракон",
		WordsPerChapter:  600,
		ImagesPerChapter: 2,
		CreatedAt:        time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
	}
}

func TestBookHandler_CreateBook(t *testing.T) {
	t.Run("creates book and returns 201", func(t *testing.T) {
		e, m := newTestServer(t)
		bookID := uuid.New()
		m.books.On("CreateBook", mock.Anything, "Хроники долины", "Девочка и ее дракон", 800, 2).
			Return(testBook(bookID), nil).Once()

		rec := doJSON(e, http.MethodPost, "/api/books",
			`{"title":"Хроники долины","description":"Девочка и ее дракон","words_per_chapter":800,"images_per_chapter":2}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		got := decodeBody[models.Book](t, rec)
		assert.Equal(t, bookID, got.ID)
		assert.Equal(t, "Хроники долины", got.Title)
		m.assertExpectations(t)
	})

	t.Run("omitted settings pass validation and reach the service as zeros", func(t *testing.T) {
		e, m := newTestServer(t)
		m.books.On("CreateBook", mock.Anything, "Хроники долины", "", 0, 0).
			Return(testBook(uuid.New()), nil).Once()

		rec := doJSON(e, http.MethodPost, "/api/books", `{"title":"Хроники долины"}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		m.assertExpectations(t)
	})

	t.Run("missing title fails validation before the service", func(t *testing.T) {
		e, m := newTestServer(t)

		rec := doJSON(e, http.MethodPost, "/api/books", `{"description":"без названия"}`)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		m.books.AssertNotCalled(t, "CreateBook", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("out of range settings fail validation", func(t *testing.T) {
		e, m := newTestServer(t)

		rec := doJSON(e, http.MethodPost, "/api/books", `{"title":"Хроники","words_per_chapter":5000}`)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		m.books.AssertNotCalled(t, "CreateBook", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("malformed json returns 400", func(t *testing.T) {
		e, m := newTestServer(t)

		rec := doJSON(e, http.MethodPost, "/api/books", `{"title":`)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		m.books.AssertNotCalled(t, "CreateBook", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestBookHandler_GetBook(t *testing.T) {
	t.Run("returns book", func(t *testing.T) {
		e, m := newTestServer(t)
		bookID := uuid.New()
		m.books.On("GetBook", mock.Anything, bookID).Return(testBook(bookID), nil).Once()

		rec := doJSON(e, http.MethodGet, "/api/books/"+bookID.String(), "")

		require.Equal(t, http.StatusOK, rec.Code)
		got := decodeBody[models.Book](t, rec)
		assert.Equal(t, bookID, got.ID)
		m.assertExpectations(t)
	})

	t.Run("invalid id returns 400", func(t *testing.T) {
		e, m := newTestServer(t)

		rec := doJSON(e, http.MethodGet, "/api/books/not-a-uuid", "")

		require.Equal(t, http.StatusBadRequest, rec.Code)
		m.books.AssertNotCalled(t, "GetBook", mock.Anything, mock.Anything)
	})

	t.Run("unknown book returns 404", func(t *testing.T) {
		e, m := newTestServer(t)
		bookID := uuid.New()
		m.books.On("GetBook", mock.Anything, bookID).Return(nil, models.ErrNotFound).Once()

		rec := doJSON(e, http.MethodGet, "/api/books/"+bookID.String(), "")

		require.Equal(t, http.StatusNotFound, rec.Code)
		apiErr := decodeBody[handler.APIError](t, rec)
		assert.Equal(t, models.ErrNotFound.Error(), apiErr.Message)
		m.assertExpectations(t)
	})
}

func TestBookHandler_UpdateSettings(t *testing.T) {
	t.Run("updates settings and returns the refreshed book", func(t *testing.T) {
		e, m := newTestServer(t)
		bookID := uuid.New()
		updated := testBook(bookID)
		updated.WordsPerChapter = 900
		updated.ImagesPerChapter = 3
		m.books.On("UpdateSettings", mock.Anything, bookID, 900, 3).Return(updated, nil).Once()

		rec := doJSON(e, http.MethodPatch, "/api/books/"+bookID.String()+"/settings",
			`{"words_per_chapter":900,"images_per_chapter":3}`)

		require.Equal(t, http.StatusOK, rec.Code)
		got := decodeBody[models.Book](t, rec)
		assert.Equal(t, 900, got.WordsPerChapter)
		assert.Equal(t, 3, got.ImagesPerChapter)
		m.assertExpectations(t)
	})

	t.Run("out of range settings rejected by validator", func(t *testing.T) {
		e, m := newTestServer(t)
		bookID := uuid.New()

		rec := doJSON(e, http.MethodPatch, "/api/books/"+bookID.String()+"/settings",
			`{"words_per_chapter":100,"images_per_chapter":1}`)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		m.books.AssertNotCalled(t, "UpdateSettings", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown book returns 404", func(t *testing.T) {
		e, m := newTestServer(t)
		bookID := uuid.New()
		m.books.On("UpdateSettings", mock.Anything, bookID, 900, 2).Return(nil, models.ErrNotFound).Once()

		rec := doJSON(e, http.MethodPatch, "/api/books/"+bookID.String()+"/settings",
			`{"words_per_chapter":900,"images_per_chapter":2}`)

		require.Equal(t, http.StatusNotFound, rec.Code)
		m.assertExpectations(t)
	})
}

func TestBookHandler_GenerateChapter(t *testing.T) {
	t.Run("returns 201 with the generation result", func(t *testing.T) {
		e, m := newTestServer(t)
		bookID := uuid.New()
		chapterID := uuid.New()
		result := &service.ChapterGenerationResult{
			Chapter: &models.Chapter{ID: chapterID, BookID: bookID, Number: 3, Title: "Глава 3"},
			Jobs: []*models.IllustrationJob{
				{ID: uuid.New(), ChapterID: chapterID, Position: 0, Status: models.IllustrationStatusPending},
			},
			CoverEligible: true,
		}
		m.chapters.On("GenerateChapter", mock.Anything, bookID, "встреча с троллем").Return(result, nil).Once()

		rec := doJSON(e, http.MethodPost, "/api/books/"+bookID.String()+"/chapters/generate",
			`{"hint":"встреча с троллем"}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		got := decodeBody[service.ChapterGenerationResult](t, rec)
		assert.Equal(t, chapterID, got.Chapter.ID)
		assert.Len(t, got.Jobs, 1)
		assert.True(t, got.CoverEligible)
		m.assertExpectations(t)
	})

	t.Run("empty body means no hint", func(t *testing.T) {
		e, m := newTestServer(t)
		bookID := uuid.New()
		result := &service.ChapterGenerationResult{
			Chapter: &models.Chapter{ID: uuid.New(), BookID: bookID, Number: 1, Title: "Глава 1"},
		}
		m.chapters.On("GenerateChapter", mock.Anything, bookID, "").Return(result, nil).Once()

		rec := doJSON(e, http.MethodPost, "/api/books/"+bookID.String()+"/chapters/generate", "")

		require.Equal(t, http.StatusCreated, rec.Code)
		m.assertExpectations(t)
	})

	t.Run("active generation returns 409", func(t *testing.T) {
		e, m := newTestServer(t)
		bookID := uuid.New()
		m.chapters.On("GenerateChapter", mock.Anything, bookID, "").
			Return(nil, models.ErrBookHasActiveGeneration).Once()

		rec := doJSON(e, http.MethodPost, "/api/books/"+bookID.String()+"/chapters/generate", "")

		require.Equal(t, http.StatusConflict, rec.Code)
		apiErr := decodeBody[handler.APIError](t, rec)
		assert.Equal(t, models.ErrBookHasActiveGeneration.Error(), apiErr.Message)
		m.assertExpectations(t)
	})

	t.Run("text generation failure returns 500 with the cause", func(t *testing.T) {
		e, m := newTestServer(t)
		bookID := uuid.New()
		cause := fmt.Errorf("%w: все попытки исчерпаны", models.ErrTextGenerationFailed)
		m.chapters.On("GenerateChapter", mock.Anything, bookID, "").Return(nil, cause).Once()

		rec := doJSON(e, http.MethodPost, "/api/books/"+bookID.String()+"/chapters/generate", "")

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		apiErr := decodeBody[handler.APIError](t, rec)
		assert.Contains(t, apiErr.Message, models.ErrTextGenerationFailed.Error())
		m.assertExpectations(t)
	})

	t.Run("unknown book returns 404", func(t *testing.T) {
		e, m := newTestServer(t)
		bookID := uuid.New()
		m.chapters.On("GenerateChapter", mock.Anything, bookID, "").Return(nil, models.ErrNotFound).Once()

		rec := doJSON(e, http.MethodPost, "/api/books/"+bookID.String()+"/chapters/generate", "")

		require.Equal(t, http.StatusNotFound, rec.Code)
		m.assertExpectations(t)
	})
}

func TestBookHandler_GetRenderedChapter(t *testing.T) {
	t.Run("returns rendered chapter", func(t *testing.T) {
		e, m := newTestServer(t)
		bookID := uuid.New()
		rendered := &models.RenderedChapter{
			Chapter: models.Chapter{ID: uuid.New(), BookID: bookID, Number: 2, Title: "Глава 2"},
			Content: "Утро в долине. https://cdn.example.com/img/1.png",
			Illustrations: []models.RenderedIllustration{
				{Position: 0, Status: models.IllustrationStatusReady, ImageURL: "https://cdn.example.com/img/1.png"},
			},
		}
		m.books.On("GetRenderedChapter", mock.Anything, bookID, 2).Return(rendered, nil).Once()

		rec := doJSON(e, http.MethodGet, "/api/books/"+bookID.String()+"/chapters/2", "")

		require.Equal(t, http.StatusOK, rec.Code)
		got := decodeBody[models.RenderedChapter](t, rec)
		assert.Equal(t, 2, got.Chapter.Number)
		assert.Contains(t, got.Content, "https://cdn.example.com/img/1.png")
		m.assertExpectations(t)
	})

	t.Run("non-numeric chapter number returns 400", func(t *testing.T) {
		e, m := newTestServer(t)
		bookID := uuid.New()

		rec := doJSON(e, http.MethodGet, "/api/books/"+bookID.String()+"/chapters/abc", "")

		require.Equal(t, http.StatusBadRequest, rec.Code)
		m.books.AssertNotCalled(t, "GetRenderedChapter", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("zero chapter number returns 400", func(t *testing.T) {
		e, m := newTestServer(t)
		bookID := uuid.New()

		rec := doJSON(e, http.MethodGet, "/api/books/"+bookID.String()+"/chapters/0", "")

		require.Equal(t, http.StatusBadRequest, rec.Code)
		m.books.AssertNotCalled(t, "GetRenderedChapter", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing chapter returns 404", func(t *testing.T) {
		e, m := newTestServer(t)
		bookID := uuid.New()
		m.books.On("GetRenderedChapter", mock.Anything, bookID, 7).
			Return(nil, models.ErrChapterNotFound).Once()

		rec := doJSON(e, http.MethodGet, "/api/books/"+bookID.String()+"/chapters/7", "")

		require.Equal(t, http.StatusNotFound, rec.Code)
		apiErr := decodeBody[handler.APIError](t, rec)
		assert.Equal(t, models.ErrChapterNotFound.Error(), apiErr.Message)
		m.assertExpectations(t)
	})
}

func TestBookHandler_GetBookOverview(t *testing.T) {
	t.Run("returns book with chapter summaries", func(t *testing.T) {
		e, m := newTestServer(t)
		bookID := uuid.New()
		overview := &models.BookOverview{
			Book: *testBook(bookID),
			Chapters: []models.ChapterSummary{
				{
					ID: uuid.New(), Number: 1, Title: "Глава 1", WordCount: 640,
					Illustrations: []models.RenderedIllustration{
						{Position: 0, Status: models.IllustrationStatusReady, ImageURL: "https://cdn.example.com/img/1.png"},
					},
				},
				{ID: uuid.New(), Number: 2, Title: "Глава 2", WordCount: 580, Illustrations: []models.RenderedIllustration{}},
			},
		}
		m.books.On("GetBookOverview", mock.Anything, bookID).Return(overview, nil).Once()

		rec := doJSON(e, http.MethodGet, "/api/books/"+bookID.String()+"/chapters", "")

		require.Equal(t, http.StatusOK, rec.Code)
		got := decodeBody[models.BookOverview](t, rec)
		assert.Equal(t, bookID, got.Book.ID)
		require.Len(t, got.Chapters, 2)
		assert.Equal(t, models.IllustrationStatusReady, got.Chapters[0].Illustrations[0].Status)
		assert.NotNil(t, got.Chapters[1].Illustrations)
		m.assertExpectations(t)
	})

	t.Run("unknown book returns 404", func(t *testing.T) {
		e, m := newTestServer(t)
		bookID := uuid.New()
		m.books.On("GetBookOverview", mock.Anything, bookID).Return(nil, models.ErrNotFound).Once()

		rec := doJSON(e, http.MethodGet, "/api/books/"+bookID.String()+"/chapters", "")

		require.Equal(t, http.StatusNotFound, rec.Code)
		m.assertExpectations(t)
	})
}

func TestBookHandler_Characters(t *testing.T) {
	t.Run("creates character and returns 201", func(t *testing.T) {
		e, m := newTestServer(t)
		bookID := uuid.New()
		character := &models.Character{
			ID:                uuid.New(),
			BookID:            bookID,
			Name:              "Мира",
			VisualDescription: "Рыжие волосы, зеленый плащ",
		}
		m.books.On("CreateCharacter", mock.Anything, bookID, "Мира", "", "Рыжие волосы, зеленый плащ").
			Return(character, nil).Once()

		rec := doJSON(e, http.MethodPost, "/api/books/"+bookID.String()+"/characters",
			`{"name":"Мира","visual_description":"Рыжие волосы, зеленый плащ"}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		got := decodeBody[models.Character](t, rec)
		assert.Equal(t, "Мира", got.Name)
		m.assertExpectations(t)
	})

	t.Run("missing name fails validation", func(t *testing.T) {
		e, m := newTestServer(t)
		bookID := uuid.New()

		rec := doJSON(e, http.MethodPost, "/api/books/"+bookID.String()+"/characters",
			`{"visual_description":"Рыжие волосы"}`)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		m.books.AssertNotCalled(t, "CreateCharacter", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("lists characters of a book", func(t *testing.T) {
		e, m := newTestServer(t)
		bookID := uuid.New()
		characters := []*models.Character{
			{ID: uuid.New(), BookID: bookID, Name: "Мира", HasReference: true},
			{ID: uuid.New(), BookID: bookID, Name: "Дракон Тай"},
		}
		m.books.On("ListCharacters", mock.Anything, bookID).Return(characters, nil).Once()

		rec := doJSON(e, http.MethodGet, "/api/books/"+bookID.String()+"/characters", "")

		require.Equal(t, http.StatusOK, rec.Code)
		got := decodeBody[map[string][]models.Character](t, rec)
		require.Len(t, got["characters"], 2)
		assert.Equal(t, "Мира", got["characters"][0].Name)
		m.assertExpectations(t)
	})
}

func TestBookHandler_GenerateReference(t *testing.T) {
	t.Run("returns character with fresh reference", func(t *testing.T) {
		e, m := newTestServer(t)
		characterID := uuid.New()
		prompt := "Character reference portrait: red hair, green cloak"
		url := "https://cdn.example.com/img/reference_" + characterID.String() + ".png"
		now := time.Now().UTC()
		character := &models.Character{
			ID:               characterID,
			Name:             "Мира",
			ReferencePrompt:  &prompt,
			ReferenceURL:     &url,
			HasReference:     true,
			ReferenceCreated: &now,
		}
		m.references.On("GenerateReference", mock.Anything, characterID).Return(character, nil).Once()

		rec := doJSON(e, http.MethodPost, "/api/characters/"+characterID.String()+"/reference", "")

		require.Equal(t, http.StatusOK, rec.Code)
		got := decodeBody[models.Character](t, rec)
		assert.True(t, got.HasReference)
		require.NotNil(t, got.ReferenceURL)
		assert.Equal(t, url, *got.ReferenceURL)
		m.assertExpectations(t)
	})

	t.Run("character without description returns 400", func(t *testing.T) {
		e, m := newTestServer(t)
		characterID := uuid.New()
		cause := fmt.Errorf("%w: у персонажа нет описания для портрета", models.ErrInvalidInput)
		m.references.On("GenerateReference", mock.Anything, characterID).Return(nil, cause).Once()

		rec := doJSON(e, http.MethodPost, "/api/characters/"+characterID.String()+"/reference", "")

		require.Equal(t, http.StatusBadRequest, rec.Code)
		m.assertExpectations(t)
	})

	t.Run("unknown character returns 404", func(t *testing.T) {
		e, m := newTestServer(t)
		characterID := uuid.New()
		m.references.On("GenerateReference", mock.Anything, characterID).Return(nil, models.ErrNotFound).Once()

		rec := doJSON(e, http.MethodPost, "/api/characters/"+characterID.String()+"/reference", "")

		require.Equal(t, http.StatusNotFound, rec.Code)
		m.assertExpectations(t)
	})
}

func TestBookHandler_ListChapterIllustrations(t *testing.T) {
	t.Run("returns job list", func(t *testing.T) {
		e, m := newTestServer(t)
		chapterID := uuid.New()
		url := "https://cdn.example.com/img/1.png"
		jobs := []*models.IllustrationJob{
			{ID: uuid.New(), ChapterID: chapterID, Position: 0, Status: models.IllustrationStatusReady, ImageURL: &url},
			{ID: uuid.New(), ChapterID: chapterID, Position: 1, Status: models.IllustrationStatusPending},
		}
		m.illustrations.On("ListChapterJobs", mock.Anything, chapterID).Return(jobs, nil).Once()

		rec := doJSON(e, http.MethodGet, "/api/chapters/"+chapterID.String()+"/illustrations", "")

		require.Equal(t, http.StatusOK, rec.Code)
		got := decodeBody[map[string][]models.IllustrationJob](t, rec)
		require.Len(t, got["illustrations"], 2)
		assert.Equal(t, models.IllustrationStatusReady, got["illustrations"][0].Status)
		m.assertExpectations(t)
	})

	t.Run("invalid chapter id returns 400", func(t *testing.T) {
		e, m := newTestServer(t)

		rec := doJSON(e, http.MethodGet, "/api/chapters/nope/illustrations", "")

		require.Equal(t, http.StatusBadRequest, rec.Code)
		m.illustrations.AssertNotCalled(t, "ListChapterJobs", mock.Anything, mock.Anything)
	})
}

func TestBookHandler_RunIllustration(t *testing.T) {
	t.Run("returns terminal ready job", func(t *testing.T) {
		e, m := newTestServer(t)
		jobID := uuid.New()
		url := "https://cdn.example.com/img/" + jobID.String() + ".png"
		job := &models.IllustrationJob{ID: jobID, Position: 0, Status: models.IllustrationStatusReady, ImageURL: &url}
		m.illustrations.On("RunJob", mock.Anything, jobID, true).Return(job, nil).Once()

		rec := doJSON(e, http.MethodPost, "/api/illustrations/"+jobID.String()+"/run",
			`{"cover_eligible":true}`)

		require.Equal(t, http.StatusOK, rec.Code)
		got := decodeBody[models.IllustrationJob](t, rec)
		assert.Equal(t, models.IllustrationStatusReady, got.Status)
		require.NotNil(t, got.ImageURL)
		assert.Equal(t, url, *got.ImageURL)
		m.assertExpectations(t)
	})

	t.Run("exhausted models return 200 with the job in error state", func(t *testing.T) {
		e, m := newTestServer(t)
		jobID := uuid.New()
		details := "image generation failed: все модели исчерпаны"
		job := &models.IllustrationJob{ID: jobID, Position: 1, Status: models.IllustrationStatusError, ErrorDetails: &details}
		m.illustrations.On("RunJob", mock.Anything, jobID, false).Return(job, nil).Once()

		rec := doJSON(e, http.MethodPost, "/api/illustrations/"+jobID.String()+"/run", "")

		require.Equal(t, http.StatusOK, rec.Code)
		got := decodeBody[models.IllustrationJob](t, rec)
		assert.Equal(t, models.IllustrationStatusError, got.Status)
		require.NotNil(t, got.ErrorDetails)
		assert.Equal(t, details, *got.ErrorDetails)
		m.assertExpectations(t)
	})

	t.Run("empty body runs without cover eligibility", func(t *testing.T) {
		e, m := newTestServer(t)
		jobID := uuid.New()
		job := &models.IllustrationJob{ID: jobID, Status: models.IllustrationStatusReady}
		m.illustrations.On("RunJob", mock.Anything, jobID, false).Return(job, nil).Once()

		rec := doJSON(e, http.MethodPost, "/api/illustrations/"+jobID.String()+"/run", "")

		require.Equal(t, http.StatusOK, rec.Code)
		m.assertExpectations(t)
	})

	t.Run("running job returns 409", func(t *testing.T) {
		e, m := newTestServer(t)
		jobID := uuid.New()
		m.illustrations.On("RunJob", mock.Anything, jobID, false).
			Return(nil, models.ErrJobAlreadyRunning).Once()

		rec := doJSON(e, http.MethodPost, "/api/illustrations/"+jobID.String()+"/run", "")

		require.Equal(t, http.StatusConflict, rec.Code)
		apiErr := decodeBody[handler.APIError](t, rec)
		assert.Equal(t, models.ErrJobAlreadyRunning.Error(), apiErr.Message)
		m.assertExpectations(t)
	})

	t.Run("unknown job returns 404", func(t *testing.T) {
		e, m := newTestServer(t)
		jobID := uuid.New()
		m.illustrations.On("RunJob", mock.Anything, jobID, false).Return(nil, models.ErrNotFound).Once()

		rec := doJSON(e, http.MethodPost, "/api/illustrations/"+jobID.String()+"/run", "")

		require.Equal(t, http.StatusNotFound, rec.Code)
		m.assertExpectations(t)
	})
}
