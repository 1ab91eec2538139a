package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"book-server/internal/models"
	"book-server/internal/service"
)

// createBookRequest - тело запроса создания книги. Нулевые настройки
// генерации заменяются сервисом на значения по умолчанию.
type createBookRequest struct {
	Title            string `json:"title" validate:"required,max=200"`
	Description      string `json:"description" validate:"max=2000"`
	WordsPerChapter  int    `json:"words_per_chapter" validate:"omitempty,min=200,max=1200"`
	ImagesPerChapter int    `json:"images_per_chapter" validate:"omitempty,min=1,max=3"`
}

// updateSettingsRequest - тело запроса изменения настроек генерации.
// В отличие от создания книги, здесь оба поля обязательны.
type updateSettingsRequest struct {
	WordsPerChapter  int `json:"words_per_chapter" validate:"required,min=200,max=1200"`
	ImagesPerChapter int `json:"images_per_chapter" validate:"required,min=1,max=3"`
}

// createCharacterRequest - тело запроса добавления персонажа.
type createCharacterRequest struct {
	Name              string `json:"name" validate:"required,max=200"`
	Description       string `json:"description" validate:"max=2000"`
	VisualDescription string `json:"visual_description" validate:"max=2000"`
}

// generateChapterRequest - тело запроса генерации главы. Тело опционально:
// пустой запрос означает генерацию без подсказки.
type generateChapterRequest struct {
	Hint string `json:"hint" validate:"max=500"`
}

// runIllustrationRequest - тело запроса запуска задачи иллюстрации.
// cover_eligible передает воркер из полезной нагрузки задачи; ручной
// перезапуск без тела оставляет обложку нетронутой.
type runIllustrationRequest struct {
	CoverEligible bool `json:"cover_eligible"`
}

// charactersResponse - список персонажей книги.
type charactersResponse struct {
	Characters []*models.Character `json:"characters"`
}

// illustrationsResponse - список задач иллюстраций главы.
type illustrationsResponse struct {
	Illustrations []*models.IllustrationJob `json:"illustrations"`
}

// APIError представляет стандартизированный ответ об ошибке.
type APIError struct {
	Message string `json:"message"`
}

// BookHandler обрабатывает HTTP запросы пайплайна книг: книги, персонажи,
// главы и задачи иллюстраций.
type BookHandler struct {
	books         service.BookService
	chapters      service.ChapterService
	illustrations service.IllustrationService
	references    service.ReferenceService
	logger        *zap.Logger
}

// NewBookHandler создает новый BookHandler.
func NewBookHandler(books service.BookService, chapters service.ChapterService, illustrations service.IllustrationService, references service.ReferenceService, logger *zap.Logger) *BookHandler {
	return &BookHandler{
		books:         books,
		chapters:      chapters,
		illustrations: illustrations,
		references:    references,
		logger:        logger.Named("BookHandler"),
	}
}

// RegisterRoutes регистрирует маршруты пайплайна.
func (h *BookHandler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")

	// --- Книги, их настройки и содержимое ---
	booksGroup := api.Group("/books")
	{
		booksGroup.POST("", h.createBook)
		booksGroup.GET("/:book_id", h.getBook)
		booksGroup.PATCH("/:book_id/settings", h.updateSettings)
		booksGroup.GET("/:book_id/chapters", h.getBookOverview)
		booksGroup.POST("/:book_id/chapters/generate", h.generateChapter)
		booksGroup.GET("/:book_id/chapters/:number", h.getRenderedChapter)
		booksGroup.POST("/:book_id/characters", h.createCharacter)
		booksGroup.GET("/:book_id/characters", h.listCharacters)
	}

	// --- Операции над отдельными сущностями ---
	api.POST("/characters/:character_id/reference", h.generateReference)
	api.GET("/chapters/:chapter_id/illustrations", h.listChapterIllustrations)
	api.POST("/illustrations/:job_id/run", h.runIllustration)
}

// --- Вспомогательные функции --- //

func handleServiceError(c echo.Context, err error) error {
	var statusCode int
	var apiErr APIError

	switch {
	case errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrChapterNotFound):
		statusCode = http.StatusNotFound
		apiErr = APIError{Message: err.Error()}
	case errors.Is(err, models.ErrBookHasActiveGeneration):
		statusCode = http.StatusConflict
		apiErr = APIError{Message: err.Error()}
	case errors.Is(err, models.ErrJobAlreadyRunning):
		statusCode = http.StatusConflict
		apiErr = APIError{Message: err.Error()}
	case errors.Is(err, models.ErrInvalidInput) || errors.Is(err, models.ErrBadRequest):
		statusCode = http.StatusBadRequest
		apiErr = APIError{Message: err.Error()}
	case errors.Is(err, models.ErrTextGenerationFailed):
		// Генерация текста не удалась после всех ретраев; причину отдаем клиенту
		statusCode = http.StatusInternalServerError
		apiErr = APIError{Message: err.Error()}
	default:
		statusCode = http.StatusInternalServerError
		apiErr = APIError{Message: "Internal server error"}
	}
	return c.JSON(statusCode, apiErr)
}

// --- Обработчики HTTP --- //

func (h *BookHandler) createBook(c echo.Context) error {
	var req createBookRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Message: "Invalid request body: " + err.Error()})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Message: "Validation failed: " + err.Error()})
	}

	book, err := h.books.CreateBook(c.Request().Context(), req.Title, req.Description, req.WordsPerChapter, req.ImagesPerChapter)
	if err != nil {
		if !errors.Is(err, models.ErrInvalidInput) {
			h.logger.Error("Error creating book", zap.Error(err))
		}
		return handleServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, book)
}

func (h *BookHandler) getBook(c echo.Context) error {
	idStr := c.Param("book_id")
	bookID, err := uuid.Parse(idStr)
	if err != nil {
		h.logger.Warn("Invalid book ID format in getBook", zap.String("book_id", idStr), zap.Error(err))
		return c.JSON(http.StatusBadRequest, APIError{Message: "Invalid book ID format"})
	}

	book, err := h.books.GetBook(c.Request().Context(), bookID)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			h.logger.Error("Error getting book", zap.String("book_id", bookID.String()), zap.Error(err))
		}
		return handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, book)
}

func (h *BookHandler) updateSettings(c echo.Context) error {
	idStr := c.Param("book_id")
	bookID, err := uuid.Parse(idStr)
	if err != nil {
		h.logger.Warn("Invalid book ID format in updateSettings", zap.String("book_id", idStr), zap.Error(err))
		return c.JSON(http.StatusBadRequest, APIError{Message: "Invalid book ID format"})
	}

	var req updateSettingsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Message: "Invalid request body: " + err.Error()})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Message: "Validation failed: " + err.Error()})
	}

	book, err := h.books.UpdateSettings(c.Request().Context(), bookID, req.WordsPerChapter, req.ImagesPerChapter)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) && !errors.Is(err, models.ErrInvalidInput) {
			h.logger.Error("Error updating book settings", zap.String("book_id", bookID.String()), zap.Error(err))
		}
		return handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, book)
}

func (h *BookHandler) getBookOverview(c echo.Context) error {
	idStr := c.Param("book_id")
	bookID, err := uuid.Parse(idStr)
	if err != nil {
		h.logger.Warn("Invalid book ID format in getBookOverview", zap.String("book_id", idStr), zap.Error(err))
		return c.JSON(http.StatusBadRequest, APIError{Message: "Invalid book ID format"})
	}

	overview, err := h.books.GetBookOverview(c.Request().Context(), bookID)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			h.logger.Error("Error getting book overview", zap.String("book_id", bookID.String()), zap.Error(err))
		}
		return handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, overview)
}

func (h *BookHandler) generateChapter(c echo.Context) error {
	idStr := c.Param("book_id")
	bookID, err := uuid.Parse(idStr)
	if err != nil {
		h.logger.Warn("Invalid book ID format in generateChapter", zap.String("book_id", idStr), zap.Error(err))
		return c.JSON(http.StatusBadRequest, APIError{Message: "Invalid book ID format"})
	}

	// Тело опционально: пустой запрос означает генерацию без подсказки
	var req generateChapterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Message: "Invalid request body: " + err.Error()})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Message: "Validation failed: " + err.Error()})
	}

	result, err := h.chapters.GenerateChapter(c.Request().Context(), bookID, req.Hint)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) &&
			!errors.Is(err, models.ErrBookHasActiveGeneration) {
			h.logger.Error("Error generating chapter", zap.String("book_id", bookID.String()), zap.Error(err))
		}
		return handleServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, result)
}

func (h *BookHandler) getRenderedChapter(c echo.Context) error {
	idStr := c.Param("book_id")
	bookID, err := uuid.Parse(idStr)
	if err != nil {
		h.logger.Warn("Invalid book ID format in getRenderedChapter", zap.String("book_id", idStr), zap.Error(err))
		return c.JSON(http.StatusBadRequest, APIError{Message: "Invalid book ID format"})
	}

	numberStr := c.Param("number")
	number, err := strconv.Atoi(numberStr)
	if err != nil || number < 1 {
		h.logger.Warn("Invalid chapter number in getRenderedChapter", zap.String("number", numberStr))
		return c.JSON(http.StatusBadRequest, APIError{Message: "Invalid chapter number"})
	}

	rendered, err := h.books.GetRenderedChapter(c.Request().Context(), bookID, number)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) && !errors.Is(err, models.ErrChapterNotFound) {
			h.logger.Error("Error getting rendered chapter",
				zap.String("book_id", bookID.String()),
				zap.Int("number", number),
				zap.Error(err),
			)
		}
		return handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, rendered)
}

func (h *BookHandler) createCharacter(c echo.Context) error {
	idStr := c.Param("book_id")
	bookID, err := uuid.Parse(idStr)
	if err != nil {
		h.logger.Warn("Invalid book ID format in createCharacter", zap.String("book_id", idStr), zap.Error(err))
		return c.JSON(http.StatusBadRequest, APIError{Message: "Invalid book ID format"})
	}

	var req createCharacterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Message: "Invalid request body: " + err.Error()})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Message: "Validation failed: " + err.Error()})
	}

	character, err := h.books.CreateCharacter(c.Request().Context(), bookID, req.Name, req.Description, req.VisualDescription)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) && !errors.Is(err, models.ErrInvalidInput) {
			h.logger.Error("Error creating character", zap.String("book_id", bookID.String()), zap.Error(err))
		}
		return handleServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, character)
}

func (h *BookHandler) listCharacters(c echo.Context) error {
	idStr := c.Param("book_id")
	bookID, err := uuid.Parse(idStr)
	if err != nil {
		h.logger.Warn("Invalid book ID format in listCharacters", zap.String("book_id", idStr), zap.Error(err))
		return c.JSON(http.StatusBadRequest, APIError{Message: "Invalid book ID format"})
	}

	characters, err := h.books.ListCharacters(c.Request().Context(), bookID)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			h.logger.Error("Error listing characters", zap.String("book_id", bookID.String()), zap.Error(err))
		}
		return handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, charactersResponse{Characters: characters})
}

func (h *BookHandler) generateReference(c echo.Context) error {
	idStr := c.Param("character_id")
	characterID, err := uuid.Parse(idStr)
	if err != nil {
		h.logger.Warn("Invalid character ID format in generateReference", zap.String("character_id", idStr), zap.Error(err))
		return c.JSON(http.StatusBadRequest, APIError{Message: "Invalid character ID format"})
	}

	character, err := h.references.GenerateReference(c.Request().Context(), characterID)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) && !errors.Is(err, models.ErrInvalidInput) {
			h.logger.Error("Error generating character reference", zap.String("character_id", characterID.String()), zap.Error(err))
		}
		return handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, character)
}

func (h *BookHandler) listChapterIllustrations(c echo.Context) error {
	idStr := c.Param("chapter_id")
	chapterID, err := uuid.Parse(idStr)
	if err != nil {
		h.logger.Warn("Invalid chapter ID format in listChapterIllustrations", zap.String("chapter_id", idStr), zap.Error(err))
		return c.JSON(http.StatusBadRequest, APIError{Message: "Invalid chapter ID format"})
	}

	jobs, err := h.illustrations.ListChapterJobs(c.Request().Context(), chapterID)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) && !errors.Is(err, models.ErrChapterNotFound) {
			h.logger.Error("Error listing chapter illustrations", zap.String("chapter_id", chapterID.String()), zap.Error(err))
		}
		return handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, illustrationsResponse{Illustrations: jobs})
}

func (h *BookHandler) runIllustration(c echo.Context) error {
	idStr := c.Param("job_id")
	jobID, err := uuid.Parse(idStr)
	if err != nil {
		h.logger.Warn("Invalid job ID format in runIllustration", zap.String("job_id", idStr), zap.Error(err))
		return c.JSON(http.StatusBadRequest, APIError{Message: "Invalid job ID format"})
	}

	// Тело опционально: ручной перезапуск обычно идет без cover_eligible
	var req runIllustrationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Message: "Invalid request body: " + err.Error()})
	}

	// RunJob доводит задачу до конечного состояния; исчерпание моделей
	// приходит сюда не ошибкой, а задачей в статусе error
	job, err := h.illustrations.RunJob(c.Request().Context(), jobID, req.CoverEligible)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) && !errors.Is(err, models.ErrJobAlreadyRunning) {
			h.logger.Error("Error running illustration job", zap.String("job_id", jobID.String()), zap.Error(err))
		}
		return handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, job)
}
