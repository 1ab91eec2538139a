package textgen

import (
	"context"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"book-server/internal/models"
)

// Параметры кэша переводов. Описания сцен внутри книги часто повторяются
// при повторных запусках задач, поэтому переводы кэшируются в памяти.
const (
	translationCacheExpiration = 1 * time.Hour
	translationCleanupInterval = 15 * time.Minute
	translationMaxTokens       = 500
	translationTemperature     = 0.2
)

// translationSystemPrompt - инструкция перевода описаний сцен для художника.
const translationSystemPrompt = `Translate the following Russian text to English. Keep character names in their original form.
Focus on preserving the meaning and context for children's book illustrations.
Reply with the translation only, without quotes or commentary.`

// Translator переводит описания сцен на английский для моделей генерации
// изображений. Перевод вспомогательный: при любой ошибке возвращается
// исходный текст, задача иллюстрации из-за перевода не падает.
type Translator interface {
	TranslateToEnglish(ctx context.Context, text string) string
}

// aiTranslator реализует Translator поверх текстового AI клиента.
type aiTranslator struct {
	client AIClient
	cache  *cache.Cache
	logger *zap.Logger
}

var _ Translator = (*aiTranslator)(nil)

// NewTranslator создает переводчик с кэшем переводов в памяти.
func NewTranslator(client AIClient, logger *zap.Logger) Translator {
	return &aiTranslator{
		client: client,
		cache:  cache.New(translationCacheExpiration, translationCleanupInterval),
		logger: logger.Named("Translator"),
	}
}

// TranslateToEnglish переводит текст на английский. Результат кэшируется по
// исходному тексту. При ошибке провайдера или пустом ответе возвращается
// исходный текст без изменений.
func (t *aiTranslator) TranslateToEnglish(ctx context.Context, text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return text
	}

	if cached, found := t.cache.Get(trimmed); found {
		if translated, ok := cached.(string); ok {
			t.logger.Debug("Translation cache hit", zap.Int("source_length", len(trimmed)))
			return translated
		}
	}

	params := GenerationParams{
		Temperature: models.Float64Ptr(translationTemperature),
		MaxTokens:   models.IntPtr(translationMaxTokens),
	}

	translated, _, err := t.client.GenerateText(ctx, translationSystemPrompt, trimmed, params)
	if err != nil {
		t.logger.Warn("Translation failed, using original text",
			zap.Int("source_length", len(trimmed)),
			zap.Error(err))
		return text
	}

	result := strings.TrimSpace(translated)
	if result == "" {
		t.logger.Warn("Translation returned empty text, using original")
		return text
	}

	t.cache.Set(trimmed, result, cache.DefaultExpiration)
	return result
}
