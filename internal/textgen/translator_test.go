package textgen_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"book-server/internal/mocks"
	"book-server/internal/models"
	"book-server/internal/textgen"
)

func TestTranslator_TranslatesAndCaches(t *testing.T) {
	client := mocks.NewMockAIClient(t)
	translator := textgen.NewTranslator(client, zap.NewNop())

	source := "рыжий кот спит на подоконнике"

	client.On("GenerateText",
		mock.Anything,
		mock.MatchedBy(func(systemPrompt string) bool {
			return strings.Contains(systemPrompt, "Translate")
		}),
		source,
		mock.MatchedBy(func(params textgen.GenerationParams) bool {
			return params.Temperature != nil && *params.Temperature == 0.2 &&
				params.MaxTokens != nil && *params.MaxTokens == 500
		}),
	).Return("  a ginger cat sleeps on the windowsill  ", textgen.UsageInfo{}, nil).Once()

	// Первый вызов идет в провайдера, ответ чистится от пробелов
	got := translator.TranslateToEnglish(context.Background(), source)
	assert.Equal(t, "a ginger cat sleeps on the windowsill", got)

	// Повторные вызовы берут перевод из кэша, в том числе с лишними пробелами вокруг
	assert.Equal(t, got, translator.TranslateToEnglish(context.Background(), source))
	assert.Equal(t, got, translator.TranslateToEnglish(context.Background(), "  "+source+"  "))

	client.AssertExpectations(t)
}

func TestTranslator_ProviderErrorFallsBackToOriginal(t *testing.T) {
	client := mocks.NewMockAIClient(t)
	translator := textgen.NewTranslator(client, zap.NewNop())

	source := "мальчик бежит по лесу"
	client.On("GenerateText", mock.Anything, mock.Anything, source, mock.Anything).
		Return("", textgen.UsageInfo{}, models.ErrTextGenerationFailed).Twice()

	assert.Equal(t, source, translator.TranslateToEnglish(context.Background(), source))

	// Неудачный перевод не кэшируется, следующий вызов снова идет в провайдера
	assert.Equal(t, source, translator.TranslateToEnglish(context.Background(), source))

	client.AssertExpectations(t)
}

func TestTranslator_EmptyResponseFallsBackToOriginal(t *testing.T) {
	client := mocks.NewMockAIClient(t)
	translator := textgen.NewTranslator(client, zap.NewNop())

	source := "сова сидит на ветке"
	client.On("GenerateText", mock.Anything, mock.Anything, source, mock.Anything).
		Return("   ", textgen.UsageInfo{}, nil).Once()

	assert.Equal(t, source, translator.TranslateToEnglish(context.Background(), source))

	client.AssertExpectations(t)
}

func TestTranslator_BlankInputPassesThrough(t *testing.T) {
	client := mocks.NewMockAIClient(t)
	translator := textgen.NewTranslator(client, zap.NewNop())

	assert.Equal(t, "", translator.TranslateToEnglish(context.Background(), ""))
	assert.Equal(t, "   ", translator.TranslateToEnglish(context.Background(), "   "))

	client.AssertNotCalled(t, "GenerateText")
}
