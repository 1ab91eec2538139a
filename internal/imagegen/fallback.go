package imagegen

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	openaigo "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"book-server/internal/config"
	"book-server/internal/models"
)

var (
	imageModelAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "book_server_image_model_attempts_total",
			Help: "Total number of image model attempts by model and status.",
		},
		[]string{"model", "status"},
	)
	imageAttemptDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "book_server_image_attempt_duration_seconds",
			Help:    "Duration of individual image model attempts.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model"},
	)
)

// FallbackClient перебирает модели в фиксированном порядке до первого
// изображения. Отказ одной модели не фатален: разные провайдеры недоступны
// по регионам и квотам в разное время, поэтому отказы ожидаемы и логируются
// на уровне warn. Прогресс перебора между вызовами не сохраняется.
type FallbackClient struct {
	candidates     []ImageModel
	attemptTimeout time.Duration
	styleSuffix    string
	logger         *zap.Logger
}

var _ Generator = (*FallbackClient)(nil)

// NewFallbackClient создает клиент по списку моделей из конфигурации.
// Имена с префиксом gemini идут через genai, dall-e через OpenAI Image API;
// ключ openAIAPIKey нужен только для DALL-E. Нераспознанные имена
// пропускаются с предупреждением.
func NewFallbackClient(ctx context.Context, cfg config.ImageGenConfig, openAIAPIKey string, logger *zap.Logger) (*FallbackClient, error) {
	log := logger.Named("ImageFallback")

	names := cfg.ModelList()
	if len(names) == 0 {
		return nil, fmt.Errorf("список моделей генерации изображений пуст")
	}

	var geminiClient *genai.Client
	var openaiClient *openaigo.Client

	candidates := make([]ImageModel, 0, len(names))
	for _, name := range names {
		switch {
		case strings.HasPrefix(name, "gemini"):
			if geminiClient == nil {
				var err error
				geminiClient, err = genai.NewClient(ctx, &genai.ClientConfig{
					APIKey:  cfg.GeminiAPIKey,
					Backend: genai.BackendGeminiAPI,
				})
				if err != nil {
					return nil, fmt.Errorf("ошибка создания Gemini клиента: %w", err)
				}
			}
			candidates = append(candidates, &geminiModel{client: geminiClient, name: name})
		case strings.HasPrefix(name, "dall-e"):
			if openaiClient == nil {
				openaiClient = openaigo.NewClient(openAIAPIKey)
			}
			candidates = append(candidates, &dalleModel{client: openaiClient, name: name})
		default:
			log.Warn("Unknown image model in config, skipping", zap.String("model", name))
		}
	}

	if len(candidates) == 0 {
		return nil, fmt.Errorf("ни одна модель генерации изображений из конфигурации не распознана")
	}

	log.Info("Image fallback client created",
		zap.Strings("models", names),
		zap.Duration("attempt_timeout", cfg.AttemptTimeout))

	return &FallbackClient{
		candidates:     candidates,
		attemptTimeout: cfg.AttemptTimeout,
		styleSuffix:    cfg.PromptStyleSuffix,
		logger:         log,
	}, nil
}

// NewFallbackClientFromModels создает клиент поверх готового списка моделей.
// Используется в тестах и там, где модели собираются вручную.
func NewFallbackClientFromModels(candidates []ImageModel, attemptTimeout time.Duration, styleSuffix string, logger *zap.Logger) *FallbackClient {
	return &FallbackClient{
		candidates:     candidates,
		attemptTimeout: attemptTimeout,
		styleSuffix:    styleSuffix,
		logger:         logger.Named("ImageFallback"),
	}
}

// Generate перебирает модели по порядку и возвращает первое изображение.
// Каждая попытка ограничена собственным таймаутом: зависшая модель
// отбрасывается, а не убивает задачу целиком. Отмена внешнего контекста
// останавливает перебор перед запуском следующего кандидата.
func (c *FallbackClient) Generate(ctx context.Context, scenePrompt string, references []models.CharacterReference) (*GeneratedImage, error) {
	req := ImageRequest{
		ReferencePrompt: BuildReferenceScenePrompt(scenePrompt, references),
		PlainPrompt:     BuildPlainScenePrompt(scenePrompt, references, c.styleSuffix),
		References:      references,
	}

	log := c.logger.With(zap.Int("reference_count", len(references)))

	for _, candidate := range c.candidates {
		if err := ctx.Err(); err != nil {
			log.Warn("Image generation cancelled before next candidate",
				zap.String("model", candidate.Name()),
				zap.Error(err))
			return nil, err
		}

		attemptCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
		startTime := time.Now()
		image, err := candidate.Generate(attemptCtx, req)
		cancel()
		duration := time.Since(startTime)

		imageAttemptDuration.With(prometheus.Labels{"model": candidate.Name()}).Observe(duration.Seconds())

		if err != nil {
			imageModelAttempts.With(prometheus.Labels{"model": candidate.Name(), "status": "error"}).Inc()
			log.Warn("Image model attempt failed, trying next candidate",
				zap.String("model", candidate.Name()),
				zap.Duration("duration", duration),
				zap.Error(err))
			continue
		}

		imageModelAttempts.With(prometheus.Labels{"model": candidate.Name(), "status": "success"}).Inc()
		log.Info("Image generated",
			zap.String("model", candidate.Name()),
			zap.Duration("duration", duration),
			zap.Int("bytes", len(image.Data)))
		return image, nil
	}

	log.Error("All image models exhausted", zap.Int("models_tried", len(c.candidates)))
	return nil, fmt.Errorf("%w: перепробовано моделей: %d", models.ErrAllModelsFailed, len(c.candidates))
}
