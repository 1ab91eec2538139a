package textgen

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	openaigo "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"book-server/internal/config"
	"book-server/internal/models"
)

// Константы цен для оценки стоимости запросов.
const (
	pricePerMillionInputTokensUSD  = 0.1 // Цена за 1М входных токенов в USD
	pricePerMillionOutputTokensUSD = 0.4 // Цена за 1М выходных токенов в USD
)

// GenerationParams параметры генерации текста.
// Используем указатели, чтобы отличить 0/0.0 от отсутствия.
type GenerationParams struct {
	Temperature *float64
	MaxTokens   *int
	TopP        *float64
}

var (
	aiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "book_server_ai_requests_total",
			Help: "Total number of requests to the text generation API.",
		},
		[]string{"model", "status"},
	)
	aiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "book_server_ai_request_duration_seconds",
			Help:    "Histogram of text generation API request durations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model"},
	)
	aiPromptTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "book_server_ai_prompt_tokens",
			Help:    "Histogram of prompt token counts.",
			Buckets: prometheus.LinearBuckets(250, 250, 20), // 250, 500, ..., 5000
		},
		[]string{"model"},
	)
	aiCompletionTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "book_server_ai_completion_tokens",
			Help:    "Histogram of completion token counts.",
			Buckets: prometheus.LinearBuckets(100, 100, 20), // 100, 200, ..., 2000
		},
		[]string{"model"},
	)
	aiTotalTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "book_server_ai_total_tokens",
			Help:    "Histogram of total token counts (prompt + completion).",
			Buckets: prometheus.LinearBuckets(350, 350, 20), // 350, 700, ..., 7000
		},
		[]string{"model"},
	)
	aiEstimatedCostUSD = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "book_server_ai_estimated_cost_usd_total",
			Help: "Estimated total cost of text generation requests in USD.",
		},
		[]string{"model"},
	)
)

// UsageInfo содержит информацию об использовании токенов и стоимости.
type UsageInfo struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	EstimatedCostUSD float64
}

// AIClient интерфейс для взаимодействия с провайдером генерации текста.
//
//go:generate mockery --name AIClient --output ../mocks --outpkg mocks --case=underscore
type AIClient interface {
	// GenerateText генерирует текст на основе системного промта, ввода пользователя и параметров.
	// Возвращает сгенерированный текст, информацию об использовании и ошибку.
	GenerateText(ctx context.Context, systemPrompt string, userInput string, params GenerationParams) (string, UsageInfo, error)
}

// calculateCost рассчитывает оценочную стоимость запроса на основе токенов.
func calculateCost(promptTokens, completionTokens int) float64 {
	inputCost := float64(promptTokens) * pricePerMillionInputTokensUSD / 1_000_000.0
	outputCost := float64(completionTokens) * pricePerMillionOutputTokensUSD / 1_000_000.0
	return inputCost + outputCost
}

// --- OpenAI Client Implementation ---

// openAIClient реализует AIClient с использованием go-openai.
type openAIClient struct {
	client *openaigo.Client
	model  string
	logger *zap.Logger
}

// GenerateText генерирует текст на основе системного промта и ввода пользователя.
func (c *openAIClient) GenerateText(ctx context.Context, systemPrompt string, userInput string, params GenerationParams) (string, UsageInfo, error) {
	usageInfo := UsageInfo{}

	if strings.TrimSpace(systemPrompt) == "" {
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error"}).Inc()
		return "", usageInfo, fmt.Errorf("%w: системный промт пуст", models.ErrTextGenerationFailed)
	}

	messages := []openaigo.ChatCompletionMessage{
		{
			Role:    openaigo.ChatMessageRoleSystem,
			Content: systemPrompt,
		},
	}
	if userInput != "" {
		messages = append(messages, openaigo.ChatCompletionMessage{
			Role:    openaigo.ChatMessageRoleUser,
			Content: userInput,
		})
	}

	startTime := time.Now()
	c.logger.Debug("Sending text generation request",
		zap.String("model", c.model),
		zap.Int("system_prompt_bytes", len(systemPrompt)),
		zap.Int("user_input_bytes", len(userInput)))

	resp, err := c.client.CreateChatCompletion(
		ctx,
		openaigo.ChatCompletionRequest{
			Model:       c.model,
			Messages:    messages,
			Temperature: float32Val(params.Temperature),
			MaxTokens:   intVal(params.MaxTokens),
			TopP:        float32Val(params.TopP),
		},
	)

	duration := time.Since(startTime)

	if err != nil {
		c.logger.Error("Text generation API returned error",
			zap.String("model", c.model),
			zap.Duration("duration", duration),
			zap.Error(err))
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error"}).Inc()
		return "", usageInfo, fmt.Errorf("%w: %v", models.ErrTextGenerationFailed, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		c.logger.Error("Text generation API returned empty response",
			zap.String("model", c.model),
			zap.Duration("duration", duration))
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error_empty_response"}).Inc()
		return "", usageInfo, fmt.Errorf("%w: получен пустой ответ", models.ErrTextGenerationFailed)
	}

	aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "success"}).Inc()
	aiRequestDuration.With(prometheus.Labels{"model": c.model}).Observe(duration.Seconds())

	generatedText := resp.Choices[0].Message.Content
	c.logger.Debug("Text generation response received",
		zap.String("model", c.model),
		zap.Duration("duration", duration),
		zap.Int("response_length", len(generatedText)))

	if resp.Usage.TotalTokens > 0 {
		aiPromptTokens.With(prometheus.Labels{"model": c.model}).Observe(float64(resp.Usage.PromptTokens))
		aiCompletionTokens.With(prometheus.Labels{"model": c.model}).Observe(float64(resp.Usage.CompletionTokens))
		aiTotalTokens.With(prometheus.Labels{"model": c.model}).Observe(float64(resp.Usage.TotalTokens))

		usageInfo.PromptTokens = resp.Usage.PromptTokens
		usageInfo.CompletionTokens = resp.Usage.CompletionTokens
		usageInfo.TotalTokens = resp.Usage.TotalTokens
		usageInfo.EstimatedCostUSD = calculateCost(resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
		if usageInfo.EstimatedCostUSD > 0 {
			aiEstimatedCostUSD.With(prometheus.Labels{"model": c.model}).Add(usageInfo.EstimatedCostUSD)
		}
	}

	return generatedText, usageInfo, nil
}

// float32Val конвертирует *float64 в float32 со значением по умолчанию 1.0.
func float32Val(f64 *float64) float32 {
	if f64 == nil {
		return 1.0
	}
	return float32(*f64)
}

// intVal конвертирует *int в int; 0 означает "без лимита" для API.
func intVal(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}

// --- Ollama Client Implementation ---

// ollamaClient реализует AIClient с использованием ollama/api.
type ollamaClient struct {
	client  *api.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// newOllamaClient создает новый клиент для взаимодействия с Ollama.
func newOllamaClient(cfg config.AIConfig, logger *zap.Logger) (AIClient, error) {
	httpClient := &http.Client{
		Timeout: cfg.Timeout,
	}

	// api.NewClient требует URL без суффикса /v1
	ollamaBaseURL := strings.TrimSuffix(cfg.OllamaURL, "/v1")
	ollamaBaseURL = strings.TrimSuffix(ollamaBaseURL, "/")

	parsedURL, err := url.Parse(ollamaBaseURL)
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга Ollama Base URL '%s': %w", ollamaBaseURL, err)
	}

	client := api.NewClient(parsedURL, httpClient)

	logger.Info("Ollama client created",
		zap.String("base_url", ollamaBaseURL),
		zap.String("model", cfg.Model),
		zap.Duration("timeout", cfg.Timeout))

	return &ollamaClient{
		client:  client,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  logger,
	}, nil
}

// GenerateText генерирует текст с использованием Ollama.
func (c *ollamaClient) GenerateText(ctx context.Context, systemPrompt string, userInput string, params GenerationParams) (string, UsageInfo, error) {
	usageInfo := UsageInfo{EstimatedCostUSD: 0} // Ollama локальный, стоимость 0

	if strings.TrimSpace(systemPrompt) == "" {
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error"}).Inc()
		return "", usageInfo, fmt.Errorf("%w: системный промт пуст", models.ErrTextGenerationFailed)
	}

	messages := []api.Message{
		{Role: "system", Content: systemPrompt},
	}
	if userInput != "" {
		messages = append(messages, api.Message{Role: "user", Content: userInput})
	}

	req := &api.ChatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   func(b bool) *bool { return &b }(false),
		Options: map[string]interface{}{
			"temperature": params.Temperature,
			"top_p":       params.TopP,
			"num_predict": intVal(params.MaxTokens),
		},
	}

	requestCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	startTime := time.Now()
	c.logger.Debug("Sending text generation request to Ollama",
		zap.String("model", c.model),
		zap.Int("system_prompt_bytes", len(systemPrompt)),
		zap.Int("user_input_bytes", len(userInput)))

	var resp api.ChatResponse
	err := c.client.Chat(requestCtx, req, func(r api.ChatResponse) error {
		resp = r // Сохраняем последний (полный) ответ
		return nil
	})

	duration := time.Since(startTime)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			c.logger.Error("Ollama request timed out",
				zap.Duration("timeout", c.timeout),
				zap.Duration("duration", duration),
				zap.Error(err))
		} else {
			c.logger.Error("Ollama API returned error",
				zap.Duration("duration", duration),
				zap.Error(err))
		}
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error"}).Inc()
		return "", usageInfo, fmt.Errorf("%w: %v", models.ErrTextGenerationFailed, err)
	}

	if resp.Message.Content == "" {
		c.logger.Error("Ollama API returned empty response", zap.Duration("duration", duration))
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error_empty_response"}).Inc()
		return "", usageInfo, fmt.Errorf("%w: получен пустой ответ", models.ErrTextGenerationFailed)
	}

	aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "success"}).Inc()
	aiRequestDuration.With(prometheus.Labels{"model": c.model}).Observe(duration.Seconds())

	generatedText := resp.Message.Content
	c.logger.Debug("Ollama response received",
		zap.Duration("duration", duration),
		zap.Int("response_length", len(generatedText)))

	usageInfo.PromptTokens = resp.PromptEvalCount
	usageInfo.CompletionTokens = resp.EvalCount
	usageInfo.TotalTokens = resp.PromptEvalCount + resp.EvalCount

	if usageInfo.TotalTokens > 0 {
		aiPromptTokens.With(prometheus.Labels{"model": c.model}).Observe(float64(usageInfo.PromptTokens))
		aiCompletionTokens.With(prometheus.Labels{"model": c.model}).Observe(float64(usageInfo.CompletionTokens))
		aiTotalTokens.With(prometheus.Labels{"model": c.model}).Observe(float64(usageInfo.TotalTokens))
	}

	return generatedText, usageInfo, nil
}

// --- Factory Function ---

// NewAIClient создает новый клиент для взаимодействия с AI в зависимости от конфигурации.
func NewAIClient(cfg config.AIConfig, logger *zap.Logger) (AIClient, error) {
	log := logger.Named("AIClient")

	switch strings.ToLower(cfg.Provider) {
	case "openai":
		openaiConfig := openaigo.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			openaiConfig.BaseURL = cfg.BaseURL
		}
		openaiConfig.HTTPClient = &http.Client{
			Timeout: cfg.Timeout,
		}
		client := openaigo.NewClientWithConfig(openaiConfig)
		log.Info("OpenAI client created",
			zap.String("base_url", openaiConfig.BaseURL),
			zap.String("model", cfg.Model),
			zap.Duration("timeout", cfg.Timeout))
		return &openAIClient{
			client: client,
			model:  cfg.Model,
			logger: log,
		}, nil
	case "ollama":
		return newOllamaClient(cfg, log)
	default:
		return nil, fmt.Errorf("неизвестный тип AI клиента: '%s'", cfg.Provider)
	}
}
