package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"book-server/internal/logger"
)

// Config структура для хранения всей конфигурации приложения.
type Config struct {
	AppEnv   string `env:"APP_ENV" env-default:"development"`
	Logger   logger.Config
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	AI       AIConfig
	ImageGen ImageGenConfig
	Storage  StorageConfig
	Metrics  MetricsConfig
}

// ServerConfig настройки HTTP сервера.
type ServerConfig struct {
	Port        string        `env:"SERVER_PORT" env-default:"8080"`
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" env-default:"15s"`
	// Генерация главы выполняется синхронно внутри запроса и может занимать
	// минуты, таймаут записи должен это покрывать
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" env-default:"600s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig конфигурация для подключения к PostgreSQL.
type DatabaseConfig struct {
	Host        string        `env:"DB_HOST" env-default:"localhost"`
	Port        string        `env:"DB_PORT" env-default:"5432"`
	User        string        `env:"DB_USER" env-default:"postgres"`
	Password    string        `env:"DB_PASSWORD" env-required:"true"`
	Name        string        `env:"DB_NAME" env-default:"book_db"`
	SSLMode     string        `env:"DB_SSL_MODE" env-default:"disable"`
	MaxConns    int           `env:"DB_MAX_CONNECTIONS" env-default:"10"`
	IdleTimeout time.Duration `env:"DB_MAX_IDLE_MINUTES" env-default:"5m"`
}

// GetDSN возвращает строку подключения (DSN) для PostgreSQL.
func (c DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

// MaskedDSN возвращает DSN с замаскированным паролем для логирования.
func (c DatabaseConfig) MaskedDSN() string {
	return fmt.Sprintf("postgres://%s:***@%s:%s/%s?sslmode=%s",
		c.User, c.Host, c.Port, c.Name, c.SSLMode)
}

// RedisConfig конфигурация для подключения к Redis.
type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string        `env:"REDIS_PASSWORD" env-default:""`
	DB       int           `env:"REDIS_DB" env-default:"0"`
	LockTTL  time.Duration `env:"GENERATION_LOCK_TTL" env-default:"10m"` // TTL блокировки генерации на книгу
}

// RabbitMQConfig конфигурация для подключения к RabbitMQ.
type RabbitMQConfig struct {
	URL               string      `env:"RABBITMQ_URL" env-required:"true"`
	ConsumerName      string      `env:"RABBITMQ_CONSUMER_NAME" env-default:"illustration_worker"`
	TaskQueue         QueueConfig `env-prefix:"RABBITMQ_ILLUSTRATION_TASK_QUEUE_"`
	NotificationQueue QueueConfig `env-prefix:"RABBITMQ_JOB_NOTIFICATION_QUEUE_"`
}

// QueueConfig настройки для конкретной очереди RabbitMQ.
type QueueConfig struct {
	Name       string `env:"NAME" env-required:"true"`
	Durable    bool   `env:"DURABLE" env-default:"true"`
	AutoDelete bool   `env:"AUTO_DELETE" env-default:"false"`
	Exclusive  bool   `env:"EXCLUSIVE" env-default:"false"`
	NoWait     bool   `env:"NO_WAIT" env-default:"false"`
}

// AIConfig настройки клиента генерации текста.
type AIConfig struct {
	Provider       string        `env:"AI_PROVIDER" env-default:"openai"` // openai или ollama
	BaseURL        string        `env:"AI_BASE_URL" env-default:""`
	APIKey         string        `env:"AI_API_KEY" env-default:""`
	Model          string        `env:"AI_TEXT_MODEL" env-default:"gpt-4o"`
	Timeout        time.Duration `env:"AI_TIMEOUT" env-default:"120s"`
	MaxAttempts    int           `env:"AI_MAX_ATTEMPTS" env-default:"3"`
	BaseRetryDelay time.Duration `env:"AI_BASE_RETRY_DELAY" env-default:"1s"`
	Temperature    float32       `env:"AI_TEMPERATURE" env-default:"0.8"`
	MaxTokens      int           `env:"AI_MAX_TOKENS" env-default:"4096"`
	OllamaURL      string        `env:"OLLAMA_BASE_URL" env-default:"http://localhost:11434"`
}

// ImageGenConfig настройки генерации изображений.
type ImageGenConfig struct {
	Models            string        `env:"IMAGE_MODELS" env-default:"gemini-2.5-flash-image-preview,gemini-2.0-flash-exp,dall-e-3"`
	GeminiAPIKey      string        `env:"GEMINI_API_KEY" env-default:""`
	AttemptTimeout    time.Duration `env:"IMAGE_ATTEMPT_TIMEOUT" env-default:"90s"`
	PromptStyleSuffix string        `env:"IMAGE_PROMPT_STYLE_SUFFIX" env-default:", detailed book illustration, painterly style, cinematic lighting, rich color palette, no text or captions"`
	ReferenceCacheTTL time.Duration `env:"REFERENCE_CACHE_TTL" env-default:"15m"`
}

// ModelList возвращает упорядоченный список моделей для генерации изображений.
func (c ImageGenConfig) ModelList() []string {
	parts := strings.Split(c.Models, ",")
	models := make([]string, 0, len(parts))
	for _, p := range parts {
		if m := strings.TrimSpace(p); m != "" {
			models = append(models, m)
		}
	}
	return models
}

// StorageConfig настройки хранилища изображений.
type StorageConfig struct {
	SavePath      string `env:"IMAGE_SAVE_PATH" env-required:"true"`       // Путь для сохранения изображений
	PublicBaseURL string `env:"IMAGE_PUBLIC_BASE_URL" env-required:"true"` // Базовый URL для изображений
}

// MetricsConfig настройки отправки метрик.
type MetricsConfig struct {
	PushGatewayURL string `env:"PUSHGATEWAY_URL" env-default:""` // Если пусто, отправка метрик отключена
}

// Load загружает конфигурацию из переменных окружения и .env файла.
func Load() *Config {
	// Загружаем .env файл (игнорируем ошибку, если файла нет)
	_ = godotenv.Load()

	var cfg Config

	// Используем cleanenv для загрузки конфигурации
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	return &cfg
}
