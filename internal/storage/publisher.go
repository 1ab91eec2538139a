// Package storage публикует сгенерированные изображения в файловое
// хранилище и выдает их публичные URL.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"book-server/internal/config"
	"book-server/internal/interfaces"
	"book-server/internal/models"
)

// FilePublisher сохраняет изображения на смонтированный том и формирует
// публичный URL. Имя файла включает наносекундную метку времени, поэтому
// повторная публикация того же ключа всегда дает новый URL и не затирает
// ранее опубликованные копии.
type FilePublisher struct {
	savePath string
	baseURL  string
	logger   *zap.Logger
}

var _ interfaces.BlobPublisher = (*FilePublisher)(nil)

// NewFilePublisher создает публикатор изображений поверх локального каталога.
func NewFilePublisher(cfg config.StorageConfig, logger *zap.Logger) (*FilePublisher, error) {
	if cfg.SavePath == "" {
		return nil, errors.New("image save path (IMAGE_SAVE_PATH) is not configured")
	}
	if cfg.PublicBaseURL == "" {
		return nil, errors.New("image public base URL (IMAGE_PUBLIC_BASE_URL) is not configured")
	}
	if err := os.MkdirAll(cfg.SavePath, 0755); err != nil {
		return nil, fmt.Errorf("ошибка создания каталога изображений: %w", err)
	}

	return &FilePublisher{
		savePath: cfg.SavePath,
		baseURL:  strings.TrimRight(cfg.PublicBaseURL, "/"),
		logger:   logger.Named("FilePublisher"),
	}, nil
}

// Publish записывает данные изображения в файл и возвращает публичный URL.
func (p *FilePublisher) Publish(ctx context.Context, data []byte, mimeType string, suggestedKey string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: пустые данные изображения", models.ErrImageSaveFailed)
	}

	fileName := fmt.Sprintf("%s_%d%s", sanitizeKey(suggestedKey), time.Now().UnixNano(), extensionFor(mimeType))
	filePath := filepath.Join(p.savePath, fileName)

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		p.logger.Error("Failed to save image to file", zap.String("path", filePath), zap.Error(err))
		return "", fmt.Errorf("%w: %v", models.ErrImageSaveFailed, err)
	}

	imageURL := p.baseURL + "/" + fileName
	p.logger.Info("Image published",
		zap.String("path", filePath),
		zap.String("url", imageURL),
		zap.Int("size_bytes", len(data)))
	return imageURL, nil
}

// sanitizeKey приводит предложенный ключ к плоскому имени файла:
// разделители путей и прочие спецсимволы заменяются подчеркиванием.
func sanitizeKey(key string) string {
	if key == "" {
		return "image"
	}

	var sb strings.Builder
	sb.Grow(len(key))
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	return sb.String()
}

// extensionFor подбирает расширение файла по MIME-типу изображения.
func extensionFor(mimeType string) string {
	switch strings.ToLower(mimeType) {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}
