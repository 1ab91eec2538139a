// Package references разрешает референсные портреты персонажей книги
// в форму, пригодную для запросов генерации изображений.
package references

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"book-server/internal/interfaces"
	"book-server/internal/models"
)

const (
	referenceCleanupInterval = 30 * time.Minute
	referenceFetchTimeout    = 30 * time.Second
)

// Resolver собирает референсы персонажей книги. Байты берутся из БД, а при
// их отсутствии скачиваются по reference_url; скачанные байты кэшируются,
// чтобы повторные задачи одной главы не качали одно и то же.
type Resolver struct {
	characterRepo interfaces.CharacterRepository
	db            interfaces.DBTX
	httpClient    *http.Client
	cache         *cache.Cache
	logger        *zap.Logger
}

var _ interfaces.ReferenceResolver = (*Resolver)(nil)

// NewResolver создает резолвер референсов с кэшем скачанных изображений.
func NewResolver(characterRepo interfaces.CharacterRepository, db interfaces.DBTX, cacheTTL time.Duration, logger *zap.Logger) *Resolver {
	return &Resolver{
		characterRepo: characterRepo,
		db:            db,
		httpClient:    &http.Client{Timeout: referenceFetchTimeout},
		cache:         cache.New(cacheTTL, referenceCleanupInterval),
		logger:        logger.Named("ReferenceResolver"),
	}
}

// ResolveForBook возвращает референсы персонажей книги в порядке ростера.
// Персонаж без референса пропускается молча: отсутствие референса не
// ошибка, он просто не получит сохранение внешности в этой иллюстрации.
// Неудачное скачивание тоже деградирует до пропуска персонажа.
func (r *Resolver) ResolveForBook(ctx context.Context, bookID uuid.UUID) ([]models.CharacterReference, error) {
	characters, err := r.characterRepo.ListByBook(ctx, r.db, bookID)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки персонажей книги: %w", err)
	}

	references := make([]models.CharacterReference, 0, len(characters))
	for _, character := range characters {
		if !character.HasReference {
			continue
		}

		data := character.ReferenceImage
		if len(data) == 0 && character.ReferenceURL != nil && *character.ReferenceURL != "" {
			fetched, fetchErr := r.fetchReference(ctx, *character.ReferenceURL)
			if fetchErr != nil {
				r.logger.Warn("Failed to fetch reference image, skipping character",
					zap.String("character_id", character.ID.String()),
					zap.String("character_name", character.Name),
					zap.Error(fetchErr))
				continue
			}
			data = fetched
		}
		if len(data) == 0 {
			continue
		}

		description := character.VisualDescription
		if description == "" {
			description = character.Description
		}

		references = append(references, models.CharacterReference{
			Name:        character.Name,
			Description: description,
			ImageBytes:  data,
			MimeType:    http.DetectContentType(data),
		})
	}

	r.logger.Debug("Character references resolved",
		zap.String("book_id", bookID.String()),
		zap.Int("roster_size", len(characters)),
		zap.Int("references", len(references)))
	return references, nil
}

// fetchReference скачивает референс по URL. Cache-busting суффикс запроса
// отрезается до скачивания; им же чистится ключ кэша.
func (r *Resolver) fetchReference(ctx context.Context, rawURL string) ([]byte, error) {
	cleanURL := stripCacheBusting(rawURL)

	if cached, found := r.cache.Get(cleanURL); found {
		if data, ok := cached.([]byte); ok {
			return data, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cleanURL, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса референса: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка скачивания референса: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("неожиданный статус ответа при скачивании референса: %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения тела ответа референса: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("референс по URL пуст")
	}

	r.cache.Set(cleanURL, data, cache.DefaultExpiration)
	return data, nil
}

func stripCacheBusting(rawURL string) string {
	if i := strings.IndexByte(rawURL, '?'); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}
