package interfaces

import (
	"context"

	"github.com/google/uuid"

	"book-server/internal/models"
)

// BlobPublisher uploads raw image bytes under a unique key and returns a
// durable, publicly fetchable URL.
//
//go:generate mockery --name BlobPublisher --output ../mocks --outpkg mocks --case=underscore
type BlobPublisher interface {
	// Publish stores the bytes and returns the public URL. The implementation
	// derives a globally unique key from suggestedKey (job id) and a
	// high-resolution timestamp so concurrent runs never overwrite each other.
	Publish(ctx context.Context, data []byte, mimeType, suggestedKey string) (string, error)
}

// ReferenceResolver собирает референсы персонажей книги для передачи
// в генерацию изображений. Персонажи без референса молча пропускаются.
//
//go:generate mockery --name ReferenceResolver --output ../mocks --outpkg mocks --case=underscore
type ReferenceResolver interface {
	ResolveForBook(ctx context.Context, bookID uuid.UUID) ([]models.CharacterReference, error)
}

// GenerationGuard ограничивает книгу одной активной генерацией главы.
//
//go:generate mockery --name GenerationGuard --output ../mocks --outpkg mocks --case=underscore
type GenerationGuard interface {
	// Acquire возвращает models.ErrBookHasActiveGeneration, если генерация
	// для книги уже идет.
	Acquire(ctx context.Context, bookID uuid.UUID) error
	Release(ctx context.Context, bookID uuid.UUID) error
}
