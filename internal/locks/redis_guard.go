// Package locks реализует распределенную блокировку процесса генерации глав.
package locks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"book-server/internal/interfaces"
	"book-server/internal/models"
)

// Compile-time check to ensure redisGenerationGuard implements GenerationGuard
var _ interfaces.GenerationGuard = (*redisGenerationGuard)(nil)

// redisGenerationGuard ограничивает книгу одной активной генерацией главы
// через SET NX с TTL. TTL страхует от вечной блокировки, если процесс
// завершился, не освободив ее.
type redisGenerationGuard struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisGenerationGuard creates a new Redis-backed GenerationGuard.
func NewRedisGenerationGuard(client *redis.Client, ttl time.Duration, logger *zap.Logger) interfaces.GenerationGuard {
	return &redisGenerationGuard{
		client: client,
		ttl:    ttl,
		logger: logger.Named("GenerationGuard"),
	}
}

func lockKey(bookID uuid.UUID) string {
	return fmt.Sprintf("generation_lock:%s", bookID)
}

// Acquire пытается захватить блокировку генерации книги. Возвращает
// models.ErrBookHasActiveGeneration, если блокировка уже удерживается.
func (g *redisGenerationGuard) Acquire(ctx context.Context, bookID uuid.UUID) error {
	key := lockKey(bookID)

	ok, err := g.client.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), g.ttl).Result()
	if err != nil {
		g.logger.Error("Failed to acquire generation lock", zap.String("book_id", bookID.String()), zap.Error(err))
		return fmt.Errorf("ошибка захвата блокировки генерации: %w", err)
	}
	if !ok {
		g.logger.Debug("Generation lock is already held", zap.String("book_id", bookID.String()))
		return models.ErrBookHasActiveGeneration
	}

	g.logger.Debug("Generation lock acquired", zap.String("book_id", bookID.String()), zap.Duration("ttl", g.ttl))
	return nil
}

// Release освобождает блокировку генерации книги. Освобождение уже
// отсутствующей блокировки не считается ошибкой.
func (g *redisGenerationGuard) Release(ctx context.Context, bookID uuid.UUID) error {
	key := lockKey(bookID)

	if err := g.client.Del(ctx, key).Err(); err != nil {
		g.logger.Error("Failed to release generation lock", zap.String("book_id", bookID.String()), zap.Error(err))
		return fmt.Errorf("ошибка освобождения блокировки генерации: %w", err)
	}

	g.logger.Debug("Generation lock released", zap.String("book_id", bookID.String()))
	return nil
}
