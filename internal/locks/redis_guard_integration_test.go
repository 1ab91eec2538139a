package locks_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"book-server/internal/interfaces"
	"book-server/internal/locks"
	"book-server/internal/models"
)

// GenerationGuardSuite гоняет блокировку генерации по настоящему Redis.
type GenerationGuardSuite struct {
	suite.Suite
	ctx         context.Context
	rdContainer *tcredis.RedisContainer
	client      *redis.Client
	guard       interfaces.GenerationGuard
	logger      *zap.Logger
}

func (s *GenerationGuardSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error

	s.logger, err = zap.NewDevelopment()
	require.NoError(s.T(), err, "Failed to create logger for tests")

	s.rdContainer, err = tcredis.Run(s.ctx,
		"docker.io/redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("* Ready to accept connections").
				WithOccurrence(1).
				WithStartupTimeout(1*time.Minute),
		),
	)
	require.NoError(s.T(), err, "Failed to start redis container")

	host, err := s.rdContainer.Host(s.ctx)
	require.NoError(s.T(), err)
	port, err := s.rdContainer.MappedPort(s.ctx, "6379/tcp")
	require.NoError(s.T(), err)

	s.client = redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	_, err = s.client.Ping(s.ctx).Result()
	require.NoError(s.T(), err, "Failed to connect to test redis")

	s.guard = locks.NewRedisGenerationGuard(s.client, 10*time.Minute, s.logger)
}

func (s *GenerationGuardSuite) TearDownSuite() {
	if s.client != nil {
		s.client.Close()
	}
	if s.rdContainer != nil {
		if err := s.rdContainer.Terminate(s.ctx); err != nil {
			s.logger.Error("Failed to terminate redis container", zap.Error(err))
		}
	}
}

func (s *GenerationGuardSuite) SetupTest() {
	require.NoError(s.T(), s.client.FlushDB(s.ctx).Err(), "Failed to flush Redis DB")
}

func TestGenerationGuardSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	suite.Run(t, new(GenerationGuardSuite))
}

func (s *GenerationGuardSuite) TestAcquireConflictsPerBook() {
	t := s.T()
	bookID := uuid.New()
	otherBookID := uuid.New()

	require.NoError(t, s.guard.Acquire(s.ctx, bookID))

	err := s.guard.Acquire(s.ctx, bookID)
	require.ErrorIs(t, err, models.ErrBookHasActiveGeneration,
		"Second acquire for the same book must be rejected")

	// Блокировка действует на книгу, а не глобально
	require.NoError(t, s.guard.Acquire(s.ctx, otherBookID))
}

func (s *GenerationGuardSuite) TestReleaseAllowsReacquire() {
	t := s.T()
	bookID := uuid.New()

	require.NoError(t, s.guard.Acquire(s.ctx, bookID))
	require.NoError(t, s.guard.Release(s.ctx, bookID))
	require.NoError(t, s.guard.Acquire(s.ctx, bookID))
}

func (s *GenerationGuardSuite) TestReleaseWithoutLockIsNoop() {
	t := s.T()

	require.NoError(t, s.guard.Release(s.ctx, uuid.New()))
}

func (s *GenerationGuardSuite) TestLockCarriesTTL() {
	t := s.T()
	bookID := uuid.New()

	require.NoError(t, s.guard.Acquire(s.ctx, bookID))

	ttl, err := s.client.PTTL(s.ctx, fmt.Sprintf("generation_lock:%s", bookID)).Result()
	require.NoError(t, err)
	require.Greater(t, ttl, time.Duration(0), "Lock key must expire on its own")
	require.LessOrEqual(t, ttl, 10*time.Minute)
}

func (s *GenerationGuardSuite) TestLockExpiresAfterTTL() {
	t := s.T()
	bookID := uuid.New()

	shortGuard := locks.NewRedisGenerationGuard(s.client, 100*time.Millisecond, s.logger)
	require.NoError(t, shortGuard.Acquire(s.ctx, bookID))
	require.ErrorIs(t, shortGuard.Acquire(s.ctx, bookID), models.ErrBookHasActiveGeneration)

	require.Eventually(t, func() bool {
		return shortGuard.Acquire(s.ctx, bookID) == nil
	}, 2*time.Second, 50*time.Millisecond, "Expired lock should become acquirable again")
}
