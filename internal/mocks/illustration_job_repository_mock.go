package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"book-server/internal/interfaces"
	"book-server/internal/models"
)

// MockIllustrationJobRepository is a mock type for the IllustrationJobRepository type
type MockIllustrationJobRepository struct {
	mock.Mock
}

// CreateBatch provides a mock function with given fields: ctx, querier, jobs
func (_m *MockIllustrationJobRepository) CreateBatch(ctx context.Context, querier interfaces.DBTX, jobs []*models.IllustrationJob) ([]*models.IllustrationJob, error) {
	ret := _m.Called(ctx, querier, jobs)

	var r0 []*models.IllustrationJob
	if rf, ok := ret.Get(0).(func(context.Context, interfaces.DBTX, []*models.IllustrationJob) []*models.IllustrationJob); ok {
		r0 = rf(ctx, querier, jobs)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]*models.IllustrationJob)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, interfaces.DBTX, []*models.IllustrationJob) error); ok {
		r1 = rf(ctx, querier, jobs)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// GetByID provides a mock function with given fields: ctx, querier, id
func (_m *MockIllustrationJobRepository) GetByID(ctx context.Context, querier interfaces.DBTX, id uuid.UUID) (*models.IllustrationJob, error) {
	ret := _m.Called(ctx, querier, id)

	var r0 *models.IllustrationJob
	if rf, ok := ret.Get(0).(func(context.Context, interfaces.DBTX, uuid.UUID) *models.IllustrationJob); ok {
		r0 = rf(ctx, querier, id)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*models.IllustrationJob)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, interfaces.DBTX, uuid.UUID) error); ok {
		r1 = rf(ctx, querier, id)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ListByChapter provides a mock function with given fields: ctx, querier, chapterID
func (_m *MockIllustrationJobRepository) ListByChapter(ctx context.Context, querier interfaces.DBTX, chapterID uuid.UUID) ([]*models.IllustrationJob, error) {
	ret := _m.Called(ctx, querier, chapterID)

	var r0 []*models.IllustrationJob
	if rf, ok := ret.Get(0).(func(context.Context, interfaces.DBTX, uuid.UUID) []*models.IllustrationJob); ok {
		r0 = rf(ctx, querier, chapterID)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]*models.IllustrationJob)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, interfaces.DBTX, uuid.UUID) error); ok {
		r1 = rf(ctx, querier, chapterID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ListByChapters provides a mock function with given fields: ctx, querier, chapterIDs
func (_m *MockIllustrationJobRepository) ListByChapters(ctx context.Context, querier interfaces.DBTX, chapterIDs []uuid.UUID) ([]*models.IllustrationJob, error) {
	ret := _m.Called(ctx, querier, chapterIDs)

	var r0 []*models.IllustrationJob
	if rf, ok := ret.Get(0).(func(context.Context, interfaces.DBTX, []uuid.UUID) []*models.IllustrationJob); ok {
		r0 = rf(ctx, querier, chapterIDs)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]*models.IllustrationJob)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, interfaces.DBTX, []uuid.UUID) error); ok {
		r1 = rf(ctx, querier, chapterIDs)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// UpdateStatus provides a mock function with given fields: ctx, querier, id, status, imageURL, errorDetails
func (_m *MockIllustrationJobRepository) UpdateStatus(ctx context.Context, querier interfaces.DBTX, id uuid.UUID, status models.IllustrationStatus, imageURL *string, errorDetails *string) error {
	ret := _m.Called(ctx, querier, id, status, imageURL, errorDetails)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, interfaces.DBTX, uuid.UUID, models.IllustrationStatus, *string, *string) error); ok {
		r0 = rf(ctx, querier, id, status, imageURL, errorDetails)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// FindStaleGenerating provides a mock function with given fields: ctx, querier, threshold
func (_m *MockIllustrationJobRepository) FindStaleGenerating(ctx context.Context, querier interfaces.DBTX, threshold time.Duration) ([]uuid.UUID, error) {
	ret := _m.Called(ctx, querier, threshold)

	var r0 []uuid.UUID
	if rf, ok := ret.Get(0).(func(context.Context, interfaces.DBTX, time.Duration) []uuid.UUID); ok {
		r0 = rf(ctx, querier, threshold)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]uuid.UUID)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, interfaces.DBTX, time.Duration) error); ok {
		r1 = rf(ctx, querier, threshold)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockIllustrationJobRepository creates a new instance of MockIllustrationJobRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockIllustrationJobRepository(t interface {
	mock.TestingT
	Helper()
}) *MockIllustrationJobRepository {
	m := &MockIllustrationJobRepository{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ interfaces.IllustrationJobRepository = (*MockIllustrationJobRepository)(nil)
