package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"book-server/internal/interfaces"
	"book-server/internal/models"
)

// MockChapterRepository is a mock type for the ChapterRepository type
type MockChapterRepository struct {
	mock.Mock
}

// Create provides a mock function with given fields: ctx, querier, chapter
func (_m *MockChapterRepository) Create(ctx context.Context, querier interfaces.DBTX, chapter *models.Chapter) error {
	ret := _m.Called(ctx, querier, chapter)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, interfaces.DBTX, *models.Chapter) error); ok {
		r0 = rf(ctx, querier, chapter)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// GetByID provides a mock function with given fields: ctx, querier, id
func (_m *MockChapterRepository) GetByID(ctx context.Context, querier interfaces.DBTX, id uuid.UUID) (*models.Chapter, error) {
	ret := _m.Called(ctx, querier, id)

	var r0 *models.Chapter
	if rf, ok := ret.Get(0).(func(context.Context, interfaces.DBTX, uuid.UUID) *models.Chapter); ok {
		r0 = rf(ctx, querier, id)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*models.Chapter)
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

// GetByNumber provides a mock function with given fields: ctx, querier, bookID, number
func (_m *MockChapterRepository) GetByNumber(ctx context.Context, querier interfaces.DBTX, bookID uuid.UUID, number int) (*models.Chapter, error) {
	ret := _m.Called(ctx, querier, bookID, number)

	var r0 *models.Chapter
	if rf, ok := ret.Get(0).(func(context.Context, interfaces.DBTX, uuid.UUID, int) *models.Chapter); ok {
		r0 = rf(ctx, querier, bookID, number)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*models.Chapter)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, interfaces.DBTX, uuid.UUID, int) error); ok {
		r1 = rf(ctx, querier, bookID, number)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NextNumber provides a mock function with given fields: ctx, querier, bookID
func (_m *MockChapterRepository) NextNumber(ctx context.Context, querier interfaces.DBTX, bookID uuid.UUID) (int, error) {
	ret := _m.Called(ctx, querier, bookID)

	var r0 int
	if rf, ok := ret.Get(0).(func(context.Context, interfaces.DBTX, uuid.UUID) int); ok {
		r0 = rf(ctx, querier, bookID)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(int)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, interfaces.DBTX, uuid.UUID) error); ok {
		r1 = rf(ctx, querier, bookID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ListRecent provides a mock function with given fields: ctx, querier, bookID, limit
func (_m *MockChapterRepository) ListRecent(ctx context.Context, querier interfaces.DBTX, bookID uuid.UUID, limit int) ([]*models.Chapter, error) {
	ret := _m.Called(ctx, querier, bookID, limit)

	var r0 []*models.Chapter
	if rf, ok := ret.Get(0).(func(context.Context, interfaces.DBTX, uuid.UUID, int) []*models.Chapter); ok {
		r0 = rf(ctx, querier, bookID, limit)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]*models.Chapter)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, interfaces.DBTX, uuid.UUID, int) error); ok {
		r1 = rf(ctx, querier, bookID, limit)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ListByBook provides a mock function with given fields: ctx, querier, bookID
func (_m *MockChapterRepository) ListByBook(ctx context.Context, querier interfaces.DBTX, bookID uuid.UUID) ([]*models.Chapter, error) {
	ret := _m.Called(ctx, querier, bookID)

	var r0 []*models.Chapter
	if rf, ok := ret.Get(0).(func(context.Context, interfaces.DBTX, uuid.UUID) []*models.Chapter); ok {
		r0 = rf(ctx, querier, bookID)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]*models.Chapter)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, interfaces.DBTX, uuid.UUID) error); ok {
		r1 = rf(ctx, querier, bookID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockChapterRepository creates a new instance of MockChapterRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockChapterRepository(t interface {
	mock.TestingT
	Helper()
}) *MockChapterRepository {
	m := &MockChapterRepository{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ interfaces.ChapterRepository = (*MockChapterRepository)(nil)
