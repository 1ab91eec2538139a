package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"book-server/internal/interfaces"
	"book-server/internal/models"
)

// MockBookRepository is a mock type for the BookRepository type
type MockBookRepository struct {
	mock.Mock
}

// Create provides a mock function with given fields: ctx, querier, book
func (_m *MockBookRepository) Create(ctx context.Context, querier interfaces.DBTX, book *models.Book) error {
	ret := _m.Called(ctx, querier, book)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, interfaces.DBTX, *models.Book) error); ok {
		r0 = rf(ctx, querier, book)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// GetByID provides a mock function with given fields: ctx, querier, id
func (_m *MockBookRepository) GetByID(ctx context.Context, querier interfaces.DBTX, id uuid.UUID) (*models.Book, error) {
	ret := _m.Called(ctx, querier, id)

	var r0 *models.Book
	if rf, ok := ret.Get(0).(func(context.Context, interfaces.DBTX, uuid.UUID) *models.Book); ok {
		r0 = rf(ctx, querier, id)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*models.Book)
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

// UpdateSettings provides a mock function with given fields: ctx, querier, id, wordsPerChapter, imagesPerChapter
func (_m *MockBookRepository) UpdateSettings(ctx context.Context, querier interfaces.DBTX, id uuid.UUID, wordsPerChapter int, imagesPerChapter int) error {
	ret := _m.Called(ctx, querier, id, wordsPerChapter, imagesPerChapter)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, interfaces.DBTX, uuid.UUID, int, int) error); ok {
		r0 = rf(ctx, querier, id, wordsPerChapter, imagesPerChapter)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// SetCoverIfAbsent provides a mock function with given fields: ctx, querier, id, coverURL
func (_m *MockBookRepository) SetCoverIfAbsent(ctx context.Context, querier interfaces.DBTX, id uuid.UUID, coverURL string) (bool, error) {
	ret := _m.Called(ctx, querier, id, coverURL)

	var r0 bool
	if rf, ok := ret.Get(0).(func(context.Context, interfaces.DBTX, uuid.UUID, string) bool); ok {
		r0 = rf(ctx, querier, id, coverURL)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(bool)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, interfaces.DBTX, uuid.UUID, string) error); ok {
		r1 = rf(ctx, querier, id, coverURL)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockBookRepository creates a new instance of MockBookRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockBookRepository(t interface {
	mock.TestingT
	Helper()
}) *MockBookRepository {
	m := &MockBookRepository{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ interfaces.BookRepository = (*MockBookRepository)(nil)
