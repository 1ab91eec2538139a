package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"book-server/internal/models"
	"book-server/internal/service"
)

// MockBookService is a mock type for the BookService type
type MockBookService struct {
	mock.Mock
}

// CreateBook provides a mock function with given fields: ctx, title, description, wordsPerChapter, imagesPerChapter
func (_m *MockBookService) CreateBook(ctx context.Context, title string, description string, wordsPerChapter int, imagesPerChapter int) (*models.Book, error) {
	ret := _m.Called(ctx, title, description, wordsPerChapter, imagesPerChapter)

	var r0 *models.Book
	if rf, ok := ret.Get(0).(func(context.Context, string, string, int, int) *models.Book); ok {
		r0 = rf(ctx, title, description, wordsPerChapter, imagesPerChapter)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*models.Book)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, string, int, int) error); ok {
		r1 = rf(ctx, title, description, wordsPerChapter, imagesPerChapter)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// GetBook provides a mock function with given fields: ctx, bookID
func (_m *MockBookService) GetBook(ctx context.Context, bookID uuid.UUID) (*models.Book, error) {
	ret := _m.Called(ctx, bookID)

	var r0 *models.Book
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID) *models.Book); ok {
		r0 = rf(ctx, bookID)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*models.Book)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, uuid.UUID) error); ok {
		r1 = rf(ctx, bookID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// UpdateSettings provides a mock function with given fields: ctx, bookID, wordsPerChapter, imagesPerChapter
func (_m *MockBookService) UpdateSettings(ctx context.Context, bookID uuid.UUID, wordsPerChapter int, imagesPerChapter int) (*models.Book, error) {
	ret := _m.Called(ctx, bookID, wordsPerChapter, imagesPerChapter)

	var r0 *models.Book
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID, int, int) *models.Book); ok {
		r0 = rf(ctx, bookID, wordsPerChapter, imagesPerChapter)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*models.Book)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, uuid.UUID, int, int) error); ok {
		r1 = rf(ctx, bookID, wordsPerChapter, imagesPerChapter)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// CreateCharacter provides a mock function with given fields: ctx, bookID, name, description, visualDescription
func (_m *MockBookService) CreateCharacter(ctx context.Context, bookID uuid.UUID, name string, description string, visualDescription string) (*models.Character, error) {
	ret := _m.Called(ctx, bookID, name, description, visualDescription)

	var r0 *models.Character
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID, string, string, string) *models.Character); ok {
		r0 = rf(ctx, bookID, name, description, visualDescription)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*models.Character)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, uuid.UUID, string, string, string) error); ok {
		r1 = rf(ctx, bookID, name, description, visualDescription)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ListCharacters provides a mock function with given fields: ctx, bookID
func (_m *MockBookService) ListCharacters(ctx context.Context, bookID uuid.UUID) ([]*models.Character, error) {
	ret := _m.Called(ctx, bookID)

	var r0 []*models.Character
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID) []*models.Character); ok {
		r0 = rf(ctx, bookID)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]*models.Character)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, uuid.UUID) error); ok {
		r1 = rf(ctx, bookID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// GetRenderedChapter provides a mock function with given fields: ctx, bookID, number
func (_m *MockBookService) GetRenderedChapter(ctx context.Context, bookID uuid.UUID, number int) (*models.RenderedChapter, error) {
	ret := _m.Called(ctx, bookID, number)

	var r0 *models.RenderedChapter
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID, int) *models.RenderedChapter); ok {
		r0 = rf(ctx, bookID, number)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*models.RenderedChapter)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, uuid.UUID, int) error); ok {
		r1 = rf(ctx, bookID, number)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// GetBookOverview provides a mock function with given fields: ctx, bookID
func (_m *MockBookService) GetBookOverview(ctx context.Context, bookID uuid.UUID) (*models.BookOverview, error) {
	ret := _m.Called(ctx, bookID)

	var r0 *models.BookOverview
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID) *models.BookOverview); ok {
		r0 = rf(ctx, bookID)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*models.BookOverview)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, uuid.UUID) error); ok {
		r1 = rf(ctx, bookID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockBookService creates a new instance of MockBookService. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockBookService(t interface {
	mock.TestingT
	Helper()
}) *MockBookService {
	m := &MockBookService{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ service.BookService = (*MockBookService)(nil)
