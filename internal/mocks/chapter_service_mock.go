package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"book-server/internal/service"
)

// MockChapterService is a mock type for the ChapterService type
type MockChapterService struct {
	mock.Mock
}

// GenerateChapter provides a mock function with given fields: ctx, bookID, hint
func (_m *MockChapterService) GenerateChapter(ctx context.Context, bookID uuid.UUID, hint string) (*service.ChapterGenerationResult, error) {
	ret := _m.Called(ctx, bookID, hint)

	var r0 *service.ChapterGenerationResult
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID, string) *service.ChapterGenerationResult); ok {
		r0 = rf(ctx, bookID, hint)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*service.ChapterGenerationResult)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, uuid.UUID, string) error); ok {
		r1 = rf(ctx, bookID, hint)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockChapterService creates a new instance of MockChapterService. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockChapterService(t interface {
	mock.TestingT
	Helper()
}) *MockChapterService {
	m := &MockChapterService{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ service.ChapterService = (*MockChapterService)(nil)
