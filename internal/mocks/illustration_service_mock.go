package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"book-server/internal/interfaces"
	"book-server/internal/markers"
	"book-server/internal/models"
	"book-server/internal/service"
)

// MockIllustrationService is a mock type for the IllustrationService type
type MockIllustrationService struct {
	mock.Mock
}

// CreatePendingJobs provides a mock function with given fields: ctx, querier, chapterID, found
func (_m *MockIllustrationService) CreatePendingJobs(ctx context.Context, querier interfaces.DBTX, chapterID uuid.UUID, found []markers.Marker) ([]*models.IllustrationJob, error) {
	ret := _m.Called(ctx, querier, chapterID, found)

	var r0 []*models.IllustrationJob
	if rf, ok := ret.Get(0).(func(context.Context, interfaces.DBTX, uuid.UUID, []markers.Marker) []*models.IllustrationJob); ok {
		r0 = rf(ctx, querier, chapterID, found)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]*models.IllustrationJob)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, interfaces.DBTX, uuid.UUID, []markers.Marker) error); ok {
		r1 = rf(ctx, querier, chapterID, found)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// RunJob provides a mock function with given fields: ctx, jobID, coverEligible
func (_m *MockIllustrationService) RunJob(ctx context.Context, jobID uuid.UUID, coverEligible bool) (*models.IllustrationJob, error) {
	ret := _m.Called(ctx, jobID, coverEligible)

	var r0 *models.IllustrationJob
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID, bool) *models.IllustrationJob); ok {
		r0 = rf(ctx, jobID, coverEligible)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*models.IllustrationJob)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, uuid.UUID, bool) error); ok {
		r1 = rf(ctx, jobID, coverEligible)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// MaybeSetCover provides a mock function with given fields: ctx, bookID, imageURL
func (_m *MockIllustrationService) MaybeSetCover(ctx context.Context, bookID uuid.UUID, imageURL string) (bool, error) {
	ret := _m.Called(ctx, bookID, imageURL)

	var r0 bool
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID, string) bool); ok {
		r0 = rf(ctx, bookID, imageURL)
	} else {
		r0 = ret.Bool(0)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, uuid.UUID, string) error); ok {
		r1 = rf(ctx, bookID, imageURL)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ListChapterJobs provides a mock function with given fields: ctx, chapterID
func (_m *MockIllustrationService) ListChapterJobs(ctx context.Context, chapterID uuid.UUID) ([]*models.IllustrationJob, error) {
	ret := _m.Called(ctx, chapterID)

	var r0 []*models.IllustrationJob
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID) []*models.IllustrationJob); ok {
		r0 = rf(ctx, chapterID)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]*models.IllustrationJob)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, uuid.UUID) error); ok {
		r1 = rf(ctx, chapterID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockIllustrationService creates a new instance of MockIllustrationService. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockIllustrationService(t interface {
	mock.TestingT
	Helper()
}) *MockIllustrationService {
	m := &MockIllustrationService{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ service.IllustrationService = (*MockIllustrationService)(nil)
