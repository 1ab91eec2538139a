package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"book-server/internal/models"
	"book-server/internal/service"
)

// MockReferenceService is a mock type for the ReferenceService type
type MockReferenceService struct {
	mock.Mock
}

// GenerateReference provides a mock function with given fields: ctx, characterID
func (_m *MockReferenceService) GenerateReference(ctx context.Context, characterID uuid.UUID) (*models.Character, error) {
	ret := _m.Called(ctx, characterID)

	var r0 *models.Character
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID) *models.Character); ok {
		r0 = rf(ctx, characterID)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*models.Character)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, uuid.UUID) error); ok {
		r1 = rf(ctx, characterID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockReferenceService creates a new instance of MockReferenceService. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockReferenceService(t interface {
	mock.TestingT
	Helper()
}) *MockReferenceService {
	m := &MockReferenceService{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ service.ReferenceService = (*MockReferenceService)(nil)
