package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"book-server/internal/interfaces"
)

// MockGenerationGuard is a mock type for the GenerationGuard type
type MockGenerationGuard struct {
	mock.Mock
}

// Acquire provides a mock function with given fields: ctx, bookID
func (_m *MockGenerationGuard) Acquire(ctx context.Context, bookID uuid.UUID) error {
	ret := _m.Called(ctx, bookID)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID) error); ok {
		r0 = rf(ctx, bookID)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// Release provides a mock function with given fields: ctx, bookID
func (_m *MockGenerationGuard) Release(ctx context.Context, bookID uuid.UUID) error {
	ret := _m.Called(ctx, bookID)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID) error); ok {
		r0 = rf(ctx, bookID)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// NewMockGenerationGuard creates a new instance of MockGenerationGuard. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockGenerationGuard(t interface {
	mock.TestingT
	Helper()
}) *MockGenerationGuard {
	m := &MockGenerationGuard{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ interfaces.GenerationGuard = (*MockGenerationGuard)(nil)
