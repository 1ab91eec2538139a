package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"book-server/internal/interfaces"
	"book-server/internal/models"
)

// MockReferenceResolver is a mock type for the ReferenceResolver type
type MockReferenceResolver struct {
	mock.Mock
}

// ResolveForBook provides a mock function with given fields: ctx, bookID
func (_m *MockReferenceResolver) ResolveForBook(ctx context.Context, bookID uuid.UUID) ([]models.CharacterReference, error) {
	ret := _m.Called(ctx, bookID)

	var r0 []models.CharacterReference
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID) []models.CharacterReference); ok {
		r0 = rf(ctx, bookID)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]models.CharacterReference)
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

// NewMockReferenceResolver creates a new instance of MockReferenceResolver. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockReferenceResolver(t interface {
	mock.TestingT
	Helper()
}) *MockReferenceResolver {
	m := &MockReferenceResolver{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ interfaces.ReferenceResolver = (*MockReferenceResolver)(nil)
