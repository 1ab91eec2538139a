package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"book-server/internal/interfaces"
	"book-server/internal/models"
)

// MockCharacterRepository is a mock type for the CharacterRepository type
type MockCharacterRepository struct {
	mock.Mock
}

// Create provides a mock function with given fields: ctx, querier, character
func (_m *MockCharacterRepository) Create(ctx context.Context, querier interfaces.DBTX, character *models.Character) error {
	ret := _m.Called(ctx, querier, character)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, interfaces.DBTX, *models.Character) error); ok {
		r0 = rf(ctx, querier, character)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// GetByID provides a mock function with given fields: ctx, querier, id
func (_m *MockCharacterRepository) GetByID(ctx context.Context, querier interfaces.DBTX, id uuid.UUID) (*models.Character, error) {
	ret := _m.Called(ctx, querier, id)

	var r0 *models.Character
	if rf, ok := ret.Get(0).(func(context.Context, interfaces.DBTX, uuid.UUID) *models.Character); ok {
		r0 = rf(ctx, querier, id)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*models.Character)
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

// ListByBook provides a mock function with given fields: ctx, querier, bookID
func (_m *MockCharacterRepository) ListByBook(ctx context.Context, querier interfaces.DBTX, bookID uuid.UUID) ([]*models.Character, error) {
	ret := _m.Called(ctx, querier, bookID)

	var r0 []*models.Character
	if rf, ok := ret.Get(0).(func(context.Context, interfaces.DBTX, uuid.UUID) []*models.Character); ok {
		r0 = rf(ctx, querier, bookID)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]*models.Character)
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

// SaveReference provides a mock function with given fields: ctx, querier, id, image, prompt, publishedURL, createdAt
func (_m *MockCharacterRepository) SaveReference(ctx context.Context, querier interfaces.DBTX, id uuid.UUID, image []byte, prompt string, publishedURL string, createdAt time.Time) error {
	ret := _m.Called(ctx, querier, id, image, prompt, publishedURL, createdAt)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, interfaces.DBTX, uuid.UUID, []byte, string, string, time.Time) error); ok {
		r0 = rf(ctx, querier, id, image, prompt, publishedURL, createdAt)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// NewMockCharacterRepository creates a new instance of MockCharacterRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockCharacterRepository(t interface {
	mock.TestingT
	Helper()
}) *MockCharacterRepository {
	m := &MockCharacterRepository{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ interfaces.CharacterRepository = (*MockCharacterRepository)(nil)
