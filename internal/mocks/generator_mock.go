package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"book-server/internal/imagegen"
	"book-server/internal/models"
)

// MockGenerator is a mock type for the Generator type
type MockGenerator struct {
	mock.Mock
}

// Generate provides a mock function with given fields: ctx, scenePrompt, references
func (_m *MockGenerator) Generate(ctx context.Context, scenePrompt string, references []models.CharacterReference) (*imagegen.GeneratedImage, error) {
	ret := _m.Called(ctx, scenePrompt, references)

	var r0 *imagegen.GeneratedImage
	if rf, ok := ret.Get(0).(func(context.Context, string, []models.CharacterReference) *imagegen.GeneratedImage); ok {
		r0 = rf(ctx, scenePrompt, references)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*imagegen.GeneratedImage)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, []models.CharacterReference) error); ok {
		r1 = rf(ctx, scenePrompt, references)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockGenerator creates a new instance of MockGenerator. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockGenerator(t interface {
	mock.TestingT
	Helper()
}) *MockGenerator {
	m := &MockGenerator{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ imagegen.Generator = (*MockGenerator)(nil)
