package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"book-server/internal/textgen"
)

// MockTranslator is a mock type for the Translator type
type MockTranslator struct {
	mock.Mock
}

// TranslateToEnglish provides a mock function with given fields: ctx, text
func (_m *MockTranslator) TranslateToEnglish(ctx context.Context, text string) string {
	ret := _m.Called(ctx, text)

	var r0 string
	if rf, ok := ret.Get(0).(func(context.Context, string) string); ok {
		r0 = rf(ctx, text)
	} else {
		r0 = ret.Get(0).(string)
	}

	return r0
}

// NewMockTranslator creates a new instance of MockTranslator. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockTranslator(t interface {
	mock.TestingT
	Helper()
}) *MockTranslator {
	m := &MockTranslator{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ textgen.Translator = (*MockTranslator)(nil)
