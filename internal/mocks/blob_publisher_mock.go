package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"book-server/internal/interfaces"
)

// MockBlobPublisher is a mock type for the BlobPublisher type
type MockBlobPublisher struct {
	mock.Mock
}

// Publish provides a mock function with given fields: ctx, data, mimeType, suggestedKey
func (_m *MockBlobPublisher) Publish(ctx context.Context, data []byte, mimeType string, suggestedKey string) (string, error) {
	ret := _m.Called(ctx, data, mimeType, suggestedKey)

	var r0 string
	if rf, ok := ret.Get(0).(func(context.Context, []byte, string, string) string); ok {
		r0 = rf(ctx, data, mimeType, suggestedKey)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(string)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, []byte, string, string) error); ok {
		r1 = rf(ctx, data, mimeType, suggestedKey)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockBlobPublisher creates a new instance of MockBlobPublisher. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockBlobPublisher(t interface {
	mock.TestingT
	Helper()
}) *MockBlobPublisher {
	m := &MockBlobPublisher{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ interfaces.BlobPublisher = (*MockBlobPublisher)(nil)
