package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"book-server/internal/messaging"
)

// MockNotificationPublisher is a mock type for the NotificationPublisher type
type MockNotificationPublisher struct {
	mock.Mock
}

// PublishJobNotification provides a mock function with given fields: ctx, payload
func (_m *MockNotificationPublisher) PublishJobNotification(ctx context.Context, payload messaging.JobNotificationPayload) error {
	ret := _m.Called(ctx, payload)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, messaging.JobNotificationPayload) error); ok {
		r0 = rf(ctx, payload)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// NewMockNotificationPublisher creates a new instance of MockNotificationPublisher. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockNotificationPublisher(t interface {
	mock.TestingT
	Helper()
}) *MockNotificationPublisher {
	m := &MockNotificationPublisher{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ messaging.NotificationPublisher = (*MockNotificationPublisher)(nil)
