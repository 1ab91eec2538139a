package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"book-server/internal/interfaces"
)

// MockTxManager is a mock type for the TxManager type
type MockTxManager struct {
	mock.Mock
}

// WithTransaction provides a mock function with given fields: ctx, fn
func (_m *MockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx interfaces.DBTX) error) error {
	ret := _m.Called(ctx, fn)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, func(ctx context.Context, tx interfaces.DBTX) error) error); ok {
		r0 = rf(ctx, fn)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// NewMockTxManager creates a new instance of MockTxManager. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockTxManager(t interface {
	mock.TestingT
	Helper()
}) *MockTxManager {
	m := &MockTxManager{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ interfaces.TxManager = (*MockTxManager)(nil)
