// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ServicePro Contributors

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/servicepro/authcore/internal/auth"
)

// MockNotifier is a mock implementation of auth.Notifier.
type MockNotifier struct {
	mock.Mock
}

// NewMockNotifier creates a new mock with expectations asserted at test
// cleanup.
func NewMockNotifier(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockNotifier {
	m := &MockNotifier{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockNotifier) SendRecoveryLink(ctx context.Context, account *auth.Account, token string) error {
	args := m.Called(ctx, account, token)
	return args.Error(0)
}
