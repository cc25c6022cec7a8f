// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ServicePro Contributors

package mocks

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"
)

// MockAccountUpdater is a mock implementation of auth.AccountUpdater.
type MockAccountUpdater struct {
	mock.Mock
}

// NewMockAccountUpdater creates a new mock with expectations asserted at
// test cleanup.
func NewMockAccountUpdater(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockAccountUpdater {
	m := &MockAccountUpdater{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockAccountUpdater) UpdatePasswordHash(ctx context.Context, id ulid.ULID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}
