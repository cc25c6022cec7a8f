// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ServicePro Contributors

package mocks

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"

	"github.com/servicepro/authcore/internal/auth"
)

// MockRecoveryTokenRepository is a mock implementation of
// auth.RecoveryTokenRepository.
type MockRecoveryTokenRepository struct {
	mock.Mock
}

// NewMockRecoveryTokenRepository creates a new mock with expectations
// asserted at test cleanup.
func NewMockRecoveryTokenRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockRecoveryTokenRepository {
	m := &MockRecoveryTokenRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockRecoveryTokenRepository) Create(ctx context.Context, token *auth.RecoveryToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockRecoveryTokenRepository) FindActive(ctx context.Context, tokenHash string, now time.Time) (*auth.RecoveryToken, error) {
	args := m.Called(ctx, tokenHash, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.RecoveryToken), args.Error(1)
}

func (m *MockRecoveryTokenRepository) InvalidateActiveFor(ctx context.Context, accountID ulid.ULID) error {
	args := m.Called(ctx, accountID)
	return args.Error(0)
}

func (m *MockRecoveryTokenRepository) Consume(ctx context.Context, tokenHash string, now time.Time, mutate auth.AccountMutation) error {
	args := m.Called(ctx, tokenHash, now, mutate)
	return args.Error(0)
}

func (m *MockRecoveryTokenRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}
