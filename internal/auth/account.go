// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ServicePro Contributors

package auth

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
)

// Account is a service-provider account. The credential core only reads
// identity fields and mutates the password hash; everything else about
// accounts (profile, bookings) lives outside this package.
type Account struct {
	ID           ulid.ULID
	Email        string
	DisplayName  string
	PasswordHash string
	CreatedAt    time.Time
}

// AccountRepository provides the account lookups and the single mutation
// the credential flows need.
type AccountRepository interface {
	// GetByID retrieves an account by ID. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id ulid.ULID) (*Account, error)

	// GetByEmail retrieves an account by email. Returns ErrNotFound if absent.
	GetByEmail(ctx context.Context, email string) (*Account, error)

	// UpdatePasswordHash replaces the account's password hash.
	UpdatePasswordHash(ctx context.Context, id ulid.ULID, passwordHash string) error
}

// AccountUpdater is the narrow mutation surface handed to an
// AccountMutation during an atomic recovery-token consume. Implementations
// are bound to the same transaction that marks the token used.
type AccountUpdater interface {
	UpdatePasswordHash(ctx context.Context, id ulid.ULID, passwordHash string) error
}
