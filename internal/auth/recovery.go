// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ServicePro Contributors

package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Recovery token configuration.
const (
	RecoveryTokenBytes = 32             // 32 bytes = 64 hex chars, 256 bits of entropy
	RecoveryTokenTTL   = 24 * time.Hour // default validity window
)

// RecoveryToken is a single-use, time-limited credential granting
// permission to reset one account's password. The plaintext value is sent
// to the account holder; only its SHA-256 hash is persisted. The Used flag
// is monotonic: once true it never reverts.
type RecoveryToken struct {
	ID        ulid.ULID
	AccountID ulid.ULID
	TokenHash string
	Used      bool
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// NewRecoveryToken creates a validated RecoveryToken stamped at issuedAt.
func NewRecoveryToken(accountID ulid.ULID, tokenHash string, issuedAt time.Time, ttl time.Duration) (*RecoveryToken, error) {
	if accountID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("RECOVERY_INVALID_ACCOUNT").Errorf("account ID cannot be zero")
	}
	if tokenHash == "" {
		return nil, oops.Code("RECOVERY_INVALID_HASH").Errorf("token hash cannot be empty")
	}
	if ttl <= 0 {
		return nil, oops.Code("RECOVERY_INVALID_TTL").Errorf("ttl must be positive, got %s", ttl)
	}

	return &RecoveryToken{
		ID:        ulid.Make(),
		AccountID: accountID,
		TokenHash: tokenHash,
		Used:      false,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(ttl),
	}, nil
}

// ExpiredAt reports whether the token would be expired at the given time.
func (t *RecoveryToken) ExpiredAt(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// ActiveAt reports whether the token is redeemable at the given time.
func (t *RecoveryToken) ActiveAt(now time.Time) bool {
	return !t.Used && !t.ExpiredAt(now)
}

// GenerateRecoveryToken creates a secure random token value and its hash.
// The plaintext value is handed to the notifier; the hash is stored.
func GenerateRecoveryToken() (value, hash string, err error) {
	buf := make([]byte, RecoveryTokenBytes)
	if _, err = rand.Read(buf); err != nil {
		return "", "", oops.Code("RECOVERY_TOKEN_GENERATE_FAILED").Wrap(err)
	}

	value = hex.EncodeToString(buf)
	return value, HashRecoveryToken(value), nil
}

// HashRecoveryToken computes the SHA-256 hash of a token value.
func HashRecoveryToken(value string) string {
	h := sha256.Sum256([]byte(value))
	return hex.EncodeToString(h[:])
}

// VerifyRecoveryToken checks a plaintext value against a stored hash in
// constant time.
func VerifyRecoveryToken(value, hash string) bool {
	if value == "" || hash == "" {
		return false
	}
	computed := HashRecoveryToken(value)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(hash)) == 1
}

// AccountMutation is applied inside the same transaction that marks a
// recovery token used, so the password update and the used transition
// commit or roll back together.
type AccountMutation func(ctx context.Context, accounts AccountUpdater, accountID ulid.ULID) error

// RecoveryTokenRepository manages recovery token persistence. It exposes
// only the lifecycle operations, not a generic CRUD surface.
type RecoveryTokenRepository interface {
	// Create stores a new recovery token. Returns ErrDuplicateToken when
	// the token hash collides with an existing row, and
	// ErrConcurrentConflict when the account already holds an unused token
	// (a racing request won).
	Create(ctx context.Context, token *RecoveryToken) error

	// FindActive retrieves the token only if it is unused and unexpired at
	// the given instant. Returns ErrNotFound otherwise; callers cannot
	// distinguish absent, expired and used tokens from this call.
	FindActive(ctx context.Context, tokenHash string, now time.Time) (*RecoveryToken, error)

	// InvalidateActiveFor marks every unused token for the account as used,
	// whether or not it has expired. Idempotent: a no-op when no unused
	// token exists.
	InvalidateActiveFor(ctx context.Context, accountID ulid.ULID) error

	// Consume atomically marks the token used and applies the account
	// mutation in the same transaction. Under concurrent calls for the
	// same token exactly one succeeds; the rest observe ErrTokenAlreadyUsed,
	// ErrTokenExpired or ErrTokenNotFound.
	Consume(ctx context.Context, tokenHash string, now time.Time, mutate AccountMutation) error

	// DeleteExpiredBefore removes tokens whose expiry predates the cutoff,
	// returning the number of deleted rows. Used only by the reaper.
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
