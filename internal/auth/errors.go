// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ServicePro Contributors

package auth

import "errors"

// Sentinel errors for the credential core. Services wrap these with oops
// codes for logging context; callers branch with errors.Is.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrTokenMalformed is returned when a session token cannot be parsed.
	ErrTokenMalformed = errors.New("session token malformed")

	// ErrSignatureInvalid is returned when a session token's signature does
	// not verify against any configured secret.
	ErrSignatureInvalid = errors.New("session token signature invalid")

	// ErrSessionExpired is returned when a session token verifies but its
	// expiry has passed.
	ErrSessionExpired = errors.New("session token expired")

	// ErrTokenNotFound is returned when no recovery token matches the
	// presented value.
	ErrTokenNotFound = errors.New("recovery token not found")

	// ErrTokenAlreadyUsed is returned when a recovery token has been
	// consumed. The used flag is monotonic; it never reverts.
	ErrTokenAlreadyUsed = errors.New("recovery token already used")

	// ErrTokenExpired is returned when a recovery token exists but its
	// expiry has passed.
	ErrTokenExpired = errors.New("recovery token expired")

	// ErrDuplicateToken is returned when a freshly generated recovery token
	// value collides with an existing row. Callers regenerate and retry.
	ErrDuplicateToken = errors.New("recovery token value collision")

	// ErrConcurrentConflict is returned when the database aborts a consume
	// transaction due to serialization conflict. The consume did not apply;
	// the caller must not assume either outcome.
	ErrConcurrentConflict = errors.New("concurrent consume conflict")

	// ErrStoreUnavailable is returned for transient storage failures.
	ErrStoreUnavailable = errors.New("store unavailable")
)
