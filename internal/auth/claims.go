// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ServicePro Contributors

package auth

import "time"

// SessionClaims is the structured data carried inside a signed session
// token. Immutable once issued; never persisted - verification reconstructs
// it from the token itself.
type SessionClaims struct {
	// Subject is the opaque account identifier. It is the only field
	// callers may trust for authorization decisions.
	Subject string

	IssuedAt  time.Time
	ExpiresAt time.Time

	// Attributes carries convenience data such as a display name or email.
	// Never authoritative beyond Subject.
	Attributes map[string]string
}

// ExpiredAt reports whether the claims would be expired at the given time.
func (c SessionClaims) ExpiredAt(t time.Time) bool {
	return !t.Before(c.ExpiresAt)
}
