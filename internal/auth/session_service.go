// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ServicePro Contributors

package auth

import (
	"time"

	"github.com/samber/oops"
)

// Session token configuration defaults.
const (
	DefaultSessionTTL = 24 * time.Hour
	// DefaultRefreshGrace is how far past expiry a token may still be
	// exchanged for a fresh one via Refresh.
	DefaultRefreshGrace = 5 * time.Minute
)

// SessionConfig tunes SessionService. Zero values select defaults.
type SessionConfig struct {
	TTL          time.Duration
	RefreshGrace time.Duration
	Clock        Clock
}

// SessionService issues, verifies and refreshes signed session tokens.
// It holds no mutable state; all methods are safe for concurrent use.
type SessionService struct {
	signer       *Signer
	clock        Clock
	ttl          time.Duration
	refreshGrace time.Duration
}

// NewSessionService creates a SessionService backed by the given Signer.
func NewSessionService(signer *Signer, cfg SessionConfig) (*SessionService, error) {
	if signer == nil {
		return nil, oops.Code("SESSION_CONFIG_INVALID").Errorf("signer is required")
	}
	if cfg.TTL == 0 {
		cfg.TTL = DefaultSessionTTL
	}
	if cfg.TTL < 0 {
		return nil, oops.Code("SESSION_CONFIG_INVALID").Errorf("ttl must be positive, got %s", cfg.TTL)
	}
	if cfg.RefreshGrace == 0 {
		cfg.RefreshGrace = DefaultRefreshGrace
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	return &SessionService{
		signer:       signer,
		clock:        cfg.Clock,
		ttl:          cfg.TTL,
		refreshGrace: cfg.RefreshGrace,
	}, nil
}

// Issue builds claims stamped with the current time and signs them.
// A non-positive ttl selects the configured default.
func (s *SessionService) Issue(accountID string, attributes map[string]string, ttl time.Duration) (string, error) {
	if accountID == "" {
		return "", oops.Code("SESSION_INVALID_SUBJECT").Errorf("account ID cannot be empty")
	}
	if ttl <= 0 {
		ttl = s.ttl
	}

	now := s.clock()
	token, err := s.signer.Sign(SessionClaims{
		Subject:    accountID,
		IssuedAt:   now,
		ExpiresAt:  now.Add(ttl),
		Attributes: attributes,
	})
	if err != nil {
		RecordSessionIssued(StatusError)
		return "", err
	}
	RecordSessionIssued(StatusSuccess)
	return token, nil
}

// Verify checks the token's signature and expiry, returning the claims on
// success. Verified-but-stale attributes must not be treated as
// authoritative beyond the subject identity.
func (s *SessionService) Verify(token string) (SessionClaims, error) {
	claims, err := s.signer.Verify(token)
	if err != nil {
		RecordSessionVerified(StatusInvalid)
		return SessionClaims{}, err
	}
	if claims.ExpiredAt(s.clock()) {
		RecordSessionVerified(StatusExpired)
		return SessionClaims{}, oops.Code("SESSION_EXPIRED").
			With("expires_at", claims.ExpiresAt).
			Wrap(ErrSessionExpired)
	}
	RecordSessionVerified(StatusSuccess)
	return claims, nil
}

// Refresh exchanges a token for a freshly stamped one carrying the same
// subject and attributes. Tokens are accepted up to the configured grace
// window past expiry; beyond that the caller must authenticate again.
func (s *SessionService) Refresh(token string) (string, error) {
	claims, err := s.signer.Verify(token)
	if err != nil {
		return "", err
	}
	if claims.ExpiredAt(s.clock().Add(-s.refreshGrace)) {
		return "", oops.Code("SESSION_REFRESH_EXPIRED").
			With("expires_at", claims.ExpiresAt).
			With("grace", s.refreshGrace.String()).
			Wrap(ErrSessionExpired)
	}
	return s.Issue(claims.Subject, claims.Attributes, s.ttl)
}
