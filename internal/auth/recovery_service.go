// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ServicePro Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// createAttempts bounds token regeneration when a generated value collides
// with an existing row. With 256 bits of entropy a second collision in a
// row means the RNG is broken, not that we are unlucky.
const createAttempts = 3

// validateRetries bounds transient-failure retries for the read-only
// Validate check.
const validateRetries = 2

// RecoveryConfig tunes RecoveryService. Zero values select defaults.
type RecoveryConfig struct {
	TokenTTL time.Duration
	Clock    Clock
	Logger   *slog.Logger
}

// RecoveryService orchestrates the password-recovery lifecycle: request a
// token, validate it, and redeem it for a password change.
type RecoveryService struct {
	accounts AccountRepository
	tokens   RecoveryTokenRepository
	hasher   PasswordHasher
	notifier Notifier
	clock    Clock
	ttl      time.Duration
	logger   *slog.Logger
}

// NewRecoveryService creates a RecoveryService.
func NewRecoveryService(
	accounts AccountRepository,
	tokens RecoveryTokenRepository,
	hasher PasswordHasher,
	notifier Notifier,
	cfg RecoveryConfig,
) (*RecoveryService, error) {
	if accounts == nil {
		return nil, oops.Code("RECOVERY_CONFIG_INVALID").Errorf("account repository is required")
	}
	if tokens == nil {
		return nil, oops.Code("RECOVERY_CONFIG_INVALID").Errorf("token repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("RECOVERY_CONFIG_INVALID").Errorf("password hasher is required")
	}
	if notifier == nil {
		return nil, oops.Code("RECOVERY_CONFIG_INVALID").Errorf("notifier is required")
	}
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = RecoveryTokenTTL
	}
	if cfg.TokenTTL < 0 {
		return nil, oops.Code("RECOVERY_CONFIG_INVALID").Errorf("token ttl must be positive, got %s", cfg.TokenTTL)
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &RecoveryService{
		accounts: accounts,
		tokens:   tokens,
		hasher:   hasher,
		notifier: notifier,
		clock:    cfg.Clock,
		ttl:      cfg.TokenTTL,
		logger:   cfg.Logger,
	}, nil
}

// Request starts a recovery flow for the account with the given email.
// Any previously active token is invalidated first, so at most one token
// per account is ever redeemable. The response is uniform whether or not
// the account exists: unknown emails are logged and reported as success so
// the endpoint cannot be used to enumerate accounts.
func (s *RecoveryService) Request(ctx context.Context, email string) error {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.InfoContext(ctx, "recovery requested for unknown email")
			RecordRecoveryRequest(StatusUnknownAccount)
			return nil
		}
		RecordRecoveryRequest(StatusError)
		return oops.Code("RECOVERY_REQUEST_FAILED").
			With("operation", "GetByEmail").
			Wrap(err)
	}

	if err := s.tokens.InvalidateActiveFor(ctx, account.ID); err != nil {
		RecordRecoveryRequest(StatusError)
		return oops.Code("RECOVERY_REQUEST_FAILED").
			With("operation", "InvalidateActiveFor").
			With("account_id", account.ID.String()).
			Wrap(err)
	}

	value, err := s.createToken(ctx, account.ID, s.clock())
	if err != nil {
		// A concurrent request for the same account won the insert race and
		// its link is on the way; report success to keep the response
		// uniform.
		if errors.Is(err, ErrConcurrentConflict) {
			s.logger.InfoContext(ctx, "concurrent recovery request superseded this one",
				"account_id", account.ID.String())
			RecordRecoveryRequest(StatusSuccess)
			return nil
		}
		RecordRecoveryRequest(StatusError)
		return err
	}

	// Best-effort delivery. A notification failure never rolls back the
	// token and is never surfaced to the caller.
	if err := s.notifier.SendRecoveryLink(ctx, account, value); err != nil {
		s.logger.WarnContext(ctx, "recovery link delivery failed",
			"account_id", account.ID.String(),
			"error", err)
	}

	RecordRecoveryRequest(StatusSuccess)
	return nil
}

// createToken generates a token value and persists it, regenerating on the
// astronomically unlikely hash collision.
func (s *RecoveryService) createToken(ctx context.Context, accountID ulid.ULID, now time.Time) (string, error) {
	for attempt := 0; attempt < createAttempts; attempt++ {
		value, hash, err := GenerateRecoveryToken()
		if err != nil {
			return "", oops.Code("RECOVERY_REQUEST_FAILED").
				With("operation", "GenerateRecoveryToken").
				Wrap(err)
		}

		token, err := NewRecoveryToken(accountID, hash, now, s.ttl)
		if err != nil {
			return "", oops.Code("RECOVERY_REQUEST_FAILED").
				With("operation", "NewRecoveryToken").
				Wrap(err)
		}

		err = s.tokens.Create(ctx, token)
		if err == nil {
			return value, nil
		}
		if errors.Is(err, ErrDuplicateToken) {
			s.logger.WarnContext(ctx, "recovery token value collision, regenerating",
				"attempt", attempt+1)
			continue
		}
		return "", oops.Code("RECOVERY_REQUEST_FAILED").
			With("operation", "Create").
			With("account_id", accountID.String()).
			Wrap(err)
	}
	return "", oops.Code("RECOVERY_REQUEST_FAILED").
		Errorf("token value collided %d times in a row", createAttempts)
}

// Validate reports whether the token value is currently redeemable. It is
// a UI-level check and carries no authority: Redeem re-validates inside
// the consume transaction. Transient store failures are retried a bounded
// number of times; persistent failure reads as "not valid".
func (s *RecoveryService) Validate(ctx context.Context, value string) bool {
	if value == "" {
		return false
	}
	hash := HashRecoveryToken(value)

	var found bool
	backoff := retry.WithMaxRetries(validateRetries, retry.NewExponential(50*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		_, err := s.tokens.FindActive(ctx, hash, s.clock())
		switch {
		case err == nil:
			found = true
			return nil
		case errors.Is(err, ErrNotFound):
			return nil
		default:
			return retry.RetryableError(err)
		}
	})
	if err != nil {
		s.logger.WarnContext(ctx, "recovery token validation failed", "error", err)
		return false
	}
	return found
}

// Redeem consumes the token and updates the account's password as one
// atomic unit. The distinct failure kinds (ErrTokenNotFound,
// ErrTokenAlreadyUsed, ErrTokenExpired) are preserved for logging and
// metrics; outer layers collapse them into one generic message for users.
func (s *RecoveryService) Redeem(ctx context.Context, value, newPassword string) error {
	if newPassword == "" {
		return oops.Code("RECOVERY_PASSWORD_EMPTY").Errorf("new password cannot be empty")
	}
	if value == "" {
		RecordRecoveryRedeem(StatusNotFound)
		return oops.Code("RECOVERY_TOKEN_EMPTY").Wrap(ErrTokenNotFound)
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		RecordRecoveryRedeem(StatusError)
		return oops.Code("RECOVERY_HASHING_FAILED").Wrap(err)
	}

	mutate := func(ctx context.Context, accounts AccountUpdater, accountID ulid.ULID) error {
		return accounts.UpdatePasswordHash(ctx, accountID, passwordHash)
	}

	err = s.tokens.Consume(ctx, HashRecoveryToken(value), s.clock(), mutate)
	switch {
	case err == nil:
		RecordRecoveryRedeem(StatusSuccess)
		return nil
	case errors.Is(err, ErrTokenAlreadyUsed):
		RecordRecoveryRedeem(StatusAlreadyUsed)
		return err
	case errors.Is(err, ErrTokenExpired):
		RecordRecoveryRedeem(StatusExpired)
		return err
	case errors.Is(err, ErrTokenNotFound):
		RecordRecoveryRedeem(StatusNotFound)
		return err
	default:
		RecordRecoveryRedeem(StatusError)
		return oops.Code("RECOVERY_REDEEM_FAILED").
			With("operation", "Consume").
			Wrap(err)
	}
}
