// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ServicePro Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/servicepro/authcore/internal/auth"
)

// RecoveryTokenRepository implements auth.RecoveryTokenRepository using
// PostgreSQL.
type RecoveryTokenRepository struct {
	db DB
}

// NewRecoveryTokenRepository creates a new RecoveryTokenRepository.
func NewRecoveryTokenRepository(db DB) *RecoveryTokenRepository {
	return &RecoveryTokenRepository{db: db}
}

// activeTokenConstraint is the partial unique index allowing at most one
// unused token per account.
const activeTokenConstraint = "uq_recovery_tokens_account_active"

// Create stores a new recovery token. A unique violation on the token hash
// maps to auth.ErrDuplicateToken so the caller can regenerate; one on the
// account-active index maps to auth.ErrConcurrentConflict, since the
// account gained another unused token between invalidation and insert.
func (r *RecoveryTokenRepository) Create(ctx context.Context, token *auth.RecoveryToken) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO recovery_tokens (id, account_id, token_hash, used, issued_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, token.ID.String(), token.AccountID.String(), token.TokenHash, token.Used, token.IssuedAt, token.ExpiresAt)
	if err != nil {
		if isUniqueViolation(err) {
			if violatedConstraint(err) == activeTokenConstraint {
				return oops.Code("RECOVERY_ACTIVE_TOKEN_EXISTS").
					With("account_id", token.AccountID.String()).
					Wrap(auth.ErrConcurrentConflict)
			}
			return oops.Code("RECOVERY_TOKEN_COLLISION").
				With("account_id", token.AccountID.String()).
				Wrap(auth.ErrDuplicateToken)
		}
		return oops.Code("RECOVERY_CREATE_FAILED").
			With("account_id", token.AccountID.String()).
			Wrap(err)
	}
	return nil
}

// FindActive retrieves the token only if it is unused and unexpired at the
// given instant.
func (r *RecoveryTokenRepository) FindActive(ctx context.Context, tokenHash string, now time.Time) (*auth.RecoveryToken, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, account_id, token_hash, used, issued_at, expires_at
		FROM recovery_tokens
		WHERE token_hash = $1 AND used = FALSE AND expires_at > $2
	`, tokenHash, now)

	token, err := scanRecoveryToken(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("RECOVERY_TOKEN_NOT_ACTIVE").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return token, nil
}

// InvalidateActiveFor marks every unused token for the account as used,
// expired ones included, so the partial unique index never blocks the
// insert that follows. A no-op when no unused token exists.
func (r *RecoveryTokenRepository) InvalidateActiveFor(ctx context.Context, accountID ulid.ULID) error {
	_, err := r.db.Exec(ctx, `
		UPDATE recovery_tokens
		SET used = TRUE
		WHERE account_id = $1 AND used = FALSE
	`, accountID.String())
	if err != nil {
		return oops.Code("RECOVERY_INVALIDATE_FAILED").
			With("account_id", accountID.String()).
			Wrap(err)
	}
	return nil
}

// Consume marks the token used and applies the account mutation in one
// transaction. The conditional UPDATE takes a row lock, so of two
// concurrent consumers exactly one sees the active row; the other blocks
// until commit and then matches nothing, observing ErrTokenAlreadyUsed.
func (r *RecoveryTokenRepository) Consume(ctx context.Context, tokenHash string, now time.Time, mutate auth.AccountMutation) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return oops.Code("RECOVERY_CONSUME_FAILED").
			With("operation", "begin").
			With("cause", err.Error()).
			Wrap(auth.ErrStoreUnavailable)
	}
	// Rollback is a no-op after a successful commit.
	defer func() { _ = tx.Rollback(ctx) }() //nolint:errcheck // commit outcome already decided

	var accountIDStr string
	err = tx.QueryRow(ctx, `
		UPDATE recovery_tokens
		SET used = TRUE
		WHERE token_hash = $1 AND used = FALSE AND expires_at > $2
		RETURNING account_id
	`, tokenHash, now).Scan(&accountIDStr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.classifyInactive(ctx, tx, tokenHash, now)
		}
		if isSerializationFailure(err) {
			return oops.Code("RECOVERY_CONSUME_CONFLICT").Wrap(auth.ErrConcurrentConflict)
		}
		return oops.Code("RECOVERY_CONSUME_FAILED").
			With("operation", "mark used").
			Wrap(err)
	}

	accountID, err := ulid.Parse(accountIDStr)
	if err != nil {
		return oops.Code("RECOVERY_INVALID_ACCOUNT_ID").
			With("account_id", accountIDStr).
			Wrap(err)
	}

	if err := mutate(ctx, &txAccountUpdater{tx: tx}, accountID); err != nil {
		return oops.Code("RECOVERY_CONSUME_FAILED").
			With("operation", "mutate account").
			With("account_id", accountID.String()).
			Wrap(err)
	}

	if err := tx.Commit(ctx); err != nil {
		if isSerializationFailure(err) {
			return oops.Code("RECOVERY_CONSUME_CONFLICT").Wrap(auth.ErrConcurrentConflict)
		}
		return oops.Code("RECOVERY_CONSUME_FAILED").
			With("operation", "commit").
			Wrap(err)
	}
	return nil
}

// classifyInactive distinguishes used, expired and absent tokens after the
// conditional update matched nothing. The distinction stays internal; user
// facing layers collapse all three into one message.
func (r *RecoveryTokenRepository) classifyInactive(ctx context.Context, tx pgx.Tx, tokenHash string, now time.Time) error {
	var (
		used      bool
		expiresAt time.Time
	)
	err := tx.QueryRow(ctx, `
		SELECT used, expires_at FROM recovery_tokens WHERE token_hash = $1
	`, tokenHash).Scan(&used, &expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return oops.Code("RECOVERY_TOKEN_NOT_FOUND").Wrap(auth.ErrTokenNotFound)
	}
	if err != nil {
		return oops.Code("RECOVERY_CONSUME_FAILED").
			With("operation", "classify token").
			Wrap(err)
	}
	if used {
		return oops.Code("RECOVERY_TOKEN_USED").Wrap(auth.ErrTokenAlreadyUsed)
	}
	if !expiresAt.After(now) {
		return oops.Code("RECOVERY_TOKEN_EXPIRED").
			With("expires_at", expiresAt).
			Wrap(auth.ErrTokenExpired)
	}
	// The row was active by the time we re-read it: another transaction
	// raced us and rolled back. Report a conflict; the caller may retry.
	return oops.Code("RECOVERY_CONSUME_CONFLICT").Wrap(auth.ErrConcurrentConflict)
}

// DeleteExpiredBefore removes tokens whose expiry predates the cutoff.
func (r *RecoveryTokenRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(ctx, `
		DELETE FROM recovery_tokens WHERE expires_at < $1
	`, cutoff)
	if err != nil {
		return 0, oops.Code("RECOVERY_DELETE_EXPIRED_FAILED").
			With("cutoff", cutoff).
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

// txAccountUpdater applies account mutations on the consume transaction.
type txAccountUpdater struct {
	tx pgx.Tx
}

func (u *txAccountUpdater) UpdatePasswordHash(ctx context.Context, id ulid.ULID, passwordHash string) error {
	return updatePasswordHash(ctx, u.tx, id, passwordHash)
}

// scanRecoveryToken scans a single row into a RecoveryToken. Callers
// handle pgx.ErrNoRows, which is propagated unchanged.
func scanRecoveryToken(row pgx.Row) (*auth.RecoveryToken, error) {
	var (
		idStr        string
		accountIDStr string
		tokenHash    string
		used         bool
		issuedAt     time.Time
		expiresAt    time.Time
	)

	err := row.Scan(&idStr, &accountIDStr, &tokenHash, &used, &issuedAt, &expiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // callers wrap with context-specific info
		}
		return nil, oops.Code("RECOVERY_SCAN_FAILED").Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("RECOVERY_INVALID_ID").With("id", idStr).Wrap(err)
	}
	accountID, err := ulid.Parse(accountIDStr)
	if err != nil {
		return nil, oops.Code("RECOVERY_INVALID_ACCOUNT_ID").With("account_id", accountIDStr).Wrap(err)
	}

	return &auth.RecoveryToken{
		ID:        id,
		AccountID: accountID,
		TokenHash: tokenHash,
		Used:      used,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

// Compile-time interface checks.
var (
	_ auth.RecoveryTokenRepository = (*RecoveryTokenRepository)(nil)
	_ auth.AccountUpdater          = (*txAccountUpdater)(nil)
)
