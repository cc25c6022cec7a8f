// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ServicePro Contributors

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servicepro/authcore/internal/auth"
	"github.com/servicepro/authcore/internal/auth/postgres"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock")
	t.Cleanup(mock.Close)
	return mock
}

func accountRows(id ulid.ULID, email string) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "email", "display_name", "password_hash", "created_at"}).
		AddRow(id.String(), email, "Pat Provider", "stored-hash", time.Unix(1790000000, 0).UTC())
}

func TestAccountRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	id := ulid.Make()

	t.Run("returns account", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewAccountRepository(mock)

		mock.ExpectQuery(`SELECT id, email, display_name, password_hash, created_at`).
			WithArgs(id.String()).
			WillReturnRows(accountRows(id, "provider@example.com"))

		account, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, account.ID)
		assert.Equal(t, "provider@example.com", account.Email)
		assert.Equal(t, "Pat Provider", account.DisplayName)
		assert.Equal(t, "stored-hash", account.PasswordHash)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps missing row to ErrNotFound", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewAccountRepository(mock)

		mock.ExpectQuery(`SELECT id, email, display_name, password_hash, created_at`).
			WithArgs(id.String()).
			WillReturnError(pgx.ErrNoRows)

		account, err := repo.GetByID(ctx, id)
		require.Error(t, err)
		assert.Nil(t, account)
		assert.ErrorIs(t, err, auth.ErrNotFound)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects malformed stored ID", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewAccountRepository(mock)

		rows := pgxmock.NewRows([]string{"id", "email", "display_name", "password_hash", "created_at"}).
			AddRow("not-a-ulid", "e", "d", "h", time.Now())
		mock.ExpectQuery(`SELECT id, email, display_name, password_hash, created_at`).
			WithArgs(id.String()).
			WillReturnRows(rows)

		account, err := repo.GetByID(ctx, id)
		require.Error(t, err)
		assert.Nil(t, account)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountRepository_GetByEmail(t *testing.T) {
	ctx := context.Background()
	id := ulid.Make()
	email := "provider@example.com"

	t.Run("returns account", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewAccountRepository(mock)

		mock.ExpectQuery(`SELECT id, email, display_name, password_hash, created_at`).
			WithArgs(email).
			WillReturnRows(accountRows(id, email))

		account, err := repo.GetByEmail(ctx, email)
		require.NoError(t, err)
		assert.Equal(t, id, account.ID)
		assert.Equal(t, email, account.Email)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps missing row to ErrNotFound", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewAccountRepository(mock)

		mock.ExpectQuery(`SELECT id, email, display_name, password_hash, created_at`).
			WithArgs(email).
			WillReturnError(pgx.ErrNoRows)

		account, err := repo.GetByEmail(ctx, email)
		require.Error(t, err)
		assert.Nil(t, account)
		assert.ErrorIs(t, err, auth.ErrNotFound)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountRepository_UpdatePasswordHash(t *testing.T) {
	ctx := context.Background()
	id := ulid.Make()

	t.Run("updates the hash", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewAccountRepository(mock)

		mock.ExpectExec(`UPDATE accounts SET password_hash`).
			WithArgs(id.String(), "new-hash").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.UpdatePasswordHash(ctx, id, "new-hash")
		require.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps zero affected rows to ErrNotFound", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewAccountRepository(mock)

		mock.ExpectExec(`UPDATE accounts SET password_hash`).
			WithArgs(id.String(), "new-hash").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.UpdatePasswordHash(ctx, id, "new-hash")
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrNotFound)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("wraps exec failures", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewAccountRepository(mock)

		mock.ExpectExec(`UPDATE accounts SET password_hash`).
			WithArgs(id.String(), "new-hash").
			WillReturnError(assert.AnError)

		err := repo.UpdatePasswordHash(ctx, id, "new-hash")
		require.Error(t, err)
		assert.Contains(t, err.Error(), assert.AnError.Error())

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
