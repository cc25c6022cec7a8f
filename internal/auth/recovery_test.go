// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ServicePro Contributors

package auth_test

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servicepro/authcore/internal/auth"
)

func TestNewRecoveryToken(t *testing.T) {
	accountID := ulid.Make()
	issuedAt := time.Unix(1790000000, 0).UTC()

	t.Run("creates a valid token", func(t *testing.T) {
		token, err := auth.NewRecoveryToken(accountID, "somehash", issuedAt, time.Hour)
		require.NoError(t, err)
		assert.NotEqual(t, ulid.ULID{}, token.ID)
		assert.Equal(t, accountID, token.AccountID)
		assert.Equal(t, "somehash", token.TokenHash)
		assert.False(t, token.Used)
		assert.Equal(t, issuedAt, token.IssuedAt)
		assert.Equal(t, issuedAt.Add(time.Hour), token.ExpiresAt)
	})

	t.Run("rejects zero account ID", func(t *testing.T) {
		token, err := auth.NewRecoveryToken(ulid.ULID{}, "somehash", issuedAt, time.Hour)
		require.Error(t, err)
		assert.Nil(t, token)
	})

	t.Run("rejects empty hash", func(t *testing.T) {
		token, err := auth.NewRecoveryToken(accountID, "", issuedAt, time.Hour)
		require.Error(t, err)
		assert.Nil(t, token)
	})

	t.Run("rejects non-positive ttl", func(t *testing.T) {
		for _, ttl := range []time.Duration{0, -time.Hour} {
			token, err := auth.NewRecoveryToken(accountID, "somehash", issuedAt, ttl)
			require.Error(t, err, "ttl %s", ttl)
			assert.Nil(t, token)
		}
	})
}

func TestRecoveryToken_Lifecycle(t *testing.T) {
	issuedAt := time.Unix(1790000000, 0).UTC()
	token, err := auth.NewRecoveryToken(ulid.Make(), "somehash", issuedAt, time.Hour)
	require.NoError(t, err)

	t.Run("active before expiry", func(t *testing.T) {
		assert.True(t, token.ActiveAt(issuedAt))
		assert.True(t, token.ActiveAt(issuedAt.Add(59*time.Minute)))
	})

	t.Run("active at the exact deadline", func(t *testing.T) {
		assert.False(t, token.ExpiredAt(token.ExpiresAt))
		assert.True(t, token.ActiveAt(token.ExpiresAt))
	})

	t.Run("expired after the deadline", func(t *testing.T) {
		after := token.ExpiresAt.Add(time.Nanosecond)
		assert.True(t, token.ExpiredAt(after))
		assert.False(t, token.ActiveAt(after))
	})

	t.Run("used token is never active", func(t *testing.T) {
		used := *token
		used.Used = true
		assert.False(t, used.ActiveAt(issuedAt))
	})
}

func TestGenerateRecoveryToken(t *testing.T) {
	t.Run("generates value and matching hash", func(t *testing.T) {
		value, hash, err := auth.GenerateRecoveryToken()
		require.NoError(t, err)
		assert.Len(t, value, auth.RecoveryTokenBytes*2) // hex encoding
		assert.Equal(t, auth.HashRecoveryToken(value), hash)
		assert.NotEqual(t, value, hash)
	})

	t.Run("values are unique", func(t *testing.T) {
		seen := make(map[string]bool)
		for range 100 {
			value, _, err := auth.GenerateRecoveryToken()
			require.NoError(t, err)
			assert.False(t, seen[value], "duplicate token value")
			seen[value] = true
		}
	})
}

func TestVerifyRecoveryToken(t *testing.T) {
	value, hash, err := auth.GenerateRecoveryToken()
	require.NoError(t, err)

	assert.True(t, auth.VerifyRecoveryToken(value, hash))
	assert.False(t, auth.VerifyRecoveryToken("wrong", hash))
	assert.False(t, auth.VerifyRecoveryToken("", hash))
	assert.False(t, auth.VerifyRecoveryToken(value, ""))
	assert.False(t, auth.VerifyRecoveryToken(value, auth.HashRecoveryToken("other")))
}
