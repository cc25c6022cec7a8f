// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ServicePro Contributors

package auth

import (
	"context"
	"errors"

	"github.com/samber/oops"
)

// Service authenticates accounts and hands out session tokens.
type Service struct {
	accounts AccountRepository
	sessions *SessionService
	hasher   PasswordHasher
}

// dummyPasswordHash is verified when the account does not exist so lookup
// hits and misses take the same time. It can never match a real password.
//
//nolint:gosec // G101: intentionally fake hash for timing uniformity, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// NewService creates an authentication Service.
func NewService(accounts AccountRepository, sessions *SessionService, hasher PasswordHasher) (*Service, error) {
	if accounts == nil {
		return nil, oops.Code("AUTH_CONFIG_INVALID").Errorf("account repository is required")
	}
	if sessions == nil {
		return nil, oops.Code("AUTH_CONFIG_INVALID").Errorf("session service is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_CONFIG_INVALID").Errorf("password hasher is required")
	}
	return &Service{accounts: accounts, sessions: sessions, hasher: hasher}, nil
}

// Login verifies the credentials and issues a signed session token. Unknown
// emails and wrong passwords produce the same error; password verification
// runs either way so response time does not reveal which case occurred.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	account, lookupErr := s.accounts.GetByEmail(ctx, email)

	targetHash := dummyPasswordHash
	accountExists := false
	switch {
	case lookupErr == nil:
		targetHash = account.PasswordHash
		accountExists = true
	case errors.Is(lookupErr, ErrNotFound):
		// Keep going with the dummy hash.
	default:
		return "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "GetByEmail").
			Wrap(lookupErr)
	}

	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if verifyErr != nil {
		if !accountExists {
			return "", oops.Code("AUTH_INVALID_CREDENTIALS").Errorf("invalid email or password")
		}
		return "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "Verify").
			Wrap(verifyErr)
	}
	if !accountExists || !valid {
		return "", oops.Code("AUTH_INVALID_CREDENTIALS").Errorf("invalid email or password")
	}

	attributes := map[string]string{
		"email": account.Email,
		"name":  account.DisplayName,
	}
	return s.sessions.Issue(account.ID.String(), attributes, 0)
}
