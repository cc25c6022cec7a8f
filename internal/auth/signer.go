// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ServicePro Contributors

package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"
)

// Signer produces and verifies tamper-evident encodings of SessionClaims
// as compact HS256 JWS strings. It is a pure cryptographic primitive: it
// does not check expiry, leaving that to SessionService.
type Signer struct {
	secrets [][]byte
	keySet  jwt.VerificationKeySet
	parser  *jwt.Parser
}

// signedClaims is the wire shape of SessionClaims.
type signedClaims struct {
	jwt.RegisteredClaims
	Attributes map[string]string `json:"attrs,omitempty"`
}

// NewSigner creates a Signer from one or more secrets. The first secret
// signs new tokens; every secret is tried during verification so secrets
// can be rotated without invalidating live tokens.
func NewSigner(secrets [][]byte) (*Signer, error) {
	if len(secrets) == 0 {
		return nil, oops.Code("SIGNER_NO_SECRETS").Errorf("at least one signing secret is required")
	}
	keys := make([]jwt.VerificationKey, 0, len(secrets))
	for i, s := range secrets {
		if len(s) == 0 {
			return nil, oops.Code("SIGNER_EMPTY_SECRET").With("index", i).Errorf("signing secret cannot be empty")
		}
		keys = append(keys, s)
	}

	return &Signer{
		secrets: secrets,
		keySet:  jwt.VerificationKeySet{Keys: keys},
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			// Expiry is checked by SessionService against its injected clock.
			jwt.WithoutClaimsValidation(),
		),
	}, nil
}

// Sign serializes the claims and signs them with the primary secret.
func (s *Signer) Sign(claims SessionClaims) (string, error) {
	wire := signedClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.Subject,
			IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		},
		Attributes: claims.Attributes,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, wire).SignedString(s.secrets[0])
	if err != nil {
		return "", oops.Code("SIGNER_SIGN_FAILED").Wrap(err)
	}
	return token, nil
}

// Verify parses the token and checks its signature against every configured
// secret in constant time. Returns ErrTokenMalformed when the token cannot
// be parsed and ErrSignatureInvalid when no secret matches.
func (s *Signer) Verify(token string) (SessionClaims, error) {
	parsed, err := s.parser.ParseWithClaims(token, &signedClaims{}, func(*jwt.Token) (any, error) {
		return s.keySet, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return SessionClaims{}, oops.Code("SIGNER_SIGNATURE_INVALID").Wrap(ErrSignatureInvalid)
		default:
			return SessionClaims{}, oops.Code("SIGNER_TOKEN_MALFORMED").With("cause", err.Error()).Wrap(ErrTokenMalformed)
		}
	}

	wire, ok := parsed.Claims.(*signedClaims)
	if !ok {
		return SessionClaims{}, oops.Code("SIGNER_TOKEN_MALFORMED").Wrap(ErrTokenMalformed)
	}

	claims := SessionClaims{
		Subject:    wire.Subject,
		Attributes: wire.Attributes,
	}
	if wire.IssuedAt != nil {
		claims.IssuedAt = wire.IssuedAt.Time
	}
	if wire.ExpiresAt != nil {
		claims.ExpiresAt = wire.ExpiresAt.Time
	}
	return claims, nil
}
