// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ServicePro Contributors

// Package auth implements the credential core of the ServicePro backend:
// stateless signed session tokens and the single-use, expiring
// password-recovery token lifecycle.
//
// Session tokens are self-contained HMAC-signed claims verified without a
// database lookup. Recovery tokens are opaque random values stored hashed,
// valid for at most one redemption; the redemption and the account's
// password update commit as a single transaction.
package auth
