// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ServicePro Contributors

package auth

import (
	"context"
	"log/slog"
)

// Notifier delivers the recovery link to the account holder. Delivery is
// best effort: RecoveryService logs failures and never surfaces them.
type Notifier interface {
	SendRecoveryLink(ctx context.Context, account *Account, token string) error
}

// LogNotifier is a Notifier that only logs that a delivery would happen.
// Used in development and as a safe default until a mail sender is wired.
// It never logs the token value itself.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier. A nil logger selects slog.Default.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// SendRecoveryLink logs the delivery without revealing the token.
func (n *LogNotifier) SendRecoveryLink(ctx context.Context, account *Account, _ string) error {
	n.logger.InfoContext(ctx, "recovery link issued",
		"account_id", account.ID.String(),
		"email", account.Email)
	return nil
}
