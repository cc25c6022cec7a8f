// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ServicePro Contributors

package auth

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/oops"
)

// defaultSweepTimeout bounds a single sweep so a stalled database cannot
// hang the reaper.
const defaultSweepTimeout = time.Minute

// ReaperConfig defines the sweep schedule for expired recovery tokens.
type ReaperConfig struct {
	// Interval is how often the sweep runs.
	Interval time.Duration
	// Retention is how long expired tokens are kept before deletion, so
	// recently expired tokens stay inspectable for support.
	Retention time.Duration
	// Timeout bounds a single sweep. Zero selects the default.
	Timeout time.Duration
}

// DefaultReaperConfig returns the default reaper configuration.
func DefaultReaperConfig() ReaperConfig {
	return ReaperConfig{
		Interval:  24 * time.Hour,
		Retention: 7 * 24 * time.Hour,
		Timeout:   defaultSweepTimeout,
	}
}

// ExpiryReaper periodically deletes recovery tokens that expired longer
// than the retention window ago. Every row it removes is already
// unredeemable, so the sweep is idempotent and safe to skip, delay or run
// concurrently with request handling.
type ExpiryReaper struct {
	cfg    ReaperConfig
	tokens RecoveryTokenRepository
	logger *slog.Logger
	clock  Clock

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// ReaperOption customizes an ExpiryReaper.
type ReaperOption func(*ExpiryReaper)

// WithReaperClock overrides the reaper's clock, for tests.
func WithReaperClock(clock Clock) ReaperOption {
	return func(r *ExpiryReaper) { r.clock = clock }
}

// WithReaperLogger overrides the reaper's logger.
func WithReaperLogger(logger *slog.Logger) ReaperOption {
	return func(r *ExpiryReaper) { r.logger = logger }
}

// NewExpiryReaper creates an ExpiryReaper.
func NewExpiryReaper(cfg ReaperConfig, tokens RecoveryTokenRepository, opts ...ReaperOption) (*ExpiryReaper, error) {
	if tokens == nil {
		return nil, oops.Code("REAPER_CONFIG_INVALID").Errorf("token repository is required")
	}
	if cfg.Interval <= 0 {
		return nil, oops.Code("REAPER_CONFIG_INVALID").Errorf("interval must be positive, got %s", cfg.Interval)
	}
	if cfg.Retention < 0 {
		return nil, oops.Code("REAPER_CONFIG_INVALID").Errorf("retention cannot be negative, got %s", cfg.Retention)
	}
	if cfg.Timeout < 0 {
		return nil, oops.Code("REAPER_CONFIG_INVALID").Errorf("timeout cannot be negative, got %s", cfg.Timeout)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultSweepTimeout
	}

	r := &ExpiryReaper{
		cfg:    cfg,
		tokens: tokens,
		logger: slog.Default(),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// RunOnce executes a single sweep, bounded by the configured timeout.
func (r *ExpiryReaper) RunOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	cutoff := r.clock().Add(-r.cfg.Retention)
	deleted, err := r.tokens.DeleteExpiredBefore(ctx, cutoff)
	if err != nil {
		return oops.Code("REAPER_SWEEP_FAILED").
			With("cutoff", cutoff).
			Wrap(err)
	}

	RecordTokensReaped(deleted)
	if deleted > 0 {
		r.logger.InfoContext(ctx, "deleted expired recovery tokens",
			"count", deleted,
			"cutoff", cutoff)
	}
	return nil
}

// Start begins periodic sweeping. The first sweep runs immediately.
func (r *ExpiryReaper) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)
	r.wg.Add(1)
	go r.run(ctx)
}

// Stop stops the reaper and waits for the current sweep to finish.
func (r *ExpiryReaper) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
}

func (r *ExpiryReaper) run(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	if err := r.RunOnce(ctx); err != nil {
		r.logger.ErrorContext(ctx, "recovery token sweep failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.RunOnce(ctx); err != nil {
				r.logger.ErrorContext(ctx, "recovery token sweep failed", "error", err)
			}
		}
	}
}
