// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ServicePro Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/servicepro/authcore/internal/auth"
	authpg "github.com/servicepro/authcore/internal/auth/postgres"
	"github.com/servicepro/authcore/internal/logging"
	"github.com/servicepro/authcore/internal/observability"
	"github.com/servicepro/authcore/internal/store"
)

// NewReapCmd creates the reap subcommand.
func NewReapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reap",
		Short: "Delete long-expired recovery tokens",
		Long: `Delete recovery tokens whose expiry predates the retention window.
Runs periodically by default; --once performs a single sweep and exits.`,
		RunE: runReap,
	}
	cmd.Flags().Bool("once", false, "run a single sweep and exit")
	return cmd
}

func runReap(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database.url is required")
	}

	logging.SetDefault("authcore", version, cfg.Log.Format)

	ctx := cmd.Context()
	pool, err := store.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	reaper, err := auth.NewExpiryReaper(auth.ReaperConfig{
		Interval:  cfg.Reaper.Interval,
		Retention: cfg.Reaper.Retention,
	}, authpg.NewRecoveryTokenRepository(pool))
	if err != nil {
		return err
	}

	once, err := cmd.Flags().GetBool("once")
	if err != nil {
		return err //nolint:wrapcheck // flag access cannot fail for registered flags
	}
	if once {
		return reaper.RunOnce(ctx)
	}

	var obs *observability.Server
	var obsErrCh <-chan error
	if cfg.Metrics.Addr != "" {
		obs = observability.NewServer(cfg.Metrics.Addr, func(ctx context.Context) bool {
			return pool.Ping(ctx) == nil
		})
		obsErrCh, err = obs.Start()
		if err != nil {
			return err
		}
	}

	reaper.Start(ctx)
	slog.InfoContext(ctx, "reaper started",
		"interval", cfg.Reaper.Interval.String(),
		"retention", cfg.Reaper.Retention.String())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		slog.Info("shutting down", "signal", sig.String())
	case serveErr := <-obsErrCh:
		if serveErr != nil {
			slog.Error("observability server failed, shutting down", "error", serveErr)
		}
	case <-ctx.Done():
	}

	reaper.Stop()
	if obs != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := obs.Stop(stopCtx); err != nil {
			slog.Warn("observability shutdown failed", "error", err)
		}
	}
	return nil
}
