// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ServicePro Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/servicepro/authcore/internal/config"
	"github.com/servicepro/authcore/internal/xdg"
)

// NewRootCmd creates the root command for the authcore CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authcore",
		Short: "ServicePro credential and recovery-token service",
		Long: `authcore manages signed session tokens and single-use password
recovery tokens for the ServicePro booking backend.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "config file path")
	cmd.PersistentFlags().String("database.url", "", "PostgreSQL connection URL")
	cmd.PersistentFlags().String("log.format", "", "log format (json|text)")

	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewReapCmd())

	return cmd
}

// loadConfig resolves the configuration for a command invocation:
// defaults, then the --config file (or the XDG default location), then
// flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return config.Config{}, err //nolint:wrapcheck // flag access cannot fail for registered flags
	}
	if path == "" {
		path = xdg.ConfigFile()
	}
	return config.Load(path, cmd.Flags())
}
