// Copyright (C) 2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package simulate provides l1vmctl's cobra command tree: a single "run"
// subcommand that drives the end-to-end lifecycle demo described in
// SPEC_FULL.md §10, grounded on the teacher's cmd/root.go
// setupLogging/Execute shape.
package simulate

import (
	"fmt"
	"os"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/spf13/cobra"

	"github.com/ava-labs/l1-validator-manager/pkg/ux"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "l1vmctl",
	Short: "inspect and simulate an L1 validator/staking manager lifecycle",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "drive one registration -> delegation -> uptime -> removal cycle against in-memory backends",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := setupLogging()
		if err != nil {
			return err
		}
		return run(log)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.AddCommand(runCmd)
}

// Execute runs the l1vmctl command tree; this is cmd.Execute's analog in
// the teacher's main.go.
func Execute() error {
	return rootCmd.Execute()
}

func setupLogging() (logging.Logger, error) {
	level, err := logging.ToLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	config := logging.Config{}
	config.LogLevel = level
	config.DisplayLevel = level
	config.LogFormat = logging.Colors

	factory := logging.NewFactory(config)
	log, err := factory.Make("l1vmctl")
	if err != nil {
		factory.Close()
		return nil, fmt.Errorf("failed setting up logging: %w", err)
	}
	ux.NewUserLog(log, os.Stdout)
	return log, nil
}
