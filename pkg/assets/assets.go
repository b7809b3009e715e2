// Copyright (C) 2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package assets defines the staking backend hook stakingmanager locks,
// unlocks, and pays rewards through, external to the core per spec.md §6.
package assets

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Locker abstracts a concrete staking backend (native coin or fungible
// token). The core invokes these only at well-defined commit points,
// never mid-mutation, per spec.md §5's checks-effects-interactions note.
type Locker interface {
	// Lock takes custody of value and returns the effective locked value,
	// which may be less than value due to decimals normalization.
	Lock(value *big.Int) (*big.Int, error)
	// Unlock returns a previously locked value to to.
	Unlock(to common.Address, value *big.Int) error
	// Reward mints or transfers amount to to.
	Reward(to common.Address, amount *big.Int) error
}
