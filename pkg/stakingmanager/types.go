// Copyright (C) 2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package stakingmanager layers stake locking, delegation, uptime-based
// rewards, and fee accounting on top of validatormanager, per spec.md
// §4.3. It owns stake/delegation/reward state exclusively; it never
// mutates the validator set or churn ledger directly, only through
// validatormanager's public operations.
package stakingmanager

import (
	"math/big"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ethereum/go-ethereum/common"
)

// DelegatorStatus is a delegator's position in its lifecycle, spec.md §3.
type DelegatorStatus uint8

const (
	DelegatorStatusUnknown DelegatorStatus = iota
	DelegatorStatusPendingAdded
	DelegatorStatusActive
	DelegatorStatusPendingRemoved
	DelegatorStatusCompleted
)

func (s DelegatorStatus) String() string {
	switch s {
	case DelegatorStatusUnknown:
		return "Unknown"
	case DelegatorStatusPendingAdded:
		return "PendingAdded"
	case DelegatorStatusActive:
		return "Active"
	case DelegatorStatusPendingRemoved:
		return "PendingRemoved"
	case DelegatorStatusCompleted:
		return "Completed"
	default:
		return "Invalid"
	}
}

// Delegator tracks one delegator's contribution to a validator's weight.
// Deleted on Completed, unlike Validator/PoSValidatorInfo which are
// history-retained.
type Delegator struct {
	Status        DelegatorStatus
	Owner         common.Address
	ValidationID  ids.ID
	Weight        uint64
	StartTime     uint64
	StartingNonce uint64
	EndingNonce   uint64
}

func (d Delegator) Clone() Delegator { return d }

// PoSValidatorInfo marks a validator as Proof-of-Stake (having an entry
// in StakingManager's posInfo map distinguishes it from
// migrated-PoA/bootstrap validators, which earn no rewards; the Owner
// address itself is not checked for zero) and carries the fields unique
// to the staking path. Created on
// registration, mutated only by uptime updates, never deleted.
type PoSValidatorInfo struct {
	Owner             common.Address
	DelegationFeeBips uint16
	MinStakeDuration  uint64
	UptimeSeconds     uint64
}

func (p PoSValidatorInfo) Clone() PoSValidatorInfo { return p }

// Settings is the StakingManager's process-wide, one-shot configuration
// record, immutable after Initialize per spec.md §9.
type Settings struct {
	MinimumStakeAmount       *big.Int
	MaximumStakeAmount       *big.Int
	MinimumStakeDuration     uint64
	MinimumDelegationFeeBips uint16
	MaximumStakeMultiplier   uint8
	WeightToValueFactor      *big.Int
	UptimeBlockchainID       ids.ID
}
