// Copyright (C) 2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package validatormanager implements the base validator lifecycle state
// machine: registration, weight updates, and removal, synchronized with
// the P-Chain over Warp messages, with churn-rate limiting and nonce
// discipline. It is the foundation stakingmanager and poa build on.
package validatormanager

import (
	"github.com/ava-labs/avalanchego/ids"
)

// Status is a validator's position in its lifecycle, per spec.md §3/§4.2.
type Status uint8

const (
	StatusUnknown Status = iota
	StatusPendingAdded
	StatusActive
	StatusPendingRemoved
	StatusCompleted
	StatusInvalidated
)

func (s Status) String() string {
	switch s {
	case StatusUnknown:
		return "Unknown"
	case StatusPendingAdded:
		return "PendingAdded"
	case StatusActive:
		return "Active"
	case StatusPendingRemoved:
		return "PendingRemoved"
	case StatusCompleted:
		return "Completed"
	case StatusInvalidated:
		return "Invalidated"
	default:
		return "Invalid"
	}
}

// IsTerminal reports whether no further transitions leave this status.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusInvalidated
}

// Validator tracks one validator's lifecycle, weight, and nonce state.
// Invariants (enforced by Manager, never by direct field mutation):
// ReceivedNonce <= SentNonce; once Status is terminal no field changes;
// Weight only changes through InitiateValidatorWeightUpdate.
type Validator struct {
	Status         Status
	NodeID         ids.NodeID
	StartingWeight uint64
	Weight         uint64
	SentNonce      uint64
	ReceivedNonce  uint64
	StartTime      uint64
	EndTime        uint64
}

// Clone returns a value copy, safe to hand to callers without exposing the
// manager's internal pointer.
func (v Validator) Clone() Validator {
	return v
}

// ChurnTracker is the single rolling weight-change window per Manager.
type ChurnTracker struct {
	ChurnPeriodSeconds    uint64
	MaximumChurnPercent   uint8
	WindowStart           uint64
	TotalWeightAtStart    uint64
	AbsoluteChurnInWindow uint64
}

// Settings is the Manager's process-wide, one-shot configuration record.
// Treated as immutable after Initialize, per spec.md §9.
type Settings struct {
	SubnetID               ids.ID
	ChurnPeriodSeconds     uint64
	MaximumChurnPercentage uint8
	UptimeBlockchainID     ids.ID
	PChainBlockchainID     ids.ID
}

// MaxTotalWeight bounds l1_total_weight per spec.md §3: must never exceed
// u64::MAX / 4.
const MaxTotalWeight = ^uint64(0) / 4
