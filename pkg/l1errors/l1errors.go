// Copyright (C) 2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package l1errors collects the sentinel errors shared by the validator
// manager, staking manager, and message codec, following the small
// var-block-of-sentinels convention the rest of this codebase uses for
// typed, errors.Is-friendly failures.
package l1errors

import (
	"errors"
	"fmt"
)

// Initialization / configuration.
var (
	ErrAlreadyInitialized        = errors.New("already initialized")
	ErrNotInitialized            = errors.New("not initialized")
	ErrInvalidChurnPercentage    = errors.New("invalid churn percentage")
	ErrInvalidDelegationFee      = errors.New("invalid delegation fee")
	ErrInvalidStakeAmount        = errors.New("invalid stake amount")
	ErrInvalidMinStakeDuration   = errors.New("invalid minimum stake duration")
	ErrInvalidStakeMultiplier    = errors.New("invalid stake multiplier")
	ErrZeroWeightToValueFactor   = errors.New("weight to value factor must be non-zero")
	ErrInvalidUptimeBlockchainID = errors.New("invalid uptime blockchain id")
)

// State machine.
var (
	ErrValidatorNotFound        = errors.New("validator not found")
	ErrDelegatorNotFound        = errors.New("delegator not found")
	ErrNodeAlreadyRegistered    = errors.New("node already registered")
	ErrInvalidValidationID      = errors.New("invalid validation id")
	ErrInvalidDelegationID      = errors.New("invalid delegation id")
	ErrValidatorNotPoS          = errors.New("validator is not a proof-of-stake validator")
	ErrValidatorIneligible      = errors.New("validator ineligible for rewards")
	ErrDelegatorIneligible      = errors.New("delegator ineligible for rewards")
	ErrMaxChurnRateExceeded     = errors.New("maximum churn rate exceeded")
	ErrInvalidWarpMessage       = errors.New("invalid warp message")
	ErrInvalidWarpSourceChainID = errors.New("invalid warp source chain id")
	ErrInvalidWarpOriginSender  = errors.New("invalid warp origin sender address")
	ErrInvalidCodecID           = errors.New("invalid codec id")
	ErrInvalidMessageType       = errors.New("invalid message type")
	ErrInvalidBLSPublicKey      = errors.New("invalid bls public key")
	ErrInvalidPChainOwner       = errors.New("invalid p-chain owner: threshold exceeds address count")
	ErrUnauthorizedOwner        = errors.New("caller is not the owner")
	ErrInvalidRewardRecipient   = errors.New("invalid reward recipient")
	ErrReentrantCall            = errors.New("reentrant call rejected")
	ErrRegistrationExpired      = errors.New("registration already expired")
)

// Base sentinels for the parameterized constructors below, so callers can
// still errors.Is/errors.As against a fixed value despite the message
// carrying data, matching spec.md §7's named-but-parameterized error kinds.
var (
	ErrInvalidValidatorStatus    = errors.New("invalid validator status")
	ErrInvalidDelegatorStatus    = errors.New("invalid delegator status")
	ErrMinStakeDurationNotPassed = errors.New("minimum stake duration not passed")
	ErrMaxWeightExceeded         = errors.New("max weight exceeded")
	ErrInvalidTotalWeight        = errors.New("invalid total weight")
	ErrInvalidNonce              = errors.New("invalid nonce")
	ErrUnexpectedValidationID    = errors.New("unexpected validation id")
	ErrInvalidMessageLength      = errors.New("invalid message length")
)

// InvalidValidatorStatus reports an operation attempted against a validator
// in a status that does not support it.
func InvalidValidatorStatus(status fmt.Stringer) error {
	return fmt.Errorf("%w: %s", ErrInvalidValidatorStatus, status)
}

// InvalidDelegatorStatus reports an operation attempted against a delegator
// in a status that does not support it.
func InvalidDelegatorStatus(status fmt.Stringer) error {
	return fmt.Errorf("%w: %s", ErrInvalidDelegatorStatus, status)
}

// MinStakeDurationNotPassed reports a removal attempted before the minimum
// stake duration elapsed; endTime is the earliest time removal is allowed.
func MinStakeDurationNotPassed(endTime uint64) error {
	return fmt.Errorf("%w: earliest removal at %d", ErrMinStakeDurationNotPassed, endTime)
}

// MaxWeightExceeded reports a delegation that would push a validator's
// weight beyond starting_weight * maximum_stake_multiplier.
func MaxWeightExceeded(newWeight uint64) error {
	return fmt.Errorf("%w: new weight %d", ErrMaxWeightExceeded, newWeight)
}

// InvalidTotalWeight reports an admission that would overflow or otherwise
// violate the l1_total_weight bound.
func InvalidTotalWeight(weight uint64) error {
	return fmt.Errorf("%w: %d", ErrInvalidTotalWeight, weight)
}

// InvalidNonce reports an inbound weight-update nonce lower than the
// validator's current received_nonce.
func InvalidNonce(got uint64) error {
	return fmt.Errorf("%w: %d", ErrInvalidNonce, got)
}

// UnexpectedValidationID reports a parsed Warp payload whose validation id
// does not match what the caller expected.
func UnexpectedValidationID(got, expected [32]byte) error {
	return fmt.Errorf("%w: got %x, expected %x", ErrUnexpectedValidationID, got, expected)
}

// InvalidMessageLength reports a codec payload whose length does not match
// the fixed-width shape of its declared message type.
func InvalidMessageLength(got, expected int) error {
	return fmt.Errorf("%w: got %d, expected %d", ErrInvalidMessageLength, got, expected)
}
