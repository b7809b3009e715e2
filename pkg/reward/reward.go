// Copyright (C) 2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package reward provides the pluggable strategy the staking manager calls
// to turn (stake, interval, uptime) into a payout, plus the fee-split
// arithmetic shared by validator and delegator reward distribution.
package reward

import (
	"math/big"
	"time"
)

// BipsDenominator is 100% expressed in basis points, per spec.md's glossary
// (BIPS: basis points; 10000 = 100%).
const BipsDenominator = 10_000

// Calculator is a pure, deterministic function mapping a stake and its
// observed interval/uptime to a reward amount. Implementations must never
// depend on anything but their arguments: same inputs, same output, every
// time, on every replica.
type Calculator interface {
	// Calculate returns the reward earned by stakeAmount locked from
	// stakingStartTime to stakingEndTime, where the underlying validator
	// itself started validating at validatorStartTime and accrued
	// uptimeSeconds of observed activity. Returns zero if
	// stakingEndTime does not strictly follow stakingStartTime.
	Calculate(
		validatorStartTime, stakingStartTime, stakingEndTime time.Time,
		uptimeSeconds uint64,
		stakeAmount *big.Int,
	) *big.Int
}

// Split divides totalAmount into a validator-fee share (feeBips/10000 of
// the total) and the remainder, rounding the fee down, the same way
// avalanchego/vms/platformvm/reward.Split divides a reward between a
// validator and its delegators, re-keyed from a percent-of-PercentDenominator
// split onto spec.md's delegation_fee_bips/10000 split.
//
// Invariant: feeBips <= BipsDenominator.
func Split(totalAmount *big.Int, feeBips uint16) (feeAmount, remainderAmount *big.Int) {
	fee := new(big.Int).Mul(totalAmount, big.NewInt(int64(feeBips)))
	fee.Div(fee, big.NewInt(BipsDenominator))
	remainder := new(big.Int).Sub(totalAmount, fee)
	return fee, remainder
}

// ZeroCalculator always returns zero. It models bootstrap and
// migrated-from-PoA validators, which spec.md §3 says earn no rewards
// because they carry no PoSValidatorInfo.
type ZeroCalculator struct{}

func (ZeroCalculator) Calculate(time.Time, time.Time, time.Time, uint64, *big.Int) *big.Int {
	return new(big.Int)
}
