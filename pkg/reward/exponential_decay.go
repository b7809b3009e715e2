// Copyright (C) 2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package reward

import (
	"math/big"
	"time"
)

// ExponentialDecayConfig parameterizes ExponentialDecayCalculator, in the
// same shape as avalanchego's reward.Config (consumption rate bounds over a
// minting period), re-targeted from "new token supply" to "uptime-weighted
// yield on locked stake": the decay shrinks the yield the longer the whole
// system has been minting, the way avalanchego's calculator shrinks
// consumption as circulating supply approaches its cap.
type ExponentialDecayConfig struct {
	// BaseYieldBips is the annualized yield, in basis points, paid for a
	// staking interval at perfect uptime with no decay applied.
	BaseYieldBips uint64
	// DecayHalfLife is the interval over which the effective yield is
	// halved, modeling the same "consumption rate falls as the minting
	// period elapses" shape as avalanchego's calculator, without needing
	// a live supply-cap oracle.
	DecayHalfLife time.Duration
	// MintingPeriodStart anchors the decay curve; validators that start
	// staking further from this instant see a smaller effective yield.
	MintingPeriodStart time.Time
}

// ExponentialDecayCalculator computes a reward proportional to stake,
// staked duration, and observed uptime ratio, decayed exponentially by how
// far the staking interval's start sits past MintingPeriodStart. It is
// grounded on avalanchego/vms/platformvm/reward.calculator's shape (a
// config-driven consumption-rate decay over a minting period) but computes
// a per-staker yield instead of a network-wide supply increase.
type ExponentialDecayCalculator struct {
	cfg ExponentialDecayConfig
}

func NewExponentialDecayCalculator(cfg ExponentialDecayConfig) *ExponentialDecayCalculator {
	return &ExponentialDecayCalculator{cfg: cfg}
}

func (c *ExponentialDecayCalculator) Calculate(
	validatorStartTime, stakingStartTime, stakingEndTime time.Time,
	uptimeSeconds uint64,
	stakeAmount *big.Int,
) *big.Int {
	if !stakingEndTime.After(stakingStartTime) {
		return new(big.Int)
	}
	stakedDuration := stakingEndTime.Sub(stakingStartTime)

	observedDuration := time.Duration(uptimeSeconds) * time.Second
	uptimeRatioNum, uptimeRatioDen := observedDuration, stakedDuration
	if uptimeRatioNum > uptimeRatioDen {
		uptimeRatioNum = uptimeRatioDen
	}

	decayFactorNum, decayFactorDen := c.decayFactor(stakingStartTime)

	// reward = stake * baseYieldBips/10000 * (stakedDuration/year)
	//        * (uptimeRatioNum/uptimeRatioDen) * (decayFactorNum/decayFactorDen)
	const secondsPerYear = 365 * 24 * 3600

	reward := new(big.Int).Set(stakeAmount)
	reward.Mul(reward, big.NewInt(int64(c.cfg.BaseYieldBips)))
	reward.Mul(reward, big.NewInt(int64(stakedDuration.Seconds())))
	reward.Mul(reward, big.NewInt(int64(uptimeRatioNum.Seconds())))
	reward.Mul(reward, decayFactorNum)

	denom := big.NewInt(BipsDenominator)
	denom.Mul(denom, big.NewInt(secondsPerYear))
	denom.Mul(denom, big.NewInt(int64(uptimeRatioDen.Seconds())))
	denom.Mul(denom, decayFactorDen)

	if denom.Sign() == 0 {
		return new(big.Int)
	}
	reward.Div(reward, denom)
	return reward
}

// decayFactor returns a rational approximation of 2^(-elapsed/halfLife)
// scaled to avoid floating point, where elapsed is the time between
// MintingPeriodStart and t.
func (c *ExponentialDecayCalculator) decayFactor(t time.Time) (num, den *big.Int) {
	if c.cfg.DecayHalfLife <= 0 || !t.After(c.cfg.MintingPeriodStart) {
		return big.NewInt(1), big.NewInt(1)
	}
	elapsed := t.Sub(c.cfg.MintingPeriodStart)
	halvings := int64(elapsed / c.cfg.DecayHalfLife)
	if halvings <= 0 {
		return big.NewInt(1), big.NewInt(1)
	}
	const maxHalvings = 64 // beyond this the factor underflows to zero anyway
	if halvings > maxHalvings {
		return big.NewInt(0), big.NewInt(1)
	}
	den = new(big.Int).Lsh(big.NewInt(1), uint(halvings))
	return big.NewInt(1), den
}
