// Copyright (C) 2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package reward

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	require := require.New(t)

	fee, remainder := Split(big.NewInt(1_000_000), 1500)
	require.Equal(big.NewInt(150_000), fee)
	require.Equal(big.NewInt(850_000), remainder)
	require.Equal(big.NewInt(1_000_000), new(big.Int).Add(fee, remainder))
}

func TestSplitZeroFee(t *testing.T) {
	require := require.New(t)
	fee, remainder := Split(big.NewInt(1_000_000), 0)
	require.Equal(big.NewInt(0), fee)
	require.Equal(big.NewInt(1_000_000), remainder)
}

func TestZeroCalculatorAlwaysZero(t *testing.T) {
	require := require.New(t)
	var c ZeroCalculator
	now := time.Now()
	reward := c.Calculate(now, now, now.Add(time.Hour), 3600, big.NewInt(1_000_000))
	require.Equal(big.NewInt(0), reward)
}

func TestExponentialDecayCalculatorZeroWhenEndNotAfterStart(t *testing.T) {
	require := require.New(t)
	c := NewExponentialDecayCalculator(ExponentialDecayConfig{BaseYieldBips: 1000})
	now := time.Now()
	reward := c.Calculate(now, now, now, 0, big.NewInt(1_000_000))
	require.Equal(big.NewInt(0), reward)
}

func TestExponentialDecayCalculatorPositiveForFullUptime(t *testing.T) {
	require := require.New(t)
	c := NewExponentialDecayCalculator(ExponentialDecayConfig{BaseYieldBips: 1000})
	start := time.Unix(0, 0)
	end := start.Add(365 * 24 * time.Hour)
	reward := c.Calculate(start, start, end, uint64((365 * 24 * time.Hour).Seconds()), big.NewInt(1_000_000))
	require.Equal(0, reward.Cmp(big.NewInt(100_000)))
}

func TestExponentialDecayCalculatorHalvesAfterHalfLife(t *testing.T) {
	require := require.New(t)
	mintingStart := time.Unix(0, 0)
	c := NewExponentialDecayCalculator(ExponentialDecayConfig{
		BaseYieldBips:      1000,
		DecayHalfLife:      24 * time.Hour,
		MintingPeriodStart: mintingStart,
	})
	start := mintingStart.Add(24 * time.Hour)
	end := start.Add(365 * 24 * time.Hour)
	decayed := c.Calculate(start, start, end, uint64((365 * 24 * time.Hour).Seconds()), big.NewInt(1_000_000))
	require.Equal(0, decayed.Cmp(big.NewInt(50_000)))
}

func TestExponentialDecayCalculatorCapsUptimeAtDuration(t *testing.T) {
	require := require.New(t)
	c := NewExponentialDecayCalculator(ExponentialDecayConfig{BaseYieldBips: 1000})
	start := time.Unix(0, 0)
	end := start.Add(365 * 24 * time.Hour)
	overReported := c.Calculate(start, start, end, uint64((400*24*time.Hour).Seconds()), big.NewInt(1_000_000))
	exact := c.Calculate(start, start, end, uint64((365*24*time.Hour).Seconds()), big.NewInt(1_000_000))
	require.Equal(exact, overReported)
}
