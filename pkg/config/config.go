// Copyright (C) 2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config loads the one-shot validatormanager/stakingmanager
// settings record from a JSON file via spf13/viper, grounded on the
// teacher's pkg/config.Config SetConfig/MergeConfig pattern but narrowed
// to this module's domain: subnet id, churn parameters, staking bounds,
// and reward-calculator selection, per SPEC_FULL.md §10.
package config

import (
	"fmt"
	"math/big"
	"path/filepath"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ava-labs/l1-validator-manager/pkg/reward"
	"github.com/ava-labs/l1-validator-manager/pkg/stakingmanager"
	"github.com/ava-labs/l1-validator-manager/pkg/validatormanager"
)

// RewardCalculatorKind selects which reward.Calculator a loaded Settings
// record wires up.
type RewardCalculatorKind string

const (
	RewardCalculatorZero             RewardCalculatorKind = "zero"
	RewardCalculatorExponentialDecay RewardCalculatorKind = "exponential-decay"
)

// Settings is the deserialized on-disk configuration: the
// validatormanager and stakingmanager settings records plus reward
// calculator selection, loaded once at startup.
type Settings struct {
	ValidatorManager validatormanager.Settings
	StakingManager   stakingmanager.Settings
	RewardCalculator RewardCalculatorKind
	ExponentialDecay reward.ExponentialDecayConfig
}

// raw mirrors Settings in the plain, viper-friendly shapes (strings for
// ids.ID/big.Int, seconds for durations) that JSON actually carries.
type raw struct {
	SubnetID               string `mapstructure:"subnet_id"`
	PChainBlockchainID     string `mapstructure:"p_chain_blockchain_id"`
	ChurnPeriodSeconds     uint64 `mapstructure:"churn_period_seconds"`
	MaximumChurnPercentage uint8  `mapstructure:"maximum_churn_percentage"`

	UptimeBlockchainID       string `mapstructure:"uptime_blockchain_id"`
	MinimumStakeAmount       string `mapstructure:"minimum_stake_amount"`
	MaximumStakeAmount       string `mapstructure:"maximum_stake_amount"`
	MinimumStakeDuration     uint64 `mapstructure:"minimum_stake_duration_seconds"`
	MinimumDelegationFeeBips uint16 `mapstructure:"minimum_delegation_fee_bips"`
	MaximumStakeMultiplier   uint8  `mapstructure:"maximum_stake_multiplier"`
	WeightToValueFactor      string `mapstructure:"weight_to_value_factor"`

	RewardCalculator        string `mapstructure:"reward_calculator"`
	BaseYieldBips           uint64 `mapstructure:"base_yield_bips"`
	DecayHalfLifeSeconds    uint64 `mapstructure:"decay_half_life_seconds"`
	MintingPeriodStartEpoch int64  `mapstructure:"minting_period_start_epoch"`
}

// Load reads path (JSON) through viper and decodes it into a Settings
// record, logging the resolved config file the way the teacher's
// pkg/config.Config.SetConfig does.
func Load(log logging.Logger, path string) (Settings, error) {
	v := viper.New()
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Dir(path))
	v.SetConfigFile(path)
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		return Settings{}, fmt.Errorf("read config %s: %w", path, err)
	}
	log.Info("using config file", zap.String("config-file", path))

	var r raw
	if err := v.Unmarshal(&r); err != nil {
		return Settings{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	return r.toSettings()
}

func (r raw) toSettings() (Settings, error) {
	subnetID, err := ids.FromString(r.SubnetID)
	if err != nil {
		return Settings{}, fmt.Errorf("subnet_id: %w", err)
	}
	pChainID, err := ids.FromString(r.PChainBlockchainID)
	if err != nil {
		return Settings{}, fmt.Errorf("p_chain_blockchain_id: %w", err)
	}
	uptimeID, err := ids.FromString(r.UptimeBlockchainID)
	if err != nil {
		return Settings{}, fmt.Errorf("uptime_blockchain_id: %w", err)
	}

	minStake, ok := new(big.Int).SetString(r.MinimumStakeAmount, 10)
	if !ok {
		return Settings{}, fmt.Errorf("minimum_stake_amount: invalid integer %q", r.MinimumStakeAmount)
	}
	maxStake, ok := new(big.Int).SetString(r.MaximumStakeAmount, 10)
	if !ok {
		return Settings{}, fmt.Errorf("maximum_stake_amount: invalid integer %q", r.MaximumStakeAmount)
	}
	factor, ok := new(big.Int).SetString(r.WeightToValueFactor, 10)
	if !ok {
		return Settings{}, fmt.Errorf("weight_to_value_factor: invalid integer %q", r.WeightToValueFactor)
	}

	s := Settings{
		ValidatorManager: validatormanager.Settings{
			SubnetID:               subnetID,
			ChurnPeriodSeconds:     r.ChurnPeriodSeconds,
			MaximumChurnPercentage: r.MaximumChurnPercentage,
			UptimeBlockchainID:     uptimeID,
			PChainBlockchainID:     pChainID,
		},
		StakingManager: stakingmanager.Settings{
			MinimumStakeAmount:       minStake,
			MaximumStakeAmount:       maxStake,
			MinimumStakeDuration:     r.MinimumStakeDuration,
			MinimumDelegationFeeBips: r.MinimumDelegationFeeBips,
			MaximumStakeMultiplier:   r.MaximumStakeMultiplier,
			WeightToValueFactor:      factor,
			UptimeBlockchainID:       uptimeID,
		},
		RewardCalculator: RewardCalculatorKind(r.RewardCalculator),
		ExponentialDecay: reward.ExponentialDecayConfig{
			BaseYieldBips:      r.BaseYieldBips,
			DecayHalfLife:      time.Duration(r.DecayHalfLifeSeconds) * time.Second,
			MintingPeriodStart: time.Unix(r.MintingPeriodStartEpoch, 0).UTC(),
		},
	}
	return s, nil
}
