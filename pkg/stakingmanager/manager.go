// Copyright (C) 2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package stakingmanager

import (
	"encoding/binary"
	"math/big"
	"sync"
	"sync/atomic"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ethereum/go-ethereum/common"

	"github.com/ava-labs/l1-validator-manager/pkg/assets"
	"github.com/ava-labs/l1-validator-manager/pkg/events"
	"github.com/ava-labs/l1-validator-manager/pkg/l1errors"
	"github.com/ava-labs/l1-validator-manager/pkg/reward"
	"github.com/ava-labs/l1-validator-manager/pkg/utils"
	"github.com/ava-labs/l1-validator-manager/pkg/validatormanager"
	"github.com/ava-labs/l1-validator-manager/pkg/warp"
)

// StakingManager is the spec.md §4.3 specialization of validatormanager.
// Every exported method takes mu for its full duration, matching the
// validator manager's one-operation-one-mutex atomicity model, except that
// the removal paths release mu around their external Locker calls (see
// withRemovalGuard).
type StakingManager struct {
	mu sync.Mutex

	log        logging.Logger
	vm         *validatormanager.Manager
	messenger  warp.Messenger
	emitter    events.Emitter
	clock      validatormanager.Clock
	locker     assets.Locker
	calculator reward.Calculator

	initialized bool
	settings    Settings

	posInfo    map[ids.ID]*PoSValidatorInfo
	delegators map[ids.ID]*Delegator

	redeemableValidatorRewards map[ids.ID]*big.Int
	redeemableDelegatorRewards map[ids.ID]*big.Int
	rewardRecipient            map[ids.ID]common.Address
	delegatorRewardRecipient   map[ids.ID]common.Address
	claimedValidatorStake      map[ids.ID]bool

	// removing guards complete_validator_removal/complete_delegator_removal
	// for the duration of their external Locker.Unlock/Reward calls, per
	// spec.md §5's single-entry reentrancy rule. Only withRemovalGuard
	// acquires it, with mu released for the call it wraps: mu stays held
	// for the rest of each operation, so a real reentrant call has to reach
	// this guard without blocking on mu first, or the immediate-fail
	// contract ErrReentrantCall promises would instead be a deadlock.
	removing atomic.Bool
}

// New constructs an uninitialized StakingManager wrapping vm. Initialize
// must be called exactly once before any other operation.
func New(
	log logging.Logger,
	vm *validatormanager.Manager,
	messenger warp.Messenger,
	emitter events.Emitter,
	clock validatormanager.Clock,
	locker assets.Locker,
	calculator reward.Calculator,
) *StakingManager {
	return &StakingManager{
		log:                        log,
		vm:                         vm,
		messenger:                  messenger,
		emitter:                    emitter,
		clock:                      clock,
		locker:                     locker,
		calculator:                 calculator,
		posInfo:                    make(map[ids.ID]*PoSValidatorInfo),
		delegators:                 make(map[ids.ID]*Delegator),
		redeemableValidatorRewards: make(map[ids.ID]*big.Int),
		redeemableDelegatorRewards: make(map[ids.ID]*big.Int),
		rewardRecipient:            make(map[ids.ID]common.Address),
		delegatorRewardRecipient:   make(map[ids.ID]common.Address),
		claimedValidatorStake:      make(map[ids.ID]bool),
	}
}

// Initialize validates and stores settings, one-shot per spec.md §9.
func (m *StakingManager) Initialize(settings Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return l1errors.ErrAlreadyInitialized
	}
	if settings.MinimumDelegationFeeBips == 0 || settings.MinimumDelegationFeeBips > reward.BipsDenominator {
		return l1errors.ErrInvalidDelegationFee
	}
	if settings.MaximumStakeMultiplier == 0 || settings.MaximumStakeMultiplier > 10 {
		return l1errors.ErrInvalidStakeMultiplier
	}
	if settings.WeightToValueFactor == nil || settings.WeightToValueFactor.Sign() <= 0 {
		return l1errors.ErrZeroWeightToValueFactor
	}
	if settings.UptimeBlockchainID == ids.Empty {
		return l1errors.ErrInvalidUptimeBlockchainID
	}
	if settings.MinimumStakeDuration < m.vm.Settings().ChurnPeriodSeconds {
		return l1errors.ErrInvalidMinStakeDuration
	}
	if settings.MinimumStakeAmount == nil || settings.MaximumStakeAmount == nil ||
		settings.MinimumStakeAmount.Sign() <= 0 || settings.MaximumStakeAmount.Cmp(settings.MinimumStakeAmount) < 0 {
		return l1errors.ErrInvalidStakeAmount
	}
	m.settings = settings
	m.initialized = true
	return nil
}

func (m *StakingManager) requireInitialized() error {
	if !m.initialized {
		return l1errors.ErrNotInitialized
	}
	return nil
}

// Settings returns the immutable settings record.
func (m *StakingManager) Settings() Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings
}

// Delegator returns a snapshot of a delegator's current state.
func (m *StakingManager) Delegator(delegationID ids.ID) (Delegator, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.delegators[delegationID]
	if !ok {
		return Delegator{}, false
	}
	return d.Clone(), true
}

// PoSValidatorInfo returns a snapshot of a validator's staking-specific
// info, or false if the validator is not a PoS validator.
func (m *StakingManager) PoSValidatorInfo(validationID ids.ID) (PoSValidatorInfo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posInfo[validationID]
	if !ok {
		return PoSValidatorInfo{}, false
	}
	return p.Clone(), true
}

// RedeemableValidatorRewards returns the accumulated fee/reward balance
// awaiting claim_delegation_fees for validationID.
func (m *StakingManager) RedeemableValidatorRewards(validationID ids.ID) *big.Int {
	m.mu.Lock()
	defer m.mu.Unlock()
	amount, ok := m.redeemableValidatorRewards[validationID]
	if !ok {
		return new(big.Int)
	}
	return new(big.Int).Set(amount)
}

// valueToWeight floors value/weight_to_value_factor, rejecting a zero or
// overflowing result, per spec.md §4.3.
func (m *StakingManager) valueToWeight(value *big.Int) (uint64, error) {
	q := new(big.Int).Div(value, m.settings.WeightToValueFactor)
	if q.Sign() == 0 || !q.IsUint64() {
		return 0, l1errors.ErrInvalidStakeAmount
	}
	return q.Uint64(), nil
}

// weightToValue is the exact inverse multiply, per spec.md §4.3.
func (m *StakingManager) weightToValue(weight uint64) *big.Int {
	return new(big.Int).Mul(new(big.Int).SetUint64(weight), m.settings.WeightToValueFactor)
}

// delegationID derives hash(validation_id || nonce), the Delegation ID of
// the GLOSSARY.
func delegationID(validationID ids.ID, nonce uint64) ids.ID {
	var buf [40]byte
	copy(buf[:32], validationID[:])
	binary.BigEndian.PutUint64(buf[32:], nonce)
	return utils.SHA256ToID(buf[:])
}

// acquireRemovalGuard enforces the single-entry reentrancy rule around
// complete_validator_removal/complete_delegator_removal.
func (m *StakingManager) acquireRemovalGuard() error {
	if !m.removing.CompareAndSwap(false, true) {
		return l1errors.ErrReentrantCall
	}
	return nil
}

func (m *StakingManager) releaseRemovalGuard() {
	m.removing.Store(false)
}

// withRemovalGuard runs fn with mu released, serialized only by the
// removing guard rather than by mu itself, so a genuine reentrant call
// back into a removal path fails fast with ErrReentrantCall instead of
// blocking forever on a mutex the outer call already holds. Callers must
// hold mu on entry; mu is held again by the time withRemovalGuard returns.
func (m *StakingManager) withRemovalGuard(fn func() error) error {
	if err := m.acquireRemovalGuard(); err != nil {
		return err
	}
	m.mu.Unlock()
	err := fn()
	m.mu.Lock()
	m.releaseRemovalGuard()
	return err
}
