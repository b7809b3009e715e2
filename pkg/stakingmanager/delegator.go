// Copyright (C) 2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package stakingmanager

import (
	"math/big"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ethereum/go-ethereum/common"

	"github.com/ava-labs/l1-validator-manager/pkg/l1errors"
	"github.com/ava-labs/l1-validator-manager/pkg/validatormanager"
)

// InitiateDelegatorRegistration locks stake, requests a weight update from
// the validator manager to admit the delegator, and stores a PendingAdded
// Delegator, per spec.md §4.3.
func (m *StakingManager) InitiateDelegatorRegistration(owner common.Address, validationID ids.ID, value *big.Int) (ids.ID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireInitialized(); err != nil {
		return ids.Empty, err
	}
	if _, isPoS := m.posInfo[validationID]; !isPoS {
		return ids.Empty, l1errors.ErrValidatorNotPoS
	}
	v, ok := m.vm.Validator(validationID)
	if !ok {
		return ids.Empty, l1errors.ErrValidatorNotFound
	}
	if v.Status != validatormanager.StatusActive {
		return ids.Empty, l1errors.InvalidValidatorStatus(v.Status)
	}

	effectiveValue, err := m.locker.Lock(value)
	if err != nil {
		return ids.Empty, err
	}
	delegatorWeight, err := m.valueToWeight(effectiveValue)
	if err != nil {
		_ = m.locker.Unlock(owner, effectiveValue)
		return ids.Empty, err
	}

	newValidatorWeight := v.Weight + delegatorWeight
	maxWeight := v.StartingWeight * uint64(m.settings.MaximumStakeMultiplier)
	if newValidatorWeight > maxWeight {
		_ = m.locker.Unlock(owner, effectiveValue)
		return ids.Empty, l1errors.MaxWeightExceeded(newValidatorWeight)
	}

	nonce, messageID, err := m.vm.InitiateValidatorWeightUpdate(validationID, newValidatorWeight)
	if err != nil {
		_ = m.locker.Unlock(owner, effectiveValue)
		return ids.Empty, err
	}

	id := delegationID(validationID, nonce)
	m.delegators[id] = &Delegator{
		Status:        DelegatorStatusPendingAdded,
		Owner:         owner,
		ValidationID:  validationID,
		Weight:        delegatorWeight,
		StartingNonce: nonce,
	}
	m.emitter.InitiatedDelegatorRegistration(id, validationID, owner, nonce, newValidatorWeight, delegatorWeight, messageID)
	return id, nil
}

// CompleteDelegatorRegistration advances a PendingAdded Delegator to
// Active once the validator manager's received_nonce has caught up to
// starting_nonce, or refunds the delegator outright if the validator
// completed before that happened.
func (m *StakingManager) CompleteDelegatorRegistration(delegationID ids.ID, messageIndex uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireInitialized(); err != nil {
		return err
	}
	d, ok := m.delegators[delegationID]
	if !ok {
		return l1errors.ErrDelegatorNotFound
	}
	if d.Status != DelegatorStatusPendingAdded {
		return l1errors.InvalidDelegatorStatus(d.Status)
	}
	v, ok := m.vm.Validator(d.ValidationID)
	if !ok {
		return l1errors.ErrValidatorNotFound
	}

	if v.Status == validatormanager.StatusCompleted {
		return m.finalizeDelegatorRemoval(delegationID, d, m.weightToValue(d.Weight), new(big.Int), new(big.Int))
	}

	if v.ReceivedNonce < d.StartingNonce {
		gotValidationID, gotNonce, err := m.vm.CompleteValidatorWeightUpdate(messageIndex)
		if err != nil {
			return err
		}
		if gotValidationID != d.ValidationID {
			return l1errors.UnexpectedValidationID(gotValidationID, d.ValidationID)
		}
		if gotNonce < d.StartingNonce {
			return l1errors.InvalidNonce(gotNonce)
		}
	}

	d.Status = DelegatorStatusActive
	d.StartTime = m.clock.Unix()
	m.emitter.CompletedDelegatorRegistration(delegationID, d.ValidationID, d.StartTime)
	return nil
}

// InitiateDelegatorRemoval authorizes, computes the eventual reward, and
// either starts the weight-update handshake (validator Active) or
// finalizes removal immediately (validator Completed). The returned bool
// is the reward-eligibility signal of spec.md §4.3, not an error: callers
// wanting the checked behavior should use InitiateCheckedDelegatorRemoval.
func (m *StakingManager) InitiateDelegatorRemoval(
	caller common.Address,
	delegationID ids.ID,
	includeUptime bool,
	messageIndex uint32,
	rewardRecipient *common.Address,
) (eligible bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireInitialized(); err != nil {
		return false, err
	}
	d, ok := m.delegators[delegationID]
	if !ok {
		return false, l1errors.ErrDelegatorNotFound
	}
	v, ok := m.vm.Validator(d.ValidationID)
	if !ok {
		return false, l1errors.ErrValidatorNotFound
	}
	pos := m.posInfo[d.ValidationID]

	authorized := caller == d.Owner
	if !authorized && pos != nil && caller == pos.Owner {
		authorized = m.clock.Unix() >= v.StartTime+pos.MinStakeDuration
	}
	if !authorized {
		return false, l1errors.ErrUnauthorizedOwner
	}
	if d.Status != DelegatorStatusActive {
		return false, l1errors.InvalidDelegatorStatus(d.Status)
	}
	if rewardRecipient != nil {
		if *rewardRecipient == (common.Address{}) {
			return false, l1errors.ErrInvalidRewardRecipient
		}
		m.delegatorRewardRecipient[delegationID] = *rewardRecipient
	}

	switch v.Status {
	case validatormanager.StatusActive:
		now := m.clock.Unix()
		if now < d.StartTime+m.settings.MinimumStakeDuration {
			return false, l1errors.MinStakeDurationNotPassed(d.StartTime + m.settings.MinimumStakeDuration)
		}
		if includeUptime {
			if err := m.submitUptimeProofLocked(d.ValidationID, messageIndex); err != nil {
				return false, err
			}
		}
		newValidatorWeight := v.Weight - d.Weight
		nonce, _, err := m.vm.InitiateValidatorWeightUpdate(d.ValidationID, newValidatorWeight)
		if err != nil {
			return false, err
		}
		d.EndingNonce = nonce
		d.Status = DelegatorStatusPendingRemoved

		reward := m.computeDelegatorReward(pos, v.StartTime, d.StartTime, now, d.Weight)
		m.redeemableDelegatorRewards[delegationID] = reward
		m.emitter.InitiatedDelegatorRemoval(delegationID, d.ValidationID)
		return reward.Sign() > 0, nil

	case validatormanager.StatusCompleted:
		reward := m.computeDelegatorReward(pos, v.StartTime, d.StartTime, v.EndTime, d.Weight)
		eligible = reward.Sign() > 0
		feeAmount, remainder := m.splitDelegatorReward(pos, reward)
		d.Status = DelegatorStatusPendingRemoved
		m.emitter.InitiatedDelegatorRemoval(delegationID, d.ValidationID)
		if err := m.finalizeDelegatorRemoval(delegationID, d, m.weightToValue(d.Weight), remainder, feeAmount); err != nil {
			return false, err
		}
		return eligible, nil

	default:
		return false, l1errors.InvalidValidatorStatus(v.Status)
	}
}

// InitiateCheckedDelegatorRemoval is the checked variant of
// InitiateDelegatorRemoval: it raises DelegatorIneligibleForRewards
// instead of returning false. Per spec.md §9's open question, the
// underlying state mutations already committed by InitiateDelegatorRemoval
// are not rolled back when this error is raised.
func (m *StakingManager) InitiateCheckedDelegatorRemoval(
	caller common.Address,
	delegationID ids.ID,
	includeUptime bool,
	messageIndex uint32,
	rewardRecipient *common.Address,
) error {
	eligible, err := m.InitiateDelegatorRemoval(caller, delegationID, includeUptime, messageIndex, rewardRecipient)
	if err != nil {
		return err
	}
	if !eligible {
		return l1errors.ErrDelegatorIneligible
	}
	return nil
}

// CompleteDelegatorRemoval consumes the acknowledging weight message if
// needed, enforces the one-churn-window cooldown that prevents
// double-staking, and pays out the reward computed at initiate time.
func (m *StakingManager) CompleteDelegatorRemoval(delegationID ids.ID, messageIndex uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireInitialized(); err != nil {
		return err
	}
	d, ok := m.delegators[delegationID]
	if !ok {
		return l1errors.ErrDelegatorNotFound
	}
	if d.Status != DelegatorStatusPendingRemoved {
		return l1errors.InvalidDelegatorStatus(d.Status)
	}
	v, ok := m.vm.Validator(d.ValidationID)
	if !ok {
		return l1errors.ErrValidatorNotFound
	}

	if v.Status != validatormanager.StatusCompleted && v.ReceivedNonce < d.EndingNonce {
		gotValidationID, gotNonce, err := m.vm.CompleteValidatorWeightUpdate(messageIndex)
		if err != nil {
			return err
		}
		if gotValidationID != d.ValidationID {
			return l1errors.UnexpectedValidationID(gotValidationID, d.ValidationID)
		}
		if gotNonce < d.EndingNonce {
			return l1errors.InvalidNonce(gotNonce)
		}
	}

	// Prevents double-staking within one churn window, per spec.md §4.3.
	// No dedicated sentinel is named for this check in spec.md §7; it is
	// the same "too soon" shape as MinStakeDurationNotPassed, so it is
	// reused here rather than adding an unnamed error kind.
	windowEnd := d.StartTime + m.vm.Settings().ChurnPeriodSeconds
	if m.clock.Unix() < windowEnd {
		return l1errors.MinStakeDurationNotPassed(windowEnd)
	}

	reward, ok := m.redeemableDelegatorRewards[delegationID]
	if !ok {
		reward = new(big.Int)
	}
	pos := m.posInfo[d.ValidationID]
	feeAmount, remainder := m.splitDelegatorReward(pos, reward)
	delete(m.redeemableDelegatorRewards, delegationID)

	return m.finalizeDelegatorRemoval(delegationID, d, m.weightToValue(d.Weight), remainder, feeAmount)
}

// finalizeDelegatorRemoval is the shared tail of every delegator-removal
// path: it unlocks principal, pays the delegator's share of the reward,
// credits the validator's fee share, and deletes the row. The external
// Locker calls run under withRemovalGuard, per spec.md §5's single-entry
// reentrancy rule.
func (m *StakingManager) finalizeDelegatorRemoval(delegationID ids.ID, d *Delegator, principal, delegatorReward, validatorFee *big.Int) error {
	owner := d.Owner
	validationID := d.ValidationID
	recipient := owner
	if r, ok := m.delegatorRewardRecipient[delegationID]; ok {
		recipient = r
	}

	if err := m.withRemovalGuard(func() error {
		if err := m.locker.Unlock(owner, principal); err != nil {
			return err
		}
		if delegatorReward.Sign() > 0 {
			if err := m.locker.Reward(recipient, delegatorReward); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}

	if validatorFee.Sign() > 0 {
		existing, ok := m.redeemableValidatorRewards[validationID]
		if !ok {
			existing = new(big.Int)
			m.redeemableValidatorRewards[validationID] = existing
		}
		existing.Add(existing, validatorFee)
	}

	delete(m.delegators, delegationID)
	delete(m.delegatorRewardRecipient, delegationID)
	m.emitter.CompletedDelegatorRemoval(delegationID, validationID, delegatorReward, validatorFee)
	return nil
}
