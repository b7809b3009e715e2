// Copyright (C) 2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package stakingmanager

import (
	"math/big"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ethereum/go-ethereum/common"

	"github.com/ava-labs/l1-validator-manager/pkg/l1errors"
	"github.com/ava-labs/l1-validator-manager/pkg/reward"
	"github.com/ava-labs/l1-validator-manager/pkg/validatormanager"
	"github.com/ava-labs/l1-validator-manager/pkg/warpmessage"
)

// computeDelegatorReward evaluates the Reward Calculator over the
// delegator's [start_time, delegation_end_time) interval, returning zero
// if the interval is empty or the validator isn't PoS, per spec.md §4.3.
func (m *StakingManager) computeDelegatorReward(pos *PoSValidatorInfo, validatorStartTime, delegatorStartTime, delegationEndTime, delegatorWeight uint64) *big.Int {
	if pos == nil || delegationEndTime <= delegatorStartTime {
		return new(big.Int)
	}
	return m.calculator.Calculate(
		secondsToTime(validatorStartTime),
		secondsToTime(delegatorStartTime),
		secondsToTime(delegationEndTime),
		pos.UptimeSeconds,
		m.weightToValue(delegatorWeight),
	)
}

func secondsToTime(s uint64) time.Time {
	return time.Unix(int64(s), 0).UTC()
}

// splitDelegatorReward applies the validator's delegation fee, per
// spec.md §4.3's fee-split rule.
func (m *StakingManager) splitDelegatorReward(pos *PoSValidatorInfo, totalReward *big.Int) (feeAmount, remainder *big.Int) {
	if pos == nil || totalReward.Sign() == 0 {
		return new(big.Int), new(big.Int)
	}
	return reward.Split(totalReward, pos.DelegationFeeBips)
}

// SubmitUptimeProof consumes a ValidationUptimeMessage and advances the
// validator's recorded uptime monotonically, a no-op if the reported
// value is not greater than the current one.
func (m *StakingManager) SubmitUptimeProof(validationID ids.ID, messageIndex uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.requireInitialized(); err != nil {
		return err
	}
	return m.submitUptimeProofLocked(validationID, messageIndex)
}

// submitUptimeProofLocked is the shared body, callable both standalone
// and from InitiateDelegatorRemoval's include_uptime path, which already
// holds mu.
func (m *StakingManager) submitUptimeProofLocked(validationID ids.ID, messageIndex uint32) error {
	pos, ok := m.posInfo[validationID]
	if !ok {
		return l1errors.ErrValidatorNotPoS
	}
	v, ok := m.vm.Validator(validationID)
	if !ok {
		return l1errors.ErrValidatorNotFound
	}
	if v.Status != validatormanager.StatusActive {
		return l1errors.InvalidValidatorStatus(v.Status)
	}

	msg, ok := m.messenger.GetVerifiedMessage(messageIndex)
	if !ok {
		return l1errors.ErrInvalidWarpMessage
	}
	if msg.SourceChainID != m.settings.UptimeBlockchainID {
		return l1errors.ErrInvalidWarpSourceChainID
	}
	// The source repeats this origin-sender check twice in immediate
	// succession; treated here as the single condition it evidently is,
	// per spec.md §9's open question.
	if msg.OriginSenderAddress != (common.Address{}) {
		return l1errors.ErrInvalidWarpOriginSender
	}

	ack, err := warpmessage.UnpackValidationUptime(msg.Payload)
	if err != nil {
		return err
	}
	if ack.ValidationID != validationID {
		return l1errors.UnexpectedValidationID(ack.ValidationID, validationID)
	}
	if ack.UptimeSeconds > pos.UptimeSeconds {
		pos.UptimeSeconds = ack.UptimeSeconds
		m.emitter.UptimeUpdated(validationID, pos.UptimeSeconds)
	}
	return nil
}

// CompleteValidatorRemoval unlocks a Completed PoS validator's own stake
// and credits its reward, once, mirroring the delegator payout path for
// the validator's own principal. spec.md does not name this operation
// directly, but §5's reentrancy rule explicitly calls out
// complete_validator_removal alongside complete_delegator_removal as an
// asset-hook-calling, reward-ledger-mutating operation; this is that
// operation, interpreted as the staking-level finalization of a
// validator's own stake rather than validatormanager's same-named
// registration-cancellation entry point.
func (m *StakingManager) CompleteValidatorRemoval(validationID ids.ID) (eligible bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireInitialized(); err != nil {
		return false, err
	}
	pos, ok := m.posInfo[validationID]
	if !ok {
		return false, l1errors.ErrValidatorNotPoS
	}
	if m.claimedValidatorStake[validationID] {
		return false, l1errors.InvalidValidatorStatus(validatormanager.StatusCompleted)
	}
	v, ok := m.vm.Validator(validationID)
	if !ok {
		return false, l1errors.ErrValidatorNotFound
	}
	if v.Status != validatormanager.StatusCompleted {
		return false, l1errors.InvalidValidatorStatus(v.Status)
	}

	value := m.weightToValue(v.StartingWeight)
	rewardAmount := m.calculator.Calculate(secondsToTime(v.StartTime), secondsToTime(v.StartTime), secondsToTime(v.EndTime), pos.UptimeSeconds, value)
	owner := pos.Owner
	recipient := owner
	if r, ok := m.rewardRecipient[validationID]; ok {
		recipient = r
	}
	eligible = rewardAmount.Sign() > 0

	if err := m.withRemovalGuard(func() error {
		if err := m.locker.Unlock(owner, value); err != nil {
			return err
		}
		if eligible {
			if err := m.locker.Reward(recipient, rewardAmount); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return false, err
	}

	m.claimedValidatorStake[validationID] = true
	return eligible, nil
}

// CheckedCompleteValidatorRemoval is the checked variant, raising
// ValidatorIneligibleForRewards instead of returning false.
func (m *StakingManager) CheckedCompleteValidatorRemoval(validationID ids.ID) error {
	eligible, err := m.CompleteValidatorRemoval(validationID)
	if err != nil {
		return err
	}
	if !eligible {
		return l1errors.ErrValidatorIneligible
	}
	return nil
}

// ClaimDelegationFees pays accumulated delegation fees to the validator
// owner (or its reassigned recipient), only after the validator is
// Completed.
func (m *StakingManager) ClaimDelegationFees(caller common.Address, validationID ids.ID) (*big.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireInitialized(); err != nil {
		return nil, err
	}
	pos, ok := m.posInfo[validationID]
	if !ok {
		return nil, l1errors.ErrValidatorNotPoS
	}
	if caller != pos.Owner {
		return nil, l1errors.ErrUnauthorizedOwner
	}
	v, ok := m.vm.Validator(validationID)
	if !ok {
		return nil, l1errors.ErrValidatorNotFound
	}
	if v.Status != validatormanager.StatusCompleted {
		return nil, l1errors.InvalidValidatorStatus(v.Status)
	}

	amount, ok := m.redeemableValidatorRewards[validationID]
	if !ok || amount.Sign() == 0 {
		return new(big.Int), nil
	}
	recipient := pos.Owner
	if r, ok := m.rewardRecipient[validationID]; ok {
		recipient = r
	}
	if err := m.locker.Reward(recipient, amount); err != nil {
		return nil, err
	}
	delete(m.redeemableValidatorRewards, validationID)
	return amount, nil
}

// ChangeValidatorRewardRecipient reassigns a PoS validator's reward
// recipient; ownership itself never changes.
func (m *StakingManager) ChangeValidatorRewardRecipient(caller common.Address, validationID ids.ID, recipient common.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	pos, ok := m.posInfo[validationID]
	if !ok {
		return l1errors.ErrValidatorNotPoS
	}
	if caller != pos.Owner {
		return l1errors.ErrUnauthorizedOwner
	}
	if recipient == (common.Address{}) {
		return l1errors.ErrInvalidRewardRecipient
	}
	m.rewardRecipient[validationID] = recipient
	return nil
}

// ChangeDelegatorRewardRecipient reassigns a delegator's reward
// recipient; ownership itself never changes.
func (m *StakingManager) ChangeDelegatorRewardRecipient(caller common.Address, delegationID ids.ID, recipient common.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.delegators[delegationID]
	if !ok {
		return l1errors.ErrDelegatorNotFound
	}
	if caller != d.Owner {
		return l1errors.ErrUnauthorizedOwner
	}
	if recipient == (common.Address{}) {
		return l1errors.ErrInvalidRewardRecipient
	}
	m.delegatorRewardRecipient[delegationID] = recipient
	return nil
}

// ResendUpdateDelegator reissues the validator's latest cumulative weight
// at its latest sent_nonce. Idempotent: because weight changes are
// cumulative and the P-Chain signs only the latest, this single resend
// covers every still-pending delegator for that validator.
func (m *StakingManager) ResendUpdateDelegator(validationID ids.ID) (ids.ID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.requireInitialized(); err != nil {
		return ids.Empty, err
	}
	v, ok := m.vm.Validator(validationID)
	if !ok {
		return ids.Empty, l1errors.ErrValidatorNotFound
	}
	payload, err := warpmessage.PackL1ValidatorWeight(validationID, v.SentNonce, v.Weight)
	if err != nil {
		return ids.Empty, err
	}
	return m.messenger.SendMessage(payload)
}
