// Copyright (C) 2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package stakingmanager

import (
	"math/big"
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/l1-validator-manager/pkg/assets/nativecoin"
	"github.com/ava-labs/l1-validator-manager/pkg/events"
	"github.com/ava-labs/l1-validator-manager/pkg/l1errors"
	"github.com/ava-labs/l1-validator-manager/pkg/reward"
	"github.com/ava-labs/l1-validator-manager/pkg/validatormanager"
	"github.com/ava-labs/l1-validator-manager/pkg/warp/simulator"
	"github.com/ava-labs/l1-validator-manager/pkg/warpmessage"
)

// fakeClock lets tests drive "now" deterministically, matching
// validatormanager's own test fixture.
type fakeClock struct{ now uint64 }

func (c *fakeClock) Unix() uint64 { return c.now }

const weightFactor = 1_000_000

func newTestManager(t *testing.T) (*StakingManager, *validatormanager.Manager, *simulator.Messenger, *fakeClock) {
	t.Helper()
	messenger := simulator.New()
	clock := &fakeClock{now: 1_000_000}
	emitter := events.NewLoggingEmitter(logging.NoLog{})

	vm := validatormanager.New(logging.NoLog{}, messenger, emitter, clock)
	vmSettings := validatormanager.Settings{
		SubnetID:               ids.GenerateTestID(),
		ChurnPeriodSeconds:     3600,
		MaximumChurnPercentage: 20,
		PChainBlockchainID:     ids.GenerateTestID(),
	}
	require.NoError(t, vm.Initialize(vmSettings, ids.ShortEmpty))

	sm := New(logging.NoLog{}, vm, messenger, emitter, clock, nativecoin.New(), reward.ZeroCalculator{})
	smSettings := Settings{
		MinimumStakeAmount:       big.NewInt(100),
		MaximumStakeAmount:       big.NewInt(1_000_000_000),
		MinimumStakeDuration:     vmSettings.ChurnPeriodSeconds,
		MinimumDelegationFeeBips: 1,
		MaximumStakeMultiplier:   4,
		WeightToValueFactor:      big.NewInt(weightFactor),
		UptimeBlockchainID:       ids.GenerateTestID(),
	}
	require.NoError(t, sm.Initialize(smSettings))
	return sm, vm, messenger, clock
}

func registerActiveValidator(t *testing.T, sm *StakingManager, vm *validatormanager.Manager, messenger *simulator.Messenger, clock *fakeClock, owner common.Address, stake int64) ids.ID {
	t.Helper()
	var bls [warpmessage.BLSPublicKeyLen]byte
	validationID, err := sm.InitiateValidatorRegistration(
		owner, ids.GenerateTestNodeID(), bls, clock.now+3600,
		warpmessage.PChainOwner{}, warpmessage.PChainOwner{},
		1_000, vm.Settings().ChurnPeriodSeconds,
		big.NewInt(stake),
	)
	require.NoError(t, err)

	ackPayload, err := warpmessage.PackL1ValidatorRegistration(validationID, true)
	require.NoError(t, err)
	idx := messenger.EnqueueNodeSigned(vm.Settings().PChainBlockchainID, ackPayload)
	_, err = vm.CompleteValidatorRegistration(idx)
	require.NoError(t, err)
	return validationID
}

func TestInitiateValidatorRegistrationLocksStakeAndDerivesWeight(t *testing.T) {
	require := require.New(t)
	sm, vm, messenger, clock := newTestManager(t)
	owner := common.HexToAddress("0x01")

	validationID := registerActiveValidator(t, sm, vm, messenger, clock, owner, 1_000_000)

	v, ok := vm.Validator(validationID)
	require.True(ok)
	require.Equal(validatormanager.StatusActive, v.Status)
	require.Equal(uint64(1), v.Weight) // 1_000_000 / weightFactor

	pos, ok := sm.PoSValidatorInfo(validationID)
	require.True(ok)
	require.Equal(owner, pos.Owner)
	require.Equal(uint16(1_000), pos.DelegationFeeBips)
}

func TestInitiateValidatorRegistrationRejectsStakeBelowMinimum(t *testing.T) {
	require := require.New(t)
	sm, vm, _, clock := newTestManager(t)
	var bls [warpmessage.BLSPublicKeyLen]byte
	_, err := sm.InitiateValidatorRegistration(
		common.HexToAddress("0x01"), ids.GenerateTestNodeID(), bls, clock.now+10,
		warpmessage.PChainOwner{}, warpmessage.PChainOwner{},
		1_000, vm.Settings().ChurnPeriodSeconds,
		big.NewInt(1),
	)
	require.ErrorIs(err, l1errors.ErrInvalidStakeAmount)
}

func TestDelegatorLifecycleToActiveAndRemoval(t *testing.T) {
	require := require.New(t)
	sm, vm, messenger, clock := newTestManager(t)
	owner := common.HexToAddress("0x01")
	delegator := common.HexToAddress("0x02")

	validationID := registerActiveValidator(t, sm, vm, messenger, clock, owner, 4_000_000)

	delegationID, err := sm.InitiateDelegatorRegistration(delegator, validationID, big.NewInt(1_000_000))
	require.NoError(err)

	d, ok := sm.Delegator(delegationID)
	require.True(ok)
	require.Equal(DelegatorStatusPendingAdded, d.Status)
	require.Equal(uint64(1), d.Weight)

	v, _ := vm.Validator(validationID)
	weightAck, err := warpmessage.PackL1ValidatorWeight(validationID, v.SentNonce, v.Weight)
	require.NoError(err)
	idx := messenger.EnqueueNodeSigned(vm.Settings().PChainBlockchainID, weightAck)
	require.NoError(sm.CompleteDelegatorRegistration(delegationID, idx))

	d, ok = sm.Delegator(delegationID)
	require.True(ok)
	require.Equal(DelegatorStatusActive, d.Status)

	clock.now += vm.Settings().ChurnPeriodSeconds + 1
	eligible, err := sm.InitiateDelegatorRemoval(delegator, delegationID, false, 0, nil)
	require.NoError(err)
	require.False(eligible) // ZeroCalculator never pays out

	d, ok = sm.Delegator(delegationID)
	require.True(ok)
	require.Equal(DelegatorStatusPendingRemoved, d.Status)

	v, _ = vm.Validator(validationID)
	removalAck, err := warpmessage.PackL1ValidatorWeight(validationID, v.SentNonce, v.Weight)
	require.NoError(err)
	clock.now += vm.Settings().ChurnPeriodSeconds + 1
	idx = messenger.EnqueueNodeSigned(vm.Settings().PChainBlockchainID, removalAck)
	require.NoError(sm.CompleteDelegatorRemoval(delegationID, idx))

	_, ok = sm.Delegator(delegationID)
	require.False(ok) // deleted on finalize
}

func TestInitiateDelegatorRegistrationRejectsWeightAboveMultiplier(t *testing.T) {
	require := require.New(t)
	sm, vm, messenger, clock := newTestManager(t)
	owner := common.HexToAddress("0x01")
	delegator := common.HexToAddress("0x02")

	validationID := registerActiveValidator(t, sm, vm, messenger, clock, owner, 1_000_000) // weight 1, max multiplier 4 -> cap 4

	_, err := sm.InitiateDelegatorRegistration(delegator, validationID, big.NewInt(5_000_000)) // weight 5 > cap
	require.ErrorIs(err, l1errors.ErrMaxWeightExceeded)
}

func TestCompleteDelegatorRegistrationShortCircuitsWhenValidatorCompleted(t *testing.T) {
	require := require.New(t)
	sm, vm, messenger, clock := newTestManager(t)
	owner := common.HexToAddress("0x01")
	delegator := common.HexToAddress("0x02")

	validationID := registerActiveValidator(t, sm, vm, messenger, clock, owner, 4_000_000)
	delegationID, err := sm.InitiateDelegatorRegistration(delegator, validationID, big.NewInt(1_000_000))
	require.NoError(err)

	// Remove the validator before the delegator's own weight-update acks.
	nonce, _, err := vm.InitiateValidatorRemoval(validationID)
	require.NoError(err)
	removeAck, err := warpmessage.PackL1ValidatorWeight(validationID, nonce, 0)
	require.NoError(err)
	idx := messenger.EnqueueNodeSigned(vm.Settings().PChainBlockchainID, removeAck)
	_, _, err = vm.CompleteValidatorWeightUpdate(idx)
	require.NoError(err)

	locker := sm.locker.(*nativecoin.Locker)
	require.NoError(sm.CompleteDelegatorRegistration(delegationID, 0))

	_, ok := sm.Delegator(delegationID)
	require.False(ok)
	require.Equal(big.NewInt(1_000_000), locker.Unlocked(delegator))
}

func TestSubmitUptimeProofIsIdempotentAndMonotonic(t *testing.T) {
	require := require.New(t)
	sm, vm, messenger, clock := newTestManager(t)
	owner := common.HexToAddress("0x01")
	validationID := registerActiveValidator(t, sm, vm, messenger, clock, owner, 1_000_000)

	payload, err := warpmessage.PackValidationUptime(validationID, 100)
	require.NoError(err)
	idx := messenger.EnqueueNodeSigned(sm.Settings().UptimeBlockchainID, payload)
	require.NoError(sm.SubmitUptimeProof(validationID, idx))

	pos, ok := sm.PoSValidatorInfo(validationID)
	require.True(ok)
	require.Equal(uint64(100), pos.UptimeSeconds)

	// A lower value is a no-op.
	stalePayload, err := warpmessage.PackValidationUptime(validationID, 50)
	require.NoError(err)
	idx = messenger.EnqueueNodeSigned(sm.Settings().UptimeBlockchainID, stalePayload)
	require.NoError(sm.SubmitUptimeProof(validationID, idx))

	pos, _ = sm.PoSValidatorInfo(validationID)
	require.Equal(uint64(100), pos.UptimeSeconds)
}

func TestClaimDelegationFeesRequiresValidatorCompleted(t *testing.T) {
	require := require.New(t)
	sm, vm, messenger, clock := newTestManager(t)
	owner := common.HexToAddress("0x01")
	validationID := registerActiveValidator(t, sm, vm, messenger, clock, owner, 1_000_000)

	_, err := sm.ClaimDelegationFees(owner, validationID)
	require.ErrorIs(err, l1errors.ErrInvalidValidatorStatus)
}

func TestCompleteValidatorRemovalUnlocksStakeOnce(t *testing.T) {
	require := require.New(t)
	sm, vm, messenger, clock := newTestManager(t)
	owner := common.HexToAddress("0x01")
	validationID := registerActiveValidator(t, sm, vm, messenger, clock, owner, 1_000_000)

	nonce, _, err := vm.InitiateValidatorRemoval(validationID)
	require.NoError(err)
	ack, err := warpmessage.PackL1ValidatorWeight(validationID, nonce, 0)
	require.NoError(err)
	idx := messenger.EnqueueNodeSigned(vm.Settings().PChainBlockchainID, ack)
	_, _, err = vm.CompleteValidatorWeightUpdate(idx)
	require.NoError(err)

	eligible, err := sm.CompleteValidatorRemoval(validationID)
	require.NoError(err)
	require.False(eligible) // ZeroCalculator

	locker := sm.locker.(*nativecoin.Locker)
	require.Equal(big.NewInt(1_000_000), locker.Unlocked(owner))

	// A second claim is rejected: already claimed.
	_, err = sm.CompleteValidatorRemoval(validationID)
	require.ErrorIs(err, l1errors.ErrInvalidValidatorStatus)
}

func TestInitiateCheckedDelegatorRemovalRaisesIneligibleWithoutRollback(t *testing.T) {
	require := require.New(t)
	sm, vm, messenger, clock := newTestManager(t)
	owner := common.HexToAddress("0x01")
	delegator := common.HexToAddress("0x02")

	validationID := registerActiveValidator(t, sm, vm, messenger, clock, owner, 4_000_000)
	delegationID, err := sm.InitiateDelegatorRegistration(delegator, validationID, big.NewInt(1_000_000))
	require.NoError(err)
	v, _ := vm.Validator(validationID)
	weightAck, err := warpmessage.PackL1ValidatorWeight(validationID, v.SentNonce, v.Weight)
	require.NoError(err)
	idx := messenger.EnqueueNodeSigned(vm.Settings().PChainBlockchainID, weightAck)
	require.NoError(sm.CompleteDelegatorRegistration(delegationID, idx))

	clock.now += vm.Settings().ChurnPeriodSeconds + 1
	err = sm.InitiateCheckedDelegatorRemoval(delegator, delegationID, false, 0, nil)
	require.ErrorIs(err, l1errors.ErrDelegatorIneligible)

	// The underlying state mutation (PendingRemoved transition) still
	// committed, per the documented Open Question decision.
	d, ok := sm.Delegator(delegationID)
	require.True(ok)
	require.Equal(DelegatorStatusPendingRemoved, d.Status)
}
