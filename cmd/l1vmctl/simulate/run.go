// Copyright (C) 2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package simulate

import (
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ethereum/go-ethereum/common"

	"github.com/ava-labs/l1-validator-manager/pkg/assets/nativecoin"
	"github.com/ava-labs/l1-validator-manager/pkg/events"
	"github.com/ava-labs/l1-validator-manager/pkg/reward"
	"github.com/ava-labs/l1-validator-manager/pkg/stakingmanager"
	"github.com/ava-labs/l1-validator-manager/pkg/utils"
	"github.com/ava-labs/l1-validator-manager/pkg/validatormanager"
	"github.com/ava-labs/l1-validator-manager/pkg/warp/simulator"
	"github.com/ava-labs/l1-validator-manager/pkg/warpmessage"
	"github.com/ava-labs/l1-validator-manager/pkg/ux"
)

// manualClock is a validatormanager.Clock the demo advances explicitly,
// rather than waiting on wall-clock time to satisfy the churn-window and
// minimum-stake-duration gates the lifecycle it drives depends on.
type manualClock struct{ now uint64 }

func (c *manualClock) Unix() uint64     { return c.now }
func (c *manualClock) Advance(s uint64) { c.now += s }

// run drives one PoS validator through registration, a delegator joining
// and leaving, an uptime proof, and final validator removal, logging
// every event via the teacher's ux.UserLog pattern.
func run(log logging.Logger) error {
	ux.Logger.PrintToUser("starting l1vmctl simulation")

	clock := &manualClock{now: uint64(time.Now().Unix())}
	messenger := simulator.New()
	emitter := events.NewLoggingEmitter(log)

	vm := validatormanager.New(log, messenger, emitter, clock)
	pChainID := ids.GenerateTestID()
	uptimeChainID := ids.GenerateTestID()
	subnetID := ids.GenerateTestID()

	vmSettings := validatormanager.Settings{
		SubnetID:               subnetID,
		ChurnPeriodSeconds:     3600,
		MaximumChurnPercentage: 20,
		UptimeBlockchainID:     uptimeChainID,
		PChainBlockchainID:     pChainID,
	}
	if err := vm.Initialize(vmSettings, ids.ShortEmpty); err != nil {
		return err
	}
	// Seed a bootstrap validator so the demo validator's final removal stays
	// within the churn cap: removing a validator that holds all of
	// l1_total_weight is rejected with MaxChurnRateExceeded.
	if err := vm.MigrateFromV1(ids.GenerateTestID(), ids.GenerateTestNodeID(), 10_000_000); err != nil {
		return err
	}

	locker := nativecoin.New()
	calculator := reward.NewExponentialDecayCalculator(reward.ExponentialDecayConfig{
		BaseYieldBips:      1_000,
		DecayHalfLife:      365 * 24 * time.Hour,
		MintingPeriodStart: time.Unix(int64(clock.now)-1, 0).UTC(),
	})
	sm := stakingmanager.New(log, vm, messenger, emitter, clock, locker, calculator)
	smSettings := stakingmanager.Settings{
		MinimumStakeAmount:       utils.ApplyDefaultDenomination(1),
		MaximumStakeAmount:       utils.ApplyDefaultDenomination(10_000),
		MinimumStakeDuration:     vmSettings.ChurnPeriodSeconds,
		MinimumDelegationFeeBips: 1,
		MaximumStakeMultiplier:   4,
		WeightToValueFactor:      utils.ApplyDenomination(1, 12),
		UptimeBlockchainID:       uptimeChainID,
	}
	if err := sm.Initialize(smSettings); err != nil {
		return err
	}

	owner := common.HexToAddress("0x0100000000000000000000000000000000000001")
	var blsPublicKey [warpmessage.BLSPublicKeyLen]byte
	for i := range blsPublicKey {
		blsPublicKey[i] = 0xBB
	}
	nodeID := ids.GenerateTestNodeID()

	validationID, err := sm.InitiateValidatorRegistration(
		owner, nodeID, blsPublicKey, clock.now+3600,
		warpmessage.PChainOwner{}, warpmessage.PChainOwner{},
		1_500, vmSettings.ChurnPeriodSeconds,
		utils.ApplyDefaultDenomination(1),
	)
	if err != nil {
		return err
	}
	ux.Logger.GreenCheckmarkToUser("initiated validator registration %s", validationID)

	ackPayload, err := warpmessage.PackL1ValidatorRegistration(validationID, true)
	if err != nil {
		return err
	}
	idx := messenger.EnqueueNodeSigned(pChainID, ackPayload)
	if _, err := vm.CompleteValidatorRegistration(idx); err != nil {
		return err
	}
	ux.Logger.GreenCheckmarkToUser("validator %s is now Active", validationID)

	delegator := common.HexToAddress("0x0100000000000000000000000000000000000002")
	delegationID, err := sm.InitiateDelegatorRegistration(delegator, validationID, utils.ApplyDenomination(1, 17))
	if err != nil {
		return err
	}
	ux.Logger.GreenCheckmarkToUser("initiated delegator registration %s", delegationID)

	v, _ := vm.Validator(validationID)
	weightAck, err := warpmessage.PackL1ValidatorWeight(validationID, v.SentNonce, v.Weight)
	if err != nil {
		return err
	}
	idx = messenger.EnqueueNodeSigned(pChainID, weightAck)
	if err := sm.CompleteDelegatorRegistration(delegationID, idx); err != nil {
		return err
	}
	ux.Logger.GreenCheckmarkToUser("delegator %s is now Active", delegationID)

	clock.Advance(vmSettings.ChurnPeriodSeconds + 1)

	uptimePayload, err := warpmessage.PackValidationUptime(validationID, vmSettings.ChurnPeriodSeconds)
	if err != nil {
		return err
	}
	idx = messenger.EnqueueNodeSigned(uptimeChainID, uptimePayload)
	if err := sm.SubmitUptimeProof(validationID, idx); err != nil {
		return err
	}
	ux.Logger.GreenCheckmarkToUser("submitted uptime proof for %s", validationID)

	eligible, err := sm.InitiateDelegatorRemoval(delegator, delegationID, false, 0, nil)
	if err != nil {
		return err
	}
	ux.Logger.PrintToUser("initiated delegator removal, reward-eligible=%v", eligible)

	v, _ = vm.Validator(validationID)
	removalAck, err := warpmessage.PackL1ValidatorWeight(validationID, v.SentNonce, v.Weight)
	if err != nil {
		return err
	}
	clock.Advance(vmSettings.ChurnPeriodSeconds + 1)
	idx = messenger.EnqueueNodeSigned(pChainID, removalAck)
	if err := sm.CompleteDelegatorRemoval(delegationID, idx); err != nil {
		return err
	}
	ux.Logger.GreenCheckmarkToUser("delegator %s removed, rewarded %s", delegationID, locker.Rewarded(delegator))

	nonce, _, err := vm.InitiateValidatorRemoval(validationID)
	if err != nil {
		return err
	}
	removeAck, err := warpmessage.PackL1ValidatorWeight(validationID, nonce, 0)
	if err != nil {
		return err
	}
	idx = messenger.EnqueueNodeSigned(pChainID, removeAck)
	if _, _, err := vm.CompleteValidatorWeightUpdate(idx); err != nil {
		return err
	}
	ux.Logger.GreenCheckmarkToUser("validator %s removed", validationID)

	if _, err := sm.CompleteValidatorRemoval(validationID); err != nil {
		return err
	}
	ux.Logger.GreenCheckmarkToUser("validator stake unlocked, owner rewarded %s", locker.Rewarded(owner))

	ux.Logger.PrintToUser("simulation complete")
	return nil
}
