// Copyright (C) 2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package validatormanager

import (
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ethereum/go-ethereum/common"

	"github.com/ava-labs/l1-validator-manager/pkg/l1errors"
	"github.com/ava-labs/l1-validator-manager/pkg/warpmessage"
)

const maxRegistrationWindow = 48 * 3600 // seconds; spec.md §4.2: expiry > now + 48h rejected

// InitializeValidatorSet consumes the P-Chain's signed
// SubnetToL1ConversionMessage at messageIndex, seeding one Active
// Validator per entry of conversionData. One-shot: a second call fails.
func (m *Manager) InitializeValidatorSet(conversionData warpmessage.ConversionData, messageIndex uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireInitialized(); err != nil {
		return err
	}
	if len(m.validators) > 0 {
		return fmt.Errorf("initialize validator set: %w", l1errors.ErrAlreadyInitialized)
	}

	msg, ok := m.messenger.GetVerifiedMessage(messageIndex)
	if !ok {
		return l1errors.ErrInvalidWarpMessage
	}
	if msg.SourceChainID != m.settings.PChainBlockchainID {
		return l1errors.ErrInvalidWarpSourceChainID
	}
	if msg.OriginSenderAddress != (common.Address{}) {
		return l1errors.ErrInvalidWarpOriginSender
	}
	if conversionData.SubnetID != m.settings.SubnetID {
		return fmt.Errorf("initialize validator set: %w", l1errors.ErrInvalidWarpMessage)
	}

	unpacked, err := warpmessage.UnpackSubnetToL1Conversion(msg.Payload)
	if err != nil {
		return err
	}
	if conversionData.ID() != unpacked.ConversionID {
		return fmt.Errorf("initialize validator set: %w", l1errors.ErrInvalidWarpMessage)
	}

	now := m.clock.Unix()
	var total uint64
	for i, iv := range conversionData.InitialValidators {
		validationID := warpmessage.InitialValidationID(conversionData.SubnetID, uint32(i))
		m.validators[validationID] = &Validator{
			Status:         StatusActive,
			NodeID:         iv.NodeID,
			StartingWeight: iv.Weight,
			Weight:         iv.Weight,
			StartTime:      now,
		}
		total += iv.Weight
		m.emitter.RegisteredInitialValidator(validationID, iv.NodeID, iv.Weight)
	}
	m.l1TotalWeight = total
	m.churn = ChurnTracker{
		ChurnPeriodSeconds:  m.settings.ChurnPeriodSeconds,
		MaximumChurnPercent: m.settings.MaximumChurnPercentage,
		WindowStart:         now,
		TotalWeightAtStart:  total,
	}
	return nil
}

// InitiateValidatorRegistration builds and sends a RegisterL1Validator
// message, stores a PendingAdded Validator, and returns its validation_id.
func (m *Manager) InitiateValidatorRegistration(
	nodeID ids.NodeID,
	blsPublicKey [warpmessage.BLSPublicKeyLen]byte,
	expiry uint64,
	remainingBalanceOwner, disableOwner warpmessage.PChainOwner,
	weight uint64,
) (ids.ID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireInitialized(); err != nil {
		return ids.Empty, err
	}
	if weight == 0 {
		return ids.Empty, l1errors.ErrInvalidStakeAmount
	}
	now := m.clock.Unix()
	if expiry <= now {
		return ids.Empty, fmt.Errorf("initiate validator registration: expiry %d not after now %d", expiry, now)
	}
	if expiry > now+maxRegistrationWindow {
		return ids.Empty, fmt.Errorf("initiate validator registration: expiry %d beyond max window", expiry)
	}

	payload, validationID, err := warpmessage.PackRegisterL1Validator(warpmessage.RegisterL1ValidatorMessage{
		SubnetID:              m.settings.SubnetID,
		NodeID:                nodeID,
		BLSPublicKey:          blsPublicKey,
		Expiry:                expiry,
		RemainingBalanceOwner: remainingBalanceOwner,
		DisableOwner:          disableOwner,
		Weight:                weight,
	})
	if err != nil {
		return ids.Empty, fmt.Errorf("initiate validator registration: %w", err)
	}
	if _, exists := m.validators[validationID]; exists {
		return ids.Empty, l1errors.ErrNodeAlreadyRegistered
	}

	if weight > MaxTotalWeight-m.l1TotalWeight {
		return ids.Empty, l1errors.InvalidTotalWeight(m.l1TotalWeight + weight)
	}
	newTotal := m.l1TotalWeight + weight

	// Validate the churn admission against the window as it stands now, but
	// defer actually recording it until after SendMessage succeeds: staged
	// local mutation commits only once the external send has gone through,
	// so a failed send leaves no trace in the rolling window.
	if err := m.churn.wouldAdmit(now, m.l1TotalWeight, weight); err != nil {
		return ids.Empty, err
	}

	messageID, err := m.messenger.SendMessage(payload)
	if err != nil {
		return ids.Empty, fmt.Errorf("initiate validator registration: send warp message: %w", err)
	}
	if err := m.churn.admit(now, m.l1TotalWeight, weight); err != nil {
		return ids.Empty, err
	}

	m.validators[validationID] = &Validator{
		Status:         StatusPendingAdded,
		NodeID:         nodeID,
		StartingWeight: weight,
		Weight:         weight,
	}
	m.l1TotalWeight = newTotal
	m.emitter.InitiatedValidatorRegistration(validationID, nodeID, messageID, expiry, weight)
	return validationID, nil
}

// CompleteValidatorRegistration consumes an inbound L1ValidatorRegistration
// acknowledgement and transitions PendingAdded -> Active (valid=true) or
// PendingAdded -> Invalidated (valid=false).
func (m *Manager) CompleteValidatorRegistration(messageIndex uint32) (ids.ID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireInitialized(); err != nil {
		return ids.Empty, err
	}

	msg, ok := m.messenger.GetVerifiedMessage(messageIndex)
	if !ok {
		return ids.Empty, l1errors.ErrInvalidWarpMessage
	}
	if msg.SourceChainID != m.settings.PChainBlockchainID {
		return ids.Empty, l1errors.ErrInvalidWarpSourceChainID
	}
	if msg.OriginSenderAddress != (common.Address{}) {
		return ids.Empty, l1errors.ErrInvalidWarpOriginSender
	}
	ack, err := warpmessage.UnpackL1ValidatorRegistration(msg.Payload)
	if err != nil {
		return ids.Empty, err
	}

	v, ok := m.validators[ack.ValidationID]
	if !ok {
		return ids.Empty, l1errors.ErrValidatorNotFound
	}
	if v.Status != StatusPendingAdded {
		return ids.Empty, l1errors.InvalidValidatorStatus(v.Status)
	}

	if ack.Valid {
		v.Status = StatusActive
		v.StartTime = m.clock.Unix()
		m.emitter.CompletedValidatorRegistration(ack.ValidationID, v.Weight)
	} else {
		m.finalizeInvalidated(ack.ValidationID, v)
	}
	return ack.ValidationID, nil
}

// finalizeInvalidated transitions a still-pending registration to
// Invalidated and removes its weight from the ledger. Shared by
// CompleteValidatorRegistration's valid=false branch and
// CompleteValidatorRemoval.
func (m *Manager) finalizeInvalidated(validationID ids.ID, v *Validator) {
	v.Status = StatusInvalidated
	v.EndTime = m.clock.Unix()
	m.l1TotalWeight -= v.StartingWeight
	m.emitter.CompletedValidatorRemoval(validationID)
}
