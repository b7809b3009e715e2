// Copyright (C) 2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package validatormanager

import (
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ethereum/go-ethereum/common"

	"github.com/ava-labs/l1-validator-manager/pkg/l1errors"
	"github.com/ava-labs/l1-validator-manager/pkg/warpmessage"
)

// CompleteValidatorRemoval consumes an L1ValidatorRegistration
// acknowledgement carrying valid=false for a validator still in
// PendingAdded, canceling the in-flight registration and finalizing it as
// Invalidated. (An acknowledgement for a PendingRemoved validator is
// instead completed through CompleteValidatorWeightUpdate, per spec.md
// §4.2's state diagram: PendingRemoved only ever acks to Completed.)
func (m *Manager) CompleteValidatorRemoval(messageIndex uint32) (ids.ID, error) {
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
	if ack.Valid {
		return ids.Empty, l1errors.ErrInvalidWarpMessage
	}

	v, ok := m.validators[ack.ValidationID]
	if !ok {
		return ids.Empty, l1errors.ErrValidatorNotFound
	}
	if v.Status != StatusPendingAdded {
		return ids.Empty, l1errors.InvalidValidatorStatus(v.Status)
	}

	m.finalizeInvalidated(ack.ValidationID, v)
	return ack.ValidationID, nil
}

// MigrateFromV1 re-seeds a Validator record whose registration predates
// this manager, without running the registration handshake, per the
// migration note in spec.md §9. The validator is admitted directly into
// Active with the given weight.
func (m *Manager) MigrateFromV1(validationID ids.ID, nodeID ids.NodeID, weight uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireInitialized(); err != nil {
		return err
	}
	if weight == 0 {
		return l1errors.ErrInvalidStakeAmount
	}
	if _, exists := m.validators[validationID]; exists {
		return l1errors.ErrNodeAlreadyRegistered
	}

	newTotal := m.l1TotalWeight + weight
	if newTotal > MaxTotalWeight {
		return l1errors.InvalidTotalWeight(newTotal)
	}
	now := m.clock.Unix()
	if err := m.churn.admit(now, m.l1TotalWeight, weight); err != nil {
		return err
	}

	m.validators[validationID] = &Validator{
		Status:         StatusActive,
		NodeID:         nodeID,
		StartingWeight: weight,
		Weight:         weight,
		StartTime:      now,
	}
	m.l1TotalWeight = newTotal
	m.emitter.RegisteredInitialValidator(validationID, nodeID, weight)
	return nil
}
