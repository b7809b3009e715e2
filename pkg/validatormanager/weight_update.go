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

// InitiateValidatorWeightUpdate issues the next nonce, sends an
// L1ValidatorWeight message, and applies the weight change optimistically
// (or marks the validator PendingRemoved if newWeight is zero).
func (m *Manager) InitiateValidatorWeightUpdate(validationID ids.ID, newWeight uint64) (nonce uint64, messageID ids.ID, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireInitialized(); err != nil {
		return 0, ids.Empty, err
	}
	v, ok := m.validators[validationID]
	if !ok {
		return 0, ids.Empty, l1errors.ErrValidatorNotFound
	}
	if v.Status != StatusActive {
		return 0, ids.Empty, l1errors.InvalidValidatorStatus(v.Status)
	}

	delta := absDelta(v.Weight, newWeight)
	now := m.clock.Unix()
	growing := newWeight >= v.Weight
	if growing {
		if delta > MaxTotalWeight-m.l1TotalWeight {
			return 0, ids.Empty, l1errors.InvalidTotalWeight(m.l1TotalWeight + delta)
		}
	}
	// Validate against the churn window now, but defer recording the
	// admission until after SendMessage succeeds — a failed send must not
	// leave a trace in the rolling window (see wouldAdmit).
	if err := m.churn.wouldAdmit(now, m.l1TotalWeight, delta); err != nil {
		return 0, ids.Empty, err
	}

	nextNonce := v.SentNonce + 1
	payload, err := warpmessage.PackL1ValidatorWeight(validationID, nextNonce, newWeight)
	if err != nil {
		return 0, ids.Empty, fmt.Errorf("initiate validator weight update: %w", err)
	}
	messageID, err = m.messenger.SendMessage(payload)
	if err != nil {
		return 0, ids.Empty, fmt.Errorf("initiate validator weight update: send warp message: %w", err)
	}
	if err := m.churn.admit(now, m.l1TotalWeight, delta); err != nil {
		return 0, ids.Empty, err
	}

	v.SentNonce = nextNonce
	if newWeight == 0 {
		v.Status = StatusPendingRemoved
		v.EndTime = now
	} else {
		if newWeight >= v.Weight {
			m.l1TotalWeight += delta
		} else {
			m.l1TotalWeight -= delta
		}
		v.Weight = newWeight
	}
	m.emitter.InitiatedValidatorWeightUpdate(validationID, nextNonce, messageID, newWeight)
	if newWeight == 0 {
		m.emitter.InitiatedValidatorRemoval(validationID, messageID, v.Weight, v.EndTime)
	}
	return nextNonce, messageID, nil
}

// InitiateValidatorRemoval is shorthand for a weight update to zero.
func (m *Manager) InitiateValidatorRemoval(validationID ids.ID) (nonce uint64, messageID ids.ID, err error) {
	return m.InitiateValidatorWeightUpdate(validationID, 0)
}

// CompleteValidatorWeightUpdate consumes an inbound L1ValidatorWeight
// acknowledgement, advancing received_nonce and finalizing a pending
// removal when the acked weight is zero at the matching nonce.
func (m *Manager) CompleteValidatorWeightUpdate(messageIndex uint32) (validationID ids.ID, nonce uint64, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireInitialized(); err != nil {
		return ids.Empty, 0, err
	}

	msg, ok := m.messenger.GetVerifiedMessage(messageIndex)
	if !ok {
		return ids.Empty, 0, l1errors.ErrInvalidWarpMessage
	}
	if msg.SourceChainID != m.settings.PChainBlockchainID {
		return ids.Empty, 0, l1errors.ErrInvalidWarpSourceChainID
	}
	if msg.OriginSenderAddress != (common.Address{}) {
		return ids.Empty, 0, l1errors.ErrInvalidWarpOriginSender
	}
	ack, err := warpmessage.UnpackL1ValidatorWeight(msg.Payload)
	if err != nil {
		return ids.Empty, 0, err
	}

	v, ok := m.validators[ack.ValidationID]
	if !ok {
		return ids.Empty, 0, l1errors.ErrValidatorNotFound
	}
	if ack.Nonce < v.ReceivedNonce {
		return ids.Empty, 0, l1errors.InvalidNonce(ack.Nonce)
	}
	if ack.Nonce > v.ReceivedNonce {
		v.ReceivedNonce = ack.Nonce
	}

	if ack.Weight == 0 && ack.Nonce == v.SentNonce && v.Status == StatusPendingRemoved {
		v.Status = StatusCompleted
		m.l1TotalWeight -= v.StartingWeight
		m.emitter.CompletedValidatorRemoval(ack.ValidationID)
	} else {
		m.emitter.CompletedValidatorWeightUpdate(ack.ValidationID, ack.Nonce, ack.Weight)
	}
	return ack.ValidationID, ack.Nonce, nil
}
