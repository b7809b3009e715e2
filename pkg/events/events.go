// Copyright (C) 2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package events defines the observability surface emitted by the
// validator and staking managers, one event per state transition, per
// spec.md §6. It is grounded on the teacher's pkg/ux.UserLog pattern
// (structured logging.Logger underneath a thin print/record layer) but
// emits typed structured records instead of terminal text.
package events

import (
	"math/big"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ethereum/go-ethereum/common"
)

// Emitter receives one call per state transition. Field sets mirror the
// table in spec.md §6 exactly.
type Emitter interface {
	RegisteredInitialValidator(validationID ids.ID, nodeID ids.NodeID, weight uint64)
	InitiatedValidatorRegistration(validationID ids.ID, nodeID ids.NodeID, registrationMessageID ids.ID, expiry, weight uint64)
	CompletedValidatorRegistration(validationID ids.ID, weight uint64)
	InitiatedValidatorRemoval(validationID ids.ID, weightMessageID ids.ID, weight, endTime uint64)
	CompletedValidatorRemoval(validationID ids.ID)
	InitiatedValidatorWeightUpdate(validationID ids.ID, nonce uint64, weightMessageID ids.ID, weight uint64)
	CompletedValidatorWeightUpdate(validationID ids.ID, nonce, weight uint64)
	InitiatedDelegatorRegistration(delegationID, validationID ids.ID, delegator common.Address, nonce, newValidatorWeight, delegatorWeight uint64, weightMessageID ids.ID)
	CompletedDelegatorRegistration(delegationID, validationID ids.ID, startTime uint64)
	InitiatedDelegatorRemoval(delegationID, validationID ids.ID)
	CompletedDelegatorRemoval(delegationID, validationID ids.ID, delegationRewards, validatorFee *big.Int)
	UptimeUpdated(validationID ids.ID, uptimeSeconds uint64)
}
