// Copyright (C) 2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package events

import (
	"math/big"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

var _ Emitter = (*LoggingEmitter)(nil)

// LoggingEmitter records every event as a structured log line, the way the
// teacher's pkg/ux.UserLog mirrors operator-facing output into the log
// file rather than discarding it.
type LoggingEmitter struct {
	log logging.Logger
}

func NewLoggingEmitter(log logging.Logger) *LoggingEmitter {
	return &LoggingEmitter{log: log}
}

func (e *LoggingEmitter) RegisteredInitialValidator(validationID ids.ID, nodeID ids.NodeID, weight uint64) {
	e.log.Info("registered initial validator",
		zap.Stringer("validationID", validationID),
		zap.Stringer("nodeID", nodeID),
		zap.Uint64("weight", weight),
	)
}

func (e *LoggingEmitter) InitiatedValidatorRegistration(validationID ids.ID, nodeID ids.NodeID, registrationMessageID ids.ID, expiry, weight uint64) {
	e.log.Info("initiated validator registration",
		zap.Stringer("validationID", validationID),
		zap.Stringer("nodeID", nodeID),
		zap.Stringer("registrationMessageID", registrationMessageID),
		zap.Uint64("expiry", expiry),
		zap.Uint64("weight", weight),
	)
}

func (e *LoggingEmitter) CompletedValidatorRegistration(validationID ids.ID, weight uint64) {
	e.log.Info("completed validator registration",
		zap.Stringer("validationID", validationID),
		zap.Uint64("weight", weight),
	)
}

func (e *LoggingEmitter) InitiatedValidatorRemoval(validationID ids.ID, weightMessageID ids.ID, weight, endTime uint64) {
	e.log.Info("initiated validator removal",
		zap.Stringer("validationID", validationID),
		zap.Stringer("weightMessageID", weightMessageID),
		zap.Uint64("weight", weight),
		zap.Uint64("endTime", endTime),
	)
}

func (e *LoggingEmitter) CompletedValidatorRemoval(validationID ids.ID) {
	e.log.Info("completed validator removal", zap.Stringer("validationID", validationID))
}

func (e *LoggingEmitter) InitiatedValidatorWeightUpdate(validationID ids.ID, nonce uint64, weightMessageID ids.ID, weight uint64) {
	e.log.Info("initiated validator weight update",
		zap.Stringer("validationID", validationID),
		zap.Uint64("nonce", nonce),
		zap.Stringer("weightMessageID", weightMessageID),
		zap.Uint64("weight", weight),
	)
}

func (e *LoggingEmitter) CompletedValidatorWeightUpdate(validationID ids.ID, nonce, weight uint64) {
	e.log.Info("completed validator weight update",
		zap.Stringer("validationID", validationID),
		zap.Uint64("nonce", nonce),
		zap.Uint64("weight", weight),
	)
}

func (e *LoggingEmitter) InitiatedDelegatorRegistration(delegationID, validationID ids.ID, delegator common.Address, nonce, newValidatorWeight, delegatorWeight uint64, weightMessageID ids.ID) {
	e.log.Info("initiated delegator registration",
		zap.Stringer("delegationID", delegationID),
		zap.Stringer("validationID", validationID),
		zap.Stringer("delegator", delegator),
		zap.Uint64("nonce", nonce),
		zap.Uint64("newValidatorWeight", newValidatorWeight),
		zap.Uint64("delegatorWeight", delegatorWeight),
		zap.Stringer("weightMessageID", weightMessageID),
	)
}

func (e *LoggingEmitter) CompletedDelegatorRegistration(delegationID, validationID ids.ID, startTime uint64) {
	e.log.Info("completed delegator registration",
		zap.Stringer("delegationID", delegationID),
		zap.Stringer("validationID", validationID),
		zap.Uint64("startTime", startTime),
	)
}

func (e *LoggingEmitter) InitiatedDelegatorRemoval(delegationID, validationID ids.ID) {
	e.log.Info("initiated delegator removal",
		zap.Stringer("delegationID", delegationID),
		zap.Stringer("validationID", validationID),
	)
}

func (e *LoggingEmitter) CompletedDelegatorRemoval(delegationID, validationID ids.ID, delegationRewards, validatorFee *big.Int) {
	e.log.Info("completed delegator removal",
		zap.Stringer("delegationID", delegationID),
		zap.Stringer("validationID", validationID),
		zap.Stringer("delegationRewards", delegationRewards),
		zap.Stringer("validatorFee", validatorFee),
	)
}

func (e *LoggingEmitter) UptimeUpdated(validationID ids.ID, uptimeSeconds uint64) {
	e.log.Info("uptime updated",
		zap.Stringer("validationID", validationID),
		zap.Uint64("uptimeSeconds", uptimeSeconds),
	)
}
