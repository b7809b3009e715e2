// Copyright (C) 2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package poa

import (
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ethereum/go-ethereum/common"

	"github.com/ava-labs/l1-validator-manager/pkg/l1errors"
	"github.com/ava-labs/l1-validator-manager/pkg/validatormanager"
	"github.com/ava-labs/l1-validator-manager/pkg/warpmessage"
)

// Gate wraps a validatormanager.Manager, checking an AuthorizedInitiator
// before every caller-facing lifecycle call, per spec.md §4.5. Admin-only
// setup operations (InitializeValidatorSet, MigrateFromV1) instead check
// the caller against the address recorded at Initialize time.
type Gate struct {
	vm    *validatormanager.Manager
	authz AuthorizedInitiator
}

// NewGate wraps vm, gating mutating calls behind authz.
func NewGate(vm *validatormanager.Manager, authz AuthorizedInitiator) *Gate {
	return &Gate{vm: vm, authz: authz}
}

func (g *Gate) requireAdmin(caller ids.ShortID) error {
	if caller != g.vm.Admin() {
		return l1errors.ErrUnauthorizedOwner
	}
	return nil
}

// InitializeValidatorSet is admin-gated: only the address recorded at
// Initialize may seed the initial validator set.
func (g *Gate) InitializeValidatorSet(caller ids.ShortID, conversionData warpmessage.ConversionData, messageIndex uint32) error {
	if err := g.requireAdmin(caller); err != nil {
		return err
	}
	return g.vm.InitializeValidatorSet(conversionData, messageIndex)
}

// MigrateFromV1 is admin-gated, matching InitializeValidatorSet.
func (g *Gate) MigrateFromV1(caller ids.ShortID, validationID ids.ID, nodeID ids.NodeID, weight uint64) error {
	if err := g.requireAdmin(caller); err != nil {
		return err
	}
	return g.vm.MigrateFromV1(validationID, nodeID, weight)
}

// InitiateValidatorRegistration is gated by the configured
// AuthorizedInitiator: Open for Staking Manager callers (which layer
// their own per-validator ownership check), OwnerOnly for a PoA
// deployment.
func (g *Gate) InitiateValidatorRegistration(
	caller common.Address,
	nodeID ids.NodeID,
	blsPublicKey [warpmessage.BLSPublicKeyLen]byte,
	expiry uint64,
	remainingBalanceOwner, disableOwner warpmessage.PChainOwner,
	weight uint64,
) (ids.ID, error) {
	if err := g.authz.RequireOwner(caller); err != nil {
		return ids.Empty, err
	}
	return g.vm.InitiateValidatorRegistration(nodeID, blsPublicKey, expiry, remainingBalanceOwner, disableOwner, weight)
}

// InitiateValidatorRemoval is gated the same way as registration.
func (g *Gate) InitiateValidatorRemoval(caller common.Address, validationID ids.ID) (uint64, ids.ID, error) {
	if err := g.authz.RequireOwner(caller); err != nil {
		return 0, ids.Empty, err
	}
	return g.vm.InitiateValidatorRemoval(validationID)
}
