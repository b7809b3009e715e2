// Copyright (C) 2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package poa implements the Proof-of-Authority specialization of
// spec.md §9: a single validator core plus a capability, rather than a
// separate PoA validator manager. Staking Manager uses Open (layering its
// own authorization); PoA deployments use OwnerOnly.
package poa

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/ava-labs/l1-validator-manager/pkg/l1errors"
)

// AuthorizedInitiator gates lifecycle calls by caller address.
type AuthorizedInitiator interface {
	RequireOwner(caller common.Address) error
}

// Open never rejects a caller; it is used by Staking Manager, which
// layers its own per-call ownership checks on top.
type Open struct{}

func (Open) RequireOwner(common.Address) error { return nil }

// OwnerOnly accepts calls only from a single fixed owner address, the PoA
// specialization of spec.md §9.
type OwnerOnly common.Address

func (o OwnerOnly) RequireOwner(caller common.Address) error {
	if common.Address(o) != caller {
		return l1errors.ErrUnauthorizedOwner
	}
	return nil
}
