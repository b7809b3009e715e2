// Copyright (C) 2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package poa

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/l1-validator-manager/pkg/l1errors"
)

func TestOpenNeverRejects(t *testing.T) {
	require := require.New(t)
	var a AuthorizedInitiator = Open{}
	require.NoError(a.RequireOwner(common.HexToAddress("0x01")))
	require.NoError(a.RequireOwner(common.Address{}))
}

func TestOwnerOnlyAcceptsOnlyConfiguredAddress(t *testing.T) {
	require := require.New(t)
	owner := common.HexToAddress("0x01")
	a := OwnerOnly(owner)

	require.NoError(a.RequireOwner(owner))
	require.ErrorIs(a.RequireOwner(common.HexToAddress("0x02")), l1errors.ErrUnauthorizedOwner)
}
