// Copyright (C) 2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package poa

import (
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/l1-validator-manager/pkg/events"
	"github.com/ava-labs/l1-validator-manager/pkg/l1errors"
	"github.com/ava-labs/l1-validator-manager/pkg/validatormanager"
	"github.com/ava-labs/l1-validator-manager/pkg/warp/simulator"
	"github.com/ava-labs/l1-validator-manager/pkg/warpmessage"
)

type fakeClock struct{ now uint64 }

func (c *fakeClock) Unix() uint64 { return c.now }

func newTestGate(t *testing.T, admin ids.ShortID, authz AuthorizedInitiator) (*Gate, *simulator.Messenger, *fakeClock) {
	t.Helper()
	messenger := simulator.New()
	clock := &fakeClock{now: 1_000}
	vm := validatormanager.New(logging.NoLog{}, messenger, events.NewLoggingEmitter(logging.NoLog{}), clock)
	require.NoError(t, vm.Initialize(validatormanager.Settings{
		SubnetID:               ids.GenerateTestID(),
		ChurnPeriodSeconds:     3600,
		MaximumChurnPercentage: 20,
		PChainBlockchainID:     ids.GenerateTestID(),
	}, admin))
	return NewGate(vm, authz), messenger, clock
}

func TestInitializeValidatorSetRejectsNonAdmin(t *testing.T) {
	require := require.New(t)
	admin := ids.GenerateTestShortID()
	g, _, _ := newTestGate(t, admin, Open{})

	err := g.InitializeValidatorSet(ids.GenerateTestShortID(), warpmessage.ConversionData{}, 0)
	require.ErrorIs(err, l1errors.ErrUnauthorizedOwner)
}

func TestMigrateFromV1RejectsNonAdmin(t *testing.T) {
	require := require.New(t)
	admin := ids.GenerateTestShortID()
	g, _, _ := newTestGate(t, admin, Open{})

	err := g.MigrateFromV1(ids.GenerateTestShortID(), ids.GenerateTestID(), ids.GenerateTestNodeID(), 100)
	require.ErrorIs(err, l1errors.ErrUnauthorizedOwner)
}

func TestMigrateFromV1AcceptsAdmin(t *testing.T) {
	require := require.New(t)
	admin := ids.GenerateTestShortID()
	g, _, _ := newTestGate(t, admin, Open{})

	require.NoError(g.MigrateFromV1(admin, ids.GenerateTestID(), ids.GenerateTestNodeID(), 100))
}

func TestInitiateValidatorRegistrationGatedByOwnerOnly(t *testing.T) {
	require := require.New(t)
	owner := common.HexToAddress("0x01")
	g, _, clock := newTestGate(t, ids.ShortEmpty, OwnerOnly(owner))

	var bls [warpmessage.BLSPublicKeyLen]byte
	_, err := g.InitiateValidatorRegistration(common.HexToAddress("0x02"), ids.GenerateTestNodeID(), bls, clock.now+10, warpmessage.PChainOwner{}, warpmessage.PChainOwner{}, 100)
	require.ErrorIs(err, l1errors.ErrUnauthorizedOwner)

	_, err = g.InitiateValidatorRegistration(owner, ids.GenerateTestNodeID(), bls, clock.now+10, warpmessage.PChainOwner{}, warpmessage.PChainOwner{}, 100)
	require.NoError(err)
}

func TestInitiateValidatorRemovalGatedByOwnerOnly(t *testing.T) {
	require := require.New(t)
	owner := common.HexToAddress("0x01")
	g, messenger, clock := newTestGate(t, ids.ShortEmpty, OwnerOnly(owner))

	var bls [warpmessage.BLSPublicKeyLen]byte
	validationID, err := g.InitiateValidatorRegistration(owner, ids.GenerateTestNodeID(), bls, clock.now+10, warpmessage.PChainOwner{}, warpmessage.PChainOwner{}, 100)
	require.NoError(err)

	ackPayload, err := warpmessage.PackL1ValidatorRegistration(validationID, true)
	require.NoError(err)
	idx := messenger.EnqueueNodeSigned(g.vm.Settings().PChainBlockchainID, ackPayload)
	_, err = g.vm.CompleteValidatorRegistration(idx)
	require.NoError(err)

	_, _, err = g.InitiateValidatorRemoval(common.HexToAddress("0x02"), validationID)
	require.ErrorIs(err, l1errors.ErrUnauthorizedOwner)

	_, _, err = g.InitiateValidatorRemoval(owner, validationID)
	require.NoError(err)
}
