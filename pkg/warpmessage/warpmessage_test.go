// Copyright (C) 2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package warpmessage

import (
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/l1-validator-manager/pkg/l1errors"
)

func TestL1ValidatorWeightRoundTrip(t *testing.T) {
	require := require.New(t)

	validationID := ids.GenerateTestID()
	b, err := PackL1ValidatorWeight(validationID, 7, 1_234_567)
	require.NoError(err)
	require.Len(b, l1ValidatorWeightLen)

	msg, err := UnpackL1ValidatorWeight(b)
	require.NoError(err)
	require.Equal(validationID, msg.ValidationID)
	require.Equal(uint64(7), msg.Nonce)
	require.Equal(uint64(1_234_567), msg.Weight)
}

func TestL1ValidatorWeightWrongCodecID(t *testing.T) {
	require := require.New(t)

	validationID := ids.GenerateTestID()
	b, err := PackL1ValidatorWeight(validationID, 1, 1)
	require.NoError(err)
	b[1] = 0xFF

	_, err = UnpackL1ValidatorWeight(b)
	require.ErrorIs(err, l1errors.ErrInvalidCodecID)
}

func TestL1ValidatorRegistrationRoundTrip(t *testing.T) {
	require := require.New(t)

	validationID := ids.GenerateTestID()
	b, err := PackL1ValidatorRegistration(validationID, true)
	require.NoError(err)
	require.Len(b, l1ValidatorRegistrationLen)

	msg, err := UnpackL1ValidatorRegistration(b)
	require.NoError(err)
	require.Equal(validationID, msg.ValidationID)
	require.True(msg.Valid)
}

func TestSubnetToL1ConversionRoundTrip(t *testing.T) {
	require := require.New(t)

	conversionID := ids.GenerateTestID()
	b, err := PackSubnetToL1Conversion(conversionID)
	require.NoError(err)

	msg, err := UnpackSubnetToL1Conversion(b)
	require.NoError(err)
	require.Equal(conversionID, msg.ConversionID)
}

func TestValidationUptimeRoundTrip(t *testing.T) {
	require := require.New(t)

	validationID := ids.GenerateTestID()
	b, err := PackValidationUptime(validationID, 3600)
	require.NoError(err)

	msg, err := UnpackValidationUptime(b)
	require.NoError(err)
	require.Equal(validationID, msg.ValidationID)
	require.Equal(uint64(3600), msg.UptimeSeconds)
}

func TestConversionDataID(t *testing.T) {
	require := require.New(t)

	data := ConversionData{
		SubnetID:            ids.GenerateTestID(),
		ManagerBlockchainID: ids.GenerateTestID(),
		ManagerAddress:      make([]byte, 20),
		InitialValidators: []InitialValidator{
			{NodeID: ids.GenerateTestNodeID(), Weight: 100},
		},
	}
	first := data.ID()
	second := data.ID()
	require.Equal(first, second, "conversion id must be deterministic")
}

func TestInitialValidationID(t *testing.T) {
	require := require.New(t)

	subnetID := ids.GenerateTestID()
	idA := InitialValidationID(subnetID, 0)
	idB := InitialValidationID(subnetID, 1)
	require.NotEqual(idA, idB)
}
