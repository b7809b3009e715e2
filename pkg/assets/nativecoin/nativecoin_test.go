// Copyright (C) 2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package nativecoin

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestLockAddsToTotalAndReturnsFullValue(t *testing.T) {
	require := require.New(t)
	l := New()

	effective, err := l.Lock(big.NewInt(1_000))
	require.NoError(err)
	require.Equal(big.NewInt(1_000), effective)
	require.Equal(big.NewInt(1_000), l.TotalLocked())

	_, err = l.Lock(big.NewInt(500))
	require.NoError(err)
	require.Equal(big.NewInt(1_500), l.TotalLocked())
}

func TestUnlockCreditsRecipientAndReducesTotal(t *testing.T) {
	require := require.New(t)
	l := New()
	to := common.HexToAddress("0x01")

	_, err := l.Lock(big.NewInt(1_000))
	require.NoError(err)
	require.NoError(l.Unlock(to, big.NewInt(400)))

	require.Equal(big.NewInt(400), l.Unlocked(to))
	require.Equal(big.NewInt(600), l.TotalLocked())

	require.NoError(l.Unlock(to, big.NewInt(100)))
	require.Equal(big.NewInt(500), l.Unlocked(to))
}

func TestRewardAccumulatesPerRecipient(t *testing.T) {
	require := require.New(t)
	l := New()
	a := common.HexToAddress("0x01")
	b := common.HexToAddress("0x02")

	require.NoError(l.Reward(a, big.NewInt(10)))
	require.NoError(l.Reward(a, big.NewInt(5)))
	require.NoError(l.Reward(b, big.NewInt(1)))

	require.Equal(big.NewInt(15), l.Rewarded(a))
	require.Equal(big.NewInt(1), l.Rewarded(b))
}

func TestUnrewardedAndUnlockedAddressesReadZero(t *testing.T) {
	require := require.New(t)
	l := New()
	addr := common.HexToAddress("0x03")

	require.Equal(big.NewInt(0), l.Rewarded(addr))
	require.Equal(big.NewInt(0), l.Unlocked(addr))
}
