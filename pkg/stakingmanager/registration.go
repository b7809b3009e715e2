// Copyright (C) 2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package stakingmanager

import (
	"math/big"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ethereum/go-ethereum/common"

	"github.com/ava-labs/l1-validator-manager/pkg/l1errors"
	"github.com/ava-labs/l1-validator-manager/pkg/reward"
	"github.com/ava-labs/l1-validator-manager/pkg/warpmessage"
)

// InitiateValidatorRegistration locks stake, derives weight, and delegates
// to validatormanager's registration, per spec.md §4.3's PoS path.
func (m *StakingManager) InitiateValidatorRegistration(
	owner common.Address,
	nodeID ids.NodeID,
	blsPublicKey [warpmessage.BLSPublicKeyLen]byte,
	expiry uint64,
	balanceOwner, disableOwner warpmessage.PChainOwner,
	delegationFeeBips uint16,
	minStakeDuration uint64,
	stakeAmount *big.Int,
) (ids.ID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireInitialized(); err != nil {
		return ids.Empty, err
	}
	if delegationFeeBips < m.settings.MinimumDelegationFeeBips || delegationFeeBips > reward.BipsDenominator {
		return ids.Empty, l1errors.ErrInvalidDelegationFee
	}
	if minStakeDuration < m.settings.MinimumStakeDuration {
		return ids.Empty, l1errors.ErrInvalidMinStakeDuration
	}
	if stakeAmount == nil || stakeAmount.Cmp(m.settings.MinimumStakeAmount) < 0 || stakeAmount.Cmp(m.settings.MaximumStakeAmount) > 0 {
		return ids.Empty, l1errors.ErrInvalidStakeAmount
	}

	effectiveValue, err := m.locker.Lock(stakeAmount)
	if err != nil {
		return ids.Empty, err
	}
	weight, err := m.valueToWeight(effectiveValue)
	if err != nil {
		// Refund: the lock already ran as an external call that cannot be
		// undone by a local rollback, so failure past this point must
		// compensate explicitly rather than simply returning an error.
		_ = m.locker.Unlock(owner, effectiveValue)
		return ids.Empty, err
	}

	validationID, err := m.vm.InitiateValidatorRegistration(nodeID, blsPublicKey, expiry, balanceOwner, disableOwner, weight)
	if err != nil {
		_ = m.locker.Unlock(owner, effectiveValue)
		return ids.Empty, err
	}

	m.posInfo[validationID] = &PoSValidatorInfo{
		Owner:             owner,
		DelegationFeeBips: delegationFeeBips,
		MinStakeDuration:  minStakeDuration,
	}
	return validationID, nil
}
