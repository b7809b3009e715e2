// Copyright (C) 2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package evmhook implements assets.Locker against a real EVM contract,
// sending the three fixed calls stakingmanager needs as ABI-encoded
// transactions through a bind.ContractTransactor, grounded on the
// teacher's pkg/contract.TxToMethod -- reduced to the fixed signatures
// this core actually calls rather than the teacher's dynamic method-spec
// parser.
package evmhook

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"github.com/ava-labs/l1-validator-manager/pkg/assets"
)

// lockerABI is the fixed three-method surface stakingmanager drives: the
// asset-custody contract backing a deployment need only implement these.
const lockerABI = `[
	{"type":"function","name":"lock","stateMutability":"payable","inputs":[{"name":"value","type":"uint256"}],"outputs":[{"name":"effective","type":"uint256"}]},
	{"type":"function","name":"unlock","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"reward","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]}
]`

var _ assets.Locker = (*Locker)(nil)

// Backend is the subset of bind.ContractBackend the hook needs; satisfied
// by an ethclient.Client or subnet-evm's equivalent.
type Backend interface {
	bind.ContractTransactor
	bind.ContractCaller
}

// Locker sends lock/unlock/reward as transactions against a deployed
// contract, signed by txOpts. It does not wait for confirmation; callers
// that need finality should wrap Backend with their own receipt polling,
// matching the teacher's separate evm.WaitForTransaction step.
type Locker struct {
	contract *bind.BoundContract
	txOpts   *bind.TransactOpts
	ctx      context.Context
}

// New binds address on backend, signing outgoing transactions with txOpts.
func New(ctx context.Context, backend Backend, address common.Address, txOpts *bind.TransactOpts) (*Locker, error) {
	parsed, err := abi.JSON(strings.NewReader(lockerABI))
	if err != nil {
		return nil, err
	}
	return &Locker{
		contract: bind.NewBoundContract(address, parsed, backend, backend, nil),
		txOpts:   txOpts,
		ctx:      ctx,
	}, nil
}

func (l *Locker) Lock(value *big.Int) (*big.Int, error) {
	opts := *l.txOpts
	opts.Context = l.ctx
	opts.Value = value
	if _, err := l.contract.Transact(&opts, "lock", value); err != nil {
		return nil, err
	}
	// The contract may normalize value by its own decimals; without a
	// receipt-log parser this hook reports the requested value back, same
	// as the teacher's TxToMethod callers do before decoding logs.
	return new(big.Int).Set(value), nil
}

func (l *Locker) Unlock(to common.Address, value *big.Int) error {
	opts := *l.txOpts
	opts.Context = l.ctx
	_, err := l.contract.Transact(&opts, "unlock", to, value)
	return err
}

func (l *Locker) Reward(to common.Address, amount *big.Int) error {
	opts := *l.txOpts
	opts.Context = l.ctx
	_, err := l.contract.Transact(&opts, "reward", to, amount)
	return err
}
