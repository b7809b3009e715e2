// Copyright (C) 2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package nativecoin is an in-process stand-in for a native-coin
// minter/custody backend: enough to drive stakingmanager's unit tests and
// the simulation entrypoint deterministically, without a real chain.
package nativecoin

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ava-labs/l1-validator-manager/pkg/assets"
)

var _ assets.Locker = (*Locker)(nil)

// Locker holds locked balances in memory, keyed by the address that
// supplied them. There is no decimals normalization: Lock always returns
// the full requested value.
type Locker struct {
	mu      sync.Mutex
	locked  *big.Int
	minted  map[common.Address]*big.Int
	unlocks map[common.Address]*big.Int
}

// New returns an empty Locker.
func New() *Locker {
	return &Locker{
		locked:  new(big.Int),
		minted:  make(map[common.Address]*big.Int),
		unlocks: make(map[common.Address]*big.Int),
	}
}

func (l *Locker) Lock(value *big.Int) (*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.locked.Add(l.locked, value)
	return new(big.Int).Set(value), nil
}

func (l *Locker) Unlock(to common.Address, value *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.locked.Sub(l.locked, value)
	bal, ok := l.unlocks[to]
	if !ok {
		bal = new(big.Int)
		l.unlocks[to] = bal
	}
	bal.Add(bal, value)
	return nil
}

func (l *Locker) Reward(to common.Address, amount *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	bal, ok := l.minted[to]
	if !ok {
		bal = new(big.Int)
		l.minted[to] = bal
	}
	bal.Add(bal, amount)
	return nil
}

// TotalLocked returns the sum of all values currently locked, for test
// assertions.
func (l *Locker) TotalLocked() *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return new(big.Int).Set(l.locked)
}

// Rewarded returns the cumulative amount rewarded to to.
func (l *Locker) Rewarded(to common.Address) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	bal, ok := l.minted[to]
	if !ok {
		return new(big.Int)
	}
	return new(big.Int).Set(bal)
}

// Unlocked returns the cumulative amount unlocked to to.
func (l *Locker) Unlocked(to common.Address) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	bal, ok := l.unlocks[to]
	if !ok {
		return new(big.Int)
	}
	return new(big.Int).Set(bal)
}
