// Copyright (C) 2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package simulator is an in-memory warp.Messenger standing in for the
// real signature-aggregation/relayer pipeline: it lets tests and the demo
// entrypoint fabricate "verified" inbound messages and record outbound
// ones, so the full initiate/acknowledge handshake can be exercised
// without a P-Chain or relayer.
package simulator

import (
	"sync"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ethereum/go-ethereum/common"

	"github.com/ava-labs/l1-validator-manager/pkg/utils"
	"github.com/ava-labs/l1-validator-manager/pkg/warp"
)

// Messenger fabricates verified inbound messages and records outbound
// ones. It is not thread-safe beyond its own mutex; it is meant for tests
// and single-process demos, not production relaying.
type Messenger struct {
	mu       sync.Mutex
	inbound  []warp.Message
	outbound [][]byte
}

// New returns an empty Messenger.
func New() *Messenger {
	return &Messenger{}
}

// Enqueue appends a fabricated verified inbound message, returning its
// index for use with initiate/complete calls that take a message_index.
func (m *Messenger) Enqueue(sourceChainID ids.ID, originSender common.Address, payload []byte) uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inbound = append(m.inbound, warp.Message{
		SourceChainID:       sourceChainID,
		OriginSenderAddress: originSender,
		Payload:             payload,
	})
	return uint32(len(m.inbound) - 1)
}

// EnqueueNodeSigned is a convenience for the common case: a node-signed
// proof, which per spec.md §4.2 always carries origin_sender_address == 0.
func (m *Messenger) EnqueueNodeSigned(sourceChainID ids.ID, payload []byte) uint32 {
	return m.Enqueue(sourceChainID, common.Address{}, payload)
}

func (m *Messenger) GetVerifiedMessage(index uint32) (warp.Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if int(index) >= len(m.inbound) {
		return warp.Message{}, false
	}
	return m.inbound[index], true
}

func (m *Messenger) SendMessage(payload []byte) (ids.ID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outbound = append(m.outbound, payload)
	return utils.SHA256ToID(payload), nil
}

// Outbound returns every payload handed to SendMessage, in order, for
// tests to assert against.
func (m *Messenger) Outbound() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.outbound))
	copy(out, m.outbound)
	return out
}
