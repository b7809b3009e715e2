// Copyright (C) 2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package warp models the Warp cross-chain messaging bus as the single
// external trust root the validator and staking managers depend on: they
// consume already-verified inbound messages and emit outbound ones, never
// verifying or aggregating signatures themselves.
package warp

import (
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ethereum/go-ethereum/common"
)

// Message is a verified inbound Warp payload, shaped like the
// avalanchego/subnet-evm AddressedCall envelope the teacher's
// pkg/validatormanager parses (warp.Message / warpPayload.AddressedCall):
// a source chain, an origin sender (the zero address signals a
// validator-node-signed proof rather than a contract call), and the
// message-codec payload bytes.
type Message struct {
	SourceChainID       ids.ID
	OriginSenderAddress common.Address
	Payload             []byte
}

// Messenger is the external trust root. The core never verifies Warp
// signatures itself; it asks the Messenger for an already-verified message
// by index, and hands it outbound payloads to sign and relay.
type Messenger interface {
	// GetVerifiedMessage returns the verified message at index, or
	// ok=false if verification failed or the index does not exist. The
	// core treats ok=false as fatal for the calling operation.
	GetVerifiedMessage(index uint32) (msg Message, ok bool)

	// SendMessage hands payload to the Warp transport for signing and
	// relay, returning the id the P-Chain will use to reference it.
	SendMessage(payload []byte) (ids.ID, error)
}
