// Copyright (C) 2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package utils

import (
	"crypto/sha256"

	"github.com/ava-labs/avalanchego/ids"
)

// SHA256ToID hashes b and returns the digest as an ids.ID, matching the
// validation/conversion ID derivation rule used throughout the message
// codec (validation_id = sha256(message_bytes), conversion_id =
// sha256(pack(conversion_data))).
func SHA256ToID(b []byte) ids.ID {
	return sha256.Sum256(b)
}
