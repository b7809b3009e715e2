// Copyright (C) 2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package validatormanager

import "time"

// SystemClock reports the wall clock, for production Managers. Tests use a
// fake Clock instead so expiry/churn-window behavior is deterministic.
type SystemClock struct{}

func (SystemClock) Unix() uint64 {
	return uint64(time.Now().Unix())
}
