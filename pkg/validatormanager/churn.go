// Copyright (C) 2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package validatormanager

import "github.com/ava-labs/l1-validator-manager/pkg/l1errors"

// resetIfExpired rolls the churn window forward when it has elapsed, per
// spec.md §4.2: "if now - window_start >= churn_period_seconds, reset
// window before any new event is accounted."
func (t *ChurnTracker) resetIfExpired(now, totalWeight uint64) {
	if now-t.WindowStart >= t.ChurnPeriodSeconds {
		t.WindowStart = now
		t.TotalWeightAtStart = totalWeight
		t.AbsoluteChurnInWindow = 0
	}
}

// admit enforces the churn cap for a weight change of magnitude delta and,
// if accepted, records it in the window. delta is always non-negative;
// callers pass the absolute value of the weight change. A zero
// total_weight_at_start makes the percentage cap vacuous (0% of nothing
// bounds no growth), so it is treated as "no validators admitted into
// this window yet" rather than "no growth ever permitted" — otherwise the
// very first validator admitted onto an empty L1 could never pass the
// cap, which spec.md's own worked example assumes succeeds.
func (t *ChurnTracker) admit(now, totalWeight, delta uint64) error {
	t.resetIfExpired(now, totalWeight)
	candidate := t.AbsoluteChurnInWindow + delta
	if t.TotalWeightAtStart > 0 && candidate*100 > uint64(t.MaximumChurnPercent)*t.TotalWeightAtStart {
		return l1errors.ErrMaxChurnRateExceeded
	}
	t.AbsoluteChurnInWindow = candidate
	return nil
}

// wouldAdmit reports the same verdict as admit without recording delta in
// the window, so callers can validate a churn admission ahead of an
// external send and only call admit to actually commit it once that send
// has succeeded. Keep this in sync with admit's check.
func (t *ChurnTracker) wouldAdmit(now, totalWeight, delta uint64) error {
	windowStart, totalWeightAtStart, churnInWindow := t.WindowStart, t.TotalWeightAtStart, t.AbsoluteChurnInWindow
	if now-windowStart >= t.ChurnPeriodSeconds {
		totalWeightAtStart = totalWeight
		churnInWindow = 0
	}
	candidate := churnInWindow + delta
	if totalWeightAtStart > 0 && candidate*100 > uint64(t.MaximumChurnPercent)*totalWeightAtStart {
		return l1errors.ErrMaxChurnRateExceeded
	}
	return nil
}

func absDelta(before, after uint64) uint64 {
	if after > before {
		return after - before
	}
	return before - after
}
