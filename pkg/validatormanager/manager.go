// Copyright (C) 2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package validatormanager

import (
	"sync"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"

	"github.com/ava-labs/l1-validator-manager/pkg/events"
	"github.com/ava-labs/l1-validator-manager/pkg/l1errors"
	"github.com/ava-labs/l1-validator-manager/pkg/warp"
)

// Clock abstracts "now" so tests can drive the churn window and expiry
// checks deterministically instead of reaching for time.Now.
type Clock interface {
	Unix() uint64
}

// Manager is the validator lifecycle state machine of spec.md §4.2. Every
// exported method takes mu for its full duration: the unit of atomicity is
// the operation, matching the single-threaded transactional execution
// model of spec.md §5.
type Manager struct {
	mu sync.Mutex

	log       logging.Logger
	messenger warp.Messenger
	emitter   events.Emitter
	clock     Clock

	initialized bool
	settings    Settings
	admin       ids.ShortID

	validators    map[ids.ID]*Validator
	churn         ChurnTracker
	l1TotalWeight uint64
}

// New constructs an uninitialized Manager. Initialize must be called
// exactly once before any other operation.
func New(log logging.Logger, messenger warp.Messenger, emitter events.Emitter, clock Clock) *Manager {
	return &Manager{
		log:        log,
		messenger:  messenger,
		emitter:    emitter,
		clock:      clock,
		validators: make(map[ids.ID]*Validator),
	}
}

// Initialize is the one-shot settings setter described in spec.md §4.2.
func (m *Manager) Initialize(settings Settings, admin ids.ShortID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return l1errors.ErrAlreadyInitialized
	}
	if settings.MaximumChurnPercentage > 20 {
		return l1errors.ErrInvalidChurnPercentage
	}
	m.settings = settings
	m.admin = admin
	m.churn = ChurnTracker{
		ChurnPeriodSeconds:  settings.ChurnPeriodSeconds,
		MaximumChurnPercent: settings.MaximumChurnPercentage,
	}
	m.initialized = true
	return nil
}

// Admin returns the address configured at Initialize time, the owner
// poa.Gate checks admin-only operations (InitializeValidatorSet,
// MigrateFromV1) against.
func (m *Manager) Admin() ids.ShortID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.admin
}

// requireInitialized must be called with mu held.
func (m *Manager) requireInitialized() error {
	if !m.initialized {
		return l1errors.ErrNotInitialized
	}
	return nil
}

// Validator returns a snapshot of the validator's current state. Neither
// subsystem may mutate the other's state directly; this is the shared
// read-only access point spec.md §5 describes.
func (m *Manager) Validator(validationID ids.ID) (Validator, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.validators[validationID]
	if !ok {
		return Validator{}, false
	}
	return v.Clone(), true
}

// TotalWeight returns l1_total_weight.
func (m *Manager) TotalWeight() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.l1TotalWeight
}

// Settings returns the immutable settings record.
func (m *Manager) Settings() Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings
}
