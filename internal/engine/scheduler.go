// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"fmt"
	"sync/atomic"
)

const (
	// StateIdle means Start has not been called.
	StateIdle SchedulerState = iota
	// StateRunning means units are seeded and passes are being driven.
	StateRunning
	// StateDone is terminal; a new run requires a fresh Scheduler.
	StateDone
)

type (
	// SchedulerState is the lifecycle state of a Scheduler.
	SchedulerState int32

	// UpgradeSelection names the pins to discard before seeding. All wins
	// over Keys; the zero value upgrades nothing.
	UpgradeSelection struct {
		All  bool
		Keys []string
	}

	// PersistFunc writes the version table back through the manifest once the
	// run completes with a dirty table.
	PersistFunc func(*VersionTable) error

	// Scheduler drives all registered units to completion, one cooperative
	// pass at a time, and persists the version table when the run ends. The
	// host calls Start once and then Pass on its own cadence until Pass
	// reports done.
	Scheduler struct {
		state   atomic.Int32
		run     *Run
		units   []Unit
		active  []Unit
		persist PersistFunc
	}
)

// String returns a human-readable representation of the scheduler state.
func (s SchedulerState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// NewScheduler creates a scheduler for one run. persist may be nil when the
// host handles persistence itself (or a test does not care).
func NewScheduler(run *Run, persist PersistFunc) *Scheduler {
	return &Scheduler{run: run, persist: persist}
}

// Register adds units to the run. Only valid before Start.
func (s *Scheduler) Register(units ...Unit) {
	s.units = append(s.units, units...)
}

// State returns the current lifecycle state.
func (s *Scheduler) State() SchedulerState {
	return SchedulerState(s.state.Load())
}

// Start validates the upgrade selection, applies invalidations, prunes lock
// entries whose declarations are gone, and seeds every unit. An upgrade key
// that matches no registered unit aborts with ErrUnknownUpgradeTarget before
// any network activity and with zero side effects.
func (s *Scheduler) Start(upgrade UpgradeSelection) error {
	if st := s.State(); st != StateIdle {
		return fmt.Errorf("%w: cannot start in state %s", ErrSchedulerState, st)
	}

	live := make(map[string]struct{}, len(s.units))
	for _, u := range s.units {
		live[u.Key()] = struct{}{}
	}

	if !upgrade.All {
		for _, k := range upgrade.Keys {
			if _, ok := live[k]; !ok {
				return fmt.Errorf("%w: %q", ErrUnknownUpgradeTarget, k)
			}
		}
	}

	switch {
	case upgrade.All:
		if s.run.Versions.Len() > 0 {
			s.run.Versions.InvalidateAll()
			s.run.MarkDirty()
		}
	case len(upgrade.Keys) > 0:
		before := s.run.Versions.Len()
		s.run.Versions.Invalidate(upgrade.Keys)
		if s.run.Versions.Len() != before {
			s.run.MarkDirty()
		}
	}

	if s.run.Versions.FilterTo(live) {
		s.run.MarkDirty()
	}

	for _, u := range s.units {
		u.Seed(s.run)
	}
	s.active = s.units

	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return fmt.Errorf("%w: concurrent start", ErrSchedulerState)
	}

	s.run.Logger.Debug("run started", "run", s.run.ID, "units", len(s.units))
	return nil
}

// Pass polls every active unit once, dropping the resolved ones. The instant
// the active set empties the scheduler persists the table (iff dirty),
// transitions to Done, and reports done=true. Calling Pass before Start or
// after Done is a programmer error.
func (s *Scheduler) Pass() (done bool, err error) {
	if st := s.State(); st != StateRunning {
		return false, fmt.Errorf("%w: cannot pass in state %s", ErrSchedulerState, st)
	}

	unresolved := s.active[:0]
	for _, u := range s.active {
		if !u.Poll(s.run) {
			unresolved = append(unresolved, u)
		}
	}
	s.active = unresolved

	if len(s.active) > 0 {
		return false, nil
	}

	s.state.Store(int32(StateDone))
	s.run.Logger.Debug("run complete", "run", s.run.ID, "dirty", s.run.Dirty())

	if s.run.Dirty() && s.persist != nil {
		if perr := s.persist(s.run.Versions); perr != nil {
			return true, fmt.Errorf("persisting version table: %w", perr)
		}
	}

	return true, nil
}
