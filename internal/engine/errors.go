// SPDX-License-Identifier: MPL-2.0

package engine

import "errors"

// Configuration errors abort a run before any network activity. Everything
// else the engine encounters (bad statuses, transport failures, unexpected
// response shapes) is logged, scoped to the one transfer that hit it, and
// never fails the run.
var (
	// ErrMalformedLock is wrapped by lock-section parse failures.
	ErrMalformedLock = errors.New("malformed lock section")

	// ErrUnknownUpgradeTarget is wrapped when an upgrade names a key that does
	// not match any registered unit.
	ErrUnknownUpgradeTarget = errors.New("unknown upgrade target")

	// ErrSchedulerState is wrapped when Start or Pass is called in a state
	// that does not permit it.
	ErrSchedulerState = errors.New("invalid scheduler state")
)
