// SPDX-License-Identifier: MPL-2.0

package engine

// Unit is one declared dependency and its resolution logic. The two kinds —
// direct URL and repository path — are a closed set built by the manifest
// loader, not an open registry.
//
// A unit owns a queue of outstanding Transfers. Seeding puts the first
// transfer(s) on the queue; each Poll advances every outstanding transfer one
// step and may, for repository units, grow the queue with transfers
// discovered in a directory listing. A unit is resolved exactly when its
// queue is empty.
type Unit interface {
	// Key returns the unit's stable identity: the version-table lookup key
	// and the name users pass to a targeted upgrade. Pure function of the
	// declaration.
	Key() string

	// Seed enqueues the unit's initial transfer(s). Called exactly once per
	// run, before the first Poll.
	Seed(r *Run)

	// Poll advances all owned transfers and dispatches any that completed.
	// Reports whether the unit is now resolved.
	Poll(r *Run) bool
}
