// SPDX-License-Identifier: MPL-2.0

package engine

// URLUnit resolves a direct-URL dependency: one GET, body written verbatim
// to the destination.
type URLUnit struct {
	Source string // Key and request target
	Dest   string // Local path the body is written to

	queue []*Transfer
}

// NewURLUnit creates a direct-URL unit.
func NewURLUnit(source, dest string) *URLUnit {
	return &URLUnit{Source: source, Dest: dest}
}

// Key returns the source URL, which doubles as the unit's identity.
func (u *URLUnit) Key() string { return u.Source }

// Seed enqueues the single transfer, conditional on any recorded tag.
func (u *URLUnit) Seed(r *Run) {
	u.queue = append(u.queue, StartTransfer(r.Client, u.Source, r.conditionalHeader(u.Key(), nil)))
}

// Poll advances the transfer and writes the body on a fresh 200.
func (u *URLUnit) Poll(r *Run) bool {
	remaining := u.queue[:0]
	for _, t := range u.queue {
		res := t.Poll()
		if res == nil {
			remaining = append(remaining, t)
			continue
		}
		if r.dispatch(u.Key(), res, t) {
			r.writeFile(u.Key(), u.Dest, res.Body)
		}
	}
	u.queue = remaining
	return len(u.queue) == 0
}
