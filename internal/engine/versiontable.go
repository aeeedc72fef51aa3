// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// VersionTable maps dependency keys to the opaque version tag (an ETag-style
// cache validator) last fetched for that key. It is loaded from and persisted
// to the lock section of a Vendfile.
type VersionTable struct {
	entries map[string]string
}

// NewVersionTable creates an empty version table.
func NewVersionTable() *VersionTable {
	return &VersionTable{entries: make(map[string]string)}
}

// ParseVersionTable parses the line-oriented lock format: one
// key<TAB>version-tag pair per line. Blank lines and lines starting with '#'
// are skipped. A non-blank line without a tab separator is a hard error for
// the whole table.
func ParseVersionTable(text string) (*VersionTable, error) {
	vt := NewVersionTable()

	for i, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		key, tag, found := strings.Cut(line, "\t")
		if !found {
			return nil, fmt.Errorf("%w: lock line %d has no tab separator: %q", ErrMalformedLock, i+1, line)
		}
		vt.entries[strings.TrimSpace(key)] = strings.TrimSpace(tag)
	}

	return vt, nil
}

// Get returns the recorded tag for key and whether one exists.
func (v *VersionTable) Get(key string) (string, bool) {
	tag, ok := v.entries[key]
	return tag, ok
}

// Set records tag for key, overwriting any previous entry.
func (v *VersionTable) Set(key, tag string) {
	v.entries[key] = tag
}

// Len returns the number of recorded entries.
func (v *VersionTable) Len() int { return len(v.entries) }

// Invalidate drops the entries for the given keys. Unknown keys are ignored;
// the caller validates targets against the live unit set first.
func (v *VersionTable) Invalidate(keys []string) {
	for _, k := range keys {
		delete(v.entries, k)
	}
}

// InvalidateAll drops every entry.
func (v *VersionTable) InvalidateAll() {
	v.entries = make(map[string]string)
}

// FilterTo restricts the table to keys present in live, pruning entries left
// behind by declarations removed from the manifest. Reports whether anything
// was dropped.
func (v *VersionTable) FilterTo(live map[string]struct{}) bool {
	before := len(v.entries)
	for k := range v.entries {
		if _, ok := live[k]; !ok {
			delete(v.entries, k)
		}
	}
	return len(v.entries) != before
}

// Serialize renders the table in the lock format, one key<TAB>tag line per
// entry, sorted by key so identical content always serializes identically.
func (v *VersionTable) Serialize() string {
	keys := maps.Keys(v.entries)
	slices.Sort(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteByte('\t')
		sb.WriteString(v.entries[k])
		sb.WriteByte('\n')
	}
	return sb.String()
}
