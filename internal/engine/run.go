// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/vendfile/vendfile/internal/github"
)

const (
	// OutcomeUnchanged means the remote replied 304 for the recorded tag.
	OutcomeUnchanged Outcome = iota
	// OutcomeFetched means fresh content was written this run.
	OutcomeFetched
	// OutcomeUpgradable means the remote has a newer version than the
	// recorded pin, which was deliberately left untouched.
	OutcomeUpgradable
	// OutcomeFailed means at least one transfer for the key failed.
	OutcomeFailed
)

type (
	// Outcome classifies what happened to one dependency key during a run.
	// Ordering doubles as merge priority: when several transfers report for
	// the same key (directory expansion), the highest-valued outcome wins.
	Outcome int

	// Run carries all state scoped to a single manifest execution: the HTTP
	// issuer, the repository metadata client, the version table, the dirty
	// flag, and the per-key outcome report. It is constructed at run start,
	// threaded explicitly through every Seed and Poll, and consumed when the
	// scheduler reaches Done.
	Run struct {
		ID       uuid.UUID
		Client   *http.Client
		Repo     *github.Client
		Versions *VersionTable
		Logger   *log.Logger

		dirty    bool
		recorded map[string]struct{} // keys whose tag was first written this run
		outcomes map[string]Outcome
	}
)

// String returns the user-facing outcome label.
func (o Outcome) String() string {
	switch o {
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeFetched:
		return "fetched"
	case OutcomeUpgradable:
		return "upgradable"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// NewRun creates the state for one manifest execution. A nil logger is
// replaced with a discarding one so library callers and tests need no setup.
func NewRun(client *http.Client, repo *github.Client, versions *VersionTable, logger *log.Logger) *Run {
	if client == nil {
		client = http.DefaultClient
	}
	if versions == nil {
		versions = NewVersionTable()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Run{
		ID:       uuid.New(),
		Client:   client,
		Repo:     repo,
		Versions: versions,
		Logger:   logger,
		recorded: make(map[string]struct{}),
		outcomes: make(map[string]Outcome),
	}
}

// Dirty reports whether the version table must be persisted on completion.
func (r *Run) Dirty() bool { return r.dirty }

// MarkDirty forces persistence on completion. The scheduler uses it when
// stale lock entries are pruned or pins are invalidated for an upgrade.
func (r *Run) MarkDirty() { r.dirty = true }

// Outcome returns the reported outcome for key, if any transfer reported one.
func (r *Run) Outcome(key string) (Outcome, bool) {
	o, ok := r.outcomes[key]
	return o, ok
}

// ReportKeys returns every key with a reported outcome, sorted.
func (r *Run) ReportKeys() []string {
	keys := maps.Keys(r.outcomes)
	slices.Sort(keys)
	return keys
}

// reportOutcome merges o into the key's reported outcome, keeping the
// highest-priority one across all transfers for that key.
func (r *Run) reportOutcome(key string, o Outcome) {
	if cur, ok := r.outcomes[key]; ok && cur >= o {
		return
	}
	r.outcomes[key] = o
}

// recordVersion applies the version bookkeeping for one successful response.
// A key with no recorded tag gets the new one and dirties the table. A key
// whose recorded tag disagrees with the new one is flagged upgradable and the
// table is left untouched, so a plain sync never silently moves a pin —
// unless the recorded tag was first written earlier in this same run, in
// which case later sibling responses (directory children carry their own
// validators) are ignored rather than misreported as an available upgrade.
func (r *Run) recordVersion(key, tag string) {
	if tag == "" {
		return
	}

	prior, ok := r.Versions.Get(key)
	switch {
	case !ok:
		r.Versions.Set(key, tag)
		r.recorded[key] = struct{}{}
		r.dirty = true
	case prior == tag:
		// Refetched the pinned version; nothing to do.
	default:
		if _, fresh := r.recorded[key]; fresh {
			return
		}
		r.Logger.Warn("newer version available; pin left untouched",
			"key", key, "pinned", prior, "remote", tag)
		r.reportOutcome(key, OutcomeUpgradable)
	}
}

// conditionalHeader returns the If-None-Match header for key's seeded
// transfer, populated from the recorded tag when one exists. The extra
// headers are merged in (repository API headers for repo units).
func (r *Run) conditionalHeader(key string, extra http.Header) http.Header {
	h := make(http.Header)
	for k, vs := range extra {
		for _, v := range vs {
			h.Add(k, v)
		}
	}
	if tag, ok := r.Versions.Get(key); ok {
		h.Set("If-None-Match", tag)
	}
	return h
}

// dispatch performs the status triage shared by both unit kinds. It reports
// whether the caller should process the 200 body. Non-200/304 results and
// transport errors are logged and isolated to this one transfer.
func (r *Run) dispatch(key string, res *Result, t *Transfer) bool {
	switch {
	case res.Err != nil:
		r.Logger.Error("transfer failed", "key", key, "url", t.URL(), "err", res.Err)
		r.reportOutcome(key, OutcomeFailed)
		return false
	case res.Status == http.StatusNotModified:
		r.Logger.Debug("unchanged", "key", key, "url", t.URL())
		r.reportOutcome(key, OutcomeUnchanged)
		return false
	case res.Status != http.StatusOK:
		r.Logger.Error("transfer failed", "key", key, "url", t.URL(), "status", res.Status)
		r.reportOutcome(key, OutcomeFailed)
		return false
	}

	r.recordVersion(key, res.Header.Get("ETag"))
	r.reportOutcome(key, OutcomeFetched)
	return true
}

// writeFile writes body to dest, creating parent directories as needed.
func (r *Run) writeFile(key, dest string, body []byte) {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		r.Logger.Error("creating destination directory", "key", key, "dest", dest, "err", err)
		r.reportOutcome(key, OutcomeFailed)
		return
	}
	if err := os.WriteFile(dest, body, 0o644); err != nil {
		r.Logger.Error("writing destination file", "key", key, "dest", dest, "err", err)
		r.reportOutcome(key, OutcomeFailed)
		return
	}
	r.Logger.Info("wrote", "key", key, "dest", dest, "bytes", len(body))
}
