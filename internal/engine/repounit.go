// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/vendfile/vendfile/internal/github"
)

type (
	// RepoUnit resolves a repository-path dependency. Whether the declared
	// path is a single file or a directory is unknown until the first
	// response: a raw payload is written straight to the destination, a
	// listing expands into one child transfer per file or directory entry,
	// recursively. The queue therefore grows while a run is in flight.
	RepoUnit struct {
		Owner string
		Repo  string
		Path  string // repository-relative path, "/"-separated
		Ref   string // optional; empty means the default branch
		Dest  string

		queue []repoTransfer
	}

	// repoTransfer pairs an outstanding transfer with the repository-relative
	// path it targets, which determines the local destination.
	repoTransfer struct {
		t    *Transfer
		path string
	}
)

// NewRepoUnit creates a repository-path unit. An empty dest defaults to
// vendor/<owner>/<repo>/<path>.
func NewRepoUnit(owner, repo, repoPath, ref, dest string) *RepoUnit {
	if dest == "" {
		dest = filepath.Join("vendor", owner, repo, filepath.FromSlash(repoPath))
	}
	return &RepoUnit{Owner: owner, Repo: repo, Path: repoPath, Ref: ref, Dest: dest}
}

// Key returns the namespaced identity combining owner, repository, and path.
func (u *RepoUnit) Key() string {
	return fmt.Sprintf("repo:%s/%s/%s", u.Owner, u.Repo, u.Path)
}

// Seed enqueues one transfer at the contents address for the declared path,
// conditional on any recorded tag.
func (u *RepoUnit) Seed(r *Run) {
	target := r.Repo.ContentsURL(u.Owner, u.Repo, u.Path, u.Ref)
	header := r.conditionalHeader(u.Key(), r.Repo.RequestHeader(target))
	u.queue = append(u.queue, repoTransfer{t: StartTransfer(r.Client, target, header), path: u.Path})
}

// Poll advances every outstanding transfer. Transfers spawned by directory
// expansion are collected in a side buffer and merged after the iteration,
// never appended to the slice being ranged.
func (u *RepoUnit) Poll(r *Run) bool {
	var spawned []repoTransfer

	remaining := u.queue[:0]
	for _, rt := range u.queue {
		res := rt.t.Poll()
		if res == nil {
			remaining = append(remaining, rt)
			continue
		}
		if r.dispatch(u.Key(), res, rt.t) {
			spawned = append(spawned, u.handleContents(r, rt, res)...)
		}
	}

	u.queue = append(remaining, spawned...)
	return len(u.queue) == 0
}

// handleContents processes one 200 response: raw payloads are written to the
// mapped destination, listings expand into child transfers. A listing that
// fails to decode abandons that branch only; sibling transfers proceed.
func (u *RepoUnit) handleContents(r *Run, rt repoTransfer, res *Result) []repoTransfer {
	if !github.IsListing(res.Header.Get("Content-Type")) {
		r.writeFile(u.Key(), u.destFor(rt.path), res.Body)
		return nil
	}

	entries, err := github.DecodeListing(res.Body)
	if err != nil {
		r.Logger.Error("expanding directory", "key", u.Key(), "path", rt.path, "err", err)
		r.reportOutcome(u.Key(), OutcomeFailed)
		return nil
	}

	var spawned []repoTransfer
	for _, e := range entries {
		if e.Type != github.EntryFile && e.Type != github.EntryDir {
			r.Logger.Debug("skipping entry", "key", u.Key(), "path", e.Path, "type", e.Type)
			continue
		}
		// Children are fetched unconditionally; only the seeded transfer
		// carries the recorded tag.
		spawned = append(spawned, repoTransfer{
			t:    StartTransfer(r.Client, e.URL, r.Repo.RequestHeader(e.URL)),
			path: e.Path,
		})
	}
	return spawned
}

// destFor maps a repository-relative path to its local destination: the
// declared path prefix is stripped and the remainder appended to the unit's
// destination.
func (u *RepoUnit) destFor(repoPath string) string {
	rel := strings.TrimPrefix(repoPath, u.Path)
	rel = strings.TrimPrefix(rel, "/")
	if rel == "" {
		return u.Dest
	}
	return filepath.Join(u.Dest, filepath.FromSlash(path.Clean(rel)))
}
