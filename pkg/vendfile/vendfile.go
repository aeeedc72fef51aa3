// SPDX-License-Identifier: MPL-2.0

// Package vendfile reads and writes the Vendfile manifest: a TOML declaration
// section listing remote file dependencies, a sentinel line, and a lock
// section pinning the remote version last fetched for each of them.
package vendfile

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/vendfile/vendfile/internal/engine"
)

const (
	// DefaultName is the manifest filename looked up in the working directory.
	DefaultName = "Vendfile"

	// LockSentinel separates the declaration section from the lock section.
	// It parses as a TOML comment, so editors treat the whole file as TOML.
	LockSentinel = "# --- lock ---"
)

// ErrInvalidManifest is wrapped by every declaration-section validation
// failure: TOML errors, unknown fields, missing required fields, duplicates.
var ErrInvalidManifest = errors.New("invalid Vendfile")

type (
	// URLDecl declares a direct-URL dependency.
	URLDecl struct {
		Source string `toml:"source"`
		Dest   string `toml:"dest"`
	}

	// RepoDecl declares a repository-path dependency. Ref and Dest are
	// optional; an empty Dest defaults to vendor/<owner>/<repo>/<path>.
	RepoDecl struct {
		Owner string `toml:"owner"`
		Repo  string `toml:"repo"`
		Path  string `toml:"path"`
		Ref   string `toml:"ref,omitempty"`
		Dest  string `toml:"dest,omitempty"`
	}

	// declarations is the TOML wire shape of the declaration section.
	declarations struct {
		URLs  []URLDecl  `toml:"url"`
		Repos []RepoDecl `toml:"github"`
	}

	// File is one loaded Vendfile. Decl preserves the declaration text
	// byte-for-byte so saving never reformats what the user wrote.
	File struct {
		Path  string
		Decl  string
		URLs  []URLDecl
		Repos []RepoDecl
		Lock  *engine.VersionTable
	}
)

// Load reads and parses the manifest at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	f, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	f.Path = path
	return f, nil
}

// Parse splits text at the first sentinel line, strict-decodes the
// declaration section, and parses the lock section. A manifest without a
// sentinel has an empty lock table.
func Parse(text string) (*File, error) {
	decl, lockText := splitSections(text)

	var decls declarations
	dec := toml.NewDecoder(strings.NewReader(decl))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&decls); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}

	f := &File{
		Decl:  decl,
		URLs:  decls.URLs,
		Repos: decls.Repos,
	}
	if err := f.validate(); err != nil {
		return nil, err
	}

	lock, err := engine.ParseVersionTable(lockText)
	if err != nil {
		return nil, err
	}
	f.Lock = lock

	return f, nil
}

// Units builds the engine units for every declaration, in declaration order.
func (f *File) Units() []engine.Unit {
	units := make([]engine.Unit, 0, len(f.URLs)+len(f.Repos))
	for _, d := range f.URLs {
		units = append(units, engine.NewURLUnit(d.Source, d.Dest))
	}
	for _, d := range f.Repos {
		units = append(units, engine.NewRepoUnit(d.Owner, d.Repo, d.Path, d.Ref, d.Dest))
	}
	return units
}

// Render produces the full manifest text: the declaration section unchanged,
// the sentinel, then the lock section in sorted key order.
func (f *File) Render() string {
	var sb strings.Builder
	sb.WriteString(f.Decl)
	if f.Decl != "" && !strings.HasSuffix(f.Decl, "\n") {
		sb.WriteByte('\n')
	}
	sb.WriteString(LockSentinel)
	sb.WriteByte('\n')
	if f.Lock != nil {
		sb.WriteString(f.Lock.Serialize())
	}
	return sb.String()
}

// Save writes the manifest back to f.Path atomically (temp file + rename).
func (f *File) Save() error {
	tmpPath := f.Path + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(f.Render()), 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}

	if err := os.Rename(tmpPath, f.Path); err != nil {
		_ = os.Remove(tmpPath) // Best-effort cleanup of temp file
		return fmt.Errorf("replacing manifest: %w", err)
	}

	return nil
}

// validate enforces required fields and key uniqueness.
func (f *File) validate() error {
	seen := make(map[string]struct{})
	record := func(key string) error {
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: duplicate dependency %q", ErrInvalidManifest, key)
		}
		seen[key] = struct{}{}
		return nil
	}

	for i, d := range f.URLs {
		if d.Source == "" || d.Dest == "" {
			return fmt.Errorf("%w: [[url]] #%d needs both source and dest", ErrInvalidManifest, i+1)
		}
		if err := record(engine.NewURLUnit(d.Source, d.Dest).Key()); err != nil {
			return err
		}
	}
	for i, d := range f.Repos {
		if d.Owner == "" || d.Repo == "" || d.Path == "" {
			return fmt.Errorf("%w: [[github]] #%d needs owner, repo, and path", ErrInvalidManifest, i+1)
		}
		if err := record(engine.NewRepoUnit(d.Owner, d.Repo, d.Path, d.Ref, d.Dest).Key()); err != nil {
			return err
		}
	}
	return nil
}

// splitSections cuts text at the first line equal to the sentinel. The
// declaration text keeps its bytes untouched; the remainder after the
// sentinel line is the lock text.
func splitSections(text string) (decl, lock string) {
	offset := 0
	rest := text
	for {
		line := rest
		next := -1
		if i := strings.IndexByte(rest, '\n'); i >= 0 {
			line = rest[:i]
			next = i + 1
		}

		if strings.TrimRight(line, "\r") == LockSentinel {
			if next < 0 {
				return text[:offset], ""
			}
			return text[:offset], rest[next:]
		}

		if next < 0 {
			return text, ""
		}
		offset += next
		rest = rest[next:]
	}
}
