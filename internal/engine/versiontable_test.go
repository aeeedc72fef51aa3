// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"errors"
	"testing"
)

func TestParseVersionTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		text    string
		want    map[string]string
		wantErr bool
	}{
		{
			name: "entries with comments and blanks",
			text: "# pinned versions\n\nhttps://example.com/a.txt\t\"v1\"\n\nrepo:o/r/lib\t\"v2\"\n",
			want: map[string]string{
				"https://example.com/a.txt": `"v1"`,
				"repo:o/r/lib":              `"v2"`,
			},
		},
		{
			name: "empty text",
			text: "",
			want: map[string]string{},
		},
		{
			name: "only comments",
			text: "# nothing here\n#\n",
			want: map[string]string{},
		},
		{
			name:    "line without separator",
			text:    "https://example.com/a.txt v1\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			vt, err := ParseVersionTable(tt.text)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedLock) {
					t.Fatalf("error: got %v, want ErrMalformedLock", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if vt.Len() != len(tt.want) {
				t.Fatalf("entries: got %d, want %d", vt.Len(), len(tt.want))
			}
			for k, want := range tt.want {
				if got, ok := vt.Get(k); !ok || got != want {
					t.Errorf("entry %q: got %q (present=%v), want %q", k, got, ok, want)
				}
			}
		})
	}
}

func TestVersionTable_SerializeRoundTrip(t *testing.T) {
	t.Parallel()

	text := "b\t2\na\t1\nc\t3\n"
	vt, err := ParseVersionTable(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Sorted by key, deterministic.
	want := "a\t1\nb\t2\nc\t3\n"
	if got := vt.Serialize(); got != want {
		t.Errorf("serialize: got %q, want %q", got, want)
	}

	// A second load/serialize cycle reproduces the same text.
	vt2, err := ParseVersionTable(vt.Serialize())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := vt2.Serialize(); got != want {
		t.Errorf("round trip: got %q, want %q", got, want)
	}
}

func TestVersionTable_FilterTo(t *testing.T) {
	t.Parallel()

	vt := NewVersionTable()
	vt.Set("keep", "v1")
	vt.Set("stale", "v2")

	live := map[string]struct{}{"keep": {}, "never-fetched": {}}
	if !vt.FilterTo(live) {
		t.Error("expected dirty after pruning a stale entry")
	}
	if _, ok := vt.Get("stale"); ok {
		t.Error("stale entry survived the filter")
	}
	if _, ok := vt.Get("keep"); !ok {
		t.Error("live entry was dropped")
	}

	// Nothing left to prune.
	if vt.FilterTo(live) {
		t.Error("expected clean filter to report no change")
	}
}

func TestVersionTable_Invalidate(t *testing.T) {
	t.Parallel()

	vt := NewVersionTable()
	vt.Set("a", "v1")
	vt.Set("b", "v2")

	vt.Invalidate([]string{"a", "missing"})
	if _, ok := vt.Get("a"); ok {
		t.Error("invalidated entry survived")
	}
	if _, ok := vt.Get("b"); !ok {
		t.Error("sibling entry was dropped")
	}

	vt.InvalidateAll()
	if vt.Len() != 0 {
		t.Errorf("entries after InvalidateAll: got %d, want 0", vt.Len())
	}
}
