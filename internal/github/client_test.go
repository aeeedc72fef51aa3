// SPDX-License-Identifier: MPL-2.0

package github

import (
	"errors"
	"testing"
)

func TestContentsURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		owner string
		repo  string
		path  string
		ref   string
		want  string
	}{
		{
			name:  "without ref",
			owner: "o", repo: "r", path: "lib/x.rb",
			want: "https://api.github.com/repos/o/r/contents/lib/x.rb",
		},
		{
			name:  "with ref",
			owner: "o", repo: "r", path: "lib", ref: "main",
			want: "https://api.github.com/repos/o/r/contents/lib?ref=main",
		},
		{
			name:  "path segment needing escaping",
			owner: "o", repo: "r", path: "a dir/x.rb",
			want: "https://api.github.com/repos/o/r/contents/a%20dir/x.rb",
		},
	}

	c := NewClient()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := c.ContentsURL(tt.owner, tt.repo, tt.path, tt.ref); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestContentsURL_BaseOverride(t *testing.T) {
	t.Parallel()

	c := NewClient(WithBaseURL("http://127.0.0.1:9999/"))
	want := "http://127.0.0.1:9999/repos/o/r/contents/x"
	if got := c.ContentsURL("o", "r", "x", ""); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRequestHeader_TokenGatedByHost(t *testing.T) {
	t.Parallel()

	c := NewClient(WithBaseURL("http://127.0.0.1:9999"), WithToken("secret"), WithUserAgent("vendfile/test"))

	h := c.RequestHeader("http://127.0.0.1:9999/repos/o/r/contents/x")
	if got := h.Get("Authorization"); got != "Bearer secret" {
		t.Errorf("Authorization on API host: got %q", got)
	}
	if got := h.Get("Accept"); got != "application/vnd.github.raw+json" {
		t.Errorf("Accept: got %q", got)
	}
	if got := h.Get("User-Agent"); got != "vendfile/test" {
		t.Errorf("User-Agent: got %q", got)
	}

	// A listing entry pointing at a third-party host must not carry the token.
	h = c.RequestHeader("https://cdn.example.com/some/file")
	if got := h.Get("Authorization"); got != "" {
		t.Errorf("Authorization leaked to foreign host: %q", got)
	}
}

func TestIsListing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		contentType string
		want        bool
	}{
		{"application/json; charset=utf-8", true},
		{"application/json", true},
		{"application/vnd.github.raw+json", true},
		{"text/plain; charset=utf-8", false},
		{"application/octet-stream", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsListing(tt.contentType); got != tt.want {
			t.Errorf("IsListing(%q): got %v, want %v", tt.contentType, got, tt.want)
		}
	}
}

func TestDecodeListing(t *testing.T) {
	t.Parallel()

	body := `[
		{"type": "file", "path": "lib/x.rb", "url": "https://api.github.com/repos/o/r/contents/lib/x.rb"},
		{"type": "dir", "path": "lib/sub", "url": "https://api.github.com/repos/o/r/contents/lib/sub"},
		{"type": "symlink", "path": "lib/link", "url": "https://api.github.com/repos/o/r/contents/lib/link"}
	]`

	entries, err := DecodeListing([]byte(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries: got %d, want 3", len(entries))
	}
	if entries[0].Type != EntryFile || entries[0].Path != "lib/x.rb" {
		t.Errorf("entry 0: got %+v", entries[0])
	}
	if entries[1].Type != EntryDir {
		t.Errorf("entry 1: got %+v", entries[1])
	}
}

func TestDecodeListing_NotAnArray(t *testing.T) {
	t.Parallel()

	_, err := DecodeListing([]byte(`{"message": "single object"}`))
	if !errors.Is(err, ErrUnexpectedShape) {
		t.Errorf("got %v, want ErrUnexpectedShape", err)
	}
}
