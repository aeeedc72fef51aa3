// SPDX-License-Identifier: MPL-2.0

// Package github addresses the repository contents endpoint the engine
// fetches repository-path dependencies from. The engine issues the HTTP
// requests itself; this package builds the URLs and header sets and decodes
// directory listings.
package github

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strings"
)

// maxListingBytes is the upper bound on a decoded directory listing (10 MB).
// Prevents unbounded memory consumption from malicious or malformed responses.
const maxListingBytes = 10 << 20

// Entry types a listing can report. Anything else (symlinks, submodules) is
// skipped by the engine.
const (
	EntryFile = "file"
	EntryDir  = "dir"
)

// ErrUnexpectedShape is wrapped when a response that should be a directory
// listing does not decode as a JSON array of entries.
var ErrUnexpectedShape = errors.New("unexpected contents response shape")

type (
	// Entry is one element of a directory listing: its kind, its
	// repository-relative path, and the contents URL to fetch it from.
	Entry struct {
		Type string `json:"type"`
		Path string `json:"path"`
		URL  string `json:"url"`
	}

	// Client addresses a GitHub-style contents API.
	Client struct {
		baseURL   string // API base URL (default: "https://api.github.com", overridable for tests)
		token     string // Optional token for authenticated requests
		userAgent string // User-Agent header value
	}

	// ClientOption configures a Client during construction.
	ClientOption func(*Client)
)

// WithBaseURL overrides the API base URL, primarily for test servers.
func WithBaseURL(base string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(base, "/")
	}
}

// WithToken sets a personal access token for authenticated requests.
// Authenticated requests have a higher rate limit (5000/hour vs 60/hour).
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a Client with sensible defaults.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:   "https://api.github.com",
		userAgent: "vendfile/dev",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ContentsURL builds the contents address for a repository path. An empty ref
// omits the query parameter, leaving the repository's default branch.
func (c *Client) ContentsURL(owner, repo, path, ref string) string {
	u := fmt.Sprintf("%s/repos/%s/%s/contents/%s", c.baseURL, owner, repo, escapePath(path))
	if ref != "" {
		u += "?ref=" + url.QueryEscape(ref)
	}
	return u
}

// RequestHeader returns the header set for a contents request. The raw media
// type makes the API answer with exact file bytes for files and a JSON array
// for directories, which is precisely the dispatch the engine performs.
//
// The auth token is only attached when the request targets the configured API
// host, so it cannot leak if a listing entry's URL points elsewhere.
func (c *Client) RequestHeader(targetURL string) http.Header {
	h := make(http.Header)
	h.Set("Accept", "application/vnd.github.raw+json")
	h.Set("X-GitHub-Api-Version", "2022-11-28")
	h.Set("User-Agent", c.userAgent)

	if c.token != "" && c.isAPIHost(targetURL) {
		h.Set("Authorization", "Bearer "+c.token)
	}
	return h
}

// IsListing reports whether a contents response carries a directory listing
// rather than raw file bytes, judged by its Content-Type.
func IsListing(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// DecodeListing decodes a directory listing body. A JSON payload that is not
// an array of entries is reported as ErrUnexpectedShape.
func DecodeListing(body []byte) ([]Entry, error) {
	if len(body) > maxListingBytes {
		return nil, fmt.Errorf("%w: listing exceeds %d bytes", ErrUnexpectedShape, maxListingBytes)
	}

	var entries []Entry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
	}
	return entries, nil
}

// isAPIHost reports whether targetURL points at the configured API host.
func (c *Client) isAPIHost(targetURL string) bool {
	target, err := url.Parse(targetURL)
	if err != nil {
		return false
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(target.Host, base.Host)
}

// escapePath escapes each path segment while preserving the separators.
func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
