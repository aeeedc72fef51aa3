// SPDX-License-Identifier: MPL-2.0

// Package engine implements the cooperative fetch engine: pollable HTTP
// transfers, the two dependency unit kinds, the version table persisted in a
// Vendfile's lock section, and the scheduler that drives a run to completion.
package engine

import (
	"io"
	"net/http"
)

// maxResponseBytes is the upper bound on any single response body (50 MB).
// Prevents unbounded memory consumption from malicious or malformed responses.
const maxResponseBytes = 50 << 20

type (
	// Result is the outcome of a completed Transfer. When the request failed
	// at the transport layer (dial, TLS, connection reset) Status is zero and
	// Err carries the cause; otherwise Status/Header/Body reflect the response.
	Result struct {
		Status int
		Header http.Header
		Body   []byte
		Err    error
	}

	// Transfer is one outstanding HTTP GET. The request is issued on its own
	// goroutine the moment the Transfer is created; the engine observes
	// completion by polling. A Transfer delivers its Result exactly once.
	Transfer struct {
		url    string
		done   chan *Result
		polled bool
	}
)

// StartTransfer issues a GET for url with the given headers and returns
// immediately. The background goroutine deposits the Result in a buffered
// channel and exits whether or not anyone ever polls.
func StartTransfer(client *http.Client, url string, header http.Header) *Transfer {
	t := &Transfer{
		url:  url,
		done: make(chan *Result, 1),
	}

	go func() {
		t.done <- execute(client, url, header)
	}()

	return t
}

// URL returns the request target.
func (t *Transfer) URL() string { return t.url }

// Poll returns nil while the request is in flight, the Result exactly once
// when it has completed, and nil again on every call after that.
func (t *Transfer) Poll() *Result {
	if t.polled {
		return nil
	}

	select {
	case res := <-t.done:
		t.polled = true
		return res
	default:
		return nil
	}
}

// execute performs the blocking request on the transfer goroutine.
func execute(client *http.Client, url string, header http.Header) *Result {
	req, err := http.NewRequest(http.MethodGet, url, http.NoBody)
	if err != nil {
		return &Result{Err: err}
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return &Result{Err: err}
	}
	defer func() { _ = resp.Body.Close() }() // read-only response body

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &Result{Status: resp.StatusCode, Header: resp.Header, Err: err}
	}

	return &Result{Status: resp.StatusCode, Header: resp.Header, Body: body}
}
