// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// pollUntil polls t until it yields a result or the deadline passes.
func pollUntil(t *testing.T, tr *Transfer) *Result {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if res := tr.Poll(); res != nil {
			return res
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("transfer never completed")
	return nil
}

func TestTransfer_DeliversResultExactlyOnce(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", `"v1"`)
		_, _ = w.Write([]byte("hello"))
	}))
	defer srv.Close()

	tr := StartTransfer(srv.Client(), srv.URL, nil)

	res := pollUntil(t, tr)
	if res.Status != http.StatusOK {
		t.Errorf("status: got %d, want 200", res.Status)
	}
	if string(res.Body) != "hello" {
		t.Errorf("body: got %q, want %q", res.Body, "hello")
	}
	if got := res.Header.Get("ETag"); got != `"v1"` {
		t.Errorf("etag: got %q, want %q", got, `"v1"`)
	}

	// Completion must not be redelivered.
	for i := 0; i < 3; i++ {
		if again := tr.Poll(); again != nil {
			t.Fatalf("poll %d after completion: got %+v, want nil", i, again)
		}
	}
}

func TestTransfer_PendingWhileServerStalls(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = w.Write([]byte("late"))
	}))
	defer srv.Close()

	tr := StartTransfer(srv.Client(), srv.URL, nil)

	if res := tr.Poll(); res != nil {
		t.Fatalf("poll before completion: got %+v, want nil", res)
	}

	close(release)
	res := pollUntil(t, tr)
	if string(res.Body) != "late" {
		t.Errorf("body: got %q, want %q", res.Body, "late")
	}
}

func TestTransfer_SendsRequestHeaders(t *testing.T) {
	t.Parallel()

	var gotINM string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotINM = r.Header.Get("If-None-Match")
		w.WriteHeader(http.StatusNotModified)
	}))
	defer srv.Close()

	header := make(http.Header)
	header.Set("If-None-Match", `"v7"`)

	tr := StartTransfer(srv.Client(), srv.URL, header)
	res := pollUntil(t, tr)

	if res.Status != http.StatusNotModified {
		t.Errorf("status: got %d, want 304", res.Status)
	}
	if gotINM != `"v7"` {
		t.Errorf("If-None-Match: got %q, want %q", gotINM, `"v7"`)
	}
}

func TestTransfer_TransportErrorHasNoStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // deliberately unreachable

	tr := StartTransfer(http.DefaultClient, srv.URL, nil)
	res := pollUntil(t, tr)

	if res.Err == nil {
		t.Fatal("expected a transport error")
	}
	if res.Status != 0 {
		t.Errorf("status: got %d, want 0", res.Status)
	}
}

func TestTransfer_GoroutineExitsUnpolled(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ignored"))
	}))
	defer srv.Close()

	// Never polled; TestMain's leak check proves the goroutine still exits.
	_ = StartTransfer(srv.Client(), srv.URL, nil)
	time.Sleep(50 * time.Millisecond)
}
