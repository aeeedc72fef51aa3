// SPDX-License-Identifier: MPL-2.0

package diag

import (
	"errors"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	cause := errors.New("no such file")
	err := NewErrorContext().
		WithOperation("load Vendfile").
		WithResource("./Vendfile").
		Wrap(cause).
		BuildError()

	want := "failed to load Vendfile: ./Vendfile: no such file"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}

	if !errors.Is(err, cause) {
		t.Error("cause not reachable through errors.Is")
	}
}

func TestActionableError_FormatSuggestions(t *testing.T) {
	t.Parallel()

	ae := NewErrorContext().
		WithOperation("select upgrade targets").
		WithSuggestion("Run 'vendfile status' to list the declared dependency keys").
		Build()

	got := ae.Format(false)
	if !strings.Contains(got, "failed to select upgrade targets") {
		t.Errorf("missing message: %q", got)
	}
	if !strings.Contains(got, "vendfile status") {
		t.Errorf("missing suggestion: %q", got)
	}
}

func TestActionableError_FormatVerboseChain(t *testing.T) {
	t.Parallel()

	inner := errors.New("dial tcp: refused")
	ae := NewErrorContext().
		WithOperation("load configuration").
		Wrap(inner).
		Build()

	if got := ae.Format(true); !strings.Contains(got, "Error chain:") {
		t.Errorf("verbose format missing chain: %q", got)
	}
	if got := ae.Format(false); strings.Contains(got, "Error chain:") {
		t.Errorf("non-verbose format shows chain: %q", got)
	}
}
