// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"testing"

	"go.uber.org/goleak"
)

// Every transfer runs on its own goroutine; this proves they all terminate
// whether or not their result is ever polled.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
