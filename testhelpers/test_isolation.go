package testhelpers

import (
	"testing"

	"go.uber.org/goleak"
)

// VerifyNoLeaks registers a goroutine leak check. Call it first in the
// test: cleanups run last-in first-out, so watchers stopped by later
// t.Cleanup calls are gone by the time it looks.
func VerifyNoLeaks(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		goleak.VerifyNone(t)
	})
}
