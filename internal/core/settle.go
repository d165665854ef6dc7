package core

import (
	"errors"
	"io/fs"
	"os"
	"time"
)

const (
	settleInitialDelay = 10 * time.Millisecond
	settleMaxDelay     = 250 * time.Millisecond
)

// WaitGone polls path until it no longer exists or timeout elapses, backing
// off exponentially between checks. It reports whether the path is gone.
// Used after an external command removes something so the next size
// computation does not observe half-deleted metadata.
func WaitGone(path string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	delay := settleInitialDelay
	for {
		if _, err := os.Lstat(path); errors.Is(err, fs.ErrNotExist) {
			return true
		}
		if !time.Now().Before(deadline) {
			return false
		}
		time.Sleep(delay)
		delay *= 2
		if delay > settleMaxDelay {
			delay = settleMaxDelay
		}
	}
}
