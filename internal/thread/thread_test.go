package thread

import (
	"runtime"
	"testing"
)

func TestCurrentStableOnLockedThread(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	a, b := Current(), Current()
	if a != b {
		t.Fatalf("Current changed on a locked thread: %d vs %d", a, b)
	}
	if a == 0 {
		t.Fatal("Current returned zero")
	}
}

func TestCurrentDiffersAcrossThreads(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	mine := Current()

	done := make(chan ID)
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		done <- Current()
	}()
	if other := <-done; other == mine {
		t.Fatalf("two locked goroutines reported the same thread %d", mine)
	}
}
