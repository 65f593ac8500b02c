//go:build !windows

package instance

import "testing"

func TestAcquireAndRelease(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	release, err := Acquire()
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	release()

	release, err = Acquire()
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	release()
}

func TestAcquireIdempotentWithinProcess(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	release, err := Acquire()
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer release()

	// flock is per file description, so a second open in the same process
	// still conflicts.
	if _, err := Acquire(); err != ErrAlreadyRunning {
		t.Fatalf("second acquire: got %v, want ErrAlreadyRunning", err)
	}
}
