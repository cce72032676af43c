package audio

import (
	"errors"
	"os"
	"runtime"
	"testing"
)

func TestStartFailureLeavesRecorderIdle(t *testing.T) {
	r := &Recorder{Command: "/definitely/not/a/recorder"}
	if err := r.Start(); err == nil {
		t.Fatal("Start with a bogus command succeeded")
	}
	if r.Recording() {
		t.Fatal("recorder claims to be recording after failed start")
	}
	if _, err := r.Stop(); !errors.Is(err, ErrNotRecording) {
		t.Fatalf("Stop after failed start = %v, want ErrNotRecording", err)
	}
}

func TestStopReturnsCapturedFile(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix tools")
	}
	// "touch" stands in for a capture program: it writes the output file
	// and exits.
	r := &Recorder{Command: "touch"}
	if err := r.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !r.Recording() {
		t.Fatal("Recording = false after Start")
	}

	path, err := r.Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	defer os.Remove(path)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("captured file missing: %v", err)
	}
	if r.Recording() {
		t.Fatal("still recording after Stop")
	}
}

func TestCancelDiscardsFile(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix tools")
	}
	r := &Recorder{Command: "touch"}
	if err := r.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	path := r.path
	if err := r.Cancel(); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("canceled recording left a file at %s", path)
	}
}
