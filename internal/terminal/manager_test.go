package terminal

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestManagerLaunchAndOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell test")
	}
	m := NewManager()
	defer m.Shutdown()

	id, err := m.Launch(context.Background(), "echo hello")
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}
	if !m.Has(id) {
		t.Fatal("Has returned false for a launched session")
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		running, err := m.Running(id)
		if err != nil {
			t.Fatalf("Running: %v", err)
		}
		if !running {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("echo never finished")
		}
		time.Sleep(10 * time.Millisecond)
	}

	out, err := m.Output(id)
	if err != nil {
		t.Fatalf("Output: %v", err)
	}
	if !strings.Contains(out, "hello") {
		t.Fatalf("output = %q, want it to contain hello", out)
	}
}

func TestManagerUnknownSession(t *testing.T) {
	m := NewManager()
	if _, err := m.Output("nope"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("Output err = %v, want ErrNoSession", err)
	}
	if _, err := m.Running("nope"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("Running err = %v, want ErrNoSession", err)
	}
	if err := m.Kill("nope"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("Kill err = %v, want ErrNoSession", err)
	}
}

func TestManagerSessionOutlivesLaunchContext(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell test")
	}
	m := NewManager()
	defer m.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	id, err := m.Launch(ctx, "sleep 30")
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}

	// The turn ends while the session is still going.
	cancel()
	time.Sleep(100 * time.Millisecond)

	running, err := m.Running(id)
	if err != nil {
		t.Fatalf("Running: %v", err)
	}
	if !running {
		t.Fatal("session died when the launch context was canceled")
	}
	if err := m.Kill(id); err != nil {
		t.Fatalf("Kill: %v", err)
	}
}

func TestManagerKill(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell test")
	}
	m := NewManager()
	id, err := m.Launch(context.Background(), "sleep 30")
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}
	if err := m.Kill(id); err != nil {
		t.Fatalf("Kill: %v", err)
	}
	if m.Has(id) {
		t.Fatal("session still registered after Kill")
	}
}

func TestOutputBufferBounded(t *testing.T) {
	b := newOutputBuffer(16)
	for i := 0; i < 10; i++ {
		b.Write([]byte("0123456789"))
	}
	got := b.String()
	if len(got) > 16 {
		t.Fatalf("buffer holds %d bytes, cap is 16", len(got))
	}
	if !strings.HasSuffix(got, "0123456789") {
		t.Fatalf("buffer lost the newest output: %q", got)
	}
}
