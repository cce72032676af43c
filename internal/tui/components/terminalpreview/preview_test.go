package terminalpreview

import (
	"sync/atomic"
	"testing"
	"time"
)

type countingAccessor struct {
	calls atomic.Int64
}

func (a *countingAccessor) Output(string) (string, error) {
	a.calls.Add(1)
	return "line", nil
}

func (a *countingAccessor) Running(string) (bool, error) { return true, nil }

func TestStartIsIdempotent(t *testing.T) {
	acc := &countingAccessor{}
	m := New("t1", "sleep 10", acc)

	if cmd := m.Start(); cmd == nil {
		t.Fatal("first Start returned nil cmd")
	}
	first := m.updates
	if cmd := m.Start(); cmd != nil {
		t.Fatal("second Start should be a no-op")
	}
	if m.updates != first {
		t.Fatal("second Start replaced the poller channel")
	}
	m.Stop()
}

func TestStopCancelsPoller(t *testing.T) {
	acc := &countingAccessor{}
	m := New("t1", "sleep 10", acc)
	cmd := m.Start()

	// Drain the first snapshot so the poller reaches its sleep.
	msg := cmd()
	snap, ok := msg.(SnapshotMsg)
	if !ok {
		t.Fatalf("got %T, want SnapshotMsg", msg)
	}
	if snap.Output != "line" || !snap.Running {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	m.Stop()

	next := m.Update(snap)
	if next == nil {
		t.Fatal("Update after snapshot should return a wait cmd")
	}
	done := make(chan struct{})
	go func() {
		msg := next()
		if _, ok := msg.(StoppedMsg); !ok {
			t.Errorf("got %T, want StoppedMsg", msg)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop after cancel")
	}
	m.Update(StoppedMsg{TerminalID: "t1"})
	if m.started {
		t.Fatal("preview still marked started after StoppedMsg")
	}
}
