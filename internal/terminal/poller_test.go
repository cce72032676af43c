package terminal

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// scriptedAccessor replays a fixed sequence of observations, one per poll
// iteration. The last step repeats once the script runs out.
type scriptedAccessor struct {
	mu    sync.Mutex
	steps []step
	calls int
}

type step struct {
	output  string
	running bool
	err     error
}

func (a *scriptedAccessor) current() step {
	a.mu.Lock()
	defer a.mu.Unlock()
	i := a.calls
	if i >= len(a.steps) {
		i = len(a.steps) - 1
	}
	return a.steps[i]
}

func (a *scriptedAccessor) Output(string) (string, error) {
	s := a.current()
	if s.err != nil {
		return "", s.err
	}
	return s.output, nil
}

func (a *scriptedAccessor) Running(string) (bool, error) {
	s := a.current()
	a.mu.Lock()
	a.calls++ // Running is the second call of each iteration
	a.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	return s.running, nil
}

func (a *scriptedAccessor) iterations() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

func runPoller(t *testing.T, acc Accessor) []Update {
	t.Helper()
	p := &Poller{Accessor: acc, Interval: time.Millisecond}
	var updates []Update
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Run(context.Background(), "sess", func(u Update) {
			updates = append(updates, u)
		})
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("poller did not terminate")
	}
	return updates
}

func TestPollerEmitsOnlyOnChange(t *testing.T) {
	acc := &scriptedAccessor{steps: []step{
		{output: "a", running: true},
		{output: "a", running: true},
		{output: "a", running: true},
		{output: "ab", running: true},
		{output: "ab", running: false},
	}}
	updates := runPoller(t, acc)

	want := []Update{
		{ID: "sess", Output: "a", Running: true},
		{ID: "sess", Output: "ab", Running: true},
		{ID: "sess", Output: "ab", Running: false},
	}
	if len(updates) != len(want) {
		t.Fatalf("got %d updates, want %d: %+v", len(updates), len(want), updates)
	}
	for i := range want {
		if updates[i] != want[i] {
			t.Errorf("update %d = %+v, want %+v", i, updates[i], want[i])
		}
	}
}

func TestPollerStopsWhenExitedWithOutput(t *testing.T) {
	acc := &scriptedAccessor{steps: []step{
		{output: "done\n", running: false},
	}}
	runPoller(t, acc)

	// One look was enough: process gone, output captured.
	if n := acc.iterations(); n != 1 {
		t.Fatalf("poller ran %d iterations, want 1", n)
	}
}

func TestPollerExitGraceAccumulates(t *testing.T) {
	// Not-running readings accumulate even when interleaved with running
	// ones; the third silent exit reading ends the run.
	acc := &scriptedAccessor{steps: []step{
		{output: "", running: false},
		{output: "", running: true},
		{output: "", running: false},
		{output: "", running: true},
		{output: "", running: false},
		{output: "", running: true},
	}}
	runPoller(t, acc)

	if n := acc.iterations(); n != 5 {
		t.Fatalf("poller ran %d iterations, want 5", n)
	}
}

func TestPollerSkipsSnapshotMatchingBaseline(t *testing.T) {
	// A session that never produces output and is already gone matches the
	// empty/not-running baseline, so nothing is emitted at all.
	acc := &scriptedAccessor{steps: []step{
		{output: "", running: false},
	}}
	updates := runPoller(t, acc)

	if len(updates) != 0 {
		t.Fatalf("got %d updates, want none: %+v", len(updates), updates)
	}
	if n := acc.iterations(); n != 3 {
		t.Fatalf("poller ran %d iterations, want 3", n)
	}
}

func TestPollerSoftFailsOnAccessorError(t *testing.T) {
	boom := errors.New("gone")
	acc := &scriptedAccessor{steps: []step{
		{output: "x", running: true},
		{err: boom},
		{err: boom},
		{err: boom},
	}}
	updates := runPoller(t, acc)

	// Errors read as empty/not-running, so one transition is emitted and the
	// run ends via the exit grace counter, never surfacing the error.
	last := updates[len(updates)-1]
	if last.Output != "" || last.Running {
		t.Fatalf("last update = %+v, want empty not-running", last)
	}
	if n := acc.iterations(); n != 4 {
		t.Fatalf("poller ran %d iterations, want 4", n)
	}
}

func TestPollerCancellationStopsPolling(t *testing.T) {
	acc := &scriptedAccessor{steps: []step{
		{output: "", running: true},
	}}
	p := &Poller{Accessor: acc, Interval: time.Hour}

	ctx, cancel := context.WithCancel(context.Background())
	var mu sync.Mutex
	var updates []Update
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Run(ctx, "sess", func(u Update) {
			mu.Lock()
			updates = append(updates, u)
			mu.Unlock()
		})
	}()

	// Let the first iteration land, then cancel during the sleep.
	deadline := time.Now().Add(time.Second)
	for acc.iterations() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("first poll never happened")
		}
		time.Sleep(time.Millisecond)
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after cancel")
	}
	if n := acc.iterations(); n != 1 {
		t.Fatalf("accessor polled %d times after cancel, want 1", n)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(updates) != 1 {
		t.Fatalf("got %d updates, want 1", len(updates))
	}
}

func TestPollerIterationBudget(t *testing.T) {
	acc := &scriptedAccessor{steps: []step{
		{output: "spinning", running: true},
	}}
	runPoller(t, acc)

	if n := acc.iterations(); n != 60 {
		t.Fatalf("poller ran %d iterations, want 60", n)
	}
}

func TestTail(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"short", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"truncated", "hello world", 5, "world"},
		{"zero limit", "hello", 0, "hello"},
		{"multibyte", "héllo wörld", 4, "örld"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Tail(tc.in, tc.limit); got != tc.want {
				t.Errorf("Tail(%q, %d) = %q, want %q", tc.in, tc.limit, got, tc.want)
			}
		})
	}
}
