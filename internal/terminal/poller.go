package terminal

import (
	"context"
	"time"
)

const (
	maxPollIterations = 60
	pollInterval      = 500 * time.Millisecond

	// exitGraceIterations is how many not-running observations the poller
	// tolerates before giving up on a silent process. The count accumulates
	// across the whole run; a process that flaps back to running does not
	// reset it.
	exitGraceIterations = 3
)

// Poller watches one terminal session through an Accessor and reports
// snapshots to the caller whenever they change.
type Poller struct {
	Accessor Accessor

	// Interval overrides the delay between polls. Zero means the default
	// half-second cadence; tests shrink it.
	Interval time.Duration
}

// Run polls the session until it settles, the iteration budget runs out, or
// ctx is canceled. Cancellation during the inter-poll sleep returns without
// touching the accessor or emitting again.
func (p *Poller) Run(ctx context.Context, id string, emit func(Update)) {
	interval := p.Interval
	if interval <= 0 {
		interval = pollInterval
	}

	// The baseline is an empty, not-running snapshot; a first observation
	// that matches it is not worth reporting.
	var (
		lastOutput  string
		lastRunning bool
		exited      int
	)

	for i := 0; i < maxPollIterations; i++ {
		if ctx.Err() != nil {
			return
		}

		output, err := p.Accessor.Output(id)
		if err != nil {
			output = ""
		}
		running, err := p.Accessor.Running(id)
		if err != nil {
			running = false
		}

		if output != lastOutput || running != lastRunning {
			emit(Update{ID: id, Output: output, Running: running})
			lastOutput, lastRunning = output, running
		}

		if !running {
			exited++
			if exited >= exitGraceIterations || output != "" {
				return
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
	}
}
