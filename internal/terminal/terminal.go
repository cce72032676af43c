// Package terminal runs background shell processes and exposes their output
// to the UI through a polling accessor.
package terminal

import "errors"

// ErrNoSession is returned when an id does not map to a live session.
var ErrNoSession = errors.New("terminal: no such session")

// Accessor reads the current state of a terminal session. Implementations
// must be safe for concurrent use.
type Accessor interface {
	Output(id string) (string, error)
	Running(id string) (bool, error)
}

// Update is one observed snapshot of a session.
type Update struct {
	ID      string
	Output  string
	Running bool
}
