package terminal

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"sync"

	"github.com/google/uuid"

	"tandem/internal/csync"
)

// maxSessionBytes bounds how much output a session retains.
const maxSessionBytes = 256 * 1024

type session struct {
	id      string
	command string
	cmd     *exec.Cmd
	buf     *outputBuffer
	done    chan struct{}

	mu      sync.Mutex
	waitErr error
}

func (s *session) running() bool {
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

// Manager owns the background terminal sessions launched by the agent's
// run_terminal tool. It implements Accessor for the output poller.
type Manager struct {
	sessions *csync.Map[string, *session]
}

func NewManager() *Manager {
	return &Manager{sessions: csync.NewMap[string, *session]()}
}

// Launch starts command under the platform shell and returns the session id.
// The process keeps running after Launch returns; output accumulates in a
// bounded buffer until Kill or Shutdown. The session outlives ctx: canceling
// the caller's context (the agent turn ending) must not take the process
// down, so only values are carried over.
func (m *Manager) Launch(ctx context.Context, command string) (string, error) {
	shell, flag := "/bin/sh", "-c"
	if runtime.GOOS == "windows" {
		shell, flag = "cmd", "/c"
	}

	s := &session{
		id:      uuid.NewString(),
		command: command,
		buf:     newOutputBuffer(maxSessionBytes),
		done:    make(chan struct{}),
	}
	cmd := exec.CommandContext(context.WithoutCancel(ctx), shell, flag, command)
	cmd.Stdout = s.buf
	cmd.Stderr = s.buf
	s.cmd = cmd

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("launch %q: %w", command, err)
	}

	m.sessions.Set(s.id, s)
	go func() {
		err := cmd.Wait()
		s.mu.Lock()
		s.waitErr = err
		s.mu.Unlock()
		close(s.done)
	}()

	return s.id, nil
}

// Has reports whether id maps to a known session.
func (m *Manager) Has(id string) bool {
	_, ok := m.sessions.Get(id)
	return ok
}

// Output returns everything the session has printed so far.
func (m *Manager) Output(id string) (string, error) {
	s, ok := m.sessions.Get(id)
	if !ok {
		return "", ErrNoSession
	}
	return s.buf.String(), nil
}

// Running reports whether the session's process is still alive.
func (m *Manager) Running(id string) (bool, error) {
	s, ok := m.sessions.Get(id)
	if !ok {
		return false, ErrNoSession
	}
	return s.running(), nil
}

// Command returns the shell command a session was launched with.
func (m *Manager) Command(id string) (string, error) {
	s, ok := m.sessions.Get(id)
	if !ok {
		return "", ErrNoSession
	}
	return s.command, nil
}

// Kill terminates a session's process and forgets the session.
func (m *Manager) Kill(id string) error {
	s, ok := m.sessions.Take(id)
	if !ok {
		return ErrNoSession
	}
	if s.running() && s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	<-s.done
	return nil
}

// Shutdown kills every live session. Called on app exit.
func (m *Manager) Shutdown() {
	for _, id := range m.sessions.Keys() {
		_ = m.Kill(id)
	}
}
