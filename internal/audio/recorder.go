// Package audio captures voice input by shelling out to whichever capture
// program the machine has.
package audio

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"
)

// ErrNoRecorder means no capture program was found on PATH.
var ErrNoRecorder = errors.New("audio: no capture program found (tried sox, arecord, ffmpeg)")

// ErrNotRecording is returned by Stop and Cancel when nothing is running.
var ErrNotRecording = errors.New("audio: not recording")

// Recorder runs one capture process at a time and hands back the recorded
// file on Stop.
type Recorder struct {
	// Command overrides autodetection with an explicit capture program. It
	// is invoked as "Command <output.wav>".
	Command string

	mu   sync.Mutex
	cmd  *exec.Cmd
	path string
}

func captureArgs(program, out string) []string {
	switch filepath.Base(program) {
	case "sox", "rec":
		return []string{"-d", out}
	case "arecord":
		return []string{"-f", "cd", out}
	case "ffmpeg":
		return []string{"-f", "pulse", "-i", "default", out}
	default:
		return []string{out}
	}
}

func (r *Recorder) findProgram() (string, error) {
	if r.Command != "" {
		return r.Command, nil
	}
	for _, candidate := range []string{"sox", "rec", "arecord", "ffmpeg"} {
		if path, err := exec.LookPath(candidate); err == nil {
			return path, nil
		}
	}
	return "", ErrNoRecorder
}

// Recording reports whether a capture process is running.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cmd != nil
}

// Start launches the capture process. On error the caller must roll back
// any recording state it set optimistically.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cmd != nil {
		return errors.New("audio: already recording")
	}

	program, err := r.findProgram()
	if err != nil {
		return err
	}

	out := filepath.Join(os.TempDir(), fmt.Sprintf("tandem-voice-%d.wav", time.Now().UnixNano()))
	cmd := exec.Command(program, captureArgs(program, out)...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", program, err)
	}

	r.cmd = cmd
	r.path = out
	return nil
}

// Stop ends the capture and returns the recorded file path.
func (r *Recorder) Stop() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cmd == nil {
		return "", ErrNotRecording
	}
	path := r.path
	r.finish()

	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("recording produced no file: %w", err)
	}
	return path, nil
}

// Cancel ends the capture and discards the file.
func (r *Recorder) Cancel() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cmd == nil {
		return ErrNotRecording
	}
	path := r.path
	r.finish()
	os.Remove(path)
	return nil
}

// finish kills the process and clears state. Callers hold the mutex.
func (r *Recorder) finish() {
	if r.cmd.Process != nil {
		_ = r.cmd.Process.Signal(os.Interrupt)
		done := make(chan struct{})
		go func(c *exec.Cmd) {
			c.Wait()
			close(done)
		}(r.cmd)
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			_ = r.cmd.Process.Kill()
		}
	}
	r.cmd = nil
	r.path = ""
}
