package terminal

import (
	"sync"
	"unicode/utf8"
)

// outputBuffer accumulates combined process output, keeping only the most
// recent max bytes once the process gets chatty. Late readers still see a
// coherent recent transcript, like a scrollback ring.
type outputBuffer struct {
	mu  sync.Mutex
	buf []byte
	max int
}

func newOutputBuffer(max int) *outputBuffer {
	return &outputBuffer{max: max}
}

func (b *outputBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.max; over > 0 {
		// Trim from the front on a rune boundary.
		cut := over
		for cut < len(b.buf) && !utf8.RuneStart(b.buf[cut]) {
			cut++
		}
		b.buf = append(b.buf[:0], b.buf[cut:]...)
	}
	return len(p), nil
}

func (b *outputBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}
