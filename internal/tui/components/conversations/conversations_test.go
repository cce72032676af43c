package conversations

import (
	"fmt"
	"testing"

	"tandem/internal/conversation"
)

func makeConvs(n int) []conversation.Conversation {
	out := make([]conversation.Conversation, n)
	for i := range out {
		out[i] = conversation.Conversation{ID: fmt.Sprintf("c%d", i), Title: fmt.Sprintf("conv %d", i)}
	}
	return out
}

func TestWindowFollowsSelection(t *testing.T) {
	m := New(makeConvs(40), "c0")
	m.width, m.height = 100, 30
	size := m.windowSize()

	for i := 0; i < 39; i++ {
		m.selected++
		m.clampWindow()
		if m.selected < m.windowTop || m.selected >= m.windowTop+size {
			t.Fatalf("selection %d fell outside window [%d,%d)", m.selected, m.windowTop, m.windowTop+size)
		}
	}
	for i := 0; i < 39; i++ {
		m.selected--
		m.clampWindow()
		if m.selected < m.windowTop || m.selected >= m.windowTop+size {
			t.Fatalf("selection %d fell outside window [%d,%d)", m.selected, m.windowTop, m.windowTop+size)
		}
	}
	if m.windowTop != 0 {
		t.Fatalf("windowTop = %d after returning to start, want 0", m.windowTop)
	}
}

func TestWindowStartsAtSelection(t *testing.T) {
	m := New(makeConvs(40), "c35")
	if m.selected != 35 {
		t.Fatalf("selected = %d, want 35", m.selected)
	}
	size := m.windowSize()
	if m.selected < m.windowTop || m.selected >= m.windowTop+size {
		t.Fatalf("initial selection outside window [%d,%d)", m.windowTop, m.windowTop+size)
	}
}

func TestShortListNeverScrolls(t *testing.T) {
	m := New(makeConvs(2), "c1")
	m.selected = 0
	m.clampWindow()
	if m.windowTop != 0 {
		t.Fatalf("windowTop = %d for short list, want 0", m.windowTop)
	}
}
