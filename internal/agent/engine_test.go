package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"tandem/internal/message"
	"tandem/internal/permission"
)

// sseServer answers each chat completion request with the next scripted
// response, as an SSE stream.
type sseServer struct {
	mu        sync.Mutex
	responses [][]string
	requests  []ChatRequest
}

func (s *sseServer) handler(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	json.NewDecoder(r.Body).Decode(&req)

	s.mu.Lock()
	s.requests = append(s.requests, req)
	var lines []string
	if len(s.responses) > 0 {
		lines = s.responses[0]
		s.responses = s.responses[1:]
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/event-stream")
	for _, line := range lines {
		fmt.Fprintf(w, "data: %s\n\n", line)
	}
	fmt.Fprint(w, "data: [DONE]\n\n")
}

func textDelta(text string) string {
	return fmt.Sprintf(`{"choices":[{"delta":{"content":%q}}]}`, text)
}

func toolCallDelta(id, name, args string) string {
	return fmt.Sprintf(`{"choices":[{"delta":{"tool_calls":[{"index":0,"id":%q,"function":{"name":%q,"arguments":%q}}]}}]}`, id, name, args)
}

type fakeTerminals struct {
	mu       sync.Mutex
	launched []string
}

func (f *fakeTerminals) Launch(_ context.Context, command string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.launched = append(f.launched, command)
	return fmt.Sprintf("term-%d", len(f.launched)), nil
}

func newTestEngine(t *testing.T, srv *sseServer) (*Engine, *message.InMemoryService, *fakeTerminals) {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(srv.handler))
	t.Cleanup(ts.Close)

	msgs := message.NewInMemoryService()
	terms := &fakeTerminals{}
	eng := NewEngine(Config{
		Client:      NewClient("test-key", WithBaseURL(ts.URL)),
		Model:       "test-model",
		Messages:    msgs,
		Permissions: permission.NewService("", true, nil),
		Terminals:   terms,
	})
	return eng, msgs, terms
}

func collectEvents(t *testing.T, eng *Engine, sessionID, prompt string) []any {
	t.Helper()
	var mu sync.Mutex
	var events []any
	done := make(chan struct{})
	go func() {
		defer close(done)
		eng.Run(context.Background(), sessionID, prompt, nil, func(ev any) {
			mu.Lock()
			events = append(events, ev)
			mu.Unlock()
		})
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("engine run did not finish")
	}
	return events
}

func TestRunTextOnlyTurn(t *testing.T) {
	srv := &sseServer{responses: [][]string{
		{textDelta("Hello"), textDelta(" there")},
	}}
	eng, msgs, _ := newTestEngine(t, srv)

	events := collectEvents(t, eng, "s1", "hi")

	var deltas string
	var doneEvent *StreamDoneEvent
	for _, ev := range events {
		switch e := ev.(type) {
		case StreamDeltaEvent:
			deltas += e.Text
		case StreamDoneEvent:
			cp := e
			doneEvent = &cp
		}
	}
	if deltas != "Hello there" {
		t.Fatalf("streamed text = %q", deltas)
	}
	if doneEvent == nil || doneEvent.Err != nil {
		t.Fatalf("done event = %+v", doneEvent)
	}

	history, _ := msgs.List(context.Background(), "s1")
	if len(history) != 2 {
		t.Fatalf("stored %d messages, want user+assistant", len(history))
	}
	if history[1].Role != message.Assistant || history[1].Content().Text != "Hello there" {
		t.Fatalf("assistant message = %+v", history[1])
	}
}

func TestRunToolCallTurn(t *testing.T) {
	srv := &sseServer{responses: [][]string{
		{toolCallDelta("call-1", "run_terminal", `{"command":"make build"}`)},
		{textDelta("Build started.")},
	}}
	eng, msgs, terms := newTestEngine(t, srv)

	events := collectEvents(t, eng, "s1", "build the project")

	var launched *TerminalLaunchedEvent
	var toolStarted, toolFinished bool
	for _, ev := range events {
		switch e := ev.(type) {
		case ToolCallStartedEvent:
			toolStarted = true
		case ToolCallFinishedEvent:
			toolFinished = true
			if e.Result.IsError {
				t.Fatalf("tool result errored: %s", e.Result.Content)
			}
		case TerminalLaunchedEvent:
			cp := e
			launched = &cp
		}
	}
	if !toolStarted || !toolFinished {
		t.Fatal("tool lifecycle events missing")
	}
	if launched == nil || launched.TerminalID != "term-1" {
		t.Fatalf("terminal launch event = %+v", launched)
	}
	if len(terms.launched) != 1 || terms.launched[0] != "make build" {
		t.Fatalf("launched commands = %v", terms.launched)
	}

	// user, assistant(tool call), tool(result), assistant(text)
	history, _ := msgs.List(context.Background(), "s1")
	if len(history) != 4 {
		t.Fatalf("stored %d messages, want 4", len(history))
	}
	if calls := history[1].ToolCalls(); len(calls) != 1 || calls[0].Name != "run_terminal" {
		t.Fatalf("tool calls = %+v", calls)
	}

	// The followup request must include the tool result.
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if len(srv.requests) != 2 {
		t.Fatalf("server saw %d requests, want 2", len(srv.requests))
	}
	var sawToolMsg bool
	for _, m := range srv.requests[1].Messages {
		if m.Role == "tool" && m.ToolCallID == "call-1" {
			sawToolMsg = true
		}
	}
	if !sawToolMsg {
		t.Fatal("followup request missing the tool result message")
	}
}

func TestCancelMarksTurnCanceled(t *testing.T) {
	// A server that streams slowly so cancellation lands mid-stream.
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for i := 0; i < 100; i++ {
			fmt.Fprintf(w, "data: %s\n\n", textDelta("x"))
			flusher.Flush()
			select {
			case <-r.Context().Done():
				return
			case <-time.After(20 * time.Millisecond):
			}
		}
	}))
	defer ts.Close()

	msgs := message.NewInMemoryService()
	eng := NewEngine(Config{
		Client:      NewClient("k", WithBaseURL(ts.URL)),
		Model:       "m",
		Messages:    msgs,
		Permissions: permission.NewService("", true, nil),
		Terminals:   &fakeTerminals{},
	})

	var mu sync.Mutex
	var doneEvent *StreamDoneEvent
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		eng.Run(context.Background(), "s1", "go", nil, func(ev any) {
			if e, ok := ev.(StreamDoneEvent); ok {
				mu.Lock()
				doneEvent = &e
				mu.Unlock()
			}
		})
	}()

	// Wait until the run registers, then cancel it.
	deadline := time.Now().Add(5 * time.Second)
	for !eng.Processing("s1") {
		if time.Now().After(deadline) {
			t.Fatal("engine never started processing")
		}
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)
	eng.Cancel("s1")

	select {
	case <-finished:
	case <-time.After(10 * time.Second):
		t.Fatal("run did not stop after cancel")
	}

	mu.Lock()
	defer mu.Unlock()
	if doneEvent == nil || !doneEvent.Canceled {
		t.Fatalf("done event = %+v, want canceled", doneEvent)
	}
	if eng.Processing("s1") {
		t.Fatal("still processing after cancel")
	}
}
