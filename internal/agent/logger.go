package agent

import (
	"encoding/json"
	"fmt"
	"os"
	"sync/atomic"
	"time"
)

// networkLogger captures request and response traffic for debugging.
type networkLogger interface {
	LogRequest(req ChatRequest)
	LogDelta(delta string)
	LogOutput(content string, calls []WireToolCall)
}

type nopLogger struct{}

func (nopLogger) LogRequest(ChatRequest)           {}
func (nopLogger) LogDelta(string)                  {}
func (nopLogger) LogOutput(string, []WireToolCall) {}

// fileNetworkLogger appends structured entries to a local log file.
type fileNetworkLogger struct {
	path string
	seq  atomic.Uint64
}

func newFileNetworkLogger(path string) *fileNetworkLogger {
	return &fileNetworkLogger{path: path}
}

func (l *fileNetworkLogger) LogRequest(req ChatRequest) {
	b, _ := json.MarshalIndent(req, "", "  ")
	l.append("REQUEST", fmt.Sprintf("Model: %s\nPayload:\n%s", req.Model, b))
}

func (l *fileNetworkLogger) LogDelta(delta string) {
	if delta == "" {
		return
	}
	entry := map[string]any{"delta": delta}
	b, _ := json.MarshalIndent(entry, "", "  ")
	l.append("DELTA", fmt.Sprintf("Payload:\n%s", b))
}

func (l *fileNetworkLogger) LogOutput(content string, calls []WireToolCall) {
	entry := map[string]any{"content": content}
	if len(calls) > 0 {
		entry["tool_calls"] = calls
	}
	b, _ := json.MarshalIndent(entry, "", "  ")
	l.append("OUTPUT", fmt.Sprintf("Payload:\n%s", b))
}

func (l *fileNetworkLogger) append(label, body string) {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	fmt.Fprintf(f, "\n===== %s #%d =====\nTime: %s\n%s\n",
		label, l.seq.Add(1), time.Now().Format(time.RFC3339), body)
}
