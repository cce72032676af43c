// Package agent drives the chat loop: it streams model output, runs tool
// calls behind the permission service, and persists the transcript.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tandem/internal/csync"
	"tandem/internal/message"
	"tandem/internal/permission"
)

const systemPrompt = `You are tandem, a terminal-based coding assistant.
Be concise. Use the run_terminal tool for shell work and read_file to
inspect files. Ask before destructive operations.`

// maxToolRounds bounds how many tool-call loops a single prompt may take.
const maxToolRounds = 16

// Engine owns one model conversation loop per session.
type Engine struct {
	client      *Client
	model       string
	messages    message.Service
	permissions permission.Service
	terminals   Terminals
	logger      networkLogger

	cancels *csync.Map[string, context.CancelFunc]
}

// Config carries the engine's collaborators.
type Config struct {
	Client      *Client
	Model       string
	Messages    message.Service
	Permissions permission.Service
	Terminals   Terminals
	// DebugLogPath enables file logging of API traffic when non-empty.
	DebugLogPath string
}

func NewEngine(cfg Config) *Engine {
	var logger networkLogger = nopLogger{}
	if cfg.DebugLogPath != "" {
		logger = newFileNetworkLogger(cfg.DebugLogPath)
	}
	return &Engine{
		client:      cfg.Client,
		model:       cfg.Model,
		messages:    cfg.Messages,
		permissions: cfg.Permissions,
		terminals:   cfg.Terminals,
		logger:      logger,
		cancels:     csync.NewMap[string, context.CancelFunc](),
	}
}

// SetModel switches the chat model for subsequent prompts.
func (e *Engine) SetModel(model string) { e.model = model }

// Processing reports whether a prompt is currently running for the session.
func (e *Engine) Processing(sessionID string) bool {
	_, ok := e.cancels.Get(sessionID)
	return ok
}

// Cancel aborts the session's in-flight prompt, if any.
func (e *Engine) Cancel(sessionID string) {
	if cancel, ok := e.cancels.Take(sessionID); ok {
		cancel()
	}
}

// Run submits prompt for the session and streams events to emit until the
// turn completes. It blocks; callers run it in a goroutine (the TUI wraps
// it in a tea.Cmd).
func (e *Engine) Run(ctx context.Context, sessionID, prompt string, attachments []message.Attachment, emit func(any)) {
	runCtx, cancel := context.WithCancel(ctx)
	e.cancels.Set(sessionID, cancel)
	defer func() {
		cancel()
		e.cancels.Del(sessionID)
	}()

	parts := []message.ContentPart{message.TextContent{Text: prompt}}
	for _, a := range attachments {
		parts = append(parts, a)
	}
	if _, err := e.messages.Create(runCtx, sessionID, message.CreateMessageParams{
		Role:  message.User,
		Parts: parts,
	}); err != nil {
		emit(StreamDoneEvent{SessionID: sessionID, Err: fmt.Errorf("store prompt: %w", err)})
		return
	}

	emit(StreamStartedEvent{SessionID: sessionID})

	for round := 0; round < maxToolRounds; round++ {
		wire, err := e.buildConversation(runCtx, sessionID)
		if err != nil {
			emit(StreamDoneEvent{SessionID: sessionID, Err: err})
			return
		}

		content, calls, err := e.streamOnce(runCtx, sessionID, wire, emit)
		if err != nil {
			canceled := errors.Is(err, context.Canceled)
			if canceled {
				e.recordCancellation(sessionID, content)
			}
			emit(StreamDoneEvent{SessionID: sessionID, Err: err, Canceled: canceled})
			return
		}

		if len(calls) == 0 {
			params := message.CreateMessageParams{
				Role: message.Assistant,
				Parts: []message.ContentPart{
					message.TextContent{Text: content},
					message.Finish{Reason: message.FinishReasonEndTurn, Time: time.Now().Unix()},
				},
			}
			if _, err := e.messages.Create(context.Background(), sessionID, params); err != nil {
				emit(StreamDoneEvent{SessionID: sessionID, Err: err})
				return
			}
			emit(StreamDoneEvent{SessionID: sessionID})
			return
		}

		if err := e.runToolRound(runCtx, sessionID, content, calls, emit); err != nil {
			canceled := errors.Is(err, context.Canceled)
			emit(StreamDoneEvent{SessionID: sessionID, Err: err, Canceled: canceled})
			return
		}
	}

	emit(StreamDoneEvent{SessionID: sessionID, Err: errors.New("tool loop exceeded its round budget")})
}

// streamOnce runs a single completion request, forwarding text deltas and
// accumulating tool calls.
func (e *Engine) streamOnce(ctx context.Context, sessionID string, wire []ChatMessage, emit func(any)) (string, []WireToolCall, error) {
	req := ChatRequest{Model: e.model, Messages: wire, Tools: toolSpecs()}
	e.logger.LogRequest(req)

	chunks, err := e.client.Stream(ctx, req)
	if err != nil {
		return "", nil, err
	}

	var content strings.Builder
	var calls []WireToolCall

	for chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return content.String(), nil, err
		}
		for _, choice := range chunk.Choices {
			if choice.Delta.Content != "" {
				content.WriteString(choice.Delta.Content)
				e.logger.LogDelta(choice.Delta.Content)
				emit(StreamDeltaEvent{SessionID: sessionID, Text: choice.Delta.Content})
			}
			for _, tc := range choice.Delta.ToolCalls {
				for len(calls) <= tc.Index {
					calls = append(calls, WireToolCall{Type: "function"})
				}
				cur := &calls[tc.Index]
				if tc.ID != "" {
					cur.ID = tc.ID
				}
				if tc.Function.Name != "" {
					cur.Function.Name = tc.Function.Name
				}
				cur.Function.Arguments += tc.Function.Arguments
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return content.String(), nil, err
	}

	e.logger.LogOutput(content.String(), calls)
	return content.String(), calls, nil
}

// runToolRound persists the assistant's tool-call message, executes each
// call, and persists the results.
func (e *Engine) runToolRound(ctx context.Context, sessionID, content string, calls []WireToolCall, emit func(any)) error {
	parts := []message.ContentPart{}
	if content != "" {
		parts = append(parts, message.TextContent{Text: content})
	}
	for _, call := range calls {
		parts = append(parts, message.ToolCall{
			ID:       call.ID,
			Name:     call.Function.Name,
			Input:    call.Function.Arguments,
			Finished: true,
		})
	}
	if _, err := e.messages.Create(ctx, sessionID, message.CreateMessageParams{
		Role:  message.Assistant,
		Parts: parts,
	}); err != nil {
		return err
	}

	var results []message.ContentPart
	for _, call := range calls {
		if err := ctx.Err(); err != nil {
			return err
		}
		emit(ToolCallStartedEvent{SessionID: sessionID, Call: message.ToolCall{
			ID:       call.ID,
			Name:     call.Function.Name,
			Input:    call.Function.Arguments,
			Finished: true,
		}})

		outcome := e.executeTool(ctx, sessionID, call)
		result := message.ToolResult{
			ToolCallID: call.ID,
			Name:       call.Function.Name,
			Content:    outcome.content,
			IsError:    outcome.isError,
		}
		results = append(results, result)
		emit(ToolCallFinishedEvent{SessionID: sessionID, Result: result})

		if outcome.terminalID != "" {
			emit(TerminalLaunchedEvent{
				SessionID:  sessionID,
				TerminalID: outcome.terminalID,
				Command:    outcome.command,
			})
		}
	}

	_, err := e.messages.Create(ctx, sessionID, message.CreateMessageParams{
		Role:  message.Tool,
		Parts: results,
	})
	return err
}

// buildConversation converts the stored transcript to the wire format.
func (e *Engine) buildConversation(ctx context.Context, sessionID string) ([]ChatMessage, error) {
	history, err := e.messages.List(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	wire := []ChatMessage{{Role: "system", Content: systemPrompt}}
	for _, msg := range history {
		switch msg.Role {
		case message.User:
			text := msg.Content().Text
			if atts := msg.Attachments(); len(atts) > 0 {
				var b strings.Builder
				b.WriteString(text)
				for _, a := range atts {
					fmt.Fprintf(&b, "\n[attached file: %s]", a.Path)
				}
				text = b.String()
			}
			wire = append(wire, ChatMessage{Role: "user", Content: text})
		case message.Assistant:
			entry := ChatMessage{Role: "assistant", Content: msg.Content().Text}
			for _, call := range msg.ToolCalls() {
				entry.ToolCalls = append(entry.ToolCalls, WireToolCall{
					ID:   call.ID,
					Type: "function",
					Function: WireFunction{
						Name:      call.Name,
						Arguments: call.Input,
					},
				})
			}
			wire = append(wire, entry)
		case message.Tool:
			for _, result := range msg.ToolResults() {
				wire = append(wire, ChatMessage{
					Role:       "tool",
					Content:    result.Content,
					ToolCallID: result.ToolCallID,
				})
			}
		}
	}
	return wire, nil
}

// recordCancellation stores whatever partial text arrived before the user
// hit escape, marked as a canceled turn.
func (e *Engine) recordCancellation(sessionID, partial string) {
	var parts []message.ContentPart
	if partial != "" {
		parts = append(parts, message.TextContent{Text: partial})
	}
	parts = append(parts, message.Finish{
		Reason:  message.FinishReasonCanceled,
		Time:    time.Now().Unix(),
		Message: "interrupted",
	})
	e.messages.Create(context.Background(), sessionID, message.CreateMessageParams{
		Role:  message.Assistant,
		Parts: parts,
	})
}
