package message

import "time"

// ContentPart is one typed chunk of a message: text, an attachment, a tool
// call, its result, or the finish marker.
type ContentPart interface{ isPart() }

type TextContent struct {
	Text string `json:"text"`
}

func (TextContent) isPart()           {}
func (tc TextContent) String() string { return tc.Text }

// Attachment references a local file the user attached to their prompt.
type Attachment struct {
	Path     string `json:"path"`
	MimeType string `json:"mime_type,omitempty"`
}

func (Attachment) isPart() {}

type ToolCall struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Input    string `json:"input"`
	Finished bool   `json:"finished"`
}

func (ToolCall) isPart() {}

type ToolResult struct {
	ToolCallID string `json:"tool_call_id"`
	Name       string `json:"name"`
	Content    string `json:"content"`
	IsError    bool   `json:"is_error"`
	Pending    bool   `json:"pending"`
}

func (ToolResult) isPart() {}

type FinishReason string

const (
	FinishReasonEndTurn  FinishReason = "end_turn"
	FinishReasonToolUse  FinishReason = "tool_use"
	FinishReasonCanceled FinishReason = "canceled"
	FinishReasonError    FinishReason = "error"
)

type Finish struct {
	Reason  FinishReason `json:"reason"`
	Time    int64        `json:"time"`
	Message string       `json:"message,omitempty"`
}

func (Finish) isPart() {}

func (m *Message) Content() TextContent {
	for _, p := range m.Parts {
		if t, ok := p.(TextContent); ok {
			return t
		}
	}
	return TextContent{}
}

func (m *Message) Attachments() []Attachment {
	var out []Attachment
	for _, p := range m.Parts {
		if a, ok := p.(Attachment); ok {
			out = append(out, a)
		}
	}
	return out
}

func (m *Message) ToolCalls() []ToolCall {
	var out []ToolCall
	for _, p := range m.Parts {
		if t, ok := p.(ToolCall); ok {
			out = append(out, t)
		}
	}
	return out
}

func (m *Message) ToolResults() []ToolResult {
	var out []ToolResult
	for _, p := range m.Parts {
		if t, ok := p.(ToolResult); ok {
			out = append(out, t)
		}
	}
	return out
}

func (m *Message) AddFinish(reason FinishReason, msg string) {
	m.Parts = append(m.Parts, Finish{Reason: reason, Time: time.Now().Unix(), Message: msg})
}
