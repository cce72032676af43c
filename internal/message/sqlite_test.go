package message

import (
	"context"
	"path/filepath"
	"testing"

	"tandem/internal/conversation"
)

func openTestService(t *testing.T) *SQLiteService {
	t.Helper()
	store, err := conversation.Open(filepath.Join(t.TempDir(), "tandem.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewSQLiteService(store.DB())
}

func TestCreateAndListPreservesParts(t *testing.T) {
	svc := openTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "s1", CreateMessageParams{
		Role: User,
		Parts: []ContentPart{
			TextContent{Text: "run the tests"},
			Attachment{Path: "/tmp/notes.md", MimeType: "text/markdown"},
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = svc.Create(ctx, "s1", CreateMessageParams{
		Role: Assistant,
		Parts: []ContentPart{
			ToolCall{ID: "call-1", Name: "run_terminal", Input: `{"command":"go test ./..."}`, Finished: true},
			ToolResult{ToolCallID: "call-1", Name: "run_terminal", Content: "ok"},
			TextContent{Text: "tests pass"},
			Finish{Reason: FinishReasonEndTurn, Time: 1},
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	msgs, err := svc.List(ctx, "s1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("List returned %d messages, want 2", len(msgs))
	}

	user := msgs[0]
	if user.Role != User || user.Content().Text != "run the tests" {
		t.Fatalf("user message = %+v", user)
	}
	atts := user.Attachments()
	if len(atts) != 1 || atts[0].Path != "/tmp/notes.md" {
		t.Fatalf("attachments = %+v", atts)
	}

	asst := msgs[1]
	calls := asst.ToolCalls()
	if len(calls) != 1 || calls[0].ID != "call-1" || !calls[0].Finished {
		t.Fatalf("tool calls = %+v", calls)
	}
	results := asst.ToolResults()
	if len(results) != 1 || results[0].Content != "ok" {
		t.Fatalf("tool results = %+v", results)
	}
}

func TestListScopedBySession(t *testing.T) {
	svc := openTestService(t)
	ctx := context.Background()

	svc.Create(ctx, "a", CreateMessageParams{Role: User, Parts: []ContentPart{TextContent{Text: "hi"}}})
	svc.Create(ctx, "b", CreateMessageParams{Role: User, Parts: []ContentPart{TextContent{Text: "yo"}}})

	msgs, err := svc.List(ctx, "a")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Content().Text != "hi" {
		t.Fatalf("session a messages = %+v", msgs)
	}
}

func TestDeleteBySession(t *testing.T) {
	svc := openTestService(t)
	ctx := context.Background()

	svc.Create(ctx, "a", CreateMessageParams{Role: User, Parts: []ContentPart{TextContent{Text: "hi"}}})
	if err := svc.DeleteBySession(ctx, "a"); err != nil {
		t.Fatalf("DeleteBySession: %v", err)
	}
	msgs, _ := svc.List(ctx, "a")
	if len(msgs) != 0 {
		t.Fatalf("messages survived delete: %+v", msgs)
	}
}
