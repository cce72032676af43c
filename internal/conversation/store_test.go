package conversation

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "tandem.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateListDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first, err := s.Create(ctx, "first")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.Create(ctx, "second"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	convs, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(convs) != 2 {
		t.Fatalf("List returned %d conversations, want 2", len(convs))
	}

	if err := s.Delete(ctx, first.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	convs, err = s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(convs) != 1 || convs[0].Title != "second" {
		t.Fatalf("after delete: %+v", convs)
	}
}

func TestCreateDefaultsTitle(t *testing.T) {
	s := openTestStore(t)
	c, err := s.Create(context.Background(), "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.Title == "" {
		t.Fatal("empty title was not defaulted")
	}
}

func TestUpdateTitle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	c, err := s.Create(ctx, "old")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.UpdateTitle(ctx, c.ID, "new"); err != nil {
		t.Fatalf("UpdateTitle: %v", err)
	}
	got, err := s.Get(ctx, c.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "new" {
		t.Fatalf("title = %q, want new", got.Title)
	}
}

func TestDraftRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	c, err := s.Create(ctx, "t")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if text, err := s.Draft(ctx, c.ID); err != nil || text != "" {
		t.Fatalf("Draft on empty = %q, %v", text, err)
	}

	if err := s.SaveDraft(ctx, c.ID, "half-written thought"); err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}
	if err := s.SaveDraft(ctx, c.ID, "rewritten thought"); err != nil {
		t.Fatalf("SaveDraft overwrite: %v", err)
	}

	text, err := s.Draft(ctx, c.ID)
	if err != nil {
		t.Fatalf("Draft: %v", err)
	}
	if text != "rewritten thought" {
		t.Fatalf("draft = %q", text)
	}

	// Empty text clears the draft.
	if err := s.SaveDraft(ctx, c.ID, ""); err != nil {
		t.Fatalf("SaveDraft clear: %v", err)
	}
	if text, _ := s.Draft(ctx, c.ID); text != "" {
		t.Fatalf("draft after clear = %q", text)
	}
}

func TestDraftsAreSessionScoped(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	a, _ := s.Create(ctx, "a")
	b, _ := s.Create(ctx, "b")

	if err := s.SaveDraft(ctx, a.ID, "for a"); err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}
	if err := s.SaveDraft(ctx, b.ID, "for b"); err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}

	if text, _ := s.Draft(ctx, a.ID); text != "for a" {
		t.Fatalf("draft a = %q", text)
	}
	if text, _ := s.Draft(ctx, b.ID); text != "for b" {
		t.Fatalf("draft b = %q", text)
	}
}
