package database

import (
	"fmt"
	"testing"

	"go.uber.org/zap"

	"titlechat/internal/models"
)

// newTestDB creates an in-memory SQLite database for testing.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:", zap.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// ─── Session tests ────────────────────────────────────────────────────────────

func TestUpsertSession_CreatesNew(t *testing.T) {
	db := newTestDB(t)

	if err := db.UpsertSession("s-1"); err != nil {
		t.Fatalf("UpsertSession: unexpected error: %v", err)
	}

	s, err := db.GetSession("s-1")
	if err != nil {
		t.Fatalf("GetSession: unexpected error: %v", err)
	}
	if s.Region != "" {
		t.Errorf("expected empty region, got %q", s.Region)
	}
}

func TestUpsertSession_KeepsRegion(t *testing.T) {
	db := newTestDB(t)

	if err := db.UpsertSession("s-1"); err != nil {
		t.Fatal(err)
	}
	if err := db.SetSessionRegion("s-1", "Alabama"); err != nil {
		t.Fatal(err)
	}
	// Upsert again must not reset the region.
	if err := db.UpsertSession("s-1"); err != nil {
		t.Fatal(err)
	}

	s, err := db.GetSession("s-1")
	if err != nil {
		t.Fatal(err)
	}
	if s.Region != "Alabama" {
		t.Errorf("expected Alabama after idempotent upsert, got %q", s.Region)
	}
}

func TestGetSession_NotFound(t *testing.T) {
	db := newTestDB(t)

	if _, err := db.GetSession("nonexistent"); err == nil {
		t.Error("expected error for nonexistent session, got nil")
	}
}

// ─── Message tests ───────────────────────────────────────────────────────────

func TestInsertMessage_RequiresSession(t *testing.T) {
	db := newTestDB(t)

	err := db.InsertMessage(&models.Message{ID: "m-1", SessionID: "missing", Role: "user", Content: "hi"})
	if err == nil {
		t.Error("expected foreign key error for unknown session, got nil")
	}
}

func TestInsertMessage_DuplicateID_Errors(t *testing.T) {
	db := newTestDB(t)
	if err := db.UpsertSession("s-1"); err != nil {
		t.Fatal(err)
	}

	msg := &models.Message{ID: "m-dup", SessionID: "s-1", Role: "user", Content: "hello"}
	if err := db.InsertMessage(msg); err != nil {
		t.Fatal(err)
	}
	if err := db.InsertMessage(msg); err == nil {
		t.Error("expected error on duplicate message ID, got nil")
	}
}

func TestGetRecentMessages_Order(t *testing.T) {
	db := newTestDB(t)
	if err := db.UpsertSession("s-1"); err != nil {
		t.Fatal(err)
	}

	contents := []string{"Texas", "Perfect. I'll pull...", "Ask Me Anything"}
	for i, c := range contents {
		role := "user"
		if i%2 == 1 {
			role = "bot"
		}
		err := db.InsertMessage(&models.Message{
			ID:        fmt.Sprintf("msg-%d", i),
			SessionID: "s-1",
			Role:      role,
			Content:   c,
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	msgs, err := db.GetRecentMessages("s-1", 10)
	if err != nil {
		t.Fatalf("GetRecentMessages: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	for i, want := range contents {
		if msgs[i].Content != want {
			t.Errorf("message[%d]: expected %q, got %q", i, want, msgs[i].Content)
		}
	}
	if msgs[1].Role != "bot" {
		t.Errorf("expected role bot, got %q", msgs[1].Role)
	}
}

func TestGetRecentMessages_Limit(t *testing.T) {
	db := newTestDB(t)
	if err := db.UpsertSession("s-1"); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 5; i++ {
		_ = db.InsertMessage(&models.Message{
			ID:        fmt.Sprintf("msg-%d", i),
			SessionID: "s-1",
			Role:      "user",
			Content:   fmt.Sprintf("msg %d", i),
		})
	}

	msgs, err := db.GetRecentMessages("s-1", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 3 {
		t.Errorf("expected 3 (limit), got %d", len(msgs))
	}
	if msgs[2].Content != "msg 4" {
		t.Errorf("expected newest last, got %q", msgs[2].Content)
	}
}

// ─── Answer tests ─────────────────────────────────────────────────────────────

func TestUpsertAnswers(t *testing.T) {
	db := newTestDB(t)
	if err := db.UpsertSession("s-1"); err != nil {
		t.Fatal(err)
	}

	if err := db.UpsertAnswers("s-1", `{"name":"Dana"}`); err != nil {
		t.Fatalf("UpsertAnswers: %v", err)
	}
	json2 := `{"name":"Dana","state":"Alabama"}`
	if err := db.UpsertAnswers("s-1", json2); err != nil {
		t.Fatalf("UpsertAnswers (update): %v", err)
	}

	stored, err := db.GetAnswers("s-1")
	if err != nil {
		t.Fatal(err)
	}
	if stored != json2 {
		t.Errorf("expected %q, got %q", json2, stored)
	}
}
