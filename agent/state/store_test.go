package state

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	contractx "github.com/Chispasgg/personal-ai-agent-api/agent/contract"
	extractx "github.com/Chispasgg/personal-ai-agent-api/agent/extract"
)

func strPtr(s string) *string { return &s }

func testTurn(n int) ConversationTurn {
	category := extractx.CategoryShipping
	return ConversationTurn{
		TurnNumber:             n,
		Timestamp:              time.Date(2026, 3, 1, 10, 0, n, 0, time.UTC),
		UserMessage:            "my package is lost",
		AssistantReply:         "I am sorry to hear that, could you share your order id?",
		Language:               "en",
		Sentiment:              contractx.SentimentNegative,
		SentimentPolarityValue: -0.4,
		ExtractedDelta: extractx.ExtractedData{
			Category: &category,
		},
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	session := NewConversationSession("session-1", "en", time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	session.AppendTurn(testTurn(1))
	session.AppendTurn(testTurn(2))

	if err := store.Save(context.Background(), session); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := store.Load(context.Background(), "session-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(loaded, session) {
		t.Fatalf("Load() = %+v, want %+v", loaded, session)
	}
}

func TestFileStoreLoadMissing(t *testing.T) {
	t.Parallel()

	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	_, err = store.Load(context.Background(), "never-seen")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Load() error = %v, want ErrSessionNotFound", err)
	}
}

func TestFileStoreCorruptFileTreatedAsNotFound(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "bad-session.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}

	_, err = store.Load(context.Background(), "bad-session")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Load() error = %v, want ErrSessionNotFound", err)
	}
}

func TestFileStoreRejectsPathSeparators(t *testing.T) {
	t.Parallel()

	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	if _, err := store.Load(context.Background(), "../escape"); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("Load() error = %v, want ErrInvalidSession", err)
	}
}

func TestServiceAddTurnCreatesSession(t *testing.T) {
	t.Parallel()

	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	svc, err := NewService(store)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	if err := svc.AddTurn(context.Background(), "fresh-session", "es", testTurn(1)); err != nil {
		t.Fatalf("AddTurn() error = %v", err)
	}

	session, err := svc.Load(context.Background(), "fresh-session")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if session.TotalTurns != 1 || len(session.Turns) != 1 {
		t.Fatalf("unexpected turn count: %+v", session)
	}
	if session.Language != "es" {
		t.Fatalf("session language = %q, want es", session.Language)
	}
	if session.StartTime.IsZero() {
		t.Fatal("start time not set")
	}
	if session.Finalized() {
		t.Fatal("fresh session must not be finalized")
	}
}

func TestServiceFinalize(t *testing.T) {
	t.Parallel()

	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	svc, err := NewService(store)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	if err := svc.AddTurn(context.Background(), "done-session", "en", testTurn(1)); err != nil {
		t.Fatalf("AddTurn() error = %v", err)
	}

	category := extractx.CategoryBilling
	urgency := extractx.UrgencyHigh
	final := extractx.ExtractedData{
		OrderID:     strPtr("ORD123456"),
		Category:    &category,
		Description: strPtr("charged twice for the same order"),
		Urgency:     &urgency,
	}
	if err := svc.Finalize(context.Background(), "done-session", final, "customer was double charged"); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	session, err := svc.Load(context.Background(), "done-session")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !session.Finalized() {
		t.Fatal("session should be finalized")
	}
	if session.FinalExtracted == nil || session.FinalExtracted.OrderID == nil || *session.FinalExtracted.OrderID != "ORD123456" {
		t.Fatalf("final extracted not stored: %+v", session.FinalExtracted)
	}
	if session.Summary == "" {
		t.Fatal("summary not stored")
	}
}

func TestServiceFinalizeUnknownSessionIsNoOp(t *testing.T) {
	t.Parallel()

	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	svc, err := NewService(store)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	if err := svc.Finalize(context.Background(), "ghost-session", extractx.ExtractedData{}, "s"); err != nil {
		t.Fatalf("Finalize() error = %v, want nil no-op", err)
	}
}

func TestCumulativeExtractedFoldsDeltas(t *testing.T) {
	t.Parallel()

	session := NewConversationSession("session-2", "en", time.Now().UTC())

	turn1 := testTurn(1)
	turn1.ExtractedDelta = extractx.ExtractedData{OrderID: strPtr("ABC123456")}
	session.AppendTurn(turn1)

	category := extractx.CategoryTechnical
	turn2 := testTurn(2)
	turn2.ExtractedDelta = extractx.ExtractedData{Category: &category}
	session.AppendTurn(turn2)

	got := session.CumulativeExtracted()
	if got.OrderID == nil || *got.OrderID != "ABC123456" {
		t.Fatalf("order id not folded: %+v", got)
	}
	if got.Category == nil || *got.Category != extractx.CategoryTechnical {
		t.Fatalf("category not folded: %+v", got)
	}
	if got.IsComplete() {
		t.Fatal("two-field snapshot must not be complete")
	}
}

func TestSessionValidateTurnOrdering(t *testing.T) {
	t.Parallel()

	session := NewConversationSession("session-3", "en", time.Now().UTC())
	session.AppendTurn(testTurn(1))
	session.AppendTurn(testTurn(1))

	if err := session.Validate(); err == nil {
		t.Fatal("expected error for repeated turn number")
	}
}
