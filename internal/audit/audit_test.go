package audit

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"smartattend/internal/queue"
)

func TestNewEntrySnapshots(t *testing.T) {
	prev := map[string]any{"PresentFlag": true}
	next := map[string]any{"PresentFlag": false}

	e := New("admin@smartattend.ai", "update", "AttendanceRecord", prev, next)
	if e.EntryID == "" {
		t.Fatal("expected a correlation id")
	}
	if e.Timestamp.IsZero() {
		t.Fatal("expected a timestamp")
	}
	if e.ActorID != "admin@smartattend.ai" || e.Action != "update" || e.Target != "AttendanceRecord" {
		t.Fatalf("unexpected entry: %+v", e)
	}

	var decoded map[string]bool
	if err := json.Unmarshal(e.PreviousValue, &decoded); err != nil || !decoded["PresentFlag"] {
		t.Fatalf("bad previous snapshot: %s", e.PreviousValue)
	}
	if err := json.Unmarshal(e.NewValue, &decoded); err != nil || decoded["PresentFlag"] {
		t.Fatalf("bad new snapshot: %s", e.NewValue)
	}

	// Creates carry no previous value.
	created := New("anonymous", "create", "Student", nil, map[string]int{"StudentID": 1})
	if created.PreviousValue != nil {
		t.Fatalf("expected nil previous value, got %s", created.PreviousValue)
	}
}

func TestRecorderPublishesDecodableEntries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := queue.NewInMemory(4)
	rec := NewRecorder(q)
	rec.Record(ctx, New("anonymous", "create", "Course", nil, map[string]int{"CourseID": 7}))

	messages, err := q.Consume(ctx)
	if err != nil {
		t.Fatalf("consume init failed: %v", err)
	}
	select {
	case msg := <-messages:
		if msg.Type != MessageType {
			t.Fatalf("unexpected message type %q", msg.Type)
		}
		entry, err := Decode(msg.Body)
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if entry.Action != "create" || entry.Target != "Course" {
			t.Fatalf("unexpected entry: %+v", entry)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for audit message")
	}
}

func TestNilRecorderIsSafe(t *testing.T) {
	var rec *Recorder
	rec.Record(context.Background(), New("anonymous", "create", "Student", nil, nil))
}
