package audit

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"

	"smartattend/internal/queue"
)

// MessageType tags audit payloads on the queue.
const MessageType = "audit"

// Entry is one append-only audit event: an actor performed an action on a
// target, with optional before/after snapshots. Entries are never mutated or
// deleted after being written.
type Entry struct {
	EntryID       string          `json:"entry_id"`
	ActorID       string          `json:"actor_id"`
	Action        string          `json:"action"`
	Target        string          `json:"target"`
	Timestamp     time.Time       `json:"timestamp"`
	Details       string          `json:"details,omitempty"`
	PreviousValue json.RawMessage `json:"previous_value,omitempty"`
	NewValue      json.RawMessage `json:"new_value,omitempty"`
}

// New builds an entry stamped with now and a correlation id. prev and next
// are marshaled as the before/after snapshots; nil values are omitted.
func New(actorID, action, target string, prev, next any) Entry {
	e := Entry{
		EntryID:   uuid.NewString(),
		ActorID:   actorID,
		Action:    action,
		Target:    target,
		Timestamp: time.Now().UTC(),
	}
	if prev != nil {
		if raw, err := json.Marshal(prev); err == nil {
			e.PreviousValue = raw
		}
	}
	if next != nil {
		if raw, err := json.Marshal(next); err == nil {
			e.NewValue = raw
		}
	}
	return e
}

// Recorder publishes entries to the audit queue. Persistence happens in the
// audit worker, so a slow log write never blocks a request beyond the queue
// handoff.
type Recorder struct {
	q queue.Queue
}

// NewRecorder wraps a queue backend.
func NewRecorder(q queue.Queue) *Recorder {
	return &Recorder{q: q}
}

// Record enqueues an entry. Failures are logged and swallowed; the audit
// trail is best-effort from the request path's point of view.
func (r *Recorder) Record(ctx context.Context, e Entry) {
	if r == nil || r.q == nil {
		return
	}
	body, err := json.Marshal(e)
	if err != nil {
		log.Printf("audit: marshal entry failed: %v", err)
		return
	}
	if err := r.q.Publish(ctx, queue.Message{Type: MessageType, Body: body}); err != nil {
		log.Printf("audit: publish failed: %v", err)
	}
}

// Decode parses a queue payload back into an entry.
func Decode(body []byte) (Entry, error) {
	var e Entry
	err := json.Unmarshal(body, &e)
	return e, err
}
