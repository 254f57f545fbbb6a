// Package audit provides the audit trail contract: who changed which entity
// and how. Recording is best-effort: an audit failure is logged and
// swallowed, never propagated into the business operation.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"velora/internal/core/id"
)

// Action is the type of audited operation.
type Action string

const (
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionReceive  Action = "receive"
	ActionComplete Action = "complete"
	ActionCancel   Action = "cancel"
)

// Entry is one audit record.
type Entry struct {
	ID         id.ID           `db:"id" json:"id"`
	EntityType string          `db:"entity_type" json:"entityType"`
	EntityID   id.ID           `db:"entity_id" json:"entityId"`
	Action     Action          `db:"action" json:"action"`
	UserID     string          `db:"user_id" json:"userId,omitempty"`
	Changes    json.RawMessage `db:"changes" json:"changes,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"createdAt"`
}

// Recorder writes audit entries. Implementations must be safe to call after
// the business transaction has committed.
type Recorder interface {
	// Record persists an entry. The returned error is informational;
	// callers log it and continue.
	Record(ctx context.Context, entry Entry) error

	// History returns entries for an entity, newest first.
	History(ctx context.Context, entityType string, entityID id.ID, limit int) ([]Entry, error)
}

// Diff computes a field-by-field change set between two entity states,
// in {"field": {"old": ..., "new": ...}} form.
func Diff(oldState, newState map[string]any) map[string]any {
	changes := make(map[string]any)

	for key, newVal := range newState {
		oldVal, exists := oldState[key]
		switch {
		case !exists:
			changes[key] = map[string]any{"old": nil, "new": newVal}
		case !equal(oldVal, newVal):
			changes[key] = map[string]any{"old": oldVal, "new": newVal}
		}
	}
	for key, oldVal := range oldState {
		if _, exists := newState[key]; !exists {
			changes[key] = map[string]any{"old": oldVal, "new": nil}
		}
	}
	return changes
}

func equal(a, b any) bool {
	aj, errA := json.Marshal(a)
	bj, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return string(aj) == string(bj)
}
