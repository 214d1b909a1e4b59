package models

import (
	"encoding/json"
	"time"
)

// MutationType is the kind of change a [QueuedMutation] carries.
type MutationType string

const (
	MutationCreate MutationType = "create"
	MutationUpdate MutationType = "update"
	MutationDelete MutationType = "delete"
)

// Valid reports whether m is a known mutation type.
func (m MutationType) Valid() bool {
	switch m {
	case MutationCreate, MutationUpdate, MutationDelete:
		return true
	}
	return false
}

// QueuedMutation is a pending change recorded while the remote store was
// unreachable. The queue keeps at most one entry per (Entity, EntityID).
type QueuedMutation struct {
	ID        string          `json:"id"`
	Type      MutationType    `json:"type"`
	Entity    EntityType      `json:"entity"`
	EntityID  string          `json:"entityId"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Retries   int             `json:"retries"`
}

// Key identifies the entity a mutation refers to.
func (m QueuedMutation) Key() MutationKey {
	return MutationKey{Entity: m.Entity, EntityID: m.EntityID}
}

// MutationKey is the coalescing key of the mutation queue.
type MutationKey struct {
	Entity   EntityType
	EntityID string
}

// DroppedMutation reports a queued mutation that was permanently discarded
// after exhausting its delivery attempts.
type DroppedMutation struct {
	Mutation QueuedMutation
	Err      error
}
