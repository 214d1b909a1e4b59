package models

import (
	"bytes"
	"encoding/json"
)

// Snapshot is a full copy of a user's collections: one serialized blob per
// collection. A missing key, or a blob holding JSON null, means "no data"
// and must never overwrite a populated collection.
type Snapshot map[Collection]json.RawMessage

// Has reports whether the snapshot carries data for c.
func (s Snapshot) Has(c Collection) bool {
	blob, ok := s[c]
	if !ok {
		return false
	}
	trimmed := bytes.TrimSpace(blob)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// Present returns the collections the snapshot carries data for, in
// [Collections] order.
func (s Snapshot) Present() []Collection {
	present := make([]Collection, 0, len(s))
	for _, c := range Collections {
		if s.Has(c) {
			present = append(present, c)
		}
	}
	return present
}

// PushRequest is the body of a push: every included collection replaces the
// server copy wholesale.
type PushRequest struct {
	Collections Snapshot `json:"collections"`
	Hash        string   `json:"hash,omitempty"`
}

// DeleteRequest lists ids to delete remotely, grouped by entity type.
type DeleteRequest struct {
	IDs map[EntityType][]string `json:"ids"`
}

// Len returns the total number of ids in the request.
func (r DeleteRequest) Len() int {
	n := 0
	for _, ids := range r.IDs {
		n += len(ids)
	}
	return n
}

// DeletedItemsLedger holds ids deleted locally whose remote deletion has not
// been confirmed yet, grouped by entity type.
type DeletedItemsLedger map[EntityType][]string

// Len returns the total number of ids in the ledger.
func (l DeletedItemsLedger) Len() int {
	n := 0
	for _, ids := range l {
		n += len(ids)
	}
	return n
}

// Contains reports whether id is recorded for entity.
func (l DeletedItemsLedger) Contains(entity EntityType, id string) bool {
	for _, existing := range l[entity] {
		if existing == id {
			return true
		}
	}
	return false
}

// UnpushedMarks records collections changed locally since their last
// successful push. Each mark carries the revision of the change that set
// it, so a push only clears marks it actually carried.
type UnpushedMarks map[Collection]uint64

// Has reports whether c has local changes not yet pushed.
func (m UnpushedMarks) Has(c Collection) bool {
	_, ok := m[c]
	return ok
}

// Collections returns the marked collections in [Collections] order.
func (m UnpushedMarks) Collections() []Collection {
	marked := make([]Collection, 0, len(m))
	for _, c := range Collections {
		if m.Has(c) {
			marked = append(marked, c)
		}
	}
	return marked
}
