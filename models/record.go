package models

import "time"

const (
	// RecordIDField is the JSON field every record carries its identifier in.
	RecordIDField = "id"

	// RecordUpdatedAtField is the JSON field stamped on every local upsert.
	RecordUpdatedAtField = "updatedAt"
)

// Record is a single entity as stored in a collection. The concrete schema
// belongs to the UI layer; the data layer only relies on the "id" and
// "updatedAt" fields.
type Record map[string]any

// ID returns the record identifier or an empty string when it is missing
// or not a string.
func (r Record) ID() string {
	id, _ := r[RecordIDField].(string)
	return id
}

// Touch stamps the record's updatedAt field with t in RFC 3339 (UTC).
func (r Record) Touch(t time.Time) {
	r[RecordUpdatedAtField] = t.UTC().Format(time.RFC3339Nano)
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	c := make(Record, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}
