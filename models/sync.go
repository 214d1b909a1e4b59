package models

import "time"

// SyncResult is the outcome of a push, pull, delete or full sync. Ordinary
// connectivity failures are reported here instead of as errors.
type SyncResult struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Pushed  []Collection `json:"pushed,omitempty"`
	Pulled  []Collection `json:"pulled,omitempty"`
	// Skipped lists pulled collections left untouched because their blob
	// was malformed.
	Skipped []Collection `json:"skipped,omitempty"`
	// KeptLocal lists pulled collections a full sync did not overwrite
	// because they hold local changes that were not pushed yet.
	KeptLocal []Collection `json:"keptLocal,omitempty"`
}

// DrainResult summarizes one pass over the mutation queue.
type DrainResult struct {
	Processed int
	Delivered int
	Failed    int
	Dropped   []DroppedMutation
}

// SyncStatus is the observable state of the sync layer.
type SyncStatus struct {
	Online           bool
	Syncing          bool
	PendingSync      bool
	PendingMutations int
	LedgerSize       int
	Unpushed         []Collection
	LastSync         time.Time
	LastError        string
	DroppedTotal     int
}
