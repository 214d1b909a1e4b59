package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/go-trip-keeper/models"
)

// buildReport renders the plain-text sync report copied by the "c" key.
func buildReport(s models.SyncStatus, counts map[models.Collection]int, last *opDoneMsg, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Trip Keeper sync report (%s)\n", now.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "online: %t\n", s.Online)
	fmt.Fprintf(&b, "state: %s\n", stateLabel(s))
	if s.LastSync.IsZero() {
		b.WriteString("last sync: never\n")
	} else {
		fmt.Fprintf(&b, "last sync: %s\n", s.LastSync.UTC().Format(time.RFC3339))
	}
	fmt.Fprintf(&b, "queued changes: %d\n", s.PendingMutations)
	fmt.Fprintf(&b, "pending deletions: %d\n", s.LedgerSize)
	if len(s.Unpushed) > 0 {
		fmt.Fprintf(&b, "unpushed: %s\n", joinCollections(s.Unpushed))
	}
	fmt.Fprintf(&b, "dropped changes: %d\n", s.DroppedTotal)
	if s.LastError != "" {
		fmt.Fprintf(&b, "last error: %s\n", s.LastError)
	}

	for _, c := range models.Collections {
		if n, ok := counts[c]; ok {
			fmt.Fprintf(&b, "records.%s: %d\n", c, n)
		}
	}

	if last != nil {
		if last.err != nil {
			fmt.Fprintf(&b, "last operation: %s failed: %v\n", last.op, last.err)
		} else {
			fmt.Fprintf(&b, "last operation: %s, %s\n", last.op, describeResult(last.result))
		}
	}

	return b.String()
}

func describeResult(r models.SyncResult) string {
	if !r.Success {
		if r.Message == "" {
			return "failed"
		}
		return "failed: " + r.Message
	}

	parts := make([]string, 0, 3)
	if len(r.Pulled) > 0 {
		parts = append(parts, "pulled "+joinCollections(r.Pulled))
	}
	if len(r.Pushed) > 0 {
		parts = append(parts, "pushed "+joinCollections(r.Pushed))
	}
	if len(r.Skipped) > 0 {
		parts = append(parts, "skipped "+joinCollections(r.Skipped))
	}
	if len(r.KeptLocal) > 0 {
		parts = append(parts, "kept local "+joinCollections(r.KeptLocal))
	}
	if len(parts) == 0 {
		if r.Message != "" {
			return r.Message
		}
		return "ok"
	}
	return strings.Join(parts, "; ")
}

func joinCollections(cs []models.Collection) string {
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
