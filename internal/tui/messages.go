package tui

import "github.com/MKhiriev/go-trip-keeper/models"

type statusMsg struct {
	status models.SyncStatus
	counts map[models.Collection]int
}

type pollMsg struct{}

type opDoneMsg struct {
	op     string
	result models.SyncResult
	err    error
}

type copiedMsg struct {
	err error
}

type clearNoticeMsg struct{}
