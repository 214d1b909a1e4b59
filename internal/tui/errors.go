// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"errors"
	"strings"

	"github.com/MKhiriev/go-trip-keeper/internal/adapter"
	"github.com/MKhiriev/go-trip-keeper/internal/service"
)

var errNoServices = errors.New("client services are not initialised")

// humanizeError turns an engine failure into a line for the error overlay.
func humanizeError(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, service.ErrTokenIsExpired):
		return "The token has expired. Update app.token and restart."
	case errors.Is(err, adapter.ErrUnauthorized):
		return "The remote store rejected the token. Update app.token and restart."
	case errors.Is(err, service.ErrIntegrityCheckFailed):
		return "The remote store rejected the push hash. Check app.hash_key."
	case errors.Is(err, service.ErrSyncInProgress):
		return "A sync is already running."
	}

	s := strings.ToLower(err.Error())
	if strings.Contains(s, "connection refused") ||
		strings.Contains(s, "dial tcp") ||
		strings.Contains(s, "no such host") ||
		strings.Contains(s, "network is unreachable") ||
		strings.Contains(s, "i/o timeout") ||
		strings.Contains(s, "context deadline exceeded") {
		return "No network or the remote store is unavailable"
	}

	return err.Error()
}
