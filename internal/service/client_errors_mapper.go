// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-trip-keeper/internal/adapter"
	"github.com/MKhiriev/go-trip-keeper/internal/app"
)

// mapAdapterError adds the service error matching the response message to
// a transport error. The adapter error stays in the chain, so callers can
// still test for [adapter.ErrUnauthorized] or [adapter.IsRetryable].
func mapAdapterError(err error) error {
	if err == nil {
		return nil
	}

	msg := extractBody(err)

	switch {
	case errors.Is(err, adapter.ErrUnauthorized):
		switch msg {
		case app.MsgTokenIsExpired:
			return fmt.Errorf("%w: %w", ErrTokenIsExpired, err)
		case app.MsgTokenIsExpiredOrInvalid:
			return fmt.Errorf("%w: %w", ErrTokenIsExpiredOrInvalid, err)
		}

	case errors.Is(err, adapter.ErrBadRequest):
		switch msg {
		case app.MsgIntegrityCheckFailed:
			return fmt.Errorf("%w: %w", ErrIntegrityCheckFailed, err)
		case app.MsgUnknownCollection:
			return fmt.Errorf("%w: %w", ErrUnknownCollection, err)
		case app.MsgInvalidDataProvided, app.MsgMalformedCollection:
			return fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
		}
	}

	return err
}

// extractBody extracts the body from a message of the form "bad request: <body>".
func extractBody(err error) string {
	msg := err.Error()
	if idx := strings.Index(msg, ": "); idx != -1 {
		return msg[idx+2:]
	}
	return msg
}
