// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter is the client side of the remote store contract.
//
// [RemoteStore] decouples the sync engine from the transport. The package
// ships an HTTP/REST implementation ([NewHTTPRemoteStore]) built on resty.
//
// Error values in errors.go are mapped from HTTP status codes by
// mapHTTPError, so callers use [errors.Is] to tell retryable failures
// ([ErrNetwork], [ErrServerUnavailable]) from terminal ones
// ([ErrUnauthorized], [ErrBadRequest]).
package adapter

import (
	"context"

	"github.com/MKhiriev/go-trip-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/remote_store_mock.go -package=mock

// RemoteStore is the remote side of synchronization.
type RemoteStore interface {
	// SetToken stores the bearer token attached to every sync request.
	SetToken(token string)

	// Token returns the bearer token currently in use.
	Token() string

	// Push replaces the remote copy of every collection present in snapshot.
	Push(ctx context.Context, snapshot models.Snapshot) error

	// Pull fetches the remote snapshot. Collections the remote store holds
	// no data for are absent.
	Pull(ctx context.Context) (models.Snapshot, error)

	// Delete removes the listed ids remotely. Unknown ids are ignored.
	Delete(ctx context.Context, req models.DeleteRequest) error

	// Ping checks that the remote store is reachable. It needs no token.
	Ping(ctx context.Context) error
}
