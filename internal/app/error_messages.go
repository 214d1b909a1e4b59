// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app holds the response messages of the remote store contract.
//
// The server writes them into error response bodies and the client matches
// them to tell apart failures that share a status code, such as an expired
// token and a forged one.
package app

const (
	MsgInvalidDataProvided = "invalid data provided"
	MsgInternalServerError = "internal server error"

	MsgTokenIsExpired          = "token is expired"
	MsgTokenIsExpiredOrInvalid = "token is expired or invalid"
	MsgNoUserIDProvided        = "no user ID provided"

	// MsgUnknownCollection is returned when a push names a collection the
	// remote store does not know.
	MsgUnknownCollection = "unknown collection"

	// MsgMalformedCollection is returned when a pushed collection does not
	// have the shape its name requires.
	MsgMalformedCollection = "malformed collection"

	// MsgIntegrityCheckFailed is returned when the HMAC of a push does not
	// match its collections.
	MsgIntegrityCheckFailed = "integrity check failed"

	MsgNoIDsProvided      = "no ids provided"
	MsgTooManyRequests    = "too many requests"
	MsgStoreUnavailable   = "store temporarily unavailable"
	MsgNothingToPush      = "nothing to push"
	MsgSyncInProgress     = "sync already in progress"
	MsgRemoteNotReachable = "remote store not reachable"
)
