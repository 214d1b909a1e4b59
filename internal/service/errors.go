package service

import "errors"

var (
	ErrInvalidDataProvided = errors.New("invalid data provided")

	ErrTokenIsExpired          = errors.New("token is expired")
	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")

	ErrValidationNoUserID       = errors.New("no user ID was given")
	ErrValidationNoIDsProvided  = errors.New("no ids provided for deletion")
	ErrUnknownCollection        = errors.New("unknown collection")
	ErrIntegrityCheckFailed     = errors.New("integrity check failed")
	ErrVersionIsNotSpecified    = errors.New("app version is not specified")
	ErrRemoteStoreNotConfigured = errors.New("remote store is not configured")

	// ErrSyncInProgress is reported in a SyncResult when a full sync is
	// requested while another one is running.
	ErrSyncInProgress = errors.New("sync already in progress")

	ErrEngineStopped = errors.New("sync engine stopped")
)
