package store

import "errors"

// Sentinel errors returned by the local store and the remote repositories.
// Callers should use [errors.Is] to match against these values.
var (
	// ErrMissingID is returned when a record without a string "id" field is
	// upserted.
	ErrMissingID = errors.New("record has no id")

	// ErrUnknownEntity is returned for an entity type or collection the
	// store does not know.
	ErrUnknownEntity = errors.New("unknown entity type or collection")

	// ErrNotListCollection is returned when a record operation targets the
	// object-shaped settings collection.
	ErrNotListCollection = errors.New("collection is not a list of records")

	// ErrCorruptState is returned when a persisted blob cannot be decoded.
	ErrCorruptState = errors.New("persisted state is corrupt")

	// ErrTemporarilyUnavailable wraps database failures classified as
	// retryable.
	ErrTemporarilyUnavailable = errors.New("storage temporarily unavailable")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails.
	ErrScanningRows = errors.New("failed to scan rows")
)
