package queue

import "errors"

var (
	// ErrRetriesExhausted wraps the last delivery error of a mutation that
	// was dropped after [MaxRetries] failed attempts. The change is lost.
	ErrRetriesExhausted = errors.New("mutation dropped after exhausting retries")

	// ErrDrainAborted, when wrapped in a delivery error, stops the drain
	// without counting the attempt against the mutation.
	ErrDrainAborted = errors.New("drain aborted")

	// ErrInvalidMutation is returned by Enqueue for an unknown mutation type,
	// an unknown entity type or an empty entity id.
	ErrInvalidMutation = errors.New("invalid mutation")
)
