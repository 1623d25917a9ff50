package outputsync

import (
	"errors"
	"fmt"
)

var (
	// ErrSynchronizerClosed is returned by WriteOutput after Shutdown.
	ErrSynchronizerClosed = errors.New("synchronizer is closed")
	// ErrMissingContext is returned for non-system operations submitted
	// without a producer context.
	ErrMissingContext = errors.New("operation requires a producer context")
)

// DuplicateRegistrationError reports a register call for an ID that is
// already present in the registry.
type DuplicateRegistrationError struct {
	ID    string
	Label string
}

// Error renders the duplicate registration.
func (e *DuplicateRegistrationError) Error() string {
	return fmt.Sprintf("register %s (%s): id already registered", e.ID, e.Label)
}

// CapacityExceededError reports a register call against a full registry.
type CapacityExceededError struct {
	Limit int
}

// Error renders the capacity rejection.
func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("register: %d concurrent producers already active", e.Limit)
}

// UnregisteredProducerError reports an attributed operation whose context is
// not in the registry. This is a protocol violation by the producer.
type UnregisteredProducerError struct {
	ID    string
	Label string
}

// Error renders the rejected producer.
func (e *UnregisteredProducerError) Error() string {
	return fmt.Sprintf("write for %s (%s): producer is not registered", e.ID, e.Label)
}
