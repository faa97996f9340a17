package model

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	// Participant errors
	ErrDuplicateName       = errors.New("a participant with that name is already registered")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrBadCredential       = errors.New("password does not match")
	ErrInvalidParticipant  = errors.New("invalid participant")

	// Exchange state errors. The specific reasons wrap ErrInvalidState so
	// callers can test for the family or the exact reason.
	ErrInvalidState             = errors.New("operation not permitted in the current exchange state")
	ErrRegistrationClosed       = fmt.Errorf("registration is closed: %w", ErrInvalidState)
	ErrAlreadyMatched           = fmt.Errorf("matching has already been run: %w", ErrInvalidState)
	ErrNotMatched               = fmt.Errorf("matching has not been run yet: %w", ErrInvalidState)
	ErrInsufficientParticipants = fmt.Errorf("at least two participants are required: %w", ErrInvalidState)

	// Matching errors
	ErrInfeasible        = errors.New("no valid assignment satisfies the exclusions")
	ErrInvalidMatchInput = errors.New("invalid matching input")

	// Concurrency errors
	ErrConflict          = errors.New("concurrent modification")
	ErrRosterChanged     = fmt.Errorf("participants changed while matching: %w", ErrConflict)
	ErrExclusionsChanged = fmt.Errorf("exclusions changed while matching: %w", ErrConflict)

	// ErrBackendFailure is matched by every *BackendError.
	ErrBackendFailure = errors.New("storage backend failure")
)

// BackendError wraps an unexpected failure of the persistence layer
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// Is reports ErrBackendFailure as a match so callers need not know the cause.
func (e *BackendError) Is(target error) bool {
	return target == ErrBackendFailure
}

// IsDomainError reports whether err is one of the application's own sentinel
// errors rather than an unexpected infrastructure failure.
func IsDomainError(err error) bool {
	for _, target := range []error{
		ErrDuplicateName,
		ErrParticipantNotFound,
		ErrBadCredential,
		ErrInvalidParticipant,
		ErrInvalidState,
		ErrInfeasible,
		ErrInvalidMatchInput,
		ErrConflict,
		ErrBackendFailure,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
