package storage

import (
	"context"
	"time"

	"github.com/Jirawatp058/random-buddy/internal/model"
)

// Storage defines the interface for exchange persistence.
//
// Composite operations (CreateParticipant, DeleteParticipant, CommitMatch,
// Reset) are atomic with respect to the store, so several server processes
// can share one backend.
type Storage interface {
	// Exchange state
	GetExchange(ctx context.Context) (*model.Exchange, error)

	// Participant operations

	// CreateParticipant stores p if the exchange is open and the name is free.
	// Returns model.ErrRegistrationClosed or model.ErrDuplicateName otherwise.
	CreateParticipant(ctx context.Context, p *model.Participant) error
	GetParticipant(ctx context.Context, name string) (*model.Participant, error)
	// ListParticipants returns participants ordered by registration time, then name
	ListParticipants(ctx context.Context) ([]*model.Participant, error)
	// DeleteParticipant removes a participant and their exclusions while the exchange is open
	DeleteParticipant(ctx context.Context, name string) error
	// MarkViewed sets the viewed flag; first is true only for the call that set it
	MarkViewed(ctx context.Context, name string) (first bool, err error)

	// Exclusion operations

	// AddExclusion requires both participants to exist
	AddExclusion(ctx context.Context, pair model.ExclusionPair) error
	RemoveExclusion(ctx context.Context, pair model.ExclusionPair) error
	ListExclusions(ctx context.Context) ([]model.ExclusionPair, error)

	// Lifecycle

	// CommitMatch persists every recipient and closes the exchange in one step.
	// It fails with model.ErrAlreadyMatched if the exchange is closed and with a
	// model.ErrConflict error if the roster or exclusions no longer fit.
	CommitMatch(ctx context.Context, a model.Assignment, at time.Time) error
	// Reset reopens the exchange, applying policy
	Reset(ctx context.Context, policy model.ResetPolicy) error

	Close() error
}
