package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Jirawatp058/random-buddy/internal/model"
	"github.com/Jirawatp058/random-buddy/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu   sync.RWMutex
	snap *model.Snapshot
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		snap: model.NewSnapshot(),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Close is a no-op
func (s *Storage) Close() error {
	return nil
}

func (s *Storage) GetExchange(ctx context.Context) (*model.Exchange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ex := s.snap.Exchange.Clone()
	return &ex, nil
}

// Participant operations

func (s *Storage) CreateParticipant(ctx context.Context, p *model.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.AddParticipant(p)
}

func (s *Storage) GetParticipant(ctx context.Context, name string) (*model.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Participant(name)
}

func (s *Storage) ListParticipants(ctx context.Context) ([]*model.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.ParticipantList(), nil
}

func (s *Storage) DeleteParticipant(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.RemoveParticipant(name)
}

func (s *Storage) MarkViewed(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.MarkViewed(name)
}

// Exclusion operations

func (s *Storage) AddExclusion(ctx context.Context, pair model.ExclusionPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.AddExclusion(pair)
}

func (s *Storage) RemoveExclusion(ctx context.Context, pair model.ExclusionPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.RemoveExclusion(pair)
	return nil
}

func (s *Storage) ListExclusions(ctx context.Context) ([]model.ExclusionPair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Exclusions.Pairs(), nil
}

// Lifecycle

func (s *Storage) CommitMatch(ctx context.Context, a model.Assignment, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Apply to a copy so a rejected commit leaves no trace.
	next := s.snap.Clone()
	if err := next.ApplyMatch(a, at); err != nil {
		return err
	}
	s.snap = next
	return nil
}

func (s *Storage) Reset(ctx context.Context, policy model.ResetPolicy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Reset(policy)
	return nil
}
