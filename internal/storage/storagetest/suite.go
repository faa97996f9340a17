// Package storagetest holds the behavior every storage backend must share.
// Backend packages embed Suite in their own test suite and set NewStorage.
package storagetest

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/Jirawatp058/random-buddy/internal/model"
	"github.com/Jirawatp058/random-buddy/internal/storage"
)

// Suite is the storage conformance suite
type Suite struct {
	suite.Suite

	// NewStorage returns an empty store; called before every test
	NewStorage func() storage.Storage

	Store storage.Storage
	Ctx   context.Context
	Base  time.Time
}

func (s *Suite) SetupTest() {
	s.Require().NotNil(s.NewStorage, "NewStorage must be set")
	s.Store = s.NewStorage()
	s.Ctx = context.Background()
	s.Base = time.Date(2024, 12, 1, 9, 0, 0, 0, time.UTC)
}

func (s *Suite) TearDownTest() {
	if s.Store != nil {
		_ = s.Store.Close()
	}
}

// Register stores a participant registered n minutes after Base
func (s *Suite) Register(name string, n int) *model.Participant {
	p := &model.Participant{
		Name:         name,
		Credential:   "plain:pw-" + name,
		Size:         "M",
		RegisteredAt: s.Base.Add(time.Duration(n) * time.Minute),
	}
	s.Require().NoError(s.Store.CreateParticipant(s.Ctx, p))
	return p
}

func (s *Suite) names() []string {
	ps, err := s.Store.ListParticipants(s.Ctx)
	s.Require().NoError(err)
	return model.ParticipantNames(ps)
}

func (s *Suite) cycle(names ...string) model.Assignment {
	m := make(map[string]string, len(names))
	for i, n := range names {
		m[n] = names[(i+1)%len(names)]
	}
	return model.NewAssignment(m)
}

func (s *Suite) exchange() *model.Exchange {
	ex, err := s.Store.GetExchange(s.Ctx)
	s.Require().NoError(err)
	return ex
}

// Exchange state

func (s *Suite) TestNewStoreIsOpenAndEmpty() {
	ex := s.exchange()
	s.Equal(model.ExchangeStateOpen, ex.State)
	s.Nil(ex.MatchedAt)
	s.Empty(s.names())

	pairs, err := s.Store.ListExclusions(s.Ctx)
	s.Require().NoError(err)
	s.Empty(pairs)
}

// Participants

func (s *Suite) TestCreateAndGetParticipant() {
	want := s.Register("Alice", 0)

	got, err := s.Store.GetParticipant(s.Ctx, "Alice")
	s.Require().NoError(err)
	s.Equal(want.Name, got.Name)
	s.Equal(want.Credential, got.Credential)
	s.Equal(want.Size, got.Size)
	s.Empty(got.Recipient)
	s.False(got.Viewed)
	s.True(want.RegisteredAt.Equal(got.RegisteredAt), "registered at %v, got %v", want.RegisteredAt, got.RegisteredAt)
}

func (s *Suite) TestParticipantFieldsKeepUnicode() {
	p := &model.Participant{
		Name:         "สมชาย",
		Credential:   "plain:รหัส",
		Size:         "รอบอก 40 นิ้ว",
		RegisteredAt: s.Base,
	}
	s.Require().NoError(s.Store.CreateParticipant(s.Ctx, p))

	got, err := s.Store.GetParticipant(s.Ctx, "สมชาย")
	s.Require().NoError(err)
	s.Equal("รอบอก 40 นิ้ว", got.Size)
	s.Equal("plain:รหัส", got.Credential)
}

func (s *Suite) TestCreateDuplicateNameKeepsOriginal() {
	s.Register("Alice", 0)

	err := s.Store.CreateParticipant(s.Ctx, &model.Participant{
		Name:         "Alice",
		Credential:   "plain:other",
		Size:         "XL",
		RegisteredAt: s.Base.Add(time.Hour),
	})
	s.ErrorIs(err, model.ErrDuplicateName)

	got, err := s.Store.GetParticipant(s.Ctx, "Alice")
	s.Require().NoError(err)
	s.Equal("M", got.Size)
	s.Equal("plain:pw-Alice", got.Credential)
}

func (s *Suite) TestNamesAreCaseSensitive() {
	s.Register("Alice", 0)
	s.Register("alice", 1)

	s.Equal([]string{"Alice", "alice"}, s.names())
}

func (s *Suite) TestGetUnknownParticipant() {
	_, err := s.Store.GetParticipant(s.Ctx, "Nobody")
	s.ErrorIs(err, model.ErrParticipantNotFound)
}

func (s *Suite) TestListParticipantsOrderedByRegistration() {
	s.Register("Carol", 2)
	s.Register("Alice", 0)
	s.Register("Bob", 1)
	s.Register("Aaron", 1)

	s.Equal([]string{"Alice", "Aaron", "Bob", "Carol"}, s.names())
}

func (s *Suite) TestDeleteParticipantCascadesExclusions() {
	s.Register("Alice", 0)
	s.Register("Bob", 1)
	s.Register("Carol", 2)
	s.Require().NoError(s.Store.AddExclusion(s.Ctx, model.NewExclusionPair("Alice", "Bob")))
	s.Require().NoError(s.Store.AddExclusion(s.Ctx, model.NewExclusionPair("Bob", "Carol")))
	s.Require().NoError(s.Store.AddExclusion(s.Ctx, model.NewExclusionPair("Alice", "Carol")))

	s.Require().NoError(s.Store.DeleteParticipant(s.Ctx, "Bob"))

	s.Equal([]string{"Alice", "Carol"}, s.names())
	pairs, err := s.Store.ListExclusions(s.Ctx)
	s.Require().NoError(err)
	s.Equal([]model.ExclusionPair{{A: "Alice", B: "Carol"}}, pairs)
}

func (s *Suite) TestDeleteUnknownParticipant() {
	err := s.Store.DeleteParticipant(s.Ctx, "Nobody")
	s.ErrorIs(err, model.ErrParticipantNotFound)
}

func (s *Suite) TestMarkViewed() {
	s.Register("Alice", 0)

	first, err := s.Store.MarkViewed(s.Ctx, "Alice")
	s.Require().NoError(err)
	s.True(first)

	got, err := s.Store.GetParticipant(s.Ctx, "Alice")
	s.Require().NoError(err)
	s.True(got.Viewed)

	again, err := s.Store.MarkViewed(s.Ctx, "Alice")
	s.Require().NoError(err)
	s.False(again)

	_, err = s.Store.MarkViewed(s.Ctx, "Nobody")
	s.ErrorIs(err, model.ErrParticipantNotFound)
}

func (s *Suite) TestMarkViewedConcurrentFirst() {
	s.Register("Alice", 0)

	const callers = 8
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		firsts int
	)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			first, err := s.Store.MarkViewed(s.Ctx, "Alice")
			if err != nil {
				s.ErrorIs(err, model.ErrConflict)
				return
			}
			if first {
				mu.Lock()
				firsts++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	s.Equal(1, firsts)
}

// Exclusions

func (s *Suite) TestAddExclusionIsSymmetricAndIdempotent() {
	s.Register("Alice", 0)
	s.Register("Bob", 1)

	s.Require().NoError(s.Store.AddExclusion(s.Ctx, model.NewExclusionPair("Bob", "Alice")))
	s.Require().NoError(s.Store.AddExclusion(s.Ctx, model.NewExclusionPair("Alice", "Bob")))

	pairs, err := s.Store.ListExclusions(s.Ctx)
	s.Require().NoError(err)
	s.Equal([]model.ExclusionPair{{A: "Alice", B: "Bob"}}, pairs)
}

func (s *Suite) TestAddExclusionRequiresBothParticipants() {
	s.Register("Alice", 0)

	err := s.Store.AddExclusion(s.Ctx, model.NewExclusionPair("Alice", "Ghost"))
	s.ErrorIs(err, model.ErrParticipantNotFound)

	pairs, err := s.Store.ListExclusions(s.Ctx)
	s.Require().NoError(err)
	s.Empty(pairs)
}

func (s *Suite) TestRemoveExclusion() {
	s.Register("Alice", 0)
	s.Register("Bob", 1)
	s.Require().NoError(s.Store.AddExclusion(s.Ctx, model.NewExclusionPair("Alice", "Bob")))

	s.Require().NoError(s.Store.RemoveExclusion(s.Ctx, model.NewExclusionPair("Bob", "Alice")))
	// Removing a pair that is not present is not an error.
	s.Require().NoError(s.Store.RemoveExclusion(s.Ctx, model.NewExclusionPair("Bob", "Alice")))

	pairs, err := s.Store.ListExclusions(s.Ctx)
	s.Require().NoError(err)
	s.Empty(pairs)
}

func (s *Suite) TestExclusionsAllowedWhileClosed() {
	s.Register("Alice", 0)
	s.Register("Bob", 1)
	s.Register("Carol", 2)
	s.Require().NoError(s.Store.CommitMatch(s.Ctx, s.cycle("Alice", "Bob", "Carol"), s.Base))

	s.Require().NoError(s.Store.AddExclusion(s.Ctx, model.NewExclusionPair("Alice", "Bob")))
	s.Require().NoError(s.Store.RemoveExclusion(s.Ctx, model.NewExclusionPair("Alice", "Bob")))
}

// Matching

func (s *Suite) TestCommitMatch() {
	s.Register("Alice", 0)
	s.Register("Bob", 1)
	s.Register("Carol", 2)
	at := s.Base.Add(time.Hour)

	s.Require().NoError(s.Store.CommitMatch(s.Ctx, s.cycle("Alice", "Bob", "Carol"), at))

	ex := s.exchange()
	s.Equal(model.ExchangeStateClosed, ex.State)
	s.Require().NotNil(ex.MatchedAt)
	s.True(at.Equal(*ex.MatchedAt))

	ps, err := s.Store.ListParticipants(s.Ctx)
	s.Require().NoError(err)
	got := make(map[string]string)
	for _, p := range ps {
		got[p.Name] = p.Recipient
	}
	s.Equal(map[string]string{"Alice": "Bob", "Bob": "Carol", "Carol": "Alice"}, got)
}

func (s *Suite) TestCommitMatchWhenClosed() {
	s.Register("Alice", 0)
	s.Register("Bob", 1)
	s.Register("Carol", 2)
	s.Require().NoError(s.Store.CommitMatch(s.Ctx, s.cycle("Alice", "Bob", "Carol"), s.Base))

	err := s.Store.CommitMatch(s.Ctx, s.cycle("Alice", "Carol", "Bob"), s.Base.Add(time.Hour))
	s.ErrorIs(err, model.ErrAlreadyMatched)

	alice, err := s.Store.GetParticipant(s.Ctx, "Alice")
	s.Require().NoError(err)
	s.Equal("Bob", alice.Recipient)
	s.True(s.Base.Equal(*s.exchange().MatchedAt))
}

func (s *Suite) TestCommitMatchRejectsChangedRoster() {
	s.Register("Alice", 0)
	s.Register("Bob", 1)
	s.Register("Carol", 2)

	err := s.Store.CommitMatch(s.Ctx, s.cycle("Alice", "Bob"), s.Base)
	s.ErrorIs(err, model.ErrRosterChanged)
	s.ErrorIs(err, model.ErrConflict)

	s.Equal(model.ExchangeStateOpen, s.exchange().State)
	alice, err := s.Store.GetParticipant(s.Ctx, "Alice")
	s.Require().NoError(err)
	s.Empty(alice.Recipient)
}

func (s *Suite) TestCommitMatchRejectsExcludedPair() {
	s.Register("Alice", 0)
	s.Register("Bob", 1)
	s.Register("Carol", 2)
	s.Require().NoError(s.Store.AddExclusion(s.Ctx, model.NewExclusionPair("Alice", "Bob")))

	err := s.Store.CommitMatch(s.Ctx, s.cycle("Alice", "Bob", "Carol"), s.Base)
	s.ErrorIs(err, model.ErrConflict)
	s.Equal(model.ExchangeStateOpen, s.exchange().State)
}

func (s *Suite) TestRegistrationClosedAfterMatch() {
	s.Register("Alice", 0)
	s.Register("Bob", 1)
	s.Require().NoError(s.Store.CommitMatch(s.Ctx, s.cycle("Alice", "Bob"), s.Base))

	err := s.Store.CreateParticipant(s.Ctx, &model.Participant{
		Name: "Carol", Credential: "plain:x", Size: "S", RegisteredAt: s.Base,
	})
	s.ErrorIs(err, model.ErrRegistrationClosed)
	s.ErrorIs(err, model.ErrInvalidState)

	s.ErrorIs(s.Store.DeleteParticipant(s.Ctx, "Alice"), model.ErrAlreadyMatched)
	s.Equal([]string{"Alice", "Bob"}, s.names())
}

// Reset

func (s *Suite) TestResetClearRoster() {
	s.Register("Alice", 0)
	s.Register("Bob", 1)
	s.Register("Carol", 2)
	s.Require().NoError(s.Store.CommitMatch(s.Ctx, s.cycle("Alice", "Carol", "Bob"), s.Base))
	s.Require().NoError(s.Store.AddExclusion(s.Ctx, model.NewExclusionPair("Alice", "Bob")))

	s.Require().NoError(s.Store.Reset(s.Ctx, model.ResetPolicyClearRoster))

	ex := s.exchange()
	s.Equal(model.ExchangeStateOpen, ex.State)
	s.Nil(ex.MatchedAt)
	s.Empty(s.names())
	pairs, err := s.Store.ListExclusions(s.Ctx)
	s.Require().NoError(err)
	s.Empty(pairs)

	// Names are free again.
	s.Register("Alice", 5)
}

func (s *Suite) TestResetKeepRoster() {
	s.Register("Alice", 0)
	s.Register("Bob", 1)
	s.Register("Carol", 2)
	s.Require().NoError(s.Store.CommitMatch(s.Ctx, s.cycle("Alice", "Carol", "Bob"), s.Base))
	s.Require().NoError(s.Store.AddExclusion(s.Ctx, model.NewExclusionPair("Alice", "Bob")))
	_, err := s.Store.MarkViewed(s.Ctx, "Alice")
	s.Require().NoError(err)

	s.Require().NoError(s.Store.Reset(s.Ctx, model.ResetPolicyKeepRoster))

	ex := s.exchange()
	s.Equal(model.ExchangeStateOpen, ex.State)
	s.Nil(ex.MatchedAt)

	ps, err := s.Store.ListParticipants(s.Ctx)
	s.Require().NoError(err)
	s.Len(ps, 3)
	for _, p := range ps {
		s.Empty(p.Recipient, p.Name)
		s.False(p.Viewed, p.Name)
	}

	pairs, err := s.Store.ListExclusions(s.Ctx)
	s.Require().NoError(err)
	s.Equal([]model.ExclusionPair{{A: "Alice", B: "Bob"}}, pairs)

	// Existing names stay taken.
	err = s.Store.CreateParticipant(s.Ctx, &model.Participant{
		Name: "Alice", Credential: "plain:x", Size: "S", RegisteredAt: s.Base,
	})
	s.ErrorIs(err, model.ErrDuplicateName)
}

func (s *Suite) TestResetWhileOpenIsHarmless() {
	s.Register("Alice", 0)

	s.Require().NoError(s.Store.Reset(s.Ctx, model.ResetPolicyKeepRoster))

	s.Equal([]string{"Alice"}, s.names())
	s.Equal(model.ExchangeStateOpen, s.exchange().State)
}
