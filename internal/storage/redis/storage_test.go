package redis

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/Jirawatp058/random-buddy/internal/model"
	"github.com/Jirawatp058/random-buddy/internal/storage"
	"github.com/Jirawatp058/random-buddy/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
	mini *miniredis.Miniredis
}

func TestStorageSuite(t *testing.T) {
	s := &StorageSuite{}
	s.NewStorage = func() storage.Storage {
		s.mini = miniredis.RunT(s.T())
		return s.newStorage()
	}
	suite.Run(t, s)
}

func (s *StorageSuite) newStorage() *Storage {
	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})
	return NewWithClient(client, DefaultConfig())
}

func (s *StorageSuite) TestKeyLayout() {
	s.Register("Alice", 0)
	s.Register("Bob", 1)
	s.Require().NoError(s.Store.AddExclusion(s.Ctx, model.NewExclusionPair("Alice", "Bob")))

	s.True(s.mini.Exists("buddy:participant:Alice"))
	members, err := s.mini.Members("buddy:idx:participants")
	s.Require().NoError(err)
	s.ElementsMatch([]string{"Alice", "Bob"}, members)

	members, err = s.mini.Members("buddy:exclusions:Bob")
	s.Require().NoError(err)
	s.Equal([]string{"Alice"}, members)

	// The exchange key is only written once matching closes registration.
	s.False(s.mini.Exists("buddy:exchange"))
}

func (s *StorageSuite) TestStateIsSharedBetweenInstances() {
	other := s.newStorage()
	defer other.Close()

	s.Register("Alice", 0)
	s.Register("Bob", 1)

	err := other.CreateParticipant(s.Ctx, &model.Participant{Name: "Alice", Credential: "plain:x", Size: "S", RegisteredAt: s.Base})
	s.ErrorIs(err, model.ErrDuplicateName)

	a := model.NewAssignment(map[string]string{"Alice": "Bob", "Bob": "Alice"})
	s.Require().NoError(other.CommitMatch(s.Ctx, a, s.Base))

	ex, err := s.Store.GetExchange(s.Ctx)
	s.Require().NoError(err)
	s.Equal(model.ExchangeStateClosed, ex.State)
}

func (s *StorageSuite) TestStrayExclusionMembersAreIgnored() {
	s.Register("Alice", 0)
	s.Register("Bob", 1)
	_, err := s.mini.SetAdd("buddy:exclusions:Alice", "Ghost")
	s.Require().NoError(err)

	pairs, err := s.Store.ListExclusions(s.Ctx)
	s.Require().NoError(err)
	s.Empty(pairs)
}

func (s *StorageSuite) TestClearRosterRemovesAllKeys() {
	s.Register("Alice", 0)
	s.Register("Bob", 1)
	s.Require().NoError(s.Store.AddExclusion(s.Ctx, model.NewExclusionPair("Alice", "Bob")))

	s.Require().NoError(s.Store.Reset(s.Ctx, model.ResetPolicyClearRoster))

	s.Empty(s.mini.Keys())
}
