package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/Jirawatp058/random-buddy/internal/model"
	"github.com/Jirawatp058/random-buddy/internal/storage"
	"github.com/Jirawatp058/random-buddy/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
	path string
}

func TestStorageSuite(t *testing.T) {
	s := &StorageSuite{}
	s.NewStorage = func() storage.Storage {
		s.path = filepath.Join(s.T().TempDir(), "buddy.db")
		store, err := New(context.Background(), s.path)
		s.Require().NoError(err)
		return store
	}
	suite.Run(t, s)
}

func (s *StorageSuite) TestDataSurvivesReopen() {
	s.Register("Alice", 0)
	s.Register("Bob", 1)
	a := model.NewAssignment(map[string]string{"Alice": "Bob", "Bob": "Alice"})
	s.Require().NoError(s.Store.CommitMatch(s.Ctx, a, s.Base))
	s.Require().NoError(s.Store.Close())

	reopened, err := New(s.Ctx, s.path)
	s.Require().NoError(err)
	s.Store = reopened

	ex, err := reopened.GetExchange(s.Ctx)
	s.Require().NoError(err)
	s.Equal(model.ExchangeStateClosed, ex.State)
	s.Require().NotNil(ex.MatchedAt)
	s.True(s.Base.Equal(*ex.MatchedAt))

	bob, err := reopened.GetParticipant(s.Ctx, "Bob")
	s.Require().NoError(err)
	s.Equal("Alice", bob.Recipient)
}

func (s *StorageSuite) TestStoresExclusionsInBothDirections() {
	s.Register("Alice", 0)
	s.Register("Bob", 1)
	s.Require().NoError(s.Store.AddExclusion(s.Ctx, model.NewExclusionPair("Alice", "Bob")))

	store := s.Store.(*Storage)
	var n int
	s.Require().NoError(store.db.QueryRowContext(s.Ctx, `SELECT COUNT(*) FROM exclusions`).Scan(&n))
	s.Equal(2, n)
}

func TestOpensLegacyDatabase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "legacy.db")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	for _, stmt := range []string{
		`CREATE TABLE system_config (key TEXT PRIMARY KEY, value TEXT)`,
		`CREATE TABLE users (name TEXT PRIMARY KEY, password TEXT, size TEXT, buddy TEXT, checked INTEGER DEFAULT 0)`,
		`CREATE TABLE exclusions (user1 TEXT, user2 TEXT, PRIMARY KEY (user1, user2))`,
		`INSERT INTO system_config (key, value) VALUES ('state', 'MATCHED'), ('matched_at', '2024-12-20T14:03:11.250Z')`,
		`INSERT INTO users (name, password, size, buddy, checked) VALUES ('Alice', '1234', 'M', 'Bob', 1), ('Bob', 'abcd', 'รอบอก 40 นิ้ว', 'Alice', 0)`,
		`INSERT INTO exclusions (user1, user2) VALUES ('Alice', 'Bob'), ('Bob', 'Alice')`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatal(err)
		}
	}
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}

	store, err := New(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	s := &legacyChecks{store: store, ctx: ctx}
	suite.Run(t, s)
}

type legacyChecks struct {
	suite.Suite
	store *Storage
	ctx   context.Context
}

func (s *legacyChecks) TestStateAndTimestamp() {
	ex, err := s.store.GetExchange(s.ctx)
	s.Require().NoError(err)
	s.Equal(model.ExchangeStateClosed, ex.State)
	s.Require().NotNil(ex.MatchedAt)
	s.Equal(250, ex.MatchedAt.Nanosecond()/1e6)
}

func (s *legacyChecks) TestParticipants() {
	ps, err := s.store.ListParticipants(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(ps, 2)

	s.Equal("Alice", ps[0].Name)
	s.Equal("1234", ps[0].Credential)
	s.Equal("Bob", ps[0].Recipient)
	s.True(ps[0].Viewed)
	s.True(ps[0].RegisteredAt.IsZero())

	s.Equal("รอบอก 40 นิ้ว", ps[1].Size)
	s.False(ps[1].Viewed)
}

func (s *legacyChecks) TestExclusions() {
	pairs, err := s.store.ListExclusions(s.ctx)
	s.Require().NoError(err)
	s.Equal([]model.ExclusionPair{{A: "Alice", B: "Bob"}}, pairs)
}
