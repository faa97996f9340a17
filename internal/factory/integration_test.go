package factory

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/Jirawatp058/random-buddy/internal/model"
	"github.com/Jirawatp058/random-buddy/internal/services/exchange"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

func (s *IntegrationSuite) register(names ...string) {
	for _, name := range names {
		_, err := s.app.ExchangeController.Register(s.ctx, name, "pw-"+name, "size-"+name)
		s.Require().NoError(err)
		s.app.MockClock.Advance(time.Minute)
	}
}

// Test: Complete exchange from registration to every participant revealing
func (s *IntegrationSuite) TestCompleteExchangeFlow() {
	ctrl := s.app.ExchangeController

	// Step 1: Participants register
	s.register("Alice", "Bob", "Carol", "Dave")

	// Step 2: Admin logs in and excludes a couple
	session, err := s.app.AuthService.AdminLogin(TestAdminPassword)
	s.Require().NoError(err)
	_, err = s.app.AuthService.ValidateSession(session.Token)
	s.Require().NoError(err)
	s.Require().NoError(ctrl.SetExclusion(s.ctx, "Alice", "Bob"))

	feasible, err := ctrl.Feasibility(s.ctx)
	s.Require().NoError(err)
	s.True(feasible)

	// Step 3: Match. This shuffle draws Alice->Carol, Bob->Dave, Carol->Bob, Dave->Alice.
	s.app.MockRandom.QueueIntn(0, 1, 0)
	result, err := ctrl.RunMatch(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, result.Attempts)

	// Step 4: Each participant reveals exactly their recipient
	seen := map[string]bool{}
	for _, name := range []string{"Alice", "Bob", "Carol", "Dave"} {
		reveal, err := ctrl.Reveal(s.ctx, name, "pw-"+name)
		s.Require().NoError(err)
		s.NotEqual(name, reveal.Recipient)
		s.Equal("size-"+reveal.Recipient, reveal.RecipientSize)
		s.True(reveal.FirstView)
		s.False(seen[reveal.Recipient], "recipient drawn twice")
		seen[reveal.Recipient] = true
	}
	s.Len(seen, 4)

	alice, err := ctrl.Reveal(s.ctx, "Alice", "pw-Alice")
	s.Require().NoError(err)
	s.NotEqual("Bob", alice.Recipient)

	// Step 5: Registration is closed until reset
	_, err = ctrl.Register(s.ctx, "Erin", "pw", "M")
	s.ErrorIs(err, model.ErrRegistrationClosed)

	s.Require().NoError(ctrl.Reset(s.ctx))
	ex, err := ctrl.Status(s.ctx)
	s.Require().NoError(err)
	s.True(ex.IsOpen())
	s.register("Erin")
}

// Test: An infeasible roster is reported and can be repaired
func (s *IntegrationSuite) TestInfeasibleThenRepaired() {
	ctrl := s.app.ExchangeController
	s.register("Alice", "Bob", "Carol")
	s.Require().NoError(ctrl.SetExclusion(s.ctx, "Alice", "Bob"))

	feasible, err := ctrl.Feasibility(s.ctx)
	s.Require().NoError(err)
	s.False(feasible)

	_, err = ctrl.RunMatch(s.ctx)
	s.ErrorIs(err, model.ErrInfeasible)

	s.register("Dave")
	_, err = ctrl.RunMatch(s.ctx)
	s.NoError(err)
}

// Test: Keep-roster reset allows a second draw over the same people
func (s *IntegrationSuite) TestKeepRosterRedraw() {
	s.app = NewTestAppWithConfig(exchange.Config{ResetPolicy: model.ResetPolicyKeepRoster})
	ctrl := s.app.ExchangeController
	s.register("Alice", "Bob")
	s.Require().NoError(ctrl.SetExclusion(s.ctx, "Alice", "Bob"))
	s.Require().NoError(ctrl.ClearExclusion(s.ctx, "Alice", "Bob"))

	_, err := ctrl.RunMatch(s.ctx)
	s.Require().NoError(err)
	s.Require().NoError(ctrl.Reset(s.ctx))
	_, err = ctrl.RunMatch(s.ctx)
	s.Require().NoError(err)

	bob, err := ctrl.Reveal(s.ctx, "Bob", "pw-Bob")
	s.Require().NoError(err)
	s.Equal("Alice", bob.Recipient)
}

// Factory construction

func TestNewWithMemoryStorage(t *testing.T) {
	app, err := New(context.Background(), Config{})
	if err != nil {
		t.Fatal(err)
	}
	defer app.Close()

	if app.ExchangeController == nil || app.AuthService == nil || app.MatchingService == nil {
		t.Fatal("expected all services to be wired")
	}
}

func TestNewWithSQLiteStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "buddy.db")
	app, err := New(context.Background(), Config{StorageType: StorageTypeSQLite, SQLitePath: path})
	if err != nil {
		t.Fatal(err)
	}
	defer app.Close()

	if _, err := app.ExchangeController.Register(context.Background(), "Alice", "pw", "M"); err != nil {
		t.Fatal(err)
	}
}

func TestNewRejectsBadStorageConfig(t *testing.T) {
	tests := []Config{
		{StorageType: "postgres"},
		{StorageType: StorageTypeRedis},
		{StorageType: StorageTypeSQLite},
		{StorageType: StorageTypeDynamoDB},
	}
	for _, cfg := range tests {
		if _, err := New(context.Background(), cfg); err == nil {
			t.Errorf("expected error for storage type %q", cfg.StorageType)
		}
	}
}
