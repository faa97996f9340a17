package factory

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Jirawatp058/random-buddy/internal/dependencies/mocks"
	"github.com/Jirawatp058/random-buddy/internal/services/auth"
	"github.com/Jirawatp058/random-buddy/internal/services/exchange"
	"github.com/Jirawatp058/random-buddy/internal/services/matching"
	"github.com/Jirawatp058/random-buddy/internal/storage/memory"
	"github.com/Jirawatp058/random-buddy/internal/testutil"
)

// TestAdminPassword is the admin password of every TestApp
const TestAdminPassword = "admin-secret"

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	return NewTestAppWithConfig(exchange.DefaultConfig())
}

// NewTestAppWithConfig creates a TestApp with the given exchange settings
func NewTestAppWithConfig(exchangeCfg exchange.Config) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 12, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, mockClock, mockRandom, dependencyConfig{
		auth:     auth.Config{AdminPassword: TestAdminPassword, SessionDuration: 12 * time.Hour},
		matching: matching.DefaultConfig(),
		exchange: exchangeCfg,
		cost:     bcrypt.MinCost,
		logger:   testutil.NopLogger(),
	})

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
