package matching

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/suite"

	"github.com/Jirawatp058/random-buddy/internal/dependencies/mocks"
	"github.com/Jirawatp058/random-buddy/internal/dependencies/random"
	"github.com/Jirawatp058/random-buddy/internal/model"
	"github.com/Jirawatp058/random-buddy/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	random *mocks.MockRandom
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.random = mocks.NewMockRandom()
}

func (s *ServiceSuite) newService(cfg Config) *Service {
	return New(s.random, cfg, testutil.NopLogger())
}

func (s *ServiceSuite) realService() *Service {
	return New(random.New(), DefaultConfig(), testutil.NopLogger())
}

// assertDerangement checks the assignment is a bijection with no fixed points
// and no excluded pairs.
func (s *ServiceSuite) assertDerangement(names []string, exclusions model.ExclusionSet, a model.Assignment) {
	s.Require().NoError(a.Validate(names, exclusions))
	seen := make(map[string]bool)
	for _, p := range a.Pairs() {
		s.NotEqual(p.Giver, p.Recipient)
		s.False(exclusions.Excludes(p.Giver, p.Recipient), "%s -> %s is excluded", p.Giver, p.Recipient)
		s.False(seen[p.Recipient], "%s drawn twice", p.Recipient)
		seen[p.Recipient] = true
	}
	s.Len(seen, len(names))
}

// Deterministic shuffles

func (s *ServiceSuite) TestZeroShuffleProducesSingleCycle() {
	result, err := s.newService(DefaultConfig()).Match([]string{"A", "B", "C", "D"}, model.NewExclusionSet())
	s.Require().NoError(err)

	want := []model.AssignmentPair{
		{Giver: "A", Recipient: "B"},
		{Giver: "B", Recipient: "C"},
		{Giver: "C", Recipient: "D"},
		{Giver: "D", Recipient: "A"},
	}
	if diff := cmp.Diff(want, result.Assignment.Pairs()); diff != "" {
		s.Failf("unexpected assignment", "(-want +got):\n%s", diff)
	}
	s.Equal(1, result.Attempts)
	s.False(result.Exact)
}

func (s *ServiceSuite) TestRejectsFixedPointAndRetries() {
	// First shuffle is the identity (j == i at every step), second is all zeros.
	s.random.QueueIntn(2, 1)

	result, err := s.newService(DefaultConfig()).Match([]string{"A", "B", "C"}, model.NewExclusionSet())
	s.Require().NoError(err)

	s.Equal(2, result.Attempts)
	s.assertDerangement([]string{"A", "B", "C"}, model.NewExclusionSet(), result.Assignment)
}

func (s *ServiceSuite) TestTwoParticipantsSwap() {
	result, err := s.newService(DefaultConfig()).Match([]string{"Alice", "Bob"}, model.NewExclusionSet())
	s.Require().NoError(err)

	r, ok := result.Assignment.Recipient("Alice")
	s.True(ok)
	s.Equal("Bob", r)
	r, _ = result.Assignment.Recipient("Bob")
	s.Equal("Alice", r)
}

// Exhaustion behavior

func (s *ServiceSuite) TestExhaustionWithoutFallbackIsInfeasible() {
	// All-zero shuffles always give A -> B, which is excluded.
	exclusions := model.NewExclusionSet(model.NewExclusionPair("A", "B"))
	svc := s.newService(Config{MaxAttempts: 10, ExactFallback: false})

	_, err := svc.Match([]string{"A", "B", "C", "D"}, exclusions)
	s.ErrorIs(err, model.ErrInfeasible)
	s.Equal(30, s.random.Calls)
}

func (s *ServiceSuite) TestExhaustionFallsBackToExactSearch() {
	exclusions := model.NewExclusionSet(model.NewExclusionPair("A", "B"))
	svc := s.newService(Config{MaxAttempts: 10, ExactFallback: true})

	result, err := svc.Match([]string{"A", "B", "C", "D"}, exclusions)
	s.Require().NoError(err)
	s.True(result.Exact)
	s.Equal(10, result.Attempts)
	s.assertDerangement([]string{"A", "B", "C", "D"}, exclusions, result.Assignment)
}

// Infeasible inputs

func (s *ServiceSuite) TestTwoExcludedParticipantsAreInfeasible() {
	exclusions := model.NewExclusionSet(model.NewExclusionPair("Alice", "Bob"))

	_, err := s.newService(DefaultConfig()).Match([]string{"Alice", "Bob"}, exclusions)
	s.ErrorIs(err, model.ErrInfeasible)
}

func (s *ServiceSuite) TestTwoExcludedParticipantsAreInfeasibleWithoutFallback() {
	exclusions := model.NewExclusionSet(model.NewExclusionPair("Alice", "Bob"))

	_, err := s.newService(Config{MaxAttempts: 50}).Match([]string{"Alice", "Bob"}, exclusions)
	s.ErrorIs(err, model.ErrInfeasible)
}

func (s *ServiceSuite) TestThreeWithOneExclusionIsInfeasible() {
	// A and B would both have to draw C.
	exclusions := model.NewExclusionSet(model.NewExclusionPair("A", "B"))

	_, err := s.newService(DefaultConfig()).Match([]string{"A", "B", "C"}, exclusions)
	s.ErrorIs(err, model.ErrInfeasible)
}

func (s *ServiceSuite) TestParticipantExcludedFromEveryoneIsInfeasible() {
	exclusions := model.NewExclusionSet(
		model.NewExclusionPair("A", "B"),
		model.NewExclusionPair("A", "C"),
		model.NewExclusionPair("A", "D"),
	)

	_, err := s.newService(DefaultConfig()).Match([]string{"A", "B", "C", "D"}, exclusions)
	s.ErrorIs(err, model.ErrInfeasible)
	s.Zero(s.random.Calls)
}

// Input validation

func (s *ServiceSuite) TestFewerThanTwoParticipants() {
	svc := s.newService(DefaultConfig())

	_, err := svc.Match(nil, model.NewExclusionSet())
	s.ErrorIs(err, model.ErrInsufficientParticipants)

	_, err = svc.Match([]string{"Alice"}, model.NewExclusionSet())
	s.ErrorIs(err, model.ErrInsufficientParticipants)
	s.ErrorIs(err, model.ErrInvalidState)
}

func (s *ServiceSuite) TestDuplicateNamesRejected() {
	_, err := s.newService(DefaultConfig()).Match([]string{"Alice", "Bob", "Alice"}, model.NewExclusionSet())
	s.ErrorIs(err, model.ErrInvalidMatchInput)
}

func (s *ServiceSuite) TestExclusionWithUnknownNameRejected() {
	exclusions := model.NewExclusionSet(model.NewExclusionPair("Alice", "Zed"))

	_, err := s.newService(DefaultConfig()).Match([]string{"Alice", "Bob"}, exclusions)
	s.ErrorIs(err, model.ErrInvalidMatchInput)
}

func (s *ServiceSuite) TestMatchDoesNotMutateInput() {
	names := []string{"A", "B", "C", "D"}
	exclusions := model.NewExclusionSet(model.NewExclusionPair("A", "C"))

	_, err := s.realService().Match(names, exclusions)
	s.Require().NoError(err)

	s.Equal([]string{"A", "B", "C", "D"}, names)
	s.Equal([]model.ExclusionPair{{A: "A", B: "C"}}, exclusions.Pairs())
}

// Properties with a real random source

func (s *ServiceSuite) TestCouplesNeverDrawEachOther() {
	names := []string{"Alice", "Bob", "Carol", "Dave"}
	exclusions := model.NewExclusionSet(model.NewExclusionPair("Alice", "Bob"))
	svc := s.realService()

	for range 200 {
		result, err := svc.Match(names, exclusions)
		s.Require().NoError(err)
		s.assertDerangement(names, exclusions, result.Assignment)
	}
}

func (s *ServiceSuite) TestFeasibleInputsAlwaysSucceed() {
	svc := s.realService()

	for n := 2; n <= 12; n++ {
		names := make([]string, n)
		for i := range names {
			names[i] = fmt.Sprintf("p%02d", i)
		}
		// Pair up neighbours as couples.
		exclusions := model.NewExclusionSet()
		if n >= 4 {
			for i := 0; i+1 < n; i += 2 {
				exclusions.Add(names[i], names[i+1])
			}
		}

		for range 25 {
			result, err := svc.Match(names, exclusions)
			s.Require().NoError(err, "n=%d", n)
			s.LessOrEqual(result.Attempts, DefaultMaxAttempts)
			s.assertDerangement(names, exclusions, result.Assignment)
		}
	}
}

func (s *ServiceSuite) TestEveryDerangementOfThreeIsReachable() {
	svc := s.realService()
	seen := make(map[string]bool)

	for range 200 {
		result, err := svc.Match([]string{"A", "B", "C"}, model.NewExclusionSet())
		s.Require().NoError(err)
		seen[fmt.Sprint(result.Assignment.Pairs())] = true
	}
	// A->B->C->A and A->C->B->A
	s.Len(seen, 2)
}

// Feasible

func (s *ServiceSuite) TestFeasible() {
	cases := []struct {
		name       string
		names      []string
		exclusions []model.ExclusionPair
		want       bool
	}{
		{"single", []string{"A"}, nil, false},
		{"pair", []string{"A", "B"}, nil, true},
		{"excluded pair", []string{"A", "B"}, []model.ExclusionPair{{A: "A", B: "B"}}, false},
		{"three with one exclusion", []string{"A", "B", "C"}, []model.ExclusionPair{{A: "A", B: "B"}}, false},
		{"four with one couple", []string{"A", "B", "C", "D"}, []model.ExclusionPair{{A: "A", B: "B"}}, true},
		{"two couples", []string{"A", "B", "C", "D"}, []model.ExclusionPair{{A: "A", B: "B"}, {A: "C", B: "D"}}, true},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.Equal(tc.want, Feasible(tc.names, model.NewExclusionSet(tc.exclusions...)))
		})
	}
}
