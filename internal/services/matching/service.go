package matching

import (
	"fmt"
	"log/slog"

	"github.com/Jirawatp058/random-buddy/internal/dependencies/random"
	"github.com/Jirawatp058/random-buddy/internal/model"
)

// DefaultMaxAttempts is the number of shuffles tried before giving up on sampling
const DefaultMaxAttempts = 1000

// Config controls the search
type Config struct {
	// MaxAttempts bounds the rejection-sampling loop
	MaxAttempts int
	// ExactFallback enables a deterministic bipartite search once sampling is
	// exhausted. Results found this way are valid but not uniformly distributed.
	ExactFallback bool
}

// DefaultConfig returns the default matching configuration
func DefaultConfig() Config {
	return Config{
		MaxAttempts:   DefaultMaxAttempts,
		ExactFallback: true,
	}
}

// Result is the outcome of a successful match
type Result struct {
	Assignment model.Assignment
	Attempts   int  // shuffles drawn
	Exact      bool // produced by the fallback search
}

// Service computes constrained derangements. It holds no state between calls.
type Service struct {
	random random.Random
	cfg    Config
	logger *slog.Logger
}

// New creates a new matching Service
func New(random random.Random, cfg Config, logger *slog.Logger) *Service {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	return &Service{
		random: random,
		cfg:    cfg,
		logger: logger,
	}
}

// Match assigns every participant a recipient such that nobody draws themselves
// and no excluded pair draws each other in either direction.
func (s *Service) Match(participants []string, exclusions model.ExclusionSet) (*Result, error) {
	if err := validateInput(participants, exclusions); err != nil {
		return nil, err
	}

	// Infeasible inputs can be rejected up front when the exact search is on;
	// the sampling loop would fail anyway.
	if s.cfg.ExactFallback && !Feasible(participants, exclusions) {
		return nil, model.ErrInfeasible
	}

	receivers := make([]string, len(participants))
	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		copy(receivers, participants)
		s.shuffle(receivers)
		if isValid(participants, receivers, exclusions) {
			return &Result{
				Assignment: toAssignment(participants, receivers),
				Attempts:   attempt,
			}, nil
		}
	}

	if !s.cfg.ExactFallback {
		return nil, model.ErrInfeasible
	}

	receivers, ok := s.exactMatch(participants, exclusions)
	if !ok {
		return nil, model.ErrInfeasible
	}
	s.logger.Warn("sampling exhausted, used exact search",
		slog.Int("participants", len(participants)),
		slog.Int("exclusions", exclusions.Len()),
		slog.Int("attempts", s.cfg.MaxAttempts),
	)
	return &Result{
		Assignment: toAssignment(participants, receivers),
		Attempts:   s.cfg.MaxAttempts,
		Exact:      true,
	}, nil
}

// Feasible reports whether any valid assignment exists
func Feasible(participants []string, exclusions model.ExclusionSet) bool {
	if len(participants) < 2 {
		return false
	}
	order := make([]int, len(participants))
	for i := range order {
		order[i] = i
	}
	_, ok := perfectMatching(candidates(participants, exclusions), order)
	return ok
}

// shuffle permutes names in place (Fisher–Yates)
func (s *Service) shuffle(names []string) {
	for i := len(names) - 1; i > 0; i-- {
		j := s.random.Intn(i + 1)
		names[i], names[j] = names[j], names[i]
	}
}

func (s *Service) shuffleInts(xs []int) {
	for i := len(xs) - 1; i > 0; i-- {
		j := s.random.Intn(i + 1)
		xs[i], xs[j] = xs[j], xs[i]
	}
}

// exactMatch finds a valid assignment with augmenting paths, visiting givers
// and candidates in random order so repeated runs differ.
func (s *Service) exactMatch(participants []string, exclusions model.ExclusionSet) ([]string, bool) {
	adj := candidates(participants, exclusions)
	for _, row := range adj {
		s.shuffleInts(row)
	}
	order := make([]int, len(participants))
	for i := range order {
		order[i] = i
	}
	s.shuffleInts(order)

	match, ok := perfectMatching(adj, order)
	if !ok {
		return nil, false
	}
	receivers := make([]string, len(participants))
	for giver, receiver := range match {
		receivers[giver] = participants[receiver]
	}
	return receivers, true
}

func validateInput(participants []string, exclusions model.ExclusionSet) error {
	if len(participants) < 2 {
		return model.ErrInsufficientParticipants
	}
	seen := make(map[string]bool, len(participants))
	for _, name := range participants {
		if name == "" {
			return fmt.Errorf("%w: empty participant name", model.ErrInvalidMatchInput)
		}
		if seen[name] {
			return fmt.Errorf("%w: duplicate participant %q", model.ErrInvalidMatchInput, name)
		}
		seen[name] = true
	}
	for _, pair := range exclusions.Pairs() {
		if !seen[pair.A] || !seen[pair.B] {
			return fmt.Errorf("%w: exclusion %s/%s references an unknown participant",
				model.ErrInvalidMatchInput, pair.A, pair.B)
		}
	}
	return nil
}

func isValid(givers, receivers []string, exclusions model.ExclusionSet) bool {
	for i, giver := range givers {
		if giver == receivers[i] || exclusions.Excludes(giver, receivers[i]) {
			return false
		}
	}
	return true
}

func toAssignment(givers, receivers []string) model.Assignment {
	m := make(map[string]string, len(givers))
	for i, giver := range givers {
		m[giver] = receivers[i]
	}
	return model.NewAssignment(m)
}
