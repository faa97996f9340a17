package exchange

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Jirawatp058/random-buddy/internal/dependencies/clock"
	"github.com/Jirawatp058/random-buddy/internal/model"
	"github.com/Jirawatp058/random-buddy/internal/services/credential"
	"github.com/Jirawatp058/random-buddy/internal/services/matching"
	"github.com/Jirawatp058/random-buddy/internal/storage"
)

// Config holds exchange settings
type Config struct {
	ResetPolicy model.ResetPolicy
}

// DefaultConfig returns the default exchange configuration
func DefaultConfig() Config {
	return Config{ResetPolicy: model.DefaultResetPolicy}
}

// MatchResult describes a completed match. The assignment itself is only
// exposed to participants one at a time through Reveal.
type MatchResult struct {
	Assignment   model.Assignment
	MatchedAt    time.Time
	Participants int
	Attempts     int
	Exact        bool
}

// Controller manages the exchange state machine: registration while open,
// a single match that closes it, and private reveals afterwards.
//
// RunMatch and Reset take the write lock; everything else takes the read lock
// so per-participant operations never interleave with a match or reset.
type Controller struct {
	mu sync.RWMutex

	storage storage.Storage
	matcher *matching.Service
	hasher  *credential.Hasher
	clock   clock.Clock
	cfg     Config
	logger  *slog.Logger
}

// NewController creates a new exchange Controller
func NewController(
	storage storage.Storage,
	matcher *matching.Service,
	hasher *credential.Hasher,
	clock clock.Clock,
	cfg Config,
	logger *slog.Logger,
) *Controller {
	if cfg.ResetPolicy == "" {
		cfg.ResetPolicy = model.DefaultResetPolicy
	}
	return &Controller{
		storage: storage,
		matcher: matcher,
		hasher:  hasher,
		clock:   clock,
		cfg:     cfg,
		logger:  logger,
	}
}

// ResetPolicy returns the policy applied by Reset
func (c *Controller) ResetPolicy() model.ResetPolicy {
	return c.cfg.ResetPolicy
}

// Status returns the current exchange state
func (c *Controller) Status(ctx context.Context) (*model.Exchange, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ex, err := c.storage.GetExchange(ctx)
	if err != nil {
		return nil, c.backendError("get exchange", err)
	}
	return ex, nil
}

// Register adds a participant while registration is open. Surrounding
// whitespace is dropped from the name and size.
func (c *Controller) Register(ctx context.Context, name, password, size string) (*model.Participant, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	name, size = strings.TrimSpace(name), strings.TrimSpace(size)
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", model.ErrInvalidParticipant)
	}
	p := &model.Participant{
		Name:         name,
		Credential:   password,
		Size:         size,
		RegisteredAt: c.clock.Now(),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	// CreateParticipant re-checks the state atomically; this only skips the hash.
	ex, err := c.storage.GetExchange(ctx)
	if err != nil {
		return nil, c.backendError("get exchange", err)
	}
	if !ex.IsOpen() {
		return nil, model.ErrRegistrationClosed
	}

	cred, err := c.hasher.Hash(password)
	if err != nil {
		return nil, c.backendError("hash credential", err)
	}
	p.Credential = cred

	if err := c.storage.CreateParticipant(ctx, p); err != nil {
		return nil, c.backendError("create participant", err)
	}

	c.logger.Info("participant registered",
		slog.String("name", p.Name),
	)
	return p, nil
}

// ListParticipants returns all participants in registration order
func (c *Controller) ListParticipants(ctx context.Context) ([]*model.Participant, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ps, err := c.storage.ListParticipants(ctx)
	if err != nil {
		return nil, c.backendError("list participants", err)
	}
	return ps, nil
}

// ListExclusions returns every exclusion pair once
func (c *Controller) ListExclusions(ctx context.Context) ([]model.ExclusionPair, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	pairs, err := c.storage.ListExclusions(ctx)
	if err != nil {
		return nil, c.backendError("list exclusions", err)
	}
	return pairs, nil
}

// SetExclusion forbids a and b from drawing each other. Naming the same
// participant twice is a no-op.
func (c *Controller) SetExclusion(ctx context.Context, a, b string) error {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == b {
		return nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	pair := model.NewExclusionPair(a, b)
	if err := c.storage.AddExclusion(ctx, pair); err != nil {
		return c.backendError("add exclusion", err)
	}
	c.logger.Info("exclusion set",
		slog.String("a", pair.A),
		slog.String("b", pair.B),
	)
	return nil
}

// ClearExclusion removes the exclusion between a and b if present
func (c *Controller) ClearExclusion(ctx context.Context, a, b string) error {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == b {
		return nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	pair := model.NewExclusionPair(a, b)
	if err := c.storage.RemoveExclusion(ctx, pair); err != nil {
		return c.backendError("remove exclusion", err)
	}
	c.logger.Info("exclusion cleared",
		slog.String("a", pair.A),
		slog.String("b", pair.B),
	)
	return nil
}

// RemoveParticipant deletes a participant and their exclusions while open
func (c *Controller) RemoveParticipant(ctx context.Context, name string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	name = strings.TrimSpace(name)

	if err := c.storage.DeleteParticipant(ctx, name); err != nil {
		return c.backendError("delete participant", err)
	}
	c.logger.Info("participant removed",
		slog.String("name", name),
	)
	return nil
}

// RunMatch draws the assignment and closes registration. It succeeds at most
// once per exchange; a failed attempt leaves the exchange untouched.
func (c *Controller) RunMatch(ctx context.Context) (*MatchResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ex, err := c.storage.GetExchange(ctx)
	if err != nil {
		return nil, c.backendError("get exchange", err)
	}
	if !ex.IsOpen() {
		return nil, model.ErrAlreadyMatched
	}

	participants, err := c.storage.ListParticipants(ctx)
	if err != nil {
		return nil, c.backendError("list participants", err)
	}
	if len(participants) < 2 {
		return nil, model.ErrInsufficientParticipants
	}
	pairs, err := c.storage.ListExclusions(ctx)
	if err != nil {
		return nil, c.backendError("list exclusions", err)
	}

	names := model.ParticipantNames(participants)
	result, err := c.matcher.Match(names, model.NewExclusionSet(pairs...))
	if err != nil {
		c.logger.Warn("matching failed",
			slog.Int("participants", len(names)),
			slog.Int("exclusions", len(pairs)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	at := c.clock.Now()
	if err := c.storage.CommitMatch(ctx, result.Assignment, at); err != nil {
		return nil, c.backendError("commit match", err)
	}

	c.logger.Info("exchange matched",
		slog.Int("participants", len(names)),
		slog.Int("exclusions", len(pairs)),
		slog.Int("attempts", result.Attempts),
		slog.Bool("exact", result.Exact),
	)
	return &MatchResult{
		Assignment:   result.Assignment,
		MatchedAt:    at,
		Participants: len(names),
		Attempts:     result.Attempts,
		Exact:        result.Exact,
	}, nil
}

// Reveal authenticates a participant and returns their own assignment.
// The first successful reveal marks the participant as having viewed it.
func (c *Controller) Reveal(ctx context.Context, name, password string) (*model.Reveal, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	name = strings.TrimSpace(name)

	ex, err := c.storage.GetExchange(ctx)
	if err != nil {
		return nil, c.backendError("get exchange", err)
	}
	if ex.IsOpen() {
		return nil, model.ErrNotMatched
	}

	giver, err := c.storage.GetParticipant(ctx, name)
	if err != nil {
		return nil, c.backendError("get participant", err)
	}

	ok, err := c.hasher.Verify(giver.Credential, password)
	if err != nil {
		c.logger.Warn("unreadable credential",
			slog.String("name", name),
			slog.String("scheme", credential.Scheme(giver.Credential)),
			slog.String("error", err.Error()),
		)
		return nil, model.ErrBadCredential
	}
	if !ok {
		return nil, model.ErrBadCredential
	}
	if giver.Recipient == "" {
		return nil, model.ErrNotMatched
	}

	reveal := &model.Reveal{
		Giver:     giver.Name,
		Recipient: giver.Recipient,
	}
	recipient, err := c.storage.GetParticipant(ctx, giver.Recipient)
	switch {
	case err == nil:
		reveal.RecipientSize = recipient.Size
	case !errors.Is(err, model.ErrParticipantNotFound):
		return nil, c.backendError("get participant", err)
	}

	if !giver.Viewed {
		first, err := c.storage.MarkViewed(ctx, giver.Name)
		if err != nil {
			return nil, c.backendError("mark viewed", err)
		}
		reveal.FirstView = first
	}

	c.logger.Debug("assignment revealed",
		slog.String("name", giver.Name),
		slog.Bool("first_view", reveal.FirstView),
	)
	return reveal, nil
}

// Reset reopens registration and clears match data, applying the configured policy
func (c *Controller) Reset(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.storage.Reset(ctx, c.cfg.ResetPolicy); err != nil {
		return c.backendError("reset", err)
	}
	c.logger.Info("exchange reset",
		slog.String("policy", string(c.cfg.ResetPolicy)),
	)
	return nil
}

// Feasibility reports whether a valid assignment exists for the current
// participants and exclusions
func (c *Controller) Feasibility(ctx context.Context) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	participants, err := c.storage.ListParticipants(ctx)
	if err != nil {
		return false, c.backendError("list participants", err)
	}
	pairs, err := c.storage.ListExclusions(ctx)
	if err != nil {
		return false, c.backendError("list exclusions", err)
	}
	return matching.Feasible(model.ParticipantNames(participants), model.NewExclusionSet(pairs...)), nil
}

// backendError passes domain errors through and wraps anything else as a
// BackendError, logging the cause
func (c *Controller) backendError(op string, err error) error {
	if model.IsDomainError(err) {
		return err
	}
	c.logger.Error("storage operation failed",
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
	return &model.BackendError{Op: op, Err: err}
}
