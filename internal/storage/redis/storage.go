package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Jirawatp058/random-buddy/internal/model"
	"github.com/Jirawatp058/random-buddy/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
// Multi-key operations run as optimistic WATCH/MULTI/EXEC transactions.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// reader is the read subset shared by *redis.Client and *redis.Tx
type reader interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
	SMembers(ctx context.Context, key string) *redis.StringSliceCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	if cfg.PingTimeout <= 0 {
		cfg.PingTimeout = DefaultConfig().PingTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.PingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	if cfg.MaxTxRetries <= 0 {
		cfg.MaxTxRetries = DefaultConfig().MaxTxRetries
	}
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// transact runs fn under WATCH on keys, retrying when a watched key changes
func (s *Storage) transact(ctx context.Context, fn func(tx *redis.Tx) error, keys ...string) error {
	for range s.cfg.MaxTxRetries {
		err := s.client.Watch(ctx, fn, keys...)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return model.ErrConflict
}

func (s *Storage) GetExchange(ctx context.Context) (*model.Exchange, error) {
	ex, err := readExchange(ctx, s.client)
	if err != nil {
		return nil, err
	}
	return &ex, nil
}

// Participant operations

func (s *Storage) CreateParticipant(ctx context.Context, p *model.Participant) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}

	return s.transact(ctx, func(tx *redis.Tx) error {
		ex, err := readExchange(ctx, tx)
		if err != nil {
			return err
		}
		if !ex.IsOpen() {
			return model.ErrRegistrationClosed
		}

		exists, err := tx.Exists(ctx, participantKey(p.Name)).Result()
		if err != nil {
			return err
		}
		if exists > 0 {
			return model.ErrDuplicateName
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, participantKey(p.Name), data, 0)
			pipe.SAdd(ctx, participantIndexKey(), p.Name)
			return nil
		})
		return err
	}, exchangeKey(), participantKey(p.Name))
}

func (s *Storage) GetParticipant(ctx context.Context, name string) (*model.Participant, error) {
	return readParticipant(ctx, s.client, name)
}

func (s *Storage) ListParticipants(ctx context.Context) ([]*model.Participant, error) {
	names, err := s.client.SMembers(ctx, participantIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	return readParticipants(ctx, s.client, names)
}

func (s *Storage) DeleteParticipant(ctx context.Context, name string) error {
	return s.transact(ctx, func(tx *redis.Tx) error {
		ex, err := readExchange(ctx, tx)
		if err != nil {
			return err
		}
		if !ex.IsOpen() {
			return model.ErrAlreadyMatched
		}

		exists, err := tx.Exists(ctx, participantKey(name)).Result()
		if err != nil {
			return err
		}
		if exists == 0 {
			return model.ErrParticipantNotFound
		}

		others, err := tx.SMembers(ctx, exclusionsKey(name)).Result()
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, participantKey(name), exclusionsKey(name))
			pipe.SRem(ctx, participantIndexKey(), name)
			for _, other := range others {
				pipe.SRem(ctx, exclusionsKey(other), name)
			}
			return nil
		})
		return err
	}, exchangeKey(), participantKey(name), exclusionsKey(name))
}

func (s *Storage) MarkViewed(ctx context.Context, name string) (bool, error) {
	var first bool
	err := s.transact(ctx, func(tx *redis.Tx) error {
		first = false
		p, err := readParticipant(ctx, tx, name)
		if err != nil {
			return err
		}
		if p.Viewed {
			return nil
		}
		p.Viewed = true
		data, err := json.Marshal(p)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, participantKey(name), data, 0)
			return nil
		})
		first = err == nil
		return err
	}, participantKey(name))
	if err != nil {
		return false, err
	}
	return first, nil
}

// Exclusion operations

func (s *Storage) AddExclusion(ctx context.Context, pair model.ExclusionPair) error {
	return s.transact(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, participantKey(pair.A), participantKey(pair.B)).Result()
		if err != nil {
			return err
		}
		// EXISTS counts a repeated key twice, so a self-pair of a registered name passes.
		if n < 2 {
			return model.ErrParticipantNotFound
		}
		if pair.A == pair.B {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.SAdd(ctx, exclusionsKey(pair.A), pair.B)
			pipe.SAdd(ctx, exclusionsKey(pair.B), pair.A)
			return nil
		})
		return err
	}, participantKey(pair.A), participantKey(pair.B))
}

func (s *Storage) RemoveExclusion(ctx context.Context, pair model.ExclusionPair) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SRem(ctx, exclusionsKey(pair.A), pair.B)
		pipe.SRem(ctx, exclusionsKey(pair.B), pair.A)
		return nil
	})
	return err
}

func (s *Storage) ListExclusions(ctx context.Context) ([]model.ExclusionPair, error) {
	names, err := s.client.SMembers(ctx, participantIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	set, err := readExclusions(ctx, s.client, names)
	if err != nil {
		return nil, err
	}
	return set.Pairs(), nil
}

// Lifecycle

func (s *Storage) CommitMatch(ctx context.Context, a model.Assignment, at time.Time) error {
	return s.transact(ctx, func(tx *redis.Tx) error {
		names, err := tx.SMembers(ctx, participantIndexKey()).Result()
		if err != nil {
			return err
		}
		if len(names) > 0 {
			watched := append(participantKeys(names), exclusionsKeys(names)...)
			if err := tx.Watch(ctx, watched...).Err(); err != nil {
				return err
			}
		}

		ex, err := readExchange(ctx, tx)
		if err != nil {
			return err
		}
		participants, err := readParticipants(ctx, tx, names)
		if err != nil {
			return err
		}
		exclusions, err := readExclusions(ctx, tx, names)
		if err != nil {
			return err
		}
		if err := model.CheckCommit(ex, a, model.ParticipantNames(participants), exclusions); err != nil {
			return err
		}

		ex.State = model.ExchangeStateClosed
		ex.MatchedAt = &at
		exData, err := json.Marshal(ex)
		if err != nil {
			return err
		}
		updates := make(map[string][]byte, len(participants))
		for _, p := range participants {
			p.Recipient, _ = a.Recipient(p.Name)
			p.Viewed = false
			data, err := json.Marshal(p)
			if err != nil {
				return err
			}
			updates[participantKey(p.Name)] = data
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for key, data := range updates {
				pipe.Set(ctx, key, data, 0)
			}
			pipe.Set(ctx, exchangeKey(), exData, 0)
			return nil
		})
		return err
	}, exchangeKey(), participantIndexKey())
}

func (s *Storage) Reset(ctx context.Context, policy model.ResetPolicy) error {
	return s.transact(ctx, func(tx *redis.Tx) error {
		names, err := tx.SMembers(ctx, participantIndexKey()).Result()
		if err != nil {
			return err
		}
		if len(names) > 0 {
			if err := tx.Watch(ctx, participantKeys(names)...).Err(); err != nil {
				return err
			}
		}

		if policy != model.ResetPolicyKeepRoster {
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, exchangeKey(), participantIndexKey())
				if len(names) > 0 {
					pipe.Del(ctx, participantKeys(names)...)
					pipe.Del(ctx, exclusionsKeys(names)...)
				}
				return nil
			})
			return err
		}

		participants, err := readParticipants(ctx, tx, names)
		if err != nil {
			return err
		}
		updates := make(map[string][]byte, len(participants))
		for _, p := range participants {
			p.Recipient = ""
			p.Viewed = false
			data, err := json.Marshal(p)
			if err != nil {
				return err
			}
			updates[participantKey(p.Name)] = data
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for key, data := range updates {
				pipe.Set(ctx, key, data, 0)
			}
			pipe.Del(ctx, exchangeKey())
			return nil
		})
		return err
	}, exchangeKey(), participantIndexKey())
}

// Helpers

func readExchange(ctx context.Context, r reader) (model.Exchange, error) {
	data, err := r.Get(ctx, exchangeKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.NewExchange(), nil
		}
		return model.Exchange{}, err
	}

	var ex model.Exchange
	if err := json.Unmarshal(data, &ex); err != nil {
		return model.Exchange{}, err
	}
	return ex, nil
}

func readParticipant(ctx context.Context, r reader, name string) (*model.Participant, error) {
	data, err := r.Get(ctx, participantKey(name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrParticipantNotFound
		}
		return nil, err
	}

	var p model.Participant
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func readParticipants(ctx context.Context, r reader, names []string) ([]*model.Participant, error) {
	if len(names) == 0 {
		return []*model.Participant{}, nil
	}

	values, err := r.MGet(ctx, participantKeys(names)...).Result()
	if err != nil {
		return nil, err
	}

	participants := make([]*model.Participant, 0, len(values))
	for _, val := range values {
		str, ok := val.(string)
		if !ok {
			continue // index entry without a record
		}
		var p model.Participant
		if err := json.Unmarshal([]byte(str), &p); err != nil {
			return nil, err
		}
		participants = append(participants, &p)
	}
	model.SortParticipants(participants)
	return participants, nil
}

func readExclusions(ctx context.Context, r reader, names []string) (model.ExclusionSet, error) {
	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[n] = true
	}

	set := model.NewExclusionSet()
	for _, name := range names {
		others, err := r.SMembers(ctx, exclusionsKey(name)).Result()
		if err != nil {
			return nil, err
		}
		for _, other := range others {
			if present[other] {
				set.Add(name, other)
			}
		}
	}
	return set, nil
}
