package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/Jirawatp058/random-buddy/internal/model"
	"github.com/Jirawatp058/random-buddy/internal/storage"
)

// API is the subset of the DynamoDB client used by Storage
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// Config holds DynamoDB settings
type Config struct {
	Table      string
	Region     string
	Endpoint   string // optional, e.g. http://localhost:8000 for DynamoDB Local
	ItemKey    string // partition key value of the exchange item
	MaxRetries int    // optimistic-lock retries before reporting a conflict
}

// DefaultConfig returns default DynamoDB settings
func DefaultConfig() Config {
	return Config{
		Table:      "random-buddy",
		Region:     "ap-southeast-1",
		ItemKey:    "exchange",
		MaxRetries: 5,
	}
}

// Storage keeps the whole exchange in a single DynamoDB item. Every write is
// conditional on the version read, so concurrent writers never lose updates.
// The table needs a string partition key named "pk".
type Storage struct {
	api API
	cfg Config
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// New creates a Storage using the default AWS credential chain
func New(ctx context.Context, cfg Config) (*Storage, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewWithAPI(client, cfg), nil
}

// NewWithAPI creates a Storage over an existing client (for testing)
func NewWithAPI(api API, cfg Config) *Storage {
	def := DefaultConfig()
	if cfg.ItemKey == "" {
		cfg.ItemKey = def.ItemKey
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = def.MaxRetries
	}
	return &Storage{api: api, cfg: cfg}
}

// Close is a no-op; the SDK client holds no resources that need releasing
func (s *Storage) Close() error {
	return nil
}

// record is the stored item
type record struct {
	PK           string              `dynamodbav:"pk"`
	Version      int64               `dynamodbav:"version"`
	State        string              `dynamodbav:"state"`
	MatchedAt    *time.Time          `dynamodbav:"matched_at,omitempty"`
	Participants []participantRecord `dynamodbav:"participants"`
	Exclusions   []exclusionRecord   `dynamodbav:"exclusions"`
}

type exclusionRecord struct {
	A string `dynamodbav:"a"`
	B string `dynamodbav:"b"`
}

type participantRecord struct {
	Name         string    `dynamodbav:"name"`
	Credential   string    `dynamodbav:"credential"`
	Size         string    `dynamodbav:"size"`
	Recipient    string    `dynamodbav:"recipient"`
	Viewed       bool      `dynamodbav:"viewed"`
	RegisteredAt time.Time `dynamodbav:"registered_at"`
}

func toRecord(key string, version int64, snap *model.Snapshot) record {
	rec := record{
		PK:           key,
		Version:      version,
		State:        string(snap.Exchange.State),
		MatchedAt:    snap.Exchange.MatchedAt,
		Participants: []participantRecord{},
		Exclusions:   []exclusionRecord{},
	}
	for _, p := range snap.ParticipantList() {
		rec.Participants = append(rec.Participants, participantRecord{
			Name:         p.Name,
			Credential:   p.Credential,
			Size:         p.Size,
			Recipient:    p.Recipient,
			Viewed:       p.Viewed,
			RegisteredAt: p.RegisteredAt,
		})
	}
	for _, pair := range snap.Exclusions.Pairs() {
		rec.Exclusions = append(rec.Exclusions, exclusionRecord{A: pair.A, B: pair.B})
	}
	return rec
}

func (r record) snapshot() *model.Snapshot {
	snap := model.NewSnapshot()
	if r.State == string(model.ExchangeStateClosed) {
		snap.Exchange.State = model.ExchangeStateClosed
		snap.Exchange.MatchedAt = r.MatchedAt
	}
	for _, p := range r.Participants {
		snap.Participants[p.Name] = &model.Participant{
			Name:         p.Name,
			Credential:   p.Credential,
			Size:         p.Size,
			Recipient:    p.Recipient,
			Viewed:       p.Viewed,
			RegisteredAt: p.RegisteredAt,
		}
	}
	for _, pair := range r.Exclusions {
		snap.Exclusions.Add(pair.A, pair.B)
	}
	return snap
}

func (s *Storage) key() map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"pk": &types.AttributeValueMemberS{Value: s.cfg.ItemKey},
	}
}

// load reads the item; a missing item is an empty open exchange at version 0
func (s *Storage) load(ctx context.Context) (*model.Snapshot, int64, error) {
	out, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.cfg.Table),
		Key:            s.key(),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get item from table '%s': %w", s.cfg.Table, err)
	}
	if out.Item == nil {
		return model.NewSnapshot(), 0, nil
	}

	var rec record
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, 0, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	return rec.snapshot(), rec.Version, nil
}

// errStale marks a conditional write that lost the race
var errStale = errors.New("stale version")

func (s *Storage) save(ctx context.Context, snap *model.Snapshot, readVersion int64) error {
	item, err := attributevalue.MarshalMap(toRecord(s.cfg.ItemKey, readVersion+1, snap))
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	_, err = s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.cfg.Table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(pk) OR version = :expected"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":expected": &types.AttributeValueMemberN{Value: strconv.FormatInt(readVersion, 10)},
		},
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return errStale
	}
	if err != nil {
		return fmt.Errorf("failed to put item in table '%s': %w", s.cfg.Table, err)
	}
	return nil
}

// update applies fn to the current snapshot and writes it back, retrying on
// version conflicts. Domain errors from fn abort without writing.
func (s *Storage) update(ctx context.Context, fn func(snap *model.Snapshot) error) error {
	for range s.cfg.MaxRetries {
		snap, version, err := s.load(ctx)
		if err != nil {
			return err
		}
		if err := fn(snap); err != nil {
			return err
		}
		err = s.save(ctx, snap, version)
		if errors.Is(err, errStale) {
			continue
		}
		return err
	}
	return model.ErrConflict
}

func (s *Storage) read(ctx context.Context) (*model.Snapshot, error) {
	snap, _, err := s.load(ctx)
	return snap, err
}

func (s *Storage) GetExchange(ctx context.Context) (*model.Exchange, error) {
	snap, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	return &snap.Exchange, nil
}

// Participant operations

func (s *Storage) CreateParticipant(ctx context.Context, p *model.Participant) error {
	return s.update(ctx, func(snap *model.Snapshot) error {
		return snap.AddParticipant(p)
	})
}

func (s *Storage) GetParticipant(ctx context.Context, name string) (*model.Participant, error) {
	snap, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Participant(name)
}

func (s *Storage) ListParticipants(ctx context.Context) ([]*model.Participant, error) {
	snap, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	return snap.ParticipantList(), nil
}

func (s *Storage) DeleteParticipant(ctx context.Context, name string) error {
	return s.update(ctx, func(snap *model.Snapshot) error {
		return snap.RemoveParticipant(name)
	})
}

func (s *Storage) MarkViewed(ctx context.Context, name string) (bool, error) {
	var first bool
	err := s.update(ctx, func(snap *model.Snapshot) error {
		var err error
		first, err = snap.MarkViewed(name)
		return err
	})
	if err != nil {
		return false, err
	}
	return first, nil
}

// Exclusion operations

func (s *Storage) AddExclusion(ctx context.Context, pair model.ExclusionPair) error {
	return s.update(ctx, func(snap *model.Snapshot) error {
		return snap.AddExclusion(pair)
	})
}

func (s *Storage) RemoveExclusion(ctx context.Context, pair model.ExclusionPair) error {
	return s.update(ctx, func(snap *model.Snapshot) error {
		snap.RemoveExclusion(pair)
		return nil
	})
}

func (s *Storage) ListExclusions(ctx context.Context) ([]model.ExclusionPair, error) {
	snap, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Exclusions.Pairs(), nil
}

// Lifecycle

func (s *Storage) CommitMatch(ctx context.Context, a model.Assignment, at time.Time) error {
	return s.update(ctx, func(snap *model.Snapshot) error {
		return snap.ApplyMatch(a, at)
	})
}

func (s *Storage) Reset(ctx context.Context, policy model.ResetPolicy) error {
	return s.update(ctx, func(snap *model.Snapshot) error {
		snap.Reset(policy)
		return nil
	})
}
