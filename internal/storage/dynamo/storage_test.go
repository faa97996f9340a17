package dynamo

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/suite"

	"github.com/Jirawatp058/random-buddy/internal/model"
	"github.com/Jirawatp058/random-buddy/internal/storage"
	"github.com/Jirawatp058/random-buddy/internal/storage/storagetest"
)

// fakeAPI is an in-memory table that honors the version condition used by Storage
type fakeAPI struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue
	puts  int

	// beforePut, if set, runs once before the next PutItem is applied
	beforePut func()
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{items: make(map[string]map[string]types.AttributeValue)}
}

func (f *fakeAPI) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pk := in.Key["pk"].(*types.AttributeValueMemberS).Value
	return &dynamodb.GetItemOutput{Item: f.items[pk]}, nil
}

func (f *fakeAPI) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if hook := f.takeHook(); hook != nil {
		hook()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++

	pk := in.Item["pk"].(*types.AttributeValueMemberS).Value
	if existing, ok := f.items[pk]; ok {
		var stored struct {
			Version int64 `dynamodbav:"version"`
		}
		if err := attributevalue.UnmarshalMap(existing, &stored); err != nil {
			return nil, err
		}
		expected := in.ExpressionAttributeValues[":expected"].(*types.AttributeValueMemberN).Value
		if strconv.FormatInt(stored.Version, 10) != expected {
			return nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
		}
	}
	f.items[pk] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeAPI) takeHook() func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	hook := f.beforePut
	f.beforePut = nil
	return hook
}

type StorageSuite struct {
	storagetest.Suite
	api *fakeAPI
}

func TestStorageSuite(t *testing.T) {
	s := &StorageSuite{}
	s.NewStorage = func() storage.Storage {
		s.api = newFakeAPI()
		return NewWithAPI(s.api, DefaultConfig())
	}
	suite.Run(t, s)
}

func (s *StorageSuite) TestConcurrentWriteIsRetried() {
	s.Register("Alice", 0)
	other := NewWithAPI(s.api, DefaultConfig())

	// Another writer registers Bob between our read and our write.
	s.api.beforePut = func() {
		s.Require().NoError(other.CreateParticipant(s.Ctx, &model.Participant{
			Name: "Bob", Credential: "plain:x", Size: "L", RegisteredAt: s.Base,
		}))
	}
	s.Register("Carol", 2)

	ps, err := s.Store.ListParticipants(s.Ctx)
	s.Require().NoError(err)
	s.Equal([]string{"Alice", "Bob", "Carol"}, model.ParticipantNames(ps))
}

func (s *StorageSuite) TestStaleCommitSeesNewRoster() {
	s.Register("Alice", 0)
	s.Register("Bob", 1)
	other := NewWithAPI(s.api, DefaultConfig())

	s.api.beforePut = func() {
		s.Require().NoError(other.CreateParticipant(s.Ctx, &model.Participant{
			Name: "Carol", Credential: "plain:x", Size: "L", RegisteredAt: s.Base,
		}))
	}
	a := model.NewAssignment(map[string]string{"Alice": "Bob", "Bob": "Alice"})
	err := s.Store.CommitMatch(s.Ctx, a, s.Base)
	s.ErrorIs(err, model.ErrRosterChanged)

	ex, err := s.Store.GetExchange(s.Ctx)
	s.Require().NoError(err)
	s.Equal(model.ExchangeStateOpen, ex.State)
}

func (s *StorageSuite) TestPersistentConflictIsReported() {
	s.Register("Alice", 0)
	store := NewWithAPI(s.api, Config{Table: "t", MaxRetries: 1})

	s.api.beforePut = func() {
		_, err := s.Store.MarkViewed(s.Ctx, "Alice")
		s.Require().NoError(err)
	}
	err := store.CreateParticipant(s.Ctx, &model.Participant{
		Name: "Bob", Credential: "plain:x", Size: "L", RegisteredAt: s.Base,
	})
	s.ErrorIs(err, model.ErrConflict)
}

func (s *StorageSuite) TestDomainErrorsDoNotWrite() {
	s.Register("Alice", 0)
	before := s.api.puts

	err := s.Store.DeleteParticipant(s.Ctx, "Nobody")
	s.ErrorIs(err, model.ErrParticipantNotFound)
	s.Equal(before, s.api.puts)
}
