package idempotency

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamotypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	dynamoclient "github.com/flexprice/lifecycle/internal/dynamodb"
	ierr "github.com/flexprice/lifecycle/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDynamo struct {
	mu    sync.Mutex
	items map[string]map[string]dynamotypes.AttributeValue
	err   error
	puts  []*dynamodb.PutItemInput
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: make(map[string]map[string]dynamotypes.AttributeValue)}
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts = append(f.puts, in)
	if f.err != nil {
		return nil, f.err
	}
	pk := in.Item["pk"].(*dynamotypes.AttributeValueMemberS).Value
	if _, ok := f.items[pk]; ok && aws.ToString(in.ConditionExpression) == "attribute_not_exists(pk)" {
		return nil, &dynamotypes.ConditionalCheckFailedException{Message: aws.String("exists")}
	}
	f.items[pk] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	pk := in.Key["pk"].(*dynamotypes.AttributeValueMemberS).Value
	return &dynamodb.GetItemOutput{Item: f.items[pk]}, nil
}

func (f *fakeDynamo) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	pk := in.Key["pk"].(*dynamotypes.AttributeValueMemberS).Value
	delete(f.items, pk)
	return &dynamodb.DeleteItemOutput{}, nil
}

func TestDynamoDBStoreSetIfAbsent(t *testing.T) {
	ctx := context.Background()
	api := newFakeDynamo()
	store := NewDynamoDBStore(dynamoclient.NewClientWithAPI(api), "idempotency")

	rec := &Record{EventID: "subscription-cancelled-sub_1", Fingerprint: "f1", Processed: true, CreatedAt: time.Now().UTC()}

	created, err := store.SetIfAbsent(ctx, rec, time.Hour)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "idempotency", aws.ToString(api.puts[0].TableName))

	created, err = store.SetIfAbsent(ctx, rec, time.Hour)
	require.NoError(t, err)
	assert.False(t, created)

	got, err := store.Get(ctx, "subscription-cancelled-sub_1")
	require.NoError(t, err)
	assert.Equal(t, "f1", got.Fingerprint)
	assert.True(t, got.Processed)
}

func TestDynamoDBStoreGetMissing(t *testing.T) {
	store := NewDynamoDBStore(dynamoclient.NewClientWithAPI(newFakeDynamo()), "idempotency")

	_, err := store.Get(context.Background(), "missing")
	assert.True(t, ierr.IsNotFound(err))
}

func TestDynamoDBStoreFailurePropagates(t *testing.T) {
	api := newFakeDynamo()
	api.err = errors.New("throttled")
	store := NewDynamoDBStore(dynamoclient.NewClientWithAPI(api), "idempotency")

	_, err := store.SetIfAbsent(context.Background(), &Record{EventID: "evt"}, time.Hour)
	assert.True(t, ierr.IsDependency(err))
}

func TestDynamoDBStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewDynamoDBStore(dynamoclient.NewClientWithAPI(newFakeDynamo()), "idempotency")

	created, err := store.SetIfAbsent(ctx, &Record{EventID: "evt"}, time.Hour)
	require.NoError(t, err)
	require.True(t, created)

	require.NoError(t, store.Delete(ctx, "evt"))
	require.NoError(t, store.Delete(ctx, "evt"))

	created, err = store.SetIfAbsent(ctx, &Record{EventID: "evt"}, time.Hour)
	require.NoError(t, err)
	assert.True(t, created)
}
