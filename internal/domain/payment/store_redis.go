package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStatusStore shares webhook state across instances, so a status poll
// can land on a different replica than the webhook did.
type RedisStatusStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ StatusStore = (*RedisStatusStore)(nil)

// NewRedisStatusStore creates a store keeping each record for ttl.
func NewRedisStatusStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStatusStore {
	if prefix == "" {
		prefix = "payment:status"
	}
	return &RedisStatusStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStatusStore) key(transactionID string) string {
	return fmt.Sprintf("%s:%s", s.prefix, transactionID)
}

// Get returns the cached record, or nil when absent.
func (s *RedisStatusStore) Get(ctx context.Context, transactionID string) (*PaymentRecord, error) {
	data, err := s.client.Get(ctx, s.key(transactionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read payment status: %w", err)
	}

	var record PaymentRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payment status: %w", err)
	}
	return &record, nil
}

// Set stores or replaces the record for its transaction ID.
func (s *RedisStatusStore) Set(ctx context.Context, record *PaymentRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal payment status: %w", err)
	}
	if err := s.client.Set(ctx, s.key(record.TransactionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write payment status: %w", err)
	}
	return nil
}
