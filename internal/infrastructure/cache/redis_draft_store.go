package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/taxinvoice/internal/domain/shared"
	"github.com/erp/taxinvoice/internal/domain/taxinvoice"
	"github.com/erp/taxinvoice/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisDraftStore implements DraftStore using Redis.
// Drafts are shared by every instance and expire through Redis TTLs.
type RedisDraftStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRedisDraftStore creates a store on an existing Redis client
func NewRedisDraftStore(client redis.UniversalClient, keyPrefix string) *RedisDraftStore {
	if keyPrefix == "" {
		keyPrefix = DefaultDraftKeyPrefix
	}
	return &RedisDraftStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Save stores a draft; a non-positive ttl keeps it until deleted
func (s *RedisDraftStore) Save(ctx context.Context, tenantID, taxInvoiceID uuid.UUID, snap taxinvoice.SessionSnapshot, ttl time.Duration) error {
	data, err := encodeDraft(snap)
	if err != nil {
		return err
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, draftKey(s.keyPrefix, tenantID, taxInvoiceID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

// Load returns the draft, or shared.ErrNotFound when missing or expired
func (s *RedisDraftStore) Load(ctx context.Context, tenantID, taxInvoiceID uuid.UUID) (*taxinvoice.SessionSnapshot, error) {
	data, err := s.client.Get(ctx, draftKey(s.keyPrefix, tenantID, taxInvoiceID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}
	return decodeDraft(data)
}

// Delete removes a draft. Deleting a missing draft is not an error.
func (s *RedisDraftStore) Delete(ctx context.Context, tenantID, taxInvoiceID uuid.UUID) error {
	if err := s.client.Del(ctx, draftKey(s.keyPrefix, tenantID, taxInvoiceID)).Err(); err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}

var _ taxinvoice.DraftStore = (*RedisDraftStore)(nil)
