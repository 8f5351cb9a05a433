package cache

import (
	"context"
	"fmt"
	"io"

	"github.com/erp/taxinvoice/internal/domain/taxinvoice"
	"github.com/erp/taxinvoice/internal/infrastructure/config"
	"go.uber.org/zap"
)

// DraftStoreFactory creates draft stores based on configuration
type DraftStoreFactory struct {
	editorConfig          config.EditorConfig
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// DraftStoreFactoryOption is a functional option for configuring the factory
type DraftStoreFactoryOption func(*DraftStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) DraftStoreFactoryOption {
	return func(f *DraftStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory store when Redis is unavailable.
// Default is false: a configured Redis backend must be reachable.
func WithInMemoryFallback(allow bool) DraftStoreFactoryOption {
	return func(f *DraftStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewDraftStoreFactory creates a new factory
func NewDraftStoreFactory(editorCfg config.EditorConfig, redisCfg config.RedisConfig, opts ...DraftStoreFactoryOption) *DraftStoreFactory {
	f := &DraftStoreFactory{
		editorConfig: editorCfg,
		redisConfig:  redisCfg,
		logger:       zap.NewNop(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateStore creates the configured draft store.
// The returned closer releases the store's resources.
func (f *DraftStoreFactory) CreateStore(ctx context.Context) (taxinvoice.DraftStore, io.Closer, error) {
	switch f.editorConfig.DraftStore {
	case config.DraftStoreRedis:
		client, err := NewRedisClient(ctx, f.redisConfig)
		if err == nil {
			f.logger.Info("using Redis draft store",
				zap.String("addr", f.redisConfig.Addr()),
				zap.String("key_prefix", f.editorConfig.DraftKeyPrefix),
			)
			return NewRedisDraftStore(client, f.editorConfig.DraftKeyPrefix), client, nil
		}
		if !f.allowInMemoryFallback {
			return nil, nil, fmt.Errorf("Redis required for drafts but unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory draft store. "+
			"Open sessions will not survive a restart.",
			zap.Error(err),
		)
		store := NewInMemoryDraftStore()
		return store, store, nil

	case config.DraftStoreMemory, "":
		f.logger.Info("using in-memory draft store")
		store := NewInMemoryDraftStore()
		return store, store, nil

	default:
		return nil, nil, fmt.Errorf("unknown draft store %q", f.editorConfig.DraftStore)
	}
}
