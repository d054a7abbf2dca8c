package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Behnamfe76/docvault/internal/domain"
)

const (
	ownerKeyPrefix      = "docvault:owner:"
	generationKeyPrefix = "docvault:owner-gen:"
)

// CachedDocumentRepository caches positive owner lookups in Redis. Every write
// bumps a per-key generation and drops the cached owner. A lookup only fills
// the cache if the generation it observed before reading the repository is
// still current, so a slow lookup cannot restore an owner that a concurrent
// delete or insert has replaced. Redis failures fall through to the wrapped
// repository.
type CachedDocumentRepository struct {
	DocumentRepository
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedDocumentRepository wraps inner with a redis owner cache.
func NewCachedDocumentRepository(inner DocumentRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedDocumentRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedDocumentRepository{DocumentRepository: inner, client: client, ttl: ttl, logger: logger}
}

func ownerCacheKey(key string) string {
	return ownerKeyPrefix + key
}

func generationKey(key string) string {
	return generationKeyPrefix + key
}

// GetOwner consults the cache before the wrapped repository. Missing records
// are never cached.
func (r *CachedDocumentRepository) GetOwner(ctx context.Context, key string) (string, bool, error) {
	owner, err := r.client.Get(ctx, ownerCacheKey(key)).Result()
	switch {
	case err == nil:
		return owner, true, nil
	case !errors.Is(err, redis.Nil):
		r.logger.Warn("owner cache read failed", zap.String("resource_key", key), zap.Error(err))
	}

	// The generation must be read before the repository so that any write
	// committed after our read is guaranteed to have moved it.
	generation, genErr := r.generation(ctx, r.client, key)

	owner, found, err := r.DocumentRepository.GetOwner(ctx, key)
	if err != nil || !found {
		return owner, found, err
	}
	if genErr != nil {
		return owner, true, nil
	}
	r.fill(ctx, key, owner, generation)
	return owner, true, nil
}

func (r *CachedDocumentRepository) Insert(ctx context.Context, doc *domain.Document) error {
	if err := r.DocumentRepository.Insert(ctx, doc); err != nil {
		return err
	}
	r.invalidate(ctx, doc.ResourceKey)
	return nil
}

func (r *CachedDocumentRepository) Delete(ctx context.Context, owner, key string) (*domain.Document, error) {
	doc, err := r.DocumentRepository.Delete(ctx, owner, key)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, key)
	return doc, nil
}

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (r *CachedDocumentRepository) generation(ctx context.Context, c getter, key string) (int64, error) {
	generation, err := c.Get(ctx, generationKey(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		r.logger.Warn("owner cache generation read failed", zap.String("resource_key", key), zap.Error(err))
	}
	return generation, err
}

// fill stores owner only while the generation is unchanged. WATCH aborts the
// transaction when a write bumps the generation between the check and EXEC.
func (r *CachedDocumentRepository) fill(ctx context.Context, key, owner string, observed int64) {
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := r.generation(ctx, tx, key)
		if err != nil {
			return err
		}
		if current != observed {
			return redis.TxFailedErr
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, ownerCacheKey(key), owner, r.ttl)
			return nil
		})
		return err
	}, generationKey(key))

	switch {
	case err == nil:
	case errors.Is(err, redis.TxFailedErr):
		r.logger.Debug("owner cache fill skipped, record changed", zap.String("resource_key", key))
	default:
		r.logger.Warn("owner cache write failed", zap.String("resource_key", key), zap.Error(err))
	}
}

func (r *CachedDocumentRepository) invalidate(ctx context.Context, key string) {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(key))
		pipe.Del(ctx, ownerCacheKey(key))
		return nil
	})
	if err != nil {
		r.logger.Warn("owner cache invalidate failed", zap.String("resource_key", key), zap.Error(err))
	}
}
