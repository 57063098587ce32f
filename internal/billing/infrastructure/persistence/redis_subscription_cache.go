package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nestora/nestora/internal/billing/domain"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
)

// DefaultSubscriptionCacheTTL bounds how stale a cached ledger record can
// be. Entitlement expiry is re-derived from ExpiresAt on every read, so a
// stale cache entry can only delay seeing a new purchase, never extend a
// lapsed one.
const DefaultSubscriptionCacheTTL = 30 * time.Second

var errCacheMiss = errors.New("subscription cache miss")

// CachedSubscriptionRepository decorates a SubscriptionRepository with a
// Redis read-through cache. Cache reads go through a circuit breaker: a
// flapping Redis degrades to direct repository reads instead of adding
// latency to every entitlement check.
type CachedSubscriptionRepository struct {
	inner   domain.SubscriptionRepository
	client  *redis.Client
	ttl     time.Duration
	breaker *gobreaker.CircuitBreaker[*domain.Subscription]
	logger  *slog.Logger
}

// NewCachedSubscriptionRepository creates the cache decorator. A zero TTL
// defaults to DefaultSubscriptionCacheTTL.
func NewCachedSubscriptionRepository(inner domain.SubscriptionRepository, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedSubscriptionRepository {
	if ttl <= 0 {
		ttl = DefaultSubscriptionCacheTTL
	}
	if logger == nil {
		logger = slog.Default()
	}

	breaker := gobreaker.NewCircuitBreaker[*domain.Subscription](gobreaker.Settings{
		Name:    "subscription-cache",
		Timeout: 10 * time.Second,
		IsSuccessful: func(err error) bool {
			// A miss is a healthy cache answer, not a failure.
			return err == nil || errors.Is(err, errCacheMiss)
		},
	})

	return &CachedSubscriptionRepository{
		inner:   inner,
		client:  client,
		ttl:     ttl,
		breaker: breaker,
		logger:  logger,
	}
}

// Upsert writes through to the inner repository and invalidates the cached
// entry so the next read observes the new record.
func (r *CachedSubscriptionRepository) Upsert(ctx context.Context, subscription *domain.Subscription) error {
	if err := r.inner.Upsert(ctx, subscription); err != nil {
		return err
	}
	if err := r.client.Del(ctx, cacheKey(subscription.UserID)).Err(); err != nil {
		r.logger.Warn("failed to invalidate subscription cache",
			"user_id", subscription.UserID,
			"error", err,
		)
	}
	return nil
}

// FindByUserID serves from Redis when possible and falls back to the inner
// repository on a miss or when the breaker is open. Absent records are
// cached too: Basic-tier users dominate entitlement checks.
func (r *CachedSubscriptionRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Subscription, error) {
	cached, err := r.breaker.Execute(func() (*domain.Subscription, error) {
		return r.fromCache(ctx, userID)
	})
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, errCacheMiss) {
		r.logger.Debug("subscription cache unavailable", "user_id", userID, "error", err)
	}

	subscription, err := r.inner.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	r.storeCache(ctx, userID, subscription)
	return subscription, nil
}

func (r *CachedSubscriptionRepository) fromCache(ctx context.Context, userID uuid.UUID) (*domain.Subscription, error) {
	raw, err := r.client.Get(ctx, cacheKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errCacheMiss
		}
		return nil, err
	}

	var subscription *domain.Subscription
	if err := json.Unmarshal(raw, &subscription); err != nil {
		return nil, fmt.Errorf("decode cached subscription: %w", err)
	}
	return subscription, nil
}

func (r *CachedSubscriptionRepository) storeCache(ctx context.Context, userID uuid.UUID, subscription *domain.Subscription) {
	raw, err := json.Marshal(subscription)
	if err != nil {
		r.logger.Error("failed to encode subscription for cache", "error", err)
		return
	}
	if err := r.client.Set(ctx, cacheKey(userID), raw, r.ttl).Err(); err != nil {
		r.logger.Debug("failed to store subscription in cache", "user_id", userID, "error", err)
	}
}

func cacheKey(userID uuid.UUID) string {
	return "billing:subscription:" + userID.String()
}

var _ domain.SubscriptionRepository = (*CachedSubscriptionRepository)(nil)
