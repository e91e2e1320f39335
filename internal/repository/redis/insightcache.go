package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ShakenTheCoder/REVIfinal/internal/domain"
	apperrors "github.com/ShakenTheCoder/REVIfinal/pkg/errors"
)

const keyPrefix = "insight:"

// InsightCache implements repository.InsightCache using Redis. Entries are
// keyed per product and tab so an invalidation on new review intake clears
// every tab of the product at once.
type InsightCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewInsightCache creates a new Redis-backed insight cache.
func NewInsightCache(client *redis.Client, ttl time.Duration) *InsightCache {
	return &InsightCache{
		client: client,
		ttl:    ttl,
	}
}

func cacheKey(productID string, tab domain.Tab) string {
	return keyPrefix + productID + ":" + string(tab)
}

// Get retrieves a cached insight for a product tab.
func (c *InsightCache) Get(ctx context.Context, productID string, tab domain.Tab) (*domain.Insight, error) {
	data, err := c.client.Get(ctx, cacheKey(productID, tab)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.NotFound("insight", productID)
		}
		return nil, fmt.Errorf("redis get insight: %w", err)
	}

	var insight domain.Insight
	if err := json.Unmarshal(data, &insight); err != nil {
		return nil, fmt.Errorf("unmarshal insight: %w", err)
	}

	return &insight, nil
}

// Set stores a computed insight with the configured TTL.
func (c *InsightCache) Set(ctx context.Context, productID string, tab domain.Tab, insight *domain.Insight) error {
	data, err := json.Marshal(insight)
	if err != nil {
		return fmt.Errorf("marshal insight: %w", err)
	}

	if err := c.client.Set(ctx, cacheKey(productID, tab), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set insight: %w", err)
	}

	return nil
}

// Invalidate removes every cached tab of the product.
func (c *InsightCache) Invalidate(ctx context.Context, productID string) error {
	keys := make([]string, 0, 3)
	for _, tab := range []domain.Tab{domain.TabPositive, domain.TabNegative, domain.TabShadow} {
		keys = append(keys, cacheKey(productID, tab))
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del insight: %w", err)
	}

	return nil
}
