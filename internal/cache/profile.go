package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/inkgen/inkgen/internal/model"
)

const (
	// profileCachePrefix is the Redis key prefix for identity profile cache.
	profileCachePrefix = "identity:profile:"
	// profileCacheTTL keeps profile reads cheap without letting the quota
	// counter drift for long. Consumption invalidates the entry anyway.
	profileCacheTTL = 60 * time.Second
)

// GetProfile retrieves a cached identity profile by user ID.
// Returns nil if not found (cache miss).
func (c *Cache) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	key := profileCachePrefix + userID

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		// Cache miss is not an error
		return nil, nil //nolint:nilerr
	}

	var profile model.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		// Corrupted cache entry - treat as miss
		return nil, nil //nolint:nilerr
	}

	return &profile, nil
}

// SetProfile caches an identity profile.
func (c *Cache) SetProfile(ctx context.Context, profile *model.Profile) error {
	key := profileCachePrefix + profile.UserID

	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	return c.client.Set(ctx, key, data, profileCacheTTL).Err()
}

// InvalidateProfile removes a cached identity profile.
// Called after the free-usage counter is written back to the provider.
func (c *Cache) InvalidateProfile(ctx context.Context, userID string) error {
	return c.client.Del(ctx, profileCachePrefix+userID).Err()
}
