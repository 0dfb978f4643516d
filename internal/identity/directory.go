package identity

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/inkgen/inkgen/internal/model"
)

// ProfileAPI is the provider-facing surface the directory needs.
type ProfileAPI interface {
	GetProfile(ctx context.Context, userID string) (*model.Profile, error)
	SetFreeUsage(ctx context.Context, userID string, usage int) error
}

// ProfileCache caches profiles between provider round trips.
type ProfileCache interface {
	GetProfile(ctx context.Context, userID string) (*model.Profile, error)
	SetProfile(ctx context.Context, profile *model.Profile) error
	InvalidateProfile(ctx context.Context, userID string) error
}

// Directory serves identity profiles with a cache-aside layer in front of
// the provider API. The cached counter can be briefly stale; the quota gate
// documents that race rather than preventing it.
type Directory struct {
	api    ProfileAPI
	cache  ProfileCache
	logger *slog.Logger
}

// NewDirectory creates a Directory. cache may be nil to disable caching.
func NewDirectory(api ProfileAPI, cache ProfileCache, logger *slog.Logger) *Directory {
	return &Directory{api: api, cache: cache, logger: logger}
}

// Profile returns the plan tier and free-usage counter for a user.
func (d *Directory) Profile(ctx context.Context, userID string) (*model.Profile, error) {
	if d.cache != nil {
		if cached, _ := d.cache.GetProfile(ctx, userID); cached != nil {
			return cached, nil
		}
	}

	profile, err := d.api.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}

	if d.cache != nil {
		if err := d.cache.SetProfile(ctx, profile); err != nil {
			d.logger.Warn("profile cache write failed",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
	}

	return profile, nil
}

// SetFreeUsage writes the counter to the provider and drops the cached
// profile so the next read sees the new value.
func (d *Directory) SetFreeUsage(ctx context.Context, userID string, usage int) error {
	if err := d.api.SetFreeUsage(ctx, userID, usage); err != nil {
		return err
	}

	if d.cache != nil {
		if err := d.cache.InvalidateProfile(ctx, userID); err != nil {
			d.logger.Warn("profile cache invalidation failed",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
	}

	return nil
}
