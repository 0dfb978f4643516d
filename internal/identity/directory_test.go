package identity

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/inkgen/inkgen/internal/model"
)

type fakeProfileAPI struct {
	profile   *model.Profile
	getCalls  int
	setCalls  int
	lastUsage int
}

func (f *fakeProfileAPI) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	f.getCalls++
	p := *f.profile
	return &p, nil
}

func (f *fakeProfileAPI) SetFreeUsage(ctx context.Context, userID string, usage int) error {
	f.setCalls++
	f.lastUsage = usage
	return nil
}

type fakeProfileCache struct {
	entries     map[string]*model.Profile
	invalidated []string
}

func newFakeProfileCache() *fakeProfileCache {
	return &fakeProfileCache{entries: make(map[string]*model.Profile)}
}

func (f *fakeProfileCache) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	if p, ok := f.entries[userID]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeProfileCache) SetProfile(ctx context.Context, profile *model.Profile) error {
	copied := *profile
	f.entries[profile.UserID] = &copied
	return nil
}

func (f *fakeProfileCache) InvalidateProfile(ctx context.Context, userID string) error {
	delete(f.entries, userID)
	f.invalidated = append(f.invalidated, userID)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDirectory_Profile_CacheAside(t *testing.T) {
	ctx := context.Background()
	api := &fakeProfileAPI{profile: &model.Profile{UserID: "user_1", Plan: model.PlanFree, FreeUsage: 2}}
	cache := newFakeProfileCache()
	dir := NewDirectory(api, cache, discardLogger())

	first, err := dir.Profile(ctx, "user_1")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if first.FreeUsage != 2 {
		t.Errorf("expected usage 2, got %d", first.FreeUsage)
	}
	if api.getCalls != 1 {
		t.Fatalf("expected 1 provider call, got %d", api.getCalls)
	}

	// Second read is served from cache.
	if _, err := dir.Profile(ctx, "user_1"); err != nil {
		t.Fatalf("profile: %v", err)
	}
	if api.getCalls != 1 {
		t.Errorf("expected cached read, provider calls: %d", api.getCalls)
	}
}

func TestDirectory_SetFreeUsage_Invalidates(t *testing.T) {
	ctx := context.Background()
	api := &fakeProfileAPI{profile: &model.Profile{UserID: "user_1", Plan: model.PlanFree, FreeUsage: 2}}
	cache := newFakeProfileCache()
	dir := NewDirectory(api, cache, discardLogger())

	if _, err := dir.Profile(ctx, "user_1"); err != nil {
		t.Fatalf("profile: %v", err)
	}

	if err := dir.SetFreeUsage(ctx, "user_1", 3); err != nil {
		t.Fatalf("set free usage: %v", err)
	}
	if api.lastUsage != 3 {
		t.Errorf("expected provider write of 3, got %d", api.lastUsage)
	}
	if len(cache.invalidated) != 1 || cache.invalidated[0] != "user_1" {
		t.Errorf("expected cache invalidation for user_1, got %v", cache.invalidated)
	}

	// Next read goes back to the provider.
	api.profile.FreeUsage = 3
	fresh, err := dir.Profile(ctx, "user_1")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if fresh.FreeUsage != 3 || api.getCalls != 2 {
		t.Errorf("expected fresh provider read, usage=%d calls=%d", fresh.FreeUsage, api.getCalls)
	}
}

func TestDirectory_NilCache(t *testing.T) {
	ctx := context.Background()
	api := &fakeProfileAPI{profile: &model.Profile{UserID: "user_1", Plan: model.PlanPremium}}
	dir := NewDirectory(api, nil, discardLogger())

	if _, err := dir.Profile(ctx, "user_1"); err != nil {
		t.Fatalf("profile: %v", err)
	}
	if err := dir.SetFreeUsage(ctx, "user_1", 1); err != nil {
		t.Fatalf("set free usage: %v", err)
	}
}
