package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/inkgen/inkgen/internal/model"
	"github.com/inkgen/inkgen/internal/repository"
)

func errNotFoundForTest() error {
	return repository.ErrCreationNotFound
}

func feedCreation(id, owner string, likes []string) *model.Creation {
	now := time.Now().UTC()
	return &model.Creation{
		ID:        id,
		UserID:    owner,
		Prompt:    "a lighthouse",
		Content:   "https://media.example.com/img.png",
		Type:      model.CreationTypeImage,
		Publish:   true,
		Likes:     likes,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestFeedService_ListPublished(t *testing.T) {
	store := &fakeStore{
		published: []*model.Creation{
			feedCreation("c2", "user_2", nil),
			feedCreation("c1", "user_1", nil),
		},
	}
	svc := NewFeedService(store, testLogger(), nil)

	creations, err := svc.ListPublished(context.Background())
	if err != nil {
		t.Fatalf("ListPublished() error = %v", err)
	}
	if len(creations) != 2 {
		t.Fatalf("got %d creations, want 2", len(creations))
	}
	if creations[0].ID != "c2" {
		t.Errorf("first creation = %q, want store order preserved", creations[0].ID)
	}
}

func TestFeedService_ListPublished_StoreError(t *testing.T) {
	store := &fakeStore{listErr: errors.New("connection reset")}
	svc := NewFeedService(store, testLogger(), nil)

	if _, err := svc.ListPublished(context.Background()); err == nil {
		t.Fatal("ListPublished() error = nil, want store error")
	}
}

func TestFeedService_ListOwn(t *testing.T) {
	store := &fakeStore{
		owned: []*model.Creation{feedCreation("c1", "user_1", nil)},
	}
	svc := NewFeedService(store, testLogger(), nil)

	creations, err := svc.ListOwn(context.Background(), "user_1")
	if err != nil {
		t.Fatalf("ListOwn() error = %v", err)
	}
	if len(creations) != 1 || creations[0].ID != "c1" {
		t.Errorf("ListOwn() = %v, want the owner's creation", creations)
	}
}

func TestFeedService_ToggleLike_AddsThenRemoves(t *testing.T) {
	creation := feedCreation("c1", "user_2", []string{"user_3"})
	store := &fakeStore{byID: map[string]*model.Creation{"c1": creation}}
	svc := NewFeedService(store, testLogger(), nil)

	id := model.Identity{UserID: "user_1", Plan: model.PlanFree}

	msg, err := svc.ToggleLike(context.Background(), id, "c1")
	if err != nil {
		t.Fatalf("ToggleLike() error = %v", err)
	}
	if msg != MessageLiked {
		t.Errorf("message = %q, want %q", msg, MessageLiked)
	}
	if got := store.updatedLikes["c1"]; len(got) != 2 {
		t.Errorf("likes after first toggle = %v, want 2 entries", got)
	}

	msg, err = svc.ToggleLike(context.Background(), id, "c1")
	if err != nil {
		t.Fatalf("ToggleLike() second call error = %v", err)
	}
	if msg != MessageUnliked {
		t.Errorf("message = %q, want %q", msg, MessageUnliked)
	}
	got := store.updatedLikes["c1"]
	if len(got) != 1 || got[0] != "user_3" {
		t.Errorf("likes after second toggle = %v, want only the other user's like", got)
	}
}

func TestFeedService_ToggleLike_NotFound(t *testing.T) {
	store := &fakeStore{byID: map[string]*model.Creation{}}
	svc := NewFeedService(store, testLogger(), nil)

	_, err := svc.ToggleLike(context.Background(), model.Identity{UserID: "user_1"}, "missing")
	if !errors.Is(err, ErrCreationNotFound) {
		t.Fatalf("ToggleLike() error = %v, want ErrCreationNotFound", err)
	}
}

func TestFeedService_ToggleLike_UpdateError(t *testing.T) {
	creation := feedCreation("c1", "user_2", nil)
	store := &fakeStore{
		byID:      map[string]*model.Creation{"c1": creation},
		updateErr: errors.New("connection reset"),
	}
	svc := NewFeedService(store, testLogger(), nil)

	if _, err := svc.ToggleLike(context.Background(), model.Identity{UserID: "user_1"}, "c1"); err == nil {
		t.Fatal("ToggleLike() error = nil, want update error")
	}
}
