package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/inkgen/inkgen/internal/model"
	"github.com/inkgen/inkgen/internal/service"
)

type fakeFeed struct {
	published []*model.Creation
	owned     []*model.Creation
	listErr   error

	toggleMsg    string
	toggleErr    error
	toggledID    string
	toggleCaller string
}

func (f *fakeFeed) ListPublished(context.Context) ([]*model.Creation, error) {
	return f.published, f.listErr
}

func (f *fakeFeed) ListOwn(_ context.Context, _ string) ([]*model.Creation, error) {
	return f.owned, f.listErr
}

func (f *fakeFeed) ToggleLike(_ context.Context, id model.Identity, creationID string) (string, error) {
	f.toggleCaller = id.UserID
	f.toggledID = creationID
	return f.toggleMsg, f.toggleErr
}

func sampleCreation(id string) *model.Creation {
	now := time.Now().UTC()
	return &model.Creation{
		ID:        id,
		UserID:    "user_2",
		Prompt:    "a lighthouse",
		Content:   "https://media.example.com/img.png",
		Type:      model.CreationTypeImage,
		Publish:   true,
		Likes:     []string{"user_3"},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestUserHandler_GetPublishedCreations(t *testing.T) {
	feed := &fakeFeed{published: []*model.Creation{sampleCreation("c1"), sampleCreation("c2")}}
	h := NewUserHandler(feed, testLogger())

	id := model.Identity{UserID: "user_1"}
	rec := httptest.NewRecorder()
	h.GetPublishedCreations(rec, authedRequest(http.MethodGet, "/api/user/get-published-creations", nil, id))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	envelope := decodeEnvelope(t, rec)
	if envelope["success"] != true {
		t.Error("success = false, want true")
	}
	creations, ok := envelope["creations"].([]any)
	if !ok || len(creations) != 2 {
		t.Errorf("creations = %v, want 2 entries", envelope["creations"])
	}
}

func TestUserHandler_GetUserCreations_StoreError(t *testing.T) {
	feed := &fakeFeed{listErr: errors.New("connection reset")}
	h := NewUserHandler(feed, testLogger())

	id := model.Identity{UserID: "user_1"}
	rec := httptest.NewRecorder()
	h.GetUserCreations(rec, authedRequest(http.MethodGet, "/api/user/get-user-creations", nil, id))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	envelope := decodeEnvelope(t, rec)
	if envelope["message"] != "Internal server error" {
		t.Errorf("message = %v, want generic failure", envelope["message"])
	}
}

func TestUserHandler_ToggleLikeCreation(t *testing.T) {
	feed := &fakeFeed{toggleMsg: service.MessageLiked}
	h := NewUserHandler(feed, testLogger())

	id := model.Identity{UserID: "user_1"}
	body := strings.NewReader(`{"id":"c1"}`)
	rec := httptest.NewRecorder()
	h.ToggleLikeCreation(rec, authedRequest(http.MethodPost, "/api/user/toggle-like-creation", body, id))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	envelope := decodeEnvelope(t, rec)
	if envelope["success"] != true || envelope["message"] != service.MessageLiked {
		t.Errorf("envelope = %v, want liked message", envelope)
	}
	if feed.toggledID != "c1" || feed.toggleCaller != "user_1" {
		t.Errorf("toggle called with id=%q caller=%q", feed.toggledID, feed.toggleCaller)
	}
}

func TestUserHandler_ToggleLikeCreation_MissingID(t *testing.T) {
	h := NewUserHandler(&fakeFeed{}, testLogger())

	id := model.Identity{UserID: "user_1"}
	rec := httptest.NewRecorder()
	h.ToggleLikeCreation(rec, authedRequest(http.MethodPost, "/api/user/toggle-like-creation", strings.NewReader(`{}`), id))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestUserHandler_ToggleLikeCreation_NotFound(t *testing.T) {
	feed := &fakeFeed{toggleErr: service.ErrCreationNotFound}
	h := NewUserHandler(feed, testLogger())

	id := model.Identity{UserID: "user_1"}
	rec := httptest.NewRecorder()
	h.ToggleLikeCreation(rec, authedRequest(http.MethodPost, "/api/user/toggle-like-creation", strings.NewReader(`{"id":"missing"}`), id))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	envelope := decodeEnvelope(t, rec)
	if envelope["message"] != "Creation not found" {
		t.Errorf("message = %v", envelope["message"])
	}
}
