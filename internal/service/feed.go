package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/inkgen/inkgen/internal/metrics"
	"github.com/inkgen/inkgen/internal/model"
	"github.com/inkgen/inkgen/internal/repository"
)

// Like toggle outcome messages returned to the client.
const (
	MessageLiked   = "Creation Liked"
	MessageUnliked = "Like Removed"
)

// FeedService serves the community feed and per-user creation listings.
type FeedService struct {
	store   CreationStore
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewFeedService creates a FeedService.
func NewFeedService(store CreationStore, logger *slog.Logger, recorder metrics.Recorder) *FeedService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &FeedService{
		store:   store,
		logger:  logger,
		metrics: recorder,
	}
}

// ListPublished returns all published creations, newest first.
func (s *FeedService) ListPublished(ctx context.Context) ([]*model.Creation, error) {
	creations, err := s.store.ListPublishedCreations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list published creations: %w", err)
	}
	return creations, nil
}

// ListOwn returns every creation owned by the given user, newest first,
// regardless of publish state.
func (s *FeedService) ListOwn(ctx context.Context, userID string) ([]*model.Creation, error) {
	creations, err := s.store.ListCreationsByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list creations for user %s: %w", userID, err)
	}
	return creations, nil
}

// ToggleLike flips the caller's like on a creation and returns the outcome
// message. The whole likes array is read, modified and written back, so
// concurrent toggles on the same row are last-write-wins.
func (s *FeedService) ToggleLike(ctx context.Context, id model.Identity, creationID string) (string, error) {
	creation, err := s.store.GetCreationByID(ctx, creationID)
	if err != nil {
		if errors.Is(err, repository.ErrCreationNotFound) {
			return "", ErrCreationNotFound
		}
		return "", fmt.Errorf("get creation %s: %w", creationID, err)
	}

	liked := creation.ToggleLike(id.UserID)

	if err := s.store.UpdateCreationLikes(ctx, creation.ID, creation.Likes); err != nil {
		if errors.Is(err, repository.ErrCreationNotFound) {
			return "", ErrCreationNotFound
		}
		return "", fmt.Errorf("update likes for creation %s: %w", creationID, err)
	}
	s.metrics.IncLikeToggled()

	s.logger.Info("like toggled",
		slog.String("creation_id", creation.ID),
		slog.String("user_id", id.UserID),
		slog.Bool("liked", liked),
	)

	if liked {
		return MessageLiked, nil
	}
	return MessageUnliked, nil
}
