// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/inkgen/inkgen/internal/gateway"
	"github.com/inkgen/inkgen/internal/metrics"
	"github.com/inkgen/inkgen/internal/model"
)

// Service errors.
var (
	ErrCreationNotFound = errors.New("creation not found")
)

// Generator invokes one external generation capability.
type Generator interface {
	Invoke(ctx context.Context, req gateway.Request) (*gateway.Result, error)
}

// CreationStore persists and reads creation records.
type CreationStore interface {
	CreateCreation(ctx context.Context, creation *model.Creation) error
	GetCreationByID(ctx context.Context, id string) (*model.Creation, error)
	ListPublishedCreations(ctx context.Context) ([]*model.Creation, error)
	ListCreationsByOwner(ctx context.Context, userID string) ([]*model.Creation, error)
	UpdateCreationLikes(ctx context.Context, id string, likes []string) error
}

// UsageLedger gates and records free-tier consumption.
type UsageLedger interface {
	Check(id model.Identity) error
	Consume(ctx context.Context, id model.Identity) error
}

// GenerationService runs one generation request through its fixed sequence:
// quota check, gateway invocation, persistence, quota update. There are no
// retries and no compensation; the accepted inconsistencies are noted at
// each step.
type GenerationService struct {
	gateway Generator
	store   CreationStore
	ledger  UsageLedger
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewGenerationService creates a GenerationService.
func NewGenerationService(gw Generator, store CreationStore, ledger UsageLedger, logger *slog.Logger, recorder metrics.Recorder) *GenerationService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &GenerationService{
		gateway: gw,
		store:   store,
		ledger:  ledger,
		logger:  logger,
		metrics: recorder,
	}
}

// GenerateInput defines input for one generation request.
type GenerateInput struct {
	Capability gateway.Capability
	Prompt     string
	Length     int
	Object     string
	Publish    bool
	Upload     *gateway.Upload
}

// Generate executes the request state machine and returns the stored
// creation. Quota-gated capabilities are checked before any external call;
// premium-only capabilities are gated inside the gateway instead.
func (s *GenerationService) Generate(ctx context.Context, id model.Identity, input GenerateInput) (*model.Creation, error) {
	if !input.Capability.PremiumOnly() {
		if err := s.ledger.Check(id); err != nil {
			s.metrics.IncQuotaDenied()
			return nil, err
		}
	}

	start := time.Now()
	result, err := s.gateway.Invoke(ctx, gateway.Request{
		Capability: input.Capability,
		Plan:       id.Plan,
		Prompt:     input.Prompt,
		MaxTokens:  input.Length,
		Object:     input.Object,
		Upload:     input.Upload,
	})
	s.metrics.ObserveGenerationDuration(time.Since(start))
	if err != nil {
		s.metrics.IncGenerationFailed()
		return nil, err
	}

	now := time.Now().UTC()
	creation := &model.Creation{
		ID:        ulid.Make().String(),
		UserID:    id.UserID,
		Prompt:    storedPrompt(input),
		Content:   result.Content,
		Type:      creationType(input.Capability),
		Publish:   input.Capability == gateway.CapabilityImage && input.Publish,
		Likes:     []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	// A store failure here leaves a completed generation with no durable
	// record; nothing compensates for it and the quota is not charged.
	if err := s.store.CreateCreation(ctx, creation); err != nil {
		return nil, fmt.Errorf("persist creation: %w", err)
	}
	s.metrics.IncCreationStored()

	// Usage is recorded only after the row is durable. A failure here is
	// logged and swallowed: the user keeps the result and gets one free
	// extra use.
	if !input.Capability.PremiumOnly() {
		if err := s.ledger.Consume(ctx, id); err != nil {
			s.logger.Error("usage update failed after successful generation",
				slog.String("user_id", id.UserID),
				slog.String("creation_id", creation.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.Info("creation stored",
		slog.String("creation_id", creation.ID),
		slog.String("user_id", id.UserID),
		slog.String("type", string(creation.Type)),
		slog.Bool("publish", creation.Publish),
	)

	return creation, nil
}

// storedPrompt is what gets persisted with the creation. Upload-based
// capabilities store a fixed description instead of the raw input.
func storedPrompt(input GenerateInput) string {
	switch input.Capability {
	case gateway.CapabilityBackgroundRemoval:
		return "Remove background from image"
	case gateway.CapabilityObjectRemoval:
		return fmt.Sprintf("Removed %s from image", input.Object)
	case gateway.CapabilityResumeReview:
		return "Review the uploaded resume"
	default:
		return input.Prompt
	}
}

// creationType maps a capability to the persisted record type. All three
// image capabilities store the same type.
func creationType(capability gateway.Capability) model.CreationType {
	switch capability {
	case gateway.CapabilityArticle:
		return model.CreationTypeArticle
	case gateway.CapabilityBlogTitle:
		return model.CreationTypeBlogTitle
	case gateway.CapabilityResumeReview:
		return model.CreationTypeResumeReview
	default:
		return model.CreationTypeImage
	}
}
