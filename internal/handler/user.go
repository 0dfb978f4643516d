package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/inkgen/inkgen/internal/auth"
	"github.com/inkgen/inkgen/internal/handler/dto"
	"github.com/inkgen/inkgen/internal/middleware"
	"github.com/inkgen/inkgen/internal/model"
	"github.com/inkgen/inkgen/internal/service"
)

// Feed serves creation listings and the like toggle.
type Feed interface {
	ListPublished(ctx context.Context) ([]*model.Creation, error)
	ListOwn(ctx context.Context, userID string) ([]*model.Creation, error)
	ToggleLike(ctx context.Context, id model.Identity, creationID string) (string, error)
}

// UserHandler handles the authenticated user endpoints.
type UserHandler struct {
	svc    Feed
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc Feed, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		svc:    svc,
		logger: logger,
	}
}

// GetUserCreations handles GET /api/user/get-user-creations.
func (h *UserHandler) GetUserCreations(w http.ResponseWriter, r *http.Request) {
	id := auth.MustIdentityFromContext(r.Context())

	creations, err := h.svc.ListOwn(r.Context(), id.UserID)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToCreationListResponse(creations))
}

// GetPublishedCreations handles GET /api/user/get-published-creations.
func (h *UserHandler) GetPublishedCreations(w http.ResponseWriter, r *http.Request) {
	creations, err := h.svc.ListPublished(r.Context())
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToCreationListResponse(creations))
}

// ToggleLikeCreation handles POST /api/user/toggle-like-creation.
func (h *UserHandler) ToggleLikeCreation(w http.ResponseWriter, r *http.Request) {
	var req dto.ToggleLikeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ID == "" {
		writeMessage(w, http.StatusBadRequest, "Creation ID is required")
		return
	}

	id := auth.MustIdentityFromContext(r.Context())

	message, err := h.svc.ToggleLike(r.Context(), id, req.ID)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MessageResponse{Success: true, Message: message})
}

func (h *UserHandler) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, service.ErrCreationNotFound) {
		writeMessage(w, http.StatusNotFound, "Creation not found")
		return
	}

	h.logger.Error("user request failed",
		slog.String("request_id", middleware.GetRequestID(r.Context())),
		slog.String("error", err.Error()),
	)
	writeMessage(w, http.StatusInternalServerError, "Internal server error")
}
