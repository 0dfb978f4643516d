// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/inkgen/inkgen/internal/model"
)

// GenerateArticleRequest is the body for POST /api/ai/generate-article.
type GenerateArticleRequest struct {
	Prompt string `json:"prompt"`
	Length int    `json:"length,omitempty"`
}

// GenerateBlogTitleRequest is the body for POST /api/ai/generate-blog-title.
type GenerateBlogTitleRequest struct {
	Prompt string `json:"prompt"`
}

// GenerateImageRequest is the body for POST /api/ai/generate-image.
type GenerateImageRequest struct {
	Prompt  string `json:"prompt"`
	Publish bool   `json:"publish,omitempty"`
}

// ToggleLikeRequest is the body for POST /api/user/toggle-like-creation.
type ToggleLikeRequest struct {
	ID string `json:"id"`
}

// ContentResponse carries one generated result back to the client.
type ContentResponse struct {
	Success bool   `json:"success"`
	Content string `json:"content"`
}

// CreationsResponse carries a list of creations.
type CreationsResponse struct {
	Success   bool                `json:"success"`
	Creations []*CreationResponse `json:"creations"`
}

// MessageResponse carries an outcome message, for both failures and
// message-only successes like the like toggle.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CreationResponse represents one creation in API responses.
type CreationResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Prompt    string    `json:"prompt"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	Publish   bool      `json:"publish"`
	Likes     []string  `json:"likes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToCreationResponse converts a Creation model to its response DTO.
func ToCreationResponse(c *model.Creation) *CreationResponse {
	likes := c.Likes
	if likes == nil {
		likes = []string{}
	}
	return &CreationResponse{
		ID:        c.ID,
		UserID:    c.UserID,
		Prompt:    c.Prompt,
		Content:   c.Content,
		Type:      string(c.Type),
		Publish:   c.Publish,
		Likes:     likes,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// ToCreationListResponse converts a list of creations.
func ToCreationListResponse(creations []*model.Creation) *CreationsResponse {
	out := make([]*CreationResponse, 0, len(creations))
	for _, c := range creations {
		out = append(out, ToCreationResponse(c))
	}
	return &CreationsResponse{Success: true, Creations: out}
}
