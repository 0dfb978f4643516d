// Package model defines domain entities for the application.
package model

import (
	"slices"
	"time"
)

// CreationType identifies the kind of generation that produced a creation.
type CreationType string

const (
	CreationTypeArticle      CreationType = "article"
	CreationTypeBlogTitle    CreationType = "blog-title"
	CreationTypeImage        CreationType = "image"
	CreationTypeResumeReview CreationType = "resume-review"
)

// IsValid checks if the creation type is one of the known values.
func (t CreationType) IsValid() bool {
	switch t {
	case CreationTypeArticle, CreationTypeBlogTitle, CreationTypeImage, CreationTypeResumeReview:
		return true
	}
	return false
}

// Creation is one persisted record of a successful generation.
// Rows are append-only; only the likes set changes after insert.
type Creation struct {
	ID        string       `json:"id"`
	UserID    string       `json:"user_id"`
	Prompt    string       `json:"prompt"`
	Content   string       `json:"content"`
	Type      CreationType `json:"type"`
	Publish   bool         `json:"publish"`
	Likes     []string     `json:"likes"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// LikedBy reports whether the given user has liked this creation.
func (c *Creation) LikedBy(userID string) bool {
	return slices.Contains(c.Likes, userID)
}

// ToggleLike flips the given user's membership in the likes set and
// returns true if the user likes the creation afterwards.
func (c *Creation) ToggleLike(userID string) bool {
	if i := slices.Index(c.Likes, userID); i >= 0 {
		c.Likes = slices.Delete(c.Likes, i, i+1)
		return false
	}
	c.Likes = append(c.Likes, userID)
	return true
}
