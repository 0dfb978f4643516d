package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/inkgen/inkgen/internal/model"
)

// Common errors for creation repository operations.
var (
	ErrCreationNotFound = errors.New("creation not found")
)

// CreateCreation inserts a new creation row. Rows are append-only; the
// caller only ever touches likes afterwards.
func (r *Repository) CreateCreation(ctx context.Context, creation *model.Creation) error {
	query := `
		INSERT INTO creations (id, user_id, prompt, content, type, publish, likes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	likes := creation.Likes
	if likes == nil {
		likes = []string{}
	}

	_, err := r.pool.Exec(ctx, query,
		creation.ID,
		creation.UserID,
		creation.Prompt,
		creation.Content,
		creation.Type,
		creation.Publish,
		likes,
		creation.CreatedAt,
		creation.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create creation: %w", err)
	}

	return nil
}

// GetCreationByID retrieves a creation by its ID.
func (r *Repository) GetCreationByID(ctx context.Context, id string) (*model.Creation, error) {
	query := `
		SELECT id, user_id, prompt, content, type, publish, likes, created_at, updated_at
		FROM creations
		WHERE id = $1
	`

	creation, err := scanCreation(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCreationNotFound
		}
		return nil, fmt.Errorf("failed to get creation by ID: %w", err)
	}

	return creation, nil
}

// ListPublishedCreations returns all published creations, newest first.
// The feed is a full snapshot per call; there is no pagination in the API.
func (r *Repository) ListPublishedCreations(ctx context.Context) ([]*model.Creation, error) {
	query := `
		SELECT id, user_id, prompt, content, type, publish, likes, created_at, updated_at
		FROM creations
		WHERE publish = TRUE
		ORDER BY created_at DESC, id DESC
	`

	return r.queryCreations(ctx, query)
}

// ListCreationsByOwner returns all creations owned by a user, newest first.
func (r *Repository) ListCreationsByOwner(ctx context.Context, userID string) ([]*model.Creation, error) {
	query := `
		SELECT id, user_id, prompt, content, type, publish, likes, created_at, updated_at
		FROM creations
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`

	return r.queryCreations(ctx, query, userID)
}

// UpdateCreationLikes replaces the likes set of a creation.
// Whole-array writes make concurrent toggles last-write-wins; the API
// documents that rather than serializing them.
func (r *Repository) UpdateCreationLikes(ctx context.Context, id string, likes []string) error {
	query := `
		UPDATE creations
		SET likes = $2, updated_at = NOW()
		WHERE id = $1
	`

	if likes == nil {
		likes = []string{}
	}

	result, err := r.pool.Exec(ctx, query, id, likes)
	if err != nil {
		return fmt.Errorf("failed to update creation likes: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrCreationNotFound
	}

	return nil
}

func (r *Repository) queryCreations(ctx context.Context, query string, args ...any) ([]*model.Creation, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list creations: %w", err)
	}
	defer rows.Close()

	var creations []*model.Creation
	for rows.Next() {
		creation, err := scanCreation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan creation: %w", err)
		}
		creations = append(creations, creation)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating creations: %w", err)
	}

	return creations, nil
}

func scanCreation(row pgx.Row) (*model.Creation, error) {
	var creation model.Creation
	err := row.Scan(
		&creation.ID,
		&creation.UserID,
		&creation.Prompt,
		&creation.Content,
		&creation.Type,
		&creation.Publish,
		&creation.Likes,
		&creation.CreatedAt,
		&creation.UpdatedAt,
	)
	return &creation, err
}
