// Package identity talks to the external identity provider's admin API.
// The provider owns the user record; this package reads the plan tier and
// free-usage counter from user metadata and writes the counter back.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/inkgen/inkgen/internal/model"
)

// Common errors for identity operations.
var (
	ErrUserNotFound = errors.New("identity user not found")
	ErrUnavailable  = errors.New("identity provider unavailable")
)

// Client calls the identity provider's REST admin API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a Client. httpClient may be nil, in which case a
// client with provider-call timeouts is used.
func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = NewProviderHTTPClient()
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// userPayload mirrors the provider's user resource. Plan and usage live in
// private metadata, which only the backend can read.
type userPayload struct {
	ID              string         `json:"id"`
	PrivateMetadata map[string]any `json:"private_metadata"`
}

// GetProfile fetches the plan tier and free-usage counter for a user.
func (c *Client) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/users/"+userID, nil)
	if err != nil {
		return nil, fmt.Errorf("build profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrUserNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read profile response: %w", err)
	}

	var payload userPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode profile response: %w", err)
	}

	return profileFromPayload(userID, payload), nil
}

// SetFreeUsage writes the free-usage counter back to the user's private
// metadata. The provider merges the patch, leaving other metadata intact.
func (c *Client) SetFreeUsage(ctx context.Context, userID string, usage int) error {
	patch := map[string]any{
		"private_metadata": map[string]any{
			"free_usage": usage,
		},
	}
	body, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("marshal metadata patch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.baseURL+"/users/"+userID+"/metadata", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build metadata request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrUserNotFound
	case resp.StatusCode >= 300:
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	return nil
}

// profileFromPayload extracts plan and usage with safe defaults: users with
// no metadata are free-tier with zero consumption.
func profileFromPayload(userID string, payload userPayload) *model.Profile {
	profile := &model.Profile{
		UserID: userID,
		Plan:   model.PlanFree,
	}

	if plan, ok := payload.PrivateMetadata["plan"].(string); ok && plan != "" {
		profile.Plan = plan
	}

	switch usage := payload.PrivateMetadata["free_usage"].(type) {
	case float64:
		profile.FreeUsage = int(usage)
	case json.Number:
		if n, err := usage.Int64(); err == nil {
			profile.FreeUsage = int(n)
		}
	}
	if profile.FreeUsage < 0 {
		profile.FreeUsage = 0
	}

	return profile
}
