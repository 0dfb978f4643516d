package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// completionTemperature matches the provider default used across all text
// capabilities.
const completionTemperature = 0.7

// LLMClient calls an OpenAI-compatible chat completions endpoint.
type LLMClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewLLMClient creates an LLMClient. httpClient may be nil.
func NewLLMClient(baseURL, apiKey, model string, httpClient *http.Client) *LLMClient {
	if httpClient == nil {
		httpClient = NewProviderHTTPClient()
	}
	return &LLMClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: httpClient,
	}
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type providerErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends a single-user-message completion request and returns the
// generated text. maxTokens of zero leaves the bound to the provider.
func (c *LLMClient) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	payload := chatCompletionRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: completionTemperature,
		MaxTokens:   maxTokens,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build completion request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", upstreamError("", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", upstreamError("", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", upstreamError(providerMessage(respBody), fmt.Errorf("completion status %d", resp.StatusCode))
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return "", upstreamError("", fmt.Errorf("decode completion response: %w", err))
	}
	if len(completion.Choices) == 0 {
		return "", upstreamError("", errors.New("completion response has no choices"))
	}

	return completion.Choices[0].Message.Content, nil
}

// providerMessage extracts an error message from a provider response body.
// Returns empty string when the body is not the expected shape.
func providerMessage(body []byte) string {
	var parsed providerErrorResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}
	return parsed.Error.Message
}
