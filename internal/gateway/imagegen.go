package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// ImageGenClient calls a text-to-image provider that takes a multipart
// prompt and returns raw image bytes.
type ImageGenClient struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
}

// NewImageGenClient creates an ImageGenClient. httpClient may be nil.
func NewImageGenClient(apiURL, apiKey string, httpClient *http.Client) *ImageGenClient {
	if httpClient == nil {
		httpClient = NewProviderHTTPClient()
	}
	return &ImageGenClient{
		apiURL:     apiURL,
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// Generate synthesizes an image from the prompt and returns the binary.
func (c *ImageGenClient) Generate(ctx context.Context, prompt string) ([]byte, error) {
	var form bytes.Buffer
	writer := multipart.NewWriter(&form)
	if err := writer.WriteField("prompt", prompt); err != nil {
		return nil, fmt.Errorf("write prompt field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, &form)
	if err != nil {
		return nil, fmt.Errorf("build image request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, upstreamError("", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, upstreamError("", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, upstreamError(providerMessage(body), fmt.Errorf("image synthesis status %d", resp.StatusCode))
	}
	if len(body) == 0 {
		return nil, upstreamError("", fmt.Errorf("image synthesis returned empty body"))
	}

	return body, nil
}
