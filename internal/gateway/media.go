package gateway

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Named transformations applied by the media storage provider.
const (
	// TransformationBackgroundRemoval strips the image background at
	// upload time.
	TransformationBackgroundRemoval = "e_background_removal"
	// transformationObjectRemovalPrefix builds a generative object-removal
	// delivery transformation: e_gen_remove:<object>.
	transformationObjectRemovalPrefix = "e_gen_remove:"
)

// MediaClient uploads binaries to managed media storage and builds
// transformation delivery URLs. Upload requests are authenticated with a
// SHA-1 signature over the sorted parameters.
type MediaClient struct {
	uploadURL  string
	apiKey     string
	apiSecret  string
	httpClient *http.Client
	now        func() time.Time
}

// NewMediaClient creates a MediaClient. httpClient may be nil.
func NewMediaClient(uploadURL, apiKey, apiSecret string, httpClient *http.Client) *MediaClient {
	if httpClient == nil {
		httpClient = NewProviderHTTPClient()
	}
	return &MediaClient{
		uploadURL:  strings.TrimSuffix(uploadURL, "/"),
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		httpClient: httpClient,
		now:        time.Now,
	}
}

// UploadResult identifies a stored asset.
type UploadResult struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
}

// Upload stores the image bytes, optionally applying a named transformation
// at upload time, and returns the durable URL.
func (c *MediaClient) Upload(ctx context.Context, image []byte, transformation string) (*UploadResult, error) {
	params := map[string]string{
		"timestamp": strconv.FormatInt(c.now().Unix(), 10),
	}
	if transformation != "" {
		params["transformation"] = transformation
	}

	var form bytes.Buffer
	writer := multipart.NewWriter(&form)

	dataURI := "data:image/png;base64," + base64.StdEncoding.EncodeToString(image)
	if err := writer.WriteField("file", dataURI); err != nil {
		return nil, fmt.Errorf("write file field: %w", err)
	}
	for key, value := range params {
		if err := writer.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("write %s field: %w", key, err)
		}
	}
	if err := writer.WriteField("api_key", c.apiKey); err != nil {
		return nil, fmt.Errorf("write api_key field: %w", err)
	}
	if err := writer.WriteField("signature", signUploadParams(params, c.apiSecret)); err != nil {
		return nil, fmt.Errorf("write signature field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL+"/image/upload", &form)
	if err != nil {
		return nil, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, upstreamError("", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, upstreamError("", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, upstreamError(providerMessage(body), fmt.Errorf("media upload status %d", resp.StatusCode))
	}

	var result UploadResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, upstreamError("", fmt.Errorf("decode upload response: %w", err))
	}
	if result.SecureURL == "" {
		return nil, upstreamError("", fmt.Errorf("upload response missing secure_url"))
	}

	return &result, nil
}

// ObjectRemovalURL builds the delivery URL that renders the asset with the
// named object generatively removed. The transformation segment is inserted
// into the upload delivery path.
func (c *MediaClient) ObjectRemovalURL(secureURL, object string) string {
	transformation := transformationObjectRemovalPrefix + strings.ReplaceAll(strings.TrimSpace(object), " ", "%20")
	return strings.Replace(secureURL, "/image/upload/", "/image/upload/"+transformation+"/", 1)
}

// signUploadParams computes the provider's upload signature: the SHA-1 hex
// digest of the sorted key=value pairs joined by '&', followed by the secret.
func signUploadParams(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+params[key])
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + secret))
	return hex.EncodeToString(sum[:])
}
