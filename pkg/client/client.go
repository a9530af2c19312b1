// Package client is an HTTP client for the enhancement service.
package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/heri-science/artifact-pipeline/pkg/pipeline"
)

// Client talks to a running enhance-server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new client.
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// NewWithHTTPClient creates a client with a custom HTTP client.
func NewWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// Response is the service's answer to a process call.
type Response struct {
	Status         string                    `json:"status"`
	ProcessedImage string                    `json:"processed_image"`
	Report         pipeline.ProcessingReport `json:"report"`
	OriginalSize   string                    `json:"original_size"`
	ProcessedSize  string                    `json:"processed_size"`
	ArchivedAs     string                    `json:"archived_as,omitempty"`
}

// Process submits raw image bytes for enhancement.
func (c *Client) Process(ctx context.Context, req pipeline.ProcessRequest) (*Response, error) {
	payload := map[string]any{
		"image": base64.StdEncoding.EncodeToString(req.ImageData),
		"mode":  string(req.Mode),
	}
	if req.Intensity > 0 {
		payload["intensity"] = req.Intensity
	}
	if req.ProfileHint != "" {
		payload["profile"] = req.ProfileHint
	}
	if req.ArtifactType != "" {
		payload["artifact_type"] = req.ArtifactType
		payload["confidence"] = req.Confidence
	}
	if req.OutputFormat != "" {
		payload["output_format"] = req.OutputFormat
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/process", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var processResp Response
	if err := json.NewDecoder(resp.Body).Decode(&processResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &processResp, nil
}

// DecodeImage extracts the raw image bytes from a response's data URI.
func (r *Response) DecodeImage() ([]byte, error) {
	payload := r.ProcessedImage
	if i := strings.IndexByte(payload, ','); i >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[i+1:]
	}
	return base64.StdEncoding.DecodeString(payload)
}
