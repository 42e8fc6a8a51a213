package describe

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
)

const (
	claudeAPIURL     = "https://api.anthropic.com/v1/messages"
	claudeAPIVersion = "2023-06-01"
	defaultModel     = "claude-sonnet-4-20250514"
	maxTokens        = 1024
)

// ClaudeClient describes images with the Claude Messages API.
type ClaudeClient struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
	model      string
}

// ClaudeConfig holds configuration for the Claude client.
type ClaudeConfig struct {
	APIKey string
	Model  string
	APIURL string
}

// NewClaudeClient creates a new Claude API client.
func NewClaudeClient(config ClaudeConfig) *ClaudeClient {
	model := config.Model
	if model == "" {
		model = defaultModel
	}
	apiURL := config.APIURL
	if apiURL == "" {
		apiURL = claudeAPIURL
	}

	return &ClaudeClient{
		apiKey: config.APIKey,
		apiURL: apiURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		model: model,
	}
}

type contentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *imageSource `json:"source,omitempty"`
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

// claudeRequest is the request body for the Claude API.
type claudeRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

// claudeResponse is the response from the Claude API.
type claudeResponse struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Role    string `json:"role"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Describe sends the image with the target's prompt and returns the text.
func (c *ClaudeClient) Describe(ctx context.Context, img Image, target Target) (string, error) {
	if len(img.Data) == 0 {
		return "", ErrEmptyImage
	}

	req := claudeRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		System:    SystemPrompt,
		Messages: []message{{
			Role: "user",
			Content: []contentBlock{
				{
					Type: "image",
					Source: &imageSource{
						Type:      "base64",
						MediaType: img.mimeType(),
						Data:      base64.StdEncoding.EncodeToString(img.Data),
					},
				},
				{Type: "text", Text: promptFor(target)},
			},
		}},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", claudeAPIVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: send request: %v", ErrTransient, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrTransient, err)
	}

	if resp.StatusCode != http.StatusOK {
		if transientStatus(resp.StatusCode) || resp.StatusCode == 529 {
			return "", fmt.Errorf("%w: API error (status %d): %s", ErrTransient, resp.StatusCode, string(respBody))
		}
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var claudeResp claudeResponse
	if err := json.Unmarshal(respBody, &claudeResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if claudeResp.Error != nil {
		return "", fmt.Errorf("API error: %s - %s", claudeResp.Error.Type, claudeResp.Error.Message)
	}

	if claudeResp.StopReason == "refusal" {
		return "", ErrContentPolicyBlocked
	}

	var text strings.Builder
	for _, block := range claudeResp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", fmt.Errorf("empty response from API")
	}

	return strings.TrimSpace(text.String()), nil
}
