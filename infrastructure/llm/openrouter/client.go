// ABOUTME: OpenRouter backend implementing both the chat and image generation interfaces
// ABOUTME: Image models return data URLs or hosted URLs inside the message images field

package openrouter

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"blockchain-daily/core/interfaces"
)

const defaultBaseURL = "https://openrouter.ai/api/v1"

// Client implements ChatClient and ImageClient against the OpenRouter API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient interfaces.HTTPClient
	logger     interfaces.Logger
}

// NewClient creates an OpenRouter client.
func NewClient(apiKey, baseURL string, httpClient interfaces.HTTPClient, logger interfaces.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openrouter API key cannot be empty")
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

type chatCompletionRequest struct {
	Model       string                   `json:"model"`
	Messages    []interfaces.ChatMessage `json:"messages"`
	Temperature float64                  `json:"temperature,omitempty"`
	MaxTokens   int                      `json:"max_tokens,omitempty"`
	Modalities  []string                 `json:"modalities,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Images  []struct {
				ImageURL struct {
					URL string `json:"url"`
				} `json:"image_url"`
			} `json:"images"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends a chat completion request and returns the text output.
func (c *Client) Complete(ctx context.Context, req interfaces.ChatRequest) (string, error) {
	resp, err := c.post(ctx, chatCompletionRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in openrouter response")
	}

	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("empty response from openrouter")
	}
	return content, nil
}

// GenerateImage asks an image-capable model for a picture. Returns
// (nil, nil) when the model answered without producing an image.
func (c *Client) GenerateImage(ctx context.Context, model, prompt string) ([]byte, error) {
	resp, err := c.post(ctx, chatCompletionRequest{
		Model: model,
		Messages: []interfaces.ChatMessage{
			{Role: "user", Content: prompt},
		},
		Modalities: []string{"image", "text"},
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in openrouter response")
	}

	images := resp.Choices[0].Message.Images
	if len(images) == 0 {
		return nil, nil
	}

	return c.decodeImageURL(ctx, images[0].ImageURL.URL)
}

// decodeImageURL handles both data URLs and hosted image URLs.
func (c *Client) decodeImageURL(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, nil
	}

	if strings.HasPrefix(url, "data:") {
		idx := strings.Index(url, "base64,")
		if idx < 0 {
			return nil, fmt.Errorf("unsupported data URL encoding")
		}
		data, err := base64.StdEncoding.DecodeString(url[idx+len("base64,"):])
		if err != nil {
			return nil, fmt.Errorf("failed to decode image data URL: %w", err)
		}
		return data, nil
	}

	resp, err := c.httpClient.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to download generated image: %w", err)
	}
	defer resp.Body().Close()

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("image download returned status %d", resp.StatusCode())
	}
	return io.ReadAll(resp.Body())
}

// post sends one chat completion call and decodes the envelope.
func (c *Client) post(ctx context.Context, payload chatCompletionRequest) (*chatCompletionResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	headers := map[string]string{
		"Authorization": "Bearer " + c.apiKey,
		"Content-Type":  "application/json",
	}

	resp, err := c.httpClient.Do(ctx, "POST", c.baseURL+"/chat/completions", headers, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("openrouter request failed: %w", err)
	}
	defer resp.Body().Close()

	raw, err := io.ReadAll(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("failed to read openrouter response: %w", err)
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("openrouter returned status %d: %s", resp.StatusCode(), truncate(raw, 200))
	}

	var decoded chatCompletionResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("failed to parse openrouter response: %w", err)
	}
	if decoded.Error != nil {
		return nil, fmt.Errorf("openrouter error: %s", decoded.Error.Message)
	}

	return &decoded, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
