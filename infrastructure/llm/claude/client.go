// ABOUTME: Claude chat backend using the official Anthropic SDK
// ABOUTME: System messages are lifted into the system block; text blocks are concatenated on the way out

package claude

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"blockchain-daily/core/interfaces"
)

const defaultMaxTokens = 4096

// Client implements the ChatClient interface against the Anthropic API.
type Client struct {
	client       anthropic.Client
	defaultModel string
	logger       interfaces.Logger
}

// NewClient creates a Claude chat client.
func NewClient(apiKey, defaultModel string, logger interfaces.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key cannot be empty")
	}

	return &Client{
		client:       anthropic.NewClient(option.WithAPIKey(apiKey)),
		defaultModel: defaultModel,
		logger:       logger,
	}, nil
}

// Complete sends a chat request and returns the model's text output.
func (c *Client) Complete(ctx context.Context, req interfaces.ChatRequest) (string, error) {
	messages, systemText, err := convertMessages(req.Messages)
	if err != nil {
		return "", err
	}

	model := req.Model
	if model == "" {
		model = c.defaultModel
	}

	maxTokens := int64(req.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		Messages:  messages,
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}
	if systemText != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemText}}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("claude API call failed: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("empty response from claude API")
	}

	return text.String(), nil
}

// convertMessages splits system messages out of the conversation.
func convertMessages(messages []interfaces.ChatMessage) ([]anthropic.MessageParam, string, error) {
	if len(messages) == 0 {
		return nil, "", fmt.Errorf("messages cannot be empty")
	}

	converted := make([]anthropic.MessageParam, 0, len(messages))
	var systemText string
	for _, msg := range messages {
		if msg.Role == "system" {
			if systemText == "" {
				systemText = msg.Content
			}
			continue
		}

		switch msg.Role {
		case "assistant":
			converted = append(converted, anthropic.NewAssistantMessage(
				anthropic.NewTextBlock(msg.Content),
			))
		default:
			converted = append(converted, anthropic.NewUserMessage(
				anthropic.NewTextBlock(msg.Content),
			))
		}
	}

	if len(converted) == 0 {
		return nil, "", fmt.Errorf("at least one non-system message is required")
	}

	return converted, systemText, nil
}
