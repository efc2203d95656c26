// ABOUTME: LLM and image-generation provider interfaces consumed by the core
// ABOUTME: Providers are chat-completion shaped; responses are single text or image payloads

package interfaces

import "context"

// ChatMessage is one message in a chat-completion request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest describes a single completion request.
type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

// ChatClient issues one completion request and returns the text of the
// first choice. Implementations exist for OpenRouter and Anthropic Claude.
type ChatClient interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

// ImageClient generates a single image for a prompt. A (nil, nil) return
// means the provider produced no image; this is not an error, the caller
// treats it as "no image produced" and moves on.
type ImageClient interface {
	GenerateImage(ctx context.Context, model, prompt string) ([]byte, error)
}

// SpeechClient converts text to audio bytes (MP3). Single call, no
// streaming contract.
type SpeechClient interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}
