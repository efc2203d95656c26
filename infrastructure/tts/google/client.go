// ABOUTME: Google Cloud text-to-speech backend for video narration
// ABOUTME: Long narrations are split into chunks and the MP3 output concatenated

package google

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"

	"blockchain-daily/core/interfaces"
)

// The synthesis API caps input size per request.
const maxChunkSize = 1000

// Client implements the SpeechClient interface using Google Cloud TTS.
type Client struct {
	client       *texttospeech.Client
	languageCode string
	voiceName    string
	speakingRate float64
	logger       interfaces.Logger
}

// NewClient creates a TTS client. Credentials come from the ambient
// Google application default credentials.
func NewClient(ctx context.Context, languageCode, voiceName string, speakingRate float64, logger interfaces.Logger) (*Client, error) {
	client, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create TTS client: %w", err)
	}

	if languageCode == "" {
		languageCode = "cmn-CN"
	}
	if speakingRate == 0 {
		speakingRate = 1.0
	}

	return &Client{
		client:       client,
		languageCode: languageCode,
		voiceName:    voiceName,
		speakingRate: speakingRate,
		logger:       logger,
	}, nil
}

// Synthesize converts text to MP3 audio.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("no text to synthesize")
	}

	chunks := splitTextIntoChunks(text, maxChunkSize)
	var audioContent bytes.Buffer

	for i, chunk := range chunks {
		req := texttospeechpb.SynthesizeSpeechRequest{
			Input: &texttospeechpb.SynthesisInput{
				InputSource: &texttospeechpb.SynthesisInput_Text{Text: chunk},
			},
			Voice: &texttospeechpb.VoiceSelectionParams{
				LanguageCode: c.languageCode,
				Name:         c.voiceName,
			},
			AudioConfig: &texttospeechpb.AudioConfig{
				AudioEncoding: texttospeechpb.AudioEncoding_MP3,
				SpeakingRate:  c.speakingRate,
			},
		}

		resp, err := c.client.SynthesizeSpeech(ctx, &req)
		if err != nil {
			return nil, fmt.Errorf("failed to synthesize chunk %d: %w", i+1, err)
		}

		audioContent.Write(resp.AudioContent)
	}

	c.logger.Debug("Speech synthesized", map[string]interface{}{
		"chunks": len(chunks),
		"bytes":  audioContent.Len(),
	})
	return audioContent.Bytes(), nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// splitTextIntoChunks breaks text on sentence ends first, falling back
// to hard rune cuts for unbroken runs. Chinese prose has no spaces, so
// word splitting is not an option here.
func splitTextIntoChunks(text string, maxSize int) []string {
	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	for _, r := range text {
		current.WriteRune(r)
		if current.Len() >= maxSize {
			flush()
			continue
		}
		if (r == '。' || r == '！' || r == '？' || r == '.' || r == '\n') && current.Len() >= maxSize/2 {
			flush()
		}
	}
	flush()

	return chunks
}
