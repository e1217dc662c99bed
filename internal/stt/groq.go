package stt

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// GroqEngine implements STT using Groq's OpenAI-compatible audio API
type GroqEngine struct {
	client *openai.Client
	model  string
}

// NewGroqEngine creates a new Groq STT engine. baseURL points at Groq's
// OpenAI-compatible endpoint.
func NewGroqEngine(apiKey, baseURL, model string) *GroqEngine {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &GroqEngine{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Name returns the engine name
func (e *GroqEngine) Name() string {
	return "groq"
}

// Model returns the configured model identifier
func (e *GroqEngine) Model() string {
	return e.model
}

// Transcribe sends a complete audio container to Groq and returns the
// recognized text.
func (e *GroqEngine) Transcribe(ctx context.Context, filename string, payload []byte) (*Result, error) {
	log.Printf("[Groq STT] Transcribing %s (%d bytes) with model %s", filename, len(payload), e.model)

	start := time.Now()
	resp, err := e.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:       e.model,
		FilePath:    filename,
		Reader:      bytes.NewReader(payload),
		Language:    "en",
		Temperature: 0.0,
		Format:      openai.AudioResponseFormatJSON,
	})
	elapsed := time.Since(start)

	if err != nil {
		return nil, fmt.Errorf("groq transcription failed: %w", err)
	}

	log.Printf("[Groq STT] Transcription successful: length=%d, took=%v", len(resp.Text), elapsed)

	return &Result{
		Text:           resp.Text,
		Model:          e.model,
		ProcessingTime: elapsed,
	}, nil
}
