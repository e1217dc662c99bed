package stt

import "context"

// Engine defines the interface for batch speech-to-text engines
type Engine interface {
	// Transcribe transcribes a complete audio payload and returns the result.
	// filename travels with the payload so the engine can infer the container
	// format.
	Transcribe(ctx context.Context, filename string, payload []byte) (*Result, error)

	// Name returns the name of the engine (e.g., "groq")
	Name() string
}
