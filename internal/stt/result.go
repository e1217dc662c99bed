package stt

import "time"

// Result represents the result of a speech-to-text transcription
type Result struct {
	Text           string        // The transcribed text
	Model          string        // Model identifier used for this transcription
	ProcessingTime time.Duration // Wall-clock latency of the engine call
}
