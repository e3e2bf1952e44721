package stt

import (
	"context"

	"github.com/Neroli1108/intellidoc-reader/pkg/speech"
)

// SpeechToText defines the contract for any STT backend implementation.
type SpeechToText interface {
	// Name returns the backend name for logging/metrics.
	Name() string
	// StartListening opens a continuous transcription session. Results
	// arrive on the returned channel until StopListening; starting while
	// already listening is an invalid_state error.
	StartListening(ctx context.Context) (<-chan speech.TranscriptionResult, error)
	// StopListening ends the session. The result channel closes after any
	// in-flight result is delivered.
	StopListening() error
	// Transcribe performs one-shot recognition of a complete buffer.
	Transcribe(ctx context.Context, samples []float32, sampleRate int) (speech.TranscriptionResult, error)
	// IsListening reports whether a session is active.
	IsListening() bool
	// SupportedLanguages returns BCP-47 language tags the backend accepts.
	SupportedLanguages() []string
}

// Config contains backend-agnostic STT configuration.
type Config struct {
	Language        string
	SampleRate      int
	AutoPunctuation bool
	InterimResults  bool
}
