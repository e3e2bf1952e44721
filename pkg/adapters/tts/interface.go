package tts

import (
	"context"

	"github.com/Neroli1108/intellidoc-reader/pkg/speech"
)

// TextToSpeech defines the contract for any TTS backend implementation.
type TextToSpeech interface {
	// Name returns the backend name for logging/metrics.
	Name() string
	// Synthesize renders the full text into one audio buffer.
	Synthesize(ctx context.Context, text string) (speech.AudioData, error)
	// SynthesizeStream renders text as a sequence of chunks. The channel
	// closes after the final chunk; a later failure never invalidates
	// chunks already delivered.
	SynthesizeStream(ctx context.Context, text string) (<-chan speech.AudioChunk, error)
	// WordTimings returns per-word timing for the text at the current rate
	// without synthesizing audio.
	WordTimings(text string) ([]speech.WordTiming, error)
	// Stop aborts any in-flight synthesis.
	Stop() error
	// AvailableVoices lists the voices the backend can render.
	AvailableVoices() []speech.VoiceInfo
	// SetRate sets the speaking rate, clamped to [0.25, 3.0].
	SetRate(rate float64)
	// SetVoice selects a voice by id. model_not_found when the backing
	// asset does not exist.
	SetVoice(id string) error
}

// Config contains backend-agnostic TTS configuration.
type Config struct {
	VoiceID    string
	Language   string
	Rate       float64
	SampleRate int
}

// ClampRate bounds a speaking rate to the supported range.
func ClampRate(rate float64) float64 {
	if rate < 0.25 {
		return 0.25
	}
	if rate > 3.0 {
		return 3.0
	}
	return rate
}
