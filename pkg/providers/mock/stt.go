// Package mock provides deterministic STT/TTS backends for tests and
// demos. No audio hardware or network is touched.
package mock

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Neroli1108/intellidoc-reader/pkg/adapters/stt"
	"github.com/Neroli1108/intellidoc-reader/pkg/errorsx"
	"github.com/Neroli1108/intellidoc-reader/pkg/speech"
)

// STTConfig scripts the mock's output.
type STTConfig struct {
	// Transcripts are emitted as final results, one per EmitInterval tick.
	Transcripts  []string
	EmitInterval time.Duration
	EmitInterim  bool
	Confidence   float64
}

// SpeechToText replays scripted transcripts on a timer.
type SpeechToText struct {
	cfg       STTConfig
	mu        sync.Mutex
	cancel    context.CancelFunc
	listening atomic.Bool
}

func NewSTT(cfg STTConfig) *SpeechToText {
	if len(cfg.Transcripts) == 0 {
		cfg.Transcripts = []string{"mock transcript"}
	}
	if cfg.EmitInterval <= 0 {
		cfg.EmitInterval = 50 * time.Millisecond
	}
	if cfg.Confidence == 0 {
		cfg.Confidence = 0.95
	}
	return &SpeechToText{cfg: cfg}
}

func (s *SpeechToText) Name() string { return "mock" }

func (s *SpeechToText) StartListening(ctx context.Context) (<-chan speech.TranscriptionResult, error) {
	if !s.listening.CompareAndSwap(false, true) {
		return nil, errorsx.New(errorsx.ReasonInvalidState, "already listening")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	sessCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	out := make(chan speech.TranscriptionResult, 100)
	go func() {
		defer close(out)
		ticker := time.NewTicker(s.cfg.EmitInterval)
		defer ticker.Stop()

		for _, transcript := range s.cfg.Transcripts {
			select {
			case <-sessCtx.Done():
				return
			case <-ticker.C:
			}

			if s.cfg.EmitInterim {
				select {
				case out <- s.result(transcript, false):
				case <-sessCtx.Done():
					return
				}
			}
			select {
			case out <- s.result(transcript, true):
			case <-sessCtx.Done():
				return
			}
		}
		<-sessCtx.Done()
	}()
	return out, nil
}

func (s *SpeechToText) StopListening() error {
	if !s.listening.CompareAndSwap(true, false) {
		return nil
	}
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
	return nil
}

func (s *SpeechToText) Transcribe(ctx context.Context, samples []float32, sampleRate int) (speech.TranscriptionResult, error) {
	return s.result(s.cfg.Transcripts[0], true), nil
}

func (s *SpeechToText) IsListening() bool {
	return s.listening.Load()
}

func (s *SpeechToText) SupportedLanguages() []string {
	return []string{"en"}
}

func (s *SpeechToText) result(text string, final bool) speech.TranscriptionResult {
	return speech.TranscriptionResult{
		Text:        text,
		IsFinal:     final,
		Confidence:  s.cfg.Confidence,
		TimestampMS: time.Now().UnixMilli(),
		Words:       speech.EstimateWordTimings(text, 1.0),
	}
}

var _ stt.SpeechToText = (*SpeechToText)(nil)
