package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/Neroli1108/intellidoc-reader/pkg/adapters/tts"
	"github.com/Neroli1108/intellidoc-reader/pkg/audio"
	"github.com/Neroli1108/intellidoc-reader/pkg/errorsx"
	"github.com/Neroli1108/intellidoc-reader/pkg/speech"
)

// TTSConfig shapes the mock's synthetic audio.
type TTSConfig struct {
	SampleRate int
	// RealTime scales synthetic audio duration down to zero when false,
	// keeping tests fast.
	RealTime bool
}

// TextToSpeech produces silent audio sized to the estimated speech
// duration, so timing-dependent consumers behave as with a real backend.
type TextToSpeech struct {
	cfg   TTSConfig
	mu    sync.Mutex
	rate  float64
	voice string
}

func NewTTS(cfg TTSConfig) *TextToSpeech {
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 22050
	}
	return &TextToSpeech{cfg: cfg, rate: 1.0, voice: "mock-voice"}
}

func (t *TextToSpeech) Name() string { return "mock" }

func (t *TextToSpeech) Synthesize(ctx context.Context, text string) (speech.AudioData, error) {
	timings, _ := t.WordTimings(text)
	var totalMS int64
	if len(timings) > 0 {
		totalMS = timings[len(timings)-1].EndMS
	}
	if !t.cfg.RealTime {
		totalMS = 0
	}
	samples := make([]float32, int(totalMS)*t.cfg.SampleRate/1000)
	return speech.AudioData{
		Samples:    samples,
		SampleRate: t.cfg.SampleRate,
		Channels:   1,
	}, nil
}

func (t *TextToSpeech) SynthesizeStream(ctx context.Context, text string) (<-chan speech.AudioChunk, error) {
	timings, _ := t.WordTimings(text)
	out := make(chan speech.AudioChunk, 100)
	go func() {
		defer close(out)
		for i, timing := range timings {
			durMS := timing.EndMS - timing.StartMS
			var pcm []byte
			if t.cfg.RealTime {
				pcm = audio.F32ToPCM16LE(make([]float32, int(durMS)*t.cfg.SampleRate/1000))
			}
			chunk := speech.AudioChunk{
				Data:        pcm,
				SampleRate:  t.cfg.SampleRate,
				WordTimings: []speech.WordTiming{timing},
				IsFinal:     i == len(timings)-1,
			}
			select {
			case out <- chunk:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (t *TextToSpeech) WordTimings(text string) ([]speech.WordTiming, error) {
	t.mu.Lock()
	rate := t.rate
	t.mu.Unlock()
	return speech.EstimateWordTimings(text, rate), nil
}

func (t *TextToSpeech) Stop() error { return nil }

func (t *TextToSpeech) AvailableVoices() []speech.VoiceInfo {
	return []speech.VoiceInfo{
		{ID: "mock-voice", Name: "Mock Voice", Language: "en-US", Gender: speech.GenderNeutral},
	}
}

func (t *TextToSpeech) SetRate(rate float64) {
	t.mu.Lock()
	t.rate = tts.ClampRate(rate)
	t.mu.Unlock()
}

func (t *TextToSpeech) SetVoice(id string) error {
	if !strings.HasPrefix(id, "mock") {
		return errorsx.Errorf(errorsx.ReasonModelNotFound, "voice %q not installed", id)
	}
	t.mu.Lock()
	t.voice = id
	t.mu.Unlock()
	return nil
}

// Rate exposes the current rate for test assertions.
func (t *TextToSpeech) Rate() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rate
}

var _ tts.TextToSpeech = (*TextToSpeech)(nil)
