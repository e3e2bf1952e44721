package whisper

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Neroli1108/intellidoc-reader/pkg/adapters/stt"
	"github.com/Neroli1108/intellidoc-reader/pkg/audio"
	"github.com/Neroli1108/intellidoc-reader/pkg/errorsx"
	"github.com/Neroli1108/intellidoc-reader/pkg/logging"
	"github.com/Neroli1108/intellidoc-reader/pkg/speech"
)

// Config holds the whisper.cpp settings.
type Config struct {
	BinaryPath string `mapstructure:"binary_path"`
	ModelPath  string `mapstructure:"model_path"`
	Language   string `mapstructure:"language"`
	Translate  bool   `mapstructure:"translate"`
	Threads    int    `mapstructure:"threads"`
}

// Windowing constants for continuous listening at 16kHz: transcribe every
// ~2s of audio, keep the last 0.5s as context for the next window.
const (
	listenSampleRate = 16000
	bufferThreshold  = 32000
	contextSamples   = 8000
)

// SpeechToText transcribes through a whisper.cpp CLI binary. When the
// binary is not installed it degrades to empty results so the surrounding
// pipeline stays functional.
type SpeechToText struct {
	cfg     Config
	capture *audio.Capture

	mu        sync.Mutex
	cancel    context.CancelFunc
	listening atomic.Bool
	logger    *slog.Logger
}

// New verifies the model file and builds the provider. A missing model is a
// model_not_found error; a missing binary is tolerated (stub mode).
func New(cfg Config, capture *audio.Capture) (*SpeechToText, error) {
	if cfg.ModelPath == "" {
		return nil, errorsx.New(errorsx.ReasonModelNotFound, "model path not set")
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, errorsx.Errorf(errorsx.ReasonModelNotFound, "whisper model not found: %s", cfg.ModelPath)
	}
	if cfg.BinaryPath == "" {
		cfg.BinaryPath = "whisper-cli"
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	return &SpeechToText{
		cfg:     cfg,
		capture: capture,
		logger:  logging.NewComponentLogger(slog.Default(), "whisper_stt"),
	}, nil
}

func (s *SpeechToText) Name() string { return "whisper_local" }

// StartListening captures microphone audio and transcribes it in rolling
// windows. Each non-empty window becomes one final result.
func (s *SpeechToText) StartListening(ctx context.Context) (<-chan speech.TranscriptionResult, error) {
	if !s.listening.CompareAndSwap(false, true) {
		return nil, errorsx.New(errorsx.ReasonInvalidState, "already listening")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	sessCtx, cancel := context.WithCancel(ctx)
	chunks, err := s.capture.Start(sessCtx)
	if err != nil {
		cancel()
		s.listening.Store(false)
		return nil, err
	}

	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	out := make(chan speech.TranscriptionResult, 100)
	go func() {
		defer close(out)
		var buffer []float32

		flush := func(samples []float32) bool {
			result, err := s.Transcribe(sessCtx, samples, listenSampleRate)
			if err != nil {
				s.logger.Error("window transcription failed", slog.String("error", err.Error()))
				return true
			}
			if result.Text == "" {
				return true
			}
			select {
			case out <- result:
				return true
			case <-sessCtx.Done():
				return false
			}
		}

		for chunk := range chunks {
			buffer = append(buffer, chunk...)
			if len(buffer) < bufferThreshold {
				continue
			}
			if !flush(buffer) {
				return
			}
			// Carry trailing context into the next window.
			if len(buffer) > contextSamples {
				buffer = append([]float32(nil), buffer[len(buffer)-contextSamples:]...)
			}
		}
		if len(buffer) > contextSamples && s.listening.Load() {
			flush(buffer)
		}
	}()

	s.logger.Info("listening started", slog.String("model", filepath.Base(s.cfg.ModelPath)))
	return out, nil
}

func (s *SpeechToText) StopListening() error {
	if !s.listening.CompareAndSwap(true, false) {
		return nil
	}
	s.capture.Stop()
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
	s.logger.Info("listening stopped")
	return nil
}

// Transcribe runs one whisper.cpp invocation over a complete buffer.
func (s *SpeechToText) Transcribe(ctx context.Context, samples []float32, sampleRate int) (speech.TranscriptionResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(samples) == 0 {
		return s.emptyResult(), nil
	}
	if sampleRate <= 0 {
		sampleRate = listenSampleRate
	}
	if sampleRate != listenSampleRate {
		samples = audio.Resample(samples, sampleRate, listenSampleRate)
	}

	cliPath, err := exec.LookPath(s.cfg.BinaryPath)
	if err != nil {
		s.logger.Warn("whisper binary not installed, returning empty transcription",
			slog.String("binary", s.cfg.BinaryPath))
		return s.emptyResult(), nil
	}

	tmpDir, err := os.MkdirTemp("", "whisper-*")
	if err != nil {
		return speech.TranscriptionResult{}, errorsx.Wrap(err, errorsx.ReasonIO)
	}
	defer os.RemoveAll(tmpDir)

	wavPath := filepath.Join(tmpDir, "audio.wav")
	wavData := speech.AudioData{Samples: samples, SampleRate: listenSampleRate, Channels: 1}
	if err := audio.WriteWAVFile(wavPath, wavData); err != nil {
		return speech.TranscriptionResult{}, err
	}
	outPrefix := filepath.Join(tmpDir, "out")

	// The whisper.cpp flag set varies slightly across builds; keep this
	// conservative.
	args := []string{
		"-m", s.cfg.ModelPath,
		"-f", wavPath,
		"-l", s.cfg.Language,
		"-otxt",
		"-of", outPrefix,
		"-nt",
	}
	if s.cfg.Translate {
		args = append(args, "-tr")
	}
	if s.cfg.Threads > 0 {
		args = append(args, "-t", strconv.Itoa(s.cfg.Threads))
	}

	cmd := exec.CommandContext(ctx, cliPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return speech.TranscriptionResult{}, errorsx.Wrap(ctx.Err(), errorsx.ReasonSTT)
		}
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return speech.TranscriptionResult{}, errorsx.Errorf(errorsx.ReasonSTT, "whisper.cpp failed: %s", detail)
	}

	b, err := os.ReadFile(outPrefix + ".txt")
	if err != nil {
		return speech.TranscriptionResult{}, errorsx.Wrap(err, errorsx.ReasonIO)
	}
	text := strings.TrimSpace(string(b))
	if text == "" {
		return s.emptyResult(), nil
	}

	return speech.TranscriptionResult{
		Text:        text,
		IsFinal:     true,
		Confidence:  0.9,
		TimestampMS: time.Now().UnixMilli(),
		Words:       speech.EstimateWordTimings(text, 1.0),
	}, nil
}

func (s *SpeechToText) IsListening() bool {
	return s.listening.Load()
}

func (s *SpeechToText) SupportedLanguages() []string {
	return []string{
		"en", "zh", "de", "es", "ru", "ko", "fr", "ja", "pt", "tr",
		"pl", "ca", "nl", "ar", "sv", "it", "id", "hi", "fi", "vi",
		"he", "uk", "el", "ms", "cs", "ro", "da", "hu", "ta", "no", "th",
	}
}

func (s *SpeechToText) emptyResult() speech.TranscriptionResult {
	return speech.TranscriptionResult{
		IsFinal:     true,
		TimestampMS: time.Now().UnixMilli(),
	}
}

var _ stt.SpeechToText = (*SpeechToText)(nil)
