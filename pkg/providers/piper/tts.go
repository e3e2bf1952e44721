// Package piper implements local neural speech synthesis by shelling out
// to a piper binary. Voices are onnx model/config pairs fetched from the
// rhasspy Hugging Face repository on demand.
package piper

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/Neroli1108/intellidoc-reader/pkg/adapters/tts"
	"github.com/Neroli1108/intellidoc-reader/pkg/audio"
	"github.com/Neroli1108/intellidoc-reader/pkg/errorsx"
	"github.com/Neroli1108/intellidoc-reader/pkg/logging"
	"github.com/Neroli1108/intellidoc-reader/pkg/speech"
)

// Config holds the piper settings.
type Config struct {
	BinaryPath string `mapstructure:"binary_path"`
	ModelPath  string `mapstructure:"model_path"`
}

// Streamed chunks carry this many samples each.
const samplesPerChunk = 1024

// TextToSpeech synthesizes through a piper subprocess. When the binary is
// not installed it degrades to empty audio so the surrounding pipeline
// stays functional.
type TextToSpeech struct {
	mu        sync.Mutex
	modelPath string
	rate      float64
	cancel    context.CancelFunc

	binaryPath string
	logger     *slog.Logger
}

// New verifies the voice model and builds the provider. A missing model is
// a model_not_found error; a missing binary is tolerated (stub mode).
func New(cfg Config) (*TextToSpeech, error) {
	if cfg.ModelPath == "" {
		return nil, errorsx.New(errorsx.ReasonModelNotFound, "model path not set")
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, errorsx.Errorf(errorsx.ReasonModelNotFound, "piper voice not found: %s", cfg.ModelPath)
	}
	if cfg.BinaryPath == "" {
		cfg.BinaryPath = "piper"
	}
	return &TextToSpeech{
		modelPath:  cfg.ModelPath,
		rate:       1.0,
		binaryPath: cfg.BinaryPath,
		logger:     logging.NewComponentLogger(slog.Default(), "piper_tts"),
	}, nil
}

func (t *TextToSpeech) Name() string { return "piper_local" }

// Synthesize renders the full text through one piper invocation.
func (t *TextToSpeech) Synthesize(ctx context.Context, text string) (speech.AudioData, error) {
	if strings.TrimSpace(text) == "" {
		return speech.AudioData{SampleRate: 22050, Channels: 1}, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	t.mu.Lock()
	modelPath := t.modelPath
	rate := t.rate
	sessCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.mu.Unlock()
	defer cancel()

	binPath, err := exec.LookPath(t.binaryPath)
	if err != nil {
		t.logger.Warn("piper binary not installed, returning empty audio",
			slog.String("binary", t.binaryPath))
		return speech.AudioData{SampleRate: 22050, Channels: 1}, nil
	}

	tmpDir, err := os.MkdirTemp("", "piper-*")
	if err != nil {
		return speech.AudioData{}, errorsx.Wrap(err, errorsx.ReasonIO)
	}
	defer os.RemoveAll(tmpDir)
	outPath := filepath.Join(tmpDir, "output.wav")

	args := []string{
		"--model", modelPath,
		"--output_file", outPath,
	}
	// Piper's length_scale stretches audio, so it is the inverse of rate.
	if rate != 1.0 {
		args = append(args, "--length_scale", strconv.FormatFloat(1.0/rate, 'f', 2, 64))
	}

	cmd := exec.CommandContext(sessCtx, binPath, args...)
	cmd.Stdin = strings.NewReader(text)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if sessCtx.Err() != nil {
			return speech.AudioData{}, errorsx.Wrap(sessCtx.Err(), errorsx.ReasonTTS)
		}
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return speech.AudioData{}, errorsx.Errorf(errorsx.ReasonTTS, "piper failed: %s", detail)
	}

	return audio.ReadWAVFile(outPath)
}

// SynthesizeStream synthesizes the whole text, then streams it in fixed
// sample windows with each window's word timings attached. Sentence-level
// incremental synthesis would cut latency but piper gives no mid-run
// output.
func (t *TextToSpeech) SynthesizeStream(ctx context.Context, text string) (<-chan speech.AudioChunk, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	data, err := t.Synthesize(ctx, text)
	if err != nil {
		return nil, err
	}
	timings, _ := t.WordTimings(text)

	out := make(chan speech.AudioChunk, 100)
	go func() {
		defer close(out)
		if len(data.Samples) == 0 {
			select {
			case out <- speech.AudioChunk{SampleRate: data.SampleRate, WordTimings: timings, IsFinal: true}:
			case <-ctx.Done():
			}
			return
		}

		msPerSample := 1000.0 / float64(data.SampleRate)
		for start := 0; start < len(data.Samples); start += samplesPerChunk {
			end := start + samplesPerChunk
			if end > len(data.Samples) {
				end = len(data.Samples)
			}
			startMS := int64(float64(start) * msPerSample)
			endMS := int64(float64(end) * msPerSample)

			var window []speech.WordTiming
			for _, w := range timings {
				if w.StartMS >= startMS && w.StartMS < endMS {
					window = append(window, w)
				}
			}

			chunk := speech.AudioChunk{
				Data:        audio.F32ToPCM16LE(data.Samples[start:end]),
				SampleRate:  data.SampleRate,
				WordTimings: window,
				IsFinal:     end >= len(data.Samples),
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

// WordTimings estimates per-word timing; piper reports none itself.
func (t *TextToSpeech) WordTimings(text string) ([]speech.WordTiming, error) {
	t.mu.Lock()
	rate := t.rate
	t.mu.Unlock()
	return speech.EstimateWordTimings(text, rate), nil
}

// Stop aborts any in-flight synthesis.
func (t *TextToSpeech) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	return nil
}

// AvailableVoices lists the built-in piper voice catalog. A full
// implementation would scan the voice model directory instead.
func (t *TextToSpeech) AvailableVoices() []speech.VoiceInfo {
	return []speech.VoiceInfo{
		{ID: "en_US-lessac-medium", Name: "Lessac (US English)", Language: "en-US", Gender: speech.GenderFemale, Style: "neutral"},
		{ID: "en_US-ryan-medium", Name: "Ryan (US English)", Language: "en-US", Gender: speech.GenderMale, Style: "neutral"},
		{ID: "en_GB-alba-medium", Name: "Alba (British English)", Language: "en-GB", Gender: speech.GenderFemale, Style: "neutral"},
		{ID: "de_DE-thorsten-medium", Name: "Thorsten (German)", Language: "de-DE", Gender: speech.GenderMale, Style: "neutral"},
		{ID: "es_ES-sharvard-medium", Name: "Sharvard (Spanish)", Language: "es-ES", Gender: speech.GenderMale, Style: "neutral"},
		{ID: "fr_FR-upmc-medium", Name: "UPMC (French)", Language: "fr-FR", Gender: speech.GenderFemale, Style: "neutral"},
	}
}

// SetRate sets the speaking rate, clamped to [0.25, 3.0].
func (t *TextToSpeech) SetRate(rate float64) {
	t.mu.Lock()
	t.rate = tts.ClampRate(rate)
	t.mu.Unlock()
}

// SetVoice switches to another onnx voice in the same directory as the
// current model.
func (t *TextToSpeech) SetVoice(id string) error {
	t.mu.Lock()
	baseDir := filepath.Dir(t.modelPath)
	t.mu.Unlock()

	newPath := filepath.Join(baseDir, id+".onnx")
	if _, err := os.Stat(newPath); err != nil {
		return errorsx.Errorf(errorsx.ReasonModelNotFound, "voice %q not installed", id)
	}

	t.mu.Lock()
	t.modelPath = newPath
	t.mu.Unlock()
	return nil
}

var _ tts.TextToSpeech = (*TextToSpeech)(nil)
