// Package elevenlabs implements cloud speech synthesis over the ElevenLabs
// stream-input websocket API. Each synthesis request runs on its own
// websocket session.
package elevenlabs

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/Neroli1108/intellidoc-reader/pkg/adapters/tts"
	"github.com/Neroli1108/intellidoc-reader/pkg/audio"
	"github.com/Neroli1108/intellidoc-reader/pkg/errorsx"
	"github.com/Neroli1108/intellidoc-reader/pkg/logging"
	"github.com/Neroli1108/intellidoc-reader/pkg/resilience"
	"github.com/Neroli1108/intellidoc-reader/pkg/speech"
)

// Config holds the ElevenLabs connection settings.
type Config struct {
	APIKey       string `mapstructure:"api_key"`
	VoiceID      string `mapstructure:"voice_id"`
	ModelID      string `mapstructure:"model_id"`
	OutputFormat string `mapstructure:"output_format"`
	SampleRate   int    `mapstructure:"sample_rate"`
}

// TextToSpeech synthesizes text through ElevenLabs. Word timings are
// estimated locally; the cloud stream delivers audio only.
type TextToSpeech struct {
	mu      sync.Mutex
	cfg     Config
	rate    float64
	cancel  context.CancelFunc
	baseURL string

	logger *slog.Logger
}

func New(cfg Config) *TextToSpeech {
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 22050
	}
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = "pcm_22050"
	}
	if cfg.ModelID == "" {
		cfg.ModelID = "eleven_turbo_v2"
	}
	return &TextToSpeech{
		cfg:     cfg,
		rate:    1.0,
		baseURL: "wss://api.elevenlabs.io",
		logger:  logging.NewComponentLogger(slog.Default(), "elevenlabs_tts"),
	}
}

func (t *TextToSpeech) Name() string { return "elevenlabs" }

// Synthesize renders the full text into one audio buffer.
func (t *TextToSpeech) Synthesize(ctx context.Context, text string) (speech.AudioData, error) {
	chunks, err := t.SynthesizeStream(ctx, text)
	if err != nil {
		return speech.AudioData{}, err
	}

	var samples []float32
	for chunk := range chunks {
		samples = append(samples, audio.PCM16LEToF32(chunk.Data)...)
	}
	return speech.AudioData{
		Samples:    samples,
		SampleRate: t.cfg.SampleRate,
		Channels:   1,
	}, nil
}

// SynthesizeStream renders text as a stream of PCM chunks. Word timings are
// partitioned across chunks by each chunk's time window.
func (t *TextToSpeech) SynthesizeStream(ctx context.Context, text string) (<-chan speech.AudioChunk, error) {
	t.mu.Lock()
	cfg := t.cfg
	rate := t.rate
	baseURL := t.baseURL
	t.mu.Unlock()

	if cfg.APIKey == "" || cfg.VoiceID == "" {
		return nil, errorsx.New(errorsx.ReasonTTS, "missing api key or voice id")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	sessCtx, cancel := context.WithCancel(ctx)
	t.mu.Lock()
	t.cancel = cancel
	t.mu.Unlock()

	conn, err := dial(cfg, baseURL)
	if err != nil {
		cancel()
		return nil, err
	}

	// Init message carries the voice settings for the whole session.
	if err := writeJSON(conn, map[string]any{
		"text": " ",
		"voice_settings": map[string]any{
			"stability":        0.5,
			"similarity_boost": 0.8,
			"speed":            rate,
		},
		"generation_config": map[string]any{
			"chunk_length_schedule": []int{120, 160, 250, 290},
		},
	}); err != nil {
		conn.Close()
		cancel()
		return nil, errorsx.Wrap(err, errorsx.ReasonTTS)
	}

	payload := strings.TrimSpace(text)
	if payload != "" && !strings.HasSuffix(payload, " ") {
		payload += " "
	}
	if err := writeJSON(conn, map[string]any{"text": payload, "try_trigger_generation": true}); err != nil {
		conn.Close()
		cancel()
		return nil, errorsx.Wrap(err, errorsx.ReasonTTS)
	}
	// Empty text closes the input stream and flushes generation.
	if err := writeJSON(conn, map[string]any{"text": ""}); err != nil {
		conn.Close()
		cancel()
		return nil, errorsx.Wrap(err, errorsx.ReasonTTS)
	}

	timings := speech.EstimateWordTimings(text, rate)
	out := make(chan speech.AudioChunk, 100)

	go func() {
		defer close(out)
		defer conn.Close()
		defer cancel()

		var elapsedMS int64
		nextWord := 0
		for {
			if sessCtx.Err() != nil {
				return
			}
			_, data, err := conn.ReadMessage()
			if err != nil {
				if sessCtx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					t.logger.Error("read failed", slog.String("error", err.Error()))
				}
				return
			}

			raw, final, ok := decodeAudioMessage(data, t.logger)
			if !ok {
				if final {
					// The server ends a session with a bare final marker
					// carrying no audio. Flush the unclaimed timing tail so
					// consumers always see a chunk with IsFinal set.
					select {
					case out <- speech.AudioChunk{
						SampleRate:  cfg.SampleRate,
						WordTimings: timings[nextWord:],
						IsFinal:     true,
					}:
					case <-sessCtx.Done():
					}
					return
				}
				continue
			}

			chunkMS := int64(len(raw)) / 2 * 1000 / int64(cfg.SampleRate)
			elapsedMS += chunkMS
			var window []speech.WordTiming
			for nextWord < len(timings) && (timings[nextWord].StartMS < elapsedMS || final) {
				window = append(window, timings[nextWord])
				nextWord++
			}

			select {
			case out <- speech.AudioChunk{Data: raw, SampleRate: cfg.SampleRate, WordTimings: window, IsFinal: final}:
			case <-sessCtx.Done():
				return
			}
			if final {
				return
			}
		}
	}()

	return out, nil
}

// WordTimings estimates per-word timing at the current rate.
func (t *TextToSpeech) WordTimings(text string) ([]speech.WordTiming, error) {
	t.mu.Lock()
	rate := t.rate
	t.mu.Unlock()
	return speech.EstimateWordTimings(text, rate), nil
}

// Stop aborts any in-flight synthesis session.
func (t *TextToSpeech) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	return nil
}

// AvailableVoices lists a stable subset of the ElevenLabs catalog.
func (t *TextToSpeech) AvailableVoices() []speech.VoiceInfo {
	return []speech.VoiceInfo{
		{ID: "21m00Tcm4TlvDq8ikWAM", Name: "Rachel", Language: "en-US", Gender: speech.GenderFemale},
		{ID: "29vD33N1CtxCmqQRPOHJ", Name: "Drew", Language: "en-US", Gender: speech.GenderMale},
		{ID: "EXAVITQu4vr4xnSDxMaL", Name: "Sarah", Language: "en-US", Gender: speech.GenderFemale},
		{ID: "JBFqnCBsd6RMkjVDRZzb", Name: "George", Language: "en-GB", Gender: speech.GenderMale},
	}
}

// SetRate sets the speaking rate, clamped to [0.25, 3.0].
func (t *TextToSpeech) SetRate(rate float64) {
	t.mu.Lock()
	t.rate = tts.ClampRate(rate)
	t.mu.Unlock()
}

// SetVoice selects a voice by id. The id is validated server-side on the
// next synthesis; an empty id is rejected here.
func (t *TextToSpeech) SetVoice(id string) error {
	if id == "" {
		return errorsx.New(errorsx.ReasonModelNotFound, "empty voice id")
	}
	t.mu.Lock()
	t.cfg.VoiceID = id
	t.mu.Unlock()
	return nil
}

func dial(cfg Config, baseURL string) (*websocket.Conn, error) {
	base := baseURL + "/v1/text-to-speech/" + cfg.VoiceID + "/stream-input"
	q := url.Values{}
	q.Set("model_id", cfg.ModelID)
	q.Set("output_format", cfg.OutputFormat)
	q.Set("optimize_streaming_latency", "4")

	dialer := websocket.Dialer{Proxy: http.ProxyFromEnvironment}
	conn, resp, err := dialer.Dial(base+"?"+q.Encode(), http.Header{
		"xi-api-key": []string{cfg.APIKey},
	})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusTooManyRequests {
			return nil, resilience.RateLimitError{Provider: "elevenlabs", Message: resp.Status}
		}
		return nil, errorsx.Wrap(err, errorsx.ReasonAPI)
	}
	return conn, nil
}

func writeJSON(conn *websocket.Conn, payload map[string]any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, b)
}

// decodeAudioMessage extracts PCM bytes from a stream-input message. The
// audio field name varies across API revisions.
func decodeAudioMessage(data []byte, logger *slog.Logger) (raw []byte, final bool, ok bool) {
	var msg map[string]any
	if err := json.Unmarshal(data, &msg); err != nil {
		logger.Warn("unparseable message", slog.String("data", string(data)))
		return nil, false, false
	}

	if f, isBool := msg["isFinal"].(bool); isBool && f {
		return nil, true, false
	}

	encoded, isStr := msg["audio"].(string)
	if !isStr {
		if a, aok := msg["audio_base_64"].(string); aok {
			encoded = a
		} else if a, aok := msg["audio_base64"].(string); aok {
			encoded = a
		} else {
			return nil, false, false
		}
	}
	if encoded == "" {
		return nil, false, false
	}

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		logger.Error("audio decode error", slog.String("error", err.Error()))
		return nil, false, false
	}

	f, _ := msg["isFinal"].(bool)
	return decoded, f, true
}

var _ tts.TextToSpeech = (*TextToSpeech)(nil)
