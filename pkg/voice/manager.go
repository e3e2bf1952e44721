package voice

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Neroli1108/intellidoc-reader/pkg/adapters/stt"
	"github.com/Neroli1108/intellidoc-reader/pkg/adapters/tts"
	"github.com/Neroli1108/intellidoc-reader/pkg/audio"
	"github.com/Neroli1108/intellidoc-reader/pkg/commands"
	"github.com/Neroli1108/intellidoc-reader/pkg/errorsx"
	"github.com/Neroli1108/intellidoc-reader/pkg/logging"
	"github.com/Neroli1108/intellidoc-reader/pkg/metrics"
	"github.com/Neroli1108/intellidoc-reader/pkg/providers"
	"github.com/Neroli1108/intellidoc-reader/pkg/redact"
	"github.com/Neroli1108/intellidoc-reader/pkg/speech"
	"github.com/Neroli1108/intellidoc-reader/pkg/turn"
)

// Manager coordinates the voice engine: one STT backend, one TTS backend,
// the state machine and the live reading position. A Manager drives at most
// one session at a time; multiplexing belongs to a higher layer.
type Manager struct {
	mu         sync.Mutex
	sttBackend stt.SpeechToText
	ttsBackend tts.TextToSpeech
	readCancel context.CancelFunc

	cfgMu  sync.RWMutex
	cfg    Config
	parser *commands.Parser

	posMu    sync.RWMutex
	position *speech.ReadingPosition

	machine  *turn.Machine
	player   *audio.Player
	device   audio.Device
	observer metrics.Observer
	logger   *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithObserver plugs a metrics sink into the manager.
func WithObserver(obs metrics.Observer) Option {
	return func(m *Manager) { m.observer = obs }
}

// WithDevice wires a hardware capture backend. Without one, local STT
// providers capture silence through the stub device.
func WithDevice(device audio.Device) Option {
	return func(m *Manager) { m.device = device }
}

// WithSink wires a hardware playback backend. Without one, playback is
// simulated in real time.
func WithSink(sink audio.Sink) Option {
	return func(m *Manager) { m.player = audio.NewPlayer(sink) }
}

func NewManager(cfg Config, opts ...Option) *Manager {
	m := &Manager{
		cfg:      cfg,
		parser:   commands.NewParser(cfg.Language),
		machine:  turn.NewMachine(),
		player:   audio.NewPlayer(nil),
		device:   audio.NewStubDevice(),
		observer: metrics.NoopObserver{},
		logger:   logging.NewComponentLogger(slog.Default(), "voice_manager"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Initialize builds both providers from the current configuration. Every
// session operation before this fails with not_initialized.
func (m *Manager) Initialize(ctx context.Context) error {
	m.cfgMu.RLock()
	cfg := m.cfg
	m.cfgMu.RUnlock()

	capture := audio.NewCapture(audio.DefaultConfig(), m.device)
	sttBackend, err := providers.NewSpeechToText(cfg.STT, capture)
	if err != nil {
		return err
	}
	ttsBackend, err := providers.NewTextToSpeech(cfg.TTS)
	if err != nil {
		return err
	}

	ttsBackend.SetRate(cfg.ReadingSpeed)
	if cfg.VoiceID != "" && cfg.VoiceID != "default" {
		if err := ttsBackend.SetVoice(cfg.VoiceID); err != nil {
			return err
		}
	}

	m.mu.Lock()
	m.sttBackend = sttBackend
	m.ttsBackend = ttsBackend
	m.mu.Unlock()

	redact.SetEnabled(cfg.RedactTranscripts)

	m.logger.Info("initialized",
		slog.String("stt", sttBackend.Name()),
		slog.String("tts", ttsBackend.Name()))
	return nil
}

// IsInitialized reports whether both providers are built.
func (m *Manager) IsInitialized() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sttBackend != nil && m.ttsBackend != nil
}

// State returns the engine's current state.
func (m *Manager) State() turn.State {
	return m.machine.State()
}

// OnStateChange registers a listener for state transitions.
func (m *Manager) OnStateChange(listener turn.StateListener) {
	m.machine.AddListener(listener)
}

// ParseCommand maps transcribed text to a structured command. Pure; no
// state is touched.
func (m *Manager) ParseCommand(text string) commands.VoiceCommand {
	m.cfgMu.RLock()
	parser := m.parser
	m.cfgMu.RUnlock()
	return parser.Parse(text)
}

// StartListening opens a transcription session. Fails with invalid_state
// unless the engine is Idle.
func (m *Manager) StartListening(ctx context.Context) (<-chan speech.TranscriptionResult, error) {
	m.mu.Lock()
	backend := m.sttBackend
	m.mu.Unlock()
	if backend == nil {
		return nil, errorsx.New(errorsx.ReasonNotInitialized, "voice system not initialized")
	}

	if err := m.machine.Transition(turn.StateListening, "start listening"); err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonInvalidState)
	}

	results, err := backend.StartListening(ctx)
	if err != nil {
		m.machine.ForceIdle("listen start failed")
		return nil, err
	}

	sessionID := uuid.NewString()
	m.record("listen_started", 1, map[string]string{"session_id": sessionID, "provider": backend.Name()})
	m.logger.Info("listening started", slog.String("session_id", sessionID))
	return results, nil
}

// StopListening ends the transcription session and returns to Idle.
func (m *Manager) StopListening() error {
	m.mu.Lock()
	backend := m.sttBackend
	m.mu.Unlock()
	if backend == nil {
		return errorsx.New(errorsx.ReasonNotInitialized, "voice system not initialized")
	}

	if err := backend.StopListening(); err != nil {
		return err
	}
	m.machine.ForceIdle("stop listening")
	m.record("listen_stopped", 1, nil)
	return nil
}

// Transcribe performs one-shot recognition of a complete buffer, passing
// through Processing.
func (m *Manager) Transcribe(ctx context.Context, samples []float32, sampleRate int) (speech.TranscriptionResult, error) {
	m.mu.Lock()
	backend := m.sttBackend
	m.mu.Unlock()
	if backend == nil {
		return speech.TranscriptionResult{}, errorsx.New(errorsx.ReasonNotInitialized, "voice system not initialized")
	}

	if err := m.machine.Transition(turn.StateListening, "one-shot transcription"); err != nil {
		return speech.TranscriptionResult{}, errorsx.Wrap(err, errorsx.ReasonInvalidState)
	}
	_ = m.machine.Transition(turn.StateProcessing, "transcribing buffer")
	defer m.machine.ForceIdle("transcription done")

	start := time.Now()
	result, err := backend.Transcribe(ctx, samples, sampleRate)
	if err != nil {
		return speech.TranscriptionResult{}, err
	}
	m.record("transcription_latency_ms", float64(time.Since(start).Milliseconds()), map[string]string{"provider": backend.Name()})
	return result, nil
}

// ReadContent reads text aloud from startPos, emitting the live cursor on
// the returned channel. Word timings are the timing authority; audio
// delivery never drives the cursor.
func (m *Manager) ReadContent(ctx context.Context, content string, startPos speech.ReadingPosition) (<-chan speech.ReadingPosition, error) {
	m.mu.Lock()
	backend := m.ttsBackend
	m.mu.Unlock()
	if backend == nil {
		return nil, errorsx.New(errorsx.ReasonNotInitialized, "voice system not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if err := m.machine.Transition(turn.StateReading, "read content"); err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonInvalidState)
	}

	m.posMu.Lock()
	pos := startPos
	m.position = &pos
	m.posMu.Unlock()

	timings, err := backend.WordTimings(content)
	if err != nil {
		m.machine.ForceIdle("timing fetch failed")
		return nil, err
	}

	readCtx, cancel := context.WithCancel(ctx)
	chunks, err := backend.SynthesizeStream(readCtx, content)
	if err != nil {
		cancel()
		m.machine.ForceIdle("synthesis failed")
		return nil, err
	}

	m.mu.Lock()
	m.readCancel = cancel
	m.mu.Unlock()

	sessionID := uuid.NewString()
	m.record("read_started", 1, map[string]string{"session_id": sessionID, "provider": backend.Name()})

	// Drain synthesized chunks through the player so the producer never
	// stalls. With no sink this paces at real time, matching the timings.
	go func() {
		for chunk := range chunks {
			if len(chunk.Data) == 0 {
				continue
			}
			sampleRate := chunk.SampleRate
			if sampleRate <= 0 {
				sampleRate = 22050
			}
			data := speech.AudioData{
				Samples:    audio.PCM16LEToF32(chunk.Data),
				SampleRate: sampleRate,
				Channels:   1,
			}
			if err := m.player.Play(readCtx, data); err != nil {
				return
			}
		}
	}()

	positions := make(chan speech.ReadingPosition, 100)
	go m.synchronize(readCtx, sessionID, startPos, timings, positions)

	m.logger.Info("reading started",
		slog.String("session_id", sessionID),
		slog.Int("words", len(timings)))
	return positions, nil
}

// synchronize walks word timings against the wall clock, updating the
// position cell and emitting the cursor. Exits when the engine leaves
// Reading; resets to Idle after the last word.
func (m *Manager) synchronize(ctx context.Context, sessionID string, startPos speech.ReadingPosition, timings []speech.WordTiming, positions chan<- speech.ReadingPosition) {
	defer close(positions)

	start := time.Now()
	emitted := 0
	for i, timing := range timings {
		target := time.Duration(timing.StartMS) * time.Millisecond
		if elapsed := time.Since(start); target > elapsed {
			select {
			case <-time.After(target - elapsed):
			case <-ctx.Done():
			}
		}
		if ctx.Err() != nil {
			break
		}

		if m.machine.State() != turn.StateReading {
			break
		}

		position := speech.ReadingPosition{
			DocumentID:  startPos.DocumentID,
			Page:        startPos.Page,
			ParagraphID: startPos.ParagraphID,
			WordIndex:   startPos.WordIndex + i,
			TimestampMS: timing.StartMS,
		}

		m.posMu.Lock()
		p := position
		m.position = &p
		m.posMu.Unlock()

		select {
		case positions <- position:
			emitted++
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}

	if m.machine.State() == turn.StateReading {
		_ = m.machine.Transition(turn.StateIdle, "reading complete")
	}
	m.record("read_stopped", float64(emitted), map[string]string{"session_id": sessionID})
}

// StopReading halts the read session. Emission stops within the word
// boundary poll; one in-flight position may still be delivered.
func (m *Manager) StopReading() error {
	m.mu.Lock()
	backend := m.ttsBackend
	cancel := m.readCancel
	m.readCancel = nil
	m.mu.Unlock()
	if backend == nil {
		return errorsx.New(errorsx.ReasonNotInitialized, "voice system not initialized")
	}

	if err := backend.Stop(); err != nil {
		return err
	}
	if cancel != nil {
		cancel()
	}
	if m.machine.State() == turn.StateReading {
		_ = m.machine.Transition(turn.StateIdle, "stop reading")
	}
	m.logger.Info("reading stopped")
	return nil
}

// Speak synthesizes and plays a short response, blocking until playback
// completes.
func (m *Manager) Speak(ctx context.Context, text string) error {
	m.mu.Lock()
	backend := m.ttsBackend
	m.mu.Unlock()
	if backend == nil {
		return errorsx.New(errorsx.ReasonNotInitialized, "voice system not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if err := m.machine.Transition(turn.StateSpeaking, "speak response"); err != nil {
		return errorsx.Wrap(err, errorsx.ReasonInvalidState)
	}
	defer m.machine.ForceIdle("speak done")

	data, err := backend.Synthesize(ctx, text)
	if err != nil {
		return err
	}
	return m.player.Play(ctx, data)
}

// ReadingPosition returns the current cursor, or nil before any read.
func (m *Manager) ReadingPosition() *speech.ReadingPosition {
	m.posMu.RLock()
	defer m.posMu.RUnlock()
	if m.position == nil {
		return nil
	}
	p := *m.position
	return &p
}

// UpdateConfig replaces the configuration. Live sessions are not torn
// down; provider changes take effect on the next Initialize.
func (m *Manager) UpdateConfig(cfg Config) {
	m.cfgMu.Lock()
	m.cfg = cfg
	m.parser = commands.NewParser(cfg.Language)
	m.cfgMu.Unlock()

	redact.SetEnabled(cfg.RedactTranscripts)

	m.mu.Lock()
	backend := m.ttsBackend
	m.mu.Unlock()
	if backend != nil {
		backend.SetRate(cfg.ReadingSpeed)
	}
}

// Config returns a copy of the current configuration.
func (m *Manager) Config() Config {
	m.cfgMu.RLock()
	defer m.cfgMu.RUnlock()
	return m.cfg
}

func (m *Manager) record(name string, value float64, tags map[string]string) {
	m.observer.RecordEvent(metrics.MetricsEvent{
		Name:  name,
		Time:  time.Now(),
		Value: value,
		Tags:  tags,
	})
}
