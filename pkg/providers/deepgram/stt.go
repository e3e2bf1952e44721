// Package deepgram implements cloud speech recognition over Deepgram's
// live-transcription websocket API.
package deepgram

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Neroli1108/intellidoc-reader/pkg/adapters/stt"
	"github.com/Neroli1108/intellidoc-reader/pkg/audio"
	"github.com/Neroli1108/intellidoc-reader/pkg/errorsx"
	"github.com/Neroli1108/intellidoc-reader/pkg/logging"
	"github.com/Neroli1108/intellidoc-reader/pkg/redact"
	"github.com/Neroli1108/intellidoc-reader/pkg/speech"

	msginterfaces "github.com/deepgram/deepgram-go-sdk/v3/pkg/api/listen/v1/websocket/interfaces"
	interfaces "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/interfaces"
	client "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/listen"
)

// Config holds the Deepgram connection settings.
type Config struct {
	APIKey          string `mapstructure:"api_key"`
	Model           string `mapstructure:"model"`
	Language        string `mapstructure:"language"`
	SampleRate      int    `mapstructure:"sample_rate"`
	Interim         bool   `mapstructure:"interim_results"`
	AutoPunctuation bool   `mapstructure:"auto_punctuation"`
}

// SpeechToText streams microphone audio to Deepgram and surfaces
// transcription results. One listening session at a time.
type SpeechToText struct {
	cfg     Config
	capture *audio.Capture

	mu         sync.Mutex
	dgClient   *client.WSCallback
	cancel     context.CancelFunc
	pipeWriter *io.PipeWriter
	sink       *resultSink

	listening atomic.Bool
	logger    *slog.Logger
}

// resultSink guards the session's result channel. The SDK callback sends
// from the websocket read loop while StopListening tears the session down,
// so the close must be fenced against concurrent sends.
type resultSink struct {
	mu     sync.Mutex
	ch     chan speech.TranscriptionResult
	closed bool
}

func newResultSink(buffer int) *resultSink {
	return &resultSink{ch: make(chan speech.TranscriptionResult, buffer)}
}

// Send delivers a result without blocking. Returns false when the sink is
// closed or the buffer is full.
func (s *resultSink) Send(res speech.TranscriptionResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.ch <- res:
		return true
	default:
		return false
	}
}

// Close closes the channel exactly once. Safe to call concurrently with
// Send.
func (s *resultSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

func (s *resultSink) Results() <-chan speech.TranscriptionResult {
	return s.ch
}

func New(cfg Config, capture *audio.Capture) *SpeechToText {
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 16000
	}
	if cfg.Model == "" {
		cfg.Model = "nova-2"
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	return &SpeechToText{
		cfg:     cfg,
		capture: capture,
		logger:  logging.NewComponentLogger(slog.Default(), "deepgram_stt"),
	}
}

func (s *SpeechToText) Name() string { return "deepgram" }

// StartListening opens the websocket session and begins pumping captured
// PCM into it. Results arrive on the returned channel until StopListening.
func (s *SpeechToText) StartListening(ctx context.Context) (<-chan speech.TranscriptionResult, error) {
	if !s.listening.CompareAndSwap(false, true) {
		return nil, errorsx.New(errorsx.ReasonInvalidState, "already listening")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	sessCtx, cancel := context.WithCancel(ctx)
	sink := newResultSink(100)

	dgClient, pipeWriter, err := s.connect(sessCtx, sink, s.cfg.Interim)
	if err != nil {
		cancel()
		s.listening.Store(false)
		return nil, err
	}

	chunks, err := s.capture.Start(sessCtx)
	if err != nil {
		pipeWriter.Close()
		dgClient.Stop()
		cancel()
		s.listening.Store(false)
		return nil, err
	}

	s.mu.Lock()
	s.dgClient = dgClient
	s.cancel = cancel
	s.pipeWriter = pipeWriter
	s.sink = sink
	s.mu.Unlock()

	// The pump never closes the sink: the server can still deliver the
	// final transcript for audio it already holds after capture drains.
	go func() {
		for chunk := range chunks {
			pcm := audio.F32ToPCM16LE(chunk)
			if _, err := pipeWriter.Write(pcm); err != nil {
				if s.listening.Load() {
					s.logger.Error("audio write failed", slog.String("error", err.Error()))
				}
				return
			}
		}
	}()

	s.logger.Info("listening started",
		slog.String("model", s.cfg.Model),
		slog.String("language", s.cfg.Language))
	return sink.Results(), nil
}

// StopListening ends the session. The result channel closes after any
// in-flight result is delivered.
func (s *SpeechToText) StopListening() error {
	if !s.listening.CompareAndSwap(true, false) {
		return nil
	}

	s.capture.Stop()

	s.mu.Lock()
	if s.pipeWriter != nil {
		_ = s.pipeWriter.Close()
		s.pipeWriter = nil
	}
	if s.dgClient != nil {
		s.dgClient.Stop()
		s.dgClient = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	sink := s.sink
	s.sink = nil
	s.mu.Unlock()

	// Only after the client has stopped is the read loop done sending.
	if sink != nil {
		sink.Close()
	}

	s.logger.Info("listening stopped")
	return nil
}

// Transcribe performs one-shot recognition of a complete buffer over a
// dedicated websocket session.
func (s *SpeechToText) Transcribe(ctx context.Context, samples []float32, sampleRate int) (speech.TranscriptionResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if sampleRate <= 0 {
		sampleRate = s.cfg.SampleRate
	}
	if sampleRate != s.cfg.SampleRate {
		samples = audio.Resample(samples, sampleRate, s.cfg.SampleRate)
	}

	sessCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sink := newResultSink(100)
	dgClient, pipeWriter, err := s.connect(sessCtx, sink, false)
	if err != nil {
		return speech.TranscriptionResult{}, err
	}
	defer dgClient.Stop()

	if _, err := pipeWriter.Write(audio.F32ToPCM16LE(samples)); err != nil {
		pipeWriter.Close()
		return speech.TranscriptionResult{}, errorsx.Wrap(err, errorsx.ReasonSTT)
	}
	_ = pipeWriter.Close()

	// The callback closes the sink when the server ends the connection, so
	// silent audio surfaces as a closed channel instead of a full timeout.
	timeout := time.After(30 * time.Second)
	for {
		select {
		case res, ok := <-sink.Results():
			if !ok {
				return speech.TranscriptionResult{}, errorsx.New(errorsx.ReasonSTT, "session ended without a final result")
			}
			if res.IsFinal {
				return res, nil
			}
		case <-timeout:
			return speech.TranscriptionResult{}, errorsx.New(errorsx.ReasonSTT, "transcription timed out")
		case <-ctx.Done():
			return speech.TranscriptionResult{}, errorsx.Wrap(ctx.Err(), errorsx.ReasonSTT)
		}
	}
}

func (s *SpeechToText) IsListening() bool {
	return s.listening.Load()
}

func (s *SpeechToText) SupportedLanguages() []string {
	return []string{"en", "es", "fr", "de", "it", "pt", "nl", "ja", "ko", "zh", "ru", "hi"}
}

// connect builds a callback websocket client whose results land on sink.
func (s *SpeechToText) connect(ctx context.Context, sink *resultSink, interim bool) (*client.WSCallback, *io.PipeWriter, error) {
	pipeReader, pipeWriter := io.Pipe()

	clientOptions := &interfaces.ClientOptions{
		EnableKeepAlive: true,
	}
	transcriptOptions := &interfaces.LiveTranscriptionOptions{
		Model:          s.cfg.Model,
		Language:       s.cfg.Language,
		Encoding:       "linear16",
		SampleRate:     s.cfg.SampleRate,
		InterimResults: interim,
		Punctuate:      s.cfg.AutoPunctuation,
		SmartFormat:    s.cfg.AutoPunctuation,
	}

	cb := &callback{sink: sink, logger: s.logger}

	dgClient, err := client.NewWSUsingCallback(ctx, s.cfg.APIKey, clientOptions, transcriptOptions, cb)
	if err != nil {
		pipeWriter.Close()
		return nil, nil, errorsx.Wrap(err, errorsx.ReasonSTT)
	}
	if connected := dgClient.Connect(); !connected {
		pipeWriter.Close()
		return nil, nil, errorsx.New(errorsx.ReasonAPI, "deepgram connection failed")
	}

	go func() {
		if err := dgClient.Stream(pipeReader); err != nil && ctx.Err() == nil {
			s.logger.Error("stream error", slog.String("error", err.Error()))
		}
	}()

	return dgClient, pipeWriter, nil
}

type callback struct {
	sink       *resultSink
	logger     *slog.Logger
	metaLogged bool
}

func (c *callback) Open(or *msginterfaces.OpenResponse) error {
	c.logger.Info("connection opened")
	return nil
}

func (c *callback) Message(mr *msginterfaces.MessageResponse) error {
	if len(mr.Channel.Alternatives) == 0 {
		return nil
	}
	alt := mr.Channel.Alternatives[0]
	if alt.Transcript == "" {
		return nil
	}

	isFinal := mr.IsFinal || mr.SpeechFinal

	words := make([]speech.WordTiming, 0, len(alt.Words))
	for _, w := range alt.Words {
		words = append(words, speech.WordTiming{
			Word:       w.Word,
			StartMS:    int64(w.Start * 1000),
			EndMS:      int64(w.End * 1000),
			Confidence: w.Confidence,
		})
	}

	result := speech.TranscriptionResult{
		Text:        alt.Transcript,
		IsFinal:     isFinal,
		Confidence:  alt.Confidence,
		TimestampMS: time.Now().UnixMilli(),
		Words:       words,
	}

	c.logger.Debug("transcript received",
		slog.String("transcript", redact.Transcript(alt.Transcript)),
		slog.Bool("is_final", isFinal))

	// The callback runs on the SDK's read loop; dropping under a stalled
	// consumer beats blocking the websocket.
	if !c.sink.Send(result) {
		c.logger.Warn("result not delivered, dropping transcript")
	}
	return nil
}

func (c *callback) Metadata(md *msginterfaces.MetadataResponse) error {
	if !c.metaLogged {
		c.metaLogged = true
		c.logger.Info("metadata received", slog.String("request_id", md.RequestID))
	}
	return nil
}

func (c *callback) SpeechStarted(ssr *msginterfaces.SpeechStartedResponse) error {
	c.logger.Debug("speech started")
	return nil
}

func (c *callback) UtteranceEnd(ur *msginterfaces.UtteranceEndResponse) error {
	c.logger.Debug("utterance end")
	return nil
}

func (c *callback) Close(cr *msginterfaces.CloseResponse) error {
	c.logger.Info("connection closed")
	c.sink.Close()
	return nil
}

func (c *callback) Error(er *msginterfaces.ErrorResponse) error {
	c.logger.Error("deepgram error",
		slog.String("error_code", er.ErrCode),
		slog.String("error_message", er.ErrMsg))
	return nil
}

func (c *callback) UnhandledEvent(byData []byte) error {
	c.logger.Debug("unhandled event", slog.String("data", string(byData)))
	return nil
}

var _ stt.SpeechToText = (*SpeechToText)(nil)
