package audio

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Neroli1108/intellidoc-reader/pkg/errorsx"
	"github.com/Neroli1108/intellidoc-reader/pkg/logging"
)

// Config describes a capture or playback stream.
type Config struct {
	SampleRate int
	Channels   int
	BufferSize int
}

// DefaultConfig is 16kHz mono, the format speech recognition backends want.
func DefaultConfig() Config {
	return Config{SampleRate: 16000, Channels: 1, BufferSize: 1024}
}

// Device is the host audio stack's input side. Implementations block in
// Read until a chunk is available; the capture loop runs Read on its own
// goroutine so slow consumers never stall the hardware callback.
type Device interface {
	Start(cfg Config) error
	// Read returns the next chunk of interleaved samples.
	Read() ([]float32, error)
	Stop() error
}

// Capture pulls sample chunks from a Device onto a bounded channel.
// Exactly one capture session may be active per Capture instance.
type Capture struct {
	cfg       Config
	device    Device
	recording atomic.Bool
	logger    *slog.Logger
}

func NewCapture(cfg Config, device Device) *Capture {
	if cfg.SampleRate == 0 {
		cfg = DefaultConfig()
	}
	return &Capture{
		cfg:    cfg,
		device: device,
		logger: logging.NewComponentLogger(slog.Default(), "audio_capture"),
	}
}

// Start begins delivering sample chunks in arrival order. It fails when a
// session is already active or no input device exists. The returned channel
// is closed when the session ends; sends block when the consumer lags,
// which is the intended backpressure mechanism.
func (c *Capture) Start(ctx context.Context) (<-chan []float32, error) {
	if c.device == nil {
		return nil, errorsx.New(errorsx.ReasonAudio, "no input device")
	}
	if !c.recording.CompareAndSwap(false, true) {
		return nil, errorsx.New(errorsx.ReasonAudio, "capture already active")
	}
	if err := c.device.Start(c.cfg); err != nil {
		c.recording.Store(false)
		return nil, errorsx.Wrap(err, errorsx.ReasonAudio)
	}

	out := make(chan []float32, 100)
	go func() {
		defer close(out)
		for c.recording.Load() {
			chunk, err := c.device.Read()
			if err != nil {
				if c.recording.Load() {
					c.logger.Error("device read failed", slog.String("error", err.Error()))
				}
				return
			}
			if !c.recording.Load() {
				return
			}
			select {
			case out <- chunk:
			case <-ctx.Done():
				return
			}
		}
	}()

	c.logger.Info("capture started",
		slog.Int("sample_rate", c.cfg.SampleRate),
		slog.Int("channels", c.cfg.Channels))
	return out, nil
}

// Stop ends the capture session. Idempotent; a final in-flight chunk may
// still be delivered after Stop returns.
func (c *Capture) Stop() {
	if !c.recording.CompareAndSwap(true, false) {
		return
	}
	_ = c.device.Stop()
	c.logger.Info("capture stopped")
}

// Active reports whether a capture session is running.
func (c *Capture) Active() bool {
	return c.recording.Load()
}

// StubDevice emits silence at a real-time pace. It stands in when the host
// has not wired a hardware backend, keeping capture consumers functional.
type StubDevice struct {
	cfg     Config
	stopped atomic.Bool
}

func NewStubDevice() *StubDevice {
	return &StubDevice{}
}

func (d *StubDevice) Start(cfg Config) error {
	d.cfg = cfg
	d.stopped.Store(false)
	return nil
}

func (d *StubDevice) Read() ([]float32, error) {
	if d.stopped.Load() {
		return nil, context.Canceled
	}
	size := d.cfg.BufferSize
	if size <= 0 {
		size = 1024
	}
	// Pace chunk delivery to match the configured sample rate.
	if d.cfg.SampleRate > 0 {
		time.Sleep(time.Duration(float64(size) / float64(d.cfg.SampleRate) * float64(time.Second)))
	}
	return make([]float32, size), nil
}

func (d *StubDevice) Stop() error {
	d.stopped.Store(true)
	return nil
}
