package audio

import (
	"context"
	"log/slog"
	"time"

	"github.com/Neroli1108/intellidoc-reader/pkg/errorsx"
	"github.com/Neroli1108/intellidoc-reader/pkg/logging"
	"github.com/Neroli1108/intellidoc-reader/pkg/speech"
)

// Sink is the host audio stack's output side. Play blocks until the buffer
// has been rendered.
type Sink interface {
	Play(ctx context.Context, data speech.AudioData) error
}

// Player renders synthesized audio through a Sink. With no sink configured
// it simulates playback by sleeping for the buffer's duration, so timing
// consumers (the reading synchronizer) behave identically either way.
type Player struct {
	sink   Sink
	logger *slog.Logger
}

func NewPlayer(sink Sink) *Player {
	return &Player{
		sink:   sink,
		logger: logging.NewComponentLogger(slog.Default(), "audio_player"),
	}
}

// Play blocks the calling goroutine until playback completes or ctx is
// cancelled. There is no mid-playback cancellation beyond ctx; cancellable
// word-granular playback lives in the reading synchronizer.
func (p *Player) Play(ctx context.Context, data speech.AudioData) error {
	if p.sink != nil {
		if err := p.sink.Play(ctx, data); err != nil {
			return errorsx.Wrap(err, errorsx.ReasonAudio)
		}
		return nil
	}

	duration := time.Duration(data.DurationMS()) * time.Millisecond
	p.logger.Debug("no playback sink configured, simulating",
		slog.Duration("duration", duration))
	select {
	case <-time.After(duration):
		return nil
	case <-ctx.Done():
		return errorsx.Wrap(ctx.Err(), errorsx.ReasonAudio)
	}
}

// PlayWithSync plays a buffer while invoking onWord as wall-clock time
// crosses each word's start. Word callbacks are polled every 10ms, so the
// callback cadence is bounded by the poll interval rather than being
// sample-accurate.
func (p *Player) PlayWithSync(ctx context.Context, data speech.AudioData, timings []speech.WordTiming, onWord func(index int)) error {
	done := make(chan error, 1)
	go func() {
		done <- p.Play(ctx, data)
	}()

	start := time.Now()
	current := 0
	for current < len(timings) {
		if ctx.Err() != nil {
			break
		}
		elapsedMS := time.Since(start).Milliseconds()
		if elapsedMS >= timings[current].StartMS {
			if onWord != nil {
				onWord(current)
			}
			current++
			continue
		}
		time.Sleep(10 * time.Millisecond)
	}

	return <-done
}
