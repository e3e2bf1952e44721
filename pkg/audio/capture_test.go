package audio

import (
	"context"
	"testing"
	"time"
)

func TestCaptureDoubleStartFails(t *testing.T) {
	c := NewCapture(Config{SampleRate: 16000, Channels: 1, BufferSize: 64}, NewStubDevice())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := c.Start(ctx)
	if err != nil {
		t.Fatalf("first start failed: %v", err)
	}
	if _, err := c.Start(ctx); err == nil {
		t.Fatal("second start should fail while a session is active")
	}

	select {
	case chunk := <-ch:
		if len(chunk) != 64 {
			t.Fatalf("expected 64-sample chunks, got %d", len(chunk))
		}
	case <-time.After(time.Second):
		t.Fatal("no chunk delivered within a second")
	}

	c.Stop()
	if c.Active() {
		t.Fatal("capture still active after stop")
	}
}

func TestCaptureStopIdempotent(t *testing.T) {
	c := NewCapture(DefaultConfig(), NewStubDevice())
	ctx := context.Background()

	if _, err := c.Start(ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	c.Stop()
	c.Stop()

	// A new session may begin after stop.
	if _, err := c.Start(ctx); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	c.Stop()
}

func TestCaptureNoDevice(t *testing.T) {
	c := NewCapture(DefaultConfig(), nil)
	if _, err := c.Start(context.Background()); err == nil {
		t.Fatal("expected error with no input device")
	}
}
