package mock

import (
	"context"
	"testing"
)

func TestStreamChunksCarrySampleRate(t *testing.T) {
	backend := NewTTS(TTSConfig{SampleRate: 16000, RealTime: true})

	chunks, err := backend.SynthesizeStream(context.Background(), "alpha beta")
	if err != nil {
		t.Fatalf("synthesize stream: %v", err)
	}

	count := 0
	sawFinal := false
	for chunk := range chunks {
		count++
		if chunk.SampleRate != 16000 {
			t.Fatalf("chunk %d: expected sample rate 16000, got %d", count, chunk.SampleRate)
		}
		if chunk.IsFinal {
			sawFinal = true
		}
	}
	if count != 2 {
		t.Fatalf("expected one chunk per word, got %d", count)
	}
	if !sawFinal {
		t.Fatal("last chunk must carry IsFinal")
	}
}
