package elevenlabs

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Neroli1108/intellidoc-reader/pkg/speech"
)

// serveStream runs a local stream-input endpoint that drains the client's
// three messages, then replies with the given frames and a normal close.
func serveStream(t *testing.T, frames []map[string]any) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// init, text, flush
		for i := 0; i < 3; i++ {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
		for _, frame := range frames {
			if err := conn.WriteJSON(frame); err != nil {
				return
			}
		}
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}))
}

func collectChunks(t *testing.T, chunks <-chan speech.AudioChunk) []speech.AudioChunk {
	t.Helper()
	var got []speech.AudioChunk
	deadline := time.After(5 * time.Second)
	for {
		select {
		case chunk, ok := <-chunks:
			if !ok {
				return got
			}
			got = append(got, chunk)
		case <-deadline:
			t.Fatal("chunk stream never closed")
		}
	}
}

func TestStreamEmitsFinalChunk(t *testing.T) {
	// 200ms of PCM at 22050Hz: only the first word starts inside it.
	pcm := make([]byte, 22050/5*2)
	srv := serveStream(t, []map[string]any{
		{"audio": base64.StdEncoding.EncodeToString(pcm)},
		{"isFinal": true},
	})
	defer srv.Close()

	backend := New(Config{APIKey: "key", VoiceID: "voice"})
	backend.baseURL = "ws" + strings.TrimPrefix(srv.URL, "http")

	chunks, err := backend.SynthesizeStream(context.Background(), "alpha beta gamma delta")
	if err != nil {
		t.Fatalf("synthesize stream: %v", err)
	}
	got := collectChunks(t, chunks)

	if len(got) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(got))
	}
	if got[0].IsFinal {
		t.Fatal("audio chunk must not be final")
	}
	if got[0].SampleRate != 22050 {
		t.Fatalf("expected sample rate 22050, got %d", got[0].SampleRate)
	}

	last := got[len(got)-1]
	if !last.IsFinal {
		t.Fatal("last chunk must carry IsFinal")
	}
	if len(last.Data) != 0 {
		t.Fatalf("final marker should carry no audio, got %d bytes", len(last.Data))
	}

	total := 0
	for _, chunk := range got {
		total += len(chunk.WordTimings)
	}
	if total != 4 {
		t.Fatalf("expected all 4 word timings across the stream, got %d", total)
	}
	if len(last.WordTimings) == 0 {
		t.Fatal("final chunk must flush the remaining timings")
	}
}

func TestStreamRejectsMissingCredentials(t *testing.T) {
	backend := New(Config{})
	if _, err := backend.SynthesizeStream(context.Background(), "hello"); err == nil {
		t.Fatal("expected error without api key and voice id")
	}
}
