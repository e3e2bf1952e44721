package voice

import (
	"context"
	"testing"
	"time"

	"github.com/Neroli1108/intellidoc-reader/pkg/errorsx"
	"github.com/Neroli1108/intellidoc-reader/pkg/providers"
	"github.com/Neroli1108/intellidoc-reader/pkg/speech"
	"github.com/Neroli1108/intellidoc-reader/pkg/turn"
)

func mockConfig() Config {
	cfg := DefaultConfig()
	cfg.STT = providers.Config{Provider: "mock"}
	cfg.TTS = providers.Config{Provider: "mock"}
	cfg.ReadingSpeed = 3.0
	return cfg
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(mockConfig())
	if err := m.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return m
}

func TestUninitializedOperationsFail(t *testing.T) {
	m := NewManager(mockConfig())
	if m.IsInitialized() {
		t.Fatal("manager should not report initialized before Initialize")
	}

	if _, err := m.StartListening(context.Background()); !errorsx.HasReason(err, errorsx.ReasonNotInitialized) {
		t.Fatalf("expected not_initialized, got %v", err)
	}
	if _, err := m.ReadContent(context.Background(), "hello", speech.ReadingPosition{}); !errorsx.HasReason(err, errorsx.ReasonNotInitialized) {
		t.Fatalf("expected not_initialized, got %v", err)
	}
	if err := m.Speak(context.Background(), "hello"); !errorsx.HasReason(err, errorsx.ReasonNotInitialized) {
		t.Fatalf("expected not_initialized, got %v", err)
	}
}

func TestStartListeningRequiresIdle(t *testing.T) {
	m := newTestManager(t)

	results, err := m.StartListening(context.Background())
	if err != nil {
		t.Fatalf("start listening: %v", err)
	}
	if m.State() != turn.StateListening {
		t.Fatalf("expected Listening, got %v", m.State())
	}

	if _, err := m.StartListening(context.Background()); !errorsx.HasReason(err, errorsx.ReasonInvalidState) {
		t.Fatalf("second start should fail with invalid_state, got %v", err)
	}

	select {
	case result := <-results:
		if result.Text == "" {
			t.Fatal("expected non-empty transcript")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no transcription result arrived")
	}

	if err := m.StopListening(); err != nil {
		t.Fatalf("stop listening: %v", err)
	}
	if m.State() != turn.StateIdle {
		t.Fatalf("expected Idle after stop, got %v", m.State())
	}
}

func TestReadContentEmitsPositions(t *testing.T) {
	m := newTestManager(t)

	start := speech.ReadingPosition{DocumentID: "doc1", Page: 3, ParagraphID: "p2", WordIndex: 10}
	positions, err := m.ReadContent(context.Background(), "alpha beta", start)
	if err != nil {
		t.Fatalf("read content: %v", err)
	}

	var got []speech.ReadingPosition
	for pos := range positions {
		got = append(got, pos)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 positions, got %d", len(got))
	}
	for i, pos := range got {
		if pos.DocumentID != "doc1" || pos.Page != 3 || pos.ParagraphID != "p2" {
			t.Fatalf("position %d lost anchor fields: %+v", i, pos)
		}
		if pos.WordIndex != 10+i {
			t.Fatalf("position %d: expected word index %d, got %d", i, 10+i, pos.WordIndex)
		}
	}
	if got[1].TimestampMS <= got[0].TimestampMS {
		t.Fatal("timestamps must be monotonic")
	}

	if m.State() != turn.StateIdle {
		t.Fatalf("expected Idle after reading completes, got %v", m.State())
	}
	cursor := m.ReadingPosition()
	if cursor == nil || cursor.WordIndex != 11 {
		t.Fatalf("cursor should rest on the last word, got %+v", cursor)
	}
}

func TestReadContentRequiresIdle(t *testing.T) {
	m := newTestManager(t)

	content := "one two three four five six seven eight nine ten eleven twelve"
	positions, err := m.ReadContent(context.Background(), content, speech.ReadingPosition{DocumentID: "doc1", Page: 1})
	if err != nil {
		t.Fatalf("read content: %v", err)
	}

	if _, err := m.ReadContent(context.Background(), "other", speech.ReadingPosition{}); !errorsx.HasReason(err, errorsx.ReasonInvalidState) {
		t.Fatalf("concurrent read should fail with invalid_state, got %v", err)
	}

	if err := m.StopReading(); err != nil {
		t.Fatalf("stop reading: %v", err)
	}
	for range positions {
	}
}

func TestStopReadingHaltsEmission(t *testing.T) {
	m := newTestManager(t)

	content := "one two three four five six seven eight nine ten eleven twelve thirteen fourteen fifteen sixteen seventeen eighteen nineteen twenty"
	positions, err := m.ReadContent(context.Background(), content, speech.ReadingPosition{DocumentID: "doc1", Page: 1})
	if err != nil {
		t.Fatalf("read content: %v", err)
	}

	first, ok := <-positions
	if !ok {
		t.Fatal("expected at least one position")
	}
	if first.WordIndex != 0 {
		t.Fatalf("expected word index 0 first, got %d", first.WordIndex)
	}

	if err := m.StopReading(); err != nil {
		t.Fatalf("stop reading: %v", err)
	}
	if m.State() != turn.StateIdle {
		t.Fatalf("expected Idle after stop, got %v", m.State())
	}

	count := 1
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-positions:
			if !ok {
				if count >= 20 {
					t.Fatalf("stop did not halt emission, saw %d positions", count)
				}
				return
			}
			count++
		case <-deadline:
			t.Fatal("position channel never closed after stop")
		}
	}
}

func TestSpeakRoundTrip(t *testing.T) {
	m := newTestManager(t)

	if err := m.Speak(context.Background(), "done"); err != nil {
		t.Fatalf("speak: %v", err)
	}
	if m.State() != turn.StateIdle {
		t.Fatalf("expected Idle after speak, got %v", m.State())
	}
}

func TestTranscribeOneShot(t *testing.T) {
	m := newTestManager(t)

	result, err := m.Transcribe(context.Background(), make([]float32, 1600), 16000)
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if !result.IsFinal || result.Text == "" {
		t.Fatalf("expected final transcript, got %+v", result)
	}
	if m.State() != turn.StateIdle {
		t.Fatalf("expected Idle after transcription, got %v", m.State())
	}
}

func TestUpdateConfigKeepsSessionAlive(t *testing.T) {
	m := newTestManager(t)

	if _, err := m.StartListening(context.Background()); err != nil {
		t.Fatalf("start listening: %v", err)
	}

	cfg := m.Config()
	cfg.ReadingSpeed = 2.0
	cfg.Language = "zh-CN"
	m.UpdateConfig(cfg)

	if m.State() != turn.StateListening {
		t.Fatalf("config update must not tear down the session, got %v", m.State())
	}
	if got := m.Config().ReadingSpeed; got != 2.0 {
		t.Fatalf("expected reading speed 2.0, got %v", got)
	}

	if err := m.StopListening(); err != nil {
		t.Fatalf("stop listening: %v", err)
	}
}

func TestStateListener(t *testing.T) {
	m := newTestManager(t)

	changes := make(chan turn.StateChange, 10)
	m.OnStateChange(turn.ListenerFunc(func(change turn.StateChange) {
		changes <- change
	}))

	if _, err := m.StartListening(context.Background()); err != nil {
		t.Fatalf("start listening: %v", err)
	}

	select {
	case change := <-changes:
		if change.FromState != turn.StateIdle || change.ToState != turn.StateListening {
			t.Fatalf("unexpected transition %v -> %v", change.FromState, change.ToState)
		}
	case <-time.After(time.Second):
		t.Fatal("listener never fired")
	}

	if err := m.StopListening(); err != nil {
		t.Fatalf("stop listening: %v", err)
	}
}
