package deepgram

import (
	"sync"
	"testing"

	"github.com/Neroli1108/intellidoc-reader/pkg/speech"
)

func TestResultSinkDeliversThenCloses(t *testing.T) {
	sink := newResultSink(4)

	if !sink.Send(speech.TranscriptionResult{Text: "hello", IsFinal: true}) {
		t.Fatal("send into an open sink must succeed")
	}
	sink.Close()
	sink.Close()

	res, ok := <-sink.Results()
	if !ok || res.Text != "hello" {
		t.Fatalf("buffered result must survive close, got %v %v", res, ok)
	}
	if _, ok := <-sink.Results(); ok {
		t.Fatal("channel must be closed after drain")
	}
}

func TestResultSinkRefusesSendAfterClose(t *testing.T) {
	sink := newResultSink(4)
	sink.Close()

	// The read-loop callback can fire after teardown begins; the send must
	// be refused, never panic.
	if sink.Send(speech.TranscriptionResult{Text: "late final"}) {
		t.Fatal("send after close must be refused")
	}
}

func TestResultSinkConcurrentSendAndClose(t *testing.T) {
	sink := newResultSink(1)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			sink.Send(speech.TranscriptionResult{Text: "chatter"})
		}
	}()

	go func() {
		for range sink.Results() {
		}
	}()

	sink.Close()
	wg.Wait()
}

func TestResultSinkDropsWhenFull(t *testing.T) {
	sink := newResultSink(1)

	if !sink.Send(speech.TranscriptionResult{Text: "first"}) {
		t.Fatal("first send must fit the buffer")
	}
	if sink.Send(speech.TranscriptionResult{Text: "second"}) {
		t.Fatal("send into a full sink must report a drop")
	}
}

func TestStopListeningWhenIdle(t *testing.T) {
	s := New(Config{APIKey: "key"}, nil)
	if err := s.StopListening(); err != nil {
		t.Fatalf("stop without a session must be a no-op, got %v", err)
	}
	if s.IsListening() {
		t.Fatal("must not report listening")
	}
}
