package errorsx

import "testing"

func TestWrapAndReason(t *testing.T) {
	err := Wrap(assertErr{}, ReasonSTT)
	if Reason(err) != ReasonSTT {
		t.Fatalf("expected reason %s, got %s", ReasonSTT, Reason(err))
	}
	if !HasReason(err, ReasonSTT) {
		t.Fatalf("expected HasReason true")
	}
}

func TestWrapPreservesExistingReason(t *testing.T) {
	first := Wrap(assertErr{}, ReasonModelNotFound)
	second := Wrap(first, ReasonTTS)
	if Reason(second) != ReasonModelNotFound {
		t.Fatalf("expected reason preserved, got %s", Reason(second))
	}
}

func TestNewAndErrorf(t *testing.T) {
	err := New(ReasonInvalidState, "already listening")
	if Reason(err) != ReasonInvalidState {
		t.Fatalf("expected invalid_state, got %s", Reason(err))
	}
	if err.Error() != "already listening" {
		t.Fatalf("unexpected message: %s", err.Error())
	}

	err = Errorf(ReasonModelNotFound, "missing model %s", "ggml-base.bin")
	if !HasReason(err, ReasonModelNotFound) {
		t.Fatalf("expected model_not_found")
	}
}

func TestReasonOnNil(t *testing.T) {
	if Reason(nil) != ReasonUnknown {
		t.Fatalf("expected unknown reason for nil error")
	}
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }
