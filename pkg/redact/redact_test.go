package redact

import (
	"strings"
	"testing"
)

func TestRedactDisabled(t *testing.T) {
	SetEnabled(false)
	in := "send it to jane.doe@example.com or call +1 415 555 0100"
	if got := Transcript(in); got != in {
		t.Fatalf("expected no redaction, got %q", got)
	}
}

func TestRedactEnabled(t *testing.T) {
	SetEnabled(true)
	defer SetEnabled(false)

	in := "send it to jane.doe@example.com or call +1 415 555 0100"
	got := Transcript(in)
	if got == in {
		t.Fatal("expected redaction")
	}
	if want := "[REDACTED_EMAIL]"; !strings.Contains(got, want) {
		t.Fatalf("expected %q in output, got %q", want, got)
	}
	if want := "[REDACTED_PHONE]"; !strings.Contains(got, want) {
		t.Fatalf("expected %q in output, got %q", want, got)
	}
	if strings.Contains(got, "example.com") {
		t.Fatalf("address survived redaction: %q", got)
	}
}
