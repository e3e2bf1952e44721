package providers

import (
	"testing"

	"github.com/Neroli1108/intellidoc-reader/pkg/errorsx"
)

func TestPlannedProvidersFailFast(t *testing.T) {
	for _, name := range []string{"vosk", "openai_whisper", "aws_transcribe", "google_speech", "azure_speech", "assemblyai"} {
		_, err := NewSpeechToText(Config{Provider: name}, nil)
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
		if !errorsx.HasReason(err, errorsx.ReasonProviderNotAvailable) {
			t.Fatalf("%s: expected provider_not_available, got %v", name, err)
		}
	}

	for _, name := range []string{"coqui_local", "espeak_ng", "openai_tts", "aws_polly", "google_tts", "azure_tts"} {
		_, err := NewTextToSpeech(Config{Provider: name})
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
		if !errorsx.HasReason(err, errorsx.ReasonProviderNotAvailable) {
			t.Fatalf("%s: expected provider_not_available, got %v", name, err)
		}
	}
}

func TestUnknownProviderRejected(t *testing.T) {
	if _, err := NewSpeechToText(Config{Provider: "carrier_pigeon"}, nil); err == nil {
		t.Fatal("expected error for unknown stt provider")
	}
	if _, err := NewTextToSpeech(Config{Provider: "carrier_pigeon"}); err == nil {
		t.Fatal("expected error for unknown tts provider")
	}
}

func TestMockProviders(t *testing.T) {
	sttBackend, err := NewSpeechToText(Config{Provider: "mock"}, nil)
	if err != nil {
		t.Fatalf("mock stt: %v", err)
	}
	if sttBackend.Name() != "mock" {
		t.Fatalf("unexpected name %q", sttBackend.Name())
	}

	ttsBackend, err := NewTextToSpeech(Config{Provider: "mock"})
	if err != nil {
		t.Fatalf("mock tts: %v", err)
	}
	if len(ttsBackend.AvailableVoices()) == 0 {
		t.Fatal("mock tts must list at least one voice")
	}
}

func TestLocalProviderMissingModel(t *testing.T) {
	_, err := NewSpeechToText(Config{
		Provider: "whisper_local",
		Settings: map[string]any{"model_path": "/nonexistent/ggml-base.bin"},
	}, nil)
	if err == nil {
		t.Fatal("expected error for missing model")
	}
	if !errorsx.HasReason(err, errorsx.ReasonModelNotFound) {
		t.Fatalf("expected model_not_found, got %v", err)
	}

	_, err = NewTextToSpeech(Config{
		Provider: "piper_local",
		Settings: map[string]any{"model_path": "/nonexistent/voice.onnx"},
	})
	if !errorsx.HasReason(err, errorsx.ReasonModelNotFound) {
		t.Fatalf("expected model_not_found, got %v", err)
	}
}

func TestCloudProviderRequiresKey(t *testing.T) {
	_, err := NewSpeechToText(Config{Provider: "deepgram"}, nil)
	if !errorsx.HasReason(err, errorsx.ReasonProviderNotAvailable) {
		t.Fatalf("expected provider_not_available without api key, got %v", err)
	}

	_, err = NewTextToSpeech(Config{Provider: "elevenlabs"})
	if !errorsx.HasReason(err, errorsx.ReasonProviderNotAvailable) {
		t.Fatalf("expected provider_not_available without api key, got %v", err)
	}
}
