// Package providers maps tagged provider configuration onto concrete
// STT/TTS backends. Recognized-but-unbuilt backends fail fast with
// provider_not_available; nothing silently falls back.
package providers

import (
	"github.com/Neroli1108/intellidoc-reader/pkg/adapters/stt"
	"github.com/Neroli1108/intellidoc-reader/pkg/adapters/tts"
	"github.com/Neroli1108/intellidoc-reader/pkg/audio"
	"github.com/Neroli1108/intellidoc-reader/pkg/configutil"
	"github.com/Neroli1108/intellidoc-reader/pkg/errorsx"
	"github.com/Neroli1108/intellidoc-reader/pkg/providers/deepgram"
	"github.com/Neroli1108/intellidoc-reader/pkg/providers/elevenlabs"
	"github.com/Neroli1108/intellidoc-reader/pkg/providers/mock"
	"github.com/Neroli1108/intellidoc-reader/pkg/providers/piper"
	"github.com/Neroli1108/intellidoc-reader/pkg/providers/whisper"
)

// Config selects a backend by name. Settings is decoded per backend, so
// each provider keeps its own schema.
type Config struct {
	Provider string         `mapstructure:"provider" json:"provider"`
	Settings map[string]any `mapstructure:"settings" json:"settings,omitempty"`
}

// Backend names with no implementation yet. Listing them separates "known
// but unavailable" from a typo.
var plannedSTT = map[string]bool{
	"vosk":           true,
	"openai_whisper": true,
	"aws_transcribe": true,
	"google_speech":  true,
	"azure_speech":   true,
	"assemblyai":     true,
}

var plannedTTS = map[string]bool{
	"coqui_local": true,
	"espeak_ng":   true,
	"openai_tts":  true,
	"aws_polly":   true,
	"google_tts":  true,
	"azure_tts":   true,
}

// NewSpeechToText builds the configured STT backend. Local backends own
// the given capture pipeline.
func NewSpeechToText(cfg Config, capture *audio.Capture) (stt.SpeechToText, error) {
	switch cfg.Provider {
	case "whisper_local":
		var wcfg whisper.Config
		if err := configutil.DecodeSettings(cfg.Settings, &wcfg); err != nil {
			return nil, err
		}
		return whisper.New(wcfg, capture)

	case "deepgram":
		var dcfg deepgram.Config
		if err := configutil.DecodeSettings(cfg.Settings, &dcfg); err != nil {
			return nil, err
		}
		if dcfg.APIKey == "" {
			return nil, errorsx.New(errorsx.ReasonProviderNotAvailable, "deepgram: api_key not set")
		}
		return deepgram.New(dcfg, capture), nil

	case "mock":
		return mock.NewSTT(mock.STTConfig{}), nil

	default:
		if plannedSTT[cfg.Provider] {
			return nil, errorsx.Errorf(errorsx.ReasonProviderNotAvailable, "stt provider %q is not implemented", cfg.Provider)
		}
		return nil, errorsx.Errorf(errorsx.ReasonProviderNotAvailable, "unknown stt provider %q", cfg.Provider)
	}
}

// NewTextToSpeech builds the configured TTS backend.
func NewTextToSpeech(cfg Config) (tts.TextToSpeech, error) {
	switch cfg.Provider {
	case "piper_local":
		var pcfg piper.Config
		if err := configutil.DecodeSettings(cfg.Settings, &pcfg); err != nil {
			return nil, err
		}
		return piper.New(pcfg)

	case "elevenlabs":
		var ecfg elevenlabs.Config
		if err := configutil.DecodeSettings(cfg.Settings, &ecfg); err != nil {
			return nil, err
		}
		if ecfg.APIKey == "" {
			return nil, errorsx.New(errorsx.ReasonProviderNotAvailable, "elevenlabs: api_key not set")
		}
		return elevenlabs.New(ecfg), nil

	case "mock":
		return mock.NewTTS(mock.TTSConfig{}), nil

	default:
		if plannedTTS[cfg.Provider] {
			return nil, errorsx.Errorf(errorsx.ReasonProviderNotAvailable, "tts provider %q is not implemented", cfg.Provider)
		}
		return nil, errorsx.Errorf(errorsx.ReasonProviderNotAvailable, "unknown tts provider %q", cfg.Provider)
	}
}
