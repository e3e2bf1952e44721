package voice

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/Neroli1108/intellidoc-reader/pkg/providers"
)

// Config is the engine's serializable configuration. Mutations happen only
// through Manager.UpdateConfig; changing providers does not tear down live
// sessions, callers re-initialize instead.
type Config struct {
	STT                 providers.Config `mapstructure:"stt" json:"stt"`
	TTS                 providers.Config `mapstructure:"tts" json:"tts"`
	VoiceID             string           `mapstructure:"voice_id" json:"voice_id"`
	Language            string           `mapstructure:"language" json:"language"`
	ReadingSpeed        float64          `mapstructure:"reading_speed" json:"reading_speed"`
	WakeWordEnabled     bool             `mapstructure:"wake_word_enabled" json:"wake_word_enabled"`
	WakeWord            string           `mapstructure:"wake_word" json:"wake_word"`
	AutoPunctuation     bool             `mapstructure:"auto_punctuation" json:"auto_punctuation"`
	NoiseSuppression    bool             `mapstructure:"noise_suppression" json:"noise_suppression"`
	ContinuousListening bool             `mapstructure:"continuous_listening" json:"continuous_listening"`
	RedactTranscripts   bool             `mapstructure:"redact_transcripts" json:"redact_transcripts"`
	LogLevel            string           `mapstructure:"log_level" json:"log_level"`
}

// DefaultConfig matches a fresh install: local providers with models in
// voice_models/.
func DefaultConfig() Config {
	return Config{
		STT: providers.Config{
			Provider: "whisper_local",
			Settings: map[string]any{"model_path": "voice_models/whisper/ggml-base.bin"},
		},
		TTS: providers.Config{
			Provider: "piper_local",
			Settings: map[string]any{"model_path": "voice_models/piper/en_US-lessac-medium.onnx"},
		},
		VoiceID:             "default",
		Language:            "en-US",
		ReadingSpeed:        1.0,
		WakeWordEnabled:     false,
		WakeWord:            "Hey IntelliDoc",
		AutoPunctuation:     true,
		NoiseSuppression:    true,
		ContinuousListening: false,
		RedactTranscripts:   false,
		LogLevel:            "info",
	}
}

// LoadConfig reads a config file, applying defaults for absent keys.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("stt.provider", "whisper_local")
	v.SetDefault("stt.settings.model_path", "voice_models/whisper/ggml-base.bin")
	v.SetDefault("tts.provider", "piper_local")
	v.SetDefault("tts.settings.model_path", "voice_models/piper/en_US-lessac-medium.onnx")
	v.SetDefault("voice_id", "default")
	v.SetDefault("language", "en-US")
	v.SetDefault("reading_speed", 1.0)
	v.SetDefault("wake_word_enabled", false)
	v.SetDefault("wake_word", "Hey IntelliDoc")
	v.SetDefault("auto_punctuation", true)
	v.SetDefault("noise_suppression", true)
	v.SetDefault("continuous_listening", false)
	v.SetDefault("redact_transcripts", false)
	v.SetDefault("log_level", "info")

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	if cfg.ReadingSpeed < 0.25 || cfg.ReadingSpeed > 3.0 {
		return Config{}, fmt.Errorf("reading_speed %.2f out of range [0.25, 3.0]", cfg.ReadingSpeed)
	}
	return cfg, nil
}
