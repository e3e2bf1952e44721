package errorsx

// ReasonCode is a short machine-readable error reason.
type ReasonCode string

const (
	ReasonUnknown ReasonCode = "unknown"

	// ReasonNotInitialized means providers were never created.
	ReasonNotInitialized ReasonCode = "not_initialized"
	// ReasonInvalidState means an illegal state transition was attempted.
	ReasonInvalidState ReasonCode = "invalid_state"
	// ReasonAudio covers capture and playback failures.
	ReasonAudio ReasonCode = "audio"
	// ReasonSTT covers speech-to-text backend failures.
	ReasonSTT ReasonCode = "stt"
	// ReasonTTS covers text-to-speech backend failures.
	ReasonTTS ReasonCode = "tts"
	// ReasonProviderNotAvailable means the configured backend is
	// unimplemented or misconfigured.
	ReasonProviderNotAvailable ReasonCode = "provider_not_available"
	// ReasonModelNotFound means a backing model asset is absent.
	ReasonModelNotFound ReasonCode = "model_not_found"
	// ReasonAPI covers network-backed provider failures.
	ReasonAPI ReasonCode = "api"
	// ReasonIO covers filesystem failures.
	ReasonIO ReasonCode = "io"
)
