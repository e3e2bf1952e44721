// Package speech holds the value types shared between the audio pipeline,
// the STT/TTS provider adapters and the voice manager: transcriptions,
// word-level timings, raw audio buffers and reading positions.
package speech

// WordTiming aligns a single spoken word with its playback window.
// StartMS is inclusive, EndMS exclusive. Within one result the StartMS
// values are non-decreasing.
type WordTiming struct {
	Word       string  `json:"word"`
	StartMS    int64   `json:"start_ms"`
	EndMS      int64   `json:"end_ms"`
	Confidence float64 `json:"confidence"`
}

// TranscriptionResult is one utterance segment produced by an STT provider.
// Results are immutable once emitted.
type TranscriptionResult struct {
	Text        string       `json:"text"`
	IsFinal     bool         `json:"is_final"`
	Confidence  float64      `json:"confidence"`
	TimestampMS int64        `json:"timestamp_ms"`
	Words       []WordTiming `json:"words"`
}

// AudioData is a buffer of normalized float samples in [-1, 1].
// len(Samples) is divisible by Channels.
type AudioData struct {
	Samples    []float32
	SampleRate int
	Channels   int
}

// DurationMS returns the playback duration of the buffer in milliseconds.
func (a AudioData) DurationMS() int64 {
	if a.SampleRate <= 0 || a.Channels <= 0 {
		return 0
	}
	frames := len(a.Samples) / a.Channels
	return int64(float64(frames) / float64(a.SampleRate) * 1000.0)
}

// AudioChunk is one streamed piece of synthesized audio. Data carries raw
// PCM bytes at SampleRate; WordTimings lists the words whose start falls
// inside the chunk's time window. IsFinal marks the last chunk of an
// utterance; a final chunk may carry no audio.
type AudioChunk struct {
	Data        []byte
	SampleRate  int
	WordTimings []WordTiming
	IsFinal     bool
}

// ReadingPosition is the live cursor consumed by UI highlighting and
// annotation creation. Page is 1-indexed, WordIndex 0-indexed within the
// paragraph. TimestampMS is elapsed time since the read started.
type ReadingPosition struct {
	DocumentID      string `json:"document_id"`
	Page            int    `json:"page"`
	ParagraphID     string `json:"paragraph_id"`
	WordIndex       int    `json:"word_index"`
	CharacterOffset int    `json:"character_offset"`
	TimestampMS     int64  `json:"timestamp_ms"`
}

// VoiceGender classifies a synthesis voice.
type VoiceGender string

const (
	GenderMale    VoiceGender = "male"
	GenderFemale  VoiceGender = "female"
	GenderNeutral VoiceGender = "neutral"
)

// VoiceInfo describes one selectable TTS voice.
type VoiceInfo struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Language string      `json:"language"`
	Gender   VoiceGender `json:"gender"`
	Style    string      `json:"style,omitempty"`
}
