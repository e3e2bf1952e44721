// Package voice is the engine's front door: it owns the providers, the
// state machine, the reading-position synchronizer and the command-to-action
// mapping consumed by the host UI.
package voice

import "github.com/Neroli1108/intellidoc-reader/pkg/speech"

// ActionType discriminates the VoiceAction variants.
type ActionType string

const (
	ActionAddAnnotation   ActionType = "add_annotation"
	ActionAddHighlight    ActionType = "add_highlight"
	ActionScrollTo        ActionType = "scroll_to"
	ActionShowLLMResponse ActionType = "show_llm_response"
	ActionStartReading    ActionType = "start_reading"
	ActionStopReading     ActionType = "stop_reading"
	ActionAdjustSpeed     ActionType = "adjust_speed"
)

// VoiceAction is the sole outbound contract to the host UI. Type selects
// the variant; only that variant's fields are populated.
type VoiceAction struct {
	Type ActionType `json:"type"`

	Position speech.ReadingPosition `json:"position,omitempty"`
	Content  string                 `json:"content,omitempty"`
	Color    string                 `json:"color,omitempty"`
	Response string                 `json:"response,omitempty"`
	Speed    float64                `json:"speed,omitempty"`
}

// VoiceResponse is the outcome of processing one voice command.
type VoiceResponse struct {
	Text        string       `json:"text"`
	ShouldSpeak bool         `json:"should_speak"`
	Action      *VoiceAction `json:"action,omitempty"`
}
