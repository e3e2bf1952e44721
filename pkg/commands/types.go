// Package commands turns transcribed speech into structured commands
// through an ordered rule cascade. The command set is closed; anything the
// rules do not claim comes back as free text.
package commands

// CommandType discriminates the VoiceCommand variants.
type CommandType string

const (
	CmdNoteDown    CommandType = "note_down"
	CmdHighlight   CommandType = "highlight"
	CmdStartRead   CommandType = "start_reading"
	CmdStopRead    CommandType = "stop_reading"
	CmdSkipSection CommandType = "skip_section"
	CmdGoBack      CommandType = "go_back"
	CmdGoToPage    CommandType = "go_to_page"
	CmdAskQuestion CommandType = "ask_question"
	CmdExplain     CommandType = "explain_selection"
	CmdSummarize   CommandType = "summarize"
	CmdAdjustSpeed CommandType = "adjust_speed"
	CmdSetSpeed    CommandType = "set_speed"
	CmdRepeat      CommandType = "repeat"
	CmdDefine      CommandType = "define"
	CmdTranslate   CommandType = "translate"
	CmdSearch      CommandType = "search"
	CmdNavigate    CommandType = "navigate_page"
	CmdZoom        CommandType = "zoom"
	CmdFreeText    CommandType = "free_text"
	CmdUnknown     CommandType = "unknown"
)

// SummarizeScope selects what a summarize command covers.
type SummarizeScope string

const (
	ScopeSelection SummarizeScope = "selection"
	ScopePage      SummarizeScope = "page"
	ScopeSection   SummarizeScope = "section"
	ScopeDocument  SummarizeScope = "document"
)

// PageDirection is the direction of relative page navigation.
type PageDirection string

const (
	PageNext     PageDirection = "next"
	PagePrevious PageDirection = "previous"
)

// ZoomDirection is the direction of a zoom command.
type ZoomDirection string

const (
	ZoomIn  ZoomDirection = "in"
	ZoomOut ZoomDirection = "out"
)

// VoiceCommand is a parsed command. Type selects the variant; only the
// fields that variant uses are populated. The flat shape keeps the wire
// encoding to the host UI a single JSON object.
type VoiceCommand struct {
	Type CommandType `json:"type"`

	Content        string         `json:"content,omitempty"`
	Color          string         `json:"color,omitempty"`
	Page           int            `json:"page,omitempty"`
	Question       string         `json:"question,omitempty"`
	Scope          SummarizeScope `json:"scope,omitempty"`
	Delta          float64        `json:"delta,omitempty"`
	Speed          float64        `json:"speed,omitempty"`
	Word           string         `json:"word,omitempty"`
	TargetLanguage string         `json:"target_language,omitempty"`
	Query          string         `json:"query,omitempty"`
	Direction      PageDirection  `json:"direction,omitempty"`
	Zoom           ZoomDirection  `json:"zoom,omitempty"`
	Text           string         `json:"text,omitempty"`
}
