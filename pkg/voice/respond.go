package voice

import (
	"fmt"

	"github.com/Neroli1108/intellidoc-reader/pkg/adapters/tts"
	"github.com/Neroli1108/intellidoc-reader/pkg/commands"
	"github.com/Neroli1108/intellidoc-reader/pkg/speech"
)

// Respond maps a parsed command to the response the UI renders and the
// action it executes. currentPos anchors position-bearing actions; when nil
// the zero position is used and the host resolves it against its own
// cursor. Speed commands mutate the live configuration.
func (m *Manager) Respond(cmd commands.VoiceCommand, currentPos *speech.ReadingPosition) VoiceResponse {
	var pos speech.ReadingPosition
	if currentPos != nil {
		pos = *currentPos
	}

	switch cmd.Type {
	case commands.CmdNoteDown:
		return VoiceResponse{
			Text:        fmt.Sprintf("Added note: %s", cmd.Content),
			ShouldSpeak: true,
			Action: &VoiceAction{
				Type:     ActionAddAnnotation,
				Position: pos,
				Content:  cmd.Content,
				Color:    "yellow",
			},
		}

	case commands.CmdHighlight:
		color := cmd.Color
		if color == "" {
			color = "yellow"
		}
		return VoiceResponse{
			Text:        "Highlighted",
			ShouldSpeak: false,
			Action: &VoiceAction{
				Type:     ActionAddHighlight,
				Position: pos,
				Color:    color,
			},
		}

	case commands.CmdStartRead:
		return VoiceResponse{
			Text:        "Starting to read",
			ShouldSpeak: false,
			Action:      &VoiceAction{Type: ActionStartReading, Position: pos},
		}

	case commands.CmdStopRead:
		return VoiceResponse{
			Text:        "Stopped reading",
			ShouldSpeak: false,
			Action:      &VoiceAction{Type: ActionStopReading},
		}

	case commands.CmdAdjustSpeed, commands.CmdSetSpeed:
		var speed float64
		if cmd.Type == commands.CmdSetSpeed {
			speed = cmd.Speed
		} else {
			m.cfgMu.RLock()
			speed = m.cfg.ReadingSpeed + cmd.Delta
			m.cfgMu.RUnlock()
		}
		speed = tts.ClampRate(speed)

		m.cfgMu.Lock()
		m.cfg.ReadingSpeed = speed
		m.cfgMu.Unlock()

		m.mu.Lock()
		backend := m.ttsBackend
		m.mu.Unlock()
		if backend != nil {
			backend.SetRate(speed)
		}

		return VoiceResponse{
			Text:        fmt.Sprintf("Speed set to %.1fx", speed),
			ShouldSpeak: true,
			Action:      &VoiceAction{Type: ActionAdjustSpeed, Speed: speed},
		}

	case commands.CmdAskQuestion:
		return VoiceResponse{
			Text:        fmt.Sprintf("Processing question: %s", cmd.Question),
			ShouldSpeak: false,
		}

	case commands.CmdExplain:
		return VoiceResponse{
			Text:        "Explaining selection...",
			ShouldSpeak: false,
		}

	case commands.CmdSummarize:
		return VoiceResponse{
			Text:        fmt.Sprintf("Summarizing %s...", cmd.Scope),
			ShouldSpeak: false,
		}

	case commands.CmdGoToPage:
		target := pos
		target.Page = cmd.Page
		return VoiceResponse{
			Text:        fmt.Sprintf("Going to page %d", cmd.Page),
			ShouldSpeak: true,
			Action:      &VoiceAction{Type: ActionScrollTo, Position: target},
		}

	case commands.CmdNavigate:
		target := pos
		if cmd.Direction == commands.PageNext {
			target.Page = pos.Page + 1
		} else if pos.Page > 1 {
			target.Page = pos.Page - 1
		} else {
			target.Page = 1
		}
		return VoiceResponse{
			Text:        fmt.Sprintf("Page %d", target.Page),
			ShouldSpeak: false,
			Action:      &VoiceAction{Type: ActionScrollTo, Position: target},
		}

	case commands.CmdRepeat:
		return VoiceResponse{
			Text:        "Repeating...",
			ShouldSpeak: false,
			Action:      &VoiceAction{Type: ActionStartReading, Position: pos},
		}

	case commands.CmdFreeText:
		return VoiceResponse{
			Text:        cmd.Text,
			ShouldSpeak: false,
		}

	default:
		return VoiceResponse{
			Text:        "Command not recognized",
			ShouldSpeak: true,
		}
	}
}
