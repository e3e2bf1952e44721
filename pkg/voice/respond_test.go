package voice

import (
	"context"
	"testing"

	"github.com/Neroli1108/intellidoc-reader/pkg/commands"
	"github.com/Neroli1108/intellidoc-reader/pkg/speech"
)

func TestRespondNoteDown(t *testing.T) {
	m := NewManager(mockConfig())
	pos := speech.ReadingPosition{DocumentID: "doc1", Page: 4}

	resp := m.Respond(commands.VoiceCommand{Type: commands.CmdNoteDown, Content: "check this"}, &pos)
	if resp.Text != "Added note: check this" {
		t.Fatalf("unexpected text %q", resp.Text)
	}
	if !resp.ShouldSpeak {
		t.Fatal("note confirmation should be spoken")
	}
	if resp.Action == nil || resp.Action.Type != ActionAddAnnotation {
		t.Fatalf("expected add_annotation action, got %+v", resp.Action)
	}
	if resp.Action.Color != "yellow" || resp.Action.Position.Page != 4 {
		t.Fatalf("unexpected action %+v", resp.Action)
	}
}

func TestRespondHighlightDefaultsYellow(t *testing.T) {
	m := NewManager(mockConfig())

	resp := m.Respond(commands.VoiceCommand{Type: commands.CmdHighlight}, nil)
	if resp.ShouldSpeak {
		t.Fatal("highlight should be silent")
	}
	if resp.Action == nil || resp.Action.Color != "yellow" {
		t.Fatalf("expected yellow default, got %+v", resp.Action)
	}

	resp = m.Respond(commands.VoiceCommand{Type: commands.CmdHighlight, Color: "green"}, nil)
	if resp.Action.Color != "green" {
		t.Fatalf("expected green, got %q", resp.Action.Color)
	}
}

func TestRespondSpeedMutatesConfig(t *testing.T) {
	m := NewManager(mockConfig())
	if err := m.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	resp := m.Respond(commands.VoiceCommand{Type: commands.CmdSetSpeed, Speed: 1.5}, nil)
	if resp.Text != "Speed set to 1.5x" {
		t.Fatalf("unexpected text %q", resp.Text)
	}
	if !resp.ShouldSpeak || resp.Action == nil || resp.Action.Type != ActionAdjustSpeed {
		t.Fatalf("unexpected response %+v", resp)
	}
	if got := m.Config().ReadingSpeed; got != 1.5 {
		t.Fatalf("config not updated, reading speed %v", got)
	}

	resp = m.Respond(commands.VoiceCommand{Type: commands.CmdAdjustSpeed, Delta: 0.25}, nil)
	if got := m.Config().ReadingSpeed; got != 1.75 {
		t.Fatalf("expected 1.75 after delta, got %v", got)
	}
	if resp.Action.Speed != 1.75 {
		t.Fatalf("action speed %v", resp.Action.Speed)
	}
}

func TestRespondSpeedClamped(t *testing.T) {
	m := NewManager(mockConfig())

	m.Respond(commands.VoiceCommand{Type: commands.CmdSetSpeed, Speed: 2.9}, nil)
	resp := m.Respond(commands.VoiceCommand{Type: commands.CmdAdjustSpeed, Delta: 0.25}, nil)
	if resp.Action.Speed != 3.0 {
		t.Fatalf("expected clamp at 3.0, got %v", resp.Action.Speed)
	}

	m.Respond(commands.VoiceCommand{Type: commands.CmdSetSpeed, Speed: 0.3}, nil)
	resp = m.Respond(commands.VoiceCommand{Type: commands.CmdAdjustSpeed, Delta: -0.25}, nil)
	if resp.Action.Speed != 0.25 {
		t.Fatalf("expected clamp at 0.25, got %v", resp.Action.Speed)
	}
}

func TestRespondNavigation(t *testing.T) {
	m := NewManager(mockConfig())
	pos := speech.ReadingPosition{DocumentID: "doc1", Page: 5}

	resp := m.Respond(commands.VoiceCommand{Type: commands.CmdNavigate, Direction: commands.PageNext}, &pos)
	if resp.Text != "Page 6" || resp.Action.Position.Page != 6 {
		t.Fatalf("unexpected next-page response %+v", resp)
	}

	first := speech.ReadingPosition{Page: 1}
	resp = m.Respond(commands.VoiceCommand{Type: commands.CmdNavigate, Direction: commands.PagePrevious}, &first)
	if resp.Action.Position.Page != 1 {
		t.Fatalf("previous from page 1 must stay at 1, got %d", resp.Action.Position.Page)
	}

	resp = m.Respond(commands.VoiceCommand{Type: commands.CmdGoToPage, Page: 12}, &pos)
	if resp.Text != "Going to page 12" || !resp.ShouldSpeak {
		t.Fatalf("unexpected go-to-page response %+v", resp)
	}
	if resp.Action.Type != ActionScrollTo || resp.Action.Position.Page != 12 {
		t.Fatalf("unexpected action %+v", resp.Action)
	}
}

func TestRespondReadingControl(t *testing.T) {
	m := NewManager(mockConfig())

	resp := m.Respond(commands.VoiceCommand{Type: commands.CmdStartRead}, nil)
	if resp.Text != "Starting to read" || resp.Action.Type != ActionStartReading {
		t.Fatalf("unexpected start response %+v", resp)
	}

	resp = m.Respond(commands.VoiceCommand{Type: commands.CmdStopRead}, nil)
	if resp.Text != "Stopped reading" || resp.Action.Type != ActionStopReading {
		t.Fatalf("unexpected stop response %+v", resp)
	}

	resp = m.Respond(commands.VoiceCommand{Type: commands.CmdRepeat}, nil)
	if resp.Text != "Repeating..." || resp.Action.Type != ActionStartReading {
		t.Fatalf("unexpected repeat response %+v", resp)
	}
}

func TestRespondTextOnly(t *testing.T) {
	m := NewManager(mockConfig())

	resp := m.Respond(commands.VoiceCommand{Type: commands.CmdAskQuestion, Question: "what is entropy"}, nil)
	if resp.Text != "Processing question: what is entropy" || resp.Action != nil {
		t.Fatalf("unexpected question response %+v", resp)
	}

	resp = m.Respond(commands.VoiceCommand{Type: commands.CmdSummarize, Scope: commands.ScopePage}, nil)
	if resp.Text != "Summarizing page..." {
		t.Fatalf("unexpected summarize response %q", resp.Text)
	}

	resp = m.Respond(commands.VoiceCommand{Type: commands.CmdFreeText, Text: "hello there"}, nil)
	if resp.Text != "hello there" || resp.ShouldSpeak {
		t.Fatalf("free text must echo silently, got %+v", resp)
	}
}

func TestRespondUnrecognized(t *testing.T) {
	m := NewManager(mockConfig())

	for _, cmdType := range []commands.CommandType{commands.CmdDefine, commands.CmdTranslate, commands.CmdSearch, commands.CmdZoom, commands.CmdSkipSection, commands.CmdGoBack, commands.CmdUnknown} {
		resp := m.Respond(commands.VoiceCommand{Type: cmdType}, nil)
		if resp.Text != "Command not recognized" || !resp.ShouldSpeak || resp.Action != nil {
			t.Fatalf("%s: unexpected response %+v", cmdType, resp)
		}
	}
}
