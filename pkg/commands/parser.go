package commands

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var floatPattern = regexp.MustCompile(`(\d+\.?\d*)`)

// Parser matches transcribed text against an ordered rule cascade. Rules
// are tried top to bottom and the first match wins, so specific phrasings
// must sit above the general ones ("summarize this page" is a summarize
// command, never page navigation).
type Parser struct {
	language string
}

func NewParser(language string) *Parser {
	if language == "" {
		language = "en-US"
	}
	return &Parser{language: language}
}

// Language returns the parser's configured language tag.
func (p *Parser) Language() string {
	return p.language
}

// Parse maps transcribed text to a VoiceCommand. Never fails; unmatched
// input becomes FreeText.
func (p *Parser) Parse(text string) VoiceCommand {
	text = strings.TrimSpace(text)
	lower := strings.ToLower(text)

	if content, ok := p.parseNote(lower, text); ok {
		return VoiceCommand{Type: CmdNoteDown, Content: content}
	}
	if question, ok := p.parseQuestion(lower, text); ok {
		return VoiceCommand{Type: CmdAskQuestion, Question: question}
	}
	if color, ok := p.parseHighlight(lower); ok {
		return VoiceCommand{Type: CmdHighlight, Color: color}
	}
	if cmd, ok := p.parseReading(lower); ok {
		return cmd
	}
	if cmd, ok := p.parseNavigation(lower); ok {
		return cmd
	}
	if cmd, ok := p.parseSpeed(lower); ok {
		return cmd
	}
	if cmd, ok := p.parseSummarize(lower); ok {
		return cmd
	}
	if word, ok := p.parseDefine(lower, text); ok {
		return VoiceCommand{Type: CmdDefine, Word: word}
	}
	if lang, ok := p.parseTranslate(lower); ok {
		return VoiceCommand{Type: CmdTranslate, TargetLanguage: lang}
	}
	if query, ok := p.parseSearch(lower, text); ok {
		return VoiceCommand{Type: CmdSearch, Query: query}
	}
	if cmd, ok := p.parseZoom(lower); ok {
		return cmd
	}
	if strings.HasSuffix(text, "?") {
		return VoiceCommand{Type: CmdAskQuestion, Question: text}
	}

	return VoiceCommand{Type: CmdFreeText, Text: text}
}

func (p *Parser) parseNote(lower, original string) (string, bool) {
	prefixes := []string{
		"note down",
		"note",
		"write down",
		"write",
		"add note",
		"take note",
		"remember",
		"记下",
		"メモ",
	}

	for _, prefix := range prefixes {
		if !strings.HasPrefix(lower, prefix) {
			continue
		}
		var content string
		if idx := strings.Index(original, ":"); idx >= 0 {
			content = strings.TrimSpace(original[idx+1:])
		} else {
			content = strings.TrimSpace(original[len(prefix):])
		}
		if content != "" {
			return content, true
		}
	}
	return "", false
}

func (p *Parser) parseQuestion(lower, original string) (string, bool) {
	prefixes := []string{"ask", "question", "what is", "what are", "how do", "how does", "why"}

	for _, prefix := range prefixes {
		if !strings.HasPrefix(lower, prefix) {
			continue
		}
		if idx := strings.Index(original, ":"); idx >= 0 {
			return strings.TrimSpace(original[idx+1:]), true
		}
		return original, true
	}
	return "", false
}

func (p *Parser) parseHighlight(lower string) (string, bool) {
	if !strings.Contains(lower, "highlight") {
		return "", false
	}
	colors := []string{"yellow", "green", "blue", "red", "purple", "orange", "pink"}
	for _, color := range colors {
		if strings.Contains(lower, color) {
			return color, true
		}
	}
	return "", true
}

func (p *Parser) parseReading(lower string) (VoiceCommand, bool) {
	startPhrases := []string{"read from here", "start reading", "read this", "read aloud", "read", "play"}
	stopPhrases := []string{"stop reading", "stop", "pause", "pause reading", "quiet", "silence"}
	repeatPhrases := []string{"repeat", "say again", "again", "replay"}
	skipPhrases := []string{"skip section", "skip to next", "next section", "skip"}
	backPhrases := []string{"go back", "back", "previous", "rewind"}

	for _, phrase := range startPhrases {
		if strings.HasPrefix(lower, phrase) {
			return VoiceCommand{Type: CmdStartRead}, true
		}
	}
	for _, phrase := range stopPhrases {
		if strings.HasPrefix(lower, phrase) {
			return VoiceCommand{Type: CmdStopRead}, true
		}
	}
	for _, phrase := range repeatPhrases {
		if strings.HasPrefix(lower, phrase) {
			return VoiceCommand{Type: CmdRepeat}, true
		}
	}
	for _, phrase := range skipPhrases {
		if strings.HasPrefix(lower, phrase) {
			return VoiceCommand{Type: CmdSkipSection}, true
		}
	}
	// Back phrases match exactly so "previous page" can fall through to
	// page navigation.
	for _, phrase := range backPhrases {
		if lower == phrase {
			return VoiceCommand{Type: CmdGoBack}, true
		}
	}
	if lower == "explain" || strings.HasPrefix(lower, "explain this") {
		return VoiceCommand{Type: CmdExplain}, true
	}
	return VoiceCommand{}, false
}

func (p *Parser) parseNavigation(lower string) (VoiceCommand, bool) {
	if lower == "next page" || lower == "page down" {
		return VoiceCommand{Type: CmdNavigate, Direction: PageNext}, true
	}
	if lower == "previous page" || lower == "page up" || lower == "last page" {
		return VoiceCommand{Type: CmdNavigate, Direction: PagePrevious}, true
	}
	if strings.HasPrefix(lower, "go to page") || strings.HasPrefix(lower, "page") {
		if num, ok := extractNumber(lower); ok {
			return VoiceCommand{Type: CmdGoToPage, Page: num}, true
		}
	}
	return VoiceCommand{}, false
}

func (p *Parser) parseSpeed(lower string) (VoiceCommand, bool) {
	speedUp := []string{"speed up", "faster", "increase speed", "quicker"}
	slowDown := []string{"slow down", "slower", "decrease speed", "reduce speed"}

	for _, phrase := range speedUp {
		if strings.HasPrefix(lower, phrase) {
			return VoiceCommand{Type: CmdAdjustSpeed, Delta: 0.25}, true
		}
	}
	for _, phrase := range slowDown {
		if strings.HasPrefix(lower, phrase) {
			return VoiceCommand{Type: CmdAdjustSpeed, Delta: -0.25}, true
		}
	}
	if strings.HasPrefix(lower, "set speed to") || strings.HasPrefix(lower, "speed") {
		if speed, ok := extractFloat(lower); ok && speed >= 0.25 && speed <= 3.0 {
			return VoiceCommand{Type: CmdSetSpeed, Speed: speed}, true
		}
	}
	return VoiceCommand{}, false
}

func (p *Parser) parseSummarize(lower string) (VoiceCommand, bool) {
	if !strings.Contains(lower, "summar") {
		return VoiceCommand{}, false
	}
	scope := ScopeSelection
	switch {
	case strings.Contains(lower, "document") || strings.Contains(lower, "entire"):
		scope = ScopeDocument
	case strings.Contains(lower, "section"):
		scope = ScopeSection
	case strings.Contains(lower, "page"):
		scope = ScopePage
	}
	return VoiceCommand{Type: CmdSummarize, Scope: scope}, true
}

func (p *Parser) parseDefine(lower, original string) (string, bool) {
	if !strings.HasPrefix(lower, "define") && !strings.HasPrefix(lower, "what does") {
		return "", false
	}
	fields := strings.Fields(original)
	if len(fields) == 0 {
		return "", false
	}
	word := strings.TrimFunc(fields[len(fields)-1], func(r rune) bool {
		return !isAlphanumeric(r)
	})
	if word == "" {
		return "", false
	}
	return word, true
}

func (p *Parser) parseTranslate(lower string) (string, bool) {
	if !strings.Contains(lower, "translate") {
		return "", false
	}
	languages := []struct {
		name string
		code string
	}{
		{"spanish", "es"},
		{"french", "fr"},
		{"german", "de"},
		{"chinese", "zh"},
		{"japanese", "ja"},
		{"korean", "ko"},
		{"italian", "it"},
		{"portuguese", "pt"},
		{"russian", "ru"},
		{"arabic", "ar"},
	}
	for _, lang := range languages {
		if strings.Contains(lower, lang.name) {
			return lang.code, true
		}
	}
	if idx := strings.Index(lower, " to "); idx >= 0 {
		if lang := strings.TrimSpace(lower[idx+4:]); lang != "" {
			return lang, true
		}
	}
	return "", false
}

func (p *Parser) parseSearch(lower, original string) (string, bool) {
	prefixes := []string{"search for", "search", "find", "look for"}
	for _, prefix := range prefixes {
		if !strings.HasPrefix(lower, prefix) {
			continue
		}
		if query := strings.TrimSpace(original[len(prefix):]); query != "" {
			return query, true
		}
	}
	return "", false
}

func (p *Parser) parseZoom(lower string) (VoiceCommand, bool) {
	if strings.Contains(lower, "zoom in") || lower == "bigger" || lower == "larger" {
		return VoiceCommand{Type: CmdZoom, Zoom: ZoomIn}, true
	}
	if strings.Contains(lower, "zoom out") || lower == "smaller" {
		return VoiceCommand{Type: CmdZoom, Zoom: ZoomOut}, true
	}
	return VoiceCommand{}, false
}

// extractNumber pulls a page-style number out of text: any digit run first,
// falling back to the word numbers one through ten.
func extractNumber(text string) (int, bool) {
	var digits strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() > 0 {
		if n, err := strconv.Atoi(digits.String()); err == nil {
			return n, true
		}
	}

	wordNumbers := []struct {
		word string
		num  int
	}{
		{"one", 1}, {"two", 2}, {"three", 3}, {"four", 4}, {"five", 5},
		{"six", 6}, {"seven", 7}, {"eight", 8}, {"nine", 9}, {"ten", 10},
	}
	for _, wn := range wordNumbers {
		if strings.Contains(text, wn.word) {
			return wn.num, true
		}
	}
	return 0, false
}

func extractFloat(text string) (float64, bool) {
	m := floatPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func isAlphanumeric(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
