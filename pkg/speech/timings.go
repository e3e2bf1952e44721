package speech

import "strings"

// EstimateWordTimings derives word timings from text alone, for backends
// with no native alignment. Speaking rate is modeled as ~150 words per
// minute at 1.0x (2.5 words/second), with per-word duration scaled by word
// length relative to a 5-character average and floored at half a word slot.
// Timings are concatenated with no gaps, so StartMS is non-decreasing and
// the sequence length equals the word count of text.
func EstimateWordTimings(text string, rate float64) []WordTiming {
	words := strings.Fields(text)
	timings := make([]WordTiming, 0, len(words))

	if rate <= 0 {
		rate = 1.0
	}
	wordsPerSecond := 2.5 * rate
	msPerWord := 1000.0 / wordsPerSecond

	var currentMS int64
	for _, word := range words {
		scale := float64(len(word)) / 5.0
		if scale < 0.5 {
			scale = 0.5
		}
		duration := int64(msPerWord * scale)

		timings = append(timings, WordTiming{
			Word:       word,
			StartMS:    currentMS,
			EndMS:      currentMS + duration,
			Confidence: 1.0,
		})
		currentMS += duration
	}

	return timings
}
