package monitor

import (
	"regexp"
	"strings"
)

// Phrase weights for the keyword sentiment heuristic
const (
	neutralSentiment = 0.5
	positiveWeight   = 0.05
	negativeWeight   = 0.08
)

var positivePhrases = []string{"great", "interested", "yes", "sounds good", "perfect", "excellent"}

var negativePhrases = []string{"not interested", "no thanks", "busy", "not now", "remove", "unsubscribe"}

// objectionPatterns are checked in order; every occurrence of a pattern is
// reported, so a repeated objection counts each time it is raised.
var objectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)not interested`),
	regexp.MustCompile(`(?i)don't have time`),
	regexp.MustCompile(`(?i)already have`),
	regexp.MustCompile(`(?i)too expensive`),
	regexp.MustCompile(`(?i)send me information`),
	regexp.MustCompile(`(?i)call back later`),
	regexp.MustCompile(`(?i)not the right time`),
}

// SentimentScore estimates transcript sentiment from fixed phrase sets.
// Starts neutral at 0.5, adds 0.05 per positive occurrence, subtracts 0.08
// per negative occurrence, clamped to [0,1]. Case-insensitive.
func SentimentScore(transcript string) float64 {
	lower := strings.ToLower(transcript)

	score := neutralSentiment
	for _, phrase := range positivePhrases {
		score += float64(strings.Count(lower, phrase)) * positiveWeight
	}
	for _, phrase := range negativePhrases {
		score -= float64(strings.Count(lower, phrase)) * negativeWeight
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// ExtractObjections scans a transcript for known objection phrasings.
// All matches per pattern, grouped in pattern order, no deduplication.
func ExtractObjections(transcript string) []string {
	objections := make([]string, 0, len(objectionPatterns))
	for _, pattern := range objectionPatterns {
		objections = append(objections, pattern.FindAllString(transcript, -1)...)
	}
	return objections
}
