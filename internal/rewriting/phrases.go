// Package rewriting finds phrasing that makes generated text read as machine-written
// and scores résumé bullets for the template formatter.
package rewriting

import (
	"fmt"
	"strings"

	"github.com/jonathan/resume-matcher/internal/types"
)

// StockPhrases are openers and filler words that authorship detectors and recruiters
// associate with generated cover letters
var StockPhrases = []string{
	"i am writing to express my interest",
	"i am writing to apply",
	"i am confident that",
	"i am excited to",
	"i believe i would be a great fit",
	"in today's fast-paced",
	"proven track record",
	"results-driven",
	"dynamic environment",
	"hit the ground running",
	"passionate about",
	"thrilled",
	"leverage",
	"synergy",
	"delve",
	"testament to",
	"tapestry",
	"navigate the complexities",
	"cutting-edge",
	"seamlessly",
	"unwavering",
	"esteemed",
	"furthermore",
	"moreover",
}

// maxFlaggedPhrases caps how many phrases are passed to the regeneration prompt
const maxFlaggedPhrases = 10

// FindPhrases returns the phrases that occur in text, matched case-insensitively.
// Each phrase is reported once, in the order of the phrase list, with its original casing.
func FindPhrases(text string, phrases []string) []string {
	if len(phrases) == 0 || text == "" {
		return nil
	}

	normalizedText := strings.ToLower(text)

	var found []string
	seen := make(map[string]bool)
	for _, phrase := range phrases {
		normalizedPhrase := strings.ToLower(strings.TrimSpace(phrase))
		if normalizedPhrase == "" || seen[normalizedPhrase] {
			continue
		}
		if strings.Contains(normalizedText, normalizedPhrase) {
			found = append(found, phrase)
			seen[normalizedPhrase] = true
		}
	}
	return found
}

// FindStockPhrases reports which StockPhrases appear in text
func FindStockPhrases(text string) []string {
	return FindPhrases(text, StockPhrases)
}

// FlaggedPhrases merges the sentences the detector flagged with the stock phrases
// found locally. Detector sentences come first; the result is capped.
func FlaggedPhrases(text string, info types.DetectionInfo) []string {
	var flagged []string
	seen := make(map[string]bool)
	add := func(s string) {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] || len(flagged) >= maxFlaggedPhrases {
			return
		}
		seen[key] = true
		flagged = append(flagged, s)
	}

	for _, sentence := range info.Sentences {
		add(sentence)
	}
	for _, phrase := range FindStockPhrases(text) {
		add(phrase)
	}
	return flagged
}

// FormatPhrases renders phrases for a prompt: quoted, comma-separated, or "none"
func FormatPhrases(phrases []string) string {
	if len(phrases) == 0 {
		return "none"
	}
	quoted := make([]string, len(phrases))
	for i, p := range phrases {
		quoted[i] = fmt.Sprintf("%q", p)
	}
	return strings.Join(quoted, ", ")
}

// AdjustFeedback rewrites the detector feedback after the single regeneration.
// The regenerated letter is kept either way, so the text tells the reader what to check.
func AdjustFeedback(recheck types.DetectionInfo, threshold int, regenerated string) string {
	var b strings.Builder
	if recheck.IsHumanPassing {
		fmt.Fprintf(&b, "Cover letter was rewritten to sound more natural and now scores %d (threshold %d).", recheck.Score, threshold)
	} else {
		fmt.Fprintf(&b, "Cover letter was rewritten once but still scores %d (threshold %d). Review it before sending.", recheck.Score, threshold)
	}
	if remaining := FindStockPhrases(regenerated); len(remaining) > 0 {
		fmt.Fprintf(&b, " Consider rephrasing: %s.", strings.Join(remaining, ", "))
	}
	return b.String()
}
