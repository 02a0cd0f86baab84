// Package ingestion reads job descriptions and résumés from files and URLs and
// normalizes their text.
package ingestion

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var (
	innerSpaceRe  = regexp.MustCompile(`[ \t\f\v\x{00a0}]+`)
	blankLinesRe  = regexp.MustCompile(`\n{3,}`)
	bulletGlyphRe = regexp.MustCompile(`^[•·▪◦‣●]\s*`)
)

// CleanText normalizes line endings, trims lines, collapses runs of spaces,
// rewrites bullet glyphs to "- ", and keeps at most one blank line in a row.
// Output is deterministic for a given input.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}

	result := blankLinesRe.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine cleans a single line while preserving headings and bullets
func cleanLine(line string) string {
	line = strings.TrimSpace(innerSpaceRe.ReplaceAllString(line, " "))
	if line == "" {
		return ""
	}
	if bulletGlyphRe.MatchString(line) {
		return "- " + bulletGlyphRe.ReplaceAllString(line, "")
	}
	return line
}

// IngestFromFile reads a text file, cleans it, and returns cleaned text with metadata
func IngestFromFile(path string) (string, *Metadata, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("file not found: %w", err)
		}
		return "", nil, fmt.Errorf("failed to read file: %w", err)
	}

	cleanedText := CleanText(string(content))
	if cleanedText == "" {
		return "", nil, fmt.Errorf("file %s is empty", path)
	}
	metadata := NewMetadata(cleanedText, SourceFile)
	metadata.Path = path

	return cleanedText, metadata, nil
}
