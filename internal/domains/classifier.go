// Package domains detects the professional domains a span of text belongs to.
package domains

import (
	"sort"
	"strings"
)

const (
	// MinIndicatorHits is the number of distinct indicators needed to detect a domain
	MinIndicatorHits = 2
	// LongIndicatorLength lets a single indicator of at least this many characters qualify
	LongIndicatorLength = 18
)

// Set is a set of domain tags
type Set map[Tag]bool

// Has reports whether tag is in the set
func (s Set) Has(tag Tag) bool { return s[tag] }

// Tags returns the tags sorted alphabetically
func (s Set) Tags() []Tag {
	tags := make([]Tag, 0, len(s))
	for t := range s {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// Strings returns the sorted tags as strings
func (s Set) Strings() []string {
	tags := s.Tags()
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = string(t)
	}
	return out
}

// Detect returns the domains whose indicators appear in text
func Detect(text string) Set {
	lower := strings.ToLower(text)
	detected := make(Set)
	if strings.TrimSpace(lower) == "" {
		return detected
	}

	for tag, phrases := range indicators {
		hits := 0
		long := false
		for _, phrase := range phrases {
			if !strings.Contains(lower, phrase) {
				continue
			}
			hits++
			if len(phrase) >= LongIndicatorLength {
				long = true
			}
		}
		if hits >= MinIndicatorHits || long {
			detected[tag] = true
		}
	}
	return detected
}

// Overlap reports whether requirement domains a are compatible with résumé domains b.
// An empty a matches everything and an empty b is treated permissively.
func Overlap(a, b Set) bool {
	if len(a) == 0 || len(b) == 0 {
		return true
	}
	for tag := range a {
		if b[tag] {
			return true
		}
		for _, pair := range relatedPairs {
			if (pair[0] == tag && b[pair[1]]) || (pair[1] == tag && b[pair[0]]) {
				return true
			}
		}
	}
	return false
}

// StrictOverlap is Overlap without the related-domain widening. It decides whole-role
// mismatch, where an adjacent domain is not close enough.
func StrictOverlap(a, b Set) bool {
	if len(a) == 0 || len(b) == 0 {
		return true
	}
	for tag := range a {
		if b[tag] {
			return true
		}
	}
	return false
}
