// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-matcher/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to width runes
func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}

// PrintProgress outputs one pipeline progress line
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintProgress(step string, progress int, message string) {
	fmt.Fprintf(p.out, "[%3d%%] %-18s %s\n", progress, step, message)
}

// PrintRequirements outputs a human-readable summary of the extracted requirements.
func (p *Printer) PrintRequirements(rs *types.RequirementSet) {
	if rs == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Company:  %s\n", rs.Company))
	sb.WriteString(fmt.Sprintf("Role:     %s\n", rs.Title))
	if rs.Context.Seniority != "" {
		sb.WriteString(fmt.Sprintf("Level:    %s\n", rs.Context.Seniority))
	}
	sb.WriteString("\n")

	writeRequirements(&sb, "Required:", rs.Required, maxItemsToShow)
	writeRequirements(&sb, "Preferred:", rs.Preferred, 3)

	if len(rs.Keywords) > 0 {
		sb.WriteString(fmt.Sprintf("Keywords: %s\n", strings.Join(rs.Keywords, ", ")))
	}

	p.printBox("JOB REQUIREMENTS", strings.TrimSuffix(sb.String(), "\n"))
}

func writeRequirements(sb *strings.Builder, heading string, reqs []types.Requirement, limit int) {
	if len(reqs) == 0 {
		return
	}
	sb.WriteString(heading + "\n")
	count := min(len(reqs), limit)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s (%s, %s)\n", reqs[i].Text, reqs[i].Type, reqs[i].Importance))
	}
	if len(reqs) > limit {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(reqs)-limit))
	}
	sb.WriteString("\n")
}

// PrintMatches outputs the match score with the strongest matches and the gaps.
func (p *Printer) PrintMatches(result types.MatchResult, score int) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Match score: %d/100\n", score))
	sb.WriteString(fmt.Sprintf("Matched: %d   Missing: %d\n", len(result.Matched), len(result.Missing)))
	if result.HasDomainMismatch {
		sb.WriteString("Domain mismatch: résumé and job are in different fields\n")
	}

	if len(result.Matched) > 0 {
		sb.WriteString("\nMatched:\n")
		count := min(len(result.Matched), maxItemsToShow)
		for i := 0; i < count; i++ {
			rec := result.Matched[i]
			sb.WriteString(fmt.Sprintf("  ✓ %s [%d, %s]\n", rec.Requirement.Text, rec.Score, rec.MatchType))
			sb.WriteString(fmt.Sprintf("      %s\n", rec.Evidence.Describe()))
		}
		if len(result.Matched) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(result.Matched)-maxItemsToShow))
		}
	}

	if len(result.Missing) > 0 {
		sb.WriteString("\nMissing:\n")
		count := min(len(result.Missing), maxItemsToShow)
		for i := 0; i < count; i++ {
			rec := result.Missing[i]
			sb.WriteString(fmt.Sprintf("  ✗ %s (%s)\n", rec.Requirement.Text, rec.Requirement.Importance))
		}
		if len(result.Missing) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(result.Missing)-maxItemsToShow))
		}
	}

	p.printBox("MATCH RESULTS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDetection outputs the authorship check verdict
func (p *Printer) PrintDetection(info *types.DetectionInfo) {
	if info == nil {
		return
	}

	status := "✓ Reads as human-written"
	if !info.IsHumanPassing {
		status = "✗ Likely flagged as machine-written"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Score: %d/100\n", info.Score))
	sb.WriteString(status + "\n")
	if info.Regenerated {
		sb.WriteString("Cover letter was regenerated once\n")
	}
	if info.Fallback {
		sb.WriteString("Detector unavailable; result is a default\n")
	}
	if info.Feedback != "" {
		sb.WriteString("\n")
		sb.WriteString(wrap(info.Feedback, boxWidth-4))
	}

	p.printBox("AUTHORSHIP CHECK", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintOutcome outputs a one-box summary of a tailoring run
func (p *Printer) PrintOutcome(o *types.TailoringOutcome) {
	if o == nil {
		return
	}

	mode := "full"
	if o.Quick {
		mode = "quick"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("ID:          %s\n", o.ID))
	sb.WriteString(fmt.Sprintf("Mode:        %s\n", mode))
	sb.WriteString(fmt.Sprintf("Match score: %d/100\n", o.MatchScore))
	sb.WriteString(fmt.Sprintf("Matched:     %d\n", len(o.MatchedItems)))
	sb.WriteString(fmt.Sprintf("Missing:     %d\n", len(o.MissingItems)))
	sb.WriteString(fmt.Sprintf("Time:        %dms\n", o.ProcessingTimeMs))

	p.printBox("TAILORING COMPLETE", strings.TrimSuffix(sb.String(), "\n"))
}

// wrap breaks text into lines of at most width runes on word boundaries
func wrap(text string, width int) string {
	var sb strings.Builder
	lineLen := 0
	for _, word := range strings.Fields(text) {
		n := len([]rune(word))
		if lineLen > 0 && lineLen+1+n > width {
			sb.WriteString("\n")
			lineLen = 0
		}
		if lineLen > 0 {
			sb.WriteString(" ")
			lineLen++
		}
		sb.WriteString(word)
		lineLen += n
	}
	return sb.String()
}
