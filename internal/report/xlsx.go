// Package report exports match results as an XLSX workbook.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jonathan/resume-matcher/internal/scoring"
	"github.com/jonathan/resume-matcher/internal/types"
)

// Sheet names
const (
	SummarySheet = "Summary"
	MatchedSheet = "Matched"
	MissingSheet = "Missing"
)

// Report is the data exported to the workbook
type Report struct {
	Requirements *types.RequirementSet
	Result       types.MatchResult
	Breakdown    scoring.Breakdown
	GeneratedAt  time.Time
}

// styles holds the workbook's style IDs
type styles struct {
	title  int
	label  int
	header int
	strong int
	fair   int
	weak   int
}

var (
	cellBorder = []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	frozenHeader = &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}
)

// Build creates the workbook. The caller must close it.
func Build(r Report) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		_ = f.Close()
		return nil, err
	}
	for _, name := range []string{MatchedSheet, MissingSheet} {
		if _, err := f.NewSheet(name); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	st, err := newStyles(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	steps := []struct {
		name string
		fn   func(*excelize.File, styles, Report) error
	}{
		{SummarySheet, writeSummary},
		{MatchedSheet, writeMatched},
		{MissingSheet, writeMissing},
	}
	for _, step := range steps {
		if err := step.fn(f, st, r); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to create %s sheet: %w", strings.ToLower(step.name), err)
		}
	}
	return f, nil
}

// Write builds the workbook and writes it to w
func Write(w io.Writer, r Report) error {
	f, err := Build(r)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return f.Write(w)
}

// Save writes the workbook to path, adding the .xlsx extension when missing.
// It returns the path written.
func Save(path string, r Report) (string, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}
	path = filepath.Clean(path)

	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	if err := Write(out, r); err != nil {
		_ = out.Close()
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, out.Close()
}

func newStyles(f *excelize.File) (styles, error) {
	var st styles
	defs := []struct {
		id    *int
		style *excelize.Style
	}{
		{&st.title, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
			Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
		}},
		{&st.label, &excelize.Style{Font: &excelize.Font{Bold: true}}},
		{&st.header, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
			Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
			Border:    cellBorder,
		}},
		{&st.strong, fillStyle("C6EFCE")},
		{&st.fair, fillStyle("FFEB9C")},
		{&st.weak, fillStyle("FFC7CE")},
	}
	for _, d := range defs {
		id, err := f.NewStyle(d.style)
		if err != nil {
			return st, err
		}
		*d.id = id
	}
	return st, nil
}

func fillStyle(color string) *excelize.Style {
	return &excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
		Border:    cellBorder,
	}
}

// scoreStyle color-codes a match score
func (st styles) scoreStyle(score int) int {
	switch {
	case score >= 80:
		return st.strong
	case score >= 60:
		return st.fair
	default:
		return st.weak
	}
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func writeSummary(f *excelize.File, st styles, r Report) error {
	const sheet = SummarySheet
	if err := f.SetColWidth(sheet, "A", "A", 28); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "B", 50); err != nil {
		return err
	}

	if err := f.SetCellValue(sheet, "A1", "Résumé Match Report"); err != nil {
		return err
	}
	if err := f.MergeCell(sheet, "A1", "B1"); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "B1", st.title); err != nil {
		return err
	}

	var title, company string
	var required, preferred int
	if r.Requirements != nil {
		title, company = r.Requirements.Title, r.Requirements.Company
		required, preferred = len(r.Requirements.Required), len(r.Requirements.Preferred)
	}
	generated := r.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}

	b := r.Breakdown
	rows := []struct {
		label string
		value any
	}{
		{"Job Title:", title},
		{"Company:", company},
		{"Generated:", generated.Format("2006-01-02 15:04:05")},
		{"Match Score:", b.Final},
		{"Requirements (required/preferred):", fmt.Sprintf("%d / %d", required, preferred)},
		{"Matched:", len(r.Result.Matched)},
		{"Missing:", len(r.Result.Missing)},
		{"Base Score:", b.Base},
		{"Technical Matched:", fmt.Sprintf("%d of %d", b.TechnicalMatched, b.TechnicalTotal)},
		{"Coverage Multiplier:", b.CoverageMultiplier},
		{"Critical Penalty Applied:", yesNo(b.CriticalPenalized)},
		{"Domain Mismatch Cap Applied:", yesNo(b.MismatchCapped)},
	}

	row := 3
	for _, entry := range rows {
		if err := f.SetCellValue(sheet, cell("A", row), entry.label); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell("A", row), cell("A", row), st.label); err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell("B", row), entry.value); err != nil {
			return err
		}
		row++
	}
	return nil
}

func writeMatched(f *excelize.File, st styles, r Report) error {
	const sheet = MatchedSheet
	headers := []string{"Requirement", "Type", "Importance", "Score", "Match", "Evidence Kind", "Evidence"}
	widths := []float64{40, 14, 12, 8, 10, 14, 60}
	if err := writeHeader(f, st, sheet, headers, widths); err != nil {
		return err
	}

	for i, rec := range r.Result.Matched {
		row := i + 2
		values := []any{
			rec.Requirement.Text, string(rec.Requirement.Type), string(rec.Requirement.Importance),
			rec.Score, string(rec.MatchType), string(rec.Evidence.Kind), rec.EvidenceText,
		}
		if err := writeRow(f, sheet, row, values, st.scoreStyle(rec.Score)); err != nil {
			return err
		}
	}
	return finishTable(f, sheet, len(headers), len(r.Result.Matched))
}

func writeMissing(f *excelize.File, st styles, r Report) error {
	const sheet = MissingSheet
	headers := []string{"Requirement", "Type", "Importance", "Best Partial Evidence"}
	widths := []float64{40, 14, 12, 60}
	if err := writeHeader(f, st, sheet, headers, widths); err != nil {
		return err
	}

	for i, rec := range r.Result.Missing {
		row := i + 2
		values := []any{
			rec.Requirement.Text, string(rec.Requirement.Type), string(rec.Requirement.Importance), rec.EvidenceText,
		}
		if err := writeRow(f, sheet, row, values, st.weak); err != nil {
			return err
		}
	}
	return finishTable(f, sheet, len(headers), len(r.Result.Missing))
}

func writeHeader(f *excelize.File, st styles, sheet string, headers []string, widths []float64) error {
	for i, header := range headers {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, widths[i]); err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell(col, 1), header); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell(col, 1), cell(col, 1), st.header); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any, style int) error {
	for i, v := range values {
		name, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, name, v); err != nil {
			return err
		}
	}
	last, err := excelize.CoordinatesToCellName(len(values), row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, cell("A", row), last, style)
}

// finishTable freezes the header row and adds a filter when there is data
func finishTable(f *excelize.File, sheet string, cols, rows int) error {
	if rows > 0 {
		last, err := excelize.CoordinatesToCellName(cols, rows+1)
		if err != nil {
			return err
		}
		if err := f.AutoFilter(sheet, "A1:"+last, nil); err != nil {
			return err
		}
	}
	return f.SetPanes(sheet, frozenHeader)
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
