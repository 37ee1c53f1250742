package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"alfredoptarigan/talent-allocator/internal/models"
)

const (
	summarySheet    = "Summary"
	candidatesSheet = "Candidates"
)

var gradeFills = map[models.Grade]string{
	models.GradeA: "C6EFCE",
	models.GradeB: "DDEBF7",
	models.GradeC: "FFEB9C",
	models.GradeD: "FFC7CE",
}

// ReportService renders position reports as spreadsheets.
type ReportService struct {
	queries *QueryService
	now     func() time.Time
}

func NewReportService(queries *QueryService) *ReportService {
	return &ReportService{queries: queries, now: time.Now}
}

// ExportPosition writes an xlsx workbook with the position summary and its ranked candidates.
func (s *ReportService) ExportPosition(ctx context.Context, positionID uint, w io.Writer) error {
	stats, err := s.queries.PositionStats(ctx, positionID)
	if err != nil {
		return err
	}

	ranked, err := s.queries.PositionCandidates(ctx, positionID, "", false, 0)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(candidatesSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	if err := s.writeSummary(f, stats); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := writeCandidates(f, ranked); err != nil {
		return fmt.Errorf("failed to create candidates sheet: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (s *ReportService) writeSummary(f *excelize.File, stats *models.PositionStats) error {
	labelStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	f.SetColWidth(summarySheet, "A", "A", 24)
	f.SetColWidth(summarySheet, "B", "B", 40)

	rows := [][2]interface{}{
		{"Position", stats.PositionName},
		{"Generated", s.now().Format(time.RFC3339)},
		{"Total Candidates", stats.Total},
		{"Qualified Candidates", stats.Qualified},
		{"Qualification Rate", fmt.Sprintf("%.1f%%", stats.QualificationRate())},
		{"Average Score", fmt.Sprintf("%.1f", stats.AverageScore)},
		{"Grade A", stats.GradeCounts[models.GradeA]},
		{"Grade B", stats.GradeCounts[models.GradeB]},
		{"Grade C", stats.GradeCounts[models.GradeC]},
		{"Grade D", stats.GradeCounts[models.GradeD]},
	}

	for i, row := range rows {
		label := fmt.Sprintf("A%d", i+1)
		f.SetCellValue(summarySheet, label, row[0])
		f.SetCellStyle(summarySheet, label, label, labelStyle)
		f.SetCellValue(summarySheet, fmt.Sprintf("B%d", i+1), row[1])
	}
	return nil
}

func writeCandidates(f *excelize.File, ranked []models.RankedCandidate) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	gradeStyles := make(map[models.Grade]int, len(gradeFills))
	for grade, color := range gradeFills {
		style, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err != nil {
			return err
		}
		gradeStyles[grade] = style
	}

	f.SetColWidth(candidatesSheet, "A", "A", 8)
	f.SetColWidth(candidatesSheet, "B", "B", 25)
	f.SetColWidth(candidatesSheet, "C", "D", 22)
	f.SetColWidth(candidatesSheet, "E", "H", 12)
	f.SetColWidth(candidatesSheet, "I", "I", 80)

	headers := []string{"Rank", "Candidate", "Email", "Phone", "Score", "Grade", "Qualified", "Primary", "Rationale"}
	for col, header := range headers {
		cell := fmt.Sprintf("%s1", string(rune('A'+col)))
		f.SetCellValue(candidatesSheet, cell, header)
		f.SetCellStyle(candidatesSheet, cell, cell, headerStyle)
	}

	for i, rc := range ranked {
		row := i + 2
		values := []interface{}{i + 1, rc.Name, rc.Email, rc.Phone, rc.Score, string(rc.Grade), yesNo(rc.IsQualified), yesNo(rc.IsPrimary), rc.Rationale}
		for col, v := range values {
			f.SetCellValue(candidatesSheet, fmt.Sprintf("%s%d", string(rune('A'+col)), row), v)
		}
		if style, ok := gradeStyles[rc.Grade]; ok {
			f.SetCellStyle(candidatesSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("I%d", row), style)
		}
	}

	return nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
