// Package report renders analysis results into downloadable XLSX
// workbooks.
package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/qualitymap/qualitymap/internal/core/domain"
)

type ExcelExporter struct{}

func NewExcelExporter() *ExcelExporter {
	return &ExcelExporter{}
}

// ExportAnalysis builds a workbook with a summary sheet, the
// per-category breakdown, every classified requirement and the gap
// recommendations.
func (e *ExcelExporter) ExportAnalysis(res domain.AnalysisResult) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const summary = "Summary"
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return nil, fmt.Errorf("rename summary sheet: %w", err)
	}

	summaryRows := [][]any{
		{"Analysis ID", res.ID},
		{"Upload ID", res.UploadID},
		{"Created", res.CreatedAt.Format("2006-01-02 15:04:05 MST")},
		{"Total requirements", res.TotalRequirements},
		{"Overall score", res.OverallScore},
		{"Coverage score", res.CoverageScore},
		{"Balance score", res.BalanceScore},
		{"Confidence score", res.ConfidenceScore},
		{"Risk level", string(res.RiskLevel)},
		{"Detected domain", res.Domain.Name},
		{"Domain source", res.Domain.Source},
		{"Word count", res.WordCount},
		{"Page count", res.PageCount},
	}
	for i, row := range summaryRows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, fmt.Errorf("summary cell: %w", err)
		}
		if err := f.SetSheetRow(summary, cell, &row); err != nil {
			return nil, fmt.Errorf("write summary row: %w", err)
		}
	}

	if err := writeCategorySheet(f, res); err != nil {
		return nil, err
	}
	if err := writeRequirementSheet(f, res); err != nil {
		return nil, err
	}
	if err := writeGapSheet(f, res); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeCategorySheet(f *excelize.File, res domain.AnalysisResult) error {
	const sheet = "Categories"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create category sheet: %w", err)
	}

	header := []any{"Category", "Count", "Percentage", "Score", "Min recommended", "Meets minimum"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write category header: %w", err)
	}
	for i, cat := range domain.Categories() {
		cs := res.CategoryScores[cat]
		row := []any{string(cat), cs.Count, cs.Percentage, cs.Score, cs.MinRecommended, cs.MeetsMinimum}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return fmt.Errorf("write category row: %w", err)
		}
	}
	return nil
}

func writeRequirementSheet(f *excelize.File, res domain.AnalysisResult) error {
	const sheet = "Requirements"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create requirement sheet: %w", err)
	}

	header := []any{"#", "Requirement", "Category", "Confidence", "Keyword strength"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write requirement header: %w", err)
	}
	for i, req := range res.Requirements {
		row := []any{i + 1, req.Text, string(req.Category), req.Confidence, string(req.KeywordStrength)}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return fmt.Errorf("write requirement row: %w", err)
		}
	}
	return nil
}

func writeGapSheet(f *excelize.File, res domain.AnalysisResult) error {
	const sheet = "Gaps"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create gap sheet: %w", err)
	}

	header := []any{"Category", "Gap type", "Count", "Min required", "Shortage", "Priority", "Recommendation"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write gap header: %w", err)
	}

	recommendations := make(map[domain.Category]domain.Recommendation, len(res.Recommendations))
	for _, rec := range res.Recommendations {
		recommendations[rec.Category] = rec
	}
	for i, gap := range res.GapAnalysis {
		rec := recommendations[gap.Category]
		row := []any{string(gap.Category), string(gap.GapType), gap.Count, gap.MinRequired, gap.Shortage, string(rec.Priority), rec.Message}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return fmt.Errorf("write gap row: %w", err)
		}
	}
	return nil
}
