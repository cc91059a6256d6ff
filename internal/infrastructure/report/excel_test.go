package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/qualitymap/qualitymap/internal/core/domain"
)

func TestExportAnalysisWorkbook(t *testing.T) {
	res := domain.AnalysisResult{
		ID:                "a-1",
		UploadID:          "u-1",
		TotalRequirements: 1,
		OverallScore:      42.5,
		RiskLevel:         domain.RiskHigh,
		CategoryScores: map[domain.Category]domain.CategoryScore{
			domain.CategorySecurity: {Category: domain.CategorySecurity, Count: 1, Percentage: 100, Score: 100, MinRecommended: 3},
		},
		Requirements: []domain.ClassifiedRequirement{
			{Text: "The system shall encrypt data.", Category: domain.CategorySecurity, Confidence: 90, KeywordStrength: domain.StrengthStrong},
		},
		GapAnalysis: []domain.Gap{
			{Category: domain.CategoryFunctionality, GapType: domain.GapMissing, MinRequired: 5, Shortage: 5},
		},
		Recommendations: []domain.Recommendation{
			{Category: domain.CategoryFunctionality, Priority: domain.PriorityHigh, Message: "Add functional requirements."},
		},
		Domain:    domain.DomainProfile{Name: "General", Source: domain.DomainSourceFallback},
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	raw, err := NewExcelExporter().ExportAnalysis(res)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(raw) == 0 {
		t.Fatalf("empty workbook")
	}

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	for _, sheet := range []string{"Summary", "Categories", "Requirements", "Gaps"} {
		if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
			t.Errorf("sheet %s missing (idx=%d, err=%v)", sheet, idx, err)
		}
	}

	got, err := f.GetCellValue("Requirements", "B2")
	if err != nil {
		t.Fatalf("read requirement cell: %v", err)
	}
	if got != "The system shall encrypt data." {
		t.Errorf("requirement cell = %q", got)
	}
}
