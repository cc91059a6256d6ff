package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/qualitymap/qualitymap/internal/core/domain"
)

func newAnalysisRepoWithMock(t *testing.T) (*AnalysisRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &AnalysisRepository{db: db}, mock, func() { _ = db.Close() }
}

func sampleResult() domain.AnalysisResult {
	return domain.AnalysisResult{
		ID:                "a-1",
		UploadID:          "u-1",
		TotalRequirements: 2,
		OverallScore:      55.5,
		CoverageScore:     28.6,
		BalanceScore:      70,
		ConfidenceScore:   80,
		RiskLevel:         domain.RiskHigh,
		CategoryScores:    map[domain.Category]domain.CategoryScore{},
		Requirements: []domain.ClassifiedRequirement{
			{Text: "The system shall encrypt data.", Category: domain.CategorySecurity, Confidence: 90,
				Distribution: map[domain.Category]float64{domain.CategorySecurity: 90}, KeywordStrength: domain.StrengthStrong},
			{Text: "The system must respond quickly.", Category: domain.CategoryEfficiency, Confidence: 70,
				Distribution: map[domain.Category]float64{domain.CategoryEfficiency: 70}, KeywordStrength: domain.StrengthStrong, SourceIndex: 1},
		},
		CreatedAt: time.Now().UTC(),
	}
}

func TestSaveAnalysisCommitsResultAndRequirements(t *testing.T) {
	repo, mock, done := newAnalysisRepoWithMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO analyses").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO analysis_requirements").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO analysis_requirements").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.SaveAnalysis(context.Background(), sampleResult()); err != nil {
		t.Fatalf("save analysis: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSaveAnalysisRollsBackOnRequirementFailure(t *testing.T) {
	repo, mock, done := newAnalysisRepoWithMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO analyses").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO analysis_requirements").
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	if err := repo.SaveAnalysis(context.Background(), sampleResult()); err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetAnalysisReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newAnalysisRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, upload_id, total_requirements").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetAnalysis(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetQualityPlanReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newAnalysisRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, analysis_id, overall_coverage").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetQualityPlanByAnalysis(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
