package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/qualitymap/qualitymap/internal/core/domain"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// SaveAnalysis writes the result row and all classified requirements in
// one transaction, so a stored analysis is always complete.
func (r *AnalysisRepository) SaveAnalysis(ctx context.Context, res domain.AnalysisResult) error {
	categoryScores, err := json.Marshal(res.CategoryScores)
	if err != nil {
		return fmt.Errorf("marshal category scores: %w", err)
	}
	recommendations, err := json.Marshal(res.Recommendations)
	if err != nil {
		return fmt.Errorf("marshal recommendations: %w", err)
	}
	gaps, err := json.Marshal(res.GapAnalysis)
	if err != nil {
		return fmt.Errorf("marshal gap analysis: %w", err)
	}
	present, err := json.Marshal(res.CategoriesPresent)
	if err != nil {
		return fmt.Errorf("marshal categories present: %w", err)
	}
	missing, err := json.Marshal(res.CategoriesMissing)
	if err != nil {
		return fmt.Errorf("marshal categories missing: %w", err)
	}
	domainProfile, err := json.Marshal(res.Domain)
	if err != nil {
		return fmt.Errorf("marshal domain profile: %w", err)
	}
	extractionStats, err := json.Marshal(res.ExtractionStats)
	if err != nil {
		return fmt.Errorf("marshal extraction stats: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin analysis tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `
INSERT INTO analyses (
	id, upload_id, total_requirements,
	overall_score, coverage_score, balance_score, confidence_score, risk_level,
	category_scores, recommendations, gap_analysis, categories_present, categories_missing,
	domain_profile, extraction_stats, word_count, page_count, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
`,
		res.ID, res.UploadID, res.TotalRequirements,
		res.OverallScore, res.CoverageScore, res.BalanceScore, res.ConfidenceScore, string(res.RiskLevel),
		categoryScores, recommendations, gaps, present, missing,
		domainProfile, extractionStats, res.WordCount, res.PageCount, res.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}

	for i, req := range res.Requirements {
		distribution, err := json.Marshal(req.Distribution)
		if err != nil {
			return fmt.Errorf("marshal distribution: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
INSERT INTO analysis_requirements (analysis_id, position, text, category, confidence, distribution, keyword_strength, source_index)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`,
			res.ID, i, req.Text, string(req.Category), req.Confidence,
			distribution, string(req.KeywordStrength), req.SourceIndex,
		)
		if err != nil {
			return fmt.Errorf("insert analysis requirement %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit analysis tx: %w", err)
	}
	return nil
}

func (r *AnalysisRepository) GetAnalysis(ctx context.Context, id string) (domain.AnalysisResult, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, upload_id, total_requirements,
	overall_score, coverage_score, balance_score, confidence_score, risk_level,
	category_scores, recommendations, gap_analysis, categories_present, categories_missing,
	domain_profile, extraction_stats, word_count, page_count, created_at
FROM analyses
WHERE id = $1
`, id)
	return r.scanAnalysis(ctx, row, "analysis "+id)
}

func (r *AnalysisRepository) GetAnalysisByUpload(ctx context.Context, uploadID string) (domain.AnalysisResult, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, upload_id, total_requirements,
	overall_score, coverage_score, balance_score, confidence_score, risk_level,
	category_scores, recommendations, gap_analysis, categories_present, categories_missing,
	domain_profile, extraction_stats, word_count, page_count, created_at
FROM analyses
WHERE upload_id = $1
ORDER BY created_at DESC
LIMIT 1
`, uploadID)
	return r.scanAnalysis(ctx, row, "analysis for upload "+uploadID)
}

func (r *AnalysisRepository) scanAnalysis(ctx context.Context, row *sql.Row, what string) (domain.AnalysisResult, error) {
	var res domain.AnalysisResult
	var riskLevel string
	var categoryScores, recommendations, gaps, present, missing, domainProfile, extractionStats []byte

	err := row.Scan(
		&res.ID, &res.UploadID, &res.TotalRequirements,
		&res.OverallScore, &res.CoverageScore, &res.BalanceScore, &res.ConfidenceScore, &riskLevel,
		&categoryScores, &recommendations, &gaps, &present, &missing,
		&domainProfile, &extractionStats, &res.WordCount, &res.PageCount, &res.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.AnalysisResult{}, domain.WrapError(domain.ErrNotFound, "get analysis", errors.New(what))
		}
		return domain.AnalysisResult{}, fmt.Errorf("scan analysis: %w", err)
	}
	res.RiskLevel = domain.RiskLevel(riskLevel)

	if err := json.Unmarshal(categoryScores, &res.CategoryScores); err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("unmarshal category scores: %w", err)
	}
	if err := json.Unmarshal(recommendations, &res.Recommendations); err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("unmarshal recommendations: %w", err)
	}
	if err := json.Unmarshal(gaps, &res.GapAnalysis); err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("unmarshal gap analysis: %w", err)
	}
	if err := json.Unmarshal(present, &res.CategoriesPresent); err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("unmarshal categories present: %w", err)
	}
	if err := json.Unmarshal(missing, &res.CategoriesMissing); err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("unmarshal categories missing: %w", err)
	}
	if err := json.Unmarshal(domainProfile, &res.Domain); err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("unmarshal domain profile: %w", err)
	}
	if err := json.Unmarshal(extractionStats, &res.ExtractionStats); err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("unmarshal extraction stats: %w", err)
	}

	requirements, err := r.loadRequirements(ctx, res.ID)
	if err != nil {
		return domain.AnalysisResult{}, err
	}
	res.Requirements = requirements
	return res, nil
}

func (r *AnalysisRepository) loadRequirements(ctx context.Context, analysisID string) ([]domain.ClassifiedRequirement, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT text, category, confidence, distribution, keyword_strength, source_index
FROM analysis_requirements
WHERE analysis_id = $1
ORDER BY position
`, analysisID)
	if err != nil {
		return nil, fmt.Errorf("query analysis requirements: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ClassifiedRequirement, 0)
	for rows.Next() {
		var req domain.ClassifiedRequirement
		var category, strength string
		var distribution []byte
		if err := rows.Scan(&req.Text, &category, &req.Confidence, &distribution, &strength, &req.SourceIndex); err != nil {
			return nil, fmt.Errorf("scan analysis requirement: %w", err)
		}
		if err := json.Unmarshal(distribution, &req.Distribution); err != nil {
			return nil, fmt.Errorf("unmarshal distribution: %w", err)
		}
		req.Category = domain.Category(category)
		req.KeywordStrength = domain.KeywordStrength(strength)
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analysis requirements: %w", err)
	}
	return out, nil
}

func (r *AnalysisRepository) SaveQualityPlan(ctx context.Context, cov domain.QualityPlanCoverage) error {
	categoryCoverage, err := json.Marshal(cov.CategoryCoverage)
	if err != nil {
		return fmt.Errorf("marshal category coverage: %w", err)
	}
	suggestions, err := json.Marshal(cov.Suggestions)
	if err != nil {
		return fmt.Errorf("marshal suggestions: %w", err)
	}

	// Re-uploading a plan replaces the previous match for the analysis.
	_, err = r.db.ExecContext(ctx, `
INSERT INTO quality_plans (
	id, analysis_id, overall_coverage, achievable_quality, plan_strength,
	category_coverage, suggestions, summary, srs_warning, word_count, page_count, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
ON CONFLICT (analysis_id) DO UPDATE SET
	id = EXCLUDED.id,
	overall_coverage = EXCLUDED.overall_coverage,
	achievable_quality = EXCLUDED.achievable_quality,
	plan_strength = EXCLUDED.plan_strength,
	category_coverage = EXCLUDED.category_coverage,
	suggestions = EXCLUDED.suggestions,
	summary = EXCLUDED.summary,
	srs_warning = EXCLUDED.srs_warning,
	word_count = EXCLUDED.word_count,
	page_count = EXCLUDED.page_count,
	created_at = EXCLUDED.created_at
`,
		cov.ID, cov.AnalysisID, cov.OverallCoverage, cov.AchievableQuality, string(cov.PlanStrength),
		categoryCoverage, suggestions, cov.Summary, cov.SRSWarning, cov.WordCount, cov.PageCount, cov.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert quality plan: %w", err)
	}
	return nil
}

func (r *AnalysisRepository) GetQualityPlanByAnalysis(ctx context.Context, analysisID string) (domain.QualityPlanCoverage, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, analysis_id, overall_coverage, achievable_quality, plan_strength,
	category_coverage, suggestions, summary, srs_warning, word_count, page_count, created_at
FROM quality_plans
WHERE analysis_id = $1
`, analysisID)

	var cov domain.QualityPlanCoverage
	var strength string
	var categoryCoverage, suggestions []byte
	err := row.Scan(
		&cov.ID, &cov.AnalysisID, &cov.OverallCoverage, &cov.AchievableQuality, &strength,
		&categoryCoverage, &suggestions, &cov.Summary, &cov.SRSWarning, &cov.WordCount, &cov.PageCount, &cov.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.QualityPlanCoverage{}, domain.WrapError(domain.ErrNotFound, "get quality plan", fmt.Errorf("plan for analysis %s", analysisID))
		}
		return domain.QualityPlanCoverage{}, fmt.Errorf("scan quality plan: %w", err)
	}
	cov.PlanStrength = domain.PlanStrength(strength)
	if err := json.Unmarshal(categoryCoverage, &cov.CategoryCoverage); err != nil {
		return domain.QualityPlanCoverage{}, fmt.Errorf("unmarshal category coverage: %w", err)
	}
	if err := json.Unmarshal(suggestions, &cov.Suggestions); err != nil {
		return domain.QualityPlanCoverage{}, fmt.Errorf("unmarshal suggestions: %w", err)
	}
	return cov, nil
}
