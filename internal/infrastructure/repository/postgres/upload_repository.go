package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/qualitymap/qualitymap/internal/core/domain"
)

type UploadRepository struct {
	db *sql.DB
}

func NewUploadRepository(db *sql.DB) *UploadRepository {
	return &UploadRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *UploadRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083001)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS uploads (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	mime_kind TEXT NOT NULL,
	storage_path TEXT NOT NULL,
	size_bytes BIGINT NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	error_message TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_uploads_status ON uploads(status);
CREATE INDEX IF NOT EXISTS idx_uploads_created_at ON uploads(created_at DESC);

CREATE TABLE IF NOT EXISTS analyses (
	id TEXT PRIMARY KEY,
	upload_id TEXT NOT NULL REFERENCES uploads(id),
	total_requirements INTEGER NOT NULL,
	overall_score DOUBLE PRECISION NOT NULL,
	coverage_score DOUBLE PRECISION NOT NULL,
	balance_score DOUBLE PRECISION NOT NULL,
	confidence_score DOUBLE PRECISION NOT NULL,
	risk_level TEXT NOT NULL,
	category_scores JSONB NOT NULL,
	recommendations JSONB NOT NULL DEFAULT '[]'::jsonb,
	gap_analysis JSONB NOT NULL DEFAULT '[]'::jsonb,
	categories_present JSONB NOT NULL DEFAULT '[]'::jsonb,
	categories_missing JSONB NOT NULL DEFAULT '[]'::jsonb,
	domain_profile JSONB NOT NULL DEFAULT '{}'::jsonb,
	extraction_stats JSONB NOT NULL DEFAULT '{}'::jsonb,
	word_count INTEGER NOT NULL DEFAULT 0,
	page_count INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_analyses_upload_id ON analyses(upload_id);

CREATE TABLE IF NOT EXISTS analysis_requirements (
	analysis_id TEXT NOT NULL REFERENCES analyses(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	text TEXT NOT NULL,
	category TEXT NOT NULL,
	confidence DOUBLE PRECISION NOT NULL,
	distribution JSONB NOT NULL,
	keyword_strength TEXT NOT NULL,
	source_index INTEGER NOT NULL,
	PRIMARY KEY (analysis_id, position)
);

CREATE TABLE IF NOT EXISTS quality_plans (
	id TEXT PRIMARY KEY,
	analysis_id TEXT NOT NULL UNIQUE REFERENCES analyses(id) ON DELETE CASCADE,
	overall_coverage DOUBLE PRECISION NOT NULL,
	achievable_quality DOUBLE PRECISION NOT NULL,
	plan_strength TEXT NOT NULL,
	category_coverage JSONB NOT NULL,
	suggestions JSONB NOT NULL DEFAULT '[]'::jsonb,
	summary TEXT NOT NULL DEFAULT '',
	srs_warning TEXT NOT NULL DEFAULT '',
	word_count INTEGER NOT NULL DEFAULT 0,
	page_count INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL
);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *UploadRepository) CreateUpload(ctx context.Context, up domain.Upload) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO uploads (id, filename, mime_kind, storage_path, size_bytes, status, error_message, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`,
		up.ID, up.Filename, string(up.MimeKind), up.StoragePath, up.SizeBytes,
		string(up.Status), up.Error, up.CreatedAt, up.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert upload: %w", err)
	}
	return nil
}

func (r *UploadRepository) GetUpload(ctx context.Context, id string) (domain.Upload, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, filename, mime_kind, storage_path, size_bytes, status, error_message, created_at, updated_at
FROM uploads
WHERE id = $1
`, id)

	var up domain.Upload
	var mimeKind, status string
	err := row.Scan(
		&up.ID, &up.Filename, &mimeKind, &up.StoragePath, &up.SizeBytes,
		&status, &up.Error, &up.CreatedAt, &up.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Upload{}, domain.WrapError(domain.ErrNotFound, "get upload", fmt.Errorf("upload %s", id))
		}
		return domain.Upload{}, fmt.Errorf("scan upload: %w", err)
	}
	up.MimeKind = domain.MimeKind(mimeKind)
	up.Status = domain.UploadStatus(status)
	return up, nil
}

func (r *UploadRepository) UpdateUploadStatus(ctx context.Context, id string, status domain.UploadStatus, errMsg string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE uploads
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(status), errMsg, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update upload status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update upload status rows affected: %w", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrNotFound, "update upload status", fmt.Errorf("upload %s", id))
	}
	return nil
}
