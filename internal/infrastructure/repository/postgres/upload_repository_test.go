package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/qualitymap/qualitymap/internal/core/domain"
)

func newUploadRepoWithMock(t *testing.T) (*UploadRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &UploadRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestGetUploadReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newUploadRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, filename, mime_kind, storage_path").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetUpload(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateUploadStatusReturnsDomainNotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mock, done := newUploadRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE uploads").
		WithArgs("missing", string(domain.UploadStatusProcessing), "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateUploadStatus(context.Background(), "missing", domain.UploadStatusProcessing, "")
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
