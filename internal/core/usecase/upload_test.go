package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/qualitymap/qualitymap/internal/core/domain"
)

type ingestRepoFake struct {
	created *domain.Upload
	err     error
}

func (f *ingestRepoFake) CreateUpload(_ context.Context, up domain.Upload) error {
	if f.err != nil {
		return f.err
	}
	copyUp := up
	f.created = &copyUp
	return nil
}

func (f *ingestRepoFake) GetUpload(context.Context, string) (domain.Upload, error) {
	return domain.Upload{}, errors.New("not implemented")
}
func (f *ingestRepoFake) UpdateUploadStatus(context.Context, string, domain.UploadStatus, string) error {
	return errors.New("not implemented")
}

type ingestStorageFake struct {
	savedKey  string
	savedBody string
	err       error
}

func (f *ingestStorageFake) Save(_ context.Context, key string, data io.Reader) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return 0, err
	}
	f.savedKey = key
	f.savedBody = string(raw)
	return int64(len(raw)), nil
}

func (f *ingestStorageFake) Open(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("")), nil
}

type queueFake struct {
	published []string
	err       error
}

func (f *queueFake) PublishAnalysisRequested(_ context.Context, uploadID string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, uploadID)
	return nil
}

func (f *queueFake) SubscribeAnalysisRequested(context.Context, func(context.Context, string) error) error {
	return errors.New("not implemented")
}
func (f *queueFake) Close() {}

func TestIngestStoresAndPublishes(t *testing.T) {
	repo := &ingestRepoFake{}
	storage := &ingestStorageFake{}
	queue := &queueFake{}
	uc := NewIngestUploadUseCase(repo, storage, queue, 1<<20)

	body := bytes.NewReader([]byte("%PDF-1.4 fake"))
	up, err := uc.Ingest(context.Background(), "My Spec (v2).pdf", int64(body.Len()), body)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}

	if up.MimeKind != domain.MimePDF || up.Status != domain.UploadStatusUploaded {
		t.Errorf("upload = %+v", up)
	}
	if repo.created == nil || repo.created.ID != up.ID {
		t.Errorf("metadata not persisted")
	}
	if storage.savedKey == "" || strings.ContainsAny(storage.savedKey, "() ") {
		t.Errorf("storage key not sanitized: %q", storage.savedKey)
	}
	if len(queue.published) != 1 || queue.published[0] != up.ID {
		t.Errorf("published = %v, want [%s]", queue.published, up.ID)
	}
	if up.SizeBytes != int64(len("%PDF-1.4 fake")) {
		t.Errorf("SizeBytes = %d", up.SizeBytes)
	}
}

func TestIngestWithoutQueue(t *testing.T) {
	repo := &ingestRepoFake{}
	storage := &ingestStorageFake{}
	uc := NewIngestUploadUseCase(repo, storage, nil, 1<<20)

	if _, err := uc.Ingest(context.Background(), "spec.docx", 4, strings.NewReader("data")); err != nil {
		t.Fatalf("ingest without queue: %v", err)
	}
}

func TestIngestRejectsUnsupportedExtension(t *testing.T) {
	uc := NewIngestUploadUseCase(&ingestRepoFake{}, &ingestStorageFake{}, nil, 1<<20)

	_, err := uc.Ingest(context.Background(), "notes.txt", 4, strings.NewReader("data"))
	if !domain.IsKind(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestIngestRejectsOversizedUpload(t *testing.T) {
	uc := NewIngestUploadUseCase(&ingestRepoFake{}, &ingestStorageFake{}, nil, 10)

	_, err := uc.Ingest(context.Background(), "spec.pdf", 11, strings.NewReader("12345678901"))
	if !domain.IsKind(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
