package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/qualitymap/qualitymap/internal/core/domain"
	"github.com/qualitymap/qualitymap/internal/core/ports"
)

// IngestUploadUseCase stores an uploaded SRS document and, when a queue
// is configured, requests its analysis asynchronously. With a nil queue
// the caller is expected to run the analysis itself.
type IngestUploadUseCase struct {
	uploads  ports.UploadRepository
	storage  ports.ObjectStorage
	queue    ports.MessageQueue
	maxBytes int64
}

func NewIngestUploadUseCase(
	uploads ports.UploadRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
	maxBytes int64,
) *IngestUploadUseCase {
	return &IngestUploadUseCase{
		uploads:  uploads,
		storage:  storage,
		queue:    queue,
		maxBytes: maxBytes,
	}
}

func (uc *IngestUploadUseCase) Ingest(ctx context.Context, filename string, size int64, r io.Reader) (domain.Upload, error) {
	kind, ok := domain.MimeKindForFilename(filename)
	if !ok {
		return domain.Upload{}, domain.WrapError(domain.ErrValidation, "ingest upload",
			fmt.Errorf("unsupported file type %q, expected .pdf or .docx", filepath.Ext(filename)))
	}
	if size <= 0 {
		return domain.Upload{}, domain.WrapError(domain.ErrValidation, "ingest upload", errors.New("empty upload"))
	}
	if uc.maxBytes > 0 && size > uc.maxBytes {
		return domain.Upload{}, domain.WrapError(domain.ErrValidation, "ingest upload",
			fmt.Errorf("upload of %d bytes exceeds limit of %d", size, uc.maxBytes))
	}

	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))
	now := time.Now().UTC()

	written, err := uc.storage.Save(ctx, storageKey, r)
	if err != nil {
		return domain.Upload{}, fmt.Errorf("save to object storage: %w", err)
	}

	up := domain.Upload{
		ID:          id,
		Filename:    filename,
		MimeKind:    kind,
		StoragePath: storageKey,
		SizeBytes:   written,
		Status:      domain.UploadStatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.uploads.CreateUpload(ctx, up); err != nil {
		return domain.Upload{}, fmt.Errorf("create upload metadata: %w", err)
	}

	if uc.queue != nil {
		if err := uc.queue.PublishAnalysisRequested(ctx, up.ID); err != nil {
			return domain.Upload{}, fmt.Errorf("publish analysis request: %w", err)
		}
	}
	return up, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "document.bin"
	}
	return base
}
