package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// MimeKind identifies the upload formats the extractor understands.
type MimeKind string

const (
	MimePDF  MimeKind = "pdf"
	MimeDOCX MimeKind = "docx"
)

// MimeKindForFilename maps a filename extension to a supported kind.
// The second return is false for anything other than .pdf/.docx.
func MimeKindForFilename(name string) (MimeKind, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return MimePDF, true
	case ".docx":
		return MimeDOCX, true
	}
	return "", false
}

type UploadStatus string

const (
	UploadStatusUploaded   UploadStatus = "uploaded"
	UploadStatusProcessing UploadStatus = "processing"
	UploadStatusCompleted  UploadStatus = "completed"
	UploadStatusFailed     UploadStatus = "failed"
)

// Upload is the stored source document plus its analysis lifecycle state.
type Upload struct {
	ID          string       `json:"id"`
	Filename    string       `json:"filename"`
	MimeKind    MimeKind     `json:"mime_kind"`
	StoragePath string       `json:"storage_path"`
	SizeBytes   int64        `json:"size_bytes"`
	Status      UploadStatus `json:"status"`
	Error       string       `json:"error,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// ExtractedText is the extractor's output for one document: the
// concatenated page/paragraph text plus basic shape counters.
type ExtractedText struct {
	Text      string `json:"-"`
	WordCount int    `json:"word_count"`
	PageCount int    `json:"page_count"`
}
