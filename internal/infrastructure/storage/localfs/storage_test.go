package localfs

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/qualitymap/qualitymap/internal/core/domain"
)

func TestSaveAndOpenRoundTrip(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("init storage: %v", err)
	}

	content := "%PDF-1.4 fake document"
	n, err := storage.Save(context.Background(), "up-1_srs.pdf", strings.NewReader(content))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if n != int64(len(content)) {
		t.Fatalf("saved %d bytes, want %d", n, len(content))
	}

	rc, err := storage.Open(context.Background(), "up-1_srs.pdf")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()

	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != content {
		t.Fatalf("content mismatch: %q", got)
	}
}

func TestOpenMissingKeyReturnsNotFound(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("init storage: %v", err)
	}

	_, err = storage.Open(context.Background(), "absent.pdf")
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestSaveRejectsTraversalKeys(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("init storage: %v", err)
	}

	for _, key := range []string{"", "../escape", "dir/inside", `dir\inside`} {
		if _, err := storage.Save(context.Background(), key, strings.NewReader("x")); err == nil {
			t.Fatalf("expected error for key %q", key)
		}
	}
}
