package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/qualitymap/qualitymap/internal/core/domain"
)

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

const sampleDocument = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>The system shall encrypt stored data.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second</w:t></w:r><w:r><w:t xml:space="preserve"> paragraph.</w:t></w:r></w:p>
    <w:p><w:r><w:br w:type="page"/><w:t>Third paragraph after a page break.</w:t></w:r></w:p>
  </w:body>
</w:document>`

func TestExtractParagraphsAndPages(t *testing.T) {
	data := buildDocx(t, sampleDocument)

	out, err := New().Extract(context.Background(), data)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.Text), "\n")
	var nonEmpty []string
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			nonEmpty = append(nonEmpty, strings.TrimSpace(l))
		}
	}
	if len(nonEmpty) != 3 {
		t.Fatalf("expected 3 paragraphs, got %d: %q", len(nonEmpty), nonEmpty)
	}
	if nonEmpty[1] != "Second paragraph." {
		t.Errorf("split runs not joined: %q", nonEmpty[1])
	}
	if out.PageCount != 2 {
		t.Errorf("PageCount = %d, want 2", out.PageCount)
	}
	if out.WordCount == 0 {
		t.Errorf("WordCount should be positive")
	}
}

func TestExtractNotAZip(t *testing.T) {
	_, err := New().Extract(context.Background(), []byte("this is not a zip archive"))
	if !domain.IsKind(err, domain.ErrExtraction) {
		t.Fatalf("expected extraction error, got %v", err)
	}
}

func TestExtractMissingDocumentXML(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("word/styles.xml")
	_, _ = w.Write([]byte("<w:styles/>"))
	_ = zw.Close()

	_, err := New().Extract(context.Background(), buf.Bytes())
	if !domain.IsKind(err, domain.ErrExtraction) {
		t.Fatalf("expected extraction error, got %v", err)
	}
}

func TestExtractEmptyBody(t *testing.T) {
	data := buildDocx(t, `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body/></w:document>`)
	_, err := New().Extract(context.Background(), data)
	if !domain.IsKind(err, domain.ErrExtraction) {
		t.Fatalf("expected extraction error for empty body, got %v", err)
	}
}
