// Package pdfx extracts plain text from PDF documents page by page.
package pdfx

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/qualitymap/qualitymap/internal/core/domain"
)

type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

// Extract reads every page of data and joins the page texts with
// newlines. The underlying parser panics on some malformed files, so
// the whole read runs behind a recover that converts the panic into an
// extraction error.
func (e *Extractor) Extract(ctx context.Context, data []byte) (out domain.ExtractedText, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = domain.WrapError(domain.ErrExtraction, "parse pdf", fmt.Errorf("parser panic: %v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return domain.ExtractedText{}, domain.WrapError(domain.ErrExtraction, "open pdf", err)
	}

	totalPages := reader.NumPage()
	// Every page contributes a slot, so an unreadable page still leaves
	// a newline boundary between its neighbours.
	pages := make([]string, 0, totalPages)
	for i := 1; i <= totalPages; i++ {
		if err := ctx.Err(); err != nil {
			return domain.ExtractedText{}, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page does not fail the document.
			pages = append(pages, "")
			continue
		}
		pages = append(pages, strings.TrimSpace(text))
	}

	joined := strings.Join(pages, "\n")
	if strings.TrimSpace(joined) == "" {
		return domain.ExtractedText{}, domain.WrapError(domain.ErrExtraction, "parse pdf", fmt.Errorf("document contains no extractable text"))
	}
	return domain.ExtractedText{
		Text:      joined,
		WordCount: len(strings.Fields(joined)),
		PageCount: totalPages,
	}, nil
}
