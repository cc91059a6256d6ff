// Package extractor routes a raw document to the parser for its format.
package extractor

import (
	"context"
	"fmt"

	"github.com/qualitymap/qualitymap/internal/core/domain"
	"github.com/qualitymap/qualitymap/internal/infrastructure/extractor/docx"
	"github.com/qualitymap/qualitymap/internal/infrastructure/extractor/pdfx"
)

type Composite struct {
	pdf  *pdfx.Extractor
	docx *docx.Extractor
}

func NewComposite() *Composite {
	return &Composite{
		pdf:  pdfx.New(),
		docx: docx.New(),
	}
}

func (c *Composite) Extract(ctx context.Context, data []byte, kind domain.MimeKind) (domain.ExtractedText, error) {
	if len(data) == 0 {
		return domain.ExtractedText{}, domain.WrapError(domain.ErrExtraction, "extract", fmt.Errorf("empty document"))
	}
	switch kind {
	case domain.MimePDF:
		return c.pdf.Extract(ctx, data)
	case domain.MimeDOCX:
		return c.docx.Extract(ctx, data)
	}
	return domain.ExtractedText{}, domain.WrapError(domain.ErrValidation, "extract", fmt.Errorf("unsupported format %q", kind))
}
