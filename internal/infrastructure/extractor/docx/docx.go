// Package docx extracts plain text from DOCX documents. A DOCX file is
// a ZIP archive; the visible text lives in word/document.xml as w:t
// runs grouped into w:p paragraphs. The archive and the XML stream are
// both handled with the standard library, which keeps the extractor
// free of a dependency for what is a fixed, tiny subset of OOXML.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/qualitymap/qualitymap/internal/core/domain"
)

type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(ctx context.Context, data []byte) (domain.ExtractedText, error) {
	if err := ctx.Err(); err != nil {
		return domain.ExtractedText{}, err
	}

	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return domain.ExtractedText{}, domain.WrapError(domain.ErrExtraction, "open docx archive", err)
	}

	var docFile *zip.File
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return domain.ExtractedText{}, domain.WrapError(domain.ErrExtraction, "open docx archive", fmt.Errorf("word/document.xml missing"))
	}

	rc, err := docFile.Open()
	if err != nil {
		return domain.ExtractedText{}, domain.WrapError(domain.ErrExtraction, "read docx body", err)
	}
	defer rc.Close()

	text, pageBreaks, err := parseDocumentXML(rc)
	if err != nil {
		return domain.ExtractedText{}, domain.WrapError(domain.ErrExtraction, "parse docx body", err)
	}
	if strings.TrimSpace(text) == "" {
		return domain.ExtractedText{}, domain.WrapError(domain.ErrExtraction, "parse docx body", fmt.Errorf("document contains no extractable text"))
	}

	return domain.ExtractedText{
		Text:      text,
		WordCount: len(strings.Fields(text)),
		PageCount: pageBreaks + 1,
	}, nil
}

// parseDocumentXML walks the WordprocessingML stream collecting text
// runs. Paragraph ends become newlines, tabs become spaces, and
// explicit page breaks are counted for the page total.
func parseDocumentXML(r io.Reader) (string, int, error) {
	dec := xml.NewDecoder(r)

	var sb strings.Builder
	var inText bool
	pageBreaks := 0

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", 0, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte(' ')
			case "br":
				sb.WriteByte('\n')
				for _, attr := range t.Attr {
					if attr.Name.Local == "type" && attr.Value == "page" {
						pageBreaks++
					}
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return sb.String(), pageBreaks, nil
}
