// Package extract turns uploaded invoice files into plain text for the
// line-item parser. It is the only package that touches binary PDF structure.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// TextExtractor produces layout-preserving plain text from raw file bytes.
// "Layout-preserving" means one output line per visual row, so downstream
// parsing can treat newlines as row boundaries.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

type pdfExtractor struct{}

// NewPDFExtractor returns a TextExtractor for vector-text PDFs. Scanned
// image PDFs yield empty text; OCR is out of scope.
func NewPDFExtractor() TextExtractor {
	return pdfExtractor{}
}

func (pdfExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var b strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("failed to read text on page %d: %w", pageNum, err)
		}

		// Rows come back top-to-bottom; words within a row left-to-right.
		// Space-join the words, newline-join the rows.
		for _, row := range rows {
			var words []string
			for _, word := range row.Content {
				if w := strings.TrimSpace(word.S); w != "" {
					words = append(words, w)
				}
			}
			if len(words) > 0 {
				b.WriteString(strings.Join(words, " "))
				b.WriteByte('\n')
			}
		}
	}

	return strings.ReplaceAll(b.String(), "\r", ""), nil
}
