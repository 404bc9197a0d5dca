package extractor

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/joonhokim/examgen/internal/core/domain"
	"github.com/joonhokim/examgen/internal/core/ports"
)

// Selector routes a document to the extractor matching its format.
type Selector struct {
	pdf  ports.TextExtractor
	text ports.TextExtractor
}

func NewSelector(pdf, text ports.TextExtractor) *Selector {
	return &Selector{pdf: pdf, text: text}
}

func (s *Selector) Extract(ctx context.Context, doc *domain.Document) (string, error) {
	if isPDF(doc) {
		return s.pdf.Extract(ctx, doc)
	}
	return s.text.Extract(ctx, doc)
}

func isPDF(doc *domain.Document) bool {
	if strings.EqualFold(filepath.Ext(doc.Filename), ".pdf") {
		return true
	}
	return doc.MimeType == "application/pdf"
}
