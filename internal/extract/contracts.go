package extract

import (
	"context"
	"time"

	"github.com/joseph-ayodele/resume-extractor/constants"
)

// TextExtractor converts a document blob to plain text.
type TextExtractor interface {
	Extract(ctx context.Context, content []byte, mediaType constants.MediaType) (TextExtractionResult, error)
}

type TextExtractionResult struct {
	Text      string
	Pages     int
	MediaType constants.MediaType
	Method    string // "pdf-text" | "pdf-ocr" | "docx-raw"
	Duration  time.Duration
	Warnings  []string
}

// PDFReader returns the recovered text items of each page, in page order.
type PDFReader interface {
	PageItems(content []byte) ([][]string, error)
}

// DOCXReader returns the raw text of a DOCX body.
type DOCXReader interface {
	RawText(content []byte) (string, error)
}
