package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/resume-extractor/constants"
	"github.com/joseph-ayodele/resume-extractor/internal/common"
)

const (
	msgPDFFailed  = "Failed to parse PDF file content. It might be corrupted or password protected."
	msgDOCXFailed = "Failed to parse DOCX file content. It might be corrupted or in an unsupported format."
)

type Config struct {
	MaxPages int // 0 = no limit
	OCR      OCRConfig
}

// Extractor dispatches on media type to the PDF or DOCX reader.
type Extractor struct {
	cfg    Config
	pdf    PDFReader
	docx   DOCXReader
	ocr    *ocrReader // nil unless OCR is enabled
	logger *slog.Logger
}

var _ TextExtractor = (*Extractor)(nil)

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Extractor{
		cfg:    cfg,
		pdf:    ledongthucReader{maxPages: cfg.MaxPages},
		docx:   docconvReader{},
		logger: logger,
	}
	if cfg.OCR.Enabled {
		e.ocr = newOCRReader(cfg.OCR, cfg.MaxPages, logger)
	}
	return e
}

// Extract returns the document text. A failure to read the document is an
// error; a readable document with no text returns an empty Text.
func (e *Extractor) Extract(ctx context.Context, content []byte, mediaType constants.MediaType) (TextExtractionResult, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return TextExtractionResult{MediaType: mediaType}, err
	}

	switch mediaType {
	case constants.PDF:
		res, err := e.extractPDF(ctx, content)
		res.Duration = time.Since(start)
		return res, err
	case constants.DOCX:
		res, err := e.extractDOCX(content)
		res.Duration = time.Since(start)
		return res, err
	default:
		e.logger.Warn("extract.unsupported", "media_type", mediaType, "bytes", len(content))
		return TextExtractionResult{MediaType: mediaType}, common.NewAppError(
			common.CodeExtraction,
			fmt.Sprintf("Unsupported file type: %q. Please upload a PDF or DOCX file.", mediaType),
			common.ErrUnsupportedMediaType,
		)
	}
}

func (e *Extractor) extractPDF(ctx context.Context, content []byte) (TextExtractionResult, error) {
	res := TextExtractionResult{MediaType: constants.PDF, Method: "pdf-text"}
	pages, err := e.pdf.PageItems(content)
	if err != nil {
		e.logger.Error("extract.pdf.failed", "bytes", len(content), "error", err)
		return res, common.NewAppError(common.CodeExtraction, msgPDFFailed,
			fmt.Errorf("%w: %v", common.ErrCorruptedDocument, err))
	}
	res.Pages = len(pages)
	res.Text = JoinPages(pages)
	if res.Text == "" {
		res.Warnings = append(res.Warnings, "no text layer found")
		if e.ocr != nil {
			e.ocrPDF(ctx, content, &res)
		}
	}
	e.logger.Debug("extract.pdf.ok", "pages", res.Pages, "chars", len(res.Text), "method", res.Method)
	return res, nil
}

// ocrPDF fills res from OCR. An OCR failure leaves the text empty.
func (e *Extractor) ocrPDF(ctx context.Context, content []byte, res *TextExtractionResult) {
	pages, warns, err := e.ocr.Pages(ctx, content)
	res.Warnings = append(res.Warnings, warns...)
	if err != nil {
		e.logger.Warn("extract.pdf.ocr_failed", "bytes", len(content), "error", err)
		res.Warnings = append(res.Warnings, "ocr failed: "+err.Error())
		return
	}
	res.Method = "pdf-ocr"
	res.Pages = len(pages)
	res.Text = strings.TrimSpace(strings.Join(pages, "\n"))
	e.logger.Info("extract.pdf.ocr_ok", "pages", res.Pages, "chars", len(res.Text))
}

func (e *Extractor) extractDOCX(content []byte) (TextExtractionResult, error) {
	res := TextExtractionResult{MediaType: constants.DOCX, Method: "docx-raw", Pages: 1}
	text, err := e.docx.RawText(content)
	if err != nil {
		e.logger.Error("extract.docx.failed", "bytes", len(content), "error", err)
		return res, common.NewAppError(common.CodeExtraction, msgDOCXFailed,
			fmt.Errorf("%w: %v", common.ErrCorruptedDocument, err))
	}
	res.Text = text
	e.logger.Debug("extract.docx.ok", "chars", len(res.Text))
	return res, nil
}

// JoinPages joins each page's items with a single space, pages with a newline,
// and trims the result.
func JoinPages(pages [][]string) string {
	lines := make([]string, len(pages))
	for i, items := range pages {
		lines[i] = strings.Join(items, " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
