package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// OCRConfig enables rasterize-and-OCR for PDFs without a text layer.
type OCRConfig struct {
	Enabled   bool
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"
	Lang      string // default "eng"
	DPI       int    // default 300
}

// Runner lets us stub external commands in tests.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct {
	logger *slog.Logger
}

func (r execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	if err != nil {
		r.logger.Error("extract.exec.failed",
			"cmd", name,
			"elapsed_ms", time.Since(start).Milliseconds(),
			"error", err,
			"stderr", truncate(errb.String(), 8<<10),
		)
	} else {
		r.logger.Debug("extract.exec.ok",
			"cmd", name,
			"elapsed_ms", time.Since(start).Milliseconds(),
			"stdout_bytes", out.Len(),
		)
	}
	return out.Bytes(), errb.Bytes(), err
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}

// ocrReader renders PDF pages with pdftoppm and reads them with tesseract.
type ocrReader struct {
	cfg      OCRConfig
	maxPages int
	runner   Runner
}

func newOCRReader(cfg OCRConfig, maxPages int, logger *slog.Logger) *ocrReader {
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	return &ocrReader{cfg: cfg, maxPages: maxPages, runner: execRunner{logger: logger}}
}

// Pages returns the recognized text of each rendered page. Pages that
// tesseract cannot read are reported as warnings.
func (o *ocrReader) Pages(ctx context.Context, content []byte) ([]string, []string, error) {
	tmpDir, err := os.MkdirTemp("", "resume-ocr-*")
	if err != nil {
		return nil, nil, err
	}
	defer os.RemoveAll(tmpDir)

	in := filepath.Join(tmpDir, "in.pdf")
	if err := os.WriteFile(in, content, 0o600); err != nil {
		return nil, nil, err
	}

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	if _, errb, err := o.runner.Run(ctx, o.cfg.Pdftoppm, "-r", strconv.Itoa(o.cfg.DPI), "-png", in, prefix); err != nil {
		return nil, []string{string(errb)}, fmt.Errorf("pdftoppm: %w", err)
	}

	// prefix-1.png, prefix-2.png, ...
	images, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(images)
	if o.maxPages > 0 && len(images) > o.maxPages {
		images = images[:o.maxPages]
	}
	if len(images) == 0 {
		return nil, nil, errors.New("pdftoppm produced no images")
	}

	var pages, warns []string
	for _, img := range images {
		// tesseract <file> stdout -l <lang>
		out, errb, err := o.runner.Run(ctx, o.cfg.Tesseract, img, "stdout", "-l", o.cfg.Lang)
		if err != nil {
			warns = append(warns, fmt.Sprintf("tesseract %s: %v %s", filepath.Base(img), err, strings.TrimSpace(string(errb))))
			pages = append(pages, "")
			continue
		}
		pages = append(pages, strings.TrimSpace(string(out)))
	}
	return pages, warns, nil
}
