package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	"github.com/klauspost/compress/zip"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/resume-extractor/constants"
	"github.com/joseph-ayodele/resume-extractor/internal/common"
	"github.com/joseph-ayodele/resume-extractor/internal/entity"
)

const (
	msgUnreadable = "Could not read the ZIP file. It might be corrupted."
	msgEmpty      = "The ZIP file is empty or contains no supported resume files (PDF, DOCX)."
)

type Config struct {
	MaxEntryBytes int64 // per-member uncompressed cap, default 50 MiB
	Workers       int   // concurrent member reads, default 4
}

// Expander unpacks a zip bundle into documents.
type Expander struct {
	cfg    Config
	logger *slog.Logger
}

// MemberFailure is a qualifying member that could not be read.
type MemberFailure struct {
	Name    string // base name, as a document would carry it
	Message string
}

// Result lists the expanded documents and the failed members, both in archive
// order. Skipped holds members with unrecognized suffixes.
type Result struct {
	Documents []entity.Document
	Skipped   []string
	Failed    []MemberFailure
}

func NewExpander(cfg Config, logger *slog.Logger) *Expander {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxEntryBytes <= 0 {
		cfg.MaxEntryBytes = 50 << 20
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	return &Expander{cfg: cfg, logger: logger}
}

type member struct {
	file      *zip.File
	mediaType constants.MediaType
}

// Expand reads every supported member concurrently. It fails with
// common.ErrEmptyArchive when no document could be produced.
func (x *Expander) Expand(ctx context.Context, blob []byte) (Result, error) {
	start := time.Now()
	var res Result

	zr, err := zip.NewReader(bytes.NewReader(blob), int64(len(blob)))
	if err != nil {
		x.logger.Error("archive.open.failed", "bytes", len(blob), "error", err)
		return res, common.NewAppError(common.CodeInput, msgUnreadable, err)
	}

	var members []member
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		mt, ok := constants.MediaTypeFromName(f.Name)
		if !ok {
			x.logger.Info("archive.entry.skipped", "entry", f.Name, "reason", "unsupported suffix")
			res.Skipped = append(res.Skipped, f.Name)
			continue
		}
		members = append(members, member{file: f, mediaType: mt})
	}

	docs := make([]*entity.Document, len(members))
	errs := make([]error, len(members))

	var g errgroup.Group
	g.SetLimit(x.cfg.Workers)
	for i, m := range members {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			content, err := x.readMember(m.file)
			if err != nil {
				errs[i] = err
				return nil
			}
			docs[i] = &entity.Document{
				Name:      path.Base(m.file.Name),
				Content:   content,
				MediaType: m.mediaType,
			}
			return nil
		})
	}
	_ = g.Wait()

	for i, m := range members {
		if errs[i] != nil {
			x.logger.Warn("archive.entry.failed", "entry", m.file.Name, "error", errs[i])
			res.Failed = append(res.Failed, MemberFailure{
				Name:    path.Base(m.file.Name),
				Message: fmt.Sprintf("Could not read %s from the ZIP file: %v", m.file.Name, errs[i]),
			})
			continue
		}
		res.Documents = append(res.Documents, *docs[i])
	}

	x.logger.Info("archive.expand.done",
		"members", len(zr.File),
		"documents", len(res.Documents),
		"skipped", len(res.Skipped),
		"failed", len(res.Failed),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if len(res.Documents) == 0 {
		return res, common.NewAppError(common.CodeInput, msgEmpty, common.ErrEmptyArchive)
	}
	return res, nil
}

func (x *Expander) readMember(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open entry: %w", err)
	}
	defer rc.Close()

	b, err := io.ReadAll(io.LimitReader(rc, x.cfg.MaxEntryBytes+1))
	if err != nil {
		return nil, fmt.Errorf("decompress entry: %w", err)
	}
	if int64(len(b)) > x.cfg.MaxEntryBytes {
		return nil, fmt.Errorf("entry exceeds %d bytes", x.cfg.MaxEntryBytes)
	}
	return b, nil
}
