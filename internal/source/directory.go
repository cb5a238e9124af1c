package source

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/joseph-ayodele/resume-extractor/constants"
	"github.com/joseph-ayodele/resume-extractor/internal/common"
	"github.com/joseph-ayodele/resume-extractor/internal/pipeline"
)

// DirStats summarizes a directory walk.
type DirStats struct {
	Scanned uint32
	Matched uint32
	Failed  uint32
}

// BundleDirectory walks root and packs every PDF and DOCX into an in-memory
// ZIP so the batch runs through archive expansion. Hidden files and
// directories are skipped. Member names are paths relative to root, in walk
// order. Unreadable files are logged and left out of the bundle.
func (l *Loader) BundleDirectory(ctx context.Context, root string) (pipeline.Input, DirStats, error) {
	var stats DirStats
	if strings.TrimSpace(root) == "" {
		return pipeline.Input{}, stats, common.NewAppError(common.CodeInput, "directory is required", common.ErrInvalidInput)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == root {
			return walkErr
		}
		stats.Scanned++
		if walkErr != nil {
			l.logger.Warn("source.dir.walk_failed", "path", path, "error", walkErr)
			stats.Failed++
			return nil
		}
		if isHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := constants.MediaTypeFromName(path); !ok {
			return nil
		}
		stats.Matched++

		data, err := os.ReadFile(path)
		if err != nil {
			l.logger.Warn("source.dir.read_failed", "path", path, "error", err)
			stats.Failed++
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = filepath.Base(path)
		}
		w, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return fmt.Errorf("bundle %s: %w", rel, err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("bundle %s: %w", rel, err)
		}
		return nil
	})
	if err != nil {
		return pipeline.Input{}, stats, fmt.Errorf("walk: %w", err)
	}
	if err := zw.Close(); err != nil {
		return pipeline.Input{}, stats, fmt.Errorf("bundle: %w", err)
	}

	l.logger.Info("source.dir.ok",
		"root", root,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"failed", stats.Failed,
	)
	name := filepath.Base(filepath.Clean(root)) + ".zip"
	return pipeline.Input{Name: name, Content: buf.Bytes(), DeclaredType: constants.MIMEZip}, stats, nil
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
