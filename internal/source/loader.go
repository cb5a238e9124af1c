// Package source loads batch input from local files or S3 and writes exports back.
package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/resume-extractor/constants"
	"github.com/joseph-ayodele/resume-extractor/internal/common"
	"github.com/joseph-ayodele/resume-extractor/internal/pipeline"
)

const s3Scheme = "s3://"

// Loader resolves input and output locations. Store may be nil when no S3
// access is configured; s3:// locations then fail.
type Loader struct {
	store         ObjectStore
	defaultBucket string
	logger        *slog.Logger
}

func NewLoader(store ObjectStore, defaultBucket string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{store: store, defaultBucket: defaultBucket, logger: logger}
}

// IsS3 reports whether uri names an S3 object.
func IsS3(uri string) bool {
	return strings.HasPrefix(uri, s3Scheme)
}

// ParseS3URI splits s3://bucket/key. An empty bucket (s3:///key) selects fallback.
func ParseS3URI(uri, fallback string) (bucket, key string, err error) {
	if !IsS3(uri) {
		return "", "", fmt.Errorf("not an s3 uri: %q", uri)
	}
	rest := strings.TrimPrefix(uri, s3Scheme)
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" {
		bucket = fallback
	}
	if bucket == "" || key == "" || strings.HasSuffix(key, "/") {
		return "", "", common.NewAppError(common.CodeInput,
			fmt.Sprintf("invalid S3 location %q, expected s3://bucket/key", uri), common.ErrInvalidInput)
	}
	return bucket, key, nil
}

// Load reads a batch input. The declared type is the object's content type
// for S3 (when specific) or the type implied by the file suffix. A local
// directory is bundled into a ZIP.
func (l *Loader) Load(ctx context.Context, uri string) (pipeline.Input, error) {
	if IsS3(uri) {
		return l.loadS3(ctx, uri)
	}

	fi, err := os.Stat(uri)
	if err != nil {
		if os.IsNotExist(err) {
			return pipeline.Input{}, common.NewAppError(common.CodeInput,
				fmt.Sprintf("input %q not found", uri), common.ErrNotFound)
		}
		return pipeline.Input{}, fmt.Errorf("read input: %w", err)
	}
	if fi.IsDir() {
		in, _, err := l.BundleDirectory(ctx, uri)
		return in, err
	}

	data, err := os.ReadFile(uri)
	if err != nil {
		return pipeline.Input{}, fmt.Errorf("read input: %w", err)
	}
	name := filepath.Base(uri)
	l.logger.Info("source.load.ok", "uri", uri, "bytes", len(data))
	return pipeline.Input{Name: name, Content: data, DeclaredType: constants.MIMEForName(name)}, nil
}

func (l *Loader) loadS3(ctx context.Context, uri string) (pipeline.Input, error) {
	if l.store == nil {
		return pipeline.Input{}, common.NewAppError(common.CodeConfig,
			"S3 storage is not configured", common.ErrValidation)
	}
	bucket, key, err := ParseS3URI(uri, l.defaultBucket)
	if err != nil {
		return pipeline.Input{}, err
	}
	data, contentType, err := l.store.Get(ctx, bucket, key)
	if err != nil {
		return pipeline.Input{}, err
	}

	name := path.Base(key)
	declared := contentType
	if declared == "" || declared == constants.MIMEOctetStream || strings.HasPrefix(declared, "binary/") {
		declared = constants.MIMEForName(name)
	}
	l.logger.Info("source.load.ok", "uri", uri, "bytes", len(data), "declared_type", declared)
	return pipeline.Input{Name: name, Content: data, DeclaredType: declared}, nil
}

// Save writes data to a local path or an S3 object.
func (l *Loader) Save(ctx context.Context, uri string, data []byte, contentType string) error {
	if IsS3(uri) {
		if l.store == nil {
			return common.NewAppError(common.CodeConfig, "S3 storage is not configured", common.ErrValidation)
		}
		bucket, key, err := ParseS3URI(uri, l.defaultBucket)
		if err != nil {
			return err
		}
		return l.store.Put(ctx, bucket, key, data, contentType)
	}

	if dir := filepath.Dir(uri); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(uri, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	l.logger.Info("source.save.ok", "uri", uri, "bytes", len(data))
	return nil
}
