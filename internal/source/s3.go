package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/joseph-ayodele/resume-extractor/internal/common"
)

// ObjectStore reads and writes whole objects.
type ObjectStore interface {
	Get(ctx context.Context, bucket, key string) (data []byte, contentType string, err error)
	Put(ctx context.Context, bucket, key string, data []byte, contentType string) error
}

// S3Store is an ObjectStore on AWS S3.
type S3Store struct {
	client *s3.Client
	region string
	logger *slog.Logger
}

var _ ObjectStore = (*S3Store)(nil)

// NewS3Store uses static credentials when both keys are configured and the
// default AWS credential chain otherwise.
func NewS3Store(ctx context.Context, cfg common.StorageConfig, logger *slog.Logger) (*S3Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.AWSRegion == "" {
		return nil, common.NewAppError(common.CodeConfig, "AWS_REGION not set", common.ErrValidation)
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.AWSRegion)}
	if cfg.AWSAccessKey != "" && cfg.AWSSecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKey, cfg.AWSSecretKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	logger.Info("storage.s3.ready", "region", cfg.AWSRegion, "default_bucket", cfg.Bucket)
	return &S3Store{client: s3.NewFromConfig(awsCfg), region: cfg.AWSRegion, logger: logger}, nil
}

func (s *S3Store) Get(ctx context.Context, bucket, key string) ([]byte, string, error) {
	start := time.Now()
	ctxGet, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	resp, err := s.client.GetObject(ctxGet, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, "", fmt.Errorf("s3 get failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read body: %w", err)
	}

	s.logger.Info("storage.s3.get.ok",
		"bucket", bucket, "key", key, "bytes", len(body),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return body, aws.ToString(resp.ContentType), nil
}

func (s *S3Store) Put(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	start := time.Now()
	uploader := manager.NewUploader(s.client)

	ctxUpload, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	_, err := uploader.Upload(ctxUpload, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("s3 upload failed: %w", err)
	}

	s.logger.Info("storage.s3.put.ok",
		"bucket", bucket, "key", key, "bytes", len(data),
		"url", fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, s.region, key),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
