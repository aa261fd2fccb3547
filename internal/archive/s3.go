package archive

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/BruksfildServices01/agent-crm/internal/config"
)

type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 stores archived files in a bucket. A custom endpoint enables
// S3-compatible servers such as MinIO.
type S3 struct {
	client putObjectAPI
	bucket string
}

func NewS3(cfg config.ArchiveConfig) *S3 {
	opts := s3.Options{
		Region: cfg.S3Region,
	}
	if cfg.S3AccessKey != "" {
		opts.Credentials = aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		)
	}
	if cfg.S3Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.S3Endpoint)
		opts.UsePathStyle = true
	}

	return &S3{client: s3.New(opts), bucket: cfg.S3Bucket}
}

func (a *S3) Put(ctx context.Context, key string, body []byte, contentType string) error {
	if contentType == "" {
		contentType = "text/csv"
	}

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("archive s3 put %s: %w", key, err)
	}
	return nil
}
