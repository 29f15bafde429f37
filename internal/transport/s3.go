package transport

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Opts configures S3 access. Empty fields fall back to the standard AWS
// environment and shared config files.
type S3Opts struct {
	Region    string
	Endpoint  string // S3-compatible endpoint such as MinIO; forces path-style
	AccessKey string
	SecretKey string
}

// NewS3Client builds an S3 client from opts.
func NewS3Client(ctx context.Context, opts S3Opts) (*s3.Client, error) {
	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

func openS3(ctx context.Context, loc Location, opts S3Opts) (io.ReadCloser, error) {
	client, err := NewS3Client(ctx, opts)
	if err != nil {
		return nil, err
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(loc.Host),
		Key:    aws.String(loc.Path),
	})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", loc, err)
	}
	slog.Debug("fetching manifest", "bucket", loc.Host, "key", loc.Path,
		"content_length", aws.ToInt64(out.ContentLength))
	return out.Body, nil
}
