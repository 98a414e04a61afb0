// Copyright (c) 2026 Madhouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package storage uploads binary assets (event images) to S3-compatible object storage.

Objects are written under a date-partitioned key with a time-ordered UUID name,
and the public URL of the object is returned to the caller for persistence.
*/
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/taibuivan/madhouse/pkg/uuid"
)

// MaxImageSize caps a single uploaded image.
const MaxImageSize = 5 << 20

var (
	// ErrUnsupportedType is returned for content types outside [imageExtensions].
	ErrUnsupportedType = errors.New("storage: unsupported content type")

	// ErrNotConfigured is returned by [Unconfigured] for every upload.
	ErrNotConfigured = errors.New("storage: object storage is not configured")
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Uploader stores a blob and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, data []byte, contentType string) (string, error)
}

// objectPutter is the subset of [*s3.Client] used here.
type objectPutter interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config holds bucket and credential settings.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	PublicURL string
	Prefix    string
}

// S3Uploader writes objects through the AWS SDK.
type S3Uploader struct {
	client    objectPutter
	bucket    string
	prefix    string
	publicURL string
	now       func() time.Time
}

// NewS3Uploader builds an S3 client from static credentials. A custom endpoint
// switches the client to path-style addressing for MinIO-like servers.
func NewS3Uploader(ctx context.Context, config S3Config) (*S3Uploader, error) {
	if config.Bucket == "" {
		return nil, errors.New("storage: bucket is required")
	}

	awsConfig, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(config.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			config.AccessKey,
			config.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("storage_aws_config_failed: %w", err)
	}

	client := s3.NewFromConfig(awsConfig, func(options *s3.Options) {
		if config.Endpoint != "" {
			options.BaseEndpoint = aws.String(config.Endpoint)
			options.UsePathStyle = true
		}
	})

	return newS3Uploader(client, config), nil
}

func newS3Uploader(client objectPutter, config S3Config) *S3Uploader {
	publicURL := strings.TrimRight(config.PublicURL, "/")
	if publicURL == "" {
		publicURL = defaultPublicURL(config)
	}

	prefix := strings.Trim(config.Prefix, "/")
	if prefix == "" {
		prefix = "events"
	}

	return &S3Uploader{
		client:    client,
		bucket:    config.Bucket,
		prefix:    prefix,
		publicURL: publicURL,
		now:       time.Now,
	}
}

/*
Upload writes data under a fresh key and returns the public URL.

Returns:
  - string: Public object URL
  - error: ErrUnsupportedType, size violations or SDK failures
*/
func (uploader *S3Uploader) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	extension, ok := imageExtensions[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, contentType)
	}
	if len(data) == 0 || len(data) > MaxImageSize {
		return "", fmt.Errorf("storage: image must be between 1 byte and %d bytes", MaxImageSize)
	}

	key := uploader.objectKey(extension)

	_, err := uploader.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(uploader.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("storage_put_object_failed: %w", err)
	}

	return uploader.publicURL + "/" + key, nil
}

// objectKey returns "<prefix>/<yyyy>/<mm>/<dd>/<uuidv7><ext>".
func (uploader *S3Uploader) objectKey(extension string) string {
	date := uploader.now().UTC()
	return fmt.Sprintf("%s/%04d/%02d/%02d/%s%s", uploader.prefix, date.Year(), date.Month(), date.Day(), uuid.New(), extension)
}

func defaultPublicURL(config S3Config) string {
	if config.Endpoint != "" {
		return strings.TrimRight(config.Endpoint, "/") + "/" + config.Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", config.Bucket, config.Region)
}

// Unconfigured rejects every upload. It stands in for [S3Uploader] when no
// bucket is set, so the API still serves events without images.
type Unconfigured struct{}

// Upload always fails with [ErrNotConfigured].
func (Unconfigured) Upload(context.Context, []byte, string) (string, error) {
	return "", ErrNotConfigured
}
