// Copyright (c) 2026 Madhouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"context"
	"errors"
	"io"
	"regexp"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (putter *fakePutter) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	putter.input = input
	putter.body, _ = io.ReadAll(input.Body)
	if putter.err != nil {
		return nil, putter.err
	}
	return &s3.PutObjectOutput{}, nil
}

/*
TestUpload_KeyAndURL verifies the date-partitioned key and the returned public URL.
*/
func TestUpload_KeyAndURL(t *testing.T) {
	putter := &fakePutter{}
	uploader := newS3Uploader(putter, S3Config{Bucket: "media", PublicURL: "https://cdn.example/"})
	uploader.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }

	url, err := uploader.Upload(context.Background(), []byte("png-bytes"), "image/png")
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^https://cdn\.example/events/2026/03/01/[0-9a-f-]{36}\.png$`), url)
	assert.Equal(t, "media", aws.ToString(putter.input.Bucket))
	assert.Equal(t, "image/png", aws.ToString(putter.input.ContentType))
	assert.Equal(t, []byte("png-bytes"), putter.body)
}

func TestUpload_Rejections(t *testing.T) {
	uploader := newS3Uploader(&fakePutter{}, S3Config{Bucket: "media", Region: "eu-west-1"})

	_, err := uploader.Upload(context.Background(), []byte("x"), "application/pdf")
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = uploader.Upload(context.Background(), nil, "image/jpeg")
	assert.Error(t, err)

	_, err = uploader.Upload(context.Background(), make([]byte, MaxImageSize+1), "image/jpeg")
	assert.Error(t, err)
}

func TestUpload_PropagatesSDKError(t *testing.T) {
	uploader := newS3Uploader(&fakePutter{err: errors.New("access denied")}, S3Config{Bucket: "media", Endpoint: "http://minio:9000"})

	_, err := uploader.Upload(context.Background(), []byte("x"), "image/jpeg")
	assert.ErrorContains(t, err, "access denied")
	assert.Equal(t, "http://minio:9000/media", uploader.publicURL)
}

func TestUnconfigured_RejectsUploads(t *testing.T) {
	_, err := Unconfigured{}.Upload(context.Background(), []byte{1}, "image/png")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
