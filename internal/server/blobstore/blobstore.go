// Package blobstore talks to the S3-compatible store holding user photos.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/datingapp/internal/server/config"
)

// Deleter removes a single object by its public id.
type Deleter interface {
	DeleteObject(ctx context.Context, publicID string) error
}

var ErrEmptyPublicID = errors.New("empty public id")

var (
	loadDefaultAWSConfig  = awsconfig.LoadDefaultConfig
	newS3ClientFromConfig = s3.NewFromConfig
)

type objectDeleter interface {
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store deletes photo objects from one bucket.
type S3Store struct {
	client  objectDeleter
	bucket  string
	timeout time.Duration
}

// NewS3Store builds an S3 client from the photo store settings in cfg.
func NewS3Store(ctx context.Context, cfg *config.Config) (*S3Store, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(strings.TrimRight(cfg.S3BaseEndpoint, "/"))
		o.UsePathStyle = true
	})

	return &S3Store{client: client, bucket: cfg.S3Bucket, timeout: cfg.BlobDeleteTimeout}, nil
}

// DeleteObject removes the object stored under publicID. Each call is bounded
// by the configured blob delete timeout.
func (s *S3Store) DeleteObject(ctx context.Context, publicID string) error {
	if publicID == "" {
		return ErrEmptyPublicID
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		return fmt.Errorf("delete object %q: %w", publicID, err)
	}

	return nil
}

var _ Deleter = (*S3Store)(nil)
