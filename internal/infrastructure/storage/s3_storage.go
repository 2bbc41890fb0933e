// Package storage keeps document files in S3-compatible buckets.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	documentapp "github.com/datahub/backend/internal/application/document"
	infraconfig "github.com/datahub/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Ensure S3DocumentStorage implements ObjectStorage
var _ documentapp.ObjectStorage = (*S3DocumentStorage)(nil)

// ErrUnknownBucket is returned for bucket ids missing from the configuration
var ErrUnknownBucket = errors.New("unknown document bucket")

type bucketClient struct {
	name    string
	client  *s3.Client
	presign *s3.PresignClient
}

// S3DocumentStorage stores documents in S3 buckets keyed by bucket id.
// Each bucket may live in its own region, endpoint or account.
type S3DocumentStorage struct {
	buckets           map[string]*bucketClient
	presignExpiration time.Duration
	logger            *zap.Logger
}

// S3DocumentStorageOption is a functional option for configuring S3DocumentStorage
type S3DocumentStorageOption func(*S3DocumentStorage)

// WithLogger sets a custom logger for S3DocumentStorage
func WithLogger(logger *zap.Logger) S3DocumentStorageOption {
	return func(s *S3DocumentStorage) {
		s.logger = logger
	}
}

// WithPresignExpiration sets a custom presign expiration duration
func WithPresignExpiration(d time.Duration) S3DocumentStorageOption {
	return func(s *S3DocumentStorage) {
		s.presignExpiration = d
	}
}

// NewS3DocumentStorage creates a client per configured bucket. Buckets without
// static keys use the default AWS credential chain.
func NewS3DocumentStorage(ctx context.Context, cfg *infraconfig.StorageConfig, opts ...S3DocumentStorageOption) (*S3DocumentStorage, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if len(cfg.Buckets) == 0 {
		return nil, errors.New("at least one storage bucket is required")
	}

	s := &S3DocumentStorage{
		buckets:           make(map[string]*bucketClient, len(cfg.Buckets)),
		presignExpiration: cfg.PresignDuration,
		logger:            zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.presignExpiration == 0 {
		s.presignExpiration = time.Hour
	}

	for id, bc := range cfg.Buckets {
		if bc.Bucket == "" {
			return nil, fmt.Errorf("storage bucket %q has no bucket name", id)
		}
		client, err := newS3Client(ctx, bc, cfg.UsePathStyle)
		if err != nil {
			return nil, fmt.Errorf("storage bucket %q: %w", id, err)
		}
		s.buckets[id] = &bucketClient{
			name:    bc.Bucket,
			client:  client,
			presign: s3.NewPresignClient(client),
		}
	}
	return s, nil
}

func newS3Client(ctx context.Context, bc infraconfig.BucketConfig, usePathStyle bool) (*s3.Client, error) {
	region := bc.Region
	if region == "" {
		region = "eu-west-2"
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if bc.AccessKeyID != "" && bc.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(bc.AccessKeyID, bc.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	endpoint := bc.Endpoint
	if endpoint != "" && !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = usePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}

func (s *S3DocumentStorage) bucket(bucketID string) (*bucketClient, error) {
	b, ok := s.buckets[bucketID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBucket, bucketID)
	}
	return b, nil
}

// BucketName returns the S3 bucket name behind a bucket id
func (s *S3DocumentStorage) BucketName(bucketID string) (string, error) {
	b, err := s.bucket(bucketID)
	if err != nil {
		return "", err
	}
	return b.name, nil
}

// EnsureBuckets creates any configured bucket that does not exist yet.
// Call this during local development startup.
func (s *S3DocumentStorage) EnsureBuckets(ctx context.Context) error {
	for id, b := range s.buckets {
		_, err := b.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(b.name)})
		if err == nil {
			continue
		}
		var notFound *types.NotFound
		var noSuchBucket *types.NoSuchBucket
		if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
			return fmt.Errorf("failed to check bucket %s: %w", id, err)
		}

		s.logger.Info("Creating storage bucket", zap.String("bucket_id", id), zap.String("bucket", b.name))
		_, err = b.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(b.name)})
		if err != nil {
			var alreadyOwned *types.BucketAlreadyOwnedByYou
			if errors.As(err, &alreadyOwned) {
				continue
			}
			return fmt.Errorf("failed to create bucket %s: %w", id, err)
		}
	}
	return nil
}

// SignUploadURL generates a presigned PUT URL valid for the presign expiration
func (s *S3DocumentStorage) SignUploadURL(ctx context.Context, bucketID, key string) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}
	b, err := s.bucket(bucketID)
	if err != nil {
		return "", err
	}
	req, err := b.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.presignExpiration))
	if err != nil {
		return "", fmt.Errorf("failed to generate upload URL: %w", err)
	}
	return req.URL, nil
}

// SignDownloadURL generates a presigned GET URL valid for the presign expiration
func (s *S3DocumentStorage) SignDownloadURL(ctx context.Context, bucketID, key string) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}
	b, err := s.bucket(bucketID)
	if err != nil {
		return "", err
	}
	req, err := b.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.presignExpiration))
	if err != nil {
		return "", fmt.Errorf("failed to generate download URL: %w", err)
	}
	return req.URL, nil
}

// Open streams an object. The caller must close the returned reader.
func (s *S3DocumentStorage) Open(ctx context.Context, bucketID, key string) (io.ReadCloser, error) {
	if key == "" {
		return nil, errors.New("storage key is required")
	}
	b, err := s.bucket(bucketID)
	if err != nil {
		return nil, err
	}
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	return out.Body, nil
}

// Delete removes an object. Deleting a missing object succeeds.
func (s *S3DocumentStorage) Delete(ctx context.Context, bucketID, key string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	b, err := s.bucket(bucketID)
	if err != nil {
		return err
	}
	_, err = b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	s.logger.Debug("Deleted object", zap.String("bucket_id", bucketID), zap.String("key", key))
	return nil
}

// Upload writes data directly, used by management commands and local tooling
func (s *S3DocumentStorage) Upload(ctx context.Context, bucketID, key string, data []byte, contentType string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	b, err := s.bucket(bucketID)
	if err != nil {
		return err
	}
	_, err = b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.name),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}
	return nil
}
