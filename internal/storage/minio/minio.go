// Package minio stores uploads in an S3-compatible bucket.
package minio

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/utafrali/devcamper/internal/storage"
)

// Config locates the bucket.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL prefixes object keys in returned URLs. Defaults to the bucket's endpoint URL.
	PublicURL string
}

// ObjectAPI is the part of *minio.Client the driver uses.
type ObjectAPI interface {
	PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucket, object string, opts minio.RemoveObjectOptions) error
	StatObject(ctx context.Context, bucket, object string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
}

// Storage implements storage.Storage on a MinIO or S3 bucket.
type Storage struct {
	api       ObjectAPI
	bucket    string
	publicURL string
}

// New connects to the endpoint and creates the bucket when it does not exist.
func New(ctx context.Context, cfg Config) (*Storage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		publicURL = storage.JoinURL(client.EndpointURL().String(), cfg.Bucket)
	}
	return NewWithClient(ctx, client, cfg.Bucket, publicURL)
}

// NewWithClient uses an existing client.
func NewWithClient(ctx context.Context, api ObjectAPI, bucket, publicURL string) (*Storage, error) {
	exists, err := api.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := api.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", bucket, err)
		}
	}
	return &Storage{api: api, bucket: bucket, publicURL: publicURL}, nil
}

// Upload puts the object, replacing any previous version.
func (s *Storage) Upload(ctx context.Context, input *storage.UploadInput) (*storage.UploadResult, error) {
	if err := storage.ValidateKey(input.Key); err != nil {
		return nil, err
	}

	size := input.Size
	if size <= 0 {
		size = -1
	}
	if _, err := s.api.PutObject(ctx, s.bucket, input.Key, input.Data, size, minio.PutObjectOptions{
		ContentType: input.ContentType,
	}); err != nil {
		return nil, fmt.Errorf("put object %s: %w", input.Key, err)
	}

	return &storage.UploadResult{Key: input.Key, URL: storage.JoinURL(s.publicURL, input.Key)}, nil
}

// Delete removes an object.
func (s *Storage) Delete(ctx context.Context, key string) error {
	if err := s.api.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s: %w", key, err)
	}
	return nil
}

// GetURL returns the public URL of an existing object.
func (s *Storage) GetURL(ctx context.Context, key string) (string, error) {
	if _, err := s.api.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return "", fmt.Errorf("%w: %s", storage.ErrNotFound, key)
		}
		return "", fmt.Errorf("stat object %s: %w", key, err)
	}
	return storage.JoinURL(s.publicURL, key), nil
}

// Ping checks that the bucket is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	if _, err := s.api.BucketExists(ctx, s.bucket); err != nil {
		return fmt.Errorf("minio bucket %s: %w", s.bucket, err)
	}
	return nil
}
