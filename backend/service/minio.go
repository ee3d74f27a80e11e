package service

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/AnTengye/contractdesk/backend/config"
)

// MinioStore keeps attachments in a MinIO bucket and hands out presigned
// download links.
type MinioStore struct {
	client *minio.Client
	bucket string
	config *config.MinioConfig
}

// NewMinioStore connects to the configured MinIO endpoint
func NewMinioStore(cfg *config.MinioConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &MinioStore{
		client: client,
		bucket: cfg.Bucket,
		config: cfg,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Put uploads r as object key
func (s *MinioStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload attachment: %w", err)
	}
	return nil
}

// Delete removes object key
func (s *MinioStore) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}
	return nil
}

// URL presigns a GET for key, valid for the configured number of days
func (s *MinioStore) URL(ctx context.Context, key string) (string, error) {
	params := url.Values{}
	params.Set("response-content-disposition", "attachment")
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, s.expiry(), params)
	if err != nil {
		return "", fmt.Errorf("failed to presign attachment: %w", err)
	}
	return u.String(), nil
}

func (s *MinioStore) expiry() time.Duration {
	days := s.config.ExpireDays
	if days <= 0 {
		days = 7
	}
	return time.Duration(days) * 24 * time.Hour
}
