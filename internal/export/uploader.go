// Package export writes downloaded reports to disk and, when object storage
// is configured, uploads them to an S3-compatible bucket for sharing.
// With an empty bucket the NoopUploader is used and reports stay local.
package export

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/p2sg/wiseinvestor/internal/config"
)

// ErrNotConfigured is returned when report storage is not configured.
var ErrNotConfigured = errors.New("report storage not configured")

// Uploader uploads exported reports and generates pre-signed download URLs.
type Uploader interface {
	// Upload stores the file at filePath and returns its object key.
	Upload(ctx context.Context, orgID, filename, filePath, contentType string) (key string, err error)

	// PresignedURL returns a pre-signed URL for downloading the object.
	// Returns ErrNotConfigured when storage is not configured.
	PresignedURL(ctx context.Context, key string) (url string, expiry time.Time, err error)
}

// s3Client defines the minimal minio.Client operations used by S3Uploader.
type s3Client interface {
	FPutObject(ctx context.Context, bucket, objectName, filePath, contentType string) error
	PresignedGetObject(ctx context.Context, bucket, objectName string, expiry time.Duration) (*url.URL, error)
}

// minioClientWrapper adapts *minio.Client to s3Client.
type minioClientWrapper struct {
	client *minio.Client
}

func (w *minioClientWrapper) FPutObject(ctx context.Context, bucket, objectName, filePath, contentType string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := w.client.FPutObject(ctx, bucket, objectName, filePath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (w *minioClientWrapper) PresignedGetObject(ctx context.Context, bucket, objectName string, expiry time.Duration) (*url.URL, error) {
	return w.client.PresignedGetObject(ctx, bucket, objectName, expiry, nil)
}

// S3Uploader uploads reports to S3-compatible storage.
type S3Uploader struct {
	client    s3Client
	bucket    string
	prefix    string
	urlExpiry time.Duration
	now       func() time.Time
}

// Upload uploads the report at filePath under {prefix}/{org}/{date}/{filename}.
func (u *S3Uploader) Upload(ctx context.Context, orgID, filename, filePath, contentType string) (string, error) {
	key := objectKey(u.prefix, orgID, u.now(), filename)
	if err := u.client.FPutObject(ctx, u.bucket, key, filePath, contentType); err != nil {
		return "", fmt.Errorf("upload report to S3: %w", err)
	}
	return key, nil
}

// PresignedURL returns a pre-signed GET URL for key.
func (u *S3Uploader) PresignedURL(ctx context.Context, key string) (string, time.Time, error) {
	presigned, err := u.client.PresignedGetObject(ctx, u.bucket, key, u.urlExpiry)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generate pre-signed URL: %w", err)
	}
	return presigned.String(), u.now().Add(u.urlExpiry), nil
}

// NoopUploader is used when report storage is not configured.
type NoopUploader struct{}

// Upload is a no-op and returns an empty key.
func (u *NoopUploader) Upload(ctx context.Context, orgID, filename, filePath, contentType string) (string, error) {
	return "", nil
}

// PresignedURL returns ErrNotConfigured.
func (u *NoopUploader) PresignedURL(ctx context.Context, key string) (string, time.Time, error) {
	return "", time.Time{}, ErrNotConfigured
}

// NewUploader creates the Uploader for cfg.
// Returns NoopUploader when bucket is empty, S3Uploader otherwise.
func NewUploader(cfg config.ExportConfig) (Uploader, error) {
	if cfg.Bucket == "" {
		return &NoopUploader{}, nil
	}

	useSSL := true
	if cfg.UseSSL != nil {
		useSSL = *cfg.UseSSL
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create S3 client: %w", err)
	}

	return &S3Uploader{
		client:    &minioClientWrapper{client: client},
		bucket:    cfg.Bucket,
		prefix:    cfg.Prefix,
		urlExpiry: time.Duration(cfg.URLExpiry),
		now:       time.Now,
	}, nil
}

// objectKey returns the object key for a report.
// Convention: {prefix}/{org_id}/{yyyy-mm-dd}/{filename}
func objectKey(prefix, orgID string, at time.Time, filename string) string {
	return path.Join(prefix, orgID, at.UTC().Format("2006-01-02"), filename)
}
