package publisher

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/shopthelook/scout/internal/scouterrors"
)

// MinioConfig holds connection settings for a self-hosted MinIO publisher.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	URLExpiry time.Duration
}

// MinioPublisher stores images in a MinIO bucket and returns presigned GET
// URLs. The URL is public while unexpired, which is all the product-search
// service needs.
type MinioPublisher struct {
	client    *minio.Client
	bucket    string
	urlExpiry time.Duration
}

// Ensure MinioPublisher implements Publisher interface
var _ Publisher = (*MinioPublisher)(nil)

// NewMinioPublisher creates a MinIO-backed publisher and ensures the bucket
// exists. Fails fast with a ConfigurationError when connection settings are
// blank, before any network call.
func NewMinioPublisher(ctx context.Context, cfg MinioConfig) (*MinioPublisher, error) {
	if cfg.Endpoint == "" {
		return nil, scouterrors.NewConfigurationError("MINIO_ENDPOINT", "")
	}

	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, scouterrors.NewConfigurationError("MINIO_ACCESS_KEY", "MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required but not set")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}

	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
	}

	expiry := cfg.URLExpiry
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}

	return &MinioPublisher{
		client:    client,
		bucket:    cfg.Bucket,
		urlExpiry: expiry,
	}, nil
}

// Publish stores the image under a fresh object key and returns a presigned
// URL. Each call creates a distinct object, matching the hosting contract.
func (p *MinioPublisher) Publish(ctx context.Context, imageID string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("publish %s: image is empty", imageID)
	}

	key := uuid.Must(uuid.NewV7()).String() + "-" + imageID

	_, err := p.client.PutObject(ctx, p.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: http.DetectContentType(data),
	})
	if err != nil {
		return "", uploadErrorFromMinio(err)
	}

	u, err := p.client.PresignedGetObject(ctx, p.bucket, key, p.urlExpiry, nil)
	if err != nil {
		return "", uploadErrorFromMinio(err)
	}

	return u.String(), nil
}

// uploadErrorFromMinio maps a MinIO error response to the upload taxonomy,
// keeping the server's status code when one exists.
func uploadErrorFromMinio(err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.StatusCode != 0 {
		return scouterrors.NewUploadError(resp.StatusCode, resp.Message)
	}

	return fmt.Errorf("minio upload: %w", err)
}
