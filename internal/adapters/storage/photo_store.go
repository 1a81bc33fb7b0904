package storage

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"societygate/internal/config"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// PhotoStore keeps visitor photos in S3-compatible object storage. Photos are
// evidence attached to the entry log, so objects are write-once and never
// overwritten.
type PhotoStore struct {
	client *minio.Client
	cfg    config.StorageConfig
}

// NewPhotoStore connects to the object store and ensures the bucket exists
func NewPhotoStore(ctx context.Context, cfg config.StorageConfig) (*PhotoStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}

	store := &PhotoStore{client: client, cfg: cfg}
	if err := store.ensureBucket(ctx); err != nil {
		return nil, err
	}

	log.Printf("✅ Photo store connected [%s/%s]", cfg.Endpoint, cfg.Bucket)
	return store, nil
}

// ensureBucket creates the photo bucket if it does not exist
func (s *PhotoStore) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	log.Printf("✅ Bucket created: %s", s.cfg.Bucket)
	return nil
}

// UploadVisitorPhoto stores one photo and returns its public URL. Object keys
// are date-prefixed so the bucket stays browsable by day.
func (s *PhotoStore) UploadVisitorPhoto(ctx context.Context, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext == "" {
		ext = ".jpg"
	}
	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	objectKey := fmt.Sprintf("%s/%s%s", time.Now().Format("2006-01-02"), uuid.New().String(), ext)

	_, err = s.client.PutObject(ctx, s.cfg.Bucket, objectKey, src, file.Size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to store photo: %w", err)
	}

	return s.publicURL(objectKey), nil
}

// publicURL builds the URL stored on the visitor record
func (s *PhotoStore) publicURL(objectKey string) string {
	if s.cfg.PublicURL != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.cfg.PublicURL, "/"), s.cfg.Bucket, objectKey)
	}
	scheme := "http"
	if s.cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.cfg.Endpoint, s.cfg.Bucket, objectKey)
}
