package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/Aman-Dixit07/Student-lms/internal/platform/config"
	"github.com/Aman-Dixit07/Student-lms/internal/platform/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOStore writes media objects to an S3 compatible bucket and hands back public URLs.
type MinIOStore struct {
	client    *minio.Client
	bucket    string
	region    string
	publicURL string
	log       *logger.Logger

	ensureMu      sync.Mutex
	bucketEnsured bool
}

func NewMinIOStore(ctx context.Context, cfg config.StorageConfig, log *logger.Logger) (*MinIOStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	store := &MinIOStore{
		client:    client,
		bucket:    cfg.Bucket,
		region:    cfg.Region,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
		log:       log.With("component", "minio", "bucket", cfg.Bucket),
	}

	// Storage may still be starting; uploads retry the bucket check on demand.
	bootCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := store.ensureBucket(bootCtx); err != nil {
		store.log.Warn("object storage not ready at startup", "endpoint", cfg.Endpoint, "error", err)
	}
	return store, nil
}

func (s *MinIOStore) ensureBucket(ctx context.Context) error {
	s.ensureMu.Lock()
	defer s.ensureMu.Unlock()
	if s.bucketEnsured {
		return nil
	}

	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		s.log.Info("created media bucket")
	}
	s.bucketEnsured = true
	return nil
}

// Put stores the object under key and returns its durable URL.
func (s *MinIOStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return "", err
	}
	info, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("MinIOStore.Put: %w", err)
	}
	s.log.Debug("stored media object", "key", info.Key, "size", info.Size)
	return s.URL(key), nil
}

func (s *MinIOStore) URL(key string) string {
	return s.publicURL + "/" + s.bucket + "/" + key
}

func (s *MinIOStore) Ping(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, s.bucket)
	return err
}
