package services

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"hrtools/resume-shortlister/internal/config"
	"hrtools/resume-shortlister/internal/models"
)

// StorageService is the gateway to the external blob store. Store validates
// content before anything is written; a single PutObject either fully
// succeeds or leaves nothing behind, so callers never reconcile partial
// uploads.
type StorageService interface {
	Store(ctx context.Context, jobFolder, fileName string, data []byte) (string, error)
	Fetch(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

type s3Storage struct {
	client      *s3.Client
	bucket      string
	maxFileSize int64
}

func NewStorageService(cfg *config.Config) (StorageService, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.Storage.AccessKey, cfg.Storage.SecretKey, "")),
		awsconfig.WithRegion(cfg.Storage.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
		}
	})

	return &s3Storage{
		client:      client,
		bucket:      cfg.Storage.Bucket,
		maxFileSize: cfg.Storage.MaxFileSize,
	}, nil
}

// Store implements StorageService.
func (s *s3Storage) Store(ctx context.Context, jobFolder, fileName string, data []byte) (string, error) {
	if int64(len(data)) > s.maxFileSize {
		return "", fmt.Errorf("%s is %d bytes, max %d: %w", fileName, len(data), s.maxFileSize, models.ErrTooLarge)
	}

	// Sniff the content; the file extension alone is never trusted.
	format, err := DetectFormat(data)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s/%s_%s", jobFolder, uuid.New().String(), fileName)

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(format.ContentType()),
	})
	if err != nil {
		return "", fmt.Errorf("failed to store %s: %v: %w", fileName, err, models.ErrStorageUnavailable)
	}

	return key, nil
}

// Fetch implements StorageService.
func (s *s3Storage) Fetch(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %v: %w", key, err, models.ErrStorageUnavailable)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %v: %w", key, err, models.ErrStorageUnavailable)
	}
	return data, nil
}

// Delete implements StorageService.
func (s *s3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %v: %w", key, err, models.ErrStorageUnavailable)
	}
	return nil
}
