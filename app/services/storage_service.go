package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// StorageService is the durable storage gateway. The production backend is
// Cloudflare R2, which is S3-compatible behind a per-account endpoint.
type StorageService interface {
	IsAvailable() bool
	Upload(ctx context.Context, key string, content []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// R2Config holds the credentials and addressing for a bucket.
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicURL       string
}

type R2StorageService struct {
	client     *s3.Client
	bucketName string
	publicURL  string
}

// NewR2StorageService builds the gateway. With incomplete credentials it
// returns a non-nil service whose IsAvailable reports false; callers are
// expected to fall back to local storage.
func NewR2StorageService(ctx context.Context, cfg R2Config) (*R2StorageService, error) {
	svc := &R2StorageService{
		bucketName: cfg.BucketName,
		publicURL:  strings.TrimRight(cfg.PublicURL, "/"),
	}

	if cfg.AccountID == "" || cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		log.Printf("R2 credentials not provided, file uploads will use local storage")
		return svc, nil
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize R2 client: %w", err)
	}

	svc.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	log.Printf("R2 client initialized for bucket: %s", cfg.BucketName)
	return svc, nil
}

// IsAvailable reports whether the gateway can serve uploads.
func (s *R2StorageService) IsAvailable() bool {
	return s.client != nil && s.bucketName != "" && s.publicURL != ""
}

// Upload puts an object and returns its public URL.
func (s *R2StorageService) Upload(ctx context.Context, key string, content []byte, contentType string) (string, error) {
	if !s.IsAvailable() {
		return "", errors.New("R2 service not available")
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("R2 upload failed: %w", err)
	}

	url := s.publicURL + "/" + key
	log.Printf("File uploaded to R2: %s", url)
	return url, nil
}

// Delete removes an object.
func (s *R2StorageService) Delete(ctx context.Context, key string) error {
	if !s.IsAvailable() {
		return errors.New("R2 service not available")
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("R2 delete failed: %w", err)
	}

	log.Printf("File deleted from R2: %s", key)
	return nil
}

// Exists checks whether an object is present.
func (s *R2StorageService) Exists(ctx context.Context, key string) (bool, error) {
	if !s.IsAvailable() {
		return false, errors.New("R2 service not available")
	}

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("error checking file existence: %w", err)
	}
	return true, nil
}

// PresignedURL generates a temporary access URL for a private object. Public
// buckets normally serve straight off PublicURL and never need this.
func (s *R2StorageService) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if !s.IsAvailable() {
		return "", errors.New("R2 service not available")
	}

	presigner := s3.NewPresignClient(s.client)
	req, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return req.URL, nil
}
