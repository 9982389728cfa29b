package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds S3 client and bucket info
type S3Config struct {
	Client     *s3.Client
	BucketName string
	PublicURL  string
}

// NewS3Config initializes the S3 client. Credentials come from the default
// AWS chain (environment, shared config or instance role).
func NewS3Config(ctx context.Context, cfg *Config) (*S3Config, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.S3Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	publicURL := cfg.S3PublicURL
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.S3Region)
	}

	return &S3Config{
		Client:     s3.NewFromConfig(awsCfg),
		BucketName: cfg.S3Bucket,
		PublicURL:  strings.TrimRight(publicURL, "/"),
	}, nil
}

// ObjectURL returns the public URL of an object key.
func (s *S3Config) ObjectURL(key string) string {
	return s.PublicURL + "/" + strings.TrimLeft(key, "/")
}

// ObjectKey is the inverse of ObjectURL. ok is false for URLs outside the bucket.
func (s *S3Config) ObjectKey(url string) (key string, ok bool) {
	prefix := s.PublicURL + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}
