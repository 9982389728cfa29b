package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/errs"
)

// maxImageBytes caps a decoded upload.
const maxImageBytes = 5 << 20

var imageExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// ImageStore persists image bytes and hands back a public reference.
type ImageStore interface {
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, ref string) error
}

// S3ImageStore uploads images to a bucket and references them by public URL.
type S3ImageStore struct {
	s3 *config.S3Config
}

func NewS3ImageStore(cfg *config.S3Config) *S3ImageStore {
	return &S3ImageStore{s3: cfg}
}

func (s *S3ImageStore) Save(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.s3.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image to S3: %w", err)
	}
	return s.s3.ObjectURL(key), nil
}

func (s *S3ImageStore) Delete(ctx context.Context, ref string) error {
	key, ok := s.s3.ObjectKey(ref)
	if !ok {
		return nil
	}
	_, err := s.s3.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.s3.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete image from S3: %w", err)
	}
	return nil
}

// LocalImageStore writes images under a directory served at baseURL.
type LocalImageStore struct {
	dir     string
	baseURL string
}

func NewLocalImageStore(dir, baseURL string) *LocalImageStore {
	return &LocalImageStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *LocalImageStore) Save(_ context.Context, key string, data []byte, _ string) (string, error) {
	path := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return s.baseURL + "/" + key, nil
}

func (s *LocalImageStore) Delete(_ context.Context, ref string) error {
	key := strings.TrimPrefix(ref, s.baseURL+"/")
	if key == ref || strings.Contains(key, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(key)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

// ImageService turns base64 data URIs from recipe payloads into stored images.
type ImageService struct {
	store ImageStore
}

func NewImageService(store ImageStore) *ImageService {
	return &ImageService{store: store}
}

// IsDataURI reports whether value carries inline image data.
func IsDataURI(value string) bool {
	return strings.HasPrefix(value, "data:")
}

// StoreDataURI decodes a "data:image/...;base64," payload, checks that the
// bytes are an image and stores them under recipes/.
func (s *ImageService) StoreDataURI(ctx context.Context, dataURI string) (string, error) {
	header, payload, ok := strings.Cut(dataURI, ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return "", errs.Validation("image", "image must be a base64 data URI")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", errs.Validation("image", "image is not valid base64")
	}
	if len(data) == 0 || len(data) > maxImageBytes {
		return "", errs.Validation("image", fmt.Sprintf("image must be between 1 byte and %d MB", maxImageBytes>>20))
	}

	contentType := http.DetectContentType(data)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", errs.Validation("image", "image must be a PNG, JPEG, GIF or WebP file")
	}

	key := fmt.Sprintf("recipes/%s.%s", uuid.NewString(), ext)
	ref, err := s.store.Save(ctx, key, data, contentType)
	if err != nil {
		return "", err
	}
	log.Debug().Str("component", "images").Str("key", key).Int("bytes", len(data)).Msg("stored image")
	return ref, nil
}

// Remove deletes a stored image, logging instead of failing.
func (s *ImageService) Remove(ctx context.Context, ref string) {
	if ref == "" {
		return
	}
	if err := s.store.Delete(ctx, ref); err != nil {
		log.Warn().Err(err).Str("component", "images").Str("ref", ref).Msg("failed to remove image")
	}
}
