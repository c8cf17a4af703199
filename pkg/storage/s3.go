package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	pkglogger "github.com/campusmarket/campusmarket-backend/pkg/logger"
	"github.com/google/uuid"
)

// S3Store stores listing images in S3/R2/MinIO compatible storage
type S3Store struct {
	client   *s3.Client
	bucket   string
	cdnURL   string // optional CDN base URL
	basePath string // prefix for all objects (e.g. "images/")
}

// S3Config holds S3-compatible storage configuration
type S3Config struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	CDNURL          string
	BasePath        string
	ForcePathStyle  bool // true for MinIO/R2
}

// NewS3Store creates a new S3-compatible image store
func NewS3Store(cfg S3Config) (*S3Store, error) {
	opts := func(o *s3.Options) {
		o.Region = cfg.Region
		o.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	}

	client := s3.New(s3.Options{}, opts)

	pkglogger.GetLogger().Info().
		Str("bucket", cfg.Bucket).
		Str("endpoint", cfg.Endpoint).
		Msg("S3 image store initialized")

	return &S3Store{
		client:   client,
		bucket:   cfg.Bucket,
		cdnURL:   strings.TrimRight(cfg.CDNURL, "/"),
		basePath: cfg.BasePath,
	}, nil
}

// Save uploads an image and returns its public URL
func (c *S3Store) Save(ctx context.Context, key string, body io.Reader, contentType string, size int64) (string, error) {
	fullKey := c.basePath + key

	input := &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(fullKey),
		Body:        body,
		ContentType: aws.String(contentType),
	}

	if _, err := c.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("s3 upload failed: %w", err)
	}

	if c.cdnURL != "" {
		return c.cdnURL + "/" + fullKey, nil
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", c.bucket, fullKey), nil
}

// Remove deletes the object behind a previously returned URL
func (c *S3Store) Remove(ctx context.Context, url string) error {
	key := url
	if i := strings.Index(url, ".amazonaws.com/"); i >= 0 {
		key = url[i+len(".amazonaws.com/"):]
	} else if c.cdnURL != "" && strings.HasPrefix(url, c.cdnURL+"/") {
		key = strings.TrimPrefix(url, c.cdnURL+"/")
	}

	input := &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}

	if _, err := c.client.DeleteObject(ctx, input); err != nil {
		return fmt.Errorf("s3 delete failed: %w", err)
	}
	return nil
}

// GenerateKey creates a unique storage key preserving the file extension
func GenerateKey(filename string) string {
	ext := path.Ext(filename)
	return uuid.New().String() + ext
}
