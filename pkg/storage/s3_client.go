package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrObjectNotFound is returned by Download when the key does not exist
var ErrObjectNotFound = errors.New("object not found")

// S3Client is the archive surface the backend needs from object storage
type S3Client interface {
	Upload(ctx context.Context, bucket, key, contentType string, body io.Reader) error
	Download(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, bucket, key string) error
	GetPresignedURL(ctx context.Context, bucket, key string, expiration time.Duration) (string, error)
}

// LoadAWSConfig resolves an aws.Config for region. Static keys are used when
// both are set; otherwise the default provider chain applies.
func LoadAWSConfig(ctx context.Context, region, accessKeyID, secretAccessKey string) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if accessKeyID != "" && secretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load aws config: %w", err)
	}
	return cfg, nil
}

type s3Client struct {
	client    *s3.Client
	uploader  *manager.Uploader
	presigner *s3.PresignClient
}

// NewS3Client builds an S3Client backed by the AWS SDK
func NewS3Client(cfg aws.Config) S3Client {
	client := s3.NewFromConfig(cfg)
	return &s3Client{
		client:    client,
		uploader:  manager.NewUploader(client),
		presigner: s3.NewPresignClient(client),
	}
}

func (c *s3Client) Upload(ctx context.Context, bucket, key, contentType string, body io.Reader) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := c.uploader.Upload(ctx, input); err != nil {
		return fmt.Errorf("upload s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}

func (c *s3Client) Download(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	out, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("download s3://%s/%s: %w", bucket, key, err)
	}
	return out.Body, nil
}

func (c *s3Client) Delete(ctx context.Context, bucket, key string) error {
	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}

func (c *s3Client) GetPresignedURL(ctx context.Context, bucket, key string, expiration time.Duration) (string, error) {
	req, err := c.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiration))
	if err != nil {
		return "", fmt.Errorf("presign s3://%s/%s: %w", bucket, key, err)
	}
	return req.URL, nil
}

// Object is a stored blob held by MemoryS3Client
type Object struct {
	ContentType string
	Body        []byte
}

// MemoryS3Client keeps objects in process. Used in development when no
// archive bucket is configured, and in tests.
type MemoryS3Client struct {
	mu      sync.RWMutex
	objects map[string]Object
}

// NewMemoryS3Client returns an empty in-memory client
func NewMemoryS3Client() *MemoryS3Client {
	return &MemoryS3Client{objects: make(map[string]Object)}
}

func objectPath(bucket, key string) string {
	return bucket + "/" + key
}

func (c *MemoryS3Client) Upload(ctx context.Context, bucket, key, contentType string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.objects[objectPath(bucket, key)] = Object{ContentType: contentType, Body: data}
	return nil
}

func (c *MemoryS3Client) Download(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	obj, ok := c.objects[objectPath(bucket, key)]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(obj.Body)), nil
}

func (c *MemoryS3Client) Delete(ctx context.Context, bucket, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.objects, objectPath(bucket, key))
	return nil
}

func (c *MemoryS3Client) GetPresignedURL(ctx context.Context, bucket, key string, expiration time.Duration) (string, error) {
	c.mu.RLock()
	_, ok := c.objects[objectPath(bucket, key)]
	c.mu.RUnlock()
	if !ok {
		return "", ErrObjectNotFound
	}
	return fmt.Sprintf("memory://%s/%s?expires=%d", bucket, url.PathEscape(key), int64(expiration.Seconds())), nil
}

// Object returns a stored object and whether it exists
func (c *MemoryS3Client) Object(bucket, key string) (Object, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	obj, ok := c.objects[objectPath(bucket, key)]
	return obj, ok
}

// Keys lists stored object keys for bucket
func (c *MemoryS3Client) Keys(bucket string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	prefix := bucket + "/"
	var keys []string
	for path := range c.objects {
		if key, ok := strings.CutPrefix(path, prefix); ok {
			keys = append(keys, key)
		}
	}
	return keys
}
