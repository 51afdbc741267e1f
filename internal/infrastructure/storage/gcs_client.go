package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"tokoaing/internal/domain/service"
	"tokoaing/pkg/logger"
)

const publicURLPrefix = "https://storage.googleapis.com/"

// CloudStorageClient keeps catalog images in one public bucket. Objects are immutable: a new
// image gets a new name, so cached URLs never show stale content.
type CloudStorageClient struct {
	client *storage.Client
	bucket string
}

func NewCloudStorageClient(ctx context.Context, bucket string, opts ...option.ClientOption) (*CloudStorageClient, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	c := &CloudStorageClient{client: client, bucket: bucket}
	if err := c.ensureReadCORS(ctx); err != nil {
		logger.Warn("Bucket %s: could not check CORS: %v", bucket, err)
	}

	return c, nil
}

var _ service.FileUploadService = (*CloudStorageClient)(nil)

// ensureReadCORS lets browsers fetch images cross-origin. Existing rules are left alone.
func (c *CloudStorageClient) ensureReadCORS(ctx context.Context) error {
	bucket := c.client.Bucket(c.bucket)

	attrs, err := bucket.Attrs(ctx)
	if err != nil {
		return err
	}
	if len(attrs.CORS) > 0 {
		return nil
	}

	_, err = bucket.Update(ctx, storage.BucketAttrsToUpdate{
		CORS: []storage.CORS{{
			MaxAge:          3600,
			Methods:         []string{"GET", "HEAD"},
			Origins:         []string{"*"},
			ResponseHeaders: []string{"Content-Type"},
		}},
	})
	return err
}

// ObjectName builds "<folder>/<uuid v7><ext>" so names sort by upload time.
func ObjectName(folder, contentType string) string {
	ext := mimetype.Lookup(contentType)
	suffix := ".bin"
	if ext != nil && ext.Extension() != "" {
		suffix = ext.Extension()
	}

	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return path.Join(strings.Trim(folder, "/"), id.String()+suffix)
}

// PublicURL is the anonymous download URL of an object.
func PublicURL(bucket, object string) string {
	return publicURLPrefix + bucket + "/" + object
}

// ParseObjectURL splits a public URL back into bucket and object name.
func ParseObjectURL(fileURL string) (bucket, object string, err error) {
	if !strings.HasPrefix(fileURL, publicURLPrefix) {
		return "", "", fmt.Errorf("not a Cloud Storage URL: %s", fileURL)
	}
	parts := strings.SplitN(strings.TrimPrefix(fileURL, publicURLPrefix), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("malformed Cloud Storage URL: %s", fileURL)
	}
	return parts[0], parts[1], nil
}

// UploadFile stores file as a public object under folder and returns its URL.
func (c *CloudStorageClient) UploadFile(ctx context.Context, file io.Reader, fileType, folder string) (string, error) {
	name := ObjectName(folder, fileType)

	obj := c.client.Bucket(c.bucket).Object(name)
	w := obj.NewWriter(ctx)
	w.ContentType = fileType
	w.CacheControl = "public, max-age=31536000, immutable"
	w.PredefinedACL = "publicRead"

	if _, err := io.Copy(w, file); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finish %s: %w", name, err)
	}

	logger.Debug("Stored %s (%s)", name, fileType)
	return PublicURL(c.bucket, name), nil
}

// DeleteFile removes the object behind fileURL. An already missing object is not an error.
func (c *CloudStorageClient) DeleteFile(ctx context.Context, fileURL string) error {
	bucket, object, err := ParseObjectURL(fileURL)
	if err != nil {
		return err
	}
	if bucket != c.bucket {
		return fmt.Errorf("object belongs to bucket %s, not %s", bucket, c.bucket)
	}

	err = c.client.Bucket(c.bucket).Object(object).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete %s: %w", object, err)
	}
	return nil
}

func (c *CloudStorageClient) Close() error {
	return c.client.Close()
}
