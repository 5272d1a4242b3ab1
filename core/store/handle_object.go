package store

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"consent-manager/core/storage"

	"github.com/minio/minio-go/v7"
)

// ObjectHandle stores each key as an object in a bucket.
type ObjectHandle struct {
	client storage.Client
	bucket string
	prefix string
}

// NewObjectHandle creates a handle writing objects under prefix.
func NewObjectHandle(client storage.Client, bucket, prefix string) *ObjectHandle {
	return &ObjectHandle{client: client, bucket: bucket, prefix: prefix}
}

func (h *ObjectHandle) objectName(key string) string {
	if h.prefix == "" {
		return key
	}
	return path.Join(h.prefix, key)
}

func isNotFound(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NoSuchObject"
}

func (h *ObjectHandle) GetItem(ctx context.Context, key string) (string, bool, error) {
	reader, err := h.client.GetObject(ctx, h.bucket, h.objectName(key), minio.GetObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	defer reader.Close()

	// minio returns the object lazily; a missing key surfaces on read
	data, err := io.ReadAll(reader)
	if err != nil {
		if isNotFound(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return string(data), true, nil
}

func (h *ObjectHandle) SetItem(ctx context.Context, key, value string) error {
	_, err := h.client.PutObject(
		ctx,
		h.bucket,
		h.objectName(key),
		strings.NewReader(value),
		int64(len(value)),
		minio.PutObjectOptions{ContentType: "text/plain"},
	)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (h *ObjectHandle) RemoveItem(ctx context.Context, key string) error {
	err := h.client.RemoveObject(ctx, h.bucket, h.objectName(key), minio.RemoveObjectOptions{})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}
