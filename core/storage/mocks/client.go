// Package mocks provides a testify double of storage.Client for catalog,
// consent blob and bucket layout tests.
package mocks

import (
	"context"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/mock"
)

// Client is a testify mock of storage.Client.
type Client struct {
	mock.Mock
}

// Listing returns a closed channel yielding one ObjectInfo per key.
func Listing(keys ...string) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(keys))
	for _, key := range keys {
		ch <- minio.ObjectInfo{Key: key}
	}
	close(ch)
	return ch
}

// ServeObject stubs GetObject to return body for bucket/key.
func (m *Client) ServeObject(bucket, key, body string) *mock.Call {
	return m.On("GetObject", mock.Anything, bucket, key, mock.Anything).
		Return(io.NopCloser(strings.NewReader(body)), nil)
}

// MissingObject stubs GetObject to answer NoSuchKey for bucket/key.
func (m *Client) MissingObject(bucket, key string) *mock.Call {
	return m.On("GetObject", mock.Anything, bucket, key, mock.Anything).
		Return(nil, minio.ErrorResponse{Code: "NoSuchKey", Key: key, BucketName: bucket})
}

func (m *Client) BucketExists(ctx context.Context, bucket string) (bool, error) {
	args := m.Called(ctx, bucket)
	return args.Bool(0), args.Error(1)
}

func (m *Client) MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error {
	return m.Called(ctx, bucket, opts).Error(0)
}

func (m *Client) PutObject(ctx context.Context, bucket, key string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	args := m.Called(ctx, bucket, key, reader, size, opts)
	return args.Get(0).(minio.UploadInfo), args.Error(1)
}

func (m *Client) GetObject(ctx context.Context, bucket, key string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	args := m.Called(ctx, bucket, key, opts)
	body, _ := args.Get(0).(io.ReadCloser)
	return body, args.Error(1)
}

func (m *Client) ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	args := m.Called(ctx, bucket, opts)
	if ch, ok := args.Get(0).(<-chan minio.ObjectInfo); ok {
		return ch
	}
	return Listing()
}

func (m *Client) RemoveObject(ctx context.Context, bucket, key string, opts minio.RemoveObjectOptions) error {
	return m.Called(ctx, bucket, key, opts).Error(0)
}
