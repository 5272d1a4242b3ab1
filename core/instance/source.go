package instance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"consent-manager/core/catalog"
	"consent-manager/core/storage"

	"github.com/minio/minio-go/v7"
	"golang.org/x/sync/singleflight"
)

// ErrConfigNotFound is returned when a source has no catalog under a name.
var ErrConfigNotFound = errors.New("config not found")

// formats are tried in order when resolving a catalog name.
var formats = []string{"yaml", "yml", "json"}

// Source loads named catalogs.
type Source interface {
	Load(ctx context.Context, name string) (*catalog.Config, error)
}

// FileSource loads catalogs from <dir>/<name>.<yaml|yml|json>.
type FileSource struct {
	dir string
}

// NewFileSource creates a source over a directory.
func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

func (s *FileSource) Load(_ context.Context, name string) (*catalog.Config, error) {
	for _, ext := range formats {
		p := filepath.Join(s.dir, name+"."+ext)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		return catalog.Load(p)
	}
	return nil, fmt.Errorf("%w: %s in %s", ErrConfigNotFound, name, s.dir)
}

// ObjectSource loads catalogs from <bucket>/<prefix>/<name>.<yaml|yml|json>.
// Concurrent loads of the same name share one fetch.
type ObjectSource struct {
	client storage.Client
	bucket string
	prefix string
	group  singleflight.Group
}

// NewObjectSource creates a source over an object storage prefix.
func NewObjectSource(client storage.Client, bucket, prefix string) *ObjectSource {
	return &ObjectSource{client: client, bucket: bucket, prefix: prefix}
}

func (s *ObjectSource) Load(ctx context.Context, name string) (*catalog.Config, error) {
	v, err, _ := s.group.Do(name, func() (any, error) {
		return s.fetch(ctx, name)
	})
	if err != nil {
		return nil, err
	}
	return v.(*catalog.Config), nil
}

func (s *ObjectSource) fetch(ctx context.Context, name string) (*catalog.Config, error) {
	for _, ext := range formats {
		objectName := path.Join(s.prefix, name+"."+ext)
		data, err := s.read(ctx, objectName)
		if err != nil {
			if minio.ToErrorResponse(err).Code == "NoSuchKey" {
				continue
			}
			return nil, fmt.Errorf("failed to fetch %s: %w", objectName, err)
		}
		return catalog.Parse(data, ext)
	}
	return nil, fmt.Errorf("%w: %s in %s/%s", ErrConfigNotFound, name, s.bucket, s.prefix)
}

func (s *ObjectSource) read(ctx context.Context, objectName string) ([]byte, error) {
	reader, err := s.client.GetObject(ctx, s.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(reader)
}
