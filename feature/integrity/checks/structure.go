package checks

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"consent-manager/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Folders returns the prefixes that must exist in the bucket, skipping empty
// ones and duplicates.
func Folders(prefixes ...string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range prefixes {
		p = strings.Trim(p, "/")
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// CheckStructure returns the folders missing from the bucket.
func CheckStructure(ctx context.Context, client storage.Client, bucket string, folders []string) ([]string, error) {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist", bucket)
	}

	var missing []string
	for _, folder := range folders {
		opts := minio.ListObjectsOptions{
			Prefix:  folder + "/",
			MaxKeys: 1,
		}

		found := false
		for range client.ListObjects(ctx, bucket, opts) {
			found = true
			break
		}
		if !found {
			missing = append(missing, folder)
		}
	}
	return missing, nil
}

// FixStructure creates the missing folders as empty marker objects.
func FixStructure(ctx context.Context, client storage.Client, bucket string, logger *zap.Logger, missing []string) error {
	for _, folder := range missing {
		_, err := client.PutObject(ctx, bucket, folder+"/", bytes.NewReader(nil), 0, minio.PutObjectOptions{})
		if err != nil {
			logger.Error("Failed to create folder", zap.String("folder", folder), zap.Error(err))
			return err
		}
		logger.Info("Created missing folder", zap.String("folder", folder))
	}
	return nil
}
