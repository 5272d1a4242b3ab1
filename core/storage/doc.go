// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind the Client interface so that both AWS S3
// and self-hosted MinIO can be used. The consent server reads service catalogs
// from a bucket and can keep consent blobs there through the "object" storage
// method.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it easier
// to mock storage interactions for unit testing (as seen in core/storage/mocks).
//
// # Operations
//
//   - BucketExists: Verifies access to the target bucket.
//   - MakeBucket: Creates a new bucket if needed.
//   - PutObject: Uploads content (with size and options).
//   - GetObject: Retrieves content as a stream.
//   - RemoveObject: Deletes a single object.
//   - ListObjects: Lists objects in a bucket (supports prefix/recursive).
//
// EnsureBucket creates the configured bucket on startup when it is missing.
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	exists, err := client.BucketExists(ctx, "consents")
package storage
