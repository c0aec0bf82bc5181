// Package blobstore provides read access to dataset files wherever they live.
//
// BlobStore is the interface the dataset loader reads through.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, files are mmap'ed read-only
//   - MemoryStore: in-memory blobs
//   - s3.Store: Amazon S3 with ranged reads and parallel downloads
//   - minio.Store: MinIO and other S3-compatible stores
//
// # Reading
//
// NewReader turns any Blob into a sequential reader, preferring zero-copy
// access for mapped blobs and a single stream for remote ones:
//
//	blob, err := store.Open(ctx, "customers.txt.zst")
//	if err != nil { ... }
//	defer blob.Close()
//
//	r, err := blobstore.NewReader(ctx, blob)
package blobstore
