// Package s3 provides an Amazon S3 implementation of blobstore.BlobStore.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("datasets/"),
//	    s3.WithRegion("eu-central-1"),
//	)
//
//	ds, err := dataset.Load(ctx, store, "customers.txt.zst", dataset.Options{})
//
// # Features
//
//   - Range reads for random access
//   - Parallel multi-part downloads for whole-file streaming
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant layouts
package s3
