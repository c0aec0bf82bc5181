package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hupe1980/segmenter/blobstore"
	"github.com/hupe1980/segmenter/blobstore/minio"
	"github.com/hupe1980/segmenter/blobstore/s3"
	"github.com/hupe1980/segmenter/internal/config"
)

// openStore resolves the input section to a store and the blob name within it.
// For object stores a path ending in "/" is a prefix; see dataset.IsPrefix.
func openStore(ctx context.Context, in config.InputConfig) (blobstore.BlobStore, string, error) {
	switch in.Store {
	case "local":
		abs, err := filepath.Abs(in.Path)
		if err != nil {
			return nil, "", err
		}
		// A directory loads every file below it.
		if fi, err := os.Stat(abs); err == nil && fi.IsDir() {
			return blobstore.NewLocalStore(abs), "", nil
		}
		return blobstore.NewLocalStore(filepath.Dir(abs)), filepath.Base(abs), nil
	case "s3":
		var opts []s3.Option
		if in.Prefix != "" {
			opts = append(opts, s3.WithPrefix(in.Prefix))
		}
		if in.Region != "" {
			opts = append(opts, s3.WithRegion(in.Region))
		}
		if in.Endpoint != "" {
			opts = append(opts, s3.WithEndpoint(in.Endpoint))
		}
		store, err := s3.New(ctx, in.Bucket, opts...)
		if err != nil {
			return nil, "", fmt.Errorf("s3: %w", err)
		}
		return store, in.Path, nil
	case "minio":
		opts := []minio.Option{minio.WithPrefix(in.Prefix), minio.WithSecure(in.Secure)}
		if in.Region != "" {
			opts = append(opts, minio.WithRegion(in.Region))
		}
		if in.AccessKey != "" {
			opts = append(opts, minio.WithStaticCredentials(in.AccessKey, in.SecretKey))
		}
		store, err := minio.New(in.Endpoint, in.Bucket, opts...)
		if err != nil {
			return nil, "", fmt.Errorf("minio: %w", err)
		}
		return store, in.Path, nil
	default:
		return nil, "", fmt.Errorf("unknown store %q", in.Store)
	}
}
