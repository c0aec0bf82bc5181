package minio

import (
	"context"
	"io"

	"github.com/minio/minio-go/v7"
)

type blob struct {
	client *minio.Client
	bucket string
	key    string
	size   int64
	obj    *minio.Object
}

func (b *blob) Size() int64 { return b.size }

// ReadAt issues ranged requests through the object; minio serializes them.
func (b *blob) ReadAt(p []byte, off int64) (int, error) {
	if off >= b.size {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}
	return b.obj.ReadAt(p, off)
}

// Stream opens a second object so sequential reads don't disturb ReadAt.
func (b *blob) Stream(ctx context.Context) (io.ReadCloser, error) {
	obj, err := b.client.GetObject(ctx, b.bucket, b.key, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapError(err)
	}
	return obj, nil
}

func (b *blob) Close() error {
	return b.obj.Close()
}
