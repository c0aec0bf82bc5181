// Package minio provides a BlobStore backed by the MinIO client.
//
// It reads from MinIO and other S3-compatible systems without the AWS SDK.
//
//	store, err := minio.New("localhost:9000", "customers",
//	    minio.WithPrefix("datasets/"),
//	    minio.WithStaticCredentials("minioadmin", "minioadmin"),
//	)
//	if err != nil {
//	    return err
//	}
//	ds, stats, err := dataset.Load(ctx, store, "2024.csv.gz", dataset.Options{})
package minio
