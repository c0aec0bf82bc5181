package dataset

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/hupe1980/segmenter/blobstore"
	"github.com/hupe1980/segmenter/model"
	"github.com/hupe1980/segmenter/resource"
)

// Stats describes a completed load.
type Stats struct {
	Name string
	// Blobs is the number of blobs read; more than one for a prefix.
	Blobs int
	// Format and Compression are those of the first blob.
	Format      Format
	Compression Compression
	// StoredBytes is the blob size, ReadBytes the decompressed volume parsed.
	StoredBytes int64
	ReadBytes   int64
	Points      int
	Duration    time.Duration
}

// IsPrefix reports whether name selects every blob under a prefix: the
// empty name or one ending in "/".
func IsPrefix(name string) bool {
	return name == "" || strings.HasSuffix(name, "/")
}

// Load reads the named blob from store into a dataset. If name is a prefix
// (see IsPrefix) every blob listed under it is read in name order and the
// records are concatenated; all parts must share one dimension. Format and
// compression are detected per blob.
func Load(ctx context.Context, store blobstore.BlobStore, name string, opts Options) (*model.Dataset, *Stats, error) {
	if IsPrefix(name) {
		return loadPrefix(ctx, store, name, opts)
	}
	return loadBlob(ctx, store, name, opts)
}

func loadPrefix(ctx context.Context, store blobstore.BlobStore, prefix string, opts Options) (*model.Dataset, *Stats, error) {
	start := time.Now()

	names, err := store.List(ctx, prefix)
	if err != nil {
		return nil, nil, fmt.Errorf("list %q: %w", prefix, err)
	}

	var (
		points []model.Vector
		total  = &Stats{Name: prefix}
	)
	for _, name := range names {
		// Hidden files such as .DS_Store are not data.
		if strings.HasPrefix(path.Base(name), ".") {
			continue
		}
		ds, st, err := loadBlob(ctx, store, name, opts)
		if err != nil {
			return nil, nil, err
		}
		if total.Blobs == 0 {
			total.Format, total.Compression = st.Format, st.Compression
		}
		total.Blobs++
		total.StoredBytes += st.StoredBytes
		total.ReadBytes += st.ReadBytes
		points = append(points, ds.Points()...)
	}
	if total.Blobs == 0 {
		return nil, nil, fmt.Errorf("list %q: %w", prefix, blobstore.ErrNotFound)
	}

	ds, err := model.NewDataset(points)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", prefix, err)
	}
	total.Points = ds.Len()
	total.Duration = time.Since(start)
	return ds, total, nil
}

func loadBlob(ctx context.Context, store blobstore.BlobStore, name string, opts Options) (*model.Dataset, *Stats, error) {
	start := time.Now()

	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer blob.Close()

	raw, err := blobstore.NewReader(ctx, blob)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", name, err)
	}
	defer raw.Close()

	if opts.Format == FormatAuto {
		opts.Format = DetectFormat(name)
	}
	if opts.Compression == CompressionAuto {
		opts.Compression = DetectCompression(name)
	}

	limited := resource.NewRateLimitedReader(ctx, raw, opts.Resources)

	dec, codec, err := decompress(limited, opts.Compression)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", name, err)
	}
	defer dec.Close()

	counted := &countingReader{r: dec}

	ds, err := Read(ctx, counted, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", name, err)
	}

	return ds, &Stats{
		Name:        name,
		Blobs:       1,
		Format:      opts.Format,
		Compression: codec,
		StoredBytes: blob.Size(),
		ReadBytes:   counted.n,
		Points:      ds.Len(),
		Duration:    time.Since(start),
	}, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
